package scheduler

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	ledgerapp "github.com/opsease/backend/internal/application/ledger"
)

// LedgerMaintainer is the part of the ledger service a reconciliation needs
type LedgerMaintainer interface {
	Verify(ctx context.Context, userID string) ([]ledgerapp.DriftResponse, error)
	Rebalance(ctx context.Context, userID string) (*ledgerapp.RebalanceResult, error)
}

// ReconcileExecutor verifies a user's stored balances and, for repair jobs,
// rebalances them when drift is found.
type ReconcileExecutor struct {
	ledger LedgerMaintainer
	logger *zap.Logger
}

// NewReconcileExecutor creates a new reconciliation executor
func NewReconcileExecutor(ledger LedgerMaintainer, logger *zap.Logger) *ReconcileExecutor {
	return &ReconcileExecutor{ledger: ledger, logger: logger}
}

// Execute runs one reconciliation job
func (e *ReconcileExecutor) Execute(ctx context.Context, job *Job) error {
	drift, err := e.ledger.Verify(ctx, job.UserID)
	if err != nil {
		return fmt.Errorf("verify ledger of %s: %w", job.UserID, err)
	}
	job.Drifted = len(drift)
	if len(drift) == 0 {
		return nil
	}

	for _, d := range drift {
		e.logger.Warn("Ledger balance drift",
			zap.String("user_id", d.UserID),
			zap.String("party", d.PartyName),
			zap.String("entry_id", d.EntryID.String()),
			zap.String("stored", d.Stored.StringFixed(2)),
			zap.String("derived", d.Derived.StringFixed(2)),
		)
	}
	if job.Kind != JobKindRepair {
		return nil
	}

	result, err := e.ledger.Rebalance(ctx, job.UserID)
	if err != nil {
		return fmt.Errorf("rebalance ledger of %s: %w", job.UserID, err)
	}
	job.Repaired = result.Updated
	return nil
}
