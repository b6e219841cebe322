// Package ledger is the application layer of the ledger balance engine: it
// posts entries under the per-party write lock, serves re-derived listings
// and their aggregates, and keeps stored balances honest.
package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/opsease/backend/internal/domain/ledger"
	"github.com/opsease/backend/internal/domain/shared"
	"github.com/opsease/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// Service handles ledger operations for one user at a time
type Service struct {
	entryRepo ledger.LedgerEntryRepository
	txManager shared.TransactionManager
	locker    PartyLocker
	publisher shared.EventPublisher
	storage   ObjectStorage
	metrics   *telemetry.LedgerMetrics
	logger    *zap.Logger
	now       func() time.Time

	statementURLExpiry time.Duration
}

// NewService creates a new ledger Service. publisher may be nil.
func NewService(
	entryRepo ledger.LedgerEntryRepository,
	txManager shared.TransactionManager,
	locker PartyLocker,
	publisher shared.EventPublisher,
	logger *zap.Logger,
) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		entryRepo:          entryRepo,
		txManager:          txManager,
		locker:             locker,
		publisher:          publisher,
		logger:             logger,
		now:                time.Now,
		statementURLExpiry: time.Hour,
	}
}

// SetObjectStorage enables statement archiving
func (s *Service) SetObjectStorage(storage ObjectStorage, urlExpiry time.Duration) {
	s.storage = storage
	if urlExpiry > 0 {
		s.statementURLExpiry = urlExpiry
	}
}

// SetLedgerMetrics sets the ledger metrics recorder
func (s *Service) SetLedgerMetrics(m *telemetry.LedgerMetrics) {
	s.metrics = m
}

// AppendEntry validates and posts a manual entry. The stored balance is
// the signed sum of the party's entire history plus the new entry.
func (s *Service) AppendEntry(ctx context.Context, userID string, req AppendEntryRequest) (*EntryResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "ledger", "append_entry",
		telemetry.WithAttribute(telemetry.SpanAttrUserID, userID))
	defer span.End()

	entry, err := ledger.NewLedgerEntry(ledger.EntryInput{
		UserID:      userID,
		PartyName:   req.PartyName,
		PartyType:   ledger.PartyType(req.PartyType),
		EntryType:   ledger.EntryType(req.EntryType),
		Amount:      req.Amount,
		Description: req.Description,
		Reference:   req.Reference,
		EntryDate:   req.EntryDate,
		SourceType:  ledger.SourceTypeManual,
	})
	if err != nil {
		return nil, err
	}

	unlock := s.locker.Lock(userID, entry.PartyName)
	defer unlock()

	err = s.txManager.Transaction(ctx, func(ctx context.Context) error {
		return s.Post(ctx, entry)
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	telemetry.SetAttributes(span,
		telemetry.SpanAttrPartyName, entry.PartyName,
		telemetry.SpanAttrAmount, entry.Amount.StringFixed(2),
	)

	resp := ToEntryResponse(entry)
	return &resp, nil
}

// Post computes the running balance of entry and persists it. It joins the
// transaction carried by ctx; callers that run outside AppendEntry must hold
// the party lock themselves. CreatedAt is restamped once the party is locked,
// so lock order and (entryDate, createdAt) order agree.
func (s *Service) Post(ctx context.Context, entry *ledger.LedgerEntry) error {
	return s.txManager.Transaction(ctx, func(ctx context.Context) error {
		if err := s.entryRepo.LockParty(ctx, entry.UserID, entry.PartyName); err != nil {
			return fmt.Errorf("failed to lock party ledger: %w", err)
		}

		history, err := s.entryRepo.FindByParty(ctx, entry.UserID, entry.PartyName)
		if err != nil {
			return fmt.Errorf("failed to load party ledger: %w", err)
		}
		entry.CreatedAt = insertionTime(s.now(), history)
		entry.Balance = ledger.BalanceAfter(history, entry)

		if err := s.entryRepo.Create(ctx, entry); err != nil {
			return fmt.Errorf("failed to save ledger entry: %w", err)
		}

		posted := *entry
		s.txManager.AfterCommit(ctx, func() {
			s.afterPosted(context.WithoutCancel(ctx), &posted)
		})
		return nil
	})
}

// insertionTime truncates now to the database's microsecond precision and
// moves it past every createdAt already in history.
func insertionTime(now time.Time, history []ledger.LedgerEntry) time.Time {
	stamp := now.UTC().Truncate(time.Microsecond)
	for _, e := range history {
		if !stamp.After(e.CreatedAt) {
			stamp = e.CreatedAt.UTC().Truncate(time.Microsecond).Add(time.Microsecond)
		}
	}
	return stamp
}

func (s *Service) afterPosted(ctx context.Context, entry *ledger.LedgerEntry) {
	s.logger.Info("ledger entry posted",
		zap.String("user_id", entry.UserID),
		zap.String("entry_id", entry.ID.String()),
		zap.String("party_name", entry.PartyName),
		zap.String("entry_type", string(entry.EntryType)),
		zap.String("amount", entry.Amount.StringFixed(2)),
		zap.String("balance", entry.Balance.StringFixed(2)),
		zap.String("source_type", string(entry.SourceType)),
	)
	if s.metrics != nil {
		s.metrics.RecordEntryPosted(ctx, string(entry.PartyType), string(entry.EntryType), string(entry.SourceType), entry.Amount)
	}
	if s.publisher != nil {
		if err := s.publisher.Publish(ctx, ledger.NewLedgerEntryPostedEvent(entry)); err != nil {
			s.logger.Warn("failed to publish ledger entry event",
				zap.String("entry_id", entry.ID.String()),
				zap.Error(err),
			)
		}
	}
}

// ListEntries returns the user's entries newest first with balances
// re-derived from history. A party filter narrows the load; a party type
// filter is applied after re-derivation so balances always reflect the
// party's full history.
func (s *Service) ListEntries(ctx context.Context, userID string, filter ListFilter) ([]EntryResponse, error) {
	entries, err := s.listDomain(ctx, userID, filter)
	if err != nil {
		return nil, err
	}
	return ToEntryResponses(entries), nil
}

func (s *Service) listDomain(ctx context.Context, userID string, filter ListFilter) ([]ledger.LedgerEntry, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "ledger", "list_entries")
	defer span.End()

	if filter.PartyType != "" && !ledger.PartyType(filter.PartyType).IsValid() {
		return nil, shared.NewDomainError("INVALID_PARTY_TYPE", "Party type must be buyer or supplier")
	}

	entries, err := s.entryRepo.FindAll(ctx, userID, filter.PartyName)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to load ledger entries: %w", err)
	}
	return filter.toDomain().Apply(ledger.Rederive(entries)), nil
}

// Summary aggregates the listing selected by filter
func (s *Service) Summary(ctx context.Context, userID string, filter ListFilter) (*SummaryResponse, error) {
	entries, err := s.listDomain(ctx, userID, filter)
	if err != nil {
		return nil, err
	}
	sum := ledger.Summarize(entries)
	return &SummaryResponse{
		TotalDebits:  sum.TotalDebits,
		TotalCredits: sum.TotalCredits,
		NetBalance:   sum.NetBalance,
		EntryCount:   sum.EntryCount,
		Receivable:   sum.Receivable,
		Payable:      sum.Payable,
	}, nil
}

// PartyBalances returns one row per party, sorted by name
func (s *Service) PartyBalances(ctx context.Context, userID string) ([]PartyBalanceResponse, error) {
	entries, err := s.listDomain(ctx, userID, ListFilter{})
	if err != nil {
		return nil, err
	}
	parties := ledger.PartyBalances(entries)
	out := make([]PartyBalanceResponse, len(parties))
	for i, p := range parties {
		out[i] = PartyBalanceResponse{
			PartyName:     p.PartyName,
			PartyType:     string(p.PartyType),
			Balance:       p.Balance,
			EntryCount:    p.EntryCount,
			LastEntryDate: p.LastEntryDate,
		}
	}
	return out, nil
}
