package ledger

import (
	"context"
	"fmt"

	"github.com/opsease/backend/internal/domain/ledger"
	"github.com/opsease/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// Verify returns every entry whose stored balance differs from the balance
// re-derived from its party's history. An empty userID checks every user.
func (s *Service) Verify(ctx context.Context, userID string) ([]DriftResponse, error) {
	userIDs, err := s.usersToCheck(ctx, userID)
	if err != nil {
		return nil, err
	}

	var out []DriftResponse
	for _, uid := range userIDs {
		entries, err := s.entryRepo.FindAll(ctx, uid, "")
		if err != nil {
			return nil, fmt.Errorf("failed to load ledger of %s: %w", uid, err)
		}
		for _, d := range ledger.FindDrift(entries) {
			out = append(out, DriftResponse{
				EntryID:   d.Entry.ID,
				UserID:    d.Entry.UserID,
				PartyName: d.Entry.PartyName,
				EntryDate: d.Entry.EntryDate,
				Stored:    d.Stored,
				Derived:   d.Derived,
			})
		}
	}
	if s.metrics != nil {
		s.metrics.RecordDrift(ctx, int64(len(out)))
	}
	return out, nil
}

// Rebalance rewrites drifted stored balances to their re-derived values.
// Each party is rewritten under its write lock so concurrent appends see a
// consistent history.
func (s *Service) Rebalance(ctx context.Context, userID string) (*RebalanceResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "ledger", "rebalance")
	defer span.End()

	userIDs, err := s.usersToCheck(ctx, userID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	result := &RebalanceResult{Users: len(userIDs)}
	for _, uid := range userIDs {
		entries, err := s.entryRepo.FindAll(ctx, uid, "")
		if err != nil {
			return nil, fmt.Errorf("failed to load ledger of %s: %w", uid, err)
		}
		result.Checked += len(entries)

		for _, party := range partyNames(entries) {
			updated, err := s.rebalanceParty(ctx, uid, party)
			if err != nil {
				telemetry.RecordError(span, err)
				return nil, err
			}
			if updated > 0 {
				telemetry.AddEvent(span, "party_rebalanced",
					telemetry.SpanAttrUserID, uid,
					telemetry.SpanAttrPartyName, party,
					"entries", updated,
				)
			}
			result.Updated += updated
		}
	}

	s.logger.Info("ledger rebalance finished",
		zap.Int("users", result.Users),
		zap.Int("checked", result.Checked),
		zap.Int("updated", result.Updated),
	)
	return result, nil
}

func (s *Service) rebalanceParty(ctx context.Context, userID, partyName string) (int, error) {
	unlock := s.locker.Lock(userID, partyName)
	defer unlock()

	updated := 0
	err := s.txManager.Transaction(ctx, func(ctx context.Context) error {
		if err := s.entryRepo.LockParty(ctx, userID, partyName); err != nil {
			return fmt.Errorf("failed to lock party ledger: %w", err)
		}
		entries, err := s.entryRepo.FindAll(ctx, userID, partyName)
		if err != nil {
			return fmt.Errorf("failed to load party ledger: %w", err)
		}
		for _, d := range ledger.FindDrift(entries) {
			if err := s.entryRepo.UpdateBalance(ctx, d.Entry.ID, d.Derived); err != nil {
				return fmt.Errorf("failed to update balance of %s: %w", d.Entry.ID, err)
			}
			updated++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return updated, nil
}

func (s *Service) usersToCheck(ctx context.Context, userID string) ([]string, error) {
	if userID != "" {
		return []string{userID}, nil
	}
	ids, err := s.entryRepo.ListUserIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list ledger users: %w", err)
	}
	return ids, nil
}

func partyNames(entries []ledger.LedgerEntry) []string {
	seen := make(map[string]struct{})
	var names []string
	for i := range entries {
		if _, ok := seen[entries[i].PartyName]; ok {
			continue
		}
		seen[entries[i].PartyName] = struct{}{}
		names = append(names, entries[i].PartyName)
	}
	return names
}
