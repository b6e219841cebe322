package ledger

import (
	"slices"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BalanceAfter folds the sign convention over the party's full history plus
// the candidate. The history may be in any order; the stored balances of
// existing entries are ignored.
func BalanceAfter(history []LedgerEntry, candidate *LedgerEntry) decimal.Decimal {
	running := decimal.Zero
	for i := range history {
		running = running.Add(history[i].SignedAmount())
	}
	return running.Add(candidate.SignedAmount())
}

// compareChronological orders by entry date, then insertion time, then ID so
// equal timestamps still sort deterministically.
func compareChronological(a, b LedgerEntry) int {
	if c := a.EntryDate.Compare(b.EntryDate); c != 0 {
		return c
	}
	if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
		return c
	}
	return slices.Compare(a.ID[:], b.ID[:])
}

// SortChronological sorts entries oldest first
func SortChronological(entries []LedgerEntry) {
	slices.SortStableFunc(entries, compareChronological)
}

// SortRecentFirst sorts entries newest first
func SortRecentFirst(entries []LedgerEntry) {
	slices.SortStableFunc(entries, func(a, b LedgerEntry) int {
		return compareChronological(b, a)
	})
}

// Rederive recomputes every entry's balance as the signed cumulative sum of
// its party's entries in chronological order, then returns the set newest
// first. The input slice is not modified.
func Rederive(entries []LedgerEntry) []LedgerEntry {
	out := slices.Clone(entries)
	SortChronological(out)

	running := make(map[string]decimal.Decimal)
	for i := range out {
		party := out[i].PartyName
		balance := running[party].Add(out[i].SignedAmount())
		running[party] = balance
		out[i].Balance = balance
	}

	SortRecentFirst(out)
	return out
}

// BalanceDrift describes an entry whose stored balance disagrees with the
// re-derived one
type BalanceDrift struct {
	Entry   LedgerEntry
	Stored  decimal.Decimal
	Derived decimal.Decimal
}

// FindDrift compares stored balances against the re-derived ones.
// The result is ordered chronologically.
func FindDrift(stored []LedgerEntry) []BalanceDrift {
	derived := Rederive(stored)
	byID := make(map[uuid.UUID]decimal.Decimal, len(derived))
	for _, e := range derived {
		byID[e.ID] = e.Balance
	}

	ordered := slices.Clone(stored)
	SortChronological(ordered)

	var drift []BalanceDrift
	for _, e := range ordered {
		want := byID[e.ID]
		if !e.Balance.Equal(want) {
			drift = append(drift, BalanceDrift{Entry: e, Stored: e.Balance, Derived: want})
		}
	}
	return drift
}
