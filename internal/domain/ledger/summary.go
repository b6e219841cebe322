package ledger

import (
	"slices"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// EntryFilter narrows a listing. Empty fields match everything.
type EntryFilter struct {
	PartyName string
	PartyType PartyType
}

// Matches reports whether the entry passes the filter
func (f EntryFilter) Matches(e *LedgerEntry) bool {
	if f.PartyName != "" && e.PartyName != f.PartyName {
		return false
	}
	if f.PartyType != "" && e.PartyType != f.PartyType {
		return false
	}
	return true
}

// Apply returns the entries that pass the filter, preserving order
func (f EntryFilter) Apply(entries []LedgerEntry) []LedgerEntry {
	if f.PartyName == "" && f.PartyType == "" {
		return entries
	}
	out := make([]LedgerEntry, 0, len(entries))
	for i := range entries {
		if f.Matches(&entries[i]) {
			out = append(out, entries[i])
		}
	}
	return out
}

// Summary aggregates a set of entries
type Summary struct {
	TotalDebits  decimal.Decimal
	TotalCredits decimal.Decimal
	// NetBalance is TotalCredits - TotalDebits
	NetBalance decimal.Decimal
	EntryCount int
	// Receivable sums the balances of parties whose latest entry is a buyer entry
	Receivable decimal.Decimal
	// Payable sums the balances of parties whose latest entry is a supplier entry
	Payable decimal.Decimal
}

// Summarize computes totals over the given entries
func Summarize(entries []LedgerEntry) Summary {
	s := Summary{
		TotalDebits:  decimal.Zero,
		TotalCredits: decimal.Zero,
		Receivable:   decimal.Zero,
		Payable:      decimal.Zero,
		EntryCount:   len(entries),
	}
	for i := range entries {
		switch entries[i].EntryType {
		case EntryTypeDebit:
			s.TotalDebits = s.TotalDebits.Add(entries[i].Amount)
		case EntryTypeCredit:
			s.TotalCredits = s.TotalCredits.Add(entries[i].Amount)
		}
	}
	s.NetBalance = s.TotalCredits.Sub(s.TotalDebits)

	for _, p := range PartyBalances(entries) {
		if p.PartyType == PartyTypeBuyer {
			s.Receivable = s.Receivable.Add(p.Balance)
		} else {
			s.Payable = s.Payable.Add(p.Balance)
		}
	}
	return s
}

// PartyBalance is the position with one counterparty
type PartyBalance struct {
	PartyName     string
	PartyType     PartyType
	Balance       decimal.Decimal
	EntryCount    int
	LastEntryDate time.Time
}

// PartyBalances groups entries by party name. Each party's balance is the
// signed sum of its entries, which equals the balance of its most recent
// entry after re-derivation. Parties are returned sorted by name.
func PartyBalances(entries []LedgerEntry) []PartyBalance {
	ordered := slices.Clone(entries)
	SortChronological(ordered)

	index := make(map[string]int)
	var parties []PartyBalance
	for i := range ordered {
		e := &ordered[i]
		idx, ok := index[e.PartyName]
		if !ok {
			idx = len(parties)
			index[e.PartyName] = idx
			parties = append(parties, PartyBalance{PartyName: e.PartyName, Balance: decimal.Zero})
		}
		p := &parties[idx]
		p.Balance = p.Balance.Add(e.SignedAmount())
		p.EntryCount++
		p.PartyType = e.PartyType
		p.LastEntryDate = e.EntryDate
	}

	slices.SortFunc(parties, func(a, b PartyBalance) int {
		return strings.Compare(a.PartyName, b.PartyName)
	})
	return parties
}
