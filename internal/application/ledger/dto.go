package ledger

import (
	"time"

	"github.com/google/uuid"
	"github.com/opsease/backend/internal/domain/ledger"
	"github.com/shopspring/decimal"
)

// AppendEntryRequest is a manual ledger posting. Callers cannot supply a
// balance; it is always computed from the party's history.
type AppendEntryRequest struct {
	PartyName   string
	PartyType   string
	EntryType   string
	Amount      decimal.Decimal
	Description string
	Reference   string
	EntryDate   time.Time
}

// ListFilter narrows a ledger listing. Both fields are exact matches.
type ListFilter struct {
	PartyName string
	PartyType string
}

func (f ListFilter) toDomain() ledger.EntryFilter {
	return ledger.EntryFilter{PartyName: f.PartyName, PartyType: ledger.PartyType(f.PartyType)}
}

// EntryResponse is a ledger entry as returned to callers
type EntryResponse struct {
	ID          uuid.UUID
	PartyName   string
	PartyType   string
	EntryType   string
	Amount      decimal.Decimal
	Description string
	Reference   string
	EntryDate   time.Time
	Balance     decimal.Decimal
	SourceType  string
	SourceID    *uuid.UUID
	CreatedAt   time.Time
}

// ToEntryResponse converts a domain entry
func ToEntryResponse(e *ledger.LedgerEntry) EntryResponse {
	return EntryResponse{
		ID:          e.ID,
		PartyName:   e.PartyName,
		PartyType:   string(e.PartyType),
		EntryType:   string(e.EntryType),
		Amount:      e.Amount,
		Description: e.Description,
		Reference:   e.Reference,
		EntryDate:   e.EntryDate,
		Balance:     e.Balance,
		SourceType:  string(e.SourceType),
		SourceID:    e.SourceID,
		CreatedAt:   e.CreatedAt,
	}
}

// ToEntryResponses converts a slice of domain entries
func ToEntryResponses(entries []ledger.LedgerEntry) []EntryResponse {
	out := make([]EntryResponse, len(entries))
	for i := range entries {
		out[i] = ToEntryResponse(&entries[i])
	}
	return out
}

// SummaryResponse aggregates a listing
type SummaryResponse struct {
	TotalDebits  decimal.Decimal
	TotalCredits decimal.Decimal
	NetBalance   decimal.Decimal
	EntryCount   int
	Receivable   decimal.Decimal
	Payable      decimal.Decimal
}

// PartyBalanceResponse is one row of the party balance view
type PartyBalanceResponse struct {
	PartyName     string
	PartyType     string
	Balance       decimal.Decimal
	EntryCount    int
	LastEntryDate time.Time
}

// StatementResponse describes an archived statement
type StatementResponse struct {
	Key         string
	DownloadURL string
	ExpiresAt   time.Time
	EntryCount  int
}

// DriftResponse is one entry whose stored balance disagrees with its history
type DriftResponse struct {
	EntryID   uuid.UUID
	UserID    string
	PartyName string
	EntryDate time.Time
	Stored    decimal.Decimal
	Derived   decimal.Decimal
}

// RebalanceResult reports what a rebalance run changed
type RebalanceResult struct {
	Users   int
	Checked int
	Updated int
}
