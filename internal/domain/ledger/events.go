package ledger

import (
	"time"

	"github.com/google/uuid"
	"github.com/opsease/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

const (
	// AggregateTypeLedgerEntry is the aggregate type for ledger events
	AggregateTypeLedgerEntry = "LedgerEntry"
	// EventTypeLedgerEntryPosted is published after an entry is committed
	EventTypeLedgerEntryPosted = "LedgerEntryPosted"
)

// LedgerEntryPostedEvent announces a committed ledger entry
type LedgerEntryPostedEvent struct {
	shared.BaseDomainEvent
	EntryID    uuid.UUID       `json:"entry_id"`
	PartyName  string          `json:"party_name"`
	PartyType  PartyType       `json:"party_type"`
	EntryType  EntryType       `json:"entry_type"`
	Amount     decimal.Decimal `json:"amount"`
	Balance    decimal.Decimal `json:"balance"`
	Reference  string          `json:"reference,omitempty"`
	EntryDate  time.Time       `json:"entry_date"`
	SourceType SourceType      `json:"source_type"`
	SourceID   *uuid.UUID      `json:"source_id,omitempty"`
}

// NewLedgerEntryPostedEvent builds the event for a persisted entry
func NewLedgerEntryPostedEvent(e *LedgerEntry) *LedgerEntryPostedEvent {
	return &LedgerEntryPostedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeLedgerEntryPosted, AggregateTypeLedgerEntry, e.ID, e.UserID),
		EntryID:         e.ID,
		PartyName:       e.PartyName,
		PartyType:       e.PartyType,
		EntryType:       e.EntryType,
		Amount:          e.Amount,
		Balance:         e.Balance,
		Reference:       e.Reference,
		EntryDate:       e.EntryDate,
		SourceType:      e.SourceType,
		SourceID:        e.SourceID,
	}
}
