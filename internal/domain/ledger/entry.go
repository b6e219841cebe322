// Package ledger holds the buyer/supplier ledger: immutable entries, the sign
// convention that turns them into running balances, and the aggregate views
// derived from a set of entries.
package ledger

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/opsease/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// PartyType classifies the counterparty of a ledger entry
type PartyType string

const (
	// PartyTypeBuyer is a customer who owes us for sales invoices
	PartyTypeBuyer PartyType = "buyer"
	// PartyTypeSupplier is a vendor we owe for purchase invoices
	PartyTypeSupplier PartyType = "supplier"
)

// String returns the string representation of PartyType
func (p PartyType) String() string {
	return string(p)
}

// IsValid returns true if the party type is valid
func (p PartyType) IsValid() bool {
	switch p {
	case PartyTypeBuyer, PartyTypeSupplier:
		return true
	}
	return false
}

// EntryType is the accounting side of a ledger entry
type EntryType string

const (
	EntryTypeDebit  EntryType = "debit"
	EntryTypeCredit EntryType = "credit"
)

// String returns the string representation of EntryType
func (e EntryType) String() string {
	return string(e)
}

// IsValid returns true if the entry type is valid
func (e EntryType) IsValid() bool {
	switch e {
	case EntryTypeDebit, EntryTypeCredit:
		return true
	}
	return false
}

// Opposite returns the other side of the books
func (e EntryType) Opposite() EntryType {
	if e == EntryTypeDebit {
		return EntryTypeCredit
	}
	return EntryTypeDebit
}

// SourceType records what produced a ledger entry
type SourceType string

const (
	// SourceTypeManual is an entry keyed in by a user
	SourceTypeManual SourceType = "manual"
	// SourceTypeInvoiceIssued is posted when an invoice is created
	SourceTypeInvoiceIssued SourceType = "invoice_issued"
	// SourceTypeInvoicePaid is posted when an invoice first becomes paid
	SourceTypeInvoicePaid SourceType = "invoice_paid"
)

// String returns the string representation of SourceType
func (s SourceType) String() string {
	return string(s)
}

// IsValid returns true if the source type is valid
func (s SourceType) IsValid() bool {
	switch s {
	case SourceTypeManual, SourceTypeInvoiceIssued, SourceTypeInvoicePaid:
		return true
	}
	return false
}

// LedgerEntry is one financial movement between the business and a
// counterparty. Entries are never modified after creation; Balance is the
// running balance of the party as of and including this entry.
type LedgerEntry struct {
	ID          uuid.UUID
	UserID      string
	PartyName   string
	PartyType   PartyType
	EntryType   EntryType
	Amount      decimal.Decimal
	Description string
	Reference   string
	EntryDate   time.Time
	Balance     decimal.Decimal
	SourceType  SourceType
	SourceID    *uuid.UUID
	CreatedAt   time.Time
}

// EntryInput carries the caller-supplied fields of a new entry. Any balance
// the caller may have computed is deliberately absent.
type EntryInput struct {
	UserID      string
	PartyName   string
	PartyType   PartyType
	EntryType   EntryType
	Amount      decimal.Decimal
	Description string
	Reference   string
	EntryDate   time.Time
	SourceType  SourceType
	SourceID    *uuid.UUID
}

// NewLedgerEntry validates input and creates an entry with a fresh ID and
// creation time. The balance is left at zero for the engine to fill in.
func NewLedgerEntry(input EntryInput) (*LedgerEntry, error) {
	if strings.TrimSpace(input.UserID) == "" {
		return nil, shared.NewDomainError("INVALID_USER", "User ID cannot be empty")
	}
	partyName := strings.TrimSpace(input.PartyName)
	if partyName == "" {
		return nil, shared.NewDomainError("INVALID_PARTY_NAME", "Party name cannot be empty")
	}
	if len(partyName) > 200 {
		return nil, shared.NewDomainError("INVALID_PARTY_NAME", "Party name cannot exceed 200 characters")
	}
	if !input.PartyType.IsValid() {
		return nil, shared.NewDomainError("INVALID_PARTY_TYPE", "Party type must be buyer or supplier")
	}
	if !input.EntryType.IsValid() {
		return nil, shared.NewDomainError("INVALID_ENTRY_TYPE", "Entry type must be debit or credit")
	}
	if !input.Amount.IsPositive() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Amount must be positive")
	}
	if !shared.IsWholeCents(input.Amount) {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Amount cannot have more than 2 decimal places")
	}
	if input.EntryDate.IsZero() {
		return nil, shared.NewDomainError("INVALID_ENTRY_DATE", "Entry date is required")
	}
	description := strings.TrimSpace(input.Description)
	if description == "" {
		return nil, shared.NewDomainError("INVALID_DESCRIPTION", "Description cannot be empty")
	}

	sourceType := input.SourceType
	if sourceType == "" {
		sourceType = SourceTypeManual
	}
	if !sourceType.IsValid() {
		return nil, shared.NewDomainError("INVALID_SOURCE_TYPE", "Invalid ledger entry source type")
	}
	if sourceType != SourceTypeManual && input.SourceID == nil {
		return nil, shared.NewDomainError("INVALID_SOURCE", "Source ID is required for generated entries")
	}

	return &LedgerEntry{
		ID:          uuid.New(),
		UserID:      input.UserID,
		PartyName:   partyName,
		PartyType:   input.PartyType,
		EntryType:   input.EntryType,
		Amount:      input.Amount,
		Description: description,
		Reference:   strings.TrimSpace(input.Reference),
		EntryDate:   shared.TruncateToDate(input.EntryDate),
		Balance:     decimal.Zero,
		SourceType:  sourceType,
		SourceID:    input.SourceID,
		CreatedAt:   time.Now(),
	}, nil
}

// SignedAmount returns the entry's contribution to its party's balance
func (e *LedgerEntry) SignedAmount() decimal.Decimal {
	return Contribution(e.PartyType, e.EntryType, e.Amount)
}

// IsDebit returns true for debit entries
func (e *LedgerEntry) IsDebit() bool {
	return e.EntryType == EntryTypeDebit
}

// IsCredit returns true for credit entries
func (e *LedgerEntry) IsCredit() bool {
	return e.EntryType == EntryTypeCredit
}

// Contribution applies the ledger sign convention.
//
//	buyer    debit  +amount   (invoice raised, receivable grows)
//	buyer    credit -amount   (payment received)
//	supplier debit  -amount   (payment made)
//	supplier credit +amount   (purchase invoice, payable grows)
func Contribution(partyType PartyType, entryType EntryType, amount decimal.Decimal) decimal.Decimal {
	positive := (partyType == PartyTypeBuyer) == (entryType == EntryTypeDebit)
	if positive {
		return amount
	}
	return amount.Neg()
}
