package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/opsease/backend/internal/domain/ledger"
	"github.com/shopspring/decimal"
)

// LedgerEntryModel is the persistence model for a ledger entry.
// Rows are append-only; only Balance is ever rewritten, by maintenance.
type LedgerEntryModel struct {
	BaseModel
	UserID      string            `gorm:"type:varchar(128);not null;index:idx_ledger_user_party,priority:1;index:idx_ledger_source,priority:1"`
	PartyName   string            `gorm:"type:varchar(200);not null;index:idx_ledger_user_party,priority:2"`
	PartyType   ledger.PartyType  `gorm:"type:varchar(20);not null"`
	EntryType   ledger.EntryType  `gorm:"type:varchar(10);not null"`
	Amount      decimal.Decimal   `gorm:"type:decimal(18,2);not null"`
	Description string            `gorm:"type:text;not null"`
	Reference   string            `gorm:"type:varchar(100)"`
	EntryDate   time.Time         `gorm:"type:date;not null;index"`
	Balance     decimal.Decimal   `gorm:"type:decimal(18,2);not null;default:0"`
	SourceType  ledger.SourceType `gorm:"type:varchar(20);not null;default:'manual';index:idx_ledger_source,priority:2"`
	SourceID    *uuid.UUID        `gorm:"type:uuid;index:idx_ledger_source,priority:3"`
}

// TableName returns the table name for GORM
func (LedgerEntryModel) TableName() string {
	return "ledger_entries"
}

// ToDomain converts the persistence model to a domain LedgerEntry
func (m *LedgerEntryModel) ToDomain() *ledger.LedgerEntry {
	return &ledger.LedgerEntry{
		ID:          m.ID,
		UserID:      m.UserID,
		PartyName:   m.PartyName,
		PartyType:   m.PartyType,
		EntryType:   m.EntryType,
		Amount:      m.Amount,
		Description: m.Description,
		Reference:   m.Reference,
		EntryDate:   m.EntryDate.UTC(),
		Balance:     m.Balance,
		SourceType:  m.SourceType,
		SourceID:    m.SourceID,
		CreatedAt:   m.CreatedAt,
	}
}

// FromDomain populates the persistence model from a domain LedgerEntry
func (m *LedgerEntryModel) FromDomain(e *ledger.LedgerEntry) {
	m.ID = e.ID
	m.CreatedAt = e.CreatedAt
	m.UpdatedAt = e.CreatedAt
	m.UserID = e.UserID
	m.PartyName = e.PartyName
	m.PartyType = e.PartyType
	m.EntryType = e.EntryType
	m.Amount = e.Amount
	m.Description = e.Description
	m.Reference = e.Reference
	m.EntryDate = e.EntryDate
	m.Balance = e.Balance
	m.SourceType = e.SourceType
	m.SourceID = e.SourceID
}

// LedgerEntryModelFromDomain creates a new persistence model from a domain LedgerEntry
func LedgerEntryModelFromDomain(e *ledger.LedgerEntry) *LedgerEntryModel {
	m := &LedgerEntryModel{}
	m.FromDomain(e)
	return m
}
