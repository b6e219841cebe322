package ledger

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LedgerEntryRepository persists ledger entries. All reads are scoped to one
// user; an empty result is never an error.
type LedgerEntryRepository interface {
	// Create inserts a new entry
	Create(ctx context.Context, entry *LedgerEntry) error

	// FindByParty returns every entry of one party, most recent first
	// (entry_date desc, created_at desc)
	FindByParty(ctx context.Context, userID, partyName string) ([]LedgerEntry, error)

	// FindAll returns the user's entries, optionally restricted to one party,
	// oldest first
	FindAll(ctx context.Context, userID, partyName string) ([]LedgerEntry, error)

	// ExistsBySource reports whether an entry was already generated from the
	// given source document
	ExistsBySource(ctx context.Context, userID string, sourceType SourceType, sourceID uuid.UUID) (bool, error)

	// LockParty serializes writers of one party until the surrounding
	// transaction ends. Outside a transaction it is a no-op.
	LockParty(ctx context.Context, userID, partyName string) error

	// UpdateBalance overwrites the stored balance of one entry
	UpdateBalance(ctx context.Context, id uuid.UUID, balance decimal.Decimal) error

	// ListUserIDs returns every user that owns at least one entry
	ListUserIDs(ctx context.Context) ([]string, error)
}
