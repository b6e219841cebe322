package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/opsease/backend/internal/domain/ledger"
	"github.com/opsease/backend/internal/domain/shared"
	"github.com/opsease/backend/internal/infrastructure/persistence/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GormLedgerEntryRepository implements LedgerEntryRepository using GORM
type GormLedgerEntryRepository struct {
	db *gorm.DB
}

// NewGormLedgerEntryRepository creates a new GormLedgerEntryRepository
func NewGormLedgerEntryRepository(db *gorm.DB) *GormLedgerEntryRepository {
	return &GormLedgerEntryRepository{db: db}
}

// Create inserts a new entry
func (r *GormLedgerEntryRepository) Create(ctx context.Context, entry *ledger.LedgerEntry) error {
	model := models.LedgerEntryModelFromDomain(entry)
	return dbFromContext(ctx, r.db).Create(model).Error
}

// FindByParty returns every entry of one party, most recent first
func (r *GormLedgerEntryRepository) FindByParty(ctx context.Context, userID, partyName string) ([]ledger.LedgerEntry, error) {
	var rows []models.LedgerEntryModel
	err := dbFromContext(ctx, r.db).
		Where("user_id = ? AND party_name = ?", userID, partyName).
		Order("entry_date DESC").
		Order("created_at DESC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return toLedgerEntries(rows), nil
}

// FindAll returns the user's entries, optionally restricted to one party, oldest first
func (r *GormLedgerEntryRepository) FindAll(ctx context.Context, userID, partyName string) ([]ledger.LedgerEntry, error) {
	query := dbFromContext(ctx, r.db).Where("user_id = ?", userID)
	if partyName != "" {
		query = query.Where("party_name = ?", partyName)
	}

	var rows []models.LedgerEntryModel
	if err := query.Order("entry_date ASC").Order("created_at ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return toLedgerEntries(rows), nil
}

// ExistsBySource reports whether an entry was already generated from a source document
func (r *GormLedgerEntryRepository) ExistsBySource(ctx context.Context, userID string, sourceType ledger.SourceType, sourceID uuid.UUID) (bool, error) {
	var count int64
	err := dbFromContext(ctx, r.db).Model(&models.LedgerEntryModel{}).
		Where("user_id = ? AND source_type = ? AND source_id = ?", userID, sourceType, sourceID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// LockParty takes a transaction-scoped advisory lock on the party's ledger.
// SQLite serializes writers itself, so the lock is only taken on PostgreSQL.
func (r *GormLedgerEntryRepository) LockParty(ctx context.Context, userID, partyName string) error {
	if !inTransaction(ctx) {
		return nil
	}
	db := dbFromContext(ctx, r.db)
	if db.Dialector.Name() != "postgres" {
		return nil
	}
	return db.Exec("SELECT pg_advisory_xact_lock(hashtext(?))", userID+"/"+partyName).Error
}

// UpdateBalance overwrites the stored balance of one entry
func (r *GormLedgerEntryRepository) UpdateBalance(ctx context.Context, id uuid.UUID, balance decimal.Decimal) error {
	result := dbFromContext(ctx, r.db).Model(&models.LedgerEntryModel{}).
		Where("id = ?", id).
		Update("balance", balance)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// ListUserIDs returns every user that owns at least one entry
func (r *GormLedgerEntryRepository) ListUserIDs(ctx context.Context) ([]string, error) {
	var ids []string
	err := dbFromContext(ctx, r.db).Model(&models.LedgerEntryModel{}).
		Distinct("user_id").
		Order("user_id").
		Pluck("user_id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

func toLedgerEntries(rows []models.LedgerEntryModel) []ledger.LedgerEntry {
	entries := make([]ledger.LedgerEntry, len(rows))
	for i := range rows {
		entries[i] = *rows[i].ToDomain()
	}
	return entries
}

// Ensure GormLedgerEntryRepository implements LedgerEntryRepository
var _ ledger.LedgerEntryRepository = (*GormLedgerEntryRepository)(nil)
