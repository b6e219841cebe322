package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/opsease/backend/internal/domain/invoice"
	"github.com/opsease/backend/internal/domain/shared"
	"github.com/opsease/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormInvoiceRepository implements InvoiceRepository using GORM
type GormInvoiceRepository struct {
	db *gorm.DB
}

// NewGormInvoiceRepository creates a new GormInvoiceRepository
func NewGormInvoiceRepository(db *gorm.DB) *GormInvoiceRepository {
	return &GormInvoiceRepository{db: db}
}

// FindByID finds an invoice by ID within a user's records
func (r *GormInvoiceRepository) FindByID(ctx context.Context, userID string, id uuid.UUID) (*invoice.Invoice, error) {
	var model models.InvoiceModel
	if err := dbFromContext(ctx, r.db).
		Where("user_id = ? AND id = ?", userID, id).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAll finds a page of the user's invoices, newest first by default
func (r *GormInvoiceRepository) FindAll(ctx context.Context, userID string, filter shared.Filter) ([]invoice.Invoice, int64, error) {
	base := dbFromContext(ctx, r.db).Model(&models.InvoiceModel{}).Where("user_id = ?", userID)
	base = r.applyFilterWithoutPagination(base, filter)

	var total int64
	if err := base.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var invoiceModels []models.InvoiceModel
	if err := invoiceSort.apply(base, filter).Find(&invoiceModels).Error; err != nil {
		return nil, 0, err
	}

	invoices := make([]invoice.Invoice, len(invoiceModels))
	for i := range invoiceModels {
		invoices[i] = *invoiceModels[i].ToDomain()
	}
	return invoices, total, nil
}

// Create inserts a new invoice
func (r *GormInvoiceRepository) Create(ctx context.Context, inv *invoice.Invoice) error {
	model := models.InvoiceModelFromDomain(inv)
	return translateWriteError(dbFromContext(ctx, r.db).Create(model).Error)
}

// Update saves every column of the invoice with an optimistic version check.
// The aggregate has already bumped its version, so the stored row must still
// carry the previous one.
func (r *GormInvoiceRepository) Update(ctx context.Context, inv *invoice.Invoice) error {
	model := models.InvoiceModelFromDomain(inv)
	result := dbFromContext(ctx, r.db).
		Model(model).
		Select("*").
		Omit("id", "user_id", "created_at").
		Where("user_id = ? AND version = ?", inv.UserID, inv.Version-1).
		Updates(model)
	if result.Error != nil {
		return translateWriteError(result.Error)
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}
	return nil
}

// Delete deletes an invoice within a user's records. Ledger entries it
// generated are kept.
func (r *GormInvoiceRepository) Delete(ctx context.Context, userID string, id uuid.UUID) error {
	result := dbFromContext(ctx, r.db).Delete(&models.InvoiceModel{}, "user_id = ? AND id = ?", userID, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// ExistsByNumber checks whether the user already used an invoice number
func (r *GormInvoiceRepository) ExistsByNumber(ctx context.Context, userID, number string) (bool, error) {
	var count int64
	if err := dbFromContext(ctx, r.db).
		Model(&models.InvoiceModel{}).
		Where("user_id = ? AND invoice_number = ?", userID, number).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// LatestGeneratedNumber returns the highest generated number of the type, or ""
func (r *GormInvoiceRepository) LatestGeneratedNumber(ctx context.Context, userID string, invoiceType invoice.InvoiceType) (string, error) {
	sample := invoice.FormatNumber(invoiceType, 0)

	var numbers []string
	if err := dbFromContext(ctx, r.db).
		Model(&models.InvoiceModel{}).
		Where("user_id = ? AND invoice_number LIKE ? AND LENGTH(invoice_number) = ?",
			userID, invoiceType.Prefix()+"%", len(sample)).
		Order("invoice_number DESC").
		Pluck("invoice_number", &numbers).Error; err != nil {
		return "", err
	}

	// Hand-typed numbers can share the prefix and length; skip them.
	for _, n := range numbers {
		if _, ok := invoice.ParseSequence(invoiceType, n); ok {
			return n, nil
		}
	}
	return "", nil
}

// applyFilterWithoutPagination applies search and filters without pagination
func (r *GormInvoiceRepository) applyFilterWithoutPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		like := likeOperator(query)
		searchPattern := "%" + filter.Search + "%"
		query = query.Where("invoice_number "+like+" ? OR buyer_name "+like+" ?", searchPattern, searchPattern)
	}

	for key, value := range filter.Filters {
		switch key {
		case "invoice_type":
			query = query.Where("invoice_type = ?", value)
		case "status":
			query = query.Where("status = ?", value)
		case "customer_id":
			query = query.Where("customer_id = ?", value)
		case "supplier_id":
			query = query.Where("supplier_id = ?", value)
		}
	}
	return query
}

// Ensure GormInvoiceRepository implements InvoiceRepository
var _ invoice.InvoiceRepository = (*GormInvoiceRepository)(nil)
