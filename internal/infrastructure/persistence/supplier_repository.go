package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/opsease/backend/internal/domain/partner"
	"github.com/opsease/backend/internal/domain/shared"
	"github.com/opsease/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormSupplierRepository implements SupplierRepository using GORM
type GormSupplierRepository struct {
	db *gorm.DB
}

// NewGormSupplierRepository creates a new GormSupplierRepository
func NewGormSupplierRepository(db *gorm.DB) *GormSupplierRepository {
	return &GormSupplierRepository{db: db}
}

// FindByID finds a supplier by ID within a user's records
func (r *GormSupplierRepository) FindByID(ctx context.Context, userID string, id uuid.UUID) (*partner.Supplier, error) {
	var model models.SupplierModel
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

// FindAll finds a page of the user's suppliers and the total matching the filter
func (r *GormSupplierRepository) FindAll(ctx context.Context, userID string, filter shared.Filter) ([]partner.Supplier, int64, error) {
	base := dbFromContext(ctx, r.db).Model(&models.SupplierModel{}).Where("user_id = ?", userID)
	base = r.applyFilterWithoutPagination(base, filter)

	var total int64
	if err := base.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var supplierModels []models.SupplierModel
	if err := supplierSort.apply(base, filter).Find(&supplierModels).Error; err != nil {
		return nil, 0, err
	}

	suppliers := make([]partner.Supplier, len(supplierModels))
	for i := range supplierModels {
		suppliers[i] = *supplierModels[i].ToDomain()
	}
	return suppliers, total, nil
}

// Save creates or updates a supplier
func (r *GormSupplierRepository) Save(ctx context.Context, supplier *partner.Supplier) error {
	model := models.SupplierModelFromDomain(supplier)
	return translateWriteError(dbFromContext(ctx, r.db).Save(model).Error)
}

// Delete deletes a supplier within a user's records
func (r *GormSupplierRepository) Delete(ctx context.Context, userID string, id uuid.UUID) error {
	result := dbFromContext(ctx, r.db).Delete(&models.SupplierModel{}, "user_id = ? AND id = ?", userID, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// ExistsByCode checks if another supplier of the user already has the code
func (r *GormSupplierRepository) ExistsByCode(ctx context.Context, userID, code string, excludeID uuid.UUID) (bool, error) {
	var count int64
	query := dbFromContext(ctx, r.db).
		Model(&models.SupplierModel{}).
		Where("user_id = ? AND supplier_code = ?", userID, code)
	if excludeID != uuid.Nil {
		query = query.Where("id <> ?", excludeID)
	}
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// applyFilterWithoutPagination applies search and filters without pagination
func (r *GormSupplierRepository) applyFilterWithoutPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		like := likeOperator(query)
		searchPattern := "%" + filter.Search + "%"
		query = query.Where(
			"supplier_code "+like+" ? OR company_name "+like+" ? OR contact_person "+like+" ? OR email "+like+" ? OR phone "+like+" ?",
			searchPattern, searchPattern, searchPattern, searchPattern, searchPattern)
	}

	for key, value := range filter.Filters {
		switch key {
		case "category":
			query = query.Where("category = ?", value)
		case "is_active":
			query = query.Where("is_active = ?", value)
		case "city":
			query = query.Where("city = ?", value)
		case "state":
			query = query.Where("state = ?", value)
		}
	}
	return query
}

// Ensure GormSupplierRepository implements SupplierRepository
var _ partner.SupplierRepository = (*GormSupplierRepository)(nil)
