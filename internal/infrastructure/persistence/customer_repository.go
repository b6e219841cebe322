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

// GormCustomerRepository implements CustomerRepository using GORM
type GormCustomerRepository struct {
	db *gorm.DB
}

// NewGormCustomerRepository creates a new GormCustomerRepository
func NewGormCustomerRepository(db *gorm.DB) *GormCustomerRepository {
	return &GormCustomerRepository{db: db}
}

// FindByID finds a customer by ID within a user's records
func (r *GormCustomerRepository) FindByID(ctx context.Context, userID string, id uuid.UUID) (*partner.Customer, error) {
	var model models.CustomerModel
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

// FindAll finds a page of the user's customers and the total matching the filter
func (r *GormCustomerRepository) FindAll(ctx context.Context, userID string, filter shared.Filter) ([]partner.Customer, int64, error) {
	base := dbFromContext(ctx, r.db).Model(&models.CustomerModel{}).Where("user_id = ?", userID)
	base = r.applyFilterWithoutPagination(base, filter)

	var total int64
	if err := base.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var customerModels []models.CustomerModel
	if err := customerSort.apply(base, filter).Find(&customerModels).Error; err != nil {
		return nil, 0, err
	}

	customers := make([]partner.Customer, len(customerModels))
	for i := range customerModels {
		customers[i] = *customerModels[i].ToDomain()
	}
	return customers, total, nil
}

// Save creates or updates a customer
func (r *GormCustomerRepository) Save(ctx context.Context, customer *partner.Customer) error {
	model := models.CustomerModelFromDomain(customer)
	return translateWriteError(dbFromContext(ctx, r.db).Save(model).Error)
}

// Delete deletes a customer within a user's records
func (r *GormCustomerRepository) Delete(ctx context.Context, userID string, id uuid.UUID) error {
	result := dbFromContext(ctx, r.db).Delete(&models.CustomerModel{}, "user_id = ? AND id = ?", userID, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// ExistsByCode checks if another customer of the user already has the code
func (r *GormCustomerRepository) ExistsByCode(ctx context.Context, userID, code string, excludeID uuid.UUID) (bool, error) {
	var count int64
	query := dbFromContext(ctx, r.db).
		Model(&models.CustomerModel{}).
		Where("user_id = ? AND customer_code = ?", userID, code)
	if excludeID != uuid.Nil {
		query = query.Where("id <> ?", excludeID)
	}
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// applyFilterWithoutPagination applies search and filters without pagination
func (r *GormCustomerRepository) applyFilterWithoutPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		like := likeOperator(query)
		searchPattern := "%" + filter.Search + "%"
		query = query.Where(
			"customer_code "+like+" ? OR company_name "+like+" ? OR contact_person "+like+" ? OR email "+like+" ? OR phone "+like+" ?",
			searchPattern, searchPattern, searchPattern, searchPattern, searchPattern)
	}

	for key, value := range filter.Filters {
		switch key {
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

// Ensure GormCustomerRepository implements CustomerRepository
var _ partner.CustomerRepository = (*GormCustomerRepository)(nil)
