package partner

import (
	"context"

	"github.com/google/uuid"
	"github.com/opsease/backend/internal/domain/shared"
)

// CustomerRepository defines the interface for customer persistence
type CustomerRepository interface {
	// FindByID finds a customer owned by userID
	FindByID(ctx context.Context, userID string, id uuid.UUID) (*Customer, error)

	// FindAll lists customers; filter.Search matches code, company, contact, email or phone
	FindAll(ctx context.Context, userID string, filter shared.Filter) ([]Customer, int64, error)

	// Save creates or updates a customer
	Save(ctx context.Context, customer *Customer) error

	// Delete deletes a customer owned by userID
	Delete(ctx context.Context, userID string, id uuid.UUID) error

	// ExistsByCode checks whether the code is taken, ignoring excludeID
	ExistsByCode(ctx context.Context, userID, code string, excludeID uuid.UUID) (bool, error)
}

// SupplierRepository defines the interface for supplier persistence
type SupplierRepository interface {
	// FindByID finds a supplier owned by userID
	FindByID(ctx context.Context, userID string, id uuid.UUID) (*Supplier, error)

	// FindAll lists suppliers; filter.Filters may carry "category"
	FindAll(ctx context.Context, userID string, filter shared.Filter) ([]Supplier, int64, error)

	// Save creates or updates a supplier
	Save(ctx context.Context, supplier *Supplier) error

	// Delete deletes a supplier owned by userID
	Delete(ctx context.Context, userID string, id uuid.UUID) error

	// ExistsByCode checks whether the code is taken, ignoring excludeID
	ExistsByCode(ctx context.Context, userID, code string, excludeID uuid.UUID) (bool, error)
}
