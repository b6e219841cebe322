package invoice

import (
	"context"

	"github.com/google/uuid"
	"github.com/opsease/backend/internal/domain/shared"
)

// InvoiceRepository defines the interface for invoice persistence.
// Every method is scoped to the owning user.
type InvoiceRepository interface {
	// FindByID finds an invoice owned by userID
	FindByID(ctx context.Context, userID string, id uuid.UUID) (*Invoice, error)

	// FindAll lists invoices; filter.Filters may carry "invoice_type" and "status"
	FindAll(ctx context.Context, userID string, filter shared.Filter) ([]Invoice, int64, error)

	// Create inserts a new invoice
	Create(ctx context.Context, inv *Invoice) error

	// Update saves an invoice, failing with ErrConcurrencyConflict when the
	// stored version is not the one the invoice was loaded at
	Update(ctx context.Context, inv *Invoice) error

	// Delete removes an invoice owned by userID
	Delete(ctx context.Context, userID string, id uuid.UUID) error

	// ExistsByNumber checks whether userID already used an invoice number
	ExistsByNumber(ctx context.Context, userID, number string) (bool, error)

	// LatestGeneratedNumber returns the highest generated number with the
	// type's prefix, or "" when there is none
	LatestGeneratedNumber(ctx context.Context, userID string, invoiceType InvoiceType) (string, error)
}
