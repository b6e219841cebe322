package testutil

import (
	"context"
	"slices"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/opsease/backend/internal/domain/invoice"
	"github.com/opsease/backend/internal/domain/partner"
	"github.com/opsease/backend/internal/domain/shared"
)

// MemoryInvoiceRepository is an in-memory invoice.InvoiceRepository with the
// same per-user number uniqueness and optimistic versioning as the gorm one
type MemoryInvoiceRepository struct {
	mu       sync.Mutex
	invoices map[uuid.UUID]invoice.Invoice
	order    []uuid.UUID
}

// NewMemoryInvoiceRepository creates an empty repository
func NewMemoryInvoiceRepository() *MemoryInvoiceRepository {
	return &MemoryInvoiceRepository{invoices: make(map[uuid.UUID]invoice.Invoice)}
}

func cloneInvoice(inv invoice.Invoice) invoice.Invoice {
	inv.Items = slices.Clone(inv.Items)
	inv.ClearDomainEvents()
	return inv
}

// FindByID finds an invoice owned by userID
func (r *MemoryInvoiceRepository) FindByID(ctx context.Context, userID string, id uuid.UUID) (*invoice.Invoice, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	inv, ok := r.invoices[id]
	if !ok || inv.UserID != userID {
		return nil, shared.ErrNotFound
	}
	out := cloneInvoice(inv)
	return &out, nil
}

// FindAll filters by invoice_type, status and a case-insensitive search on
// number or buyer, newest first
func (r *MemoryInvoiceRepository) FindAll(ctx context.Context, userID string, filter shared.Filter) ([]invoice.Invoice, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	search := strings.ToLower(filter.Search)
	var matched []invoice.Invoice
	for i := len(r.order) - 1; i >= 0; i-- {
		inv := r.invoices[r.order[i]]
		if inv.UserID != userID {
			continue
		}
		if v, ok := filter.Filters["invoice_type"]; ok && string(inv.InvoiceType) != v {
			continue
		}
		if v, ok := filter.Filters["status"]; ok && string(inv.Status) != v {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(inv.InvoiceNumber), search) &&
			!strings.Contains(strings.ToLower(inv.BuyerName), search) {
			continue
		}
		matched = append(matched, cloneInvoice(inv))
	}
	total := int64(len(matched))
	start := min(filter.Offset(), len(matched))
	end := len(matched)
	if filter.PageSize > 0 {
		end = min(start+filter.PageSize, len(matched))
	}
	return matched[start:end], total, nil
}

// Create stores a new invoice
func (r *MemoryInvoiceRepository) Create(ctx context.Context, inv *invoice.Invoice) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.invoices {
		if existing.UserID == inv.UserID && existing.InvoiceNumber == inv.InvoiceNumber {
			return shared.ErrAlreadyExists
		}
	}
	r.invoices[inv.ID] = cloneInvoice(*inv)
	r.order = append(r.order, inv.ID)
	return nil
}

// Update saves inv when the stored version is the one it was loaded at
func (r *MemoryInvoiceRepository) Update(ctx context.Context, inv *invoice.Invoice) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.invoices[inv.ID]
	if !ok || stored.UserID != inv.UserID {
		return shared.ErrNotFound
	}
	if stored.Version != inv.Version-1 {
		return shared.ErrConcurrencyConflict
	}
	r.invoices[inv.ID] = cloneInvoice(*inv)
	return nil
}

// Delete removes an invoice owned by userID
func (r *MemoryInvoiceRepository) Delete(ctx context.Context, userID string, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	inv, ok := r.invoices[id]
	if !ok || inv.UserID != userID {
		return shared.ErrNotFound
	}
	delete(r.invoices, id)
	r.order = slices.DeleteFunc(r.order, func(x uuid.UUID) bool { return x == id })
	return nil
}

// ExistsByNumber checks whether userID already used number
func (r *MemoryInvoiceRepository) ExistsByNumber(ctx context.Context, userID, number string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, inv := range r.invoices {
		if inv.UserID == userID && inv.InvoiceNumber == number {
			return true, nil
		}
	}
	return false, nil
}

// LatestGeneratedNumber returns the highest generated number of the type
func (r *MemoryInvoiceRepository) LatestGeneratedNumber(ctx context.Context, userID string, invoiceType invoice.InvoiceType) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var latest string
	var best int64 = -1
	for _, inv := range r.invoices {
		if inv.UserID != userID {
			continue
		}
		if seq, ok := invoice.ParseSequence(invoiceType, inv.InvoiceNumber); ok && seq > best {
			best, latest = seq, inv.InvoiceNumber
		}
	}
	return latest, nil
}

// Len returns the number of stored invoices
func (r *MemoryInvoiceRepository) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.invoices)
}

var _ invoice.InvoiceRepository = (*MemoryInvoiceRepository)(nil)

// MemoryCustomerRepository is an in-memory partner.CustomerRepository
type MemoryCustomerRepository struct {
	mu        sync.Mutex
	customers []partner.Customer
}

// NewMemoryCustomerRepository creates an empty repository
func NewMemoryCustomerRepository() *MemoryCustomerRepository {
	return &MemoryCustomerRepository{}
}

// FindByID finds a customer owned by userID
func (r *MemoryCustomerRepository) FindByID(ctx context.Context, userID string, id uuid.UUID) (*partner.Customer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.customers {
		if c.ID == id && c.UserID == userID {
			c.ClearDomainEvents()
			return &c, nil
		}
	}
	return nil, shared.ErrNotFound
}

// FindAll matches filter.Search against code and company name
func (r *MemoryCustomerRepository) FindAll(ctx context.Context, userID string, filter shared.Filter) ([]partner.Customer, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []partner.Customer
	for _, c := range r.customers {
		if c.UserID == userID && matchesPartner(filter.Search, c.Code, c.Profile) {
			out = append(out, c)
		}
	}
	return out, int64(len(out)), nil
}

// Save creates or replaces a customer
func (r *MemoryCustomerRepository) Save(ctx context.Context, customer *partner.Customer) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, c := range r.customers {
		if c.UserID == customer.UserID && c.Code == customer.Code && c.ID != customer.ID {
			return shared.ErrAlreadyExists
		}
		if c.ID == customer.ID {
			r.customers[i] = *customer
			return nil
		}
	}
	r.customers = append(r.customers, *customer)
	return nil
}

// Delete deletes a customer owned by userID
func (r *MemoryCustomerRepository) Delete(ctx context.Context, userID string, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, c := range r.customers {
		if c.ID == id && c.UserID == userID {
			r.customers = slices.Delete(r.customers, i, i+1)
			return nil
		}
	}
	return shared.ErrNotFound
}

// ExistsByCode checks whether code is taken by another customer
func (r *MemoryCustomerRepository) ExistsByCode(ctx context.Context, userID, code string, excludeID uuid.UUID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.customers {
		if c.UserID == userID && strings.EqualFold(c.Code, code) && c.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

var _ partner.CustomerRepository = (*MemoryCustomerRepository)(nil)

// MemorySupplierRepository is an in-memory partner.SupplierRepository
type MemorySupplierRepository struct {
	mu        sync.Mutex
	suppliers []partner.Supplier
}

// NewMemorySupplierRepository creates an empty repository
func NewMemorySupplierRepository() *MemorySupplierRepository {
	return &MemorySupplierRepository{}
}

// FindByID finds a supplier owned by userID
func (r *MemorySupplierRepository) FindByID(ctx context.Context, userID string, id uuid.UUID) (*partner.Supplier, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.suppliers {
		if s.ID == id && s.UserID == userID {
			s.ClearDomainEvents()
			return &s, nil
		}
	}
	return nil, shared.ErrNotFound
}

// FindAll matches filter.Search and an optional "category" filter
func (r *MemorySupplierRepository) FindAll(ctx context.Context, userID string, filter shared.Filter) ([]partner.Supplier, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []partner.Supplier
	for _, s := range r.suppliers {
		if s.UserID != userID || !matchesPartner(filter.Search, s.Code, s.Profile) {
			continue
		}
		if v, ok := filter.Filters["category"]; ok && s.Category != v {
			continue
		}
		out = append(out, s)
	}
	return out, int64(len(out)), nil
}

// Save creates or replaces a supplier
func (r *MemorySupplierRepository) Save(ctx context.Context, supplier *partner.Supplier) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, s := range r.suppliers {
		if s.UserID == supplier.UserID && s.Code == supplier.Code && s.ID != supplier.ID {
			return shared.ErrAlreadyExists
		}
		if s.ID == supplier.ID {
			r.suppliers[i] = *supplier
			return nil
		}
	}
	r.suppliers = append(r.suppliers, *supplier)
	return nil
}

// Delete deletes a supplier owned by userID
func (r *MemorySupplierRepository) Delete(ctx context.Context, userID string, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, s := range r.suppliers {
		if s.ID == id && s.UserID == userID {
			r.suppliers = slices.Delete(r.suppliers, i, i+1)
			return nil
		}
	}
	return shared.ErrNotFound
}

// ExistsByCode checks whether code is taken by another supplier
func (r *MemorySupplierRepository) ExistsByCode(ctx context.Context, userID, code string, excludeID uuid.UUID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.suppliers {
		if s.UserID == userID && strings.EqualFold(s.Code, code) && s.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

var _ partner.SupplierRepository = (*MemorySupplierRepository)(nil)

func matchesPartner(search, code string, p partner.Profile) bool {
	if search == "" {
		return true
	}
	search = strings.ToLower(search)
	return strings.Contains(strings.ToLower(code), search) ||
		strings.Contains(strings.ToLower(p.CompanyName), search)
}
