// Package partner is the application layer for customer and supplier
// master data.
package partner

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/opsease/backend/internal/domain/partner"
	"github.com/opsease/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// CustomerService handles customer-related business operations
type CustomerService struct {
	customerRepo partner.CustomerRepository
	publisher    shared.EventPublisher
	logger       *zap.Logger
}

// NewCustomerService creates a new CustomerService. publisher may be nil.
func NewCustomerService(customerRepo partner.CustomerRepository, publisher shared.EventPublisher, logger *zap.Logger) *CustomerService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CustomerService{
		customerRepo: customerRepo,
		publisher:    publisher,
		logger:       logger,
	}
}

// Create creates a new customer
func (s *CustomerService) Create(ctx context.Context, userID string, req CreateCustomerRequest) (*CustomerResponse, error) {
	customer, err := partner.NewCustomer(userID, req.CustomerCode, req.ProfileInput.toDomain())
	if err != nil {
		return nil, err
	}
	if req.CreditLimit != nil {
		if err := customer.SetCreditLimit(*req.CreditLimit); err != nil {
			return nil, err
		}
	}
	if req.IsActive != nil {
		customer.SetActive(*req.IsActive)
	}

	if err := s.ensureCodeFree(ctx, userID, customer.Code, uuid.Nil); err != nil {
		return nil, err
	}
	if err := s.save(ctx, customer); err != nil {
		return nil, err
	}

	response := ToCustomerResponse(customer)
	return &response, nil
}

// GetByID retrieves a customer by ID
func (s *CustomerService) GetByID(ctx context.Context, userID string, customerID uuid.UUID) (*CustomerResponse, error) {
	customer, err := s.find(ctx, userID, customerID)
	if err != nil {
		return nil, err
	}
	response := ToCustomerResponse(customer)
	return &response, nil
}

// List retrieves a page of customers
func (s *CustomerService) List(ctx context.Context, userID string, filter ListFilter) ([]CustomerResponse, int64, error) {
	customers, total, err := s.customerRepo.FindAll(ctx, userID, toDomainFilter(filter))
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list customers: %w", err)
	}
	return ToCustomerResponses(customers), total, nil
}

// Update updates a customer
func (s *CustomerService) Update(ctx context.Context, userID string, customerID uuid.UUID, req UpdateCustomerRequest) (*CustomerResponse, error) {
	customer, err := s.find(ctx, userID, customerID)
	if err != nil {
		return nil, err
	}

	if req.CustomerCode != nil && !strings.EqualFold(strings.TrimSpace(*req.CustomerCode), customer.Code) {
		if err := customer.UpdateCode(*req.CustomerCode); err != nil {
			return nil, err
		}
		if err := s.ensureCodeFree(ctx, userID, customer.Code, customer.ID); err != nil {
			return nil, err
		}
	}
	if !req.ProfileUpdate.isEmpty() {
		if err := customer.UpdateProfile(req.ProfileUpdate.applyTo(customer.Profile)); err != nil {
			return nil, err
		}
	}
	if req.CreditLimit != nil {
		if err := customer.SetCreditLimit(*req.CreditLimit); err != nil {
			return nil, err
		}
	}
	if req.IsActive != nil {
		customer.SetActive(*req.IsActive)
	}

	if err := s.save(ctx, customer); err != nil {
		return nil, err
	}

	response := ToCustomerResponse(customer)
	return &response, nil
}

// Delete deletes a customer. Invoices that reference it keep their copy of
// the buyer details.
func (s *CustomerService) Delete(ctx context.Context, userID string, customerID uuid.UUID) error {
	customer, err := s.find(ctx, userID, customerID)
	if err != nil {
		return err
	}
	if err := s.customerRepo.Delete(ctx, userID, customerID); err != nil {
		return notFound("Customer", err)
	}
	publish(ctx, s.publisher, s.logger, partner.NewPartnerChangedEvent(
		partner.EventTypeCustomerDeleted, partner.AggregateTypeCustomer,
		customer.ID, userID, customer.Code, customer.Profile.CompanyName,
	))
	return nil
}

func (s *CustomerService) find(ctx context.Context, userID string, id uuid.UUID) (*partner.Customer, error) {
	customer, err := s.customerRepo.FindByID(ctx, userID, id)
	if err != nil {
		return nil, notFound("Customer", err)
	}
	return customer, nil
}

func (s *CustomerService) ensureCodeFree(ctx context.Context, userID, code string, excludeID uuid.UUID) error {
	exists, err := s.customerRepo.ExistsByCode(ctx, userID, code, excludeID)
	if err != nil {
		return fmt.Errorf("failed to check customer code: %w", err)
	}
	if exists {
		return duplicateCode("Customer", code)
	}
	return nil
}

func (s *CustomerService) save(ctx context.Context, customer *partner.Customer) error {
	if err := s.customerRepo.Save(ctx, customer); err != nil {
		if errors.Is(err, shared.ErrAlreadyExists) {
			return duplicateCode("Customer", customer.Code)
		}
		return fmt.Errorf("failed to save customer: %w", err)
	}
	events := customer.GetDomainEvents()
	customer.ClearDomainEvents()
	publish(ctx, s.publisher, s.logger, events...)
	return nil
}

// =============================================================================
// Helpers shared with SupplierService
// =============================================================================

func toDomainFilter(filter ListFilter) shared.Filter {
	f := shared.DefaultFilter()
	if filter.Page > 0 {
		f.Page = filter.Page
	}
	if filter.PageSize > 0 {
		f.PageSize = min(filter.PageSize, 100)
	}
	f.OrderBy = "company_name"
	f.OrderDir = "asc"
	f.Search = strings.TrimSpace(filter.Search)
	if c := strings.TrimSpace(filter.Category); c != "" {
		f.Filters["category"] = c
	}
	return f
}

func notFound(kind string, err error) error {
	if errors.Is(err, shared.ErrNotFound) {
		return shared.NewDomainError(shared.CodeNotFound, kind+" not found")
	}
	return err
}

func duplicateCode(kind, code string) error {
	return shared.NewDomainError(shared.CodeAlreadyExists, fmt.Sprintf("%s with code %s already exists", kind, code))
}

func publish(ctx context.Context, publisher shared.EventPublisher, logger *zap.Logger, events ...shared.DomainEvent) {
	if publisher == nil || len(events) == 0 {
		return
	}
	if err := publisher.Publish(ctx, events...); err != nil {
		logger.Warn("failed to publish partner events", zap.Error(err))
	}
}
