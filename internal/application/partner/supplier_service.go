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

// SupplierService handles supplier-related business operations
type SupplierService struct {
	supplierRepo partner.SupplierRepository
	publisher    shared.EventPublisher
	logger       *zap.Logger
}

// NewSupplierService creates a new SupplierService. publisher may be nil.
func NewSupplierService(supplierRepo partner.SupplierRepository, publisher shared.EventPublisher, logger *zap.Logger) *SupplierService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SupplierService{
		supplierRepo: supplierRepo,
		publisher:    publisher,
		logger:       logger,
	}
}

// Create creates a new supplier
func (s *SupplierService) Create(ctx context.Context, userID string, req CreateSupplierRequest) (*SupplierResponse, error) {
	supplier, err := partner.NewSupplier(userID, req.SupplierCode, req.ProfileInput.toDomain(), req.Category)
	if err != nil {
		return nil, err
	}
	if req.IsActive != nil {
		supplier.SetActive(*req.IsActive)
	}

	if err := s.ensureCodeFree(ctx, userID, supplier.Code, uuid.Nil); err != nil {
		return nil, err
	}
	if err := s.save(ctx, supplier); err != nil {
		return nil, err
	}

	response := ToSupplierResponse(supplier)
	return &response, nil
}

// GetByID retrieves a supplier by ID
func (s *SupplierService) GetByID(ctx context.Context, userID string, supplierID uuid.UUID) (*SupplierResponse, error) {
	supplier, err := s.find(ctx, userID, supplierID)
	if err != nil {
		return nil, err
	}
	response := ToSupplierResponse(supplier)
	return &response, nil
}

// List retrieves a page of suppliers
func (s *SupplierService) List(ctx context.Context, userID string, filter ListFilter) ([]SupplierResponse, int64, error) {
	suppliers, total, err := s.supplierRepo.FindAll(ctx, userID, toDomainFilter(filter))
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list suppliers: %w", err)
	}
	return ToSupplierResponses(suppliers), total, nil
}

// Update updates a supplier
func (s *SupplierService) Update(ctx context.Context, userID string, supplierID uuid.UUID, req UpdateSupplierRequest) (*SupplierResponse, error) {
	supplier, err := s.find(ctx, userID, supplierID)
	if err != nil {
		return nil, err
	}

	if req.SupplierCode != nil && !strings.EqualFold(strings.TrimSpace(*req.SupplierCode), supplier.Code) {
		if err := supplier.UpdateCode(*req.SupplierCode); err != nil {
			return nil, err
		}
		if err := s.ensureCodeFree(ctx, userID, supplier.Code, supplier.ID); err != nil {
			return nil, err
		}
	}
	if !req.ProfileUpdate.isEmpty() {
		if err := supplier.UpdateProfile(req.ProfileUpdate.applyTo(supplier.Profile)); err != nil {
			return nil, err
		}
	}
	if req.Category != nil {
		if err := supplier.SetCategory(*req.Category); err != nil {
			return nil, err
		}
	}
	if req.IsActive != nil {
		supplier.SetActive(*req.IsActive)
	}

	if err := s.save(ctx, supplier); err != nil {
		return nil, err
	}

	response := ToSupplierResponse(supplier)
	return &response, nil
}

// Delete deletes a supplier
func (s *SupplierService) Delete(ctx context.Context, userID string, supplierID uuid.UUID) error {
	supplier, err := s.find(ctx, userID, supplierID)
	if err != nil {
		return err
	}
	if err := s.supplierRepo.Delete(ctx, userID, supplierID); err != nil {
		return notFound("Supplier", err)
	}
	publish(ctx, s.publisher, s.logger, partner.NewPartnerChangedEvent(
		partner.EventTypeSupplierDeleted, partner.AggregateTypeSupplier,
		supplier.ID, userID, supplier.Code, supplier.Profile.CompanyName,
	))
	return nil
}

func (s *SupplierService) find(ctx context.Context, userID string, id uuid.UUID) (*partner.Supplier, error) {
	supplier, err := s.supplierRepo.FindByID(ctx, userID, id)
	if err != nil {
		return nil, notFound("Supplier", err)
	}
	return supplier, nil
}

func (s *SupplierService) ensureCodeFree(ctx context.Context, userID, code string, excludeID uuid.UUID) error {
	exists, err := s.supplierRepo.ExistsByCode(ctx, userID, code, excludeID)
	if err != nil {
		return fmt.Errorf("failed to check supplier code: %w", err)
	}
	if exists {
		return duplicateCode("Supplier", code)
	}
	return nil
}

func (s *SupplierService) save(ctx context.Context, supplier *partner.Supplier) error {
	if err := s.supplierRepo.Save(ctx, supplier); err != nil {
		if errors.Is(err, shared.ErrAlreadyExists) {
			return duplicateCode("Supplier", supplier.Code)
		}
		return fmt.Errorf("failed to save supplier: %w", err)
	}
	events := supplier.GetDomainEvents()
	supplier.ClearDomainEvents()
	publish(ctx, s.publisher, s.logger, events...)
	return nil
}
