package partner

import (
	"strings"

	"github.com/opsease/backend/internal/domain/shared"
)

// Supplier is a vendor the business buys from
type Supplier struct {
	shared.UserAggregateRoot
	Code     string
	Profile  Profile
	Category string // e.g. raw materials, services
	IsActive bool
}

// NewSupplier creates an active supplier
func NewSupplier(userID, code string, profile Profile, category string) (*Supplier, error) {
	code, err := normalizeCode("Supplier", code)
	if err != nil {
		return nil, err
	}
	p, err := profile.normalize()
	if err != nil {
		return nil, err
	}
	category, err = normalizeCategory(category)
	if err != nil {
		return nil, err
	}

	s := &Supplier{
		UserAggregateRoot: shared.NewUserAggregateRoot(userID),
		Code:              code,
		Profile:           p,
		Category:          category,
		IsActive:          true,
	}
	s.AddDomainEvent(NewPartnerChangedEvent(EventTypeSupplierCreated, AggregateTypeSupplier, s.ID, userID, s.Code, p.CompanyName))
	return s, nil
}

// UpdateProfile replaces the contact details
func (s *Supplier) UpdateProfile(profile Profile) error {
	p, err := profile.normalize()
	if err != nil {
		return err
	}
	s.Profile = p
	s.IncrementVersion()
	s.AddDomainEvent(NewPartnerChangedEvent(EventTypeSupplierUpdated, AggregateTypeSupplier, s.ID, s.UserID, s.Code, p.CompanyName))
	return nil
}

// UpdateCode changes the supplier code
func (s *Supplier) UpdateCode(code string) error {
	code, err := normalizeCode("Supplier", code)
	if err != nil {
		return err
	}
	s.Code = code
	s.IncrementVersion()
	return nil
}

// SetCategory changes the supplier category
func (s *Supplier) SetCategory(category string) error {
	category, err := normalizeCategory(category)
	if err != nil {
		return err
	}
	s.Category = category
	s.IncrementVersion()
	return nil
}

// SetActive activates or deactivates the supplier
func (s *Supplier) SetActive(active bool) {
	if s.IsActive == active {
		return
	}
	s.IsActive = active
	s.IncrementVersion()
}

func normalizeCategory(category string) (string, error) {
	category = strings.TrimSpace(category)
	if len(category) > 100 {
		return "", shared.NewDomainError("INVALID_CATEGORY", "Category cannot exceed 100 characters")
	}
	return category, nil
}
