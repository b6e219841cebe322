package partner

import (
	"time"

	"github.com/google/uuid"
	"github.com/opsease/backend/internal/domain/partner"
	"github.com/shopspring/decimal"
)

// =============================================================================
// Shared DTOs
// =============================================================================

// ProfileInput carries the contact and tax fields of a new partner
type ProfileInput struct {
	CompanyName   string
	ContactPerson string
	Email         string
	Phone         string
	GSTNumber     string
	Address       string
	City          string
	State         string
	Country       string
	Pincode       string
	PaymentTerms  string
}

func (p ProfileInput) toDomain() partner.Profile {
	return partner.Profile{
		CompanyName:   p.CompanyName,
		ContactPerson: p.ContactPerson,
		Email:         p.Email,
		Phone:         p.Phone,
		GSTNumber:     p.GSTNumber,
		Address:       p.Address,
		City:          p.City,
		State:         p.State,
		Country:       p.Country,
		Pincode:       p.Pincode,
		PaymentTerms:  p.PaymentTerms,
	}
}

// ProfileUpdate is a partial profile change; nil fields are left unchanged
type ProfileUpdate struct {
	CompanyName   *string
	ContactPerson *string
	Email         *string
	Phone         *string
	GSTNumber     *string
	Address       *string
	City          *string
	State         *string
	Country       *string
	Pincode       *string
	PaymentTerms  *string
}

func (u ProfileUpdate) isEmpty() bool {
	return u.CompanyName == nil && u.ContactPerson == nil && u.Email == nil && u.Phone == nil &&
		u.GSTNumber == nil && u.Address == nil && u.City == nil && u.State == nil &&
		u.Country == nil && u.Pincode == nil && u.PaymentTerms == nil
}

func (u ProfileUpdate) applyTo(p partner.Profile) partner.Profile {
	set := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}
	set(&p.CompanyName, u.CompanyName)
	set(&p.ContactPerson, u.ContactPerson)
	set(&p.Email, u.Email)
	set(&p.Phone, u.Phone)
	set(&p.GSTNumber, u.GSTNumber)
	set(&p.Address, u.Address)
	set(&p.City, u.City)
	set(&p.State, u.State)
	set(&p.Country, u.Country)
	set(&p.Pincode, u.Pincode)
	set(&p.PaymentTerms, u.PaymentTerms)
	return p
}

// ProfileResponse is the contact block of a partner response
type ProfileResponse struct {
	CompanyName   string
	ContactPerson string
	Email         string
	Phone         string
	GSTNumber     string
	Address       string
	City          string
	State         string
	Country       string
	Pincode       string
	PaymentTerms  string
}

func toProfileResponse(p partner.Profile) ProfileResponse {
	return ProfileResponse(p)
}

// ListFilter narrows a partner listing
type ListFilter struct {
	Search   string
	Category string // suppliers only
	Page     int
	PageSize int
}

// =============================================================================
// Customer DTOs
// =============================================================================

// CreateCustomerRequest represents a request to create a new customer
type CreateCustomerRequest struct {
	CustomerCode string
	ProfileInput
	CreditLimit *decimal.Decimal
	IsActive    *bool
}

// UpdateCustomerRequest represents a request to update a customer
type UpdateCustomerRequest struct {
	CustomerCode *string
	ProfileUpdate
	CreditLimit *decimal.Decimal
	IsActive    *bool
}

// CustomerResponse represents a customer in API responses
type CustomerResponse struct {
	ID           uuid.UUID
	CustomerCode string
	ProfileResponse
	CreditLimit decimal.Decimal
	IsActive    bool
	Version     int
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// ToCustomerResponse converts a domain Customer to CustomerResponse
func ToCustomerResponse(c *partner.Customer) CustomerResponse {
	return CustomerResponse{
		ID:              c.ID,
		CustomerCode:    c.Code,
		ProfileResponse: toProfileResponse(c.Profile),
		CreditLimit:     c.CreditLimit,
		IsActive:        c.IsActive,
		Version:         c.Version,
		CreatedAt:       c.CreatedAt,
		UpdatedAt:       c.UpdatedAt,
	}
}

// ToCustomerResponses converts a slice of domain customers
func ToCustomerResponses(customers []partner.Customer) []CustomerResponse {
	out := make([]CustomerResponse, len(customers))
	for i := range customers {
		out[i] = ToCustomerResponse(&customers[i])
	}
	return out
}

// =============================================================================
// Supplier DTOs
// =============================================================================

// CreateSupplierRequest represents a request to create a new supplier
type CreateSupplierRequest struct {
	SupplierCode string
	ProfileInput
	Category string
	IsActive *bool
}

// UpdateSupplierRequest represents a request to update a supplier
type UpdateSupplierRequest struct {
	SupplierCode *string
	ProfileUpdate
	Category *string
	IsActive *bool
}

// SupplierResponse represents a supplier in API responses
type SupplierResponse struct {
	ID           uuid.UUID
	SupplierCode string
	ProfileResponse
	Category  string
	IsActive  bool
	Version   int
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ToSupplierResponse converts a domain Supplier to SupplierResponse
func ToSupplierResponse(s *partner.Supplier) SupplierResponse {
	return SupplierResponse{
		ID:              s.ID,
		SupplierCode:    s.Code,
		ProfileResponse: toProfileResponse(s.Profile),
		Category:        s.Category,
		IsActive:        s.IsActive,
		Version:         s.Version,
		CreatedAt:       s.CreatedAt,
		UpdatedAt:       s.UpdatedAt,
	}
}

// ToSupplierResponses converts a slice of domain suppliers
func ToSupplierResponses(suppliers []partner.Supplier) []SupplierResponse {
	out := make([]SupplierResponse, len(suppliers))
	for i := range suppliers {
		out[i] = ToSupplierResponse(&suppliers[i])
	}
	return out
}
