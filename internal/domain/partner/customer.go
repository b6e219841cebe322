package partner

import (
	"github.com/opsease/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Customer is a buyer the business invoices
type Customer struct {
	shared.UserAggregateRoot
	Code        string
	Profile     Profile
	CreditLimit decimal.Decimal
	IsActive    bool
}

// NewCustomer creates an active customer
func NewCustomer(userID, code string, profile Profile) (*Customer, error) {
	code, err := normalizeCode("Customer", code)
	if err != nil {
		return nil, err
	}
	p, err := profile.normalize()
	if err != nil {
		return nil, err
	}

	c := &Customer{
		UserAggregateRoot: shared.NewUserAggregateRoot(userID),
		Code:              code,
		Profile:           p,
		CreditLimit:       decimal.Zero,
		IsActive:          true,
	}
	c.AddDomainEvent(NewPartnerChangedEvent(EventTypeCustomerCreated, AggregateTypeCustomer, c.ID, userID, c.Code, p.CompanyName))
	return c, nil
}

// UpdateProfile replaces the contact details
func (c *Customer) UpdateProfile(profile Profile) error {
	p, err := profile.normalize()
	if err != nil {
		return err
	}
	c.Profile = p
	c.IncrementVersion()
	c.AddDomainEvent(NewPartnerChangedEvent(EventTypeCustomerUpdated, AggregateTypeCustomer, c.ID, c.UserID, c.Code, p.CompanyName))
	return nil
}

// UpdateCode changes the customer code
func (c *Customer) UpdateCode(code string) error {
	code, err := normalizeCode("Customer", code)
	if err != nil {
		return err
	}
	c.Code = code
	c.IncrementVersion()
	return nil
}

// SetCreditLimit sets the credit extended to the customer
func (c *Customer) SetCreditLimit(limit decimal.Decimal) error {
	if limit.IsNegative() {
		return shared.NewDomainError("INVALID_CREDIT_LIMIT", "Credit limit cannot be negative")
	}
	c.CreditLimit = limit
	c.IncrementVersion()
	return nil
}

// SetActive activates or deactivates the customer
func (c *Customer) SetActive(active bool) {
	if c.IsActive == active {
		return
	}
	c.IsActive = active
	c.IncrementVersion()
}
