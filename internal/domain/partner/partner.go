// Package partner holds the customer and supplier master data of a user.
// The ledger stays keyed by party name; invoices may point at a partner by id.
package partner

import (
	"net/mail"
	"regexp"
	"strings"

	"github.com/opsease/backend/internal/domain/shared"
)

// DefaultCountry and DefaultPaymentTerms mirror the defaults of the order forms
const (
	DefaultCountry      = "India"
	DefaultPaymentTerms = "30"
)

var (
	codePattern    = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)
	phonePattern   = regexp.MustCompile(`^[\d\s\-\(\)\+]+$`)
	gstPattern     = regexp.MustCompile(`^[0-9A-Z]{15}$`)
	pincodePattern = regexp.MustCompile(`^\d{6}$`)
	termsPattern   = regexp.MustCompile(`^\d{1,3}$`)
)

// Profile is the contact and tax information shared by customers and suppliers
type Profile struct {
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

// normalize trims every field, applies defaults and validates the result
func (p Profile) normalize() (Profile, error) {
	p.CompanyName = strings.TrimSpace(p.CompanyName)
	p.ContactPerson = strings.TrimSpace(p.ContactPerson)
	p.Email = strings.ToLower(strings.TrimSpace(p.Email))
	p.Phone = strings.TrimSpace(p.Phone)
	p.GSTNumber = strings.ToUpper(strings.TrimSpace(p.GSTNumber))
	p.Address = strings.TrimSpace(p.Address)
	p.City = strings.TrimSpace(p.City)
	p.State = strings.TrimSpace(p.State)
	p.Country = strings.TrimSpace(p.Country)
	p.Pincode = strings.TrimSpace(p.Pincode)
	p.PaymentTerms = strings.TrimSpace(p.PaymentTerms)

	if p.Country == "" {
		p.Country = DefaultCountry
	}
	if p.PaymentTerms == "" {
		p.PaymentTerms = DefaultPaymentTerms
	}

	if p.CompanyName == "" {
		return p, shared.NewDomainError("INVALID_NAME", "Company name cannot be empty")
	}
	if len(p.CompanyName) > 200 {
		return p, shared.NewDomainError("INVALID_NAME", "Company name cannot exceed 200 characters")
	}
	if p.Email != "" {
		if len(p.Email) > 200 {
			return p, shared.NewDomainError("INVALID_EMAIL", "Email cannot exceed 200 characters")
		}
		if _, err := mail.ParseAddress(p.Email); err != nil {
			return p, shared.NewDomainError("INVALID_EMAIL", "Invalid email format")
		}
	}
	if p.Phone != "" && (len(p.Phone) > 50 || !phonePattern.MatchString(p.Phone)) {
		return p, shared.NewDomainError("INVALID_PHONE", "Invalid phone number format")
	}
	if p.GSTNumber != "" && !gstPattern.MatchString(p.GSTNumber) {
		return p, shared.NewDomainError("INVALID_GST_NUMBER", "GST number must be 15 letters or digits")
	}
	if p.Pincode != "" && p.Country == DefaultCountry && !pincodePattern.MatchString(p.Pincode) {
		return p, shared.NewDomainError("INVALID_PINCODE", "Pincode must be 6 digits")
	}
	if !termsPattern.MatchString(p.PaymentTerms) {
		return p, shared.NewDomainError("INVALID_PAYMENT_TERMS", "Payment terms must be a number of days")
	}
	return p, nil
}

func normalizeCode(kind, code string) (string, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return "", shared.NewDomainError("INVALID_CODE", kind+" code cannot be empty")
	}
	if len(code) > 50 {
		return "", shared.NewDomainError("INVALID_CODE", kind+" code cannot exceed 50 characters")
	}
	if !codePattern.MatchString(code) {
		return "", shared.NewDomainError("INVALID_CODE", kind+" code can only contain letters, numbers, underscores, and hyphens")
	}
	return code, nil
}
