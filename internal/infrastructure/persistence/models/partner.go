package models

import (
	"github.com/opsease/backend/internal/domain/partner"
	"github.com/shopspring/decimal"
)

// ProfileColumns are the contact and tax columns shared by customers and suppliers
type ProfileColumns struct {
	CompanyName   string `gorm:"type:varchar(200);not null"`
	ContactPerson string `gorm:"type:varchar(100)"`
	Email         string `gorm:"type:varchar(200);index"`
	Phone         string `gorm:"type:varchar(50);index"`
	GSTNumber     string `gorm:"column:gst_number;type:varchar(20)"`
	Address       string `gorm:"type:text"`
	City          string `gorm:"type:varchar(100)"`
	State         string `gorm:"type:varchar(100)"`
	Country       string `gorm:"type:varchar(100);default:'India'"`
	Pincode       string `gorm:"type:varchar(10)"`
	PaymentTerms  string `gorm:"type:varchar(10);default:'30'"`
}

func (c ProfileColumns) toDomain() partner.Profile {
	return partner.Profile{
		CompanyName:   c.CompanyName,
		ContactPerson: c.ContactPerson,
		Email:         c.Email,
		Phone:         c.Phone,
		GSTNumber:     c.GSTNumber,
		Address:       c.Address,
		City:          c.City,
		State:         c.State,
		Country:       c.Country,
		Pincode:       c.Pincode,
		PaymentTerms:  c.PaymentTerms,
	}
}

func profileColumns(p partner.Profile) ProfileColumns {
	return ProfileColumns{
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

// CustomerModel is the persistence model for the Customer domain entity.
type CustomerModel struct {
	UserAggregateModel
	Code        string          `gorm:"column:customer_code;type:varchar(50);not null;index"`
	Profile     ProfileColumns  `gorm:"embedded"`
	CreditLimit decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	IsActive    bool            `gorm:"not null"`
}

// TableName returns the table name for GORM
func (CustomerModel) TableName() string {
	return "customers"
}

// ToDomain converts the persistence model to a domain Customer entity.
func (m *CustomerModel) ToDomain() *partner.Customer {
	c := &partner.Customer{
		Code:        m.Code,
		Profile:     m.Profile.toDomain(),
		CreditLimit: m.CreditLimit,
		IsActive:    m.IsActive,
	}
	m.loadRoot(&c.UserAggregateRoot)
	return c
}

// FromDomain populates the persistence model from a domain Customer entity.
func (m *CustomerModel) FromDomain(c *partner.Customer) {
	m.storeRoot(c.UserAggregateRoot)
	m.Code = c.Code
	m.Profile = profileColumns(c.Profile)
	m.CreditLimit = c.CreditLimit
	m.IsActive = c.IsActive
}

// CustomerModelFromDomain creates a new persistence model from a domain Customer entity.
func CustomerModelFromDomain(c *partner.Customer) *CustomerModel {
	m := &CustomerModel{}
	m.FromDomain(c)
	return m
}

// SupplierModel is the persistence model for the Supplier domain entity.
type SupplierModel struct {
	UserAggregateModel
	Code     string         `gorm:"column:supplier_code;type:varchar(50);not null;index"`
	Profile  ProfileColumns `gorm:"embedded"`
	Category string         `gorm:"type:varchar(100);index"`
	IsActive bool           `gorm:"not null"`
}

// TableName returns the table name for GORM
func (SupplierModel) TableName() string {
	return "suppliers"
}

// ToDomain converts the persistence model to a domain Supplier entity.
func (m *SupplierModel) ToDomain() *partner.Supplier {
	s := &partner.Supplier{
		Code:     m.Code,
		Profile:  m.Profile.toDomain(),
		Category: m.Category,
		IsActive: m.IsActive,
	}
	m.loadRoot(&s.UserAggregateRoot)
	return s
}

// FromDomain populates the persistence model from a domain Supplier entity.
func (m *SupplierModel) FromDomain(s *partner.Supplier) {
	m.storeRoot(s.UserAggregateRoot)
	m.Code = s.Code
	m.Profile = profileColumns(s.Profile)
	m.Category = s.Category
	m.IsActive = s.IsActive
}

// SupplierModelFromDomain creates a new persistence model from a domain Supplier entity.
func SupplierModelFromDomain(s *partner.Supplier) *SupplierModel {
	m := &SupplierModel{}
	m.FromDomain(s)
	return m
}
