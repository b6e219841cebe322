package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/opsease/backend/internal/domain/invoice"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// InvoiceModel is the persistence model for the Invoice aggregate root.
// Line items are stored as a JSON array in the items column.
type InvoiceModel struct {
	UserAggregateModel
	InvoiceNumber string              `gorm:"type:varchar(50);not null;index"`
	InvoiceType   invoice.InvoiceType `gorm:"type:varchar(20);not null;default:'sales_invoice';index"`
	OrderID       *uuid.UUID          `gorm:"type:uuid"`
	CustomerID    *uuid.UUID          `gorm:"type:uuid;index"`
	SupplierID    *uuid.UUID          `gorm:"type:uuid;index"`
	BuyerName     string              `gorm:"type:varchar(200);not null"`
	BuyerAddress  string              `gorm:"type:text"`
	BuyerGST      string              `gorm:"column:buyer_gst;type:varchar(20)"`
	BuyerPhone    string              `gorm:"type:varchar(50)"`
	BuyerEmail    string              `gorm:"type:varchar(200)"`
	ItemsJSON     string              `gorm:"column:items;type:jsonb;not null;default:'[]'"`
	Subtotal      decimal.Decimal     `gorm:"type:decimal(18,2);not null;default:0"`
	TaxRate       decimal.Decimal     `gorm:"type:decimal(5,2);not null;default:0"`
	TaxAmount     decimal.Decimal     `gorm:"type:decimal(18,2);not null;default:0"`
	ShippingCost  decimal.Decimal     `gorm:"type:decimal(18,2);not null;default:0"`
	Discount      decimal.Decimal     `gorm:"type:decimal(18,2);not null;default:0"`
	TotalAmount   decimal.Decimal     `gorm:"type:decimal(18,2);not null"`
	Currency      string              `gorm:"type:varchar(3);not null;default:'INR'"`
	InvoiceDate   time.Time           `gorm:"type:date;not null"`
	DueDate       *time.Time          `gorm:"type:date"`
	Status        invoice.Status      `gorm:"type:varchar(20);not null;default:'draft';index"`
	PdfURL        string              `gorm:"column:pdf_url;type:text"`
}

// TableName returns the table name for GORM
func (InvoiceModel) TableName() string {
	return "invoices"
}

// ToDomain converts the persistence model to a domain Invoice.
// A corrupt items document is logged and yields an empty item list.
func (m *InvoiceModel) ToDomain() *invoice.Invoice {
	inv := &invoice.Invoice{
		InvoiceNumber: m.InvoiceNumber,
		InvoiceType:   m.InvoiceType,
		OrderID:       m.OrderID,
		CustomerID:    m.CustomerID,
		SupplierID:    m.SupplierID,
		BuyerName:     m.BuyerName,
		BuyerAddress:  m.BuyerAddress,
		BuyerGST:      m.BuyerGST,
		BuyerPhone:    m.BuyerPhone,
		BuyerEmail:    m.BuyerEmail,
		Items:         make([]invoice.LineItem, 0),
		Subtotal:      m.Subtotal,
		TaxRate:       m.TaxRate,
		TaxAmount:     m.TaxAmount,
		ShippingCost:  m.ShippingCost,
		Discount:      m.Discount,
		TotalAmount:   m.TotalAmount,
		Currency:      m.Currency,
		InvoiceDate:   m.InvoiceDate.UTC(),
		Status:        m.Status,
		PdfURL:        m.PdfURL,
	}
	m.loadRoot(&inv.UserAggregateRoot)
	if m.DueDate != nil {
		due := m.DueDate.UTC()
		inv.DueDate = &due
	}

	if m.ItemsJSON != "" && m.ItemsJSON != "[]" {
		var items []invoice.LineItem
		if err := json.Unmarshal([]byte(m.ItemsJSON), &items); err != nil {
			zap.L().Named("invoice.models").Warn("failed to parse items JSON",
				zap.String("invoice_id", m.ID.String()),
				zap.String("raw_json", m.ItemsJSON),
				zap.Error(err))
		} else {
			inv.Items = items
		}
	}
	return inv
}

// FromDomain populates the persistence model from a domain Invoice
func (m *InvoiceModel) FromDomain(inv *invoice.Invoice) {
	m.storeRoot(inv.UserAggregateRoot)
	m.InvoiceNumber = inv.InvoiceNumber
	m.InvoiceType = inv.InvoiceType
	m.OrderID = inv.OrderID
	m.CustomerID = inv.CustomerID
	m.SupplierID = inv.SupplierID
	m.BuyerName = inv.BuyerName
	m.BuyerAddress = inv.BuyerAddress
	m.BuyerGST = inv.BuyerGST
	m.BuyerPhone = inv.BuyerPhone
	m.BuyerEmail = inv.BuyerEmail
	m.Subtotal = inv.Subtotal
	m.TaxRate = inv.TaxRate
	m.TaxAmount = inv.TaxAmount
	m.ShippingCost = inv.ShippingCost
	m.Discount = inv.Discount
	m.TotalAmount = inv.TotalAmount
	m.Currency = inv.Currency
	m.InvoiceDate = inv.InvoiceDate
	m.DueDate = inv.DueDate
	m.Status = inv.Status
	m.PdfURL = inv.PdfURL

	m.ItemsJSON = "[]"
	if len(inv.Items) > 0 {
		if raw, err := json.Marshal(inv.Items); err == nil {
			m.ItemsJSON = string(raw)
		}
	}
}

// InvoiceModelFromDomain creates a new persistence model from a domain Invoice
func InvoiceModelFromDomain(inv *invoice.Invoice) *InvoiceModel {
	m := &InvoiceModel{}
	m.FromDomain(inv)
	return m
}
