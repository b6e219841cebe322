package invoice

import (
	"time"

	"github.com/google/uuid"
	"github.com/opsease/backend/internal/domain/invoice"
	"github.com/shopspring/decimal"
)

// ItemInput is one line of a create or update request
type ItemInput struct {
	Description string
	Quantity    decimal.Decimal
	UnitPrice   decimal.Decimal
	Amount      decimal.Decimal
}

// CreateInvoiceRequest creates an invoice. InvoiceNumber may be blank, in
// which case the next number of the type's sequence is assigned. BuyerName
// may be blank when CustomerID or SupplierID points at a partner.
type CreateInvoiceRequest struct {
	InvoiceNumber string
	InvoiceType   string
	OrderID       *uuid.UUID
	CustomerID    *uuid.UUID
	SupplierID    *uuid.UUID
	BuyerName     string
	BuyerAddress  string
	BuyerGST      string
	BuyerPhone    string
	BuyerEmail    string
	Items         []ItemInput
	TaxRate       decimal.Decimal
	ShippingCost  decimal.Decimal
	Discount      decimal.Decimal
	Currency      string
	InvoiceDate   time.Time
	DueDate       *time.Time
	Status        string
	PdfURL        string
}

// UpdateInvoiceRequest is a partial update; nil fields are left unchanged.
// Items replaces every line when non-nil.
type UpdateInvoiceRequest struct {
	OrderID      *uuid.UUID
	BuyerName    *string
	BuyerAddress *string
	BuyerGST     *string
	BuyerPhone   *string
	BuyerEmail   *string
	Items        []ItemInput
	TaxRate      *decimal.Decimal
	ShippingCost *decimal.Decimal
	Discount     *decimal.Decimal
	Currency     *string
	InvoiceDate  *time.Time
	DueDate      *time.Time
	Status       *string
	PdfURL       *string
}

func (r UpdateInvoiceRequest) touchesParty() bool {
	return r.BuyerName != nil || r.BuyerAddress != nil || r.BuyerGST != nil || r.BuyerPhone != nil || r.BuyerEmail != nil
}

// ListFilter narrows an invoice listing
type ListFilter struct {
	InvoiceType string
	Status      string
	Search      string
	Page        int
	PageSize    int
}

// InvoiceResponse is an invoice as returned to callers
type InvoiceResponse struct {
	ID            uuid.UUID
	InvoiceNumber string
	InvoiceType   string
	OrderID       *uuid.UUID
	CustomerID    *uuid.UUID
	SupplierID    *uuid.UUID
	BuyerName     string
	BuyerAddress  string
	BuyerGST      string
	BuyerPhone    string
	BuyerEmail    string
	Items         []invoice.LineItem
	Subtotal      decimal.Decimal
	TaxRate       decimal.Decimal
	TaxAmount     decimal.Decimal
	ShippingCost  decimal.Decimal
	Discount      decimal.Decimal
	TotalAmount   decimal.Decimal
	Currency      string
	InvoiceDate   time.Time
	DueDate       *time.Time
	Status        string
	PdfURL        string
	Version       int
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// ToInvoiceResponse converts a domain invoice
func ToInvoiceResponse(inv *invoice.Invoice) InvoiceResponse {
	return InvoiceResponse{
		ID:            inv.ID,
		InvoiceNumber: inv.InvoiceNumber,
		InvoiceType:   string(inv.InvoiceType),
		OrderID:       inv.OrderID,
		CustomerID:    inv.CustomerID,
		SupplierID:    inv.SupplierID,
		BuyerName:     inv.BuyerName,
		BuyerAddress:  inv.BuyerAddress,
		BuyerGST:      inv.BuyerGST,
		BuyerPhone:    inv.BuyerPhone,
		BuyerEmail:    inv.BuyerEmail,
		Items:         inv.Items,
		Subtotal:      inv.Subtotal,
		TaxRate:       inv.TaxRate,
		TaxAmount:     inv.TaxAmount,
		ShippingCost:  inv.ShippingCost,
		Discount:      inv.Discount,
		TotalAmount:   inv.TotalAmount,
		Currency:      inv.Currency,
		InvoiceDate:   inv.InvoiceDate,
		DueDate:       inv.DueDate,
		Status:        string(inv.Status),
		PdfURL:        inv.PdfURL,
		Version:       inv.Version,
		CreatedAt:     inv.CreatedAt,
		UpdatedAt:     inv.UpdatedAt,
	}
}

// ToInvoiceResponses converts a slice of domain invoices
func ToInvoiceResponses(invoices []invoice.Invoice) []InvoiceResponse {
	out := make([]InvoiceResponse, len(invoices))
	for i := range invoices {
		out[i] = ToInvoiceResponse(&invoices[i])
	}
	return out
}

func toLineItems(items []ItemInput) []invoice.LineItem {
	if items == nil {
		return nil
	}
	out := make([]invoice.LineItem, len(items))
	for i, it := range items {
		out[i] = invoice.LineItem{
			Description: it.Description,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
			Amount:      it.Amount,
		}
	}
	return out
}
