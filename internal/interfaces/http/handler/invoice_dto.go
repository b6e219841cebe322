package handler

import (
	"github.com/google/uuid"
	invoiceapp "github.com/opsease/backend/internal/application/invoice"
	"github.com/shopspring/decimal"
)

// InvoiceItemRequest is one billed line. Amount defaults to quantity x unitPrice.
type InvoiceItemRequest struct {
	Description string          `json:"description" binding:"required,max=500" example:"Steel rods 12mm"`
	Quantity    decimal.Decimal `json:"quantity" binding:"decimal_gt0" swaggertype:"string" example:"10"`
	UnitPrice   decimal.Decimal `json:"unitPrice" binding:"decimal_gte0" swaggertype:"string" example:"500.00"`
	Amount      decimal.Decimal `json:"amount" binding:"decimal_gte0" swaggertype:"string" example:"5000.00"`
}

func toItemInputs(items []InvoiceItemRequest) []invoiceapp.ItemInput {
	if items == nil {
		return nil
	}
	out := make([]invoiceapp.ItemInput, len(items))
	for i, it := range items {
		out[i] = invoiceapp.ItemInput{
			Description: it.Description,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
			Amount:      it.Amount,
		}
	}
	return out
}

// CreateInvoiceRequest represents a request to create an invoice
// @Description Request body for creating an invoice. A blank invoiceNumber is generated.
type CreateInvoiceRequest struct {
	InvoiceNumber string               `json:"invoiceNumber" binding:"max=50" example:"SI00000001"`
	InvoiceType   string               `json:"invoiceType" binding:"omitempty,oneof=sales_invoice purchase_invoice" example:"sales_invoice"`
	OrderID       *string              `json:"orderId" binding:"omitempty,uuid"`
	CustomerID    *string              `json:"customerId" binding:"omitempty,uuid"`
	SupplierID    *string              `json:"supplierId" binding:"omitempty,uuid"`
	BuyerName     string               `json:"buyerName" binding:"max=200" example:"Sharma Traders"`
	BuyerAddress  string               `json:"buyerAddress" binding:"max=500" example:"12 MG Road, Pune"`
	BuyerGST      string               `json:"buyerGst" binding:"max=20" example:"27AAPFU0939F1ZV"`
	BuyerPhone    string               `json:"buyerPhone" binding:"max=20" example:"9876543210"`
	BuyerEmail    string               `json:"buyerEmail" binding:"omitempty,email,max=200" example:"accounts@sharma.in"`
	Items         []InvoiceItemRequest `json:"items" binding:"required,min=1,dive"`
	TaxRate       *string              `json:"taxRate" binding:"omitempty,decimal_gte0" example:"18"`
	ShippingCost  *string              `json:"shippingCost" binding:"omitempty,decimal_gte0" example:"0.00"`
	Discount      *string              `json:"discount" binding:"omitempty,decimal_gte0" example:"0.00"`
	Currency      string               `json:"currency" binding:"omitempty,len=3" example:"INR"`
	InvoiceDate   string               `json:"invoiceDate" binding:"required,date" example:"2024-01-10"`
	DueDate       *string              `json:"dueDate" binding:"omitempty,date" example:"2024-02-09"`
	Status        string               `json:"status" binding:"omitempty,oneof=draft sent paid overdue" example:"sent"`
	PdfURL        string               `json:"pdfUrl" binding:"omitempty,url,max=500"`
}

// UpdateInvoiceRequest represents a partial invoice update. items replaces every line.
// @Description Request body for updating an invoice
type UpdateInvoiceRequest struct {
	OrderID      *string              `json:"orderId" binding:"omitempty,uuid"`
	BuyerName    *string              `json:"buyerName" binding:"omitempty,min=1,max=200"`
	BuyerAddress *string              `json:"buyerAddress" binding:"omitempty,max=500"`
	BuyerGST     *string              `json:"buyerGst" binding:"omitempty,max=20"`
	BuyerPhone   *string              `json:"buyerPhone" binding:"omitempty,max=20"`
	BuyerEmail   *string              `json:"buyerEmail" binding:"omitempty,email,max=200"`
	Items        []InvoiceItemRequest `json:"items" binding:"omitempty,min=1,dive"`
	TaxRate      *string              `json:"taxRate" binding:"omitempty,decimal_gte0"`
	ShippingCost *string              `json:"shippingCost" binding:"omitempty,decimal_gte0"`
	Discount     *string              `json:"discount" binding:"omitempty,decimal_gte0"`
	Currency     *string              `json:"currency" binding:"omitempty,len=3"`
	InvoiceDate  *string              `json:"invoiceDate" binding:"omitempty,date"`
	DueDate      *string              `json:"dueDate" binding:"omitempty,date"`
	Status       *string              `json:"status" binding:"omitempty,oneof=draft sent paid overdue" example:"paid"`
	PdfURL       *string              `json:"pdfUrl" binding:"omitempty,url,max=500"`
}

// InvoiceListQuery selects a page of invoices
type InvoiceListQuery struct {
	InvoiceType string `form:"invoiceType" binding:"omitempty,oneof=sales_invoice purchase_invoice"`
	Status      string `form:"status" binding:"omitempty,oneof=draft sent paid overdue"`
	Search      string `form:"search" binding:"max=100"`
	Page        int    `form:"page" binding:"omitempty,min=1"`
	PageSize    int    `form:"pageSize" binding:"omitempty,min=1,max=100"`
}

// InvoiceItemResponse is one line of an invoice response
type InvoiceItemResponse struct {
	Description string `json:"description" example:"Steel rods 12mm"`
	Quantity    string `json:"quantity" example:"10"`
	UnitPrice   string `json:"unitPrice" example:"500.00"`
	Amount      string `json:"amount" example:"5000.00"`
}

// InvoiceResponse represents an invoice in API responses
// @Description Invoice with computed totals
type InvoiceResponse struct {
	ID            string                `json:"id"`
	InvoiceNumber string                `json:"invoiceNumber" example:"SI00000001"`
	InvoiceType   string                `json:"invoiceType" example:"sales_invoice"`
	OrderID       *string               `json:"orderId,omitempty"`
	CustomerID    *string               `json:"customerId,omitempty"`
	SupplierID    *string               `json:"supplierId,omitempty"`
	BuyerName     string                `json:"buyerName" example:"Sharma Traders"`
	BuyerAddress  string                `json:"buyerAddress"`
	BuyerGST      string                `json:"buyerGst"`
	BuyerPhone    string                `json:"buyerPhone"`
	BuyerEmail    string                `json:"buyerEmail"`
	Items         []InvoiceItemResponse `json:"items"`
	Subtotal      string                `json:"subtotal" example:"5000.00"`
	TaxRate       string                `json:"taxRate" example:"18.00"`
	TaxAmount     string                `json:"taxAmount" example:"900.00"`
	ShippingCost  string                `json:"shippingCost" example:"0.00"`
	Discount      string                `json:"discount" example:"0.00"`
	TotalAmount   string                `json:"totalAmount" example:"5900.00"`
	Currency      string                `json:"currency" example:"INR"`
	InvoiceDate   string                `json:"invoiceDate" example:"2024-01-10"`
	DueDate       *string               `json:"dueDate,omitempty" example:"2024-02-09"`
	Status        string                `json:"status" example:"sent"`
	PdfURL        string                `json:"pdfUrl,omitempty"`
	Version       int                   `json:"version" example:"1"`
	CreatedAt     string                `json:"createdAt"`
	UpdatedAt     string                `json:"updatedAt"`
}

func uuidString(id *uuid.UUID) *string {
	if id == nil {
		return nil
	}
	s := id.String()
	return &s
}

func parseUUIDPtr(s *string) (*uuid.UUID, error) {
	if s == nil || *s == "" {
		return nil, nil
	}
	id, err := uuid.Parse(*s)
	if err != nil {
		return nil, err
	}
	return &id, nil
}

func toInvoiceResponse(inv *invoiceapp.InvoiceResponse) InvoiceResponse {
	items := make([]InvoiceItemResponse, len(inv.Items))
	for i, it := range inv.Items {
		items[i] = InvoiceItemResponse{
			Description: it.Description,
			Quantity:    it.Quantity.String(),
			UnitPrice:   money(it.UnitPrice),
			Amount:      money(it.Amount),
		}
	}
	return InvoiceResponse{
		ID:            inv.ID.String(),
		InvoiceNumber: inv.InvoiceNumber,
		InvoiceType:   inv.InvoiceType,
		OrderID:       uuidString(inv.OrderID),
		CustomerID:    uuidString(inv.CustomerID),
		SupplierID:    uuidString(inv.SupplierID),
		BuyerName:     inv.BuyerName,
		BuyerAddress:  inv.BuyerAddress,
		BuyerGST:      inv.BuyerGST,
		BuyerPhone:    inv.BuyerPhone,
		BuyerEmail:    inv.BuyerEmail,
		Items:         items,
		Subtotal:      money(inv.Subtotal),
		TaxRate:       money(inv.TaxRate),
		TaxAmount:     money(inv.TaxAmount),
		ShippingCost:  money(inv.ShippingCost),
		Discount:      money(inv.Discount),
		TotalAmount:   money(inv.TotalAmount),
		Currency:      inv.Currency,
		InvoiceDate:   formatDate(inv.InvoiceDate),
		DueDate:       formatDatePtr(inv.DueDate),
		Status:        inv.Status,
		PdfURL:        inv.PdfURL,
		Version:       inv.Version,
		CreatedAt:     formatTimestamp(inv.CreatedAt),
		UpdatedAt:     formatTimestamp(inv.UpdatedAt),
	}
}

func toInvoiceResponses(invoices []invoiceapp.InvoiceResponse) []InvoiceResponse {
	out := make([]InvoiceResponse, len(invoices))
	for i := range invoices {
		out[i] = toInvoiceResponse(&invoices[i])
	}
	return out
}
