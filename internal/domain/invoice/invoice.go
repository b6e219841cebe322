// Package invoice models GST sales and purchase invoices. Creating an invoice
// and marking it paid are the two moments that move a party's ledger.
package invoice

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/opsease/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// InvoiceType distinguishes what we bill from what we are billed
type InvoiceType string

const (
	InvoiceTypeSales    InvoiceType = "sales_invoice"
	InvoiceTypePurchase InvoiceType = "purchase_invoice"
)

// String returns the string representation of InvoiceType
func (t InvoiceType) String() string {
	return string(t)
}

// IsValid returns true if the invoice type is valid
func (t InvoiceType) IsValid() bool {
	switch t {
	case InvoiceTypeSales, InvoiceTypePurchase:
		return true
	}
	return false
}

// IsSales returns true for sales invoices
func (t InvoiceType) IsSales() bool {
	return t == InvoiceTypeSales
}

// Prefix returns the invoice number prefix (SI or PI)
func (t InvoiceType) Prefix() string {
	if t == InvoiceTypePurchase {
		return "PI"
	}
	return "SI"
}

// Label returns the human readable name used in ledger descriptions
func (t InvoiceType) Label() string {
	if t == InvoiceTypePurchase {
		return "Purchase Invoice"
	}
	return "Sales Invoice"
}

// Status is the lifecycle state of an invoice
type Status string

const (
	StatusDraft   Status = "draft"
	StatusSent    Status = "sent"
	StatusPaid    Status = "paid"
	StatusOverdue Status = "overdue"
)

// String returns the string representation of Status
func (s Status) String() string {
	return string(s)
}

// IsValid returns true if the status is valid
func (s Status) IsValid() bool {
	switch s {
	case StatusDraft, StatusSent, StatusPaid, StatusOverdue:
		return true
	}
	return false
}

// DefaultCurrency is used when an invoice does not name one
const DefaultCurrency = "INR"

var hundred = decimal.NewFromInt(100)

// LineItem is one billed line. Amount defaults to Quantity x UnitPrice.
type LineItem struct {
	Description string          `json:"description"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unitPrice"`
	Amount      decimal.Decimal `json:"amount"`
}

// Normalize validates the item and fills in a missing amount
func (li LineItem) Normalize() (LineItem, error) {
	li.Description = strings.TrimSpace(li.Description)
	if li.Description == "" {
		return li, shared.NewDomainError("INVALID_ITEM", "Item description cannot be empty")
	}
	if li.Quantity.IsNegative() {
		return li, shared.NewDomainError("INVALID_ITEM", "Item quantity cannot be negative")
	}
	if li.UnitPrice.IsNegative() {
		return li, shared.NewDomainError("INVALID_ITEM", "Item unit price cannot be negative")
	}
	if li.Amount.IsZero() {
		li.Amount = li.Quantity.Mul(li.UnitPrice).Round(2)
	}
	if li.Amount.IsNegative() {
		return li, shared.NewDomainError("INVALID_ITEM", "Item amount cannot be negative")
	}
	if !shared.IsWholeCents(li.Amount) {
		return li, shared.NewDomainError("INVALID_ITEM", "Item amount cannot have more than 2 decimal places")
	}
	return li, nil
}

// Charges are the invoice-level adjustments applied on top of the items
type Charges struct {
	TaxRate      decimal.Decimal
	ShippingCost decimal.Decimal
	Discount     decimal.Decimal
}

func (c Charges) validate() error {
	if c.TaxRate.IsNegative() || c.TaxRate.GreaterThan(hundred) {
		return shared.NewDomainError("INVALID_TAX_RATE", "Tax rate must be between 0 and 100")
	}
	if !shared.IsWholeCents(c.TaxRate) {
		return shared.NewDomainError("INVALID_TAX_RATE", "Tax rate cannot have more than 2 decimal places")
	}
	if c.ShippingCost.IsNegative() || !shared.IsWholeCents(c.ShippingCost) {
		return shared.NewDomainError("INVALID_SHIPPING_COST", "Shipping cost must be a non-negative amount in whole cents")
	}
	if c.Discount.IsNegative() || !shared.IsWholeCents(c.Discount) {
		return shared.NewDomainError("INVALID_DISCOUNT", "Discount must be a non-negative amount in whole cents")
	}
	return nil
}

// Party identifies the counterparty printed on the invoice
type Party struct {
	Name       string
	Address    string
	GST        string
	Phone      string
	Email      string
	CustomerID *uuid.UUID
	SupplierID *uuid.UUID
}

// Invoice is the aggregate root for a GST invoice
type Invoice struct {
	shared.UserAggregateRoot
	InvoiceNumber string
	InvoiceType   InvoiceType
	OrderID       *uuid.UUID
	CustomerID    *uuid.UUID
	SupplierID    *uuid.UUID
	BuyerName     string
	BuyerAddress  string
	BuyerGST      string
	BuyerPhone    string
	BuyerEmail    string
	Items         []LineItem
	Subtotal      decimal.Decimal
	TaxRate       decimal.Decimal
	TaxAmount     decimal.Decimal
	ShippingCost  decimal.Decimal
	Discount      decimal.Decimal
	TotalAmount   decimal.Decimal
	Currency      string
	InvoiceDate   time.Time
	DueDate       *time.Time
	Status        Status
	PdfURL        string
}

// Input carries the fields of a new invoice
type Input struct {
	UserID        string
	InvoiceNumber string
	InvoiceType   InvoiceType
	OrderID       *uuid.UUID
	Party         Party
	Items         []LineItem
	Charges       Charges
	Currency      string
	InvoiceDate   time.Time
	DueDate       *time.Time
	Status        Status
	PdfURL        string
}

// NewInvoice validates input, computes totals and records InvoiceIssuedEvent
func NewInvoice(input Input) (*Invoice, error) {
	if strings.TrimSpace(input.UserID) == "" {
		return nil, shared.NewDomainError("INVALID_USER", "User ID cannot be empty")
	}
	number := strings.TrimSpace(input.InvoiceNumber)
	if number == "" {
		return nil, shared.NewDomainError("INVALID_INVOICE_NUMBER", "Invoice number cannot be empty")
	}
	if len(number) > 50 {
		return nil, shared.NewDomainError("INVALID_INVOICE_NUMBER", "Invoice number cannot exceed 50 characters")
	}
	invoiceType := input.InvoiceType
	if invoiceType == "" {
		invoiceType = InvoiceTypeSales
	}
	if !invoiceType.IsValid() {
		return nil, shared.NewDomainError("INVALID_INVOICE_TYPE", "Invoice type must be sales_invoice or purchase_invoice")
	}
	if input.InvoiceDate.IsZero() {
		return nil, shared.NewDomainError("INVALID_INVOICE_DATE", "Invoice date is required")
	}
	status := input.Status
	if status == "" {
		status = StatusDraft
	}
	if !status.IsValid() {
		return nil, shared.NewDomainError("INVALID_STATUS", fmt.Sprintf("Invalid invoice status: %s", status))
	}
	currency := strings.ToUpper(strings.TrimSpace(input.Currency))
	if currency == "" {
		currency = DefaultCurrency
	}

	inv := &Invoice{
		UserAggregateRoot: shared.NewUserAggregateRoot(input.UserID),
		InvoiceNumber:     number,
		InvoiceType:       invoiceType,
		OrderID:           input.OrderID,
		Currency:          currency,
		InvoiceDate:       shared.TruncateToDate(input.InvoiceDate),
		Status:            status,
		PdfURL:            strings.TrimSpace(input.PdfURL),
	}
	if err := inv.setParty(input.Party); err != nil {
		return nil, err
	}
	if err := inv.SetDueDate(input.DueDate); err != nil {
		return nil, err
	}
	if err := inv.price(input.Items, input.Charges); err != nil {
		return nil, err
	}

	inv.AddDomainEvent(NewInvoiceIssuedEvent(inv))

	return inv, nil
}

func (i *Invoice) setParty(p Party) error {
	name := strings.TrimSpace(p.Name)
	if name == "" {
		return shared.NewDomainError("INVALID_BUYER_NAME", "Buyer name cannot be empty")
	}
	if len(name) > 200 {
		return shared.NewDomainError("INVALID_BUYER_NAME", "Buyer name cannot exceed 200 characters")
	}
	i.BuyerName = name
	i.BuyerAddress = strings.TrimSpace(p.Address)
	i.BuyerGST = strings.ToUpper(strings.TrimSpace(p.GST))
	i.BuyerPhone = strings.TrimSpace(p.Phone)
	i.BuyerEmail = strings.ToLower(strings.TrimSpace(p.Email))
	i.CustomerID = p.CustomerID
	i.SupplierID = p.SupplierID
	return nil
}

// SetDueDate sets the due date, which may not precede the invoice date
func (i *Invoice) SetDueDate(due *time.Time) error {
	if due == nil {
		i.DueDate = nil
		return nil
	}
	d := shared.TruncateToDate(*due)
	if d.Before(i.InvoiceDate) {
		return shared.NewDomainError("INVALID_DUE_DATE", "Due date cannot be before the invoice date")
	}
	i.DueDate = &d
	return nil
}

// price replaces items and charges and recomputes every total
func (i *Invoice) price(items []LineItem, charges Charges) error {
	if len(items) == 0 {
		return shared.NewDomainError("INVALID_ITEMS", "Invoice must have at least one item")
	}
	if err := charges.validate(); err != nil {
		return err
	}
	normalized := make([]LineItem, len(items))
	for idx, item := range items {
		n, err := item.Normalize()
		if err != nil {
			return err
		}
		normalized[idx] = n
	}

	totals := ComputeTotals(normalized, charges)
	if !totals.Total.IsPositive() {
		return shared.NewDomainError("INVALID_AMOUNT", "Invoice total must be positive")
	}

	i.Items = normalized
	i.TaxRate = charges.TaxRate
	i.ShippingCost = charges.ShippingCost
	i.Discount = charges.Discount
	i.Subtotal = totals.Subtotal
	i.TaxAmount = totals.TaxAmount
	i.TotalAmount = totals.Total
	return nil
}

// Totals are the computed money fields of an invoice
type Totals struct {
	Subtotal  decimal.Decimal
	TaxAmount decimal.Decimal
	Total     decimal.Decimal
}

// ComputeTotals sums already normalized items and applies the charges
func ComputeTotals(items []LineItem, charges Charges) Totals {
	subtotal := decimal.Zero
	for _, item := range items {
		subtotal = subtotal.Add(item.Amount)
	}
	tax := subtotal.Mul(charges.TaxRate).Div(hundred).Round(2)
	return Totals{
		Subtotal:  subtotal,
		TaxAmount: tax,
		Total:     subtotal.Add(tax).Add(charges.ShippingCost).Sub(charges.Discount),
	}
}

// Charges returns the current invoice-level adjustments
func (i *Invoice) Charges() Charges {
	return Charges{TaxRate: i.TaxRate, ShippingCost: i.ShippingCost, Discount: i.Discount}
}

// Party returns the current counterparty details
func (i *Invoice) Party() Party {
	return Party{
		Name:       i.BuyerName,
		Address:    i.BuyerAddress,
		GST:        i.BuyerGST,
		Phone:      i.BuyerPhone,
		Email:      i.BuyerEmail,
		CustomerID: i.CustomerID,
		SupplierID: i.SupplierID,
	}
}

// Update is a partial change; nil fields are left untouched
type Update struct {
	OrderID     *uuid.UUID
	Party       *Party
	Items       []LineItem
	TaxRate     *decimal.Decimal
	Shipping    *decimal.Decimal
	Discount    *decimal.Decimal
	Currency    *string
	InvoiceDate *time.Time
	DueDate     *time.Time
	Status      *Status
	PdfURL      *string
}

// Apply applies a partial update. When the update moves the invoice into
// paid, an InvoicePaidEvent is recorded from the invoice as it stood before
// any other field of the same update was applied.
func (i *Invoice) Apply(u Update) error {
	if u.Status != nil && !u.Status.IsValid() {
		return shared.NewDomainError("INVALID_STATUS", fmt.Sprintf("Invalid invoice status: %s", *u.Status))
	}

	var paid *InvoicePaidEvent
	if u.Status != nil && *u.Status == StatusPaid && i.Status != StatusPaid {
		paid = NewInvoicePaidEvent(i)
	}

	if u.Party != nil {
		if err := i.setParty(*u.Party); err != nil {
			return err
		}
	}
	if u.OrderID != nil {
		i.OrderID = u.OrderID
	}
	if u.InvoiceDate != nil {
		if u.InvoiceDate.IsZero() {
			return shared.NewDomainError("INVALID_INVOICE_DATE", "Invoice date is required")
		}
		i.InvoiceDate = shared.TruncateToDate(*u.InvoiceDate)
	}
	if u.DueDate != nil || u.InvoiceDate != nil {
		due := i.DueDate
		if u.DueDate != nil {
			due = u.DueDate
		}
		if err := i.SetDueDate(due); err != nil {
			return err
		}
	}
	if u.Currency != nil {
		c := strings.ToUpper(strings.TrimSpace(*u.Currency))
		if c == "" {
			c = DefaultCurrency
		}
		i.Currency = c
	}
	if u.PdfURL != nil {
		i.PdfURL = strings.TrimSpace(*u.PdfURL)
	}

	if u.Items != nil || u.TaxRate != nil || u.Shipping != nil || u.Discount != nil {
		items := i.Items
		if u.Items != nil {
			items = u.Items
		}
		charges := i.Charges()
		if u.TaxRate != nil {
			charges.TaxRate = *u.TaxRate
		}
		if u.Shipping != nil {
			charges.ShippingCost = *u.Shipping
		}
		if u.Discount != nil {
			charges.Discount = *u.Discount
		}
		if err := i.price(items, charges); err != nil {
			return err
		}
	}

	if u.Status != nil {
		i.Status = *u.Status
	}

	i.IncrementVersion()
	if paid != nil {
		i.AddDomainEvent(paid)
	}
	return nil
}

// IsPaid returns true once the invoice has been settled
func (i *Invoice) IsPaid() bool {
	return i.Status == StatusPaid
}

// ItemDescriptions returns the description of every line, in order
func (i *Invoice) ItemDescriptions() []string {
	out := make([]string, len(i.Items))
	for idx, item := range i.Items {
		out[idx] = item.Description
	}
	return out
}
