// Package invoice is the application layer for GST invoices. Every write
// runs in one transaction with the ledger postings it triggers.
package invoice

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/opsease/backend/internal/application/ledger"
	"github.com/opsease/backend/internal/domain/invoice"
	"github.com/opsease/backend/internal/domain/partner"
	"github.com/opsease/backend/internal/domain/shared"
	"github.com/opsease/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// maxPartyRetries bounds how often Update re-reads an invoice whose buyer
// was renamed between the unlocked read and taking the party lock
const maxPartyRetries = 3

var errPartyMoved = errors.New("invoice party changed while waiting for lock")

// Service handles invoice operations for one user at a time
type Service struct {
	invoiceRepo  invoice.InvoiceRepository
	customerRepo partner.CustomerRepository
	supplierRepo partner.SupplierRepository
	txManager    shared.TransactionManager
	locker       ledger.PartyLocker
	posting      shared.EventHandler
	publisher    shared.EventPublisher
	logger       *zap.Logger
}

// NewService creates a new invoice Service.
//
// posting receives the invoice events inside the write transaction; it is
// normally a ledger.InvoicePostingHandler. publisher may be nil.
func NewService(
	invoiceRepo invoice.InvoiceRepository,
	customerRepo partner.CustomerRepository,
	supplierRepo partner.SupplierRepository,
	txManager shared.TransactionManager,
	locker ledger.PartyLocker,
	posting shared.EventHandler,
	publisher shared.EventPublisher,
	logger *zap.Logger,
) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		invoiceRepo:  invoiceRepo,
		customerRepo: customerRepo,
		supplierRepo: supplierRepo,
		txManager:    txManager,
		locker:       locker,
		posting:      posting,
		publisher:    publisher,
		logger:       logger,
	}
}

// Create validates the request, assigns a number when none is given, saves
// the invoice and posts its issuance entry.
func (s *Service) Create(ctx context.Context, userID string, req CreateInvoiceRequest) (*InvoiceResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "invoice", "create")
	defer span.End()

	invoiceType := invoice.InvoiceType(req.InvoiceType)
	if invoiceType == "" {
		invoiceType = invoice.InvoiceTypeSales
	}
	if !invoiceType.IsValid() {
		return nil, shared.NewDomainError("INVALID_INVOICE_TYPE", "Invoice type must be sales_invoice or purchase_invoice")
	}

	party, err := s.resolveParty(ctx, userID, req)
	if err != nil {
		return nil, err
	}

	number := strings.TrimSpace(req.InvoiceNumber)
	if number == "" {
		// Generated numbers are read-then-written, so the sequence of one
		// (user, type) is serialized like a party ledger.
		unlockSeq := s.locker.Lock(userID, sequenceLockName(invoiceType))
		defer unlockSeq()

		latest, err := s.invoiceRepo.LatestGeneratedNumber(ctx, userID, invoiceType)
		if err != nil {
			return nil, fmt.Errorf("failed to read invoice sequence: %w", err)
		}
		number = invoice.NextNumber(invoiceType, latest)
	}

	exists, err := s.invoiceRepo.ExistsByNumber(ctx, userID, number)
	if err != nil {
		return nil, fmt.Errorf("failed to check invoice number: %w", err)
	}
	if exists {
		return nil, duplicateNumber(number)
	}

	inv, err := invoice.NewInvoice(invoice.Input{
		UserID:        userID,
		InvoiceNumber: number,
		InvoiceType:   invoiceType,
		OrderID:       req.OrderID,
		Party:         party,
		Items:         toLineItems(req.Items),
		Charges: invoice.Charges{
			TaxRate:      req.TaxRate,
			ShippingCost: req.ShippingCost,
			Discount:     req.Discount,
		},
		Currency:    req.Currency,
		InvoiceDate: req.InvoiceDate,
		DueDate:     req.DueDate,
		Status:      invoice.Status(req.Status),
		PdfURL:      req.PdfURL,
	})
	if err != nil {
		return nil, err
	}

	unlock := s.locker.Lock(userID, inv.BuyerName)
	defer unlock()

	err = s.txManager.Transaction(ctx, func(ctx context.Context) error {
		if err := s.invoiceRepo.Create(ctx, inv); err != nil {
			if errors.Is(err, shared.ErrAlreadyExists) {
				return duplicateNumber(number)
			}
			return fmt.Errorf("failed to save invoice: %w", err)
		}
		return s.dispatch(ctx, inv)
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	telemetry.SetAttributes(span,
		telemetry.SpanAttrInvoiceID, inv.ID.String(),
		telemetry.SpanAttrInvoiceNumber, inv.InvoiceNumber,
		telemetry.SpanAttrAmount, inv.TotalAmount.StringFixed(2),
	)

	s.logger.Info("invoice created",
		zap.String("user_id", userID),
		zap.String("invoice_id", inv.ID.String()),
		zap.String("invoice_number", inv.InvoiceNumber),
		zap.String("total_amount", inv.TotalAmount.StringFixed(2)),
	)

	resp := ToInvoiceResponse(inv)
	return &resp, nil
}

// Update applies a partial change. Moving the invoice into paid for the
// first time posts the payment entry against the party it was billed to.
func (s *Service) Update(ctx context.Context, userID string, id uuid.UUID, req UpdateInvoiceRequest) (*InvoiceResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "invoice", "update",
		telemetry.WithAttribute(telemetry.SpanAttrInvoiceID, id.String()))
	defer span.End()

	for attempt := 0; attempt < maxPartyRetries; attempt++ {
		current, err := s.invoiceRepo.FindByID(ctx, userID, id)
		if err != nil {
			return nil, notFound(err)
		}

		resp, err := s.updateLocked(ctx, userID, id, current.BuyerName, req)
		if errors.Is(err, errPartyMoved) {
			continue
		}
		if err != nil {
			telemetry.RecordError(span, err)
			return nil, err
		}
		return resp, nil
	}
	return nil, shared.ErrConcurrencyConflict
}

func (s *Service) updateLocked(ctx context.Context, userID string, id uuid.UUID, partyName string, req UpdateInvoiceRequest) (*InvoiceResponse, error) {
	unlock := s.locker.Lock(userID, partyName)
	defer unlock()

	var inv *invoice.Invoice
	err := s.txManager.Transaction(ctx, func(ctx context.Context) error {
		var err error
		inv, err = s.invoiceRepo.FindByID(ctx, userID, id)
		if err != nil {
			return notFound(err)
		}
		if inv.BuyerName != partyName {
			return errPartyMoved
		}

		update, err := toDomainUpdate(inv, req)
		if err != nil {
			return err
		}
		if err := inv.Apply(update); err != nil {
			return err
		}
		if err := s.invoiceRepo.Update(ctx, inv); err != nil {
			if errors.Is(err, shared.ErrConcurrencyConflict) {
				return err
			}
			return fmt.Errorf("failed to update invoice: %w", err)
		}
		return s.dispatch(ctx, inv)
	})
	if err != nil {
		return nil, err
	}

	resp := ToInvoiceResponse(inv)
	return &resp, nil
}

// Get returns one invoice
func (s *Service) Get(ctx context.Context, userID string, id uuid.UUID) (*InvoiceResponse, error) {
	inv, err := s.invoiceRepo.FindByID(ctx, userID, id)
	if err != nil {
		return nil, notFound(err)
	}
	resp := ToInvoiceResponse(inv)
	return &resp, nil
}

// List returns a page of invoices, newest first
func (s *Service) List(ctx context.Context, userID string, filter ListFilter) ([]InvoiceResponse, int64, error) {
	if filter.InvoiceType != "" && !invoice.InvoiceType(filter.InvoiceType).IsValid() {
		return nil, 0, shared.NewDomainError("INVALID_INVOICE_TYPE", "Invoice type must be sales_invoice or purchase_invoice")
	}
	if filter.Status != "" && !invoice.Status(filter.Status).IsValid() {
		return nil, 0, shared.NewDomainError("INVALID_STATUS", fmt.Sprintf("Invalid invoice status: %s", filter.Status))
	}

	f := shared.DefaultFilter()
	if filter.Page > 0 {
		f.Page = filter.Page
	}
	if filter.PageSize > 0 {
		f.PageSize = min(filter.PageSize, 100)
	}
	f.Search = strings.TrimSpace(filter.Search)
	if filter.InvoiceType != "" {
		f.Filters["invoice_type"] = filter.InvoiceType
	}
	if filter.Status != "" {
		f.Filters["status"] = filter.Status
	}

	invoices, total, err := s.invoiceRepo.FindAll(ctx, userID, f)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list invoices: %w", err)
	}
	return ToInvoiceResponses(invoices), total, nil
}

// Delete removes an invoice. Ledger entries it produced are kept.
func (s *Service) Delete(ctx context.Context, userID string, id uuid.UUID) error {
	return s.txManager.Transaction(ctx, func(ctx context.Context) error {
		inv, err := s.invoiceRepo.FindByID(ctx, userID, id)
		if err != nil {
			return notFound(err)
		}
		if err := s.invoiceRepo.Delete(ctx, userID, id); err != nil {
			return notFound(err)
		}
		s.publishAfterCommit(ctx, invoice.NewInvoiceDeletedEvent(inv))
		return nil
	})
}

// dispatch hands the invoice's pending events to the posting handler inside
// the current transaction and queues them for publication after commit.
func (s *Service) dispatch(ctx context.Context, inv *invoice.Invoice) error {
	events := inv.GetDomainEvents()
	inv.ClearDomainEvents()

	for _, event := range events {
		if s.posting != nil && handles(s.posting, event.EventType()) {
			if err := s.posting.Handle(ctx, event); err != nil {
				return fmt.Errorf("failed to post ledger entry for %s: %w", event.EventType(), err)
			}
		}
	}
	s.publishAfterCommit(ctx, events...)
	return nil
}

func (s *Service) publishAfterCommit(ctx context.Context, events ...shared.DomainEvent) {
	if s.publisher == nil || len(events) == 0 {
		return
	}
	s.txManager.AfterCommit(ctx, func() {
		if err := s.publisher.Publish(context.WithoutCancel(ctx), events...); err != nil {
			s.logger.Warn("failed to publish invoice events", zap.Error(err))
		}
	})
}

// resolveParty fills the counterparty from the linked customer or supplier
// wherever the request leaves a field blank
func (s *Service) resolveParty(ctx context.Context, userID string, req CreateInvoiceRequest) (invoice.Party, error) {
	party := invoice.Party{
		Name:       req.BuyerName,
		Address:    req.BuyerAddress,
		GST:        req.BuyerGST,
		Phone:      req.BuyerPhone,
		Email:      req.BuyerEmail,
		CustomerID: req.CustomerID,
		SupplierID: req.SupplierID,
	}

	var profile *partner.Profile
	switch {
	case req.CustomerID != nil:
		c, err := s.customerRepo.FindByID(ctx, userID, *req.CustomerID)
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				return party, shared.NewDomainError(shared.CodeNotFound, "Customer not found")
			}
			return party, fmt.Errorf("failed to load customer: %w", err)
		}
		profile = &c.Profile
	case req.SupplierID != nil:
		sup, err := s.supplierRepo.FindByID(ctx, userID, *req.SupplierID)
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				return party, shared.NewDomainError(shared.CodeNotFound, "Supplier not found")
			}
			return party, fmt.Errorf("failed to load supplier: %w", err)
		}
		profile = &sup.Profile
	}
	if profile == nil {
		return party, nil
	}

	party.Name = firstNonBlank(party.Name, profile.CompanyName)
	party.Address = firstNonBlank(party.Address, joinAddress(profile))
	party.GST = firstNonBlank(party.GST, profile.GSTNumber)
	party.Phone = firstNonBlank(party.Phone, profile.Phone)
	party.Email = firstNonBlank(party.Email, profile.Email)
	return party, nil
}

func toDomainUpdate(inv *invoice.Invoice, req UpdateInvoiceRequest) (invoice.Update, error) {
	u := invoice.Update{
		OrderID:     req.OrderID,
		Items:       toLineItems(req.Items),
		TaxRate:     req.TaxRate,
		Shipping:    req.ShippingCost,
		Discount:    req.Discount,
		Currency:    req.Currency,
		InvoiceDate: req.InvoiceDate,
		DueDate:     req.DueDate,
		PdfURL:      req.PdfURL,
	}
	if req.Status != nil {
		status := invoice.Status(*req.Status)
		u.Status = &status
	}
	if req.touchesParty() {
		p := inv.Party()
		setIfPresent(&p.Name, req.BuyerName)
		setIfPresent(&p.Address, req.BuyerAddress)
		setIfPresent(&p.GST, req.BuyerGST)
		setIfPresent(&p.Phone, req.BuyerPhone)
		setIfPresent(&p.Email, req.BuyerEmail)
		u.Party = &p
	}
	return u, nil
}

func handles(h shared.EventHandler, eventType string) bool {
	types := h.EventTypes()
	if len(types) == 0 {
		return true
	}
	for _, t := range types {
		if t == eventType {
			return true
		}
	}
	return false
}

// sequenceLockName is the locker key of an invoice number sequence. The
// leading NUL keeps it from colliding with any real party name.
func sequenceLockName(t invoice.InvoiceType) string {
	return "\x00invoice-seq:" + t.Prefix()
}

func duplicateNumber(number string) error {
	return shared.NewDomainError(shared.CodeAlreadyExists, fmt.Sprintf("Invoice number %s already exists", number))
}

func notFound(err error) error {
	if errors.Is(err, shared.ErrNotFound) {
		return shared.NewDomainError(shared.CodeNotFound, "Invoice not found")
	}
	return err
}

func joinAddress(p *partner.Profile) string {
	var parts []string
	for _, s := range []string{p.Address, p.City, p.State, p.Pincode} {
		if s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, ", ")
}

func firstNonBlank(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

func setIfPresent(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}
