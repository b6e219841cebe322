package ledger

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/opsease/backend/internal/domain/invoice"
	"github.com/opsease/backend/internal/domain/ledger"
	"github.com/opsease/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// InvoicePostingHandler turns invoice events into ledger entries.
//
// It must run inside the transaction that writes the invoice, with the
// party lock already held by the caller. Each trigger posts at most once
// per invoice, keyed by (user, source type, invoice id).
type InvoicePostingHandler struct {
	ledger *Service
	logger *zap.Logger
	today  func() time.Time
}

// NewInvoicePostingHandler creates a new handler for invoice events
func NewInvoicePostingHandler(ledgerService *Service, logger *zap.Logger) *InvoicePostingHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InvoicePostingHandler{
		ledger: ledgerService,
		logger: logger,
		today:  shared.Today,
	}
}

// EventTypes returns the event types this handler is interested in
func (h *InvoicePostingHandler) EventTypes() []string {
	return []string{invoice.EventTypeInvoiceIssued, invoice.EventTypeInvoicePaid}
}

// Handle posts the ledger entry for an invoice event
func (h *InvoicePostingHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	switch e := event.(type) {
	case *invoice.InvoiceIssuedEvent:
		return h.handleIssued(ctx, e)
	case *invoice.InvoicePaidEvent:
		return h.handlePaid(ctx, e)
	default:
		h.logger.Error("unexpected event type",
			zap.Strings("expected", h.EventTypes()),
			zap.String("actual", event.EventType()),
		)
		return fmt.Errorf("unexpected event type: %s", event.EventType())
	}
}

// PartyTypeFor maps an invoice type to the ledger side it affects
func PartyTypeFor(t invoice.InvoiceType) ledger.PartyType {
	if t == invoice.InvoiceTypePurchase {
		return ledger.PartyTypeSupplier
	}
	return ledger.PartyTypeBuyer
}

// IssueEntryTypeFor is the entry type posted when an invoice is created.
// Sales invoices raise what the buyer owes us; purchase invoices raise what
// we owe the supplier.
func IssueEntryTypeFor(t invoice.InvoiceType) ledger.EntryType {
	if t == invoice.InvoiceTypePurchase {
		return ledger.EntryTypeCredit
	}
	return ledger.EntryTypeDebit
}

func (h *InvoicePostingHandler) handleIssued(ctx context.Context, e *invoice.InvoiceIssuedEvent) error {
	items := "Invoice amount"
	if len(e.Items) > 0 {
		items = strings.Join(e.Items, ", ")
	}
	return h.post(ctx, e.UserID(), ledger.SourceTypeInvoiceIssued, e.InvoiceID, ledger.EntryInput{
		PartyName:   e.PartyName,
		PartyType:   PartyTypeFor(e.InvoiceType),
		EntryType:   IssueEntryTypeFor(e.InvoiceType),
		Amount:      e.TotalAmount,
		Description: fmt.Sprintf("%s %s - %s", e.InvoiceType.Label(), e.InvoiceNumber, items),
		Reference:   e.InvoiceNumber,
		EntryDate:   e.InvoiceDate,
	})
}

func (h *InvoicePostingHandler) handlePaid(ctx context.Context, e *invoice.InvoicePaidEvent) error {
	verb := "received for"
	if e.InvoiceType == invoice.InvoiceTypePurchase {
		verb = "made for"
	}
	return h.post(ctx, e.UserID(), ledger.SourceTypeInvoicePaid, e.InvoiceID, ledger.EntryInput{
		PartyName:   e.PartyName,
		PartyType:   PartyTypeFor(e.InvoiceType),
		EntryType:   IssueEntryTypeFor(e.InvoiceType).Opposite(),
		Amount:      e.TotalAmount,
		Description: fmt.Sprintf("Payment %s Invoice %s", verb, e.InvoiceNumber),
		Reference:   e.InvoiceNumber,
		EntryDate:   h.today(),
	})
}

func (h *InvoicePostingHandler) post(ctx context.Context, userID string, source ledger.SourceType, invoiceID uuid.UUID, input ledger.EntryInput) error {
	exists, err := h.ledger.entryRepo.ExistsBySource(ctx, userID, source, invoiceID)
	if err != nil {
		h.logger.Error("failed to check existing ledger entry",
			zap.String("invoice_id", invoiceID.String()),
			zap.Error(err),
		)
		return fmt.Errorf("failed to check existing ledger entry: %w", err)
	}
	if exists {
		h.logger.Info("ledger entry already posted for invoice, skipping",
			zap.String("invoice_id", invoiceID.String()),
			zap.String("source_type", string(source)),
		)
		h.recordTrigger(ctx, source, false)
		return nil
	}

	input.UserID = userID
	input.SourceType = source
	input.SourceID = &invoiceID
	entry, err := ledger.NewLedgerEntry(input)
	if err != nil {
		return err
	}
	if err := h.ledger.Post(ctx, entry); err != nil {
		return err
	}
	h.recordTrigger(ctx, source, true)
	return nil
}

func (h *InvoicePostingHandler) recordTrigger(ctx context.Context, source ledger.SourceType, posted bool) {
	if h.ledger.metrics != nil {
		h.ledger.metrics.RecordInvoiceTrigger(ctx, string(source), posted)
	}
}

var _ shared.EventHandler = (*InvoicePostingHandler)(nil)
