package invoice

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/opsease/backend/internal/application/ledger"
	"github.com/opsease/backend/internal/domain/invoice"
	domainledger "github.com/opsease/backend/internal/domain/ledger"
	"github.com/opsease/backend/internal/domain/partner"
	"github.com/opsease/backend/internal/domain/shared"
	"github.com/opsease/backend/tests/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testUser = "user-1"

type recordingPublisher struct {
	mu     sync.Mutex
	events []shared.DomainEvent
}

func (p *recordingPublisher) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, events...)
	return nil
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.events))
	for i, e := range p.events {
		out[i] = e.EventType()
	}
	return out
}

type fixture struct {
	service   *Service
	invoices  *testutil.MemoryInvoiceRepository
	customers *testutil.MemoryCustomerRepository
	suppliers *testutil.MemorySupplierRepository
	entries   *testutil.MemoryLedgerRepository
	tx        *testutil.MemoryTransactionManager
	published *recordingPublisher
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		invoices:  testutil.NewMemoryInvoiceRepository(),
		customers: testutil.NewMemoryCustomerRepository(),
		suppliers: testutil.NewMemorySupplierRepository(),
		entries:   testutil.NewMemoryLedgerRepository(),
		tx:        testutil.NewMemoryTransactionManager(),
		published: &recordingPublisher{},
	}
	locker := ledger.NewMutexPartyLocker()
	ledgerService := ledger.NewService(f.entries, f.tx, locker, nil, nil)
	posting := ledger.NewInvoicePostingHandler(ledgerService, nil)
	f.service = NewService(f.invoices, f.customers, f.suppliers, f.tx, locker, posting, f.published, nil)
	return f
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func day(s string) time.Time {
	d, err := shared.ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

func ptr[T any](v T) *T {
	return &v
}

func salesRequest(buyer string) CreateInvoiceRequest {
	return CreateInvoiceRequest{
		BuyerName: buyer,
		Items: []ItemInput{
			{Description: "Cotton shirts", Quantity: dec("100"), UnitPrice: dec("45")},
			{Description: "Denim jeans", Quantity: dec("20"), UnitPrice: dec("25")},
		},
		InvoiceDate: day("2024-01-10"),
	}
}

func TestService_CreatePostsIssuanceEntry(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	resp, err := f.service.Create(ctx, testUser, salesRequest("Acme Textiles"))
	require.NoError(t, err)

	assert.Equal(t, "SI00000001", resp.InvoiceNumber)
	assert.Equal(t, "sales_invoice", resp.InvoiceType)
	assert.Equal(t, "draft", resp.Status)
	assert.Equal(t, "5000.00", resp.TotalAmount.StringFixed(2))

	entries := f.entries.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, "Acme Textiles", entries[0].PartyName)
	assert.Equal(t, domainledger.PartyTypeBuyer, entries[0].PartyType)
	assert.Equal(t, domainledger.EntryTypeDebit, entries[0].EntryType)
	assert.Equal(t, "5000.00", entries[0].Amount.StringFixed(2))
	assert.Equal(t, "Sales Invoice SI00000001 - Cotton shirts, Denim jeans", entries[0].Description)
	assert.Equal(t, day("2024-01-10"), entries[0].EntryDate)

	assert.Equal(t, []string{invoice.EventTypeInvoiceIssued}, f.published.types())
	assert.Equal(t, 1, f.tx.Commits())
}

func TestService_CreateNumbering(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first, err := f.service.Create(ctx, testUser, salesRequest("Acme Textiles"))
	require.NoError(t, err)
	second, err := f.service.Create(ctx, testUser, salesRequest("Bharat Traders"))
	require.NoError(t, err)

	purchase := salesRequest("Cotton Mills")
	purchase.InvoiceType = "purchase_invoice"
	third, err := f.service.Create(ctx, testUser, purchase)
	require.NoError(t, err)

	other, err := f.service.Create(ctx, "user-2", salesRequest("Acme Textiles"))
	require.NoError(t, err)

	assert.Equal(t, "SI00000001", first.InvoiceNumber)
	assert.Equal(t, "SI00000002", second.InvoiceNumber)
	assert.Equal(t, "PI00000001", third.InvoiceNumber)
	assert.Equal(t, "SI00000001", other.InvoiceNumber)

	mills, err := f.entries.FindAll(ctx, testUser, "Cotton Mills")
	require.NoError(t, err)
	require.Len(t, mills, 1)
	assert.Equal(t, domainledger.PartyTypeSupplier, mills[0].PartyType)
	assert.Equal(t, domainledger.EntryTypeCredit, mills[0].EntryType)
	assert.Equal(t, "Purchase Invoice PI00000001 - Cotton shirts, Denim jeans", mills[0].Description)
}

func TestService_CreateConcurrentNumbering(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	const workers = 10
	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.service.Create(ctx, testUser, salesRequest("Acme Textiles"))
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	assert.Equal(t, workers, f.invoices.Len())
	entries, err := f.entries.FindAll(ctx, testUser, "Acme Textiles")
	require.NoError(t, err)
	require.Len(t, entries, workers)
	assert.Equal(t, "50000.00", entries[len(entries)-1].Balance.StringFixed(2))
}

func TestService_CreateDuplicateNumber(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	req := salesRequest("Acme Textiles")
	req.InvoiceNumber = "INV-2024-001"
	_, err := f.service.Create(ctx, testUser, req)
	require.NoError(t, err)

	_, err = f.service.Create(ctx, testUser, req)
	require.Error(t, err)
	assert.ErrorIs(t, err, shared.ErrAlreadyExists)
	assert.Contains(t, err.Error(), "INV-2024-001")
	assert.Len(t, f.entries.Entries(), 1)
}

func TestService_CreateValidation(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(r *CreateInvoiceRequest)
		wantCode string
	}{
		{"unknown type", func(r *CreateInvoiceRequest) { r.InvoiceType = "credit_note" }, "INVALID_INVOICE_TYPE"},
		{"no items", func(r *CreateInvoiceRequest) { r.Items = nil }, "INVALID_ITEMS"},
		{"no buyer", func(r *CreateInvoiceRequest) { r.BuyerName = "  " }, "INVALID_BUYER_NAME"},
		{"discount wipes total", func(r *CreateInvoiceRequest) { r.Discount = dec("6000") }, "INVALID_AMOUNT"},
		{"bad tax rate", func(r *CreateInvoiceRequest) { r.TaxRate = dec("120") }, "INVALID_TAX_RATE"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			req := salesRequest("Acme Textiles")
			tt.mutate(&req)

			_, err := f.service.Create(context.Background(), testUser, req)
			var domainErr *shared.DomainError
			require.True(t, errors.As(err, &domainErr), "got %v", err)
			assert.Equal(t, tt.wantCode, domainErr.Code)
			assert.Empty(t, f.entries.Entries())
			assert.Zero(t, f.invoices.Len())
		})
	}
}

func TestService_CreateComputesTotals(t *testing.T) {
	f := newFixture(t)
	req := salesRequest("Acme Textiles")
	req.TaxRate = dec("18")
	req.ShippingCost = dec("250")
	req.Discount = dec("100.50")

	resp, err := f.service.Create(context.Background(), testUser, req)
	require.NoError(t, err)

	assert.Equal(t, "5000.00", resp.Subtotal.StringFixed(2))
	assert.Equal(t, "900.00", resp.TaxAmount.StringFixed(2))
	assert.Equal(t, "6049.50", resp.TotalAmount.StringFixed(2))
	assert.Equal(t, "4500.00", resp.Items[0].Amount.StringFixed(2))
}

func TestService_CreateFromCustomer(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	customer, err := partner.NewCustomer(testUser, "ACME", partner.Profile{
		CompanyName: "Acme Textiles Pvt Ltd",
		GSTNumber:   "33ABCDE1234F1Z5",
		Address:     "12 Mill Road",
		City:        "Tiruppur",
		State:       "Tamil Nadu",
		Phone:       "+91 98765 43210",
	})
	require.NoError(t, err)
	require.NoError(t, f.customers.Save(ctx, customer))

	req := salesRequest("")
	req.CustomerID = &customer.ID
	resp, err := f.service.Create(ctx, testUser, req)
	require.NoError(t, err)

	assert.Equal(t, "Acme Textiles Pvt Ltd", resp.BuyerName)
	assert.Equal(t, "33ABCDE1234F1Z5", resp.BuyerGST)
	assert.Equal(t, "12 Mill Road, Tiruppur, Tamil Nadu", resp.BuyerAddress)
	assert.Equal(t, &customer.ID, resp.CustomerID)

	req.CustomerID = ptr(uuid.New())
	_, err = f.service.Create(ctx, testUser, req)
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestService_UpdatePaidTransition(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created, err := f.service.Create(ctx, testUser, salesRequest("Acme Textiles"))
	require.NoError(t, err)

	paid, err := f.service.Update(ctx, testUser, created.ID, UpdateInvoiceRequest{Status: ptr("paid")})
	require.NoError(t, err)
	assert.Equal(t, "paid", paid.Status)
	assert.Equal(t, 2, paid.Version)

	entries, err := f.entries.FindAll(ctx, testUser, "Acme Textiles")
	require.NoError(t, err)
	require.Len(t, entries, 2)
	payment := entries[1]
	assert.Equal(t, domainledger.EntryTypeCredit, payment.EntryType)
	assert.Equal(t, "5000.00", payment.Amount.StringFixed(2))
	assert.Equal(t, "0.00", payment.Balance.StringFixed(2))
	assert.Equal(t, "Payment received for Invoice SI00000001", payment.Description)
	assert.Equal(t, domainledger.SourceTypeInvoicePaid, payment.SourceType)

	_, err = f.service.Update(ctx, testUser, created.ID, UpdateInvoiceRequest{Status: ptr("paid")})
	require.NoError(t, err)
	_, err = f.service.Update(ctx, testUser, created.ID, UpdateInvoiceRequest{Status: ptr("sent")})
	require.NoError(t, err)
	_, err = f.service.Update(ctx, testUser, created.ID, UpdateInvoiceRequest{Status: ptr("paid")})
	require.NoError(t, err)

	assert.Len(t, f.entries.Entries(), 2)
	assert.Equal(t, []string{
		invoice.EventTypeInvoiceIssued,
		invoice.EventTypeInvoicePaid,
		invoice.EventTypeInvoicePaid,
	}, f.published.types())
}

func TestService_UpdatePaidUsesPreviousTotalAndParty(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created, err := f.service.Create(ctx, testUser, salesRequest("Acme Textiles"))
	require.NoError(t, err)

	resp, err := f.service.Update(ctx, testUser, created.ID, UpdateInvoiceRequest{
		Status:    ptr("paid"),
		TaxRate:   ptr(dec("10")),
		BuyerName: ptr("Acme Textiles Pvt Ltd"),
	})
	require.NoError(t, err)
	assert.Equal(t, "5500.00", resp.TotalAmount.StringFixed(2))
	assert.Equal(t, "Acme Textiles Pvt Ltd", resp.BuyerName)

	entries, err := f.entries.FindAll(ctx, testUser, "Acme Textiles")
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "5000.00", entries[1].Amount.StringFixed(2))

	renamed, err := f.entries.FindAll(ctx, testUser, "Acme Textiles Pvt Ltd")
	require.NoError(t, err)
	assert.Empty(t, renamed)
}

func TestService_UpdateRecomputesTotals(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created, err := f.service.Create(ctx, testUser, salesRequest("Acme Textiles"))
	require.NoError(t, err)

	resp, err := f.service.Update(ctx, testUser, created.ID, UpdateInvoiceRequest{
		Items:        []ItemInput{{Description: "Silk sarees", Quantity: dec("4"), UnitPrice: dec("1250")}},
		ShippingCost: ptr(dec("99.99")),
	})
	require.NoError(t, err)
	assert.Equal(t, "5000.00", resp.Subtotal.StringFixed(2))
	assert.Equal(t, "5099.99", resp.TotalAmount.StringFixed(2))
	require.Len(t, resp.Items, 1)
	assert.Equal(t, "Silk sarees", resp.Items[0].Description)

	_, err = f.service.Update(ctx, testUser, created.ID, UpdateInvoiceRequest{Items: []ItemInput{}})
	assert.Error(t, err)
	_, err = f.service.Update(ctx, testUser, created.ID, UpdateInvoiceRequest{Status: ptr("void")})
	assert.Error(t, err)

	assert.Len(t, f.entries.Entries(), 1)
}

func TestService_UpdateNotFound(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created, err := f.service.Create(ctx, testUser, salesRequest("Acme Textiles"))
	require.NoError(t, err)

	_, err = f.service.Update(ctx, "user-2", created.ID, UpdateInvoiceRequest{Status: ptr("paid")})
	assert.ErrorIs(t, err, shared.ErrNotFound)
	_, err = f.service.Update(ctx, testUser, uuid.New(), UpdateInvoiceRequest{Status: ptr("paid")})
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestService_PostingFailureFailsTheWrite(t *testing.T) {
	f := newFixture(t)
	f.entries.CreateErr = errors.New("disk full")

	_, err := f.service.Create(context.Background(), testUser, salesRequest("Acme Textiles"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
	assert.Equal(t, 1, f.tx.Rollbacks())
	assert.Empty(t, f.published.types())
}

func TestService_DeleteKeepsLedger(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created, err := f.service.Create(ctx, testUser, salesRequest("Acme Textiles"))
	require.NoError(t, err)

	assert.ErrorIs(t, f.service.Delete(ctx, "user-2", created.ID), shared.ErrNotFound)
	require.NoError(t, f.service.Delete(ctx, testUser, created.ID))

	_, err = f.service.Get(ctx, testUser, created.ID)
	assert.ErrorIs(t, err, shared.ErrNotFound)
	assert.Len(t, f.entries.Entries(), 1)
	assert.Equal(t, []string{invoice.EventTypeInvoiceIssued, invoice.EventTypeInvoiceDeleted}, f.published.types())
}

func TestService_List(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for _, buyer := range []string{"Acme Textiles", "Bharat Traders", "Acme Garments"} {
		_, err := f.service.Create(ctx, testUser, salesRequest(buyer))
		require.NoError(t, err)
	}
	purchase := salesRequest("Cotton Mills")
	purchase.InvoiceType = "purchase_invoice"
	_, err := f.service.Create(ctx, testUser, purchase)
	require.NoError(t, err)

	all, total, err := f.service.List(ctx, testUser, ListFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(4), total)
	assert.Equal(t, "PI00000001", all[0].InvoiceNumber)

	sales, total, err := f.service.List(ctx, testUser, ListFilter{InvoiceType: "sales_invoice", Search: "acme"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Equal(t, "Acme Garments", sales[0].BuyerName)

	paged, total, err := f.service.List(ctx, testUser, ListFilter{Page: 2, PageSize: 3})
	require.NoError(t, err)
	assert.Equal(t, int64(4), total)
	assert.Len(t, paged, 1)

	_, _, err = f.service.List(ctx, testUser, ListFilter{Status: "archived"})
	assert.Error(t, err)

	none, total, err := f.service.List(ctx, "user-2", ListFilter{})
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, none)
}
