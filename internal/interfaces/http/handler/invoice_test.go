package handler

import (
	"net/http"
	"testing"

	"github.com/opsease/backend/internal/domain/ledger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func invoiceBody() map[string]any {
	return map[string]any{
		"buyerName": "Sharma Traders",
		"items": []map[string]any{
			{"description": "Steel rods 12mm", "quantity": "10", "unitPrice": "500"},
		},
		"invoiceDate": "2024-01-10",
		"status":      "sent",
	}
}

func createInvoice(t *testing.T, api *testAPI, body map[string]any) InvoiceResponse {
	t.Helper()
	w := api.do(t, testUserID, http.MethodPost, "/api/invoices", body)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	inv, _ := decodeEnvelope[InvoiceResponse](t, w)
	return inv
}

func TestInvoiceHandler_CreatePostsLedgerEntry(t *testing.T) {
	api := newTestAPI(t)

	inv := createInvoice(t, api, invoiceBody())
	assert.Equal(t, "SI00000001", inv.InvoiceNumber)
	assert.Equal(t, "sales_invoice", inv.InvoiceType)
	assert.Equal(t, "5000.00", inv.Subtotal)
	assert.Equal(t, "5000.00", inv.TotalAmount)
	assert.Equal(t, "INR", inv.Currency)
	assert.Equal(t, "2024-01-10", inv.InvoiceDate)
	require.Len(t, inv.Items, 1)
	assert.Equal(t, "5000.00", inv.Items[0].Amount)

	entries := api.entries.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, "Sharma Traders", entries[0].PartyName)
	assert.Equal(t, ledger.PartyTypeBuyer, entries[0].PartyType)
	assert.Equal(t, ledger.EntryTypeDebit, entries[0].EntryType)
	assert.Equal(t, "SI00000001", entries[0].Reference)
	assert.Equal(t, "5000.00", entries[0].Balance.StringFixed(2))

	second := createInvoice(t, api, invoiceBody())
	assert.Equal(t, "SI00000002", second.InvoiceNumber)
}

func TestInvoiceHandler_Totals(t *testing.T) {
	api := newTestAPI(t)
	body := invoiceBody()
	body["items"] = []map[string]any{
		{"description": "Rods", "quantity": 2, "unitPrice": 1000},
		{"description": "Bolts", "quantity": "100", "unitPrice": "5.50"},
	}
	body["taxRate"] = "18"
	body["shippingCost"] = "250"
	body["discount"] = "100"

	inv := createInvoice(t, api, body)
	assert.Equal(t, "2550.00", inv.Subtotal)
	assert.Equal(t, "18.00", inv.TaxRate)
	assert.Equal(t, "459.00", inv.TaxAmount)
	assert.Equal(t, "3159.00", inv.TotalAmount)
}

func TestInvoiceHandler_PaidPostsOnce(t *testing.T) {
	api := newTestAPI(t)
	inv := createInvoice(t, api, invoiceBody())

	for i := 0; i < 2; i++ {
		w := api.do(t, testUserID, http.MethodPut, "/api/invoices/"+inv.ID, map[string]any{"status": "paid"})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		updated, _ := decodeEnvelope[InvoiceResponse](t, w)
		assert.Equal(t, "paid", updated.Status)
	}

	entries := api.entries.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, ledger.EntryTypeCredit, entries[1].EntryType)
	assert.True(t, entries[1].Balance.IsZero())
}

func TestInvoiceHandler_CreateValidation(t *testing.T) {
	api := newTestAPI(t)

	tests := []struct {
		name   string
		mutate func(map[string]any)
		status int
		code   string
	}{
		{"no items", func(b map[string]any) { b["items"] = []map[string]any{} }, http.StatusBadRequest, "VALIDATION_ERROR"},
		{"zero quantity", func(b map[string]any) {
			b["items"] = []map[string]any{{"description": "Rods", "quantity": "0", "unitPrice": "10"}}
		}, http.StatusBadRequest, "VALIDATION_ERROR"},
		{"missing date", func(b map[string]any) { delete(b, "invoiceDate") }, http.StatusBadRequest, "VALIDATION_ERROR"},
		{"unknown status", func(b map[string]any) { b["status"] = "void" }, http.StatusBadRequest, "VALIDATION_ERROR"},
		{"negative tax", func(b map[string]any) { b["taxRate"] = "-1" }, http.StatusBadRequest, "VALIDATION_ERROR"},
		{"tax over 100", func(b map[string]any) { b["taxRate"] = "120" }, http.StatusBadRequest, "INVALID_TAX_RATE"},
		{"bad customer id", func(b map[string]any) { b["customerId"] = "abc" }, http.StatusBadRequest, "VALIDATION_ERROR"},
		{"unknown customer", func(b map[string]any) { b["customerId"] = "6f1c2a9e-8f0e-4e38-9d8f-9b2a3c4d5e6f" }, http.StatusNotFound, "NOT_FOUND"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body := invoiceBody()
			tt.mutate(body)
			w := api.do(t, testUserID, http.MethodPost, "/api/invoices", body)
			assert.Equal(t, tt.status, w.Code, w.Body.String())
			_, env := decodeEnvelope[any](t, w)
			require.NotNil(t, env.Error)
			assert.Equal(t, tt.code, env.Error.Code)
		})
	}
	assert.Empty(t, api.entries.Entries())
}

func TestInvoiceHandler_DuplicateNumber(t *testing.T) {
	api := newTestAPI(t)
	body := invoiceBody()
	body["invoiceNumber"] = "INV-7"
	createInvoice(t, api, body)

	w := api.do(t, testUserID, http.MethodPost, "/api/invoices", body)
	assert.Equal(t, http.StatusConflict, w.Code)
	_, env := decodeEnvelope[any](t, w)
	assert.Equal(t, "ALREADY_EXISTS", env.Error.Code)
}

func TestInvoiceHandler_BuyerFromCustomer(t *testing.T) {
	api := newTestAPI(t)
	w := api.do(t, testUserID, http.MethodPost, "/api/customers", map[string]any{
		"customerCode": "CUST-001",
		"companyName":  "Patel Exports",
		"gstNumber":    "27AAPFU0939F1ZV",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	customer, _ := decodeEnvelope[CustomerResponse](t, w)

	body := invoiceBody()
	delete(body, "buyerName")
	body["customerId"] = customer.ID
	inv := createInvoice(t, api, body)

	assert.Equal(t, "Patel Exports", inv.BuyerName)
	assert.Equal(t, "27AAPFU0939F1ZV", inv.BuyerGST)
	require.NotNil(t, inv.CustomerID)
	assert.Equal(t, customer.ID, *inv.CustomerID)
}

func TestInvoiceHandler_GetListDelete(t *testing.T) {
	api := newTestAPI(t)
	inv := createInvoice(t, api, invoiceBody())
	purchase := invoiceBody()
	purchase["invoiceType"] = "purchase_invoice"
	purchase["buyerName"] = "Steel Corp"
	createInvoice(t, api, purchase)

	w := api.do(t, testUserID, http.MethodGet, "/api/invoices/"+inv.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	got, _ := decodeEnvelope[InvoiceResponse](t, w)
	assert.Equal(t, inv.InvoiceNumber, got.InvoiceNumber)

	w = api.do(t, "someone-else", http.MethodGet, "/api/invoices/"+inv.ID, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = api.do(t, testUserID, http.MethodGet, "/api/invoices/not-a-uuid", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = api.do(t, testUserID, http.MethodGet, "/api/invoices?invoiceType=purchase_invoice&page=1&pageSize=10", nil)
	require.Equal(t, http.StatusOK, w.Code)
	list, env := decodeEnvelope[[]InvoiceResponse](t, w)
	require.Len(t, list, 1)
	assert.Equal(t, "Steel Corp", list[0].BuyerName)
	require.NotNil(t, env.Meta)
	assert.Equal(t, int64(1), env.Meta.Total)
	assert.Equal(t, 10, env.Meta.PageSize)

	w = api.do(t, testUserID, http.MethodGet, "/api/invoices?pageSize=500", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = api.do(t, testUserID, http.MethodDelete, "/api/invoices/"+inv.ID, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = api.do(t, testUserID, http.MethodGet, "/api/invoices/"+inv.ID, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = api.do(t, testUserID, http.MethodDelete, "/api/invoices/"+inv.ID, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	assert.Len(t, api.entries.Entries(), 2, "ledger entries survive invoice deletion")
}
