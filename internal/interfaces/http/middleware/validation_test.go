package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/opsease/backend/internal/interfaces/http/dto"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type postingRequest struct {
	PartyName string  `json:"partyName" binding:"required,max=10"`
	EntryType string  `json:"entryType" binding:"required,oneof=debit credit"`
	Amount    string  `json:"amount" binding:"required,decimal_gt0"`
	TaxRate   *string `json:"taxRate" binding:"omitempty,decimal_gte0"`
	EntryDate string  `json:"entryDate" binding:"required,date"`
}

func bindRouter() *gin.Engine {
	SetupValidator()
	router := gin.New()
	router.Use(RequestID())
	router.POST("/ledger", func(c *gin.Context) {
		var req postingRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			HandleValidationError(c, err)
			return
		}
		c.Status(http.StatusCreated)
	})
	return router
}

func postJSON(router http.Handler, body string) (*httptest.ResponseRecorder, dto.Response) {
	req := httptest.NewRequest(http.MethodPost, "/ledger", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	var resp dto.Response
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	return w, resp
}

func TestSetupValidator_Idempotent(t *testing.T) {
	assert.NotPanics(t, func() {
		SetupValidator()
		SetupValidator()
	})
}

func TestValidation_CustomTags(t *testing.T) {
	router := bindRouter()

	t.Run("valid request", func(t *testing.T) {
		w, _ := postJSON(router, `{"partyName":"Acme","entryType":"debit","amount":"1000.50","taxRate":"0","entryDate":"2024-01-10"}`)
		assert.Equal(t, http.StatusCreated, w.Code)
	})

	tests := []struct {
		name    string
		body    string
		field   string
		message string
	}{
		{"zero amount", `{"partyName":"Acme","entryType":"debit","amount":"0","entryDate":"2024-01-10"}`, "amount", "Must be a decimal greater than 0"},
		{"non decimal amount", `{"partyName":"Acme","entryType":"debit","amount":"1e","entryDate":"2024-01-10"}`, "amount", "Must be a decimal greater than 0"},
		{"negative tax", `{"partyName":"Acme","entryType":"debit","amount":"1","taxRate":"-1","entryDate":"2024-01-10"}`, "taxRate", "Must be a decimal greater than or equal to 0"},
		{"bad date", `{"partyName":"Acme","entryType":"debit","amount":"1","entryDate":"10/01/2024"}`, "entryDate", "Must be a date in YYYY-MM-DD format"},
		{"bad entry type", `{"partyName":"Acme","entryType":"refund","amount":"1","entryDate":"2024-01-10"}`, "entryType", "Must be one of: debit credit"},
		{"long name", `{"partyName":"Acme Textiles Ltd","entryType":"debit","amount":"1","entryDate":"2024-01-10"}`, "partyName", "Must be at most 10 characters"},
		{"missing name", `{"entryType":"debit","amount":"1","entryDate":"2024-01-10"}`, "partyName", "This field is required"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, resp := postJSON(router, tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			require.NotNil(t, resp.Error)
			assert.Equal(t, dto.ErrCodeValidation, resp.Error.Code)
			assert.NotEmpty(t, resp.Error.RequestID)
			require.Len(t, resp.Error.Details, 1)
			assert.Equal(t, tt.field, resp.Error.Details[0].Field)
			assert.Equal(t, tt.message, resp.Error.Details[0].Message)
		})
	}
}

func TestValidation_MalformedJSON(t *testing.T) {
	w, resp := postJSON(bindRouter(), `{"partyName":`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	require.NotNil(t, resp.Error)
	assert.Equal(t, dto.ErrCodeInvalidJSON, resp.Error.Code)
}

func TestValidation_DecimalFields(t *testing.T) {
	SetupValidator()

	type item struct {
		Quantity decimal.Decimal  `json:"quantity" binding:"decimal_gt0"`
		Discount *decimal.Decimal `json:"discount" binding:"omitempty,decimal_gte0"`
	}
	type invoice struct {
		Items []item `json:"items" binding:"required,min=1,dive"`
	}

	router := gin.New()
	router.POST("/invoices", func(c *gin.Context) {
		var req invoice
		if err := c.ShouldBindJSON(&req); err != nil {
			HandleValidationError(c, err)
			return
		}
		c.Status(http.StatusCreated)
	})

	send := func(body string) (int, dto.Response) {
		req := httptest.NewRequest(http.MethodPost, "/invoices", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		var resp dto.Response
		_ = json.Unmarshal(w.Body.Bytes(), &resp)
		return w.Code, resp
	}

	code, _ := send(`{"items":[{"quantity":2},{"quantity":"1.5","discount":"0"}]}`)
	assert.Equal(t, http.StatusCreated, code)

	code, resp := send(`{"items":[{"quantity":0}]}`)
	assert.Equal(t, http.StatusBadRequest, code)
	require.Len(t, resp.Error.Details, 1)
	assert.Equal(t, "quantity", resp.Error.Details[0].Field)

	code, resp = send(`{"items":[]}`)
	assert.Equal(t, http.StatusBadRequest, code)
	require.Len(t, resp.Error.Details, 1)
	assert.Equal(t, "Must contain at least 1 items", resp.Error.Details[0].Message)
}
