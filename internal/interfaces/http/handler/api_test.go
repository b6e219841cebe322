package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	invoiceapp "github.com/opsease/backend/internal/application/invoice"
	ledgerapp "github.com/opsease/backend/internal/application/ledger"
	partnerapp "github.com/opsease/backend/internal/application/partner"
	"github.com/opsease/backend/internal/interfaces/http/middleware"
	"github.com/opsease/backend/tests/testutil"
	"github.com/stretchr/testify/require"
)

// memoryStorage records uploaded statements
type memoryStorage struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func (s *memoryStorage) Upload(_ context.Context, key string, data []byte, _ string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.objects == nil {
		s.objects = make(map[string][]byte)
	}
	s.objects[key] = bytes.Clone(data)
	return nil
}

func (s *memoryStorage) GenerateDownloadURL(_ context.Context, key string, expiresIn time.Duration) (string, time.Time, error) {
	return "https://statements.example.test/" + key + "?sig=abc", time.Now().Add(expiresIn), nil
}

type testAPI struct {
	router  *gin.Engine
	entries *testutil.MemoryLedgerRepository
	ledger  *ledgerapp.Service
}

// newTestAPI mounts every resource handler behind a fake JWT middleware that
// reads the user from the X-Test-User header
func newTestAPI(t *testing.T) *testAPI {
	t.Helper()

	entries := testutil.NewMemoryLedgerRepository()
	tx := testutil.NewMemoryTransactionManager()
	customers := testutil.NewMemoryCustomerRepository()
	suppliers := testutil.NewMemorySupplierRepository()
	locker := ledgerapp.NewMutexPartyLocker()

	ledgerService := ledgerapp.NewService(entries, tx, locker, nil, nil)
	posting := ledgerapp.NewInvoicePostingHandler(ledgerService, nil)
	invoiceService := invoiceapp.NewService(testutil.NewMemoryInvoiceRepository(), customers, suppliers, tx, locker, posting, nil, nil)

	ledgerH := NewLedgerHandler(ledgerService)
	invoiceH := NewInvoiceHandler(invoiceService)
	customerH := NewCustomerHandler(partnerapp.NewCustomerService(customers, nil, nil))
	supplierH := NewSupplierHandler(partnerapp.NewSupplierService(suppliers, nil, nil))

	router := gin.New()
	api := router.Group("/api", middleware.RequestID(), func(c *gin.Context) {
		if id := c.GetHeader("X-Test-User"); id != "" {
			c.Set(middleware.JWTUserIDKey, id)
		}
		c.Next()
	})

	api.GET("/ledger", ledgerH.List)
	api.POST("/ledger", ledgerH.Append)
	api.GET("/ledger/summary", ledgerH.Summary)
	api.GET("/ledger/parties", ledgerH.Parties)
	api.GET("/ledger/export", ledgerH.Export)
	api.POST("/ledger/statements", ledgerH.ArchiveStatement)

	api.GET("/invoices", invoiceH.List)
	api.POST("/invoices", invoiceH.Create)
	api.GET("/invoices/:id", invoiceH.Get)
	api.PUT("/invoices/:id", invoiceH.Update)
	api.DELETE("/invoices/:id", invoiceH.Delete)

	api.GET("/customers", customerH.List)
	api.POST("/customers", customerH.Create)
	api.GET("/customers/:id", customerH.GetByID)
	api.PUT("/customers/:id", customerH.Update)
	api.DELETE("/customers/:id", customerH.Delete)

	api.GET("/suppliers", supplierH.List)
	api.POST("/suppliers", supplierH.Create)
	api.GET("/suppliers/:id", supplierH.GetByID)
	api.PUT("/suppliers/:id", supplierH.Update)
	api.DELETE("/suppliers/:id", supplierH.Delete)

	return &testAPI{router: router, entries: entries, ledger: ledgerService}
}

func (a *testAPI) do(t *testing.T, user, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		data, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if user != "" {
		req.Header.Set("X-Test-User", user)
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

// envelope is the response shape with data left raw for typed decoding
type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
		Details []struct {
			Field   string `json:"field"`
			Message string `json:"message"`
		} `json:"details"`
	} `json:"error"`
	Meta *struct {
		Total      int64 `json:"total"`
		Page       int   `json:"page"`
		PageSize   int   `json:"pageSize"`
		TotalPages int   `json:"totalPages"`
	} `json:"meta"`
}

func decodeEnvelope[T any](t *testing.T, w *httptest.ResponseRecorder) (T, envelope) {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	var data T
	if len(env.Data) > 0 && string(env.Data) != "null" {
		require.NoError(t, json.Unmarshal(env.Data, &data), string(env.Data))
	}
	return data, env
}
