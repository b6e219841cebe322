package router

import (
	"github.com/opsease/backend/internal/interfaces/http/handler"
)

// APIHandlers are the resource handlers mounted under every API base path.
type APIHandlers struct {
	Ledger   *handler.LedgerHandler
	Invoice  *handler.InvoiceHandler
	Customer *handler.CustomerHandler
	Supplier *handler.SupplierHandler
	System   *handler.SystemHandler
}

// RegisterAPI adds the ledger, invoice and partner groups to r.
func RegisterAPI(r *Router, h APIHandlers) {
	ledger := NewDomainGroup("ledger", "/ledger").
		GET("", h.Ledger.List).
		POST("", h.Ledger.Append).
		GET("/summary", h.Ledger.Summary).
		GET("/parties", h.Ledger.Parties).
		GET("/export", h.Ledger.Export).
		POST("/statements", h.Ledger.ArchiveStatement)

	invoices := NewDomainGroup("invoice", "/invoices").CRUD(CRUDHandlers{
		List: h.Invoice.List, Create: h.Invoice.Create, Get: h.Invoice.Get,
		Update: h.Invoice.Update, Delete: h.Invoice.Delete,
	})
	customers := NewDomainGroup("customer", "/customers").CRUD(CRUDHandlers{
		List: h.Customer.List, Create: h.Customer.Create, Get: h.Customer.GetByID,
		Update: h.Customer.Update, Delete: h.Customer.Delete,
	})
	suppliers := NewDomainGroup("supplier", "/suppliers").CRUD(CRUDHandlers{
		List: h.Supplier.List, Create: h.Supplier.Create, Get: h.Supplier.GetByID,
		Update: h.Supplier.Update, Delete: h.Supplier.Delete,
	})

	r.Register(ledger).Register(invoices).Register(customers).Register(suppliers)

	if h.System != nil {
		r.Register(NewDomainGroup("system", "/system").GET("/info", h.System.GetSystemInfo))
	}
}
