// Package models contains GORM-specific persistence models that map to database tables.
// These models are separate from domain entities to keep the domain layer pure and free
// from ORM concerns.
//
// Structure:
// - base.go: shared columns (BaseModel, UserAggregateModel)
// - ledger.go: ledger_entries
// - invoice.go: invoices, with line items stored as a JSON document
// - partner.go: customers and suppliers
package models
