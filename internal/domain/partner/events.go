package partner

import (
	"github.com/google/uuid"
	"github.com/opsease/backend/internal/domain/shared"
)

// Aggregate type constants
const (
	AggregateTypeCustomer = "Customer"
	AggregateTypeSupplier = "Supplier"
)

// Event type constants
const (
	EventTypeCustomerCreated = "CustomerCreated"
	EventTypeCustomerUpdated = "CustomerUpdated"
	EventTypeCustomerDeleted = "CustomerDeleted"
	EventTypeSupplierCreated = "SupplierCreated"
	EventTypeSupplierUpdated = "SupplierUpdated"
	EventTypeSupplierDeleted = "SupplierDeleted"
)

// PartnerChangedEvent is published when partner master data changes
type PartnerChangedEvent struct {
	shared.BaseDomainEvent
	PartnerID   uuid.UUID `json:"partner_id"`
	Code        string    `json:"code"`
	CompanyName string    `json:"company_name"`
}

// NewPartnerChangedEvent creates a new PartnerChangedEvent
func NewPartnerChangedEvent(eventType, aggType string, id uuid.UUID, userID, code, companyName string) *PartnerChangedEvent {
	return &PartnerChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(eventType, aggType, id, userID),
		PartnerID:       id,
		Code:            code,
		CompanyName:     companyName,
	}
}
