package event

import (
	"encoding/json"
	"fmt"
	"reflect"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/opsease/backend/internal/domain/invoice"
	"github.com/opsease/backend/internal/domain/ledger"
	"github.com/opsease/backend/internal/domain/partner"
	"github.com/opsease/backend/internal/domain/shared"
)

// Envelope is the wire form of a domain event on Kafka.
type Envelope struct {
	EventID       uuid.UUID       `json:"eventId"`
	EventType     string          `json:"eventType"`
	AggregateType string          `json:"aggregateType"`
	AggregateID   uuid.UUID       `json:"aggregateId"`
	UserID        string          `json:"userId"`
	OccurredAt    time.Time       `json:"occurredAt"`
	Payload       json.RawMessage `json:"payload"`
}

// EventSerializer wraps events in an Envelope and turns envelopes back into typed events
type EventSerializer struct {
	mu       sync.RWMutex
	registry map[string]reflect.Type
}

// NewEventSerializer creates a serializer with every OpsEase event type registered
func NewEventSerializer() *EventSerializer {
	s := &EventSerializer{registry: make(map[string]reflect.Type)}
	s.Register(ledger.EventTypeLedgerEntryPosted, &ledger.LedgerEntryPostedEvent{})
	s.Register(invoice.EventTypeInvoiceIssued, &invoice.InvoiceIssuedEvent{})
	s.Register(invoice.EventTypeInvoicePaid, &invoice.InvoicePaidEvent{})
	s.Register(invoice.EventTypeInvoiceDeleted, &invoice.InvoiceDeletedEvent{})
	for _, t := range []string{
		partner.EventTypeCustomerCreated, partner.EventTypeCustomerUpdated, partner.EventTypeCustomerDeleted,
		partner.EventTypeSupplierCreated, partner.EventTypeSupplierUpdated, partner.EventTypeSupplierDeleted,
	} {
		s.Register(t, &partner.PartnerChangedEvent{})
	}
	return s
}

// Register maps eventType to the concrete type of prototype
func (s *EventSerializer) Register(eventType string, prototype shared.DomainEvent) {
	t := reflect.TypeOf(prototype)
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.registry[eventType] = t
}

// IsRegistered checks if an event type is registered
func (s *EventSerializer) IsRegistered(eventType string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.registry[eventType]
	return ok
}

// Serialize encodes event inside an Envelope
func (s *EventSerializer) Serialize(event shared.DomainEvent) ([]byte, error) {
	payload, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s: %w", event.EventType(), err)
	}
	return json.Marshal(Envelope{
		EventID:       event.EventID(),
		EventType:     event.EventType(),
		AggregateType: event.AggregateType(),
		AggregateID:   event.AggregateID(),
		UserID:        event.UserID(),
		OccurredAt:    event.OccurredAt().UTC(),
		Payload:       payload,
	})
}

// Deserialize decodes an Envelope and its payload into the registered event type
func (s *EventSerializer) Deserialize(data []byte) (*Envelope, shared.DomainEvent, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, nil, fmt.Errorf("failed to unmarshal envelope: %w", err)
	}

	s.mu.RLock()
	t, ok := s.registry[env.EventType]
	s.mu.RUnlock()
	if !ok {
		return &env, nil, fmt.Errorf("unknown event type: %s", env.EventType)
	}

	ptr := reflect.New(t).Interface()
	if err := json.Unmarshal(env.Payload, ptr); err != nil {
		return &env, nil, fmt.Errorf("failed to unmarshal %s payload: %w", env.EventType, err)
	}
	event, ok := ptr.(shared.DomainEvent)
	if !ok {
		return &env, nil, fmt.Errorf("%s does not implement DomainEvent", t)
	}
	return &env, event, nil
}
