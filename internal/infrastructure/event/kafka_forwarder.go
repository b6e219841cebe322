package event

import (
	"context"
	"fmt"
	"time"

	"github.com/opsease/backend/internal/domain/ledger"
	"github.com/opsease/backend/internal/domain/shared"
	"github.com/opsease/backend/internal/infrastructure/config"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// messageWriter is the subset of *kafka.Writer the forwarder needs
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaForwarder publishes committed domain events to a Kafka topic.
// Messages are keyed by user and party so one party's entries stay ordered
// within a partition.
type KafkaForwarder struct {
	writer     messageWriter
	serializer *EventSerializer
	eventTypes []string
	timeout    time.Duration
	logger     *zap.Logger
}

// NewKafkaForwarder creates a forwarder writing to cfg.KafkaTopic
func NewKafkaForwarder(cfg config.EventConfig, serializer *EventSerializer, logger *zap.Logger) *KafkaForwarder {
	w := &kafka.Writer{
		Addr:                   kafka.TCP(cfg.KafkaBrokers...),
		Topic:                  cfg.KafkaTopic,
		Balancer:               &kafka.Hash{},
		BatchTimeout:           cfg.BatchTimeout,
		RequiredAcks:           kafka.RequireAll,
		AllowAutoTopicCreation: true,
		Transport:              &kafka.Transport{ClientID: cfg.KafkaClientID},
	}
	return newKafkaForwarder(w, serializer, logger)
}

func newKafkaForwarder(w messageWriter, serializer *EventSerializer, logger *zap.Logger) *KafkaForwarder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &KafkaForwarder{
		writer:     w,
		serializer: serializer,
		eventTypes: []string{ledger.EventTypeLedgerEntryPosted},
		timeout:    10 * time.Second,
		logger:     logger.Named("kafka_forwarder"),
	}
}

// WithEventTypes replaces the forwarded event types
func (f *KafkaForwarder) WithEventTypes(eventTypes ...string) *KafkaForwarder {
	f.eventTypes = eventTypes
	return f
}

// EventTypes implements shared.EventHandler
func (f *KafkaForwarder) EventTypes() []string {
	return f.eventTypes
}

// Handle writes event to Kafka
func (f *KafkaForwarder) Handle(ctx context.Context, event shared.DomainEvent) error {
	value, err := f.serializer.Serialize(event)
	if err != nil {
		return err
	}

	msg := kafka.Message{
		Key:   []byte(messageKey(event)),
		Value: value,
		Time:  event.OccurredAt(),
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(event.EventType())},
			{Key: "event_id", Value: []byte(event.EventID().String())},
		},
	}

	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()
	if err := f.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("failed to write %s to kafka: %w", event.EventType(), err)
	}

	f.logger.Debug("event forwarded",
		zap.String("event_type", event.EventType()),
		zap.String("event_id", event.EventID().String()),
	)
	return nil
}

// Close flushes pending writes
func (f *KafkaForwarder) Close() error {
	return f.writer.Close()
}

func messageKey(event shared.DomainEvent) string {
	if posted, ok := event.(*ledger.LedgerEntryPostedEvent); ok {
		return posted.UserID() + "/" + posted.PartyName
	}
	return event.UserID() + "/" + event.AggregateID().String()
}

var _ shared.EventHandler = (*KafkaForwarder)(nil)
