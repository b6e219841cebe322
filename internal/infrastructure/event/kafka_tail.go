package event

import (
	"context"
	"errors"
	"fmt"

	"github.com/opsease/backend/internal/domain/shared"
	"github.com/opsease/backend/internal/infrastructure/config"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

type messageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
	Close() error
}

// KafkaTail reads forwarded events back from the topic. ledgerctl uses it
// to follow ledger postings from the command line.
type KafkaTail struct {
	reader     messageReader
	serializer *EventSerializer
	logger     *zap.Logger
}

// NewKafkaTail creates a reader on cfg.KafkaTopic. An empty groupID reads
// partition 0 from the latest offset without committing.
func NewKafkaTail(cfg config.EventConfig, groupID string, serializer *EventSerializer, logger *zap.Logger) *KafkaTail {
	rc := kafka.ReaderConfig{
		Brokers:  cfg.KafkaBrokers,
		Topic:    cfg.KafkaTopic,
		GroupID:  groupID,
		MinBytes: 1,
		MaxBytes: 1 << 20,
	}
	if groupID == "" {
		rc.StartOffset = kafka.LastOffset
	}
	return newKafkaTail(kafka.NewReader(rc), serializer, logger)
}

func newKafkaTail(r messageReader, serializer *EventSerializer, logger *zap.Logger) *KafkaTail {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &KafkaTail{reader: r, serializer: serializer, logger: logger}
}

// Run calls fn for every decodable event until ctx is cancelled or fn fails.
// Undecodable messages are logged and skipped.
func (t *KafkaTail) Run(ctx context.Context, fn func(*Envelope, shared.DomainEvent) error) error {
	for {
		msg, err := t.reader.ReadMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return nil
			}
			return fmt.Errorf("failed to read from kafka: %w", err)
		}

		env, event, err := t.serializer.Deserialize(msg.Value)
		if err != nil {
			t.logger.Warn("skipping undecodable message",
				zap.Int("partition", msg.Partition),
				zap.Int64("offset", msg.Offset),
				zap.Error(err),
			)
			continue
		}
		if err := fn(env, event); err != nil {
			return err
		}
	}
}

// Close closes the underlying reader
func (t *KafkaTail) Close() error {
	return t.reader.Close()
}
