package event

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/opsease/backend/internal/domain/invoice"
	"github.com/opsease/backend/internal/domain/ledger"
	"github.com/opsease/backend/internal/domain/shared"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeWriter struct {
	mu   sync.Mutex
	msgs []kafka.Message
	err  error
}

func (w *fakeWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *fakeWriter) Close() error { return nil }

type fakeReader struct {
	msgs []kafka.Message
	err  error
}

func (r *fakeReader) ReadMessage(ctx context.Context) (kafka.Message, error) {
	if len(r.msgs) == 0 {
		if r.err != nil {
			return kafka.Message{}, r.err
		}
		return kafka.Message{}, context.Canceled
	}
	m := r.msgs[0]
	r.msgs = r.msgs[1:]
	return m, nil
}

func (r *fakeReader) Close() error { return nil }

func TestKafkaForwarder_Handle(t *testing.T) {
	w := &fakeWriter{}
	f := newKafkaForwarder(w, NewEventSerializer(), zap.NewNop())
	event := postedEvent(t, "user-1", "Acme Exports")

	require.NoError(t, f.Handle(context.Background(), event))

	require.Len(t, w.msgs, 1)
	msg := w.msgs[0]
	assert.Equal(t, "user-1/Acme Exports", string(msg.Key))
	assert.Equal(t, []string{ledger.EventTypeLedgerEntryPosted}, f.EventTypes())

	headers := map[string]string{}
	for _, h := range msg.Headers {
		headers[h.Key] = string(h.Value)
	}
	assert.Equal(t, ledger.EventTypeLedgerEntryPosted, headers["event_type"])
	assert.Equal(t, event.EventID().String(), headers["event_id"])

	_, decoded, err := NewEventSerializer().Deserialize(msg.Value)
	require.NoError(t, err)
	assert.Equal(t, event.EntryID, decoded.(*ledger.LedgerEntryPostedEvent).EntryID)
}

func TestKafkaForwarder_WriteError(t *testing.T) {
	f := newKafkaForwarder(&fakeWriter{err: errors.New("no brokers")}, NewEventSerializer(), nil).
		WithEventTypes(ledger.EventTypeLedgerEntryPosted, invoice.EventTypeInvoicePaid)

	err := f.Handle(context.Background(), postedEvent(t, "user-1", "Acme"))
	assert.ErrorContains(t, err, "no brokers")
	assert.Len(t, f.EventTypes(), 2)
}

func TestKafkaForwarder_OnBus(t *testing.T) {
	w := &fakeWriter{}
	bus := NewInMemoryEventBus(zap.NewNop())
	bus.Subscribe(newKafkaForwarder(w, NewEventSerializer(), nil))

	require.NoError(t, bus.Publish(context.Background(), postedEvent(t, "user-1", "Acme")))
	assert.Len(t, w.msgs, 1)
}

func TestKafkaTail_Run(t *testing.T) {
	s := NewEventSerializer()
	first := postedEvent(t, "user-1", "Acme")
	second := postedEvent(t, "user-2", "Cotton Mills")
	v1, err := s.Serialize(first)
	require.NoError(t, err)
	v2, err := s.Serialize(second)
	require.NoError(t, err)

	r := &fakeReader{msgs: []kafka.Message{{Value: v1}, {Value: []byte("garbage")}, {Value: v2}}}
	tail := newKafkaTail(r, s, zap.NewNop())

	var parties []string
	err = tail.Run(context.Background(), func(env *Envelope, e shared.DomainEvent) error {
		parties = append(parties, e.(*ledger.LedgerEntryPostedEvent).PartyName)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"Acme", "Cotton Mills"}, parties)
}

func TestKafkaTail_ReadError(t *testing.T) {
	tail := newKafkaTail(&fakeReader{err: errors.New("connection refused")}, NewEventSerializer(), nil)
	err := tail.Run(context.Background(), func(*Envelope, shared.DomainEvent) error { return nil })
	assert.ErrorContains(t, err, "connection refused")
}
