package event

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/opsease/backend/internal/domain/shared"
	"github.com/opsease/backend/internal/infrastructure/logger"
	"go.uber.org/zap"
)

// InMemoryEventBus hands events to in-process handlers on the publishing
// goroutine. Services publish after commit, so a handler error is logged
// and counted and the publisher still sees success.
type InMemoryEventBus struct {
	mu       sync.RWMutex
	byType   map[string][]shared.EventHandler
	catchAll []shared.EventHandler

	log      *zap.Logger
	closed   atomic.Bool
	inflight sync.WaitGroup
	failures atomic.Int64
}

func NewInMemoryEventBus(log *zap.Logger) *InMemoryEventBus {
	if log == nil {
		log = zap.NewNop()
	}
	return &InMemoryEventBus{
		byType: make(map[string][]shared.EventHandler),
		log:    log.Named("event_bus"),
	}
}

// Subscribe adds handler for eventTypes, falling back to the handler's own
// EventTypes. A handler with no types at all receives every event.
func (b *InMemoryEventBus) Subscribe(handler shared.EventHandler, eventTypes ...string) {
	if len(eventTypes) == 0 {
		eventTypes = handler.EventTypes()
	}

	b.mu.Lock()
	if len(eventTypes) == 0 {
		b.catchAll = append(b.catchAll, handler)
	}
	for _, t := range eventTypes {
		b.byType[t] = append(b.byType[t], handler)
	}
	b.mu.Unlock()

	b.log.Debug("Handler subscribed",
		zap.String("handler", fmt.Sprintf("%T", handler)),
		zap.Strings("event_types", eventTypes),
	)
}

func (b *InMemoryEventBus) Unsubscribe(handler shared.EventHandler) {
	b.mu.Lock()
	defer b.mu.Unlock()

	same := func(h shared.EventHandler) bool { return h == handler }
	b.catchAll = slices.DeleteFunc(b.catchAll, same)
	for t, hs := range b.byType {
		if hs = slices.DeleteFunc(hs, same); len(hs) > 0 {
			b.byType[t] = hs
		} else {
			delete(b.byType, t)
		}
	}
}

func (b *InMemoryEventBus) handlersFor(eventType string) []shared.EventHandler {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return slices.Concat(b.byType[eventType], b.catchAll)
}

// Publish delivers events in order, each to its typed handlers first and
// then the catch-all ones. After Stop, events are dropped.
func (b *InMemoryEventBus) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	if b.closed.Load() {
		b.log.Warn("Event bus stopped, dropping events", zap.Int("count", len(events)))
		return nil
	}
	b.inflight.Add(1)
	defer b.inflight.Done()

	for _, evt := range events {
		for _, h := range b.handlersFor(evt.EventType()) {
			if err := deliver(ctx, h, evt); err != nil {
				b.failures.Add(1)
				logger.L(ctx).Error("Event handler failed",
					zap.String("event_type", evt.EventType()),
					zap.String("event_id", evt.EventID().String()),
					zap.String("handler", fmt.Sprintf("%T", h)),
					zap.Error(err),
				)
			}
		}
	}
	return nil
}

// deliver turns a handler panic into an error.
func deliver(ctx context.Context, h shared.EventHandler, evt shared.DomainEvent) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("handler panicked: %v", r)
		}
	}()
	return h.Handle(ctx, evt)
}

func (b *InMemoryEventBus) Start(context.Context) error {
	b.closed.Store(false)
	b.log.Info("Event bus started")
	return nil
}

// Stop closes the bus to new events and waits for deliveries in progress
// until ctx is done.
func (b *InMemoryEventBus) Stop(ctx context.Context) error {
	b.closed.Store(true)

	drained := make(chan struct{})
	go func() {
		b.inflight.Wait()
		close(drained)
	}()
	select {
	case <-drained:
		b.log.Info("Event bus stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Failures counts handler errors and panics since start.
func (b *InMemoryEventBus) Failures() int64 {
	return b.failures.Load()
}

var _ shared.EventBus = (*InMemoryEventBus)(nil)
