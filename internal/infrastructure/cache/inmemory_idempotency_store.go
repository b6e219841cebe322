package cache

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/opsease/backend/internal/domain/shared"
)

const janitorInterval = 5 * time.Minute

// InMemoryIdempotencyStore keeps forwarded event ids in a go-cache whose
// janitor drops expired ids. It only deduplicates within one process.
type InMemoryIdempotencyStore struct {
	seen *gocache.Cache
}

func NewInMemoryIdempotencyStore() *InMemoryIdempotencyStore {
	return &InMemoryIdempotencyStore{
		seen: gocache.New(shared.DefaultIdempotencyConfig().TTL, janitorInterval),
	}
}

// MarkProcessed reports true the first time eventID is marked within ttl.
// go-cache's Add refuses an unexpired key, which gives set-if-absent.
func (s *InMemoryIdempotencyStore) MarkProcessed(_ context.Context, eventID string, ttl time.Duration) (bool, error) {
	return s.seen.Add(eventID, struct{}{}, ttl) == nil, nil
}

func (s *InMemoryIdempotencyStore) IsProcessed(_ context.Context, eventID string) (bool, error) {
	_, ok := s.seen.Get(eventID)
	return ok, nil
}

func (s *InMemoryIdempotencyStore) Close() error {
	s.seen.Flush()
	return nil
}

// Size counts stored ids, including expired ones the janitor has not
// reached yet.
func (s *InMemoryIdempotencyStore) Size() int {
	return s.seen.ItemCount()
}

var _ shared.IdempotencyStore = (*InMemoryIdempotencyStore)(nil)
