package event

import (
	"context"
	"testing"
	"time"

	"github.com/opsease/backend/internal/domain/ledger"
	"github.com/opsease/backend/tests/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func postedEvent(t *testing.T, userID, party string) *ledger.LedgerEntryPostedEvent {
	t.Helper()
	e, err := ledger.NewLedgerEntry(ledger.EntryInput{
		UserID:      userID,
		PartyName:   party,
		PartyType:   ledger.PartyTypeBuyer,
		EntryType:   ledger.EntryTypeDebit,
		Amount:      decimal.RequireFromString("5000"),
		Description: "Sales Invoice SI00000001",
		Reference:   "SI00000001",
		EntryDate:   time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	e.Balance = e.Amount
	return ledger.NewLedgerEntryPostedEvent(e)
}

// failingHandler records events but returns err from every Handle
func failingHandler(err error, eventTypes ...string) *testutil.EventRecorder {
	h := testutil.NewEventRecorder(eventTypes...)
	h.FailWith(err)
	return h
}

// MockIdempotencyStore is a mock implementation of shared.IdempotencyStore
type MockIdempotencyStore struct {
	mock.Mock
}

func (m *MockIdempotencyStore) MarkProcessed(ctx context.Context, eventID string, ttl time.Duration) (bool, error) {
	args := m.Called(ctx, eventID, ttl)
	return args.Bool(0), args.Error(1)
}

func (m *MockIdempotencyStore) IsProcessed(ctx context.Context, eventID string) (bool, error) {
	args := m.Called(ctx, eventID)
	return args.Bool(0), args.Error(1)
}

func (m *MockIdempotencyStore) Close() error {
	return m.Called().Error(0)
}
