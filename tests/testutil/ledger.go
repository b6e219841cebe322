package testutil

import (
	"context"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/opsease/backend/internal/domain/ledger"
	"github.com/opsease/backend/internal/domain/shared"
)

type memoryTxKey struct{}

type memoryTx struct {
	hooks []func()
}

// MemoryTransactionManager is a shared.TransactionManager for unit tests.
// It tracks nesting and after-commit hooks but has no rollback of its own;
// pair it with fakes that do not need one.
type MemoryTransactionManager struct {
	commits   atomic.Int32
	rollbacks atomic.Int32
}

// NewMemoryTransactionManager creates a new MemoryTransactionManager
func NewMemoryTransactionManager() *MemoryTransactionManager {
	return &MemoryTransactionManager{}
}

// Transaction runs fn, joining an outer transaction when ctx carries one
func (m *MemoryTransactionManager) Transaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(memoryTxKey{}).(*memoryTx); ok {
		return fn(ctx)
	}
	tx := &memoryTx{}
	if err := fn(context.WithValue(ctx, memoryTxKey{}, tx)); err != nil {
		m.rollbacks.Add(1)
		return err
	}
	m.commits.Add(1)
	for _, hook := range tx.hooks {
		hook()
	}
	return nil
}

// AfterCommit queues fn until the outermost transaction commits
func (m *MemoryTransactionManager) AfterCommit(ctx context.Context, fn func()) {
	if tx, ok := ctx.Value(memoryTxKey{}).(*memoryTx); ok {
		tx.hooks = append(tx.hooks, fn)
		return
	}
	fn()
}

// InTransaction reports whether ctx carries a transaction
func (m *MemoryTransactionManager) InTransaction(ctx context.Context) bool {
	_, ok := ctx.Value(memoryTxKey{}).(*memoryTx)
	return ok
}

// Commits returns the number of committed outermost transactions
func (m *MemoryTransactionManager) Commits() int {
	return int(m.commits.Load())
}

// Rollbacks returns the number of failed outermost transactions
func (m *MemoryTransactionManager) Rollbacks() int {
	return int(m.rollbacks.Load())
}

var _ shared.TransactionManager = (*MemoryTransactionManager)(nil)

// MemoryLedgerRepository is an in-memory ledger.LedgerEntryRepository.
// Each call is atomic on its own; nothing serializes a read followed by a
// write, so callers must provide their own party locking.
type MemoryLedgerRepository struct {
	mu      sync.Mutex
	entries []ledger.LedgerEntry
	// CreateErr, when set, is returned by Create
	CreateErr error
}

// NewMemoryLedgerRepository creates an empty repository
func NewMemoryLedgerRepository() *MemoryLedgerRepository {
	return &MemoryLedgerRepository{}
}

// Seed inserts entries verbatim, stored balances included
func (r *MemoryLedgerRepository) Seed(entries ...ledger.LedgerEntry) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, entries...)
}

// Entries returns a copy of everything stored, in insertion order
func (r *MemoryLedgerRepository) Entries() []ledger.LedgerEntry {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.entries)
}

// Create stores the entry as given
func (r *MemoryLedgerRepository) Create(ctx context.Context, entry *ledger.LedgerEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.CreateErr != nil {
		return r.CreateErr
	}
	r.entries = append(r.entries, *entry)
	return nil
}

// FindByParty returns one party's entries, most recent first
func (r *MemoryLedgerRepository) FindByParty(ctx context.Context, userID, partyName string) ([]ledger.LedgerEntry, error) {
	out := r.filter(userID, partyName)
	ledger.SortRecentFirst(out)
	return out, nil
}

// FindAll returns the user's entries, oldest first
func (r *MemoryLedgerRepository) FindAll(ctx context.Context, userID, partyName string) ([]ledger.LedgerEntry, error) {
	out := r.filter(userID, partyName)
	ledger.SortChronological(out)
	return out, nil
}

func (r *MemoryLedgerRepository) filter(userID, partyName string) []ledger.LedgerEntry {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []ledger.LedgerEntry
	for _, e := range r.entries {
		if e.UserID != userID {
			continue
		}
		if partyName != "" && e.PartyName != partyName {
			continue
		}
		out = append(out, e)
	}
	return out
}

// ExistsBySource reports whether an entry came from the given document
func (r *MemoryLedgerRepository) ExistsBySource(ctx context.Context, userID string, sourceType ledger.SourceType, sourceID uuid.UUID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.entries {
		if e.UserID == userID && e.SourceType == sourceType && e.SourceID != nil && *e.SourceID == sourceID {
			return true, nil
		}
	}
	return false, nil
}

// LockParty is a no-op
func (r *MemoryLedgerRepository) LockParty(ctx context.Context, userID, partyName string) error {
	return nil
}

// UpdateBalance overwrites one stored balance
func (r *MemoryLedgerRepository) UpdateBalance(ctx context.Context, id uuid.UUID, balance decimal.Decimal) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.entries {
		if r.entries[i].ID == id {
			r.entries[i].Balance = balance
			return nil
		}
	}
	return shared.ErrNotFound
}

// ListUserIDs returns every user with entries, sorted
func (r *MemoryLedgerRepository) ListUserIDs(ctx context.Context) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	seen := make(map[string]struct{})
	var ids []string
	for _, e := range r.entries {
		if _, ok := seen[e.UserID]; !ok {
			seen[e.UserID] = struct{}{}
			ids = append(ids, e.UserID)
		}
	}
	slices.Sort(ids)
	return ids, nil
}

var _ ledger.LedgerEntryRepository = (*MemoryLedgerRepository)(nil)
