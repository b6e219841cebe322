package persistence

import (
	"context"
	"sync"

	"github.com/opsease/backend/internal/domain/shared"
	"gorm.io/gorm"
)

type txContextKey struct{}

// txState is carried in the context of a running transaction
type txState struct {
	tx *gorm.DB

	mu    sync.Mutex
	hooks []func()
}

// GormTransactionManager implements shared.TransactionManager using GORM transactions.
// The transaction travels in the context; repositories pick it up through dbFromContext.
type GormTransactionManager struct {
	db *gorm.DB
}

// NewGormTransactionManager creates a new GormTransactionManager.
func NewGormTransactionManager(db *gorm.DB) *GormTransactionManager {
	return &GormTransactionManager{db: db}
}

// Transaction runs fn within a database transaction.
// If fn returns an error, the transaction is rolled back.
// A call made with a context that already carries a transaction joins it.
func (m *GormTransactionManager) Transaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(txContextKey{}).(*txState); ok {
		return fn(ctx)
	}

	state := &txState{}
	err := m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		state.tx = tx
		return fn(context.WithValue(ctx, txContextKey{}, state))
	})
	if err != nil {
		return err
	}

	state.mu.Lock()
	hooks := state.hooks
	state.hooks = nil
	state.mu.Unlock()
	for _, hook := range hooks {
		hook()
	}
	return nil
}

// AfterCommit defers fn until the outermost transaction commits.
// Hooks of a rolled back transaction are discarded.
func (m *GormTransactionManager) AfterCommit(ctx context.Context, fn func()) {
	state, ok := ctx.Value(txContextKey{}).(*txState)
	if !ok {
		fn()
		return
	}
	state.mu.Lock()
	state.hooks = append(state.hooks, fn)
	state.mu.Unlock()
}

// dbFromContext returns the transaction carried by ctx, or db when there is none
func dbFromContext(ctx context.Context, db *gorm.DB) *gorm.DB {
	if state, ok := ctx.Value(txContextKey{}).(*txState); ok && state.tx != nil {
		return state.tx.WithContext(ctx)
	}
	return db.WithContext(ctx)
}

// inTransaction reports whether ctx carries a running transaction
func inTransaction(ctx context.Context) bool {
	_, ok := ctx.Value(txContextKey{}).(*txState)
	return ok
}

// Ensure GormTransactionManager implements TransactionManager
var _ shared.TransactionManager = (*GormTransactionManager)(nil)
