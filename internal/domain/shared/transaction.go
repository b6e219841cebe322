package shared

import "context"

// TransactionManager runs units of work atomically.
//
// Transaction joins an already running transaction when ctx carries one, so
// services can compose without knowing whether they are the outermost caller.
// AfterCommit registers fn to run once the outermost transaction commits; it
// runs immediately when ctx carries no transaction.
type TransactionManager interface {
	Transaction(ctx context.Context, fn func(ctx context.Context) error) error
	AfterCommit(ctx context.Context, fn func())
}
