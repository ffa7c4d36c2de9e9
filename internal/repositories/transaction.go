package repositories

import (
	"context"
)

// Transaction represents a database transaction that can be used across multiple repositories
type Transaction interface {
	// Commit commits the transaction
	Commit() error

	// Rollback rolls back the transaction
	Rollback() error

	// Context returns the transaction context. Repositories called with it
	// join the transaction.
	Context() context.Context
}

// TransactionManager manages database transactions
type TransactionManager interface {
	// BeginTransaction starts a new transaction
	BeginTransaction(ctx context.Context) (Transaction, error)

	// WithTransaction executes fn within a transaction, committing when fn
	// returns nil and rolling back on error or panic
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error

	// WithReadTransaction executes fn against a single read snapshot
	WithReadTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
