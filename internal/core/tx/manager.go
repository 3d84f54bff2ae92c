// Package tx defines transaction management contracts.
//
// Implementations carry the active transaction in the context so that
// repositories called inside fn join it transparently. A movement posting,
// its balance update and its audit record all commit or roll back together.
package tx

import "context"

// Manager runs functions within a database transaction.
type Manager interface {
	// RunInTransaction executes fn inside a transaction. The transaction is
	// committed when fn returns nil and rolled back when it returns an error
	// or panics. Nested calls join the transaction already in ctx.
	RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// ReadOnlyManager runs functions within a read-only transaction, giving
// multi-query reads a consistent snapshot.
type ReadOnlyManager interface {
	RunInReadOnlyTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
