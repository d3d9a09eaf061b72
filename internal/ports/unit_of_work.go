package ports

import (
	"context"
	"fmt"
)

// Tx is the transaction handle carried in context. The persistence adapter
// owns the concrete type.
type Tx interface{}

// UnitOfWork scopes a nested write: parent update, child delete and child
// re-insert commit together or not at all.
//
// Repositories called with the ctx passed to fn join the transaction. A
// WithTx inside fn opens a savepoint instead of a second transaction.
type UnitOfWork interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type txKey struct{}

func WithTxContext(ctx context.Context, tx Tx) context.Context {
	return context.WithValue(ctx, txKey{}, tx)
}

// TxFromContext returns nil when ctx carries no transaction.
func TxFromContext(ctx context.Context) Tx {
	return ctx.Value(txKey{})
}

// TxAs returns the ctx transaction as T. ok is false when there is none; a
// handle of another type, or a nil one, is an error.
func TxAs[T comparable](ctx context.Context) (tx T, ok bool, err error) {
	current := TxFromContext(ctx)
	if current == nil {
		return tx, false, nil
	}

	var zero T
	tx, ok = current.(T)
	if !ok || tx == zero {
		return zero, false, fmt.Errorf("invalid tx in context: %T", current)
	}
	return tx, true, nil
}
