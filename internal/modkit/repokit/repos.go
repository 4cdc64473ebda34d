// Package repokit is the thin vocabulary repos are written in: the Queryer
// seam, the Binder factory, and row-mapping helpers
package repokit

import (
	"context"

	"newshound/internal/platform/store"
)

// Queryer is what repo methods run against. Inside a transaction it is the
// tx, outside it is the pool
type Queryer = store.RowQuerier

// TxRunner opens transactions and doubles as the bare Queryer
type TxRunner = store.TxRunner

// Row is re-exported so repo scan funcs avoid a store import
type Row = store.Row

// Binder builds a repo bound to one Queryer. Services bind per call so the
// same repo code runs inside or outside a transaction
type Binder[T any] interface {
	Bind(Queryer) T
}

// One maps a single row into T with scan. Empty result sets surface as the
// coded not found sentinel, so repos can attach their own message
func One[T any](ctx context.Context, q Queryer, scan func(Row) (T, error), sql string, args ...any) (T, error) {
	return store.One(ctx, q, scan, sql, args...)
}

// Many maps all rows into []T with scan
func Many[T any](ctx context.Context, q Queryer, scan func(Row) (T, error), sql string, args ...any) ([]T, error) {
	return store.Many(ctx, q, scan, sql, args...)
}

// ExecOne runs a write and asserts exactly one row was touched
func ExecOne(ctx context.Context, q Queryer, sql string, args ...any) error {
	return store.ExecOne(ctx, q, sql, args...)
}
