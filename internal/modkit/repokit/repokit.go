// Package repokit binds repositories to a querier and runs them in transactions
package repokit

import (
	"context"
	"fmt"

	"vera/internal/platform/store"
)

type (
	// Queryer is what a bound repo runs statements on, a pool or an open tx
	Queryer    = store.RowQuerier
	TxRunner   = store.TxRunner
	Rows       = store.Rows
	Row        = store.Row
	CommandTag = store.CommandTag
)

// Binder builds a repo of type T over a Queryer
type Binder[T any] interface {
	Bind(Queryer) T
}

// RequireQueryer panics on a nil q so a missing pool fails at wiring time
func RequireQueryer(q Queryer) Queryer {
	if q == nil {
		panic("repokit: nil Queryer")
	}
	return q
}

// MustBind binds b to q after checking q
func MustBind[T any](b Binder[T], q Queryer) T {
	return b.Bind(RequireQueryer(q))
}

// WithTx runs fn in one transaction on tx
func WithTx(ctx context.Context, tx TxRunner, fn func(q Queryer) error) error {
	return tx.Tx(ctx, fn)
}

// BeginHook runs first inside every transaction, before the caller's fn
type BeginHook func(ctx context.Context, q Queryer) error

// WithBeginHooks returns a TxRunner whose Tx runs hooks then fn in the same tx
func WithBeginHooks(inner TxRunner, hooks ...BeginHook) TxRunner {
	return hookedTx{TxRunner: inner, hooks: hooks}
}

type hookedTx struct {
	TxRunner
	hooks []BeginHook
}

func (h hookedTx) Tx(ctx context.Context, fn func(q Queryer) error) error {
	return h.TxRunner.Tx(ctx, func(q Queryer) error {
		for _, hk := range h.hooks {
			if err := hk(ctx, q); err != nil {
				return err
			}
		}
		return fn(q)
	})
}

// MustGuard panics when any backend behind g fails its readiness check
func MustGuard(ctx context.Context, g interface{ Guard(context.Context) error }) {
	if err := g.Guard(ctx); err != nil {
		panic(fmt.Errorf("dependency guard failed: %w", err))
	}
}
