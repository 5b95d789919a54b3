package repokit

import (
	"context"
	"errors"
	"strings"
	"testing"
)

type fakeTx struct {
	execs     []string
	committed bool
}

func (f *fakeTx) Exec(_ context.Context, sql string, _ ...any) (CommandTag, error) {
	f.execs = append(f.execs, sql)
	return nil, nil
}
func (f *fakeTx) Query(context.Context, string, ...any) (Rows, error) { return nil, nil }
func (f *fakeTx) QueryRow(context.Context, string, ...any) Row        { return nil }

func (f *fakeTx) Tx(_ context.Context, fn func(q Queryer) error) error {
	if err := fn(f); err != nil {
		return err
	}
	f.committed = true
	return nil
}

type detectionsRepo struct{ q Queryer }

type detectionsBinder struct{}

func (detectionsBinder) Bind(q Queryer) detectionsRepo { return detectionsRepo{q: q} }

func TestMustBind(t *testing.T) {
	tx := &fakeTx{}
	if r := MustBind[detectionsRepo](detectionsBinder{}, tx); r.q != tx {
		t.Fatalf("repo not bound to querier")
	}

	defer func() {
		if r := recover(); r != "repokit: nil Queryer" {
			t.Fatalf("panic = %v", r)
		}
	}()
	MustBind[detectionsRepo](detectionsBinder{}, nil)
}

func TestWithBeginHooks_Order(t *testing.T) {
	tx := &fakeTx{}
	lock := func(ctx context.Context, q Queryer) error {
		_, err := q.Exec(ctx, "SELECT pg_advisory_xact_lock(1)")
		return err
	}
	err := WithTx(context.Background(), WithBeginHooks(tx, lock), func(q Queryer) error {
		_, err := q.Exec(context.Background(), "CREATE TABLE IF NOT EXISTS detections ()")
		return err
	})
	if err != nil {
		t.Fatalf("tx: %v", err)
	}
	if got := strings.Join(tx.execs, ";"); got != "SELECT pg_advisory_xact_lock(1);CREATE TABLE IF NOT EXISTS detections ()" {
		t.Fatalf("execs = %q", got)
	}
	if !tx.committed {
		t.Fatalf("not committed")
	}
}

func TestWithBeginHooks_HookFailureSkipsFn(t *testing.T) {
	tx := &fakeTx{}
	boom := errors.New("lock timeout")
	ran := false
	err := WithBeginHooks(tx, func(context.Context, Queryer) error { return boom }).
		Tx(context.Background(), func(Queryer) error { ran = true; return nil })
	if !errors.Is(err, boom) || ran || tx.committed {
		t.Fatalf("err=%v ran=%v committed=%v", err, ran, tx.committed)
	}
}

type guardFunc func(context.Context) error

func (g guardFunc) Guard(ctx context.Context) error { return g(ctx) }

func TestMustGuard(t *testing.T) {
	MustGuard(context.Background(), guardFunc(func(context.Context) error { return nil }))

	defer func() {
		r := recover()
		err, ok := r.(error)
		if !ok || !strings.Contains(err.Error(), "dependency guard failed: pg: refused") {
			t.Fatalf("panic = %v", r)
		}
	}()
	MustGuard(context.Background(), guardFunc(func(context.Context) error { return errors.New("pg: refused") }))
}
