package store

import (
	"context"
	"errors"
	"time"

	"vera/internal/platform/store/pg"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// pgxQuerier is what pgxpool.Pool and pgx.Tx have in common
type pgxQuerier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// traced runs statements on q and reports each one to the tracer, if any
type traced struct {
	q      pgxQuerier
	tracer pg.QueryTracer
	slow   time.Duration
	now    func() time.Time
}

func (t traced) Exec(ctx context.Context, sql string, args ...any) (CommandTag, error) {
	start := t.now()
	ct, err := t.q.Exec(ctx, sql, args...)
	t.report(ctx, sql, args, start, err)
	return ct, err
}

func (t traced) Query(ctx context.Context, sql string, args ...any) (Rows, error) {
	start := t.now()
	rs, err := t.q.Query(ctx, sql, args...)
	t.report(ctx, sql, args, start, err)
	if err != nil {
		return nil, err
	}
	return pgxRows{rs}, nil
}

// QueryRow reports once Scan returns so the scan error is part of the event
func (t traced) QueryRow(ctx context.Context, sql string, args ...any) Row {
	start := t.now()
	return scanReporter{
		row:  t.q.QueryRow(ctx, sql, args...),
		done: func(err error) { t.report(ctx, sql, args, start, err) },
	}
}

func (t traced) report(ctx context.Context, sql string, args []any, start time.Time, err error) {
	if t.tracer == nil {
		return
	}
	took := t.now().Sub(start)
	t.tracer.OnQuery(ctx, pg.QueryEvent{
		SQL:     sql,
		Args:    args,
		Elapsed: took,
		Err:     err,
		Slow:    t.slow > 0 && took >= t.slow,
	})
}

// pgStore is the TxRunner published as Store.PG
type pgStore struct {
	traced
	db *pg.PG
}

func newPGStore(db *pg.PG) *pgStore {
	return &pgStore{
		traced: traced{q: db.Pool, tracer: db.Tracer, slow: db.SlowQuery, now: time.Now},
		db:     db,
	}
}

// Ping runs a trivial select through the tracer
func (s *pgStore) Ping(ctx context.Context) error {
	if s == nil {
		return errors.New("pg: not opened")
	}
	var one int
	return s.QueryRow(ctx, "SELECT 1").Scan(&one)
}

func (s *pgStore) Close() error {
	s.db.Close()
	return nil
}

// Tx commits when fn returns nil and rolls back otherwise
func (s *pgStore) Tx(ctx context.Context, fn func(q RowQuerier) error) error {
	tx, err := s.db.Pool.Begin(ctx)
	if err != nil {
		return err
	}
	in := s.traced
	in.q = tx
	if err := fn(in); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}
	return tx.Commit(ctx)
}

type scanReporter struct {
	row  pgx.Row
	done func(error)
}

func (r scanReporter) Scan(dst ...any) error {
	err := r.row.Scan(dst...)
	r.done(err)
	return err
}

type pgxRows struct{ pgx.Rows }

func (r pgxRows) Columns() []string {
	fds := r.FieldDescriptions()
	names := make([]string, 0, len(fds))
	for _, fd := range fds {
		names = append(names, fd.Name)
	}
	return names
}
