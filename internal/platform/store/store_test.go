package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	perr "vera/internal/platform/errors"
	"vera/internal/platform/store/pg"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

type recTracer struct{ events []pg.QueryEvent }

func (r *recTracer) OnQuery(_ context.Context, e pg.QueryEvent) { r.events = append(r.events, e) }

// stepClock advances by step every call
func stepClock(step time.Duration) func() time.Time {
	t := time.Unix(0, 0)
	return func() time.Time {
		t = t.Add(step)
		return t
	}
}

type fakeRow struct{ err error }

func (r fakeRow) Scan(dst ...any) error {
	if r.err != nil {
		return r.err
	}
	if p, ok := dst[0].(*string); ok {
		*p = "deepfake"
	}
	return nil
}

type fakePgxRows struct {
	pgx.Rows
	fields []pgconn.FieldDescription
}

func (r fakePgxRows) FieldDescriptions() []pgconn.FieldDescription { return r.fields }

type fakePgx struct {
	tag      string
	err      error
	rowErr   error
	lastSQL  string
	lastArgs []any
}

func (f *fakePgx) Exec(_ context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	f.lastSQL, f.lastArgs = sql, args
	return pgconn.NewCommandTag(f.tag), f.err
}

func (f *fakePgx) Query(_ context.Context, sql string, _ ...any) (pgx.Rows, error) {
	f.lastSQL = sql
	if f.err != nil {
		return nil, f.err
	}
	return fakePgxRows{fields: []pgconn.FieldDescription{{Name: "id"}, {Name: "verdict"}}}, nil
}

func (f *fakePgx) QueryRow(_ context.Context, sql string, _ ...any) pgx.Row {
	f.lastSQL = sql
	return fakeRow{err: f.rowErr}
}

func TestTraced_Exec(t *testing.T) {
	q := &fakePgx{tag: "INSERT 0 1"}
	tr := &recTracer{}
	tq := traced{q: q, tracer: tr, slow: 50 * time.Millisecond, now: stepClock(10 * time.Millisecond)}

	ct, err := tq.Exec(context.Background(), "INSERT INTO detections (id) VALUES ($1)", "d-1")
	if err != nil {
		t.Fatalf("exec: %v", err)
	}
	if ct.RowsAffected() != 1 || ct.String() != "INSERT 0 1" {
		t.Fatalf("tag = %q rows=%d", ct.String(), ct.RowsAffected())
	}
	if len(tr.events) != 1 {
		t.Fatalf("events = %d, want 1", len(tr.events))
	}
	e := tr.events[0]
	if e.Elapsed != 10*time.Millisecond || e.Slow || e.Err != nil || len(e.Args) != 1 {
		t.Fatalf("event = %+v", e)
	}
}

func TestTraced_SlowAndFailed(t *testing.T) {
	boom := errors.New("connection reset")
	q := &fakePgx{err: boom}
	tr := &recTracer{}
	tq := traced{q: q, tracer: tr, slow: 50 * time.Millisecond, now: stepClock(80 * time.Millisecond)}

	if _, err := tq.Query(context.Background(), "SELECT id FROM detections"); !errors.Is(err, boom) {
		t.Fatalf("err = %v", err)
	}
	e := tr.events[0]
	if !e.Slow || !errors.Is(e.Err, boom) {
		t.Fatalf("event = %+v", e)
	}
}

func TestTraced_NoThresholdNeverSlow(t *testing.T) {
	tr := &recTracer{}
	tq := traced{q: &fakePgx{tag: "DELETE 0"}, tracer: tr, now: stepClock(time.Hour)}
	if _, err := tq.Exec(context.Background(), "DELETE FROM detections"); err != nil {
		t.Fatalf("exec: %v", err)
	}
	if tr.events[0].Slow {
		t.Fatalf("zero threshold must not flag slow")
	}
}

func TestTraced_NilTracer(t *testing.T) {
	tq := traced{q: &fakePgx{tag: "UPDATE 2"}, now: time.Now}
	ct, err := tq.Exec(context.Background(), "UPDATE detections SET verdict = 'natural'")
	if err != nil || ct.RowsAffected() != 2 {
		t.Fatalf("ct=%v err=%v", ct, err)
	}
}

func TestTraced_QueryRowReportsScanError(t *testing.T) {
	noRows := errors.New("no rows in result set")
	tr := &recTracer{}
	tq := traced{q: &fakePgx{rowErr: noRows}, tracer: tr, now: stepClock(time.Millisecond)}

	row := tq.QueryRow(context.Background(), "SELECT verdict FROM detections WHERE id = $1", "d-9")
	if len(tr.events) != 0 {
		t.Fatalf("reported before scan")
	}
	var v string
	if err := row.Scan(&v); !errors.Is(err, noRows) {
		t.Fatalf("scan err = %v", err)
	}
	if len(tr.events) != 1 || !errors.Is(tr.events[0].Err, noRows) {
		t.Fatalf("events = %+v", tr.events)
	}
}

func TestTraced_QueryColumns(t *testing.T) {
	tq := traced{q: &fakePgx{}, now: time.Now}
	rs, err := tq.Query(context.Background(), "SELECT id, verdict FROM detections")
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if got := strings.Join(rs.Columns(), ","); got != "id,verdict" {
		t.Fatalf("columns = %q", got)
	}
}

func TestPGStore_PingNil(t *testing.T) {
	var s *pgStore
	if err := s.Ping(context.Background()); err == nil {
		t.Fatalf("expected error for unopened store")
	}
}

// fakeQuerier drives ExecOne and Many
type fakeQuerier struct {
	affected int64
	execErr  error
	rows     *sliceRows
	queryErr error
}

type fixedTag int64

func (t fixedTag) String() string      { return fmt.Sprintf("INSERT 0 %d", int64(t)) }
func (t fixedTag) RowsAffected() int64 { return int64(t) }

func (f *fakeQuerier) Exec(context.Context, string, ...any) (CommandTag, error) {
	return fixedTag(f.affected), f.execErr
}

func (f *fakeQuerier) Query(context.Context, string, ...any) (Rows, error) {
	if f.queryErr != nil {
		return nil, f.queryErr
	}
	return f.rows, nil
}

func (f *fakeQuerier) QueryRow(context.Context, string, ...any) Row { return nil }

type sliceRows struct {
	verdicts []string
	i        int
	err      error
	closed   bool
}

func (r *sliceRows) Next() bool {
	if r.i >= len(r.verdicts) {
		return false
	}
	r.i++
	return true
}

func (r *sliceRows) Scan(dst ...any) error {
	*(dst[0].(*string)) = r.verdicts[r.i-1]
	return nil
}

func (r *sliceRows) Err() error        { return r.err }
func (r *sliceRows) Close()            { r.closed = true }
func (r *sliceRows) Columns() []string { return []string{"verdict"} }

func scanVerdict(r Row) (string, error) {
	var v string
	err := r.Scan(&v)
	return v, err
}

func TestExecOne(t *testing.T) {
	ctx := context.Background()
	cases := []struct {
		name     string
		affected int64
		execErr  error
		wantDB   bool
		wantErr  bool
	}{
		{"one row", 1, nil, false, false},
		{"no rows", 0, nil, true, true},
		{"two rows", 2, nil, true, true},
		{"exec fails", 0, errors.New("boom"), false, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			q := &fakeQuerier{affected: tc.affected, execErr: tc.execErr}
			err := ExecOne(ctx, q, "INSERT INTO detections (id) VALUES ($1)", "d-1")
			if (err != nil) != tc.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tc.wantErr)
			}
			if tc.wantDB && !perr.IsCode(err, perr.ErrorCodeDB) {
				t.Fatalf("err = %v, want db code", err)
			}
		})
	}
}

func TestMany(t *testing.T) {
	ctx := context.Background()

	rows := &sliceRows{verdicts: []string{"deepfake", "natural"}}
	got, err := Many(ctx, &fakeQuerier{rows: rows}, scanVerdict, "SELECT verdict FROM detections")
	if err != nil {
		t.Fatalf("many: %v", err)
	}
	if strings.Join(got, ",") != "deepfake,natural" || !rows.closed {
		t.Fatalf("got %v closed=%v", got, rows.closed)
	}

	empty, err := Many(ctx, &fakeQuerier{rows: &sliceRows{}}, scanVerdict, "SELECT verdict FROM detections")
	if err != nil || len(empty) != 0 {
		t.Fatalf("empty = %v err=%v", empty, err)
	}

	iterErr := errors.New("stream broke")
	if _, err := Many(ctx, &fakeQuerier{rows: &sliceRows{err: iterErr}}, scanVerdict, "SELECT 1"); !errors.Is(err, iterErr) {
		t.Fatalf("err = %v", err)
	}

	qErr := errors.New("relation does not exist")
	if _, err := Many(ctx, &fakeQuerier{queryErr: qErr}, scanVerdict, "SELECT 1"); !errors.Is(err, qErr) {
		t.Fatalf("err = %v", err)
	}
}

type fakePinger struct {
	TxRunner
	err    error
	closed bool
}

func (p *fakePinger) Ping(context.Context) error { return p.err }
func (p *fakePinger) Close() error               { p.closed = true; return nil }

func TestGuard(t *testing.T) {
	ctx := context.Background()

	var nilStore *Store
	if err := nilStore.Guard(ctx); err == nil {
		t.Fatalf("nil store must fail guard")
	}

	if err := (&Store{}).Guard(ctx); err != nil {
		t.Fatalf("no backends: %v", err)
	}

	down := &Store{PG: &fakePinger{err: errors.New("dial tcp: refused")}}
	err := down.Guard(ctx)
	if err == nil || !strings.HasPrefix(err.Error(), "pg: dial tcp") {
		t.Fatalf("err = %v", err)
	}

	up := &Store{PG: &fakePinger{}}
	if err := up.Guard(ctx); err != nil {
		t.Fatalf("healthy: %v", err)
	}
}

func TestClose(t *testing.T) {
	p := &fakePinger{}
	s := &Store{PG: p}
	if err := s.Close(context.Background()); err != nil {
		t.Fatalf("close: %v", err)
	}
	if !p.closed {
		t.Fatalf("pg not closed")
	}
	if err := (&Store{}).Close(context.Background()); err != nil {
		t.Fatalf("empty close: %v", err)
	}
}
