package store

import (
	"context"
	"errors"
	"testing"

	"vera/internal/platform/store/ch"
)

type fakeCHRows struct {
	left   int
	closed bool
}

func (f *fakeCHRows) Next() bool             { f.left--; return f.left >= 0 }
func (f *fakeCHRows) Scan(dest ...any) error { *(dest[0].(*string)) = "image"; return nil }
func (f *fakeCHRows) Err() error             { return nil }
func (f *fakeCHRows) Close() error           { f.closed = true; return nil }
func (f *fakeCHRows) Columns() []string      { return []string{"media_type"} }

type fakeCH struct {
	rows   *fakeCHRows
	qErr   error
	table  string
	insert [][]any
}

func (f *fakeCH) Insert(_ context.Context, table string, rows [][]any) error {
	f.table, f.insert = table, rows
	return nil
}

func (f *fakeCH) Query(context.Context, string, ...any) (ch.Rows, error) {
	if f.qErr != nil {
		return nil, f.qErr
	}
	return f.rows, nil
}

func (f *fakeCH) Exec(context.Context, string, ...any) error { return nil }
func (f *fakeCH) Ping(context.Context) error                 { return errors.New("down") }
func (f *fakeCH) Close() error                               { return nil }

func TestCHStore(t *testing.T) {
	f := &fakeCH{rows: &fakeCHRows{left: 2}}
	var c Clickhouse = chStore{f}

	if err := c.Insert(context.Background(), "detection_events", [][]any{{"img"}}); err != nil || f.table != "detection_events" {
		t.Fatalf("insert not delegated: %v %q", err, f.table)
	}

	rows, err := c.Query(context.Background(), "SELECT media_type FROM detection_events")
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	var got []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			t.Fatalf("scan: %v", err)
		}
		got = append(got, s)
	}
	rows.Close()
	if len(got) != 2 || got[0] != "image" || !f.rows.closed {
		t.Fatalf("rows = %v, closed %v", got, f.rows.closed)
	}

	if p, ok := c.(Pinger); !ok || p.Ping(context.Background()) == nil {
		t.Fatalf("ping not delegated")
	}

	f.qErr = errors.New("syntax error")
	if _, err := c.Query(context.Background(), "SELEC"); !errors.Is(err, f.qErr) {
		t.Fatalf("err = %v", err)
	}
}
