package pg

import (
	"context"
	"errors"
	"testing"
	"time"

	"vera/internal/platform/testkit"

	"github.com/jackc/pgx/v5/pgxpool"
)

func TestOpen(t *testing.T) {
	testkit.Serial(t)

	var got *pgxpool.Config
	fake := &pgxpool.Pool{}
	testkit.Swap(t, &newPool, func(_ context.Context, c *pgxpool.Config) (*pgxpool.Pool, error) {
		got = c
		return fake, nil
	})

	cfg := Config{URL: "postgres://vera:vera@db:5432/vera?sslmode=disable", MaxConns: 4, SlowQuery: 500 * time.Millisecond}
	p, err := Open(context.Background(), cfg, nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if p.Pool != fake || p.SlowQuery != cfg.SlowQuery || got.MaxConns != 4 {
		t.Fatalf("pg = %+v max_conns=%d", p, got.MaxConns)
	}
}

func TestOpen_Errors(t *testing.T) {
	testkit.Serial(t)

	if _, err := Open(context.Background(), Config{URL: "://bad"}, nil); err == nil {
		t.Fatalf("bad url accepted")
	}

	testkit.Swap(t, &newPool, func(context.Context, *pgxpool.Config) (*pgxpool.Pool, error) {
		return nil, errors.New("pool refused")
	})
	if _, err := Open(context.Background(), Config{URL: "postgres://db/vera"}, nil); err == nil {
		t.Fatalf("pool error swallowed")
	}
}

func TestClose_Nil(t *testing.T) {
	var p *PG
	p.Close()
	(&PG{}).Close()
}
