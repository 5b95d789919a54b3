// Package pg opens the Postgres pool that backs detection history
package pg

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Config is the pool setup read from SERVICE_PGSQL_*
type Config struct {
	URL       string
	MaxConns  int32
	SlowQuery time.Duration
}

// PG holds the pool plus the tracing knobs the store adapter applies
type PG struct {
	Pool      *pgxpool.Pool
	Tracer    QueryTracer
	SlowQuery time.Duration
}

// newPool is swapped in tests; pgxpool connects lazily so no server is needed
var newPool = pgxpool.NewWithConfig

// Open parses cfg.URL and builds the pool; tracer may be nil
func Open(ctx context.Context, cfg Config, tracer QueryTracer) (*PG, error) {
	pcfg, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, err
	}
	if cfg.MaxConns > 0 {
		pcfg.MaxConns = cfg.MaxConns
	}
	pool, err := newPool(ctx, pcfg)
	if err != nil {
		return nil, err
	}
	return &PG{Pool: pool, Tracer: tracer, SlowQuery: cfg.SlowQuery}, nil
}

// Close releases the pool; safe on nil
func (p *PG) Close() {
	if p == nil || p.Pool == nil {
		return
	}
	p.Pool.Close()
}
