package store

import (
	"context"
	"fmt"
	"time"

	chx "vera/internal/platform/store/ch"
	"vera/internal/platform/store/pg"

	"github.com/cenkalti/backoff/v4"
)

const (
	pgConnectRetries = 20
	pgPingTimeout    = 3 * time.Second
	chPingTimeout    = 5 * time.Second
)

// pgBackOff is exponential from 150ms, capped at 2s per wait
func pgBackOff() *backoff.ExponentialBackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 150 * time.Millisecond
	b.MaxInterval = 2 * time.Second
	b.Multiplier = 2
	b.RandomizationFactor = 0
	b.MaxElapsedTime = 0
	b.Reset()
	return b
}

// openPG opens pg and wraps it with our sql adapter
// the adapter is only published once the pool answers a ping
func openPG(ctx context.Context, cfg Config, s *Store) (TxRunner, error) {
	var tracer pg.QueryTracer
	if cfg.PG.LogSQL {
		tracer = pg.Tracer(s.Log)
	}

	p, err := pg.Open(ctx, pg.Config{
		URL:       cfg.PG.URL,
		MaxConns:  cfg.PG.MaxConns,
		SlowQuery: cfg.PG.SlowQuery,
	}, tracer)
	if err != nil {
		return nil, err
	}

	retries := cfg.PG.ConnectRetries
	if retries <= 0 {
		retries = pgConnectRetries
	}
	pingTimeout := cfg.PG.PingTimeout
	if pingTimeout <= 0 {
		pingTimeout = pgPingTimeout
	}

	attempts := 0
	ping := func() error {
		attempts++
		toCtx, cancel := context.WithTimeout(ctx, pingTimeout)
		defer cancel()
		return p.Pool.Ping(toCtx) // pool directly, no SQL trace line
	}
	notify := func(err error, wait time.Duration) {
		s.Log.Warn().Err(err).Int("attempt", attempts).Dur("wait", wait).Msg("postgres not ready")
	}
	policy := backoff.WithContext(backoff.WithMaxRetries(pgBackOff(), uint64(retries-1)), ctx)
	if err := backoff.RetryNotify(ping, policy, notify); err != nil {
		p.Close()
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("postgres ping failed after %d attempts: %w", attempts, err)
	}

	s.Log.Info().Int("attempts", attempts).Msg("postgres connected")
	return newPGStore(p), nil
}

func openCH(ctx context.Context, cfg Config, s *Store) (Clickhouse, error) {
	c, err := chx.Open(ctx, chx.Config{
		URL:        cfg.CH.URL,
		ClientName: cfg.CH.ClientName,
		ClientTag:  cfg.CH.ClientTag,
	})
	if err != nil {
		return nil, err
	}
	toCtx, cancel := context.WithTimeout(ctx, chPingTimeout)
	defer cancel()
	if err := c.Ping(toCtx); err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("clickhouse ping failed: %w", err)
	}
	s.Log.Info().Str("client", cfg.CH.ClientTag).Msg("clickhouse connected")
	return chStore{c}, nil
}
