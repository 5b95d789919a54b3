package store

import (
	"context"

	"vera/internal/platform/store/ch"
)

// chClient is *ch.CH as seen from here
type chClient interface {
	Insert(ctx context.Context, table string, rows [][]any) error
	Query(ctx context.Context, sql string, args ...any) (ch.Rows, error)
	Exec(ctx context.Context, sql string, args ...any) error
	Ping(ctx context.Context) error
	Close() error
}

// chStore publishes a chClient as Clickhouse; only Query differs, since Rows.Close returns nothing
type chStore struct{ chClient }

func (s chStore) Query(ctx context.Context, sql string, args ...any) (Rows, error) {
	r, err := s.chClient.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	return chRows{r}, nil
}

type chRows struct{ ch.Rows }

func (r chRows) Close() { _ = r.Rows.Close() }
