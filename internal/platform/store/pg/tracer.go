package pg

import (
	"context"
	"strings"
	"time"

	"vera/internal/platform/logger"

	"github.com/rs/zerolog"
)

// QueryEvent describes one statement after it ran
type QueryEvent struct {
	SQL     string
	Args    []any
	Elapsed time.Duration
	Err     error
	Slow    bool
}

// QueryTracer receives every statement the store runs
type QueryTracer interface {
	OnQuery(ctx context.Context, ev QueryEvent)
}

// Tracer logs statements when SERVICE_PGSQL_LOG_SQL is on
// it pins its own level so LOG_LEVEL=warn does not hide the trace
func Tracer(root logger.Logger) QueryTracer {
	return logTracer{log: root.Level(zerolog.DebugLevel).With().Str("component", "pg").Logger()}
}

type logTracer struct{ log logger.Logger }

func (t logTracer) OnQuery(_ context.Context, ev QueryEvent) {
	e := t.log.Info()
	switch {
	case ev.Err != nil:
		e = t.log.Error().Err(ev.Err)
	case ev.Slow:
		e = t.log.Warn()
	}
	e.Dur("elapsed", ev.Elapsed).
		Bool("slow", ev.Slow).
		Str("sql", oneLine(ev.SQL)).
		Int("args", len(ev.Args)).
		Msg("pg query")
}

// oneLine collapses the multi-line schema and history statements for the log
func oneLine(sql string) string {
	return strings.Join(strings.Fields(sql), " ")
}
