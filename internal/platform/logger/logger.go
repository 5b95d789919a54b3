// Package logger owns the process zerolog root and the per request child loggers
package logger

import (
	"context"
	"io"
	"os"
	"strings"
	"sync/atomic"
	"time"

	"vera/internal/platform/config/raw"

	"github.com/rs/zerolog"
)

// Logger is zerolog's, re-exported so callers import one package
type Logger = zerolog.Logger

// Options configures the root logger; Writer defaults to stdout
type Options struct {
	Level      string
	Format     string // console or json
	Service    string
	WithCaller bool
	Writer     io.Writer
}

// FromEnv reads LOG_* through the raw config view, which never logs
func FromEnv() Options {
	rc := raw.New().Prefix("LOG_")
	return Options{
		Level:      rc.Get("LEVEL", "debug"),
		Format:     strings.ToLower(rc.Get("FORMAT", "console")),
		Service:    rc.Get("SERVICE", ""),
		WithCaller: rc.GetBool("CALLER", false),
	}
}

var root atomic.Pointer[Logger]

// New builds a logger from opt without touching the process root
// an unknown level falls back to debug
func New(opt Options) Logger {
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(opt.Level)))
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.DebugLevel
	}
	var w io.Writer = os.Stdout
	if opt.Writer != nil {
		w = opt.Writer
	}
	if opt.Format == "console" {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}

	c := zerolog.New(w).Level(lvl).With().Timestamp()
	if opt.Service != "" {
		c = c.Str("service", opt.Service)
	}
	if opt.WithCaller {
		c = c.Caller()
	}
	return c.Logger()
}

// Init replaces the process root
func Init(opt Options) {
	zerolog.TimeFieldFormat = time.RFC3339Nano
	l := New(opt)
	root.Store(&l)
}

// Get returns the root, built from the environment on first use
func Get() *Logger {
	if l := root.Load(); l != nil {
		return l
	}
	Init(FromEnv())
	return root.Load()
}

// Named is a child of the root tagged with component
func Named(component string) *Logger {
	l := Get().With().Str("component", component).Logger()
	return &l
}

// WithRequest stores a child logger carrying request_id and client_id on ctx
func WithRequest(ctx context.Context, reqID, clientID string) context.Context {
	c := Get().With()
	if reqID != "" {
		c = c.Str("request_id", reqID)
	}
	if clientID != "" {
		c = c.Str("client_id", clientID)
	}
	l := c.Logger()
	return l.WithContext(ctx)
}

// C is the request logger on ctx, or the root outside a request
func C(ctx context.Context) *Logger {
	if l := zerolog.Ctx(ctx); l.GetLevel() != zerolog.Disabled {
		return l
	}
	return Get()
}
