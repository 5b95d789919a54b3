// Package modkit is how api modules receive their shared deps and mount routes
package modkit

import (
	"vera/internal/modkit/repokit"
	"vera/internal/platform/config"
	"vera/internal/platform/logger"
	phttp "vera/internal/platform/net/http"
	"vera/internal/platform/store"
)

// Module is one mountable slice of the api
type Module interface {
	MountRoutes(r phttp.Router)
	// Ports is what the module exposes to the process, nil when nothing
	Ports() any
	Name() string
}

// Deps are shared by every module; PG and CH are nil when history is off
type Deps struct {
	Log logger.Logger
	Cfg config.Conf
	PG  repokit.TxRunner
	CH  store.Clickhouse
}

// Option overrides a module default
type Option func(*Built)

// Built is the result of applying options over a module's defaults
type Built struct {
	Name   string
	Prefix string
	Ports  any
}

func WithName(name string) Option { return func(b *Built) { b.Name = name } }

func WithPrefix(prefix string) Option { return func(b *Built) { b.Prefix = prefix } }

// WithPorts injects collaborators; the module type-asserts them back to T
func WithPorts[T any](p T) Option { return func(b *Built) { b.Ports = p } }

// Build applies opts in order so callers can override a module's own defaults
func Build(opts ...Option) Built {
	var b Built
	for _, o := range opts {
		o(&b)
	}
	return b
}
