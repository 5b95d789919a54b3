// Package module mounts the meta routes
package module

import (
	"time"

	"vera/internal/core/version"
	"vera/internal/modkit"
	"vera/internal/modkit/httpkit"
	str "vera/internal/platform/strings"

	metahttp "vera/internal/services/api/meta/http"
)

// Module serves /meta; it exposes no ports
type Module struct {
	name   string
	prefix string
	deps   metahttp.Deps
}

// New builds the meta module; the backends come from deps and stay nil when off
func New(deps modkit.Deps, opts ...modkit.Option) modkit.Module {
	b := modkit.Build(append([]modkit.Option{
		modkit.WithName("meta"),
		modkit.WithPrefix("/meta"),
	}, opts...)...)

	md := metahttp.Deps{
		ServiceName: version.Info().Service,
		StartedAt:   time.Now(),
	}
	// keep the interfaces nil rather than typed nils so ready reports skipped
	if deps.PG != nil {
		md.PG = deps.PG
	}
	if deps.CH != nil {
		md.CH = deps.CH
	}
	return &Module{name: str.MustString(b.Name, "meta module name"), prefix: str.MustPrefix(b.Prefix), deps: md}
}

func (m *Module) MountRoutes(r httpkit.Router) {
	r.Route(m.prefix, func(rr httpkit.Router) { metahttp.Register(rr, m.deps) })
}

func (m *Module) Name() string { return m.name }

func (m *Module) Ports() any { return nil }
