// Package module wires detect into the API using modkit
package module

import (
	"os"

	"vera/internal/adapters/cloudinary"
	"vera/internal/adapters/openai"
	modkit "vera/internal/modkit"
	"vera/internal/modkit/httpkit"
	"vera/internal/modkit/repokit"
	"vera/internal/platform/logger"

	"vera/internal/services/api/detect/domain"
	dhttp "vera/internal/services/api/detect/http"
	drepo "vera/internal/services/api/detect/repo"
	dsvc "vera/internal/services/api/detect/service"
)

// HistoryPrefix is where the detection history is mounted when Postgres is enabled
const HistoryPrefix = "/detections"

// Module implements the detect API module
type Module struct {
	name    string
	prefix  string
	history bool
	upload  string

	svc dsvc.Service
}

// Ports lets callers inject the collaborators instead of building them from config
// nil fields are built from Options
type Ports struct {
	Store    domain.ObjectStore
	Detector domain.Detector
}

// New constructs the detect module
func New(deps modkit.Deps, opts ...modkit.Option) modkit.Module {
	b := modkit.Build(append([]modkit.Option{
		modkit.WithName("detect"),
		modkit.WithPrefix("/detect"),
	}, opts...)...)

	cfg := FromConfig(deps.Cfg)

	var injected Ports
	if p, ok := b.Ports.(Ports); ok {
		injected = p
	}

	svc, history := NewService(deps, cfg, injected)

	if err := os.MkdirAll(cfg.UploadDir, 0o750); err != nil {
		deps.Log.Error().Err(err).Str("dir", cfg.UploadDir).Msg("upload dir not usable, multipart detections will fail")
	}

	return &Module{
		name:    b.Name,
		prefix:  b.Prefix,
		history: history,
		upload:  cfg.UploadDir,
		svc:     svc,
	}
}

// NewService builds the orchestrator with its collaborators and history sinks
// the second result reports whether history can be listed
func NewService(deps modkit.Deps, cfg Options, p Ports) (dsvc.Service, bool) {
	log := logger.Named("detect")

	if p.Store == nil {
		c, err := cloudinary.New(cfg.Cloudinary)
		if err != nil {
			log.Error().Err(err).Msg("cloudinary client init failed, continuing unconfigured")
			c, _ = cloudinary.New(cloudinary.Config{})
		}
		p.Store = NewObjectStore(c)
	}
	if p.Detector == nil {
		p.Detector = NewDetector(openai.NewClient(cfg.OpenAI))
	}

	var (
		sinks   drepo.Fanout
		history domain.HistoryReader
	)
	if deps.PG != nil {
		r := repokit.MustBind(drepo.NewPG(), deps.PG)
		sinks = append(sinks, r)
		history = r
	}
	if deps.CH != nil {
		sinks = append(sinks, drepo.NewEvents(deps.CH))
	}

	opt := dsvc.Options{History: history}
	if len(sinks) > 0 {
		opt.Recorder = sinks
	}

	log.Info().
		Bool("openai", p.Detector.Configured()).
		Bool("cloudinary", p.Store.Configured()).
		Int("history_sinks", len(sinks)).
		Msg("detect service ready")

	return dsvc.New(p.Store, p.Detector, opt), history != nil
}

// MountRoutes mounts the module routes on the given router
// the history routes only exist when Postgres is wired
func (m *Module) MountRoutes(r httpkit.Router) {
	r.Route(m.prefix, func(rr httpkit.Router) { dhttp.Register(rr, m.svc, m.upload) })
	if m.history {
		r.Route(HistoryPrefix, func(rr httpkit.Router) { dhttp.RegisterHistory(rr, m.svc) })
	}
}

// Ports exposes the detect service
func (m *Module) Ports() any { return m.svc }

// Name returns the module name
func (m *Module) Name() string { return m.name }

// Prefix returns the module route prefix
func (m *Module) Prefix() string { return m.prefix }
