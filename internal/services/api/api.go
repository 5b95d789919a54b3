// Package api provides the HTTP API for the application
package api

import (
	"net/http"
	"time"

	"vera/internal/platform/config"
	"vera/internal/platform/logger"
	phttp "vera/internal/platform/net/http"
	"vera/internal/platform/store"

	"vera/internal/modkit"
	"vera/internal/modkit/httpkit"
	"vera/internal/modkit/swaggerkit"

	detectmod "vera/internal/services/api/detect/module"
	metamod "vera/internal/services/api/meta/module"

	"github.com/go-chi/chi/v5"
)

// Options are the API options
type Options struct {
	// Config is the unprefixed process config; the API reads CORE_API_* from it
	Config         config.Conf
	Store          *store.Store
	Logger         *logger.Logger
	EnableSwagger  bool
	EnableProfiler bool

	// Detect optionally injects the detect collaborators
	Detect *detectmod.Ports
}

// Mount mounts the API service onto the given router
func Mount(r phttp.Router, opt Options) {
	log := opt.Logger
	if log == nil {
		log = logger.Get()
	}

	// shared deps for modules; stores stay nil when disabled
	deps := modkit.Deps{Log: *log, Cfg: opt.Config}
	if opt.Store != nil {
		if opt.Store.PG != nil {
			deps.PG = opt.Store.PG
		}
		if opt.Store.CH != nil {
			deps.CH = opt.Store.CH
		}
	}

	var detectOpts []modkit.Option
	if opt.Detect != nil {
		detectOpts = append(detectOpts, modkit.WithPorts(*opt.Detect))
	}

	mods := []modkit.Module{
		metamod.New(deps),
		detectmod.New(deps, detectOpts...),
	}

	// Swagger + profiler
	swaggerkit.Mount(r, opt.EnableSwagger)
	phttp.MountProfiler(r, "/debug", opt.EnableProfiler)

	httpkit.Get(r, "/health", health)
	r.Get("/", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("Hello"))
	})
	if mux, ok := r.Mux().(*chi.Mux); ok {
		mux.NotFound(notFound)
	}

	apiCfg := opt.Config.Prefix("CORE_API_")
	httpkit.MountAPI(r, httpkit.CommonStack(StackFromConfig(apiCfg)), func(api httpkit.Router) {
		for _, m := range mods {
			m.MountRoutes(api)
		}
	})
}

// StackFromConfig reads the shared middleware knobs from CORE_API_*
func StackFromConfig(cfg config.Conf) httpkit.StackOptions {
	return httpkit.StackOptions{
		CORSOrigins: cfg.MayCSV("CORS_ORIGINS", httpkit.DefaultCORSOrigins),
		RateLimit:   cfg.MayInt("RATE_LIMIT", 100),
		RateWindow:  cfg.MayDuration("RATE_WINDOW", 15*time.Minute),
		Timeout:     cfg.MayDuration("REQUEST_TIMEOUT", 10*time.Minute),
		SlowRequest: cfg.MayDuration("SLOW_REQUEST", 30*time.Second),
	}
}

// ServerStatus is the root liveness body
type ServerStatus struct {
	Status    string    `json:"status" example:"success"`
	Message   string    `json:"message" example:"Server is running"`
	Timestamp time.Time `json:"timestamp"`
}

// swagger:route GET /health Meta serverHealth
// @Summary Process liveness
// @Tags Meta
// @Produce json
// @Success 200 {object} ServerStatus "ok"
// @Router /health [get]
func health(*http.Request) (any, error) {
	return httpkit.Raw(http.StatusOK, ServerStatus{
		Status:    "success",
		Message:   "Server is running",
		Timestamp: time.Now().UTC(),
	}), nil
}

func notFound(w http.ResponseWriter, _ *http.Request) {
	phttp.JSON(w, http.StatusNotFound, map[string]string{
		"status":  "error",
		"message": "Route not found",
	})
}
