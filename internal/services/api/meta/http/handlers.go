// Package http serves the process level meta routes
package http

import (
	"context"
	"net/http"
	"time"

	"vera/internal/core/version"
	"vera/internal/modkit/httpkit"

	"golang.org/x/sync/errgroup"
)

// readyTimeout bounds every backend ping in one /ready call
const readyTimeout = 2 * time.Second

// Pinger is a backend that can answer a readiness check
type Pinger interface {
	Ping(context.Context) error
}

// Deps are the handler dependencies; a nil backend is reported as skipped
type Deps struct {
	ServiceName string
	StartedAt   time.Time
	PG          any
	CH          any
}

type handlers struct {
	deps Deps
	now  func() time.Time
}

// Register mounts health, ready, version and service
func Register(r httpkit.Router, d Deps) {
	h := &handlers{deps: d, now: time.Now}

	httpkit.Get(r, "/health", h.health)
	httpkit.Get(r, "/ready", h.ready)
	httpkit.Get(r, "/version", h.version)
	httpkit.Get(r, "/service", h.service)
}

// HealthResponse says the process is up
type HealthResponse struct {
	OK      bool   `json:"ok"      example:"true"`
	Service string `json:"service" example:"vera-api"`
	Started string `json:"started" example:"2026-10-18T09:00:00Z"`
	Now     string `json:"now"     example:"2026-10-18T09:05:00Z"`
}

// ReadyCheck is one backend's answer: ok, fail, skipped or unknown
type ReadyCheck struct {
	Name   string `json:"name"            example:"pg"`
	Status string `json:"status"          example:"ok"`
	Error  string `json:"error,omitempty" example:"dial tcp 127.0.0.1:5432: connect: connection refused"`
}

// ReadyResponse is fail when any backend failed, degraded when one is off
type ReadyResponse struct {
	Status string       `json:"status" example:"ok"`
	Checks []ReadyCheck `json:"checks"`
	Now    string       `json:"now"    example:"2026-10-18T09:05:00Z"`
}

// ServiceResponse reports uptime in seconds
type ServiceResponse struct {
	Name    string `json:"name"    example:"vera-api"`
	Started string `json:"started" example:"2026-10-18T09:00:00Z"`
	Uptime  int64  `json:"uptime"  example:"300"`
}

func (h *handlers) stamp(t time.Time) string { return t.UTC().Format(time.RFC3339) }

// @Summary Liveness
// @Tags Meta
// @Produce json
// @Success 200 {object} HealthResponse "ok"
// @Router /meta/health [get]
func (h *handlers) health(_ *http.Request) (any, error) {
	return HealthResponse{
		OK:      true,
		Service: h.deps.ServiceName,
		Started: h.stamp(h.deps.StartedAt),
		Now:     h.stamp(h.now()),
	}, nil
}

// @Summary Readiness of the history backends
// @Tags Meta
// @Produce json
// @Success 200 {object} ReadyResponse "ok"
// @Router /meta/ready [get]
func (h *handlers) ready(r *http.Request) (any, error) {
	ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
	defer cancel()

	backends := []struct {
		name string
		b    any
	}{{"pg", h.deps.PG}, {"ch", h.deps.CH}}

	checks := make([]ReadyCheck, len(backends))
	var g errgroup.Group
	for i, be := range backends {
		g.Go(func() error {
			checks[i] = check(ctx, be.name, be.b)
			return nil
		})
	}
	_ = g.Wait()

	return ReadyResponse{Status: overall(checks), Checks: checks, Now: h.stamp(h.now())}, nil
}

func check(ctx context.Context, name string, b any) ReadyCheck {
	if b == nil {
		return ReadyCheck{Name: name, Status: "skipped"}
	}
	p, ok := b.(Pinger)
	if !ok {
		return ReadyCheck{Name: name, Status: "unknown"}
	}
	if err := p.Ping(ctx); err != nil {
		return ReadyCheck{Name: name, Status: "fail", Error: err.Error()}
	}
	return ReadyCheck{Name: name, Status: "ok"}
}

func overall(checks []ReadyCheck) string {
	status := "ok"
	for _, c := range checks {
		switch c.Status {
		case "fail":
			return "fail"
		case "ok":
		default:
			status = "degraded"
		}
	}
	return status
}

// @Summary Build and version info
// @Tags Meta
// @Produce json
// @Success 200 {object} version.BuildInfo "ok"
// @Router /meta/version [get]
func (h *handlers) version(_ *http.Request) (any, error) {
	return version.Info(), nil
}

// @Summary Service name and uptime
// @Tags Meta
// @Produce json
// @Success 200 {object} ServiceResponse "ok"
// @Router /meta/service [get]
func (h *handlers) service(_ *http.Request) (any, error) {
	return ServiceResponse{
		Name:    h.deps.ServiceName,
		Started: h.stamp(h.deps.StartedAt),
		Uptime:  int64(h.now().Sub(h.deps.StartedAt) / time.Second),
	}, nil
}
