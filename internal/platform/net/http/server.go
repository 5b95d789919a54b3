package http

import (
	"context"
	"errors"
	stdhttp "net/http"
	"strings"
	"time"

	"vera/internal/platform/config"
	"vera/internal/platform/logger"

	"github.com/go-chi/chi/v5"
)

const (
	shutdownGrace     = 10 * time.Second
	readHeaderTimeout = 10 * time.Second
)

// Server owns the chi root and the net/http server listening on it
type Server struct {
	addr string
	mux  *chi.Mux
	srv  *stdhttp.Server
}

// NewServer reads PORT from cfg; "5000" and "127.0.0.1:5000" are both accepted
func NewServer(cfg config.Conf) *Server {
	addr := cfg.MayString("PORT", "5000")
	if !strings.Contains(addr, ":") {
		addr = ":" + addr
	}
	mux := chi.NewRouter()
	return &Server{
		addr: addr,
		mux:  mux,
		srv:  &stdhttp.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: readHeaderTimeout},
	}
}

func (s *Server) Router() Router { return AdaptChi(s.mux) }

func (s *Server) Addr() string { return s.addr }

// Run serves until ctx is done, then drains in-flight requests for up to shutdownGrace
func (s *Server) Run(ctx context.Context) error {
	log := logger.Named("http")

	errCh := make(chan error, 1)
	go func() { errCh <- s.srv.ListenAndServe() }()
	log.Info().Str("addr", s.addr).Msg("http listening")

	select {
	case err := <-errCh:
		return ignoreClosed(err)
	case <-ctx.Done():
	}

	log.Info().Dur("grace", shutdownGrace).Msg("http draining")
	sctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownGrace)
	defer cancel()
	if err := s.srv.Shutdown(sctx); err != nil {
		return err
	}
	return ignoreClosed(<-errCh)
}

func ignoreClosed(err error) error {
	if errors.Is(err, stdhttp.ErrServerClosed) {
		return nil
	}
	return err
}
