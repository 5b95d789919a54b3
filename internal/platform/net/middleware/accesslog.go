// Package middleware holds the api's request middleware; chi and cors stay behind it
package middleware

import (
	"net/http"
	"time"

	"vera/internal/platform/logger"

	chimw "github.com/go-chi/chi/v5/middleware"
)

// AccessLog writes one "request done" line per request through the request logger
// requests slower than slow log at warn, 0 disables that
func AccessLog(slow time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			took := time.Since(start)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			log := logger.C(r.Context())
			evt := log.Info()
			switch {
			case status >= http.StatusInternalServerError:
				evt = log.Error()
			case slow > 0 && took >= slow:
				evt = log.Warn()
			}
			evt.Int("status", status).
				Dur("elapsed", took).
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Str("ip", clientIP(r)).
				Int64("bytes_in", r.ContentLength).
				Int("bytes", ww.BytesWritten()).
				Msg("request done")
		})
	}
}
