package middleware

import (
	"encoding/json"
	"net/http"
	"runtime/debug"

	perr "vera/internal/platform/errors"
	"vera/internal/platform/logger"
	pnet "vera/internal/platform/net"
)

// Recover answers a panicking handler with the JSON 500 envelope and logs the stack
// http.ErrAbortHandler is re-panicked so net/http can drop the connection
func Recover(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			v := recover()
			if v == nil {
				return
			}
			if v == http.ErrAbortHandler {
				panic(v)
			}
			reqID := pnet.RequestID(r.Context())
			logger.C(r.Context()).Error().
				Str("request_id", reqID).
				Interface("panic", v).
				Bytes("stack", debug.Stack()).
				Msg("panic recovered")

			status, body := pnet.Error(perr.PanicErrf("panic recovered"), reqID)
			if reqID != "" {
				w.Header().Set(chiRequestIDHeader, reqID)
			}
			w.Header().Set("Content-Type", "application/json; charset=utf-8")
			w.WriteHeader(status)
			_ = json.NewEncoder(w).Encode(body)
		}()
		next.ServeHTTP(w, r)
	})
}
