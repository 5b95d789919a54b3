package httpkit

import (
	"net/http"
	"time"

	phttp "vera/internal/platform/net/http"
	"vera/internal/platform/net/middleware"
)

// StackOptions tunes the shared API middleware
type StackOptions struct {
	// CORSOrigins are allowed with credentials
	CORSOrigins []string
	// RateLimit requests per RateWindow per client ip, 0 means 100 per 15m
	RateLimit  int
	RateWindow time.Duration
	// Timeout bounds a request, detections wait on uploads and the model
	Timeout time.Duration
	// SlowRequest marks access log lines as warn past this latency
	SlowRequest time.Duration
	// Identity resolves X-Client-ID, nil uses the header reader
	Identity middleware.IdentityPort
}

// DefaultCORSOrigins are the web clients allowed by default
var DefaultCORSOrigins = []string{"http://localhost:3000", "https://vera-seven.vercel.app"}

// CommonStack returns the baseline API middleware slice, outermost first
func CommonStack(o StackOptions) []func(http.Handler) http.Handler {
	if len(o.CORSOrigins) == 0 {
		o.CORSOrigins = DefaultCORSOrigins
	}
	if o.Timeout <= 0 {
		o.Timeout = 10 * time.Minute
	}
	if o.SlowRequest <= 0 {
		o.SlowRequest = 30 * time.Second
	}
	var ident middleware.IdentityPort = middleware.HeaderIdentity{}
	if o.Identity != nil {
		ident = o.Identity
	}
	return []func(http.Handler) http.Handler{
		middleware.RequestID,
		middleware.RealIP,
		middleware.Recover,

		// cross-origin runs before limits so preflights are answered
		middleware.CORS(middleware.CORSOptions{
			AllowedOrigins:   o.CORSOrigins,
			AllowCredentials: true,
		}),
		middleware.RateLimit(middleware.RateLimitOptions{
			Limit:  o.RateLimit,
			Window: o.RateWindow,
		}, phttp.JSON),
		middleware.Identity(ident, phttp.JSON),

		middleware.AccessLog(o.SlowRequest),
		middleware.NoCache,
		middleware.Compress(),
		middleware.StripSlashes,
		middleware.Timeout(o.Timeout),
	}
}
