package middleware

import (
	"compress/flate"
	"net/http"

	pstrings "vera/internal/platform/strings"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

const chiRequestIDHeader = "X-Request-ID"

// chi's own middleware, re-exported so modules never import chi
var (
	RequestID    = chimw.RequestID
	RealIP       = chimw.RealIP
	Timeout      = chimw.Timeout
	NoCache      = chimw.NoCache
	StripSlashes = chimw.StripSlashes
)

// Compress gzips and deflates responses at the fastest level
func Compress() func(http.Handler) http.Handler {
	return chimw.NewCompressor(flate.BestSpeed).Handler
}

// CORSOptions picks the origins; methods and headers default to what the web client sends
type CORSOptions struct {
	AllowedOrigins   []string
	AllowedMethods   []string
	AllowedHeaders   []string
	AllowCredentials bool
	MaxAge           int
}

func CORS(o CORSOptions) func(http.Handler) http.Handler {
	return cors.Handler(cors.Options{
		AllowedOrigins:   o.AllowedOrigins,
		AllowedMethods:   pstrings.IfEmpty(o.AllowedMethods, []string{"GET", "POST", "OPTIONS"}),
		AllowedHeaders:   pstrings.IfEmpty(o.AllowedHeaders, []string{"Accept", "Content-Type", chiRequestIDHeader, ClientIDHeader}),
		ExposedHeaders:   []string{chiRequestIDHeader, "Retry-After", "RateLimit-Limit"},
		AllowCredentials: o.AllowCredentials,
		MaxAge:           o.MaxAge,
	})
}
