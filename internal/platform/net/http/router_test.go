package http_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	phttp "vera/internal/platform/net/http"

	"github.com/go-chi/chi/v5"
)

func TestAdaptChi_RouteScopesMiddleware(t *testing.T) {
	mux := chi.NewRouter()
	r := phttp.AdaptChi(mux)

	r.Route("/api", func(api phttp.Router) {
		api.Use(func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
				w.Header().Set("X-Scope", "api")
				next.ServeHTTP(w, req)
			})
		})
		api.Route("/detect", func(d phttp.Router) {
			d.Post("/", func(w http.ResponseWriter, _ *http.Request) { _, _ = io.WriteString(w, "detected") })
			if d.Mux() != mux {
				t.Fatalf("sub router must expose the root mux")
			}
		})
	})
	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) { _, _ = io.WriteString(w, "up") })
	r.Handle("/static/*", http.NotFoundHandler())

	tests := []struct {
		method, path string
		code         int
		body, scope  string
	}{
		{http.MethodPost, "/api/detect/", 200, "detected", "api"},
		{http.MethodGet, "/api/detect/", 405, "", "api"},
		{http.MethodGet, "/health", 200, "up", ""},
		{http.MethodGet, "/static/a.png", 404, "", ""},
	}
	for _, tc := range tests {
		rec := httptest.NewRecorder()
		r.Mux().ServeHTTP(rec, httptest.NewRequest(tc.method, tc.path, nil))
		if rec.Code != tc.code {
			t.Fatalf("%s %s = %d, want %d", tc.method, tc.path, rec.Code, tc.code)
		}
		if tc.body != "" && rec.Body.String() != tc.body {
			t.Fatalf("%s body = %q", tc.path, rec.Body.String())
		}
		if got := rec.Header().Get("X-Scope"); tc.code == 200 && got != tc.scope {
			t.Fatalf("%s scope = %q, want %q", tc.path, got, tc.scope)
		}
	}
}
