package swaggerkit

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	phttp "vera/internal/platform/net/http"
	kit "vera/internal/platform/testkit"

	"github.com/go-chi/chi/v5"
)

const sampleDoc = `{
	"swagger": "2.0",
	"info": {"title": "VERA API", "version": "1.0"},
	"paths": {
		"/detect": {"post": {"responses": {"200": {"description": "ok"}, "400": {"description": "custom"}}}},
		"/history": {"get": {}}
	}
}`

func TestServeDoc(t *testing.T) {
	kit.Serial(t)
	kit.Swap(t, &docReader, func() string { return sampleDoc })
	t.Setenv("CORE_API_DOCS_TITLE_SUFFIX", "(dev)")

	r := phttp.AdaptChi(chi.NewRouter())
	Mount(r, true)
	rr := httptest.NewRecorder()
	r.Mux().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/docs/doc.json", nil))
	if rr.Code != http.StatusOK || rr.Header().Get("Cache-Control") != "no-store" {
		t.Fatalf("status %d, headers %v", rr.Code, rr.Header())
	}

	var spec struct {
		Swagger string `json:"swagger"`
		OpenAPI string `json:"openapi"`
		Info    struct {
			Title string `json:"title"`
		} `json:"info"`
		Servers    []struct{ URL string } `json:"servers"`
		Components struct {
			Schemas map[string]any `json:"schemas"`
		} `json:"components"`
		Paths map[string]map[string]struct {
			Responses map[string]struct {
				Description string `json:"description"`
			} `json:"responses"`
		} `json:"paths"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &spec); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if spec.Swagger != "" || spec.OpenAPI != "3.0.3" {
		t.Fatalf("version: swagger %q openapi %q", spec.Swagger, spec.OpenAPI)
	}
	if spec.Info.Title != "VERA API (dev)" {
		t.Fatalf("title = %q", spec.Info.Title)
	}
	if len(spec.Servers) != 1 || spec.Servers[0].URL != "/api" {
		t.Fatalf("servers = %+v", spec.Servers)
	}
	if _, ok := spec.Components.Schemas["ErrorResponse"]; !ok {
		t.Fatalf("ErrorResponse schema missing")
	}
	detect := spec.Paths["/detect"]["post"].Responses
	if detect["400"].Description != "custom" || detect["500"].Description != "Internal Server Error" {
		t.Fatalf("detect responses = %+v", detect)
	}
	if _, ok := spec.Paths["/history"]["get"].Responses["400"]; !ok {
		t.Fatalf("operation without responses did not get defaults")
	}
}

func TestServeDoc_BadJSON(t *testing.T) {
	kit.Serial(t)
	kit.Swap(t, &docReader, func() string { return "{" })
	rr := httptest.NewRecorder()
	serveDoc(rr, httptest.NewRequest(http.MethodGet, "/api/docs/doc.json", nil))
	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", rr.Code)
	}
}

func TestMount_Disabled(t *testing.T) {
	r := phttp.AdaptChi(chi.NewRouter())
	Mount(r, false)
	rr := httptest.NewRecorder()
	r.Mux().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/docs/doc.json", nil))
	if rr.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rr.Code)
	}
}
