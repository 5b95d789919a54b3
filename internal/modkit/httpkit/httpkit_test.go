package httpkit

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	perr "vera/internal/platform/errors"
	phttp "vera/internal/platform/net/http"

	"github.com/go-chi/chi/v5"
)

func marker(name string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Add("X-MW", name)
			next.ServeHTTP(w, r)
		})
	}
}

func do(r Router, method, path, body string) (*httptest.ResponseRecorder, map[string]any) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.Mux().ServeHTTP(rec, req)
	var out map[string]any
	_ = json.Unmarshal(rec.Body.Bytes(), &out)
	return rec, out
}

type textBody struct {
	Text string `json:"text" validate:"required,max=20"`
}

func TestMountAPI_RoutesAndResponses(t *testing.T) {
	r := phttp.AdaptChi(chi.NewRouter())
	MountAPI(r, []func(http.Handler) http.Handler{marker("a"), marker("b")}, func(api Router) {
		api.Route("/detect", func(d Router) {
			Get(d, "/health", func(*http.Request) (any, error) {
				return Raw(http.StatusServiceUnavailable, map[string]string{"status": "unhealthy"}), nil
			})
			Get(d, "/supported-types", func(*http.Request) (any, error) {
				return []string{"image/png"}, nil
			})
			Post(d, "/", func(req *http.Request) (any, error) {
				in, err := BindJSON[textBody](req)
				if err != nil {
					return nil, err
				}
				return map[string]int{"len": len(in.Text)}, nil
			})
			Get(d, "/boom", func(*http.Request) (any, error) {
				return nil, perr.WithReason(perr.Wrap(errors.New("eof"), perr.ErrorCodeUpstream, "model call failed"), "detection_failed")
			})
		})
	})

	rec, body := do(r, http.MethodGet, "/api/detect/health", "")
	if rec.Code != 503 || body["status"] != "unhealthy" {
		t.Fatalf("raw: %d %v", rec.Code, body)
	}
	if got := rec.Header().Values("X-MW"); len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Fatalf("middleware order = %v", got)
	}

	rec, body = do(r, http.MethodGet, "/api/detect/supported-types", "")
	if rec.Code != 200 || body["data"] == nil {
		t.Fatalf("enveloped: %d %v", rec.Code, body)
	}

	rec, body = do(r, http.MethodPost, "/api/detect/", `{"text":"hello"}`)
	if data, _ := body["data"].(map[string]any); rec.Code != 200 || data["len"] != float64(5) {
		t.Fatalf("post: %d %v", rec.Code, body)
	}

	rec, body = do(r, http.MethodPost, "/api/detect/", `{"text":"this text is far too long to pass"}`)
	if rec.Code != 400 || body["field"] != "text" {
		t.Fatalf("validation: %d %v", rec.Code, body)
	}

	rec, body = do(r, http.MethodGet, "/api/detect/boom", "")
	if rec.Code != 500 || body["error"] != "detection_failed" || body["message"] != "model call failed" {
		t.Fatalf("error: %d %v", rec.Code, body)
	}

	if rec, _ := do(r, http.MethodGet, "/detect/health", ""); rec.Code != 404 {
		t.Fatalf("routes must live under /api, got %d", rec.Code)
	}
}

func TestValidate(t *testing.T) {
	type historyQuery struct {
		Limit int `validate:"min=1,max=100"`
	}
	if err := Validate(historyQuery{Limit: 50}); err != nil {
		t.Fatalf("valid: %v", err)
	}
	if err := Validate(historyQuery{Limit: 500}); !perr.IsCode(err, perr.ErrorCodeValidation) {
		t.Fatalf("err = %v", err)
	}
}
