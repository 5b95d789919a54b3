package middleware_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"vera/internal/platform/net/middleware"
	phttp "vera/internal/platform/net/http"
)

func TestRateLimit_PerIPWindow(t *testing.T) {
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	mw := middleware.RateLimit(middleware.RateLimitOptions{
		Limit:  3,
		Window: 15 * time.Minute,
		Now:    func() time.Time { return now },
	}, phttp.JSON)
	h := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusNoContent) }))

	hit := func(ip string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/detect", nil)
		req.RemoteAddr = ip + ":4242"
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)
		return rr
	}

	for i := 0; i < 3; i++ {
		if rr := hit("10.0.0.1"); rr.Code != http.StatusNoContent {
			t.Fatalf("request %d: code %d", i, rr.Code)
		}
	}

	rr := hit("10.0.0.1")
	if rr.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", rr.Code)
	}
	if got := rr.Header().Get("Retry-After"); got != "300" {
		t.Fatalf("Retry-After = %q, want 300", got)
	}
	if rr.Header().Get("RateLimit-Limit") != "3" {
		t.Fatalf("RateLimit-Limit = %q", rr.Header().Get("RateLimit-Limit"))
	}
	var body map[string]any
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if body["error"] != "too_many_requests" ||
		body["message"] != "Too many requests from this IP, please try again later." {
		t.Fatalf("body = %v", body)
	}

	// other clients keep their own bucket
	if rr := hit("10.0.0.2"); rr.Code != http.StatusNoContent {
		t.Fatalf("second ip limited: %d", rr.Code)
	}

	// one slot refills every window/limit
	now = now.Add(5 * time.Minute)
	if rr := hit("10.0.0.1"); rr.Code != http.StatusNoContent {
		t.Fatalf("expected refill after 5m, got %d", rr.Code)
	}
	if rr := hit("10.0.0.1"); rr.Code != http.StatusTooManyRequests {
		t.Fatalf("expected limit again, got %d", rr.Code)
	}
}

func TestRateLimit_Defaults(t *testing.T) {
	mw := middleware.RateLimit(middleware.RateLimitOptions{}, phttp.JSON)
	h := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	for i := 0; i < 100; i++ {
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
		if rr.Code != http.StatusOK {
			t.Fatalf("request %d limited early", i)
		}
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	if rr.Code != http.StatusTooManyRequests || rr.Header().Get("RateLimit-Limit") != "100" {
		t.Fatalf("101st request: code=%d", rr.Code)
	}
}
