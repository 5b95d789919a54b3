package http_test

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"vera/internal/platform/config"
	phttp "vera/internal/platform/net/http"
)

func TestNewServer_Addr(t *testing.T) {
	tests := []struct {
		port string
		want string
	}{
		{"", ":5000"},
		{"12345", ":12345"},
		{":8080", ":8080"},
		{"127.0.0.1:9000", "127.0.0.1:9000"},
	}
	for _, tc := range tests {
		t.Setenv("CORE_API_PORT", tc.port)
		if got := phttp.NewServer(config.New().Prefix("CORE_API_")).Addr(); got != tc.want {
			t.Fatalf("PORT=%q addr = %q, want %q", tc.port, got, tc.want)
		}
	}
}

func freePort(t *testing.T) string {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer l.Close()
	return fmt.Sprint(l.Addr().(*net.TCPAddr).Port)
}

func TestServer_RunServesUntilCanceled(t *testing.T) {
	port := freePort(t)
	t.Setenv("CORE_API_PORT", "127.0.0.1:"+port)
	srv := phttp.NewServer(config.New().Prefix("CORE_API_"))
	srv.Router().Get("/health", func(w http.ResponseWriter, _ *http.Request) { _, _ = io.WriteString(w, "up") })

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Run(ctx) }()

	url := "http://127.0.0.1:" + port + "/health"
	var res *http.Response
	var err error
	for i := 0; i < 50; i++ {
		if res, err = http.Get(url); err == nil {
			break
		}
		time.Sleep(20 * time.Millisecond)
	}
	if err != nil {
		t.Fatalf("server never answered: %v", err)
	}
	body, _ := io.ReadAll(res.Body)
	_ = res.Body.Close()
	if string(body) != "up" {
		t.Fatalf("body = %q", body)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("run: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("run did not return after cancel")
	}
}

func TestServer_RunReturnsListenError(t *testing.T) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer l.Close()

	t.Setenv("CORE_API_PORT", l.Addr().String())
	if err := phttp.NewServer(config.New().Prefix("CORE_API_")).Run(context.Background()); err == nil {
		t.Fatalf("expected address in use error")
	}
}

func TestMountProfiler(t *testing.T) {
	for _, on := range []bool{true, false} {
		srv := phttp.NewServer(config.New())
		r := srv.Router()
		phttp.MountProfiler(r, "/debug", on)

		rec := httptest.NewRecorder()
		r.Mux().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/debug/pprof/cmdline", nil))
		if want := map[bool]int{true: 200, false: 404}[on]; rec.Code != want {
			t.Fatalf("enabled=%v code = %d, want %d", on, rec.Code, want)
		}
	}
}
