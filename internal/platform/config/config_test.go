package config

import (
	"bytes"
	"reflect"
	"strings"
	"testing"
	"time"

	"vera/internal/platform/logger"
)

func TestMayGetters(t *testing.T) {
	t.Setenv("CORE_API_RATE_LIMIT", " 50 ")
	t.Setenv("CORE_API_RATE_WINDOW", "1m")
	t.Setenv("CORE_API_SWAGGER", "false")
	t.Setenv("CORE_API_UPLOAD_DIR", "   ")
	t.Setenv("CORE_API_CORS_ORIGINS", "http://a.test, ,http://b.test,")
	api := New().Prefix("CORE_").Prefix("API_")

	if got := api.MayInt("RATE_LIMIT", 100); got != 50 {
		t.Fatalf("MayInt = %d", got)
	}
	if got := api.MayDuration("RATE_WINDOW", 15*time.Minute); got != time.Minute {
		t.Fatalf("MayDuration = %v", got)
	}
	if api.MayBool("SWAGGER", true) {
		t.Fatalf("MayBool ignored the env")
	}
	if got := api.MayString("UPLOAD_DIR", "uploads"); got != "uploads" {
		t.Fatalf("blank value should fall back, got %q", got)
	}
	if got := api.MayString("MISSING", "x"); got != "x" {
		t.Fatalf("MayString = %q", got)
	}
	want := []string{"http://a.test", "http://b.test"}
	if got := api.MayCSV("CORS_ORIGINS", nil); !reflect.DeepEqual(got, want) {
		t.Fatalf("MayCSV = %v, want %v", got, want)
	}
}

func TestMayCSV_EmptyFallsBack(t *testing.T) {
	t.Setenv("ORIGINS", " , ,")
	def := []string{"http://localhost:3000"}
	for _, key := range []string{"ORIGINS", "UNSET"} {
		if got := New().MayCSV(key, def); !reflect.DeepEqual(got, def) {
			t.Fatalf("%s: MayCSV = %v", key, got)
		}
	}
}

func TestInvalidValueLogsAndFallsBack(t *testing.T) {
	var buf bytes.Buffer
	logger.Init(logger.Options{Level: "debug", Format: "json", Writer: &buf})
	t.Cleanup(func() { logger.Init(logger.Options{Level: "disabled"}) })

	t.Setenv("SERVICE_PGSQL_MAX_CONNS", "four")
	if got := New().Prefix("SERVICE_PGSQL_").MayInt("MAX_CONNS", 4); got != 4 {
		t.Fatalf("MayInt = %d, want default", got)
	}
	if !strings.Contains(buf.String(), `"key":"SERVICE_PGSQL_MAX_CONNS"`) {
		t.Fatalf("warning not logged: %s", buf.String())
	}
}

func TestMustString(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", " sk-test ")
	if got := New().Prefix("OPENAI_").MustString("API_KEY"); got != "sk-test" {
		t.Fatalf("MustString = %q", got)
	}
	defer func() {
		if recover() == nil {
			t.Fatalf("missing key did not panic")
		}
	}()
	New().MustString("VERA_NOT_SET")
}
