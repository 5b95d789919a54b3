package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDotenv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	body := "VERA_DOTENV_NEW=from-file\nVERA_DOTENV_SET=from-file\n# comment\nVERA_DOTENV_QUOTED=\"a b\"\n"
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	t.Setenv("VERA_DOTENV_SET", "from-env")
	t.Setenv("VERA_DOTENV_NEW", "")
	_ = os.Unsetenv("VERA_DOTENV_NEW")
	t.Setenv("VERA_DOTENV_QUOTED", "")
	_ = os.Unsetenv("VERA_DOTENV_QUOTED")

	if err := LoadDotenv(filepath.Join(dir, "missing.env"), path); err != nil {
		t.Fatalf("LoadDotenv: %v", err)
	}

	c := New().Prefix("VERA_DOTENV_")
	if got := c.MayString("NEW", ""); got != "from-file" {
		t.Fatalf("NEW = %q", got)
	}
	if got := c.MayString("SET", ""); got != "from-env" {
		t.Fatalf("existing env overridden: %q", got)
	}
	if got := c.MayString("QUOTED", ""); got != "a b" {
		t.Fatalf("QUOTED = %q", got)
	}
}

func TestLoadDotenv_Malformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.env")
	if err := os.WriteFile(path, []byte("KEY='unterminated\n"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := LoadDotenv(path); err == nil {
		t.Fatalf("expected parse error")
	}
}
