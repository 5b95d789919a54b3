package store

import (
	"context"
	"strings"
	"testing"
	"time"
)

// closed port, pgxpool dials lazily so only the ping fails
const fastFailPGURL = "postgres://u:p@127.0.0.1:1/db?sslmode=disable&connect_timeout=1"

func TestOpenPG_ParentAlreadyCanceled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	start := time.Now()
	txr, err := openPG(ctx, Config{PG: PGConfig{URL: fastFailPGURL}}, &Store{})
	if err == nil || txr != nil {
		t.Fatalf("expected error and nil runner, got %v %T", err, txr)
	}
	if time.Since(start) > time.Second {
		t.Fatalf("expected quick failure, got %v", time.Since(start))
	}
}

func TestOpenPG_GivesUpAfterRetries(t *testing.T) {
	t.Parallel()

	cfg := Config{PG: PGConfig{URL: fastFailPGURL, ConnectRetries: 2, PingTimeout: 500 * time.Millisecond}}
	txr, err := openPG(context.Background(), cfg, &Store{})
	if err == nil || txr != nil {
		t.Fatalf("expected error, got %T", txr)
	}
	if want := "after 2 attempts"; !strings.Contains(err.Error(), want) {
		t.Fatalf("err = %v, want %q", err, want)
	}
}

func TestOpenCH_BadURL(t *testing.T) {
	t.Parallel()

	if _, err := openCH(context.Background(), Config{CH: CHConfig{URL: ""}}, &Store{}); err == nil {
		t.Fatalf("expected error for empty ch url")
	}
}

func TestPGBackOff_Schedule(t *testing.T) {
	b := pgBackOff()
	want := []time.Duration{150, 300, 600, 1200, 2000, 2000}
	for i, w := range want {
		if got := b.NextBackOff(); got != w*time.Millisecond {
			t.Fatalf("step %d = %v, want %v", i, got, w*time.Millisecond)
		}
	}
}
