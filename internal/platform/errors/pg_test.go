package errors

import (
	"context"
	stderrs "errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
)

func pgErr(code string) error { return &pgconn.PgError{Code: code, Message: "server says no"} }

func TestFromPostgres(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want ErrorCode
	}{
		{"unique", pgErr("23505"), ErrorCodeDuplicateKey},
		{"not null", pgErr("23502"), ErrorCodeValidation},
		{"bad text", pgErr("22P02"), ErrorCodeInvalidArgument},
		{"read only", pgErr("25006"), ErrorCodeUnavailable},
		{"other state", pgErr("42P01"), ErrorCodeDB},
		{"wrapped", fmt.Errorf("insert: %w", pgErr("23505")), ErrorCodeDuplicateKey},
		{"not a pg error", stderrs.New("conn closed"), ErrorCodeDB},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			err := FromPostgres(c.err, "save detection")
			if CodeOf(err) != c.want {
				t.Fatalf("code = %v, want %v", CodeOf(err), c.want)
			}
			if !stderrs.Is(err, c.err) {
				t.Fatalf("cause lost")
			}
		})
	}
	if FromPostgres(nil, "x") != nil {
		t.Fatalf("nil must stay nil")
	}
	if _, ok := DBErrorCode(stderrs.New("x")); ok {
		t.Fatalf("DBErrorCode ok for a foreign error")
	}
}

func TestTransientPG(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want bool
	}{
		{"serialization", pgErr("40001"), true},
		{"deadlock", pgErr("40P01"), true},
		{"starting up", fmt.Errorf("ping: %w", pgErr("57P03")), true},
		{"unique", pgErr("23505"), false},
		{"rollback text", stderrs.New("commit unexpectedly resulted in rollback"), true},
		{"plain", stderrs.New("nope"), false},
		{"caller deadline", context.DeadlineExceeded, false},
		{"caller cancel wrapped", fmt.Errorf("q: %w", context.Canceled), false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := Retryable(c.err); got != c.want {
				t.Fatalf("Retryable = %v, want %v", got, c.want)
			}
		})
	}
}
