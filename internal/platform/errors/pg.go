package errors

import (
	"context"
	stderrs "errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

// SQLSTATE to code; anything else from the server is ErrorCodeDB
var sqlstates = map[string]ErrorCode{
	"23505": ErrorCodeDuplicateKey,
	"23502": ErrorCodeValidation,
	"23514": ErrorCodeValidation,
	"22001": ErrorCodeInvalidArgument,
	"22P02": ErrorCodeInvalidArgument,
	"25006": ErrorCodeUnavailable,
	"57P03": ErrorCodeUnavailable,
}

// serialization failure, deadlock, lock timeout and server starting up
var transientStates = map[string]bool{"40001": true, "40P01": true, "55P03": true, "57P03": true}

// driver messages seen when the server error is not a PgError
var transientText = []string{
	"commit unexpectedly resulted in rollback",
	"deadlock detected",
	"could not serialize access",
	"terminating connection due to administrator command",
}

// DBErrorCode is ok only when err carries a *pgconn.PgError
func DBErrorCode(err error) (ErrorCode, bool) {
	var pgErr *pgconn.PgError
	if !stderrs.As(err, &pgErr) {
		return ErrorCodeUnknown, false
	}
	if code, ok := sqlstates[pgErr.Code]; ok {
		return code, true
	}
	return ErrorCodeDB, true
}

// FromPostgres wraps err under msg with the code its SQLSTATE maps to
func FromPostgres(err error, msg string) error {
	if err == nil {
		return nil
	}
	code, ok := DBErrorCode(err)
	if !ok {
		code = ErrorCodeDB
	}
	return Wrap(err, code, msg)
}

// local cancellation is never transient; the caller gave up
func transientPG(err error) bool {
	if err == nil || stderrs.Is(err, context.Canceled) || stderrs.Is(err, context.DeadlineExceeded) {
		return false
	}
	var pgErr *pgconn.PgError
	if stderrs.As(err, &pgErr) {
		return transientStates[pgErr.Code]
	}
	msg := strings.ToLower(Root(err).Error())
	for _, t := range transientText {
		if strings.Contains(msg, t) {
			return true
		}
	}
	return false
}
