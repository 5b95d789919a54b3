// Package errors is the coded error type shared by every layer; import it as perr
package errors

import (
	stderrs "errors"
	"fmt"
	"net/http"
)

// ErrorCode is part of the wire envelope; append new codes at the end
type ErrorCode uint16

const (
	ErrorCodeUnknown ErrorCode = iota
	ErrorCodePanic
	ErrorCodeUnavailable
	ErrorCodeTooManyRequests
	ErrorCodeInvalidArgument
	ErrorCodeValidation
	ErrorCodeJSON
	ErrorCodeNotFound
	ErrorCodeDuplicateKey
	ErrorCodeDB
	ErrorCodeConfiguration
	ErrorCodePayloadTooLarge
	// ErrorCodeUpstream covers failed calls to Cloudinary or the model
	ErrorCodeUpstream
)

type class struct {
	status int
	reason string
}

var classes = map[ErrorCode]class{
	ErrorCodeUnavailable:     {http.StatusServiceUnavailable, "unavailable"},
	ErrorCodeTooManyRequests: {http.StatusTooManyRequests, "too_many_requests"},
	ErrorCodeInvalidArgument: {http.StatusUnprocessableEntity, "invalid_argument"},
	ErrorCodeValidation:      {http.StatusBadRequest, "validation_error"},
	ErrorCodeJSON:            {http.StatusBadRequest, "invalid_json"},
	ErrorCodeNotFound:        {http.StatusNotFound, "not_found"},
	ErrorCodeDuplicateKey:    {http.StatusConflict, "conflict"},
	ErrorCodeConfiguration:   {http.StatusInternalServerError, "configuration_error"},
	ErrorCodePayloadTooLarge: {http.StatusRequestEntityTooLarge, "file_too_large"},
	ErrorCodeUpstream:        {http.StatusInternalServerError, "upstream_error"},
}

var unclassified = class{http.StatusInternalServerError, "internal_error"}

func classOf(c ErrorCode) class {
	if k, ok := classes[c]; ok {
		return k
	}
	return unclassified
}

// HTTPStatusCode is the response status for a code; unknown codes are 500
func HTTPStatusCode(c ErrorCode) int { return classOf(c).status }

// Error carries a human message, a code and an optional reason slug and field.
// retryable marks a failure worth another attempt.
type Error struct {
	orig      error
	msg       string
	code      ErrorCode
	reason    string
	field     string
	retryable bool
}

// Wire is the error part of the JSON envelope
type Wire struct {
	Code    ErrorCode `json:"code"`
	Reason  string    `json:"error"`
	Message string    `json:"message"`
	Field   string    `json:"field,omitempty"`
}

func (e *Error) Error() string {
	switch {
	case e == nil:
		return "<nil>"
	case e.orig == nil:
		return e.msg
	}
	return e.msg + ": " + e.orig.Error()
}

func (e *Error) Unwrap() error { return e.orig }
func (e *Error) Code() ErrorCode { return e.code }
func (e *Error) Field() string { return e.field }
func (e *Error) Message() string { return e.msg }
func (e *Error) Reason() string {
	if e.reason == "" {
		return classOf(e.code).reason
	}
	return e.reason
}

// WireFrom maps any error to its envelope; foreign errors become internal_error
func WireFrom(err error) Wire {
	if err == nil {
		return Wire{}
	}
	e, ok := As(err)
	if !ok {
		return Wire{Code: ErrorCodeUnknown, Reason: unclassified.reason, Message: err.Error()}
	}
	return Wire{Code: e.code, Reason: e.Reason(), Message: e.msg, Field: e.field}
}

// Root follows Unwrap to the innermost cause
func Root(err error) error {
	for {
		next := stderrs.Unwrap(err)
		if next == nil {
			return err
		}
		err = next
	}
}

// As finds the outermost *Error in the chain
func As(err error) (*Error, bool) {
	var e *Error
	ok := stderrs.As(err, &e)
	return e, ok
}

func CodeOf(err error) ErrorCode {
	if e, ok := As(err); ok {
		return e.code
	}
	return ErrorCodeUnknown
}

func ReasonOf(err error) string {
	if err == nil {
		return ""
	}
	if e, ok := As(err); ok {
		return e.Reason()
	}
	return unclassified.reason
}

func IsCode(err error, code ErrorCode) bool { return CodeOf(err) == code }

func IsReason(err error, reason string) bool { return err != nil && ReasonOf(err) == reason }

func HTTPStatus(err error) int { return HTTPStatusCode(CodeOf(err)) }

// derive copies the outermost *Error and applies set to the copy.
// Foreign errors are adopted as Unknown with their text as message.
func derive(err error, fallback ErrorCode, set func(*Error)) error {
	if err == nil {
		return nil
	}
	var c Error
	if e, ok := As(err); ok {
		c = *e
	} else {
		c = Error{code: fallback, msg: err.Error(), orig: err}
	}
	set(&c)
	return &c
}

// WithField names the offending input field; foreign errors pass through
func WithField(err error, field string) error {
	if _, ok := As(err); !ok {
		return err
	}
	return derive(err, ErrorCodeUnknown, func(e *Error) { e.field = field })
}

// WithReason sets the wire slug, adopting foreign errors so it survives
func WithReason(err error, reason string) error {
	return derive(err, ErrorCodeUnknown, func(e *Error) { e.reason = reason })
}

// MarkRetryable flags err for another attempt; foreign errors are adopted as Unavailable
func MarkRetryable(err error) error {
	return derive(err, ErrorCodeUnavailable, func(e *Error) { e.retryable = true })
}

// Retryable is true when any *Error in the chain was marked,
// otherwise the Postgres classification decides
func Retryable(err error) bool {
	for cur := err; cur != nil; cur = stderrs.Unwrap(cur) {
		if e, ok := cur.(*Error); ok && e.retryable {
			return true
		}
	}
	return transientPG(err)
}

func Newf(code ErrorCode, format string, a ...any) error {
	return &Error{code: code, msg: fmt.Sprintf(format, a...)}
}

func Wrap(orig error, code ErrorCode, msg string) error {
	return &Error{code: code, msg: msg, orig: orig}
}

func Wrapf(orig error, code ErrorCode, format string, a ...any) error {
	return Wrap(orig, code, fmt.Sprintf(format, a...))
}

// Reasonf builds an error with an explicit wire slug
func Reasonf(code ErrorCode, reason, format string, a ...any) error {
	return &Error{code: code, reason: reason, msg: fmt.Sprintf(format, a...)}
}

func Validationf(format string, a ...any) error { return Newf(ErrorCodeValidation, format, a...) }
func JSONErrf(format string, a ...any) error { return Newf(ErrorCodeJSON, format, a...) }
func DBf(format string, a ...any) error { return Newf(ErrorCodeDB, format, a...) }
func PanicErrf(format string, a ...any) error { return Newf(ErrorCodePanic, format, a...) }
func Unavailablef(format string, a ...any) error { return Newf(ErrorCodeUnavailable, format, a...) }
func Configurationf(format string, a ...any) error { return Newf(ErrorCodeConfiguration, format, a...) }
