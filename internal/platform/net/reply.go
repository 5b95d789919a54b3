package net

import (
	"net/http"

	perr "vera/internal/platform/errors"
)

// Wire is the JSON envelope shared by handlers and middleware
// Error carries the reason slug, Code the numeric class
type Wire struct {
	StatusCode int            `json:"status_code"`
	Status     string         `json:"status"`
	Code       perr.ErrorCode `json:"code,omitempty"`
	Error      string         `json:"error,omitempty"`
	Message    string         `json:"message,omitempty"`
	Field      string         `json:"field,omitempty"`
	RequestID  string         `json:"request_id,omitempty"`
	Data       any            `json:"data,omitempty"`
}

// Success wraps data under status
func Success(status int, data any, reqID string) Wire {
	return Wire{StatusCode: status, Status: http.StatusText(status), RequestID: reqID, Data: data}
}

// Error maps err onto its status and envelope
func Error(err error, reqID string) (int, Wire) {
	status := perr.HTTPStatus(err)
	pw := perr.WireFrom(err)
	w := Success(status, nil, reqID)
	w.Code, w.Error, w.Message, w.Field = pw.Code, pw.Reason, pw.Message, pw.Field
	return status, w
}
