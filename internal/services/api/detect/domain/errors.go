package domain

import perr "vera/internal/platform/errors"

// Reasons carried on the wire by detect errors
const (
	ReasonNoInput             = "no_input"
	ReasonUnsupportedFileType = "unsupported_file_type"
	ReasonInvalidImageURL     = "invalid_image_url"
	ReasonInternal            = "internal_error"
	ReasonNoFile              = "no_file"
	ReasonConnectionTest      = "connection_test_failed"
	ReasonUploadTest          = "upload_test_failed"
	ReasonHistoryDisabled     = "history_disabled"

	ReasonFileTooLarge        = "file_too_large"
	ReasonTooManyFiles        = "too_many_files"
	ReasonUnexpectedFileField = "unexpected_file_field"
)

// Messages shown to clients
const (
	MsgNoInput         = "Provide a file (file_data) or JSON body with `text` or `image_url`."
	MsgInvalidImageURL = "Please provide a valid image URL with supported format (jpg, jpeg, png, gif, webp, bmp, svg)."
	MsgNoFile          = "Please provide a file to test upload"
	MsgUncertainNote   = "Model output could not be parsed as JSON. Ensure the model returns EXACTLY the specified JSON."

	MsgFileTooLarge        = "File size exceeds the maximum limit of 100MB."
	MsgTooManyFiles        = "Too many files uploaded. Maximum 5 files allowed."
	MsgUnexpectedFileField = "Unexpected file field. Use 'file_data' as the field name."
)

// DiagnosticError is a failed diagnostic call rendered with details instead of the envelope
type DiagnosticError struct {
	Reason  string
	Err     error
	Details map[string]any
}

func (e *DiagnosticError) Error() string { return e.Reason + ": " + e.Err.Error() }

func (e *DiagnosticError) Unwrap() error { return e.Err }

// Failure is the wire body of the error
func (e *DiagnosticError) Failure() Failure {
	msg := e.Err.Error()
	if pe, ok := perr.As(e.Err); ok && pe.Message() != "" {
		msg = pe.Message()
	}
	return Failure{Error: e.Reason, Message: msg, Details: e.Details}
}
