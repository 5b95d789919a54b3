// Package bind decodes request bodies and validates them with go-playground/validator
package bind

import (
	"bufio"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"reflect"
	"strings"
	"sync"

	perr "vera/internal/platform/errors"
	"vera/internal/platform/logger"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	entrans "github.com/go-playground/validator/v10/translations/en"
)

type checker struct {
	v     *validator.Validate
	trans ut.Translator
}

// messages name fields by their json tag and keep min and max short, e.g. "text must be at most 20"
var validate = sync.OnceValue(func() checker {
	loc := en.New()
	trans, _ := ut.New(loc, loc).GetTranslator("en")

	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	_ = entrans.RegisterDefaultTranslations(v, trans)
	for tag, text := range map[string]string{"min": "{0} must be at least {1}", "max": "{0} must be at most {1}"} {
		_ = v.RegisterTranslation(tag, trans,
			func(t ut.Translator) error { return t.Add(tag, text, true) },
			func(t ut.Translator, fe validator.FieldError) string {
				msg, _ := t.T(tag, fe.Field(), fe.Param())
				return msg
			},
		)
	}
	return checker{v: v, trans: trans}
})

// JSONOptions controls ParseJSON; the zero value is not the default, see defaults
type JSONOptions struct {
	// MaxBytes truncates the body, so anything longer fails as invalid JSON
	MaxBytes        int64
	DisallowUnknown bool
	// AllowEmptyBody returns the zero T, unvalidated, for an empty body
	AllowEmptyBody bool
}

var defaults = JSONOptions{MaxBytes: 1 << 20, DisallowUnknown: true}

// jsonMore reports trailing data after the first value
var jsonMore = func(dec *json.Decoder) bool { return dec.More() }

// ParseJSON decodes one JSON value into T and validates it
// failures carry ErrorCodeJSON, or ErrorCodeValidation with the offending field
func ParseJSON[T any](r *http.Request, opts ...JSONOptions) (T, error) {
	var zero T
	o := defaults
	if len(opts) > 0 {
		o = opts[0]
	}
	defer func() {
		if err := r.Body.Close(); err != nil {
			logger.Get().Warn().Err(err).Msg("request body close failed")
		}
	}()

	var body io.Reader = r.Body
	if o.MaxBytes > 0 {
		body = io.LimitReader(body, o.MaxBytes)
	}
	br := bufio.NewReader(body)
	if _, err := br.Peek(1); err != nil {
		switch {
		case o.AllowEmptyBody:
			return zero, nil
		case r.Method == http.MethodGet || r.Method == http.MethodDelete:
			return zero, nil
		}
		return zero, perr.JSONErrf("empty body")
	}

	dec := json.NewDecoder(br)
	if o.DisallowUnknown {
		dec.DisallowUnknownFields()
	}
	var dst T
	if err := dec.Decode(&dst); err != nil {
		if o.AllowEmptyBody && errors.Is(err, io.EOF) {
			return zero, nil
		}
		return zero, perr.JSONErrf("invalid JSON: %v", err)
	}
	if jsonMore(dec) {
		return zero, perr.JSONErrf("unexpected trailing data")
	}
	if err := Struct(dst); err != nil {
		return zero, err
	}
	return dst, nil
}

// Struct validates v by its validate tags, for inputs built from query strings
func Struct(v any) error {
	err := validate().v.Struct(v)
	if err == nil {
		return nil
	}
	var inv *validator.InvalidValidationError
	if errors.As(err, &inv) {
		logger.Get().Error().Err(inv).Msg("validator misuse")
		return perr.JSONErrf("validation error")
	}
	field, msg := fieldMessage(err)
	return perr.WithField(perr.Validationf("%s", msg), field)
}

// fieldMessage is the first failing field and its translated message
func fieldMessage(err error) (field, message string) {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		return verrs[0].Field(), verrs[0].Translate(validate().trans)
	}
	return "", err.Error()
}
