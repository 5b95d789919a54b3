// Package httpkit is the handler and routing surface api modules import
// modules never touch internal/platform/net/http directly
package httpkit

import (
	"net/http"

	phttp "vera/internal/platform/net/http"
	"vera/internal/platform/net/http/bind"
)

// APIPrefix is where every module is mounted
const APIPrefix = "/api"

type (
	Router      = phttp.Router
	Envelope    = phttp.Envelope
	JSONOptions = bind.JSONOptions
)

// Raw writes body as is with status; errors still go out enveloped
func Raw(status int, body any) phttp.Response { return phttp.Raw(status, body) }

// Call adapts a handler that returns data or an error
// data that already is a Response keeps its status and envelope choice
func Call(fn func(*http.Request) (any, error)) phttp.Handler {
	return phttp.Handle(func(r *http.Request) phttp.Response {
		out, err := fn(r)
		if err != nil {
			return phttp.Error(err)
		}
		if resp, ok := out.(phttp.Response); ok {
			return resp
		}
		return phttp.OK(out)
	})
}

func Get(r Router, path string, h func(*http.Request) (any, error)) { r.Get(path, Call(h)) }

// Post leaves the body to h, detections accept both JSON and multipart
func Post(r Router, path string, h func(*http.Request) (any, error)) { r.Post(path, Call(h)) }

// BindJSON decodes and validates a T body
func BindJSON[T any](r *http.Request, opts ...JSONOptions) (T, error) {
	return bind.ParseJSON[T](r, opts...)
}

// Validate applies the body rules to a struct built from query values
func Validate(v any) error { return bind.Struct(v) }

// MountAPI scopes mw to /api and lets mount register module routes there
func MountAPI(r Router, mw []func(http.Handler) http.Handler, mount func(Router)) {
	r.Route(APIPrefix, func(api Router) {
		if len(mw) > 0 {
			api.Use(mw...)
		}
		mount(api)
	})
}
