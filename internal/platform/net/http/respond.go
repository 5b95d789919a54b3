// Package http writes the api's JSON envelope and hosts the chi server
package http

import (
	"encoding/json"
	stdhttp "net/http"

	pnet "vera/internal/platform/net"
)

// Envelope wraps every non raw response
type Envelope = pnet.Wire

// JSON writes v with status
func JSON(w stdhttp.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// Response is what return style handlers produce
// an error Body always goes out enveloped with the status its code maps to
type Response struct {
	Status int
	Body   any
	Header stdhttp.Header
	// Raw skips the envelope, for routes whose body shape is fixed by clients
	Raw bool
}

// Handle adapts a Response returning handler to net/http
func Handle(h func(r *stdhttp.Request) Response) stdhttp.HandlerFunc {
	return func(w stdhttp.ResponseWriter, r *stdhttp.Request) {
		h(r).write(w, r)
	}
}

func (resp Response) write(w stdhttp.ResponseWriter, r *stdhttp.Request) {
	for k, vv := range resp.Header {
		for _, v := range vv {
			w.Header().Add(k, v)
		}
	}
	reqID := pnet.RequestID(r.Context())

	if err, ok := resp.Body.(error); ok && err != nil {
		status, env := pnet.Error(err, reqID)
		JSON(w, status, env)
		return
	}

	status := resp.Status
	if status == 0 {
		status = stdhttp.StatusOK
	}
	if resp.Raw {
		JSON(w, status, resp.Body)
		return
	}
	JSON(w, status, pnet.Success(status, resp.Body, reqID))
}

func OK(data any) Response { return Response{Status: stdhttp.StatusOK, Body: data} }

func Raw(status int, body any) Response { return Response{Status: status, Body: body, Raw: true} }

func Error(err error) Response { return Response{Body: err} }
