package middleware

import (
	"net/http"
	"strings"

	perr "vera/internal/platform/errors"
	"vera/internal/platform/logger"
	pnet "vera/internal/platform/net"
)

// ClientIDHeader carries the caller's self-declared identity, for example a wallet address
const ClientIDHeader = "X-Client-ID"

const maxClientIDLen = 128

// IdentityPort resolves the caller's declared identity from a request
// it is a seam, nothing here verifies the value
type IdentityPort interface {
	Identify(r *http.Request) (clientID string, err error)
}

// HeaderIdentity reads the client id from a request header
type HeaderIdentity struct {
	Header string
}

// Identify returns the trimmed header value; oversized or control-laden values are rejected
func (h HeaderIdentity) Identify(r *http.Request) (string, error) {
	name := h.Header
	if name == "" {
		name = ClientIDHeader
	}
	v := strings.TrimSpace(r.Header.Get(name))
	if len(v) > maxClientIDLen {
		return "", perr.WithField(
			perr.Reasonf(perr.ErrorCodeValidation, "invalid_client_id", "client id exceeds %d characters", maxClientIDLen),
			name,
		)
	}
	if strings.IndexFunc(v, func(r rune) bool { return r < 0x20 || r == 0x7f }) >= 0 {
		return "", perr.WithField(
			perr.Reasonf(perr.ErrorCodeValidation, "invalid_client_id", "client id contains control characters"),
			name,
		)
	}
	return v, nil
}

// Identity puts the declared client id on the request and logger contexts
// a nil port passes requests through untouched
func Identity(p IdentityPort, write func(w http.ResponseWriter, status int, body any)) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if p == nil {
				next.ServeHTTP(w, r)
				return
			}
			cid, err := p.Identify(r)
			if err != nil {
				status, body := pnet.Error(err, pnet.RequestID(r.Context()))
				write(w, status, body)
				return
			}
			reqID := pnet.RequestID(r.Context())
			ctx := pnet.WithRequest(r.Context(), reqID, cid)
			ctx = logger.WithRequest(ctx, reqID, cid)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
