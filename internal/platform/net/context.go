// Package net carries request identity on the context and shapes the JSON envelope
package net

import (
	"context"

	chimw "github.com/go-chi/chi/v5/middleware"
)

type clientIDKey struct{}

// WithRequest stores the request id where chi's GetReqID finds it, plus the
// caller's self-declared client id; empty values are not stored
func WithRequest(ctx context.Context, reqID, clientID string) context.Context {
	if reqID != "" {
		ctx = context.WithValue(ctx, chimw.RequestIDKey, reqID)
	}
	if clientID != "" {
		ctx = context.WithValue(ctx, clientIDKey{}, clientID)
	}
	return ctx
}

func RequestID(ctx context.Context) string { return chimw.GetReqID(ctx) }

// ClientID is the declared id from WithRequest; nothing verifies it
func ClientID(ctx context.Context) string {
	id, _ := ctx.Value(clientIDKey{}).(string)
	return id
}
