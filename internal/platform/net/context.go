// Package net carries request-scoped identity: the correlation id stamped
// by middleware and the authenticated reviewer.
package net

import (
	"context"

	chimw "github.com/go-chi/chi/v5/middleware"
)

type ctxKey string

const keyUserID ctxKey = "user_id"

// WithRequest stamps the request id onto the context. It writes chi's key
// so chimw.GetReqID and our RequestID read the same value.
func WithRequest(ctx context.Context, reqID string) context.Context {
	if reqID != "" {
		ctx = context.WithValue(ctx, chimw.RequestIDKey, reqID)
	}
	return ctx
}

// WithUser stamps the authenticated reviewer onto the context. Empty ids
// leave the context untouched.
func WithUser(ctx context.Context, userID string) context.Context {
	if userID != "" {
		ctx = context.WithValue(ctx, keyUserID, userID)
	}
	return ctx
}

// RequestID returns the request id on the context, or empty.
func RequestID(ctx context.Context) string {
	return chimw.GetReqID(ctx)
}

// UserID returns the reviewer on the context, or empty.
func UserID(ctx context.Context) string {
	if v, ok := ctx.Value(keyUserID).(string); ok {
		return v
	}
	return ""
}
