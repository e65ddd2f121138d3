// Package requestcontext provides HTTP-independent accessors for
// request-scoped values set by middleware and read by handlers.
package requestcontext

import (
	"context"

	id "ridelink/pkg/domain"
)

type (
	callerKey    struct{}
	requestIDKey struct{}
	clientIPKey  struct{}
)

// Caller returns the authenticated handle, or "" when unauthenticated.
func Caller(ctx context.Context) id.Handle {
	if h, ok := ctx.Value(callerKey{}).(id.Handle); ok {
		return h
	}
	return ""
}

func WithCaller(ctx context.Context, handle id.Handle) context.Context {
	return context.WithValue(ctx, callerKey{}, handle)
}

func RequestID(ctx context.Context) string {
	if v, ok := ctx.Value(requestIDKey{}).(string); ok {
		return v
	}
	return ""
}

func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, requestID)
}

func ClientIP(ctx context.Context) string {
	if v, ok := ctx.Value(clientIPKey{}).(string); ok {
		return v
	}
	return ""
}

func WithClientIP(ctx context.Context, ip string) context.Context {
	return context.WithValue(ctx, clientIPKey{}, ip)
}
