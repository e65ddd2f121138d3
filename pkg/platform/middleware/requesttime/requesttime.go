// Package requesttime pins one "now" per request. Every domain operation in
// ridelink takes an explicit timestamp, and handlers read it from here.
package requesttime

import (
	"context"
	"net/http"
	"time"
)

type contextKeyRequestTime struct{}

// Clock returns the current time. Production uses time.Now; tests and the
// e2e harness install a controllable clock.
type Clock func() time.Time

// Middleware captures time.Now at the start of each request.
func Middleware(next http.Handler) http.Handler {
	return WithClock(time.Now)(next)
}

// WithClock captures clock() at the start of each request.
func WithClock(clock Clock) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := context.WithValue(r.Context(), contextKeyRequestTime{}, clock().UTC())
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// Now returns the request-scoped time, falling back to time.Now outside HTTP.
func Now(ctx context.Context) time.Time {
	if t, ok := ctx.Value(contextKeyRequestTime{}).(time.Time); ok {
		return t
	}
	return time.Now().UTC()
}

// WithTime injects a fixed time into ctx.
func WithTime(ctx context.Context, t time.Time) context.Context {
	return context.WithValue(ctx, contextKeyRequestTime{}, t)
}
