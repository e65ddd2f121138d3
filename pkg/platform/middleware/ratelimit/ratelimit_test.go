package ratelimit

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"ridelink/pkg/platform/middleware/requesttime"
	"ridelink/pkg/requestcontext"
)

type denials struct{ codes []string }

func (d *denials) IncrementDenial(_, code string) { d.codes = append(d.codes, code) }

func TestLimiter_Allow(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	l := New(1, 2, time.Minute)

	assert.True(t, l.Allow("driver", now))
	assert.True(t, l.Allow("driver", now))
	assert.False(t, l.Allow("driver", now), "burst exhausted")
	assert.True(t, l.Allow("passenger", now), "buckets are per key")
	assert.True(t, l.Allow("driver", now.Add(time.Second)), "refilled after one second")
}

func TestLimiter_NilAndEmptyKeyAllow(t *testing.T) {
	var l *Limiter
	assert.True(t, l.Allow("anyone", time.Now()))
	assert.Nil(t, New(0, 1, 0))

	l = New(1, 1, 0)
	assert.True(t, l.Allow("", time.Now()))
	assert.True(t, l.Allow("", time.Now()))
}

func TestLimiter_EvictsIdleKeys(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	l := New(1000, 1000, time.Minute)
	l.Allow("idle", start)

	later := start.Add(time.Hour)
	for range 511 {
		l.Allow("busy", later)
	}
	assert.Equal(t, 1, l.size())
}

func TestPerCaller(t *testing.T) {
	rec := &denials{}
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	h := PerCaller(New(1, 1, 0), "send_in_thread", rec, slog.New(slog.NewTextHandler(io.Discard, nil)))(
		http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusCreated) }),
	)

	send := func() int {
		req := httptest.NewRequest(http.MethodPost, "/threads/x/messages", nil)
		ctx := requestcontext.WithCaller(req.Context(), "driver")
		ctx = requesttime.WithTime(ctx, now)
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req.WithContext(ctx))
		return w.Code
	}

	assert.Equal(t, http.StatusCreated, send())
	assert.Equal(t, http.StatusTooManyRequests, send())
	assert.Equal(t, []string{"rate_limited"}, rec.codes)
}
