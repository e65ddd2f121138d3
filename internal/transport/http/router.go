package httptransport

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"ridelink/internal/platform/metrics"
	"ridelink/pkg/platform/middleware/auth"
	"ridelink/pkg/platform/middleware/request"
	"ridelink/pkg/platform/middleware/requesttime"
)

const defaultMaxBodyBytes = 64 << 10

// Module mounts a group of routes.
type Module interface {
	Register(r chi.Router)
}

// PublicModule is a module with routes reachable without a bearer token.
type PublicModule interface {
	RegisterPublic(r chi.Router)
}

// Config carries the cross-cutting pieces of the router.
type Config struct {
	Logger   *slog.Logger
	Metrics  *metrics.Metrics
	Gatherer prometheus.Gatherer
	Tokens   auth.TokenValidator

	RequestTimeout time.Duration
	MaxBodyBytes   int64
	// Clock defaults to time.Now.
	Clock requesttime.Clock
}

// NewRouter wires middleware, public routes and the authenticated modules.
// Modules that also implement PublicModule get their public routes mounted
// outside the auth group.
func NewRouter(cfg Config, public []Module, modules ...Module) http.Handler {
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 30 * time.Second
	}
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = defaultMaxBodyBytes
	}
	if cfg.Clock == nil {
		cfg.Clock = time.Now
	}
	if cfg.Gatherer == nil {
		cfg.Gatherer = prometheus.DefaultGatherer
	}

	r := chi.NewRouter()

	r.Use(request.Recovery(cfg.Logger))
	r.Use(request.RequestID)
	r.Use(request.Logger(cfg.Logger))
	r.Use(request.Timeout(cfg.RequestTimeout))
	r.Use(requesttime.WithClock(cfg.Clock))
	if cfg.Metrics != nil {
		r.Use(request.Latency(cfg.Metrics))
	}
	r.Use(request.BodyLimit(cfg.MaxBodyBytes))

	r.Handle("/metrics", promhttp.HandlerFor(cfg.Gatherer, promhttp.HandlerOpts{}))

	r.Group(func(r chi.Router) {
		r.Use(request.ContentTypeJSON)
		for _, m := range public {
			m.Register(r)
		}
		for _, m := range modules {
			if p, ok := m.(PublicModule); ok {
				p.RegisterPublic(r)
			}
		}
	})

	r.Group(func(r chi.Router) {
		r.Use(request.ContentTypeJSON)
		r.Use(auth.RequireAuth(cfg.Tokens, cfg.Logger))
		for _, m := range modules {
			m.Register(r)
		}
	})

	return r
}
