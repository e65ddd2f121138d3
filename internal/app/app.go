// Package app assembles the ridelink services and their HTTP surface from a
// set of stores. The server binary and the end-to-end suite both build on it.
package app

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"ridelink/internal/events"
	identityhandler "ridelink/internal/identity/handler"
	identitymodels "ridelink/internal/identity/models"
	identityservice "ridelink/internal/identity/service"
	identitystore "ridelink/internal/identity/store"
	msghandler "ridelink/internal/message/handler"
	msgservice "ridelink/internal/message/service"
	msgstore "ridelink/internal/message/store"
	"ridelink/internal/platform/health"
	"ridelink/internal/platform/metrics"
	receipthandler "ridelink/internal/receipt/handler"
	receiptservice "ridelink/internal/receipt/service"
	receiptstore "ridelink/internal/receipt/store"
	threadhandler "ridelink/internal/thread/handler"
	threadservice "ridelink/internal/thread/service"
	threadstore "ridelink/internal/thread/store"
	httptransport "ridelink/internal/transport/http"
	wallethandler "ridelink/internal/wallet/handler"
	walletservice "ridelink/internal/wallet/service"
	id "ridelink/pkg/domain"
	"ridelink/pkg/platform/middleware/auth"
	"ridelink/pkg/platform/middleware/ratelimit"
	"ridelink/pkg/platform/middleware/requesttime"
	platformsync "ridelink/pkg/platform/sync"
	"ridelink/pkg/platform/tracing"
)

// Stores are the persistence backends. Any nil field falls back to memory.
type Stores struct {
	Identities  identityservice.Store
	Threads     threadservice.Store
	Messages    msgservice.Store
	Receipts    receiptservice.Store
	Preferences msgservice.Preferences
}

func (s *Stores) fill() {
	if s.Identities == nil {
		s.Identities = identitystore.NewInMemory()
	}
	if s.Threads == nil {
		s.Threads = threadstore.NewInMemory()
	}
	if s.Messages == nil {
		s.Messages = msgstore.NewInMemory()
	}
	if s.Receipts == nil {
		s.Receipts = receiptstore.NewInMemory()
	}
	if s.Preferences == nil {
		s.Preferences = msgstore.NewPreferencesInMemory()
	}
}

type Options struct {
	Logger   *slog.Logger
	Admin    id.Handle
	Tokens   auth.TokenValidator
	Events   *events.Publisher
	Metrics  *metrics.Metrics
	Gatherer prometheus.Gatherer
	Tracer   *tracing.Tracer
	Health   *health.Handler

	SendRateRPS    float64
	SendRateBurst  int
	RequestTimeout time.Duration
	Clock          requesttime.Clock
}

// App exposes the assembled services alongside the router.
type App struct {
	Identity *identityservice.Service
	Threads  *threadservice.Service
	Messages *msgservice.Service
	Receipts *receiptservice.Service
	Wallet   *walletservice.Service
	Router   http.Handler
}

func New(stores Stores, opts Options) *App {
	stores.fill()
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if opts.Health == nil {
		opts.Health = health.New("development")
	}

	identity := identityservice.New(stores.Identities, identitymodels.Registry{Admin: opts.Admin},
		identityservice.WithLogger(logger),
		identityservice.WithMetrics(opts.Metrics),
		identityservice.WithTracer(opts.Tracer),
		identityservice.WithEvents(emitter(opts.Events)),
	)

	// Thread and in-thread message operations share one keyed lock so an ETA
	// update and its template broadcast form a single critical section.
	threadTx := platformsync.NewKeyedTx(platformsync.NewShardedMutex(), "thread")

	messages := msgservice.New(stores.Messages, stores.Threads, identity,
		msgservice.WithLogger(logger),
		msgservice.WithMetrics(opts.Metrics),
		msgservice.WithTracer(opts.Tracer),
		msgservice.WithEvents(emitter(opts.Events)),
		msgservice.WithKeyedTx(threadTx),
		msgservice.WithPreferences(stores.Preferences),
	)
	threads := threadservice.New(stores.Threads, identity, messages,
		threadservice.WithLogger(logger),
		threadservice.WithMetrics(opts.Metrics),
		threadservice.WithTracer(opts.Tracer),
		threadservice.WithEvents(emitter(opts.Events)),
		threadservice.WithKeyedTx(threadTx),
	)
	receipts := receiptservice.New(stores.Receipts, stores.Messages,
		receiptservice.WithLogger(logger),
		receiptservice.WithMetrics(opts.Metrics),
		receiptservice.WithEvents(emitter(opts.Events)),
	)
	wallet := walletservice.New(messages,
		walletservice.WithLogger(logger),
		walletservice.WithMetrics(opts.Metrics),
	)

	var msgOpts []msghandler.Option
	if limiter := ratelimit.New(opts.SendRateRPS, opts.SendRateBurst, 0); limiter != nil {
		var recorder ratelimit.DenialRecorder
		if opts.Metrics != nil {
			recorder = opts.Metrics
		}
		msgOpts = append(msgOpts, msghandler.WithSendLimit(ratelimit.PerCaller(limiter, "send_in_thread", recorder, logger)))
	}

	router := httptransport.NewRouter(httptransport.Config{
		Logger:         logger,
		Metrics:        opts.Metrics,
		Gatherer:       opts.Gatherer,
		Tokens:         opts.Tokens,
		RequestTimeout: opts.RequestTimeout,
		Clock:          opts.Clock,
	},
		[]httptransport.Module{opts.Health},
		identityhandler.New(identity, logger),
		threadhandler.New(threads, logger),
		msghandler.New(messages, logger, msgOpts...),
		receipthandler.New(receipts, logger),
		wallethandler.New(wallet, logger),
	)

	return &App{
		Identity: identity,
		Threads:  threads,
		Messages: messages,
		Receipts: receipts,
		Wallet:   wallet,
		Router:   router,
	}
}

// emitter avoids handing services a typed-nil interface.
func emitter(p *events.Publisher) events.Emitter {
	if p == nil {
		return nil
	}
	return p
}
