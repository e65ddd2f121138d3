package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"

	"ridelink/internal/app"
	"ridelink/internal/events"
	identitystore "ridelink/internal/identity/store"
	jwttoken "ridelink/internal/jwt_token"
	msgstore "ridelink/internal/message/store"
	"ridelink/internal/platform/config"
	"ridelink/internal/platform/database"
	"ridelink/internal/platform/health"
	"ridelink/internal/platform/kafka/producer"
	"ridelink/internal/platform/logger"
	"ridelink/internal/platform/metrics"
	"ridelink/internal/platform/mqtt"
	"ridelink/internal/platform/redis"
	receiptstore "ridelink/internal/receipt/store"
	threadstore "ridelink/internal/thread/store"
	id "ridelink/pkg/domain"
	"ridelink/pkg/platform/circuit"
	"ridelink/pkg/platform/tracing"
)

// main wires configuration, optional backends and the HTTP server. Missing
// backend URLs fall back to in-memory stores.
func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.New("error").Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	log := logger.New(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info("initializing ridelink",
		"addr", cfg.Addr,
		"environment", cfg.Environment,
		"postgres", cfg.DatabaseURL != "",
		"redis", cfg.RedisURL != "",
		"kafka", cfg.KafkaBrokers != "",
		"mqtt", cfg.MQTTBroker != "",
	)

	checks := health.New(cfg.Environment)
	stores := app.Stores{}
	var closers []func()

	if cfg.DatabaseURL != "" {
		if cfg.MigrateOnStart {
			if err := database.Migrate(cfg.DatabaseURL, database.Up); err != nil {
				log.Error("migration failed", "error", err)
				os.Exit(1)
			}
		}
		pool, err := database.New(ctx, database.DefaultConfig(cfg.DatabaseURL))
		if err != nil {
			log.Error("postgres unavailable", "error", err)
			os.Exit(1)
		}
		closers = append(closers, func() { _ = pool.Close() })
		checks.RegisterCheck("postgres", pool.Check)
		stores.Identities = identitystore.NewPostgres(pool.DB())
		stores.Messages = msgstore.NewPostgres(pool.DB())
		stores.Receipts = receiptstore.NewPostgres(pool.DB())
	}

	if cfg.RedisURL != "" {
		rc, err := redis.New(ctx, redis.DefaultConfig(cfg.RedisURL))
		if err != nil {
			log.Error("redis unavailable", "error", err)
			os.Exit(1)
		}
		if err := rc.RegisterPoolMetrics(prometheus.DefaultRegisterer); err != nil {
			log.Warn("redis pool metrics not registered", "error", err)
		}
		closers = append(closers, func() { _ = rc.Close() })
		checks.RegisterCheck("redis", rc.Check)
		stores.Threads = threadstore.NewRedis(rc.Client)
	}

	var sinks []events.Sink
	if cfg.KafkaBrokers != "" {
		p, err := producer.New(producer.DefaultConfig(cfg.KafkaBrokers), log)
		if err != nil {
			log.Error("kafka producer unavailable", "error", err)
			os.Exit(1)
		}
		closers = append(closers, func() { _ = p.Close() })
		checks.RegisterCheck("kafka", p.Check)
		sinks = append(sinks, guard(events.NewKafkaSink(p, cfg.KafkaTopic), log, checks))
	}
	if cfg.MQTTBroker != "" {
		mc, err := mqtt.New(mqtt.Config{
			Broker:         cfg.MQTTBroker,
			ClientID:       cfg.MQTTClientID,
			Username:       cfg.MQTTUsername,
			Password:       cfg.MQTTPassword,
			ConnectTimeout: 5 * time.Second,
			PublishTimeout: 2 * time.Second,
		}, log)
		if err != nil {
			log.Error("mqtt unavailable", "error", err)
			os.Exit(1)
		}
		closers = append(closers, mc.Close)
		checks.RegisterCheck("mqtt", mc.Check)
		sinks = append(sinks, guard(events.NewMQTTSink(mc, cfg.MQTTTopicPrefix), log, checks))
	}

	// Events only leave the process through the configured sinks.
	publisher := events.NewPublisher(nil,
		events.WithSinks(sinks...),
		events.WithAsyncBuffer(cfg.EventBuffer),
		events.WithPublisherLogger(log),
	)

	application := app.New(stores, app.Options{
		Logger:         log,
		Admin:          id.Handle(cfg.AdminHandle),
		Tokens:         jwttoken.NewJWTService(cfg.JWTSigningKey, cfg.JWTIssuer, cfg.TokenLifetime()),
		Events:         publisher,
		Metrics:        metrics.New(prometheus.DefaultRegisterer),
		Gatherer:       prometheus.DefaultGatherer,
		Tracer:         tracing.New("ridelink"),
		Health:         checks,
		SendRateRPS:    cfg.SendRateRPS,
		SendRateBurst:  cfg.SendRateBurst,
		RequestTimeout: cfg.RequestTimeoutDuration(),
	})

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           application.Router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting http server", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down server gracefully")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error("server stopped with error", "error", err)
	}

	publisher.Close()
	for i := len(closers) - 1; i >= 0; i-- {
		closers[i]()
	}
	log.Info("server stopped")
}

// guard wraps a remote sink in a circuit breaker and exposes its state as a readiness check.
func guard(sink events.Sink, log *slog.Logger, checks *health.Handler) events.Sink {
	g := events.NewGuardedSink(sink, circuit.New(sink.Name(), circuit.WithCooldown(30*time.Second)), log)
	checks.RegisterCheck("events."+sink.Name(), g.Check)
	return g
}
