package events

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"ridelink/pkg/platform/circuit"
)

// ErrSinkUnavailable is returned while a guarded sink's breaker is open.
var ErrSinkUnavailable = errors.New("sink unavailable")

// GuardedSink skips a remote sink while it keeps failing so a dead broker
// does not stall the publisher on every event.
type GuardedSink struct {
	sink    Sink
	breaker *circuit.Breaker
	logger  *slog.Logger
	now     func() time.Time
}

func NewGuardedSink(sink Sink, breaker *circuit.Breaker, logger *slog.Logger) *GuardedSink {
	if logger == nil {
		logger = slog.Default()
	}
	return &GuardedSink{sink: sink, breaker: breaker, logger: logger, now: time.Now}
}

func (g *GuardedSink) Name() string { return g.sink.Name() }

func (g *GuardedSink) Append(ctx context.Context, event Event) error {
	if !g.breaker.Allow(g.now()) {
		return ErrSinkUnavailable
	}
	err := g.sink.Append(ctx, event)
	if t := g.breaker.Record(err, g.now()); t.Changed() {
		g.logger.WarnContext(ctx, "event sink breaker changed state",
			"sink", g.sink.Name(),
			"from", t.From.String(),
			"to", t.To.String(),
		)
	}
	return err
}

// Check fails while the breaker is open; registered as a readiness check.
func (g *GuardedSink) Check(context.Context) error {
	if g.breaker.State() == circuit.StateOpen {
		return ErrSinkUnavailable
	}
	return nil
}
