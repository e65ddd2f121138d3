package events

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
)

// Emitter is what domain services need from a publisher.
type Emitter interface {
	Emit(ctx context.Context, event Event) error
}

// Publisher fans events out to its sinks. Delivery is at-most-once: a sink
// failure is logged and reported to the caller but never retried, and in
// async mode a full buffer drops the event.
type Publisher struct {
	sinks  []Sink
	events chan queued
	wg     sync.WaitGroup
	logger *slog.Logger
	async  bool

	mu     sync.RWMutex
	closed bool
}

type queued struct {
	ctx   context.Context
	event Event
}

// PublisherOption configures the Publisher.
type PublisherOption func(*Publisher)

// WithAsyncBuffer enables async delivery with the specified buffer size.
func WithAsyncBuffer(size int) PublisherOption {
	return func(p *Publisher) {
		if size > 0 {
			p.events = make(chan queued, size)
			p.async = true
		}
	}
}

// WithPublisherLogger sets a logger for sink error reporting.
func WithPublisherLogger(logger *slog.Logger) PublisherOption {
	return func(p *Publisher) {
		p.logger = logger
	}
}

// WithSinks adds sinks after the primary one.
func WithSinks(sinks ...Sink) PublisherOption {
	return func(p *Publisher) {
		for _, s := range sinks {
			if s != nil {
				p.sinks = append(p.sinks, s)
			}
		}
	}
}

func NewPublisher(primary Sink, opts ...PublisherOption) *Publisher {
	p := &Publisher{}
	if primary != nil {
		p.sinks = append(p.sinks, primary)
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.async {
		p.wg.Add(1)
		go p.processEvents()
	}
	return p
}

func (p *Publisher) processEvents() {
	defer p.wg.Done()
	for q := range p.events {
		_ = p.deliver(q.ctx, q.event)
	}
}

// Close stops the async worker and waits for queued events to drain.
func (p *Publisher) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	if p.async {
		close(p.events)
	}
	p.mu.Unlock()
	p.wg.Wait()
}

// Emit hands the event to every sink. In async mode it never blocks and
// always returns nil; events emitted after Close are discarded.
func (p *Publisher) Emit(ctx context.Context, event Event) error {
	if p.async {
		p.mu.RLock()
		defer p.mu.RUnlock()
		if p.closed {
			return nil
		}
		select {
		case p.events <- queued{ctx: context.WithoutCancel(ctx), event: event}:
		default:
			if p.logger != nil {
				p.logger.WarnContext(ctx, "event buffer full, event dropped",
					"type", event.Type,
					"key", event.Key,
				)
			}
		}
		return nil
	}
	return p.deliver(ctx, event)
}

func (p *Publisher) deliver(ctx context.Context, event Event) error {
	var errs []error
	for _, sink := range p.sinks {
		if err := sink.Append(ctx, event); err != nil {
			if p.logger != nil {
				p.logger.ErrorContext(ctx, "failed to deliver event",
					"sink", sink.Name(),
					"type", event.Type,
					"key", event.Key,
					"error", err,
				)
			}
			errs = append(errs, fmt.Errorf("%s: %w", sink.Name(), err))
		}
	}
	return errors.Join(errs...)
}
