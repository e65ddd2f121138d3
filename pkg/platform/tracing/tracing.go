// Package tracing wraps OpenTelemetry so services start spans without
// touching the otel API directly.
package tracing

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// Tracer starts spans for one instrumentation scope.
type Tracer struct {
	tracer trace.Tracer
}

// New uses the global tracer provider. Until a provider is installed the
// spans are no-ops.
func New(scope string) *Tracer {
	return &Tracer{tracer: otel.Tracer(scope)}
}

// NewWithProvider binds the tracer to an explicit provider.
func NewWithProvider(tp trace.TracerProvider, scope string) *Tracer {
	return &Tracer{tracer: tp.Tracer(scope)}
}

// Span is a started span; End must be called exactly once.
type Span struct {
	span trace.Span
}

// Start opens a span. A nil Tracer yields a no-op span.
func (t *Tracer) Start(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, Span) {
	tr := trace.Tracer(noop.NewTracerProvider().Tracer(""))
	if t != nil && t.tracer != nil {
		tr = t.tracer
	}
	ctx, span := tr.Start(ctx, name, trace.WithAttributes(attrs...))
	return ctx, Span{span: span}
}

// End completes the span, recording err when non-nil.
func (s Span) End(err error) {
	if err != nil {
		s.span.RecordError(err)
		s.span.SetStatus(codes.Error, err.Error())
	}
	s.span.End()
}

func (s Span) SetAttributes(attrs ...attribute.KeyValue) {
	s.span.SetAttributes(attrs...)
}

func String(k, v string) attribute.KeyValue { return attribute.String(k, v) }
func Int(k string, v int) attribute.KeyValue { return attribute.Int(k, v) }
