package tracing_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"ridelink/pkg/platform/tracing"
)

func TestNilTracerIsNoop(t *testing.T) {
	var tr *tracing.Tracer
	ctx, span := tr.Start(context.Background(), "thread.create", tracing.String("ride_id", "r1"))
	require.NotNil(t, ctx)

	span.SetAttributes(tracing.Int("eta", 3))
	span.End(errors.New("boom"))
	assert.False(t, trace.SpanFromContext(ctx).SpanContext().IsValid())
}

func TestTracerWithProvider(t *testing.T) {
	tr := tracing.NewWithProvider(noop.NewTracerProvider(), "ridelink/thread")
	_, span := tr.Start(context.Background(), "thread.update_eta")
	span.End(nil)

	_, span = tracing.New("ridelink/message").Start(context.Background(), "message.send")
	span.End(nil)
}
