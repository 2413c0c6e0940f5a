package telemetry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

func TestGetTraceID(t *testing.T) {
	assert.Empty(t, GetTraceID(context.Background()), "no span means no trace id")

	tp := sdktrace.NewTracerProvider()
	defer tp.Shutdown(context.Background())
	ctx, span := tp.Tracer("test").Start(context.Background(), "op")
	defer span.End()

	assert.Equal(t, span.SpanContext().TraceID().String(), GetTraceID(ctx))
}

func TestStartSpanSafeWhenDisabled(t *testing.T) {
	_, err := Init(context.Background(), &Config{Enabled: false, ServiceName: "console"})
	assert.NoError(t, err)

	ctx, span := StartSpan(context.Background(), "op")
	assert.NotNil(t, ctx)
	assert.NotNil(t, span)
	span.End()
	assert.Empty(t, GetTraceID(ctx), "disabled tracer produces no trace ids")
}
