package observability

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

// Tracer wraps an OpenTelemetry TracerProvider scoped to this process.
// Grounded on the teacher's internal/observability.Tracer, minus the OTLP
// gRPC exporter wiring the teacher uses — this module's domain stack has
// no collector endpoint to ship spans to, so the provider runs with no
// span processor registered: Start/End calls are real SDK calls (every
// span gets a valid trace/span ID), they are simply not exported anywhere
// yet. Swapping in a processor later is additive, not a rewrite.
type Tracer struct {
	provider *sdktrace.TracerProvider
	tracer   trace.Tracer
}

// NewTracer builds a Tracer identified as serviceName and installs it as
// the global TracerProvider. The returned shutdown func must be called on
// exit.
func NewTracer(serviceName string) (*Tracer, func(context.Context) error) {
	provider := sdktrace.NewTracerProvider()
	otel.SetTracerProvider(provider)
	return &Tracer{provider: provider, tracer: provider.Tracer(serviceName)}, provider.Shutdown
}

// StartTick opens a span for one tick-loop iteration, tagged with tickID
// (spec-adjacent: every tick gets a stable identifier for correlating logs,
// traces, and dispatched actions).
func (t *Tracer) StartTick(ctx context.Context, tickID string) (context.Context, trace.Span) {
	return t.tracer.Start(ctx, "runtime.tick", trace.WithAttributes(attribute.String("tick_id", tickID)))
}
