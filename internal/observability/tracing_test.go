package observability

import "testing"

func TestStartTickProducesAValidSpanContext(t *testing.T) {
	tracer, shutdown := NewTracer("om1agent-test")
	defer shutdown(t.Context())

	ctx, span := tracer.StartTick(t.Context(), "tick-1")
	defer span.End()

	if !span.SpanContext().IsValid() {
		t.Fatal("expected StartTick to produce a valid span context")
	}
	if ctx == nil {
		t.Fatal("expected a non-nil context")
	}
}
