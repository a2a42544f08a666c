package telemetry

import (
	"context"

	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.trai.ch/forge/internal/core/ports"
)

// Provider owns the tracer provider that feeds the renderer.
type Provider struct {
	tp     *sdktrace.TracerProvider
	tracer *OTelTracer
}

// NewProvider wires a Bridge for renderer into a new tracer provider and
// registers it as the global provider.
func NewProvider(renderer ports.Renderer) *Provider {
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithSpanProcessor(NewBridge(renderer)),
	)
	otel.SetTracerProvider(tp)

	return &Provider{
		tp:     tp,
		tracer: NewOTelTracer(tp, renderer),
	}
}

// Tracer returns the tracer bound to this provider.
func (p *Provider) Tracer() ports.Tracer {
	return p.tracer
}

// Shutdown ends the provider and flushes the renderer.
func (p *Provider) Shutdown(ctx context.Context) error {
	return p.tp.Shutdown(ctx)
}
