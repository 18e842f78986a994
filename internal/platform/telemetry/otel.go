// Package telemetry sets up OpenTelemetry: the OTLP exporters installed as
// otel globals and the gin middleware that traces and measures requests.
package telemetry

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	"go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

const (
	ProtocolGRPC = "grpc"
	ProtocolHTTP = "http"
)

const shutdownTimeout = 5 * time.Second

type Config struct {
	Enabled bool
	// Endpoint is the collector URL, e.g. http://otel-collector:4317.
	Endpoint     string
	Protocol     string
	ServiceName  string
	Version      string
	Environment  string
	SamplingRate float64
}

func (c *Config) protocol() string {
	if c.Protocol == "" {
		return ProtocolGRPC
	}

	return c.Protocol
}

// Provider holds what New installed, in the order it must be shut down.
type Provider struct {
	shutdowns []func(context.Context) error
}

// New installs a tracer provider and the W3C propagators. Over grpc a meter
// provider is installed too; over http metrics are only scraped from
// /-/metrics. A disabled Config installs nothing.
func New(ctx context.Context, cfg *Config) (*Provider, error) {
	p := &Provider{}
	if !cfg.Enabled {
		return p, nil
	}

	res, err := resource.New(ctx,
		resource.WithTelemetrySDK(),
		resource.WithHost(),
		resource.WithAttributes(
			semconv.ServiceName(cfg.ServiceName),
			semconv.ServiceVersion(cfg.Version),
			semconv.DeploymentEnvironment(cfg.Environment),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("creating resource: %w", err)
	}

	spans, err := spanExporter(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("creating trace exporter: %w", err)
	}

	tp := trace.NewTracerProvider(
		trace.WithResource(res),
		trace.WithBatcher(spans),
		trace.WithSampler(trace.ParentBased(trace.TraceIDRatioBased(cfg.SamplingRate))),
	)
	p.shutdowns = append(p.shutdowns, tp.Shutdown)

	if cfg.protocol() == ProtocolGRPC {
		metrics, err := otlpmetricgrpc.New(ctx, otlpmetricgrpc.WithEndpointURL(cfg.Endpoint))
		if err != nil {
			_ = tp.Shutdown(ctx)
			return nil, fmt.Errorf("creating metric exporter: %w", err)
		}

		mp := metric.NewMeterProvider(
			metric.WithResource(res),
			metric.WithReader(metric.NewPeriodicReader(metrics)),
		)
		p.shutdowns = append(p.shutdowns, mp.Shutdown)
		otel.SetMeterProvider(mp)
	}

	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(propagation.TraceContext{}, propagation.Baggage{}))

	return p, nil
}

func spanExporter(ctx context.Context, cfg *Config) (trace.SpanExporter, error) {
	switch cfg.protocol() {
	case ProtocolGRPC:
		return otlptracegrpc.New(ctx, otlptracegrpc.WithEndpointURL(cfg.Endpoint))
	case ProtocolHTTP:
		return otlptracehttp.New(ctx, otlptracehttp.WithEndpointURL(cfg.Endpoint))
	default:
		return nil, fmt.Errorf("unsupported telemetry protocol %q", cfg.Protocol)
	}
}

// Shutdown flushes pending spans and metrics, waiting at most
// shutdownTimeout. Every provider is shut down even if one fails.
func (p *Provider) Shutdown(ctx context.Context) error {
	if len(p.shutdowns) == 0 {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, shutdownTimeout)
	defer cancel()

	var errs []error
	for _, shutdown := range p.shutdowns {
		errs = append(errs, shutdown(ctx))
	}

	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("telemetry shutdown: %w", err)
	}

	return nil
}
