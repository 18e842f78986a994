package telemetry

import (
	"errors"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/jsamuelsen/character-votes/internal/platform/logging"
)

const instrumentationName = "github.com/jsamuelsen/character-votes/telemetry"

const (
	// TraceIDHeader carries the active trace id back to callers.
	TraceIDHeader = "X-Trace-ID"

	TraceIDKey = "trace_id"
)

// Metrics are the request instruments Middleware records on.
type Metrics struct {
	duration metric.Float64Histogram
	total    metric.Int64Counter
	active   metric.Int64UpDownCounter
}

func NewMetrics(mp metric.MeterProvider) (*Metrics, error) {
	meter := mp.Meter(instrumentationName)

	duration, errDuration := meter.Float64Histogram("http.server.request.duration",
		metric.WithDescription("HTTP request duration in seconds"),
		metric.WithUnit("s"),
	)
	total, errTotal := meter.Int64Counter("http.server.request.total",
		metric.WithDescription("Total number of HTTP requests"),
	)
	active, errActive := meter.Int64UpDownCounter("http.server.active_requests",
		metric.WithDescription("Number of active HTTP requests"),
	)

	if err := errors.Join(errDuration, errTotal, errActive); err != nil {
		return nil, err
	}

	return &Metrics{duration: duration, total: total, active: active}, nil
}

type middlewareConfig struct {
	meterProvider metric.MeterProvider
}

type MiddlewareOption func(*middlewareConfig)

// WithMeterProvider records on mp instead of the global meter provider.
func WithMeterProvider(mp metric.MeterProvider) MiddlewareOption {
	return func(c *middlewareConfig) { c.meterProvider = mp }
}

// Middleware records request metrics and publishes the active trace id in
// the X-Trace-ID header, under TraceIDKey and on the request logger. Mount
// it after TracingMiddleware so the span exists.
func Middleware(opts ...MiddlewareOption) gin.HandlerFunc {
	cfg := middlewareConfig{meterProvider: otel.GetMeterProvider()}
	for _, opt := range opts {
		opt(&cfg)
	}

	m, err := NewMetrics(cfg.meterProvider)
	if err != nil {
		otel.Handle(err)
	}

	return func(c *gin.Context) {
		ctx := c.Request.Context()

		if sc := trace.SpanFromContext(ctx).SpanContext(); sc.HasTraceID() {
			id := sc.TraceID().String()
			c.Header(TraceIDHeader, id)
			c.Set(TraceIDKey, id)

			ctx = logging.WithTraceID(ctx, id)
			c.Request = c.Request.WithContext(ctx)
		}

		if m == nil {
			c.Next()
			return
		}

		base := []attribute.KeyValue{
			attribute.String("http.method", c.Request.Method),
			attribute.String("http.route", c.FullPath()),
		}
		inFlight := metric.WithAttributes(base...)

		m.active.Add(ctx, 1, inFlight)
		defer m.active.Add(ctx, -1, inFlight)

		start := time.Now()
		c.Next()

		done := metric.WithAttributes(append(base, attribute.Int("http.status_code", c.Writer.Status()))...)
		m.duration.Record(ctx, time.Since(start).Seconds(), done)
		m.total.Add(ctx, 1, done)
	}
}

// TracingMiddleware starts a server span per request with otelgin.
func TracingMiddleware(serviceName string) gin.HandlerFunc {
	return otelgin.Middleware(serviceName)
}
