package clients

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"math/rand/v2"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"github.com/jsamuelsen/character-votes/internal/adapters/http/middleware"
	"github.com/jsamuelsen/character-votes/internal/platform/config"
	"github.com/jsamuelsen/character-votes/internal/platform/logging"
)

const (
	instrumentationName = "github.com/jsamuelsen/character-votes/internal/adapters/clients"

	defaultTimeout = 30 * time.Second

	// Pool sizes used when TransportConfig leaves a field at zero.
	defaultMaxIdleConns        = 100
	defaultMaxIdleConnsPerHost = 10
	defaultIdleConnTimeout     = 90 * time.Second
)

// Outcome labels on the request metrics.
const (
	resultCircuitOpen = "circuit_open"
	resultCanceled    = "context_canceled"
	resultError       = "error"
)

// Config configures a Client.
type Config struct {
	// BaseURL is prefixed to every request path, e.g. "http://localhost:3000".
	BaseURL string

	// ServiceName names the backend in logs, spans and metrics. Required.
	ServiceName string

	// Timeout bounds a single attempt. Retries and backoff come on top.
	Timeout time.Duration

	Retry     config.RetryConfig
	Circuit   config.CircuitBreakerConfig
	Transport config.TransportConfig

	// Headers are added to every request that does not set them itself.
	Headers http.Header

	// Logger defaults to slog.Default.
	Logger *slog.Logger
}

// Client talks to one backend. Non-POST requests are retried with
// exponential backoff and jitter; every call goes through a circuit breaker,
// gets a client span and is counted.
type Client struct {
	hc      *http.Client
	baseURL string
	name    string
	retry   config.RetryConfig
	headers http.Header
	logger  *slog.Logger
	breaker *CircuitBreaker
	tracer  trace.Tracer

	duration metric.Float64Histogram
	calls    metric.Int64Counter
}

// New builds a Client from cfg. Zero timeouts and attempt counts fall back to
// defaults.
func New(cfg *Config) (*Client, error) {
	if cfg == nil {
		return nil, errors.New("config is required")
	}

	if cfg.ServiceName == "" {
		return nil, errors.New("service name is required")
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	retry := cfg.Retry
	if retry.MaxAttempts < 1 {
		retry.MaxAttempts = 1
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With(slog.String("component", "clients.Client"), slog.String("downstream", cfg.ServiceName))

	meter := otel.Meter(instrumentationName)

	duration, err := meter.Float64Histogram("http.client.request.duration",
		metric.WithDescription("Duration of calls to the characters backend"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating duration metric: %w", err)
	}

	calls, err := meter.Int64Counter("http.client.request.total",
		metric.WithDescription("Calls to the characters backend"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating request counter: %w", err)
	}

	breaker := NewCircuitBreaker(CircuitBreakerConfig{
		MaxFailures:   cfg.Circuit.MaxFailures,
		Timeout:       cfg.Circuit.Timeout,
		HalfOpenLimit: cfg.Circuit.HalfOpenLimit,
	})
	breaker.OnStateChange(func(from, to State) {
		logger.Warn("circuit breaker state changed", slog.String("from", from.String()), slog.String("to", to.String()))
	})

	return &Client{
		hc:       &http.Client{Timeout: timeout, Transport: newTransport(&cfg.Transport)},
		baseURL:  strings.TrimSuffix(cfg.BaseURL, "/"),
		name:     cfg.ServiceName,
		retry:    retry,
		headers:  cfg.Headers.Clone(),
		logger:   logger,
		breaker:  breaker,
		tracer:   otel.Tracer(instrumentationName),
		duration: duration,
		calls:    calls,
	}, nil
}

// Get sends a GET to path under the base URL.
func (c *Client) Get(ctx context.Context, path string) (*http.Response, error) {
	return c.send(ctx, http.MethodGet, path, nil)
}

// Post sends a JSON body. It is attempted once.
func (c *Client) Post(ctx context.Context, path string, body io.Reader) (*http.Response, error) {
	return c.send(ctx, http.MethodPost, path, body)
}

// Patch sends a JSON body, retrying like Get.
func (c *Client) Patch(ctx context.Context, path string, body io.Reader) (*http.Response, error) {
	return c.send(ctx, http.MethodPatch, path, body)
}

func (c *Client) send(ctx context.Context, method, path string, body io.Reader) (*http.Response, error) {
	if body == nil {
		body = http.NoBody
	}

	req, err := http.NewRequestWithContext(ctx, method, c.url(path), body)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	if body != http.NoBody {
		req.Header.Set("Content-Type", "application/json")
	}

	return c.Do(ctx, req)
}

// Do runs req through the breaker and the retry loop.
//
// Any response below 500 is returned to the caller, who owns its body. A
// call that exhausts its attempts counts once against the breaker and comes
// back wrapped in ErrMaxRetriesExceeded.
func (c *Client) Do(ctx context.Context, req *http.Request) (*http.Response, error) {
	start := time.Now()
	logger := logging.FromContext(ctx).With(
		slog.String("downstream", c.name),
		slog.String("method", req.Method),
		slog.String("path", req.URL.Path),
	)

	if !c.breaker.Allow() {
		c.record(ctx, req.Method, 0, start, resultCircuitOpen)
		logger.Warn("request blocked by circuit breaker")

		return nil, ErrCircuitOpen
	}

	ctx, span := c.tracer.Start(ctx, "HTTP "+req.Method+" "+c.name,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.method", req.Method),
			attribute.String("http.url", req.URL.String()),
			attribute.String("peer.service", c.name),
		),
	)
	defer span.End()

	c.decorate(ctx, req)

	resp, err := c.attempts(ctx, req, logger)
	if err != nil {
		c.breaker.RecordFailure()
		span.SetStatus(codes.Error, err.Error())

		if ctx.Err() != nil {
			c.record(ctx, req.Method, 0, start, resultCanceled)
			return nil, err
		}

		c.record(ctx, req.Method, 0, start, resultError)
		logger.Error("request failed", slog.Duration("duration", time.Since(start)), slog.Any("error", err))

		return nil, fmt.Errorf("%w: %w", ErrMaxRetriesExceeded, err)
	}

	c.breaker.RecordSuccess()

	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))
	if resp.StatusCode >= http.StatusBadRequest {
		span.SetStatus(codes.Error, "HTTP "+strconv.Itoa(resp.StatusCode))
	}

	c.record(ctx, req.Method, resp.StatusCode, start, strconv.Itoa(resp.StatusCode/100)+"xx")
	logger.Debug("request completed", slog.Int("status", resp.StatusCode), slog.Duration("duration", time.Since(start)))

	return resp, nil
}

// attempts sends req until it gets a non-5xx response, hits a permanent
// error or runs out of attempts.
func (c *Client) attempts(ctx context.Context, req *http.Request, logger *slog.Logger) (*http.Response, error) {
	limit := c.retry.MaxAttempts
	if req.Method == http.MethodPost {
		limit = 1
	}

	var lastErr error

	for attempt := range limit {
		if attempt > 0 {
			if err := c.pause(ctx, attempt, logger); err != nil {
				return nil, err
			}

			if err := rewind(req); err != nil {
				return nil, err
			}
		}

		resp, err := c.hc.Do(req.WithContext(ctx))
		switch {
		case err != nil && !retryable(err):
			return nil, err
		case err != nil:
			logger.Debug("attempt failed", slog.Int("attempt", attempt+1), slog.Any("error", err))
			lastErr = err
		case resp.StatusCode >= http.StatusInternalServerError:
			logger.Debug("attempt got server error", slog.Int("attempt", attempt+1), slog.Int("status", resp.StatusCode))
			_ = resp.Body.Close()
			lastErr = fmt.Errorf("server error: %d", resp.StatusCode)
		default:
			return resp, nil
		}
	}

	return nil, lastErr
}

func (c *Client) pause(ctx context.Context, attempt int, logger *slog.Logger) error {
	wait := c.backoff(attempt)
	logger.Debug("retrying request", slog.Int("attempt", attempt+1), slog.Duration("backoff", wait))

	timer := time.NewTimer(wait)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// rewind resets the body for another attempt. http.NewRequest sets GetBody
// for in-memory readers.
func rewind(req *http.Request) error {
	if req.GetBody == nil {
		return nil
	}

	body, err := req.GetBody()
	if err != nil {
		return fmt.Errorf("rewinding request body: %w", err)
	}

	req.Body = body

	return nil
}

// backoff is InitialInterval * Multiplier^attempt, capped at MaxInterval,
// then spread by ±JitterFactor.
func (c *Client) backoff(attempt int) time.Duration {
	wait := float64(c.retry.InitialInterval) * math.Pow(c.retry.Multiplier, float64(attempt))
	wait = math.Min(wait, float64(c.retry.MaxInterval))

	spread := rand.Float64()*2 - 1 //nolint:gosec // jitter
	wait += wait * c.retry.JitterFactor * spread

	return time.Duration(wait)
}

// decorate sets the default headers and forwards the request and
// correlation ids and the trace context.
func (c *Client) decorate(ctx context.Context, req *http.Request) {
	for name, values := range c.headers {
		if req.Header.Get(name) == "" {
			req.Header[name] = values
		}
	}

	if id := middleware.RequestIDFromContext(ctx); id != "" {
		req.Header.Set(middleware.HeaderRequestID, id)
	}

	if id := middleware.CorrelationIDFromContext(ctx); id != "" {
		req.Header.Set(middleware.HeaderCorrelationID, id)
	}

	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))
}

func (c *Client) record(ctx context.Context, method string, status int, start time.Time, result string) {
	attrs := []attribute.KeyValue{
		attribute.String("http.method", method),
		attribute.String("peer.service", c.name),
		attribute.String("result", result),
	}
	if status > 0 {
		attrs = append(attrs, attribute.Int("http.status_code", status))
	}

	opt := metric.WithAttributes(attrs...)
	c.duration.Record(ctx, time.Since(start).Seconds(), opt)
	c.calls.Add(ctx, 1, opt)
}

// CircuitState reports the breaker's state.
func (c *Client) CircuitState() State {
	return c.breaker.State()
}

// ServiceName returns the backend's name.
func (c *Client) ServiceName() string {
	return c.name
}

func (c *Client) url(path string) string {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}

	return c.baseURL + path
}

func newTransport(cfg *config.TransportConfig) *http.Transport {
	t := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		MaxIdleConns:        cfg.MaxIdleConns,
		MaxIdleConnsPerHost: cfg.MaxIdleConnsPerHost,
		IdleConnTimeout:     cfg.IdleConnTimeout,
	}

	if t.MaxIdleConns <= 0 {
		t.MaxIdleConns = defaultMaxIdleConns
	}

	if t.MaxIdleConnsPerHost <= 0 {
		t.MaxIdleConnsPerHost = defaultMaxIdleConnsPerHost
	}

	if t.IdleConnTimeout <= 0 {
		t.IdleConnTimeout = defaultIdleConnTimeout
	}

	return t
}

// retryable reports whether err is a transient network failure.
// Cancellation and deadlines are not.
func retryable(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	var opErr *net.OpError

	return errors.As(err, &opErr)
}
