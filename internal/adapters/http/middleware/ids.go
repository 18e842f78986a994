// Package middleware provides the gin middleware chain: request and
// correlation ids, request logging, panic recovery and deadlines.
package middleware

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/jsamuelsen/character-votes/internal/platform/logging"
)

// A request id is per hop. A correlation id spans every request of one user
// action and is passed along untouched.
const (
	HeaderRequestID     = "X-Request-ID"
	HeaderCorrelationID = "X-Correlation-ID"

	// Keys in the gin context.
	ContextKeyRequestID     = "request_id"
	ContextKeyCorrelationID = "correlation_id"
)

type idKey int

const (
	requestIDKey idKey = iota
	correlationIDKey
)

// RequestID adopts the caller's X-Request-ID or generates a UUID. The id is
// echoed in the response, added to the request logger and forwarded by the
// characters client.
func RequestID() gin.HandlerFunc {
	return idMiddleware(HeaderRequestID, ContextKeyRequestID, ContextWithRequestID, logging.WithRequestID)
}

// CorrelationID is RequestID for X-Correlation-ID.
func CorrelationID() gin.HandlerFunc {
	return idMiddleware(HeaderCorrelationID, ContextKeyCorrelationID, ContextWithCorrelationID, logging.WithCorrelationID)
}

func idMiddleware(header, ginKey string, enrich ...func(context.Context, string) context.Context) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(header)
		if id == "" {
			id = uuid.NewString()
		}

		c.Set(ginKey, id)
		c.Header(header, id)

		ctx := c.Request.Context()
		for _, fn := range enrich {
			ctx = fn(ctx, id)
		}
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

func GetRequestID(c *gin.Context) string {
	return c.GetString(ContextKeyRequestID)
}

func GetCorrelationID(c *gin.Context) string {
	return c.GetString(ContextKeyCorrelationID)
}

func ContextWithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}

func ContextWithCorrelationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, correlationIDKey, id)
}

// RequestIDFromContext returns the id RequestID stored, or "".
func RequestIDFromContext(ctx context.Context) string {
	return stringValue(ctx, requestIDKey)
}

// CorrelationIDFromContext returns the id CorrelationID stored, or "".
func CorrelationIDFromContext(ctx context.Context) string {
	return stringValue(ctx, correlationIDKey)
}

func stringValue(ctx context.Context, key idKey) string {
	if ctx == nil {
		return ""
	}

	s, _ := ctx.Value(key).(string)

	return s
}
