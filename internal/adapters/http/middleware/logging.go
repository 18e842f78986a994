package middleware

import (
	"log/slog"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jsamuelsen/character-votes/internal/platform/logging"
)

// probePrefix holds the health and metrics endpoints, which are never logged.
const probePrefix = "/-/"

// Logging writes one "request completed" line per request, at info, warn
// for 4xx or error for 5xx. It logs through the request logger when one is
// in the context, so the request and correlation ids come along.
func Logging(logger *slog.Logger, skipPaths ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path
		if strings.HasPrefix(path, probePrefix) || slices.Contains(skipPaths, path) {
			c.Next()
			return
		}

		if q := c.Request.URL.RawQuery; q != "" {
			path += "?" + q
		}

		ctx := c.Request.Context()
		log := logging.FromContextOr(ctx, logger).With(
			slog.String("method", c.Request.Method),
			slog.String("path", path),
		)

		log.Log(ctx, logging.LevelTrace, "request started", slog.String("client_ip", c.ClientIP()))

		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		attrs := []any{
			slog.Int("status", status),
			slog.Duration("latency", time.Since(start)),
			slog.Int("bytes", c.Writer.Size()),
		}
		if route := c.FullPath(); route != "" {
			attrs = append(attrs, slog.String("route", route))
		}
		if len(c.Errors) > 0 {
			attrs = append(attrs, slog.String("errors", c.Errors.String()))
		}

		log.Log(ctx, statusLevel(status), "request completed", attrs...)
	}
}

func statusLevel(status int) slog.Level {
	switch {
	case status >= http.StatusInternalServerError:
		return slog.LevelError
	case status >= http.StatusBadRequest:
		return slog.LevelWarn
	default:
		return slog.LevelInfo
	}
}
