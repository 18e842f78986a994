package middleware

import (
	"io"
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"

	"github.com/jsamuelsen/character-votes/internal/adapters/http/dto"
	"github.com/jsamuelsen/character-votes/internal/platform/logging"
)

// Recovery turns a handler panic into a 500 envelope and an error log with
// the stack. gin's own writer is discarded; broken pipes are left to gin.
// Mount it first.
func Recovery(logger *slog.Logger) gin.HandlerFunc {
	return gin.CustomRecoveryWithWriter(io.Discard, func(c *gin.Context, recovered any) {
		traceID := dto.GetTraceID(c)

		ctx := c.Request.Context()
		logging.FromContextOr(ctx, logger).ErrorContext(ctx, "panic recovered",
			slog.Any("error", recovered),
			slog.String("method", c.Request.Method),
			slog.String("path", c.Request.URL.Path),
			slog.String(logging.KeyTraceID, traceID),
			slog.String("stack", string(debug.Stack())),
		)

		// Headers are gone once the handler wrote; keep what the client has.
		if c.Writer.Written() {
			c.Abort()
			return
		}

		c.AbortWithStatusJSON(http.StatusInternalServerError,
			dto.NewErrorResponse(dto.ErrorCodeInternal, dto.InternalErrorMessage).WithTraceID(traceID))
	})
}
