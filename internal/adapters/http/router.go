package http

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jsamuelsen/character-votes/internal/adapters/http/handlers"
	"github.com/jsamuelsen/character-votes/internal/adapters/http/middleware"
	"github.com/jsamuelsen/character-votes/internal/platform/config"
	"github.com/jsamuelsen/character-votes/internal/platform/telemetry"
)

// DefaultRequestTimeout bounds page and API requests, including the
// backend calls they make.
const DefaultRequestTimeout = 30 * time.Second

// RouterConfig wires the handlers into SetupRouter. Nil handlers leave
// their routes out.
type RouterConfig struct {
	Logger    *slog.Logger
	AppConfig *config.AppConfig

	HealthHandler *handlers.HealthHandler
	BoardHandler  *handlers.BoardHandler
	PageHandler   *handlers.PageHandler

	// Timeout is the request deadline for page and API routes. Zero
	// disables it.
	Timeout time.Duration
}

// SetupRouter mounts the middleware chain and every route. Middleware runs
// in this order:
//  1. Recovery
//  2. Request ID
//  3. Correlation ID
//  4. OpenTelemetry tracing, then request metrics and the trace id
//  5. Logging (skips /-/ paths)
//
// Routes:
//   - /-/      health, build info and metrics, no deadline
//   - /        the HTML board
//   - /api/v1/ the JSON board API
func SetupRouter(engine *gin.Engine, cfg RouterConfig) {
	engine.Use(
		middleware.Recovery(cfg.Logger),
		middleware.RequestID(),
		middleware.CorrelationID(),
		telemetry.TracingMiddleware(cfg.AppConfig.Name),
		telemetry.Middleware(),
		middleware.Logging(cfg.Logger, "/favicon.ico"),
	)

	if cfg.HealthHandler != nil {
		cfg.HealthHandler.RegisterHealthRoutesOnEngine(engine)
	}

	site := engine.Group("")
	if cfg.Timeout > 0 {
		site.Use(middleware.Timeout(cfg.Timeout))
	}

	if cfg.PageHandler != nil {
		engine.SetHTMLTemplate(handlers.Templates())
		cfg.PageHandler.RegisterPageRoutes(site)
	}

	if cfg.BoardHandler != nil {
		cfg.BoardHandler.RegisterBoardRoutes(site.Group("/api/v1"))
	}

	engine.NoRoute(routeNotFound)
}

// NewDefaultRouterConfig applies DefaultRequestTimeout.
func NewDefaultRouterConfig(
	logger *slog.Logger,
	appCfg *config.AppConfig,
	healthHandler *handlers.HealthHandler,
	boardHandler *handlers.BoardHandler,
	pageHandler *handlers.PageHandler,
) RouterConfig {
	return RouterConfig{
		Logger:        logger,
		AppConfig:     appCfg,
		HealthHandler: healthHandler,
		BoardHandler:  boardHandler,
		PageHandler:   pageHandler,
		Timeout:       DefaultRequestTimeout,
	}
}
