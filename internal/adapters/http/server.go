// Package http is the inbound HTTP adapter: the gin server, the middleware
// chain and the routes for the board page, the JSON API and the probes.
package http

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/jsamuelsen/character-votes/internal/platform/config"
)

// Server owns the gin engine and the http.Server listening for it.
type Server struct {
	cfg        *config.ServerConfig
	engine     *gin.Engine
	httpServer *http.Server
	logger     *slog.Logger
}

// New builds a server from cfg. Bodies above cfg.MaxRequestSize are refused
// before any handler reads them.
func New(cfg *config.ServerConfig, logger *slog.Logger) *Server {
	gin.SetMode(gin.ReleaseMode)

	engine := gin.New()
	engine.Use(maxBodySize(cfg.MaxRequestSize))

	return &Server{
		cfg:    cfg,
		engine: engine,
		logger: logger,
		httpServer: &http.Server{
			Addr:         net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port)),
			Handler:      engine,
			ReadTimeout:  cfg.ReadTimeout,
			WriteTimeout: cfg.WriteTimeout,
			IdleTimeout:  cfg.IdleTimeout,
		},
	}
}

func (s *Server) Engine() *gin.Engine         { return s.engine }
func (s *Server) Config() *config.ServerConfig { return s.cfg }
func (s *Server) Addr() string                 { return s.httpServer.Addr }

// Start listens in a goroutine. A listen failure is sent on the returned
// channel, which closes once the server has stopped.
func (s *Server) Start() <-chan error {
	errs := make(chan error, 1)

	go func() {
		defer close(errs)

		s.logger.Info("http server listening",
			slog.String("addr", s.Addr()),
			slog.Duration("read_timeout", s.cfg.ReadTimeout),
			slog.Duration("write_timeout", s.cfg.WriteTimeout),
			slog.Int64("max_request_size", s.cfg.MaxRequestSize),
		)

		if err := s.httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			errs <- fmt.Errorf("http server error: %w", err)
		}
	}()

	return errs
}

// Shutdown drains in-flight requests until ctx expires.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("http server draining")

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("http server shutdown: %w", err)
	}

	s.logger.Info("http server stopped")

	return nil
}

// maxBodySize caps request bodies; zero disables the cap.
func maxBodySize(limit int64) gin.HandlerFunc {
	if limit <= 0 {
		return func(c *gin.Context) { c.Next() }
	}

	return func(c *gin.Context) {
		if c.Request.Body != nil {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)
		}
		c.Next()
	}
}
