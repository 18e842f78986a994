// Package main runs the character votes service: the HTML board, its JSON
// API and the probes, backed by a remote characters store.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	nethttp "net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/jsamuelsen/character-votes/internal/adapters/clients"
	"github.com/jsamuelsen/character-votes/internal/adapters/clients/acl"
	"github.com/jsamuelsen/character-votes/internal/adapters/flags"
	"github.com/jsamuelsen/character-votes/internal/adapters/http"
	"github.com/jsamuelsen/character-votes/internal/adapters/http/handlers"
	"github.com/jsamuelsen/character-votes/internal/app"
	"github.com/jsamuelsen/character-votes/internal/platform/config"
	"github.com/jsamuelsen/character-votes/internal/platform/logging"
	"github.com/jsamuelsen/character-votes/internal/platform/telemetry"
	"github.com/jsamuelsen/character-votes/internal/ports"
)

// Set with -ldflags "-X main.Version=... -X main.Commit=... -X main.BuildTime=...".
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// run serves until ctx is cancelled or the listener fails.
func run(ctx context.Context) error {
	profile := os.Getenv("APP_ENVIRONMENT")
	if profile == "" {
		profile = "local"
	}

	cfg, err := config.Load(profile)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	logger := newLogger(cfg)
	logging.SetDefault(logger)

	logger.Info("starting service",
		slog.String("version", Version),
		slog.String("commit", Commit),
		slog.String("environment", cfg.App.Environment),
		slog.String("characters_backend", cfg.Services.Characters.BaseURL),
	)

	tel, err := telemetry.New(ctx, &telemetry.Config{
		Enabled:      cfg.Telemetry.Enabled,
		Endpoint:     cfg.Telemetry.Endpoint,
		Protocol:     cfg.Telemetry.Protocol,
		ServiceName:  cfg.Telemetry.ServiceName,
		Version:      cfg.App.Version,
		Environment:  cfg.App.Environment,
		SamplingRate: cfg.Telemetry.SamplingRate,
	})
	if err != nil {
		return fmt.Errorf("initializing telemetry: %w", err)
	}
	defer func() {
		// ctx is already cancelled on the way out.
		if err := tel.Shutdown(context.WithoutCancel(ctx)); err != nil {
			logger.Error("telemetry shutdown failed", slog.Any("error", err))
		}
	}()

	registry := ports.NewHealthRegistry()

	board, err := newBoard(ctx, cfg, logger, registry)
	if err != nil {
		return err
	}

	server := http.New(&cfg.Server, logger)
	http.SetupRouter(server.Engine(), http.NewDefaultRouterConfig(
		logger,
		&cfg.App,
		handlers.NewHealthHandler(registry, handlers.NewBuildInfo(Version, Commit, BuildTime)),
		handlers.NewBoardHandler(board),
		handlers.NewPageHandler(board, logger),
	))

	return serve(ctx, logger, server, cfg.Server)
}

func newLogger(cfg *config.Config) *slog.Logger {
	f := cfg.Log.File

	return logging.New(&logging.Config{
		Level:   cfg.Log.Level,
		Format:  cfg.Log.Format,
		Service: cfg.App.Name,
		Version: cfg.App.Version,
		File: logging.FileConfig{
			Enabled:    f.Enabled,
			Path:       f.Path,
			MaxSizeMB:  f.MaxSizeMB,
			MaxBackups: f.MaxBackups,
			MaxAgeDays: f.MaxAgeDays,
			Compress:   f.Compress,
		},
	})
}

// newBoard wires the characters backend client into a board and registers
// the backend with the readiness checks. A failed first load is only
// logged: the page reloads on every visit.
func newBoard(ctx context.Context, cfg *config.Config, logger *slog.Logger, registry ports.HealthRegistry) (*app.Board, error) {
	backend := cfg.Services.Characters

	client, err := clients.New(&clients.Config{
		BaseURL:     backend.BaseURL,
		ServiceName: backend.Name,
		Timeout:     cfg.Client.Timeout,
		Retry:       cfg.Client.Retry,
		Circuit:     cfg.Client.CircuitBreaker,
		Transport:   cfg.Client.Transport,
		Headers:     nethttp.Header{"Accept": []string{"application/json"}},
		Logger:      logger,
	})
	if err != nil {
		return nil, fmt.Errorf("creating %s client: %w", backend.Name, err)
	}

	characters := acl.NewCharacterClient(client)
	if err := registry.Register(characters); err != nil {
		return nil, fmt.Errorf("registering %s health check: %w", backend.Name, err)
	}

	board, err := app.NewBoard(app.BoardConfig{
		Backend: characters,
		Flags:   flags.FromConfig(&cfg.Features),
		Logger:  logger,
	})
	if err != nil {
		return nil, fmt.Errorf("creating board: %w", err)
	}

	if _, err := board.Load(ctx); err != nil {
		logger.Warn("initial character load failed", slog.Any("error", err))
	}

	return board, nil
}

// serve runs server until ctx is done, then drains it within
// cfg.ShutdownTimeout.
func serve(ctx context.Context, logger *slog.Logger, server *http.Server, cfg config.ServerConfig) error {
	errs := server.Start()

	select {
	case err, ok := <-errs:
		if ok && err != nil {
			return err
		}
		return errors.New("http server stopped unexpectedly")
	case <-ctx.Done():
		logger.Info("shutdown requested", slog.Duration("timeout", cfg.ShutdownTimeout))
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cfg.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return err
	}

	logger.Info("shutdown complete")

	return nil
}
