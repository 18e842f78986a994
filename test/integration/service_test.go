//go:build integration

package integration

import (
	"io"
	"log/slog"
	nethttp "net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/jsamuelsen/character-votes/internal/adapters/clients"
	"github.com/jsamuelsen/character-votes/internal/adapters/clients/acl"
	"github.com/jsamuelsen/character-votes/internal/adapters/flags"
	"github.com/jsamuelsen/character-votes/internal/adapters/http"
	"github.com/jsamuelsen/character-votes/internal/adapters/http/handlers"
	"github.com/jsamuelsen/character-votes/internal/app"
	"github.com/jsamuelsen/character-votes/internal/platform/config"
	"github.com/jsamuelsen/character-votes/internal/platform/logging"
	"github.com/jsamuelsen/character-votes/internal/ports"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// service is the whole application wired the way cmd/service does it, in
// front of a fake characters backend.
type service struct {
	*httptest.Server

	backend *fakeBackend
	board   *app.Board
	client  *clients.Client
}

func quietLogger() *slog.Logger {
	return logging.NewWithWriter(&logging.Config{Level: "error", Format: "json", Service: "character-votes"}, io.Discard)
}

// testClientConfig keeps retries and the circuit breaker fast.
func testClientConfig(baseURL string) *clients.Config {
	return &clients.Config{
		BaseURL:     baseURL,
		ServiceName: "characters-backend",
		Timeout:     2 * time.Second,
		Retry: config.RetryConfig{
			MaxAttempts:     3,
			InitialInterval: 10 * time.Millisecond,
			MaxInterval:     50 * time.Millisecond,
			Multiplier:      2.0,
		},
		Circuit: config.CircuitBreakerConfig{
			MaxFailures:   3,
			Timeout:       100 * time.Millisecond,
			HalfOpenLimit: 1,
		},
		Headers: nethttp.Header{"Accept": []string{"application/json"}},
		Logger:  quietLogger(),
	}
}

// newService wires the stack; the caller closes the returned server.
func newService(backend *fakeBackend, creation bool) (*service, error) {
	logger := quietLogger()

	client, err := clients.New(testClientConfig(backend.URL))
	if err != nil {
		return nil, err
	}

	characters := acl.NewCharacterClient(client)

	registry := ports.NewHealthRegistry()
	if err := registry.Register(characters); err != nil {
		return nil, err
	}

	board, err := app.NewBoard(app.BoardConfig{
		Backend: characters,
		Flags:   flags.FromConfig(&config.FeaturesConfig{CharacterCreation: creation}),
		Logger:  logger,
	})
	if err != nil {
		return nil, err
	}

	engine := gin.New()
	http.SetupRouter(engine, http.NewDefaultRouterConfig(
		logger,
		&config.AppConfig{Name: "character-votes", Version: "test", Environment: "test"},
		handlers.NewHealthHandler(registry, handlers.NewBuildInfo("test", "none", "now")),
		handlers.NewBoardHandler(board),
		handlers.NewPageHandler(board, logger),
	))

	return &service{
		Server:  httptest.NewServer(engine),
		backend: backend,
		board:   board,
		client:  client,
	}, nil
}

func startService(tb testing.TB, backend *fakeBackend, creation bool) *service {
	tb.Helper()

	svc, err := newService(backend, creation)
	require.NoError(tb, err)
	tb.Cleanup(svc.Close)

	return svc
}
