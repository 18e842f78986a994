package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// bare loads with no files and no dotenv, so only defaults and the
// environment apply.
func bare(t *testing.T) *Config {
	t.Helper()

	cfg, err := LoadWith(Options{})
	require.NoError(t, err)

	return cfg
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o600))
}

func TestLoadWith_Defaults(t *testing.T) {
	cfg := bare(t)

	assert.Equal(t, AppConfig{Name: "character-votes", Version: "dev", Environment: "local"}, cfg.App)
	assert.Equal(t, ServerConfig{
		Port:            DefaultServerPort,
		Host:            "0.0.0.0",
		ReadTimeout:     30 * time.Second,
		WriteTimeout:    30 * time.Second,
		IdleTimeout:     120 * time.Second,
		ShutdownTimeout: 10 * time.Second,
		MaxRequestSize:  DefaultMaxRequestSize,
	}, cfg.Server)
	assert.Equal(t, LogConfig{
		Level:  "info",
		Format: "json",
		File: LogFileConfig{
			Path:       "./logs/app.log",
			MaxSizeMB:  DefaultLogFileMaxSizeMB,
			MaxBackups: DefaultLogFileMaxBackups,
			MaxAgeDays: DefaultLogFileMaxAgeDays,
			Compress:   true,
		},
	}, cfg.Log)
	assert.Equal(t, TelemetryConfig{Protocol: "grpc", ServiceName: "character-votes", SamplingRate: 1}, cfg.Telemetry)
	assert.Equal(t, ClientConfig{
		Timeout: 30 * time.Second,
		Retry: RetryConfig{
			MaxAttempts:     DefaultClientRetryMaxAttempts,
			InitialInterval: 100 * time.Millisecond,
			MaxInterval:     5 * time.Second,
			Multiplier:      DefaultClientRetryMultiplier,
			JitterFactor:    DefaultClientRetryJitterFactor,
		},
		CircuitBreaker: CircuitBreakerConfig{
			MaxFailures:   DefaultClientCircuitMaxFailures,
			Timeout:       30 * time.Second,
			HalfOpenLimit: DefaultClientCircuitHalfOpenLimit,
		},
		Transport: TransportConfig{
			MaxIdleConns:        DefaultTransportMaxIdleConns,
			MaxIdleConnsPerHost: DefaultTransportMaxIdleConnsPerHost,
			IdleConnTimeout:     90 * time.Second,
		},
	}, cfg.Client)
	assert.Equal(t, ServiceEndpointConfig{BaseURL: DefaultCharactersBaseURL, Name: "characters-backend"}, cfg.Services.Characters)
	assert.True(t, cfg.Features.CharacterCreation)

	require.NoError(t, cfg.Validate())
}

func TestLoadWith_Layers(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "base.yaml", `
server:
  port: 8081
log:
  level: debug
services:
  characters:
    base_url: http://base:3000
`)
	writeFile(t, dir, "qa.yaml", `
app:
  environment: qa
log:
  level: warn
`)

	t.Setenv("APP_SERVER_PORT", "9090")

	cfg, err := LoadWith(Options{Profile: "qa", Dir: dir})
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port, "environment beats files")
	assert.Equal(t, "warn", cfg.Log.Level, "profile beats base")
	assert.Equal(t, "qa", cfg.App.Environment)
	assert.Equal(t, "http://base:3000", cfg.Services.Characters.BaseURL, "base beats defaults")
	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
}

func TestLoadWith_MissingFilesAreSkipped(t *testing.T) {
	cfg, err := LoadWith(Options{Profile: "nonexistent", Dir: t.TempDir(), DotEnv: filepath.Join(t.TempDir(), "missing.env")})
	require.NoError(t, err)

	assert.Equal(t, "character-votes", cfg.App.Name)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoadWith_BrokenYAML(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "base.yaml", "server: [port\n")

	_, err := LoadWith(Options{Dir: dir})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "base.yaml")
}

func TestLoadWith_Environment(t *testing.T) {
	t.Setenv("APP_SERVER_READ_TIMEOUT", "45s")
	t.Setenv("APP_CLIENT_CIRCUIT_BREAKER_MAX_FAILURES", "7")
	t.Setenv("APP_SERVICES_CHARACTERS_BASE_URL", "http://backend:3000")
	t.Setenv("APP_FEATURES_CHARACTER_CREATION", "false")
	t.Setenv("APP_TELEMETRY_ENABLED", "true")
	t.Setenv("APP_LOG_FILE_MAX_SIZE", "20")

	cfg := bare(t)

	assert.Equal(t, 45*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, 7, cfg.Client.CircuitBreaker.MaxFailures)
	assert.Equal(t, "http://backend:3000", cfg.Services.Characters.BaseURL)
	assert.False(t, cfg.Features.CharacterCreation)
	assert.True(t, cfg.Telemetry.Enabled)
	assert.Equal(t, 20, cfg.Log.File.MaxSizeMB)
}

func TestLoadWith_DotEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	writeFile(t, filepath.Dir(path), ".env", "APP_LOG_LEVEL=debug\nAPP_SERVER_PORT=7070\n")

	// A variable set in the process is not overridden by the file.
	t.Setenv("APP_SERVER_PORT", "9191")
	// godotenv sets APP_LOG_LEVEL for the process; Setenv restores it after.
	t.Setenv("APP_LOG_LEVEL", "")
	require.NoError(t, os.Unsetenv("APP_LOG_LEVEL"))

	cfg, err := LoadWith(Options{DotEnv: path})
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, 9191, cfg.Server.Port)
}

func TestLoad_ShippedProfiles(t *testing.T) {
	for _, profile := range []string{"", "local", "prod"} {
		t.Run("profile "+profile, func(t *testing.T) {
			cfg, err := LoadWith(Options{Profile: profile, Dir: filepath.Join("..", "..", "..", DefaultConfigDir)})
			require.NoError(t, err)

			assert.NoError(t, cfg.Validate())
		})
	}
}

func TestEnvKey(t *testing.T) {
	tests := map[string]string{
		"APP_SERVER_PORT":                              "server.port",
		"APP_SERVER_SHUTDOWN_TIMEOUT":                  "server.shutdown_timeout",
		"APP_LOG_FORMAT":                               "log.format",
		"APP_LOG_FILE":                                 "log.file",
		"APP_LOG_FILE_MAX_SIZE":                        "log.file.max_size",
		"APP_CLIENT_TIMEOUT":                           "client.timeout",
		"APP_CLIENT_RETRY_JITTER_FACTOR":               "client.retry.jitter_factor",
		"APP_CLIENT_TRANSPORT_MAX_IDLE_CONNS_PER_HOST": "client.transport.max_idle_conns_per_host",
		"APP_TELEMETRY_SAMPLING_RATE":                  "telemetry.sampling_rate",
		"APP_SERVICES_CHARACTERS_NAME":                 "services.characters.name",
		"APP_FEATURES_CHARACTER_CREATION":              "features.character_creation",
		"APP_DEBUG":                                    "debug",
	}

	for in, want := range tests {
		t.Run(in, func(t *testing.T) {
			assert.Equal(t, want, envKey(in))
		})
	}
}
