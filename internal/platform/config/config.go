// Package config loads the service configuration with koanf and checks it
// with validator.
package config

import "time"

const (
	DefaultServerPort     = 8080
	DefaultMaxRequestSize = 1 << 20

	DefaultClientRetryMaxAttempts     = 3
	DefaultClientRetryMultiplier      = 2.0
	DefaultClientRetryJitterFactor    = 0.25
	DefaultClientCircuitMaxFailures   = 5
	DefaultClientCircuitHalfOpenLimit = 3

	DefaultTransportMaxIdleConns        = 100
	DefaultTransportMaxIdleConnsPerHost = 10

	DefaultLogFileMaxSizeMB  = 100
	DefaultLogFileMaxBackups = 3
	DefaultLogFileMaxAgeDays = 28

	DefaultCharactersBaseURL = "http://localhost:3000"
)

// Config is the service configuration. Keys are shown in koanf form
// (server.read_timeout); APP_SERVER_READ_TIMEOUT sets the same key.
type Config struct {
	App       AppConfig       `koanf:"app"       validate:"required"`
	Server    ServerConfig    `koanf:"server"    validate:"required"`
	Log       LogConfig       `koanf:"log"       validate:"required"`
	Telemetry TelemetryConfig `koanf:"telemetry"`
	Client    ClientConfig    `koanf:"client"    validate:"required"`
	Services  ServicesConfig  `koanf:"services"  validate:"required"`
	Features  FeaturesConfig  `koanf:"features"`
}

type AppConfig struct {
	Name        string `koanf:"name"        validate:"required"`
	Version     string `koanf:"version"     validate:"required"`
	Environment string `koanf:"environment" validate:"required,oneof=local dev qa prod test"`
}

type ServerConfig struct {
	Port            int           `koanf:"port"             validate:"required,min=1,max=65535"`
	Host            string        `koanf:"host"             validate:"required"`
	ReadTimeout     time.Duration `koanf:"read_timeout"     validate:"required,min=1s"`
	WriteTimeout    time.Duration `koanf:"write_timeout"    validate:"required,min=1s"`
	IdleTimeout     time.Duration `koanf:"idle_timeout"     validate:"required,min=1s"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout" validate:"required,min=1s"`
	MaxRequestSize  int64         `koanf:"max_request_size" validate:"required,min=1"`
}

type LogConfig struct {
	Level  string        `koanf:"level"  validate:"required,oneof=trace debug info warn error"`
	Format string        `koanf:"format" validate:"required,oneof=json text pretty"`
	File   LogFileConfig `koanf:"file"`
}

// LogFileConfig configures the lumberjack rolling file. Sizes are in MB,
// ages in days.
type LogFileConfig struct {
	Enabled    bool   `koanf:"enabled"`
	Path       string `koanf:"path"        validate:"required_if=Enabled true"`
	MaxSizeMB  int    `koanf:"max_size"    validate:"omitempty,min=1,max=1024"`
	MaxBackups int    `koanf:"max_backups" validate:"omitempty,min=0,max=100"`
	MaxAgeDays int    `koanf:"max_age"     validate:"omitempty,min=0,max=365"`
	Compress   bool   `koanf:"compress"`
}

// TelemetryConfig configures OTLP export of traces and metrics.
type TelemetryConfig struct {
	Enabled      bool    `koanf:"enabled"`
	Endpoint     string  `koanf:"endpoint"      validate:"required_if=Enabled true,omitempty,url"`
	Protocol     string  `koanf:"protocol"      validate:"omitempty,oneof=grpc http"`
	ServiceName  string  `koanf:"service_name"  validate:"required_if=Enabled true"`
	SamplingRate float64 `koanf:"sampling_rate" validate:"min=0,max=1"`
}

// ClientConfig tunes the characters backend client.
type ClientConfig struct {
	Timeout        time.Duration        `koanf:"timeout"         validate:"required,min=100ms"`
	Retry          RetryConfig          `koanf:"retry"           validate:"required"`
	CircuitBreaker CircuitBreakerConfig `koanf:"circuit_breaker" validate:"required"`
	Transport      TransportConfig      `koanf:"transport"       validate:"required"`
}

type RetryConfig struct {
	MaxAttempts     int           `koanf:"max_attempts"     validate:"required,min=1,max=10"`
	InitialInterval time.Duration `koanf:"initial_interval" validate:"required,min=10ms"`
	MaxInterval     time.Duration `koanf:"max_interval"     validate:"required,min=100ms"`
	Multiplier      float64       `koanf:"multiplier"       validate:"required,min=1.1,max=10"`
	JitterFactor    float64       `koanf:"jitter_factor"    validate:"min=0,max=1"`
}

// CircuitBreakerConfig: MaxFailures consecutive failures open the circuit
// for Timeout; HalfOpenLimit successful probes close it again.
type CircuitBreakerConfig struct {
	MaxFailures   int           `koanf:"max_failures"    validate:"required,min=1"`
	Timeout       time.Duration `koanf:"timeout"         validate:"required,min=1s"`
	HalfOpenLimit int           `koanf:"half_open_limit" validate:"required,min=1"`
}

type TransportConfig struct {
	MaxIdleConns        int           `koanf:"max_idle_conns"          validate:"required,min=1"`
	MaxIdleConnsPerHost int           `koanf:"max_idle_conns_per_host" validate:"required,min=1"`
	IdleConnTimeout     time.Duration `koanf:"idle_conn_timeout"       validate:"required,min=1s"`
}

type ServicesConfig struct {
	Characters ServiceEndpointConfig `koanf:"characters" validate:"required"`
}

type ServiceEndpointConfig struct {
	BaseURL string `koanf:"base_url" validate:"required,url"`
	Name    string `koanf:"name"     validate:"required"`
}

// FeaturesConfig seeds the static feature flags.
type FeaturesConfig struct {
	CharacterCreation bool `koanf:"character_creation"`
}

// defaults is the bottom layer under the YAML files and the environment.
func defaults() map[string]any {
	return map[string]any{
		"app": map[string]any{
			"name":        "character-votes",
			"version":     "dev",
			"environment": "local",
		},
		"server": map[string]any{
			"port":             DefaultServerPort,
			"host":             "0.0.0.0",
			"read_timeout":     "30s",
			"write_timeout":    "30s",
			"idle_timeout":     "120s",
			"shutdown_timeout": "10s",
			"max_request_size": DefaultMaxRequestSize,
		},
		"log": map[string]any{
			"level":  "info",
			"format": "json",
			"file": map[string]any{
				"enabled":     false,
				"path":        "./logs/app.log",
				"max_size":    DefaultLogFileMaxSizeMB,
				"max_backups": DefaultLogFileMaxBackups,
				"max_age":     DefaultLogFileMaxAgeDays,
				"compress":    true,
			},
		},
		"telemetry": map[string]any{
			"enabled":       false,
			"protocol":      "grpc",
			"service_name":  "character-votes",
			"sampling_rate": 1.0,
		},
		"client": map[string]any{
			"timeout": "30s",
			"retry": map[string]any{
				"max_attempts":     DefaultClientRetryMaxAttempts,
				"initial_interval": "100ms",
				"max_interval":     "5s",
				"multiplier":       DefaultClientRetryMultiplier,
				"jitter_factor":    DefaultClientRetryJitterFactor,
			},
			"circuit_breaker": map[string]any{
				"max_failures":    DefaultClientCircuitMaxFailures,
				"timeout":         "30s",
				"half_open_limit": DefaultClientCircuitHalfOpenLimit,
			},
			"transport": map[string]any{
				"max_idle_conns":          DefaultTransportMaxIdleConns,
				"max_idle_conns_per_host": DefaultTransportMaxIdleConnsPerHost,
				"idle_conn_timeout":       "90s",
			},
		},
		"services": map[string]any{
			"characters": map[string]any{
				"base_url": DefaultCharactersBaseURL,
				"name":     "characters-backend",
			},
		},
		"features": map[string]any{
			"character_creation": true,
		},
	}
}
