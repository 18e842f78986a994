package logging

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	assert.NotNil(t, New(&Config{Level: "info", Format: "json"}))
}

func TestNewWithWriter_JSONCarriesServiceAttrs(t *testing.T) {
	var buf bytes.Buffer

	logger := NewWithWriter(&Config{Level: "info", Format: "json", Service: "character-votes", Version: "1.4.0"}, &buf)
	logger.Info("board loaded", slog.Int("characters", 3))

	record := onlyLine(t, &buf)
	assert.Equal(t, "board loaded", record["msg"])
	assert.Equal(t, "character-votes", record["service_name"])
	assert.Equal(t, "1.4.0", record["service_version"])
	assert.InDelta(t, 3, record["characters"], 0)
}

func TestNewWithWriter_Formats(t *testing.T) {
	tests := []struct {
		format string
		level  string
		log    func(*slog.Logger)
		want   []string
	}{
		{
			format: "text",
			level:  "debug",
			log:    func(l *slog.Logger) { l.Debug("selection changed", slog.String("character_id", "3")) },
			want:   []string{"selection changed", "character_id=3", "service_name=cv"},
		},
		{
			format: "pretty",
			level:  "info",
			log:    func(l *slog.Logger) { l.Info("vote recorded", slog.Int("votes", 7)) },
			want:   []string{"vote recorded", "votes", "7"},
		},
		{
			format: "PRETTY",
			level:  "warn",
			log:    func(l *slog.Logger) { l.Warn("push refused") },
			want:   []string{"push refused"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			var buf bytes.Buffer
			tt.log(NewWithWriter(&Config{Level: tt.level, Format: tt.format, Service: "cv"}, &buf))

			for _, want := range tt.want {
				assert.Contains(t, buf.String(), want)
			}
		})
	}
}

func TestNewWithWriter_UnknownFormatIsJSON(t *testing.T) {
	var buf bytes.Buffer

	NewWithWriter(&Config{Level: "info", Format: "logfmt"}, &buf).Info("fallback")

	assert.Equal(t, "fallback", onlyLine(t, &buf)["msg"])
}

func TestNewWithWriter_LevelFilters(t *testing.T) {
	var buf bytes.Buffer

	logger := NewWithWriter(&Config{Level: "warn", Format: "json"}, &buf)
	logger.Info("dropped")
	logger.Warn("kept")

	assert.Equal(t, "kept", onlyLine(t, &buf)["msg"])
}

func TestNewWithWriter_PrettyRedacts(t *testing.T) {
	var buf bytes.Buffer

	logger := NewWithWriter(&Config{Level: "info", Format: "pretty", Service: "cv"}, &buf)
	logger.With(slog.String("token", "abc-secret")).
		WithGroup("backend").
		Info("pushing votes", slog.String("password", "hunter2"), slog.String("url", "https://characters.example.com"))

	out := buf.String()
	assert.Contains(t, out, "pushing votes")
	assert.Contains(t, out, "https://characters.example.com")
	assert.NotContains(t, out, "abc-secret")
	assert.NotContains(t, out, "hunter2")
}

func TestNewWithWriter_RollingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "votes.log")

	var terminal bytes.Buffer

	logger := NewWithWriter(&Config{
		Level:  "info",
		Format: "pretty",
		File: FileConfig{
			Enabled:    true,
			Path:       path,
			MaxSizeMB:  1,
			MaxBackups: 2,
			MaxAgeDays: 1,
		},
	}, &terminal)

	logger.Info("character created", slog.String("name", "Lady Bird"), slog.String("secret_key", "s3"))

	assert.Contains(t, terminal.String(), "character created")

	content, err := os.ReadFile(path)
	require.NoError(t, err)

	record := onlyLine(t, bytes.NewBuffer(content))
	assert.Equal(t, "character created", record["msg"])
	assert.Equal(t, "Lady Bird", record["name"])
	assert.NotContains(t, string(content), `"s3"`)
}

func TestNewWithWriter_FileNeedsPath(t *testing.T) {
	var buf bytes.Buffer

	logger := NewWithWriter(&Config{Level: "info", Format: "json", File: FileConfig{Enabled: true}}, &buf)

	_, fanned := logger.Handler().(*MultiHandler)
	assert.False(t, fanned)
}

func TestTrace(t *testing.T) {
	tests := []struct {
		level   string
		visible bool
	}{
		{"trace", true},
		{"debug", false},
		{"info", false},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			var buf bytes.Buffer

			ctx := WithContext(context.Background(), NewWithWriter(&Config{Level: tt.level, Format: "json"}, &buf))
			Trace(ctx, "backend payload", slog.Int("bytes", 42))

			if tt.visible {
				assert.Equal(t, "backend payload", onlyLine(t, &buf)["msg"])
			} else {
				assert.Empty(t, buf.String())
			}
		})
	}
}

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"trace":   LevelTrace,
		"debug":   slog.LevelDebug,
		"DEBUG":   slog.LevelDebug,
		"info":    slog.LevelInfo,
		"warn":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		"Error":   slog.LevelError,
		"":        slog.LevelInfo,
		"chatty":  slog.LevelInfo,
	}

	for input, want := range tests {
		t.Run(input, func(t *testing.T) {
			assert.Equal(t, want, parseLevel(input))
		})
	}
}

func TestSlogToCharmLevel(t *testing.T) {
	tests := []struct {
		in   slog.Level
		want log.Level
	}{
		{slog.Level(-12), log.DebugLevel},
		{LevelTrace, log.DebugLevel},
		{slog.LevelDebug, log.DebugLevel},
		{slog.LevelInfo, log.InfoLevel},
		{slog.LevelInfo + 2, log.InfoLevel},
		{slog.LevelWarn, log.WarnLevel},
		{slog.LevelError, log.ErrorLevel},
		{slog.Level(12), log.ErrorLevel},
	}

	for _, tt := range tests {
		t.Run(tt.in.String(), func(t *testing.T) {
			assert.Equal(t, tt.want, slogToCharmLevel(tt.in))
		})
	}
}
