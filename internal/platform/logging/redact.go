package logging

import (
	"context"
	"log/slog"
	"regexp"

	"github.com/m-mizutani/masq"
)

// Credential-shaped values, masked whatever their key.
var valuePatterns = []*regexp.Regexp{
	regexp.MustCompile(`^eyJ[A-Za-z0-9_-]*\.eyJ[A-Za-z0-9_-]*\.[A-Za-z0-9_-]*$`), // JWT
	regexp.MustCompile(`(?i)^bearer\s+.+$`),
	regexp.MustCompile(`(?i)^basic\s+.+$`),
}

// Keys whose values never reach a log line. Character names, images, ids
// and vote counts are not on it.
var secretKeys = []string{
	"password", "secret", "token", "credential", "credentials",
	"apiKey", "apikey", "api_key",
	"accessToken", "access_token", "refreshToken", "refresh_token",
	"authorization", "auth", "bearer", "cookie", "session",
	"privateKey", "private_key", "secretKey", "secret_key",
}

var secretPrefixes = []string{"secret", "private"}

// DefaultRedactOptions returns the masq options applied to every handler.
func DefaultRedactOptions() []masq.Option {
	opts := make([]masq.Option, 0, len(secretKeys)+len(secretPrefixes)+len(valuePatterns))

	for _, key := range secretKeys {
		opts = append(opts, masq.WithFieldName(key))
	}

	for _, prefix := range secretPrefixes {
		opts = append(opts, masq.WithFieldPrefix(prefix))
	}

	for _, pattern := range valuePatterns {
		opts = append(opts, masq.WithRegex(pattern))
	}

	return opts
}

// NewReplaceAttr builds a slog ReplaceAttr hook from the default options
// plus any extra ones.
func NewReplaceAttr(opts ...masq.Option) func(groups []string, a slog.Attr) slog.Attr {
	allOpts := append(DefaultRedactOptions(), opts...)
	return masq.New(allOpts...)
}

// redactingHandler applies a ReplaceAttr function in front of a handler that
// has no hook of its own.
type redactingHandler struct {
	next    slog.Handler
	replace func(groups []string, a slog.Attr) slog.Attr
	groups  []string
}

func (h *redactingHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

func (h *redactingHandler) Handle(ctx context.Context, r slog.Record) error { //nolint:gocritic // slog.Handler interface requires value
	out := slog.NewRecord(r.Time, r.Level, r.Message, r.PC)
	r.Attrs(func(a slog.Attr) bool {
		out.AddAttrs(h.replace(h.groups, a))
		return true
	})

	return h.next.Handle(ctx, out)
}

func (h *redactingHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	replaced := make([]slog.Attr, len(attrs))
	for i, a := range attrs {
		replaced[i] = h.replace(h.groups, a)
	}

	return &redactingHandler{next: h.next.WithAttrs(replaced), replace: h.replace, groups: h.groups}
}

func (h *redactingHandler) WithGroup(name string) slog.Handler {
	groups := append(append([]string(nil), h.groups...), name)

	return &redactingHandler{next: h.next.WithGroup(name), replace: h.replace, groups: groups}
}
