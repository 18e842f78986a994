// Package flags provides a FeatureFlags adapter backed by configuration.
//
// Flags are read once at startup from the features section. Set allows a
// flag to be flipped at runtime, which tests use to exercise both paths.
package flags

import (
	"context"
	"sync"

	"github.com/jsamuelsen/character-votes/internal/platform/config"
	"github.com/jsamuelsen/character-votes/internal/ports"
)

// Static is a FeatureFlags implementation over an in-memory map.
type Static struct {
	mu    sync.RWMutex
	flags map[string]bool
}

var _ ports.FeatureFlags = (*Static)(nil)

// NewStatic creates flags from explicit values.
func NewStatic(values map[string]bool) *Static {
	flags := make(map[string]bool, len(values))
	for k, v := range values {
		flags[k] = v
	}

	return &Static{flags: flags}
}

// FromConfig maps the features section onto flag names.
func FromConfig(cfg *config.FeaturesConfig) *Static {
	return NewStatic(map[string]bool{
		ports.FlagCharacterCreation: cfg.CharacterCreation,
	})
}

// IsEnabled returns the configured value, or defaultValue for unknown flags.
func (s *Static) IsEnabled(_ context.Context, flag string, defaultValue bool) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.flags[flag]
	if !ok {
		return defaultValue
	}

	return v
}

// Set overrides a flag.
func (s *Static) Set(flag string, enabled bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.flags[flag] = enabled
}
