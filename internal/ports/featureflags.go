package ports

import "context"

// Feature flag names.
const (
	// FlagCharacterCreation enables the optional character creation path.
	FlagCharacterCreation = "character-creation"
)

// FeatureFlags answers whether optional behaviour is switched on.
// Unknown flags evaluate to defaultValue.
type FeatureFlags interface {
	IsEnabled(ctx context.Context, flag string, defaultValue bool) bool
}
