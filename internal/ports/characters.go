// Package ports defines the contracts the application layer depends on.
// Adapters implement them; the app package never sees wire formats.
package ports

import (
	"context"

	"github.com/jsamuelsen/character-votes/internal/domain"
)

// CharacterBackend is the REST backend that owns character records.
//
// Implementations return domain errors: domain.ErrUnavailable when the
// backend cannot be reached or answers with an unusable body,
// domain.ErrNotFound for unknown ids.
type CharacterBackend interface {
	// List returns every character in backend order.
	List(ctx context.Context) ([]domain.Character, error)

	// UpdateVotes sends a partial update of the vote count and returns
	// the record as stored by the backend.
	UpdateVotes(ctx context.Context, id string, votes int) (*domain.Character, error)

	// Create submits a new record and returns it with its assigned id.
	Create(ctx context.Context, c domain.Character) (*domain.Character, error)
}
