// Package app holds the character board: the one piece of state the UI and
// the JSON API share, and the use cases that mutate it.
package app

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/jsamuelsen/character-votes/internal/domain"
	"github.com/jsamuelsen/character-votes/internal/ports"
)

const instrumentationName = "github.com/jsamuelsen/character-votes/internal/app"

// noSelection marks the board as having no current character.
const noSelection = -1

// SyncResult reports whether a local change reached the backend.
type SyncResult struct {
	Synced bool   `json:"synced"`
	Error  string `json:"error,omitempty"`
}

// Outcome is the result of a mutation: the character as it now stands
// locally, and how the backend push went.
type Outcome struct {
	Character domain.Character `json:"character"`
	Sync      SyncResult       `json:"sync"`
}

// Snapshot is a copy of the board. Callers may keep it; it never aliases the
// board's own records.
type Snapshot struct {
	Characters []domain.Character
	Current    *domain.Character
	Loaded     bool
}

// BoardConfig wires a Board.
type BoardConfig struct {
	Backend  ports.CharacterBackend
	Flags    ports.FeatureFlags
	Executor *Executor
	Logger   *slog.Logger
}

// Board holds the character listing and the current selection.
//
// The current selection is an index into the listing, so votes cast on a
// character are still there when it is selected again. All methods are safe
// for concurrent use; the lock is released before any backend call, so pushes
// from concurrent votes may reach the backend in either order.
type Board struct {
	backend ports.CharacterBackend
	flags   ports.FeatureFlags
	exec    *Executor
	logger  *slog.Logger

	mu         sync.Mutex
	characters []domain.Character
	current    int
	loaded     bool

	mutations    metric.Int64Counter
	syncFailures metric.Int64Counter
}

// NewBoard creates an empty board. Backend is required.
func NewBoard(cfg BoardConfig) (*Board, error) {
	if cfg.Backend == nil {
		return nil, errors.New("board: backend is required")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	exec := cfg.Executor
	if exec == nil {
		exec = NewExecutor(logger)
	}

	meter := otel.Meter(instrumentationName)

	mutations, err := meter.Int64Counter("board.mutations",
		metric.WithDescription("Vote, reset and create operations applied to the board"))
	if err != nil {
		return nil, err
	}

	syncFailures, err := meter.Int64Counter("board.sync.failures",
		metric.WithDescription("Local changes the backend did not accept"))
	if err != nil {
		return nil, err
	}

	return &Board{
		backend:      cfg.Backend,
		flags:        cfg.Flags,
		exec:         exec,
		logger:       logger.With(slog.String("component", "app.Board")),
		current:      noSelection,
		mutations:    mutations,
		syncFailures: syncFailures,
	}, nil
}

// Load fetches the listing from the backend and selects its first record.
// An empty listing clears the selection. On failure the board is unchanged.
func (b *Board) Load(ctx context.Context) (*Snapshot, error) {
	characters, err := b.backend.List(ctx)
	if err != nil {
		b.logger.ErrorContext(ctx, "loading characters failed", slog.Any("error", err))
		return nil, err
	}

	b.mu.Lock()
	b.characters = slices.Clone(characters)
	b.current = noSelection
	if len(b.characters) > 0 {
		b.current = 0
	}
	b.loaded = true
	snap := b.snapshotLocked()
	b.mu.Unlock()

	b.logger.InfoContext(ctx, "characters loaded", slog.Int("count", len(characters)))

	return snap, nil
}

// Select makes the listed character with id current.
func (b *Board) Select(ctx context.Context, id string) (*domain.Character, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	i := slices.IndexFunc(b.characters, func(c domain.Character) bool { return c.ID == id })
	if i < 0 {
		return nil, domain.NewNotFoundError("character", id)
	}

	b.current = i
	selected := b.characters[i]

	b.logger.DebugContext(ctx, "character selected", slog.String("character_id", id))

	return &selected, nil
}

// Current returns a copy of the current character, or nil.
func (b *Board) Current() *domain.Character {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.currentLocked()
}

// Snapshot returns a copy of the listing and the current character.
func (b *Board) Snapshot() *Snapshot {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.snapshotLocked()
}

// CreationEnabled reports whether Create is switched on.
func (b *Board) CreationEnabled(ctx context.Context) bool {
	if b.flags == nil {
		return true
	}

	return b.flags.IsEnabled(ctx, ports.FlagCharacterCreation, true)
}

// Vote adds the integer parsed from input to the current character and
// pushes the new total. Invalid input, a total that would overflow and a
// missing selection leave the board unchanged. A failed push does not undo the local change; it is reported in
// Outcome.Sync.
func (b *Board) Vote(ctx context.Context, input string) (*Outcome, error) {
	n, err := ParseVotes(input)
	if err != nil {
		return nil, err
	}

	return b.mutateCurrent(ctx, "vote", func(c *domain.Character) error {
		if _, err := c.AddVotes(n); err != nil {
			return domain.NewValidationErrorWithValue("votes", "number is too large", input)
		}
		return nil
	})
}

// Reset sets the current character's votes to zero and pushes it.
func (b *Board) Reset(ctx context.Context) (*Outcome, error) {
	return b.mutateCurrent(ctx, "reset", func(c *domain.Character) error {
		c.ResetVotes()
		return nil
	})
}

func (b *Board) mutateCurrent(ctx context.Context, op string, mutate func(*domain.Character) error) (*Outcome, error) {
	b.mu.Lock()
	if b.current == noSelection {
		b.mu.Unlock()
		return nil, domain.ErrNoSelection
	}

	if err := mutate(&b.characters[b.current]); err != nil {
		b.mu.Unlock()
		return nil, err
	}
	changed := b.characters[b.current]
	b.mu.Unlock()

	b.mutations.Add(ctx, 1, metric.WithAttributes(attribute.String("op", op)))

	logger := b.logger.With(
		slog.String("op", op),
		slog.String("character_id", changed.ID),
		slog.Int("votes", changed.Votes),
	)

	outcome := &Outcome{Character: changed, Sync: SyncResult{Synced: true}}

	if _, err := b.backend.UpdateVotes(ctx, changed.ID, changed.Votes); err != nil {
		b.syncFailures.Add(ctx, 1, metric.WithAttributes(attribute.String("op", op)))
		logger.WarnContext(ctx, "pushing votes failed, keeping local count", slog.Any("error", err))

		outcome.Sync = SyncResult{Synced: false, Error: err.Error()}

		return outcome, nil
	}

	logger.InfoContext(ctx, "votes pushed")

	return outcome, nil
}

type createInput struct {
	name  string
	image string
}

// Create submits a new character with zero votes, adds the saved record to
// the listing and selects it. Name and image are sent as given. When the
// character-creation flag is off it returns a ForbiddenError.
func (b *Board) Create(ctx context.Context, name, image string) (*Outcome, error) {
	op := Operation[createInput, *domain.Character, domain.Character, *Outcome]{
		Name: "create_character",
		Validate: func(ctx context.Context, _ createInput) error {
			if !b.CreationEnabled(ctx) {
				return domain.NewForbiddenError("create character", "character creation is disabled")
			}
			return nil
		},
		Perform: func(ctx context.Context, in createInput) (*domain.Character, error) {
			return b.backend.Create(ctx, domain.NewCharacter(in.name, in.image))
		},
		Verify: func(_ context.Context, _ createInput, created *domain.Character) (domain.Character, error) {
			if created == nil || !created.Saved() {
				return domain.Character{}, domain.NewUnavailableError("characters backend", "created character has no id")
			}
			return *created, nil
		},
		Archive: func(_ context.Context, _ createInput, created domain.Character) error {
			b.mu.Lock()
			b.characters = append(b.characters, created)
			b.current = len(b.characters) - 1
			b.mu.Unlock()
			return nil
		},
		Respond: func(ctx context.Context, _ createInput, created domain.Character) (*Outcome, error) {
			b.mutations.Add(ctx, 1, metric.WithAttributes(attribute.String("op", "create")))
			return &Outcome{Character: created, Sync: SyncResult{Synced: true}}, nil
		},
	}

	return Execute(ctx, b.exec, op, createInput{name: name, image: image})
}

func (b *Board) currentLocked() *domain.Character {
	if b.current == noSelection {
		return nil
	}

	c := b.characters[b.current]

	return &c
}

func (b *Board) snapshotLocked() *Snapshot {
	return &Snapshot{
		Characters: slices.Clone(b.characters),
		Current:    b.currentLocked(),
		Loaded:     b.loaded,
	}
}
