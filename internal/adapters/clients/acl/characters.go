package acl

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"github.com/jsamuelsen/character-votes/internal/adapters/clients"
	"github.com/jsamuelsen/character-votes/internal/domain"
	"github.com/jsamuelsen/character-votes/internal/platform/logging"
)

const charactersPath = "/characters"

// CharacterClient implements ports.CharacterBackend against a json-server
// style REST API, and doubles as its readiness check.
type CharacterClient struct {
	BaseAdapter
}

// NewCharacterClient wraps client. Panics if client is nil.
func NewCharacterClient(client *clients.Client) *CharacterClient {
	if client == nil {
		panic("CharacterClient: client is required")
	}

	return &CharacterClient{
		BaseAdapter: NewBaseAdapter(client, client.ServiceName()),
	}
}

// characterRecord is the backend's representation. json-server assigns
// numeric ids; other backends use strings.
type characterRecord struct {
	ID    json.RawMessage `json:"id,omitempty"`
	Name  string          `json:"name"`
	Image string          `json:"image"`
	Votes int             `json:"votes"`
}

type votesPatch struct {
	Votes int `json:"votes"`
}

type newCharacter struct {
	Name  string `json:"name"`
	Image string `json:"image"`
	Votes int    `json:"votes"`
}

// List fetches every character in backend order.
func (c *CharacterClient) List(ctx context.Context) ([]domain.Character, error) {
	body, err := c.Get(ctx, charactersPath, "list characters", "")
	if err != nil {
		return nil, err
	}

	records, err := DecodeResponseForService[[]characterRecord](body, c.ServiceName())
	if err != nil {
		return nil, err
	}

	translated, err := TranslateSlice(*records, c.translateListed)
	if err != nil {
		return nil, domain.NewUnavailableError(c.ServiceName(), err.Error())
	}

	characters := make([]domain.Character, len(translated))
	for i, ch := range translated {
		characters[i] = *ch
	}

	logging.Trace(ctx, "characters listed", slog.Int("count", len(characters)))

	return characters, nil
}

// UpdateVotes sends a partial update carrying the new absolute vote count.
func (c *CharacterClient) UpdateVotes(ctx context.Context, id string, votes int) (*domain.Character, error) {
	body, err := c.Patch(ctx, characterPath(id), votesPatch{Votes: votes}, "update votes", id)
	if err != nil {
		return nil, err
	}

	raw, err := io.ReadAll(body)
	_ = body.Close()
	if err != nil {
		return nil, domain.NewUnavailableError(c.ServiceName(), err.Error())
	}

	// A 204 or an empty body means the backend took the change as sent.
	if len(bytes.TrimSpace(raw)) == 0 {
		logging.Trace(ctx, "votes pushed", slog.String("character_id", id), slog.Int("votes", votes))
		return &domain.Character{ID: id, Votes: votes}, nil
	}

	updated, err := c.decodeOne(io.NopCloser(bytes.NewReader(raw)))
	if err != nil {
		return nil, err
	}

	// Some backends answer a PATCH with an empty object.
	if updated.ID == "" {
		updated.ID = id
	}

	logging.Trace(ctx, "votes pushed", slog.String("character_id", id), slog.Int("votes", votes))

	return updated, nil
}

// Create submits a new character and returns the backend's copy, id included.
func (c *CharacterClient) Create(ctx context.Context, ch domain.Character) (*domain.Character, error) {
	body, err := c.Post(ctx, charactersPath, newCharacter{Name: ch.Name, Image: ch.Image, Votes: ch.Votes}, "create character")
	if err != nil {
		return nil, err
	}

	created, err := c.decodeOne(body)
	if err != nil {
		return nil, err
	}

	logging.Trace(ctx, "character created", slog.String("character_id", created.ID))

	return created, nil
}

// Name returns the health check name for this client.
func (c *CharacterClient) Name() string {
	return c.ServiceName()
}

// Check verifies the characters collection can be read.
func (c *CharacterClient) Check(ctx context.Context) error {
	resp, err := c.Client().Get(ctx, charactersPath)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%s returned status %d", c.ServiceName(), resp.StatusCode)
	}

	return nil
}

func (c *CharacterClient) decodeOne(body io.ReadCloser) (*domain.Character, error) {
	record, err := DecodeResponseForService[characterRecord](body, c.ServiceName())
	if err != nil {
		return nil, err
	}

	ch, err := translateCharacter(record)
	if err != nil {
		return nil, domain.NewUnavailableError(c.ServiceName(), err.Error())
	}

	return ch, nil
}

// translateListed rejects records without an id, since they could never be
// updated.
func (c *CharacterClient) translateListed(rec *characterRecord) (*domain.Character, error) {
	ch, err := translateCharacter(rec)
	if err != nil {
		return nil, err
	}

	if ch.ID == "" {
		return nil, fmt.Errorf("character %q has no id", ch.Name)
	}

	return ch, nil
}

func translateCharacter(rec *characterRecord) (*domain.Character, error) {
	id, err := parseID(rec.ID)
	if err != nil {
		return nil, err
	}

	return &domain.Character{
		ID:    id,
		Name:  rec.Name,
		Image: rec.Image,
		Votes: rec.Votes,
	}, nil
}

// parseID accepts a JSON string or number. Absent and null ids become "".
func parseID(raw json.RawMessage) (string, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return "", nil
	}

	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return "", fmt.Errorf("decoding id: %w", err)
		}

		return s, nil
	}

	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return "", fmt.Errorf("id must be a string or number, got %s", raw)
	}

	if i, err := n.Int64(); err == nil {
		return strconv.FormatInt(i, 10), nil
	}

	return n.String(), nil
}

func characterPath(id string) string {
	return charactersPath + "/" + url.PathEscape(id)
}
