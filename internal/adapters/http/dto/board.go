package dto

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/jsamuelsen/character-votes/internal/app"
	"github.com/jsamuelsen/character-votes/internal/domain"
)

// LooseString decodes from either a JSON string or a JSON number, keeping
// the text as sent. Vote counts and ids arrive both ways.
type LooseString string

// UnmarshalJSON implements json.Unmarshaler.
func (s *LooseString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)

	switch {
	case bytes.Equal(data, []byte("null")):
		*s = ""
		return nil
	case len(data) > 0 && data[0] == '"':
		var str string
		if err := json.Unmarshal(data, &str); err != nil {
			return err
		}
		*s = LooseString(str)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("expected a string or a number, got %s", data)
	}
	*s = LooseString(n.String())

	return nil
}

// SelectRequest selects a character.
type SelectRequest struct {
	ID LooseString `json:"id" form:"id" validate:"notempty"`
}

// VoteRequest adds votes to the current character. Votes is free text and
// parsed by the board, so "5", 5 and " 5 apples" are all accepted.
type VoteRequest struct {
	Votes LooseString `json:"votes" form:"votes"`
}

// CreateCharacterRequest creates a character. Both fields may be empty.
type CreateCharacterRequest struct {
	Name  string `json:"name"  form:"name"`
	Image string `json:"image" form:"image-url"`
}

// CharacterResponse is a character as returned by the API.
type CharacterResponse struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Image string `json:"image"`
	Votes int    `json:"votes"`
}

// BoardResponse is the listing, the current selection and whether creation
// is available. Current is null when nothing is selected.
type BoardResponse struct {
	Characters      []CharacterResponse `json:"characters"`
	Current         *CharacterResponse  `json:"current"`
	Loaded          bool                `json:"loaded"`
	CreationEnabled bool                `json:"creationEnabled"`
}

// SyncResponse reports how the backend push went.
type SyncResponse struct {
	Synced bool   `json:"synced"`
	Error  string `json:"error,omitempty"`
}

// OutcomeResponse is the result of a vote, reset or create.
type OutcomeResponse struct {
	Character CharacterResponse `json:"character"`
	Sync      SyncResponse      `json:"sync"`
}

// NewCharacterResponse converts a domain character.
func NewCharacterResponse(c domain.Character) CharacterResponse {
	return CharacterResponse{
		ID:    c.ID,
		Name:  c.Name,
		Image: c.Image,
		Votes: c.Votes,
	}
}

// NewBoardResponse converts a board snapshot. The listing is never null.
func NewBoardResponse(snap *app.Snapshot, creationEnabled bool) BoardResponse {
	resp := BoardResponse{
		Characters:      make([]CharacterResponse, 0, len(snap.Characters)),
		Loaded:          snap.Loaded,
		CreationEnabled: creationEnabled,
	}

	for _, c := range snap.Characters {
		resp.Characters = append(resp.Characters, NewCharacterResponse(c))
	}

	if snap.Current != nil {
		current := NewCharacterResponse(*snap.Current)
		resp.Current = &current
	}

	return resp
}

// NewOutcomeResponse converts a board outcome.
func NewOutcomeResponse(o *app.Outcome) OutcomeResponse {
	return OutcomeResponse{
		Character: NewCharacterResponse(o.Character),
		Sync: SyncResponse{
			Synced: o.Sync.Synced,
			Error:  o.Sync.Error,
		},
	}
}
