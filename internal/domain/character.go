package domain

import "math"

// Character is the record managed by the board.
type Character struct {
	// ID is assigned by the characters backend.
	ID string

	// Name is shown in the character bar and the detail panel.
	Name string

	// Image is the URL of the character's picture.
	Image string

	// Votes is the running vote count. Any integer is accepted.
	Votes int
}

// NewCharacter returns an unsaved character with zero votes.
// Name and image are taken as-is; empty strings are allowed.
func NewCharacter(name, image string) Character {
	return Character{Name: name, Image: image}
}

// AddVotes adds n to the vote count and returns the new total.
// n may be negative. A total that would overflow leaves the count unchanged
// and returns ErrVotesOverflow.
func (c *Character) AddVotes(n int) (int, error) {
	if (n > 0 && c.Votes > math.MaxInt-n) || (n < 0 && c.Votes < math.MinInt-n) {
		return c.Votes, ErrVotesOverflow
	}

	c.Votes += n

	return c.Votes, nil
}

// ResetVotes sets the vote count back to zero.
func (c *Character) ResetVotes() {
	c.Votes = 0
}

// Saved reports whether the backend has assigned an id.
func (c *Character) Saved() bool {
	return c.ID != ""
}
