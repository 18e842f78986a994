package app

import (
	"strconv"
	"strings"

	"github.com/jsamuelsen/character-votes/internal/domain"
)

// InvalidVotesMessage is shown when vote input has no leading integer.
const InvalidVotesMessage = "Please enter a valid number!"

// ParseVotes reads the leading integer of input. Surrounding whitespace and
// anything after the digits are ignored, so "3.9" is 3 and "4abc" is 4. An
// optional sign is allowed. Input with no digits, or a number that does not
// fit in an int, is a validation error on the votes field.
func ParseVotes(input string) (int, error) {
	s := strings.TrimSpace(input)

	end := 0
	if end < len(s) && (s[end] == '+' || s[end] == '-') {
		end++
	}

	digits := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}

	if end == digits {
		return 0, domain.NewValidationErrorWithValue("votes", InvalidVotesMessage, input)
	}

	n, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0, domain.NewValidationErrorWithValue("votes", "number is too large", input)
	}

	return n, nil
}
