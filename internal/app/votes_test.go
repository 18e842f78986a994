package app

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jsamuelsen/character-votes/internal/domain"
)

func TestParseVotes(t *testing.T) {
	tests := []struct {
		input string
		want  int
	}{
		{"5", 5},
		{" 7 ", 7},
		{"\t12\n", 12},
		{"-2", -2},
		{"+3", 3},
		{"0", 0},
		{"007", 7},
		{"3.9", 3},
		{"4abc", 4},
		{"10 votes", 10},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseVotes(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseVotes_Invalid(t *testing.T) {
	for _, input := range []string{"", "   ", "abc", "-", "+", ".5", "x1", "- 1", "99999999999999999999999"} {
		t.Run(input, func(t *testing.T) {
			_, err := ParseVotes(input)

			require.Error(t, err)
			assert.True(t, domain.IsValidation(err))

			var verr *domain.ValidationError
			require.True(t, errors.As(err, &verr))
			assert.Equal(t, "votes", verr.Field)
			assert.Equal(t, input, verr.Value)
		})
	}
}

func TestParseVotes_InvalidMessage(t *testing.T) {
	_, err := ParseVotes("abc")

	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, InvalidVotesMessage, verr.Message)
}
