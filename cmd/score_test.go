package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spigell/kindred/internal/profile"
	"github.com/spigell/kindred/internal/scoring"
)

func TestScoreTable(t *testing.T) {
	candidates := []profile.Profile{
		jordanProfile,
		alexProfile,
		profile.New("sam", "Sam", []string{"night owl", "observer"}, "Reads by the window."),
	}

	rows := scoreTable(scoring.Default(), alexProfile, candidates)

	require.Len(t, rows, 2, "subject is not scored against itself")
	assert.Equal(t, "sam", rows[0].CandidateID)
	assert.InDelta(t, 1.0/3, rows[0].Score, 1e-9)
	assert.Empty(t, rows[0].SharedKeywords)
	assert.Equal(t, "jordan", rows[1].CandidateID)
	assert.Zero(t, rows[1].Score)
}
