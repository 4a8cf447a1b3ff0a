package matcher

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMatchScoresOverlap(t *testing.T) {
	pool := Pool([]string{"Go", " SQL "}, []string{"docker", "go"})

	result := Match(pool, []string{"go", "Docker", "Kubernetes", "sql"})
	require.InDelta(t, 0.75, result.Score, 0.0001)
	require.Equal(t, []string{"docker", "go", "sql"}, result.Matched)
	require.Equal(t, []string{"kubernetes"}, result.Missing)
}

func TestMatchWithoutRequiredSkills(t *testing.T) {
	result := Match(Pool([]string{"go"}), nil)
	require.Zero(t, result.Score)
	require.Empty(t, result.Matched)
	require.Empty(t, result.Missing)
}

func TestPoolIgnoresBlankNames(t *testing.T) {
	pool := Pool([]string{"", "  ", "Rust"})
	require.Len(t, pool, 1)
	_, ok := pool["rust"]
	require.True(t, ok)
}
