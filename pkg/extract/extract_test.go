package extract

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromTitle_QuotedTerms(t *testing.T) {
	got := FromTitle(`I rewrote our backend in "Gleam" and it went great`)
	assert.Contains(t, got, "Gleam")
}

func TestFromTitle_CapitalizedPhrases(t *testing.T) {
	got := FromTitle("Show HN: DeepSeek R1 beats everything I tried")
	assert.Contains(t, got, "DeepSeek R1")
	// The prefix itself must not leak into the candidates.
	for _, c := range got {
		assert.NotContains(t, c, "Show HN")
	}
}

func TestFromTitle_ShortTitleUsedWhole(t *testing.T) {
	got := FromTitle("Local first sync engines")
	assert.Contains(t, got, "Local first sync engines")
}

func TestFromTitle_DedupesAndCaps(t *testing.T) {
	got := FromTitle(`"Bun Bundler" is fast: Bun Bundler vs Webpack Config Tool benchmarks`)
	require.NotEmpty(t, got)
	assert.LessOrEqual(t, len(got), 3)

	seen := map[string]bool{}
	for _, c := range got {
		assert.False(t, seen[c], "duplicate candidate %q", c)
		seen[c] = true
	}
}

func TestFromTitle_DropsNoise(t *testing.T) {
	assert.Empty(t, FromTitle(""))
	assert.Empty(t, FromTitle("ok"))
	assert.NotContains(t, FromTitle("raised 2024 in funding"), "2024")
}

func TestHeuristic_AlignsWithInput(t *testing.T) {
	titles := []string{
		"Show HN: Xr0 Verifier for C",
		"",
		"TIL: DuckDB can read from S3 directly",
	}

	got, err := Heuristic{}.Extract(context.Background(), titles)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Contains(t, got[0], "Xr0 Verifier")
	assert.Empty(t, got[1])
	assert.Contains(t, got[2], "DuckDB")
}
