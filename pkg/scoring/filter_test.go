package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsValidTopic_Accepts(t *testing.T) {
	s := New(DefaultConfig())

	for _, candidate := range []string{
		"DeepSeek R1",
		"Bun Bundler",
		"Xr0 Verifier",
		"Local-First Sync",
		"Zig",
	} {
		ok, reason := s.IsValidTopic(candidate)
		assert.True(t, ok, "%q rejected: %s", candidate, reason)
	}
}

func TestIsValidTopic_Rejects(t *testing.T) {
	s := New(DefaultConfig())

	cases := map[string]string{
		"ab":                                   "too short",
		"an extremely long candidate string that keeps going": "too long",
		"one two three four five":              "too many words",
		"Postgres: the good parts":             "sentence fragment",
		"the best way to":                      "leading connector word",
		"Migrating to":                         "trailing connector word",
		"quiet little phrase":                  "no capitalized words",
		"What Comes Next":                      "garbage pattern",
		"My Favorite Editor":                   "garbage pattern",
		"Thoughts...":                          "garbage pattern",
		"5 Ways Forward":                       "garbage pattern",
	}

	for candidate, wantReason := range cases {
		ok, reason := s.IsValidTopic(candidate)
		assert.False(t, ok, "%q should be rejected", candidate)
		assert.Equal(t, wantReason, reason, "%q", candidate)
	}
}

func TestIsGigaTopic(t *testing.T) {
	s := New(DefaultConfig())

	assert.True(t, s.IsGigaTopic("python"))
	assert.True(t, s.IsGigaTopic("Python"))
	assert.True(t, s.IsGigaTopic("python tutorial"))
	assert.True(t, s.IsGigaTopic("React guide"))

	assert.False(t, s.IsGigaTopic("React Native Navigation"))
	assert.False(t, s.IsGigaTopic("Xr0 Verifier"))
}

func TestGigaSupplyPenalty_PartialMatch(t *testing.T) {
	s := New(DefaultConfig())

	// Contains "react" as a token but is a specific compound term:
	// partial penalty, not full saturation.
	assert.Equal(t, 15.0, s.GigaSupplyPenalty("React Native Navigation"))
	assert.Equal(t, 15.0, s.GigaSupplyPenalty("Machine Learning Compilers"))

	assert.Equal(t, 0.0, s.GigaSupplyPenalty("Xr0 Verifier"))
	// Exact giga-topics are rejected outright, not penalized.
	assert.Equal(t, 0.0, s.GigaSupplyPenalty("python"))
}

func TestGigaAdjustedSupply(t *testing.T) {
	s := New(DefaultConfig())

	// Denylisted terms pin to full saturation regardless of what the
	// live check measured.
	assert.Equal(t, 100.0, s.GigaAdjustedSupply("python", 6.0))
	assert.Equal(t, 100.0, s.GigaAdjustedSupply("React guide", 0.0))

	// Partial matches take the penalty, capped at 100.
	assert.Equal(t, 55.0, s.GigaAdjustedSupply("React Native Navigation", 40.0))
	assert.Equal(t, 100.0, s.GigaAdjustedSupply("React Native Navigation", 95.0))

	// Unrelated keywords pass through untouched.
	assert.Equal(t, 40.0, s.GigaAdjustedSupply("Xr0 Verifier", 40.0))
}

func TestFilterCandidate(t *testing.T) {
	s := New(DefaultConfig())

	r := s.FilterCandidate("DeepSeek R1")
	assert.True(t, r.Accepted)
	assert.False(t, r.ForcedSaturated)

	r = s.FilterCandidate("python")
	assert.False(t, r.Accepted)
	assert.True(t, r.ForcedSaturated)
	assert.Equal(t, "oversaturated topic", r.Reason)

	r = s.FilterCandidate("the best way to")
	assert.False(t, r.Accepted)
	assert.False(t, r.ForcedSaturated)
}

func TestFilterCandidate_InjectedDenylist(t *testing.T) {
	cfg := DefaultConfig()
	cfg.GigaTopics = []string{"ferris wheels"}
	s := New(cfg)

	assert.False(t, s.FilterCandidate("Ferris Wheels").Accepted)
	// The stock list no longer applies.
	assert.True(t, s.FilterCandidate("Rust").Accepted)
}
