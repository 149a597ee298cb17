package scoring

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScoreCandidate_FirstPassWithoutSupply(t *testing.T) {
	s := New(DefaultConfig())
	now := time.Now().UTC()

	r := s.ScoreCandidate(CandidateInput{
		Post: Post{Topic: "DeepSeek R1", Platform: PlatformReddit, Score: 900, Comments: 120, HoursOld: 3},
		Now:  now,
	})

	require.True(t, r.Accepted)
	assert.Nil(t, r.Supply, "no YouTube data yet")
	assert.Greater(t, r.Momentum, 60.0)
	// Gap assumes the default supply of 50 until the verified pass runs.
	assert.Equal(t, s.GapScore(r.Momentum, 50, "", time.Time{}, now), r.GapScore)
	assert.NotEmpty(t, r.Phase)
	assert.NotEmpty(t, r.Confidence)
}

func TestScoreCandidate_SecondPassWithSupply(t *testing.T) {
	s := New(DefaultConfig())
	now := time.Now().UTC()

	r := s.ScoreCandidate(CandidateInput{
		Post:        Post{Topic: "DeepSeek R1", Platform: PlatformReddit, Score: 900, Comments: 120, HoursOld: 3},
		FirstSeenAt: now.Add(-30 * 24 * time.Hour),
		Supply: &SupplyObservation{
			TotalResults: 800,
			Videos:       []Video{{ChannelSubs: 20_000, DaysOld: 200}},
			Verified:     true,
		},
		Now: now,
	})

	require.True(t, r.Accepted)
	require.NotNil(t, r.Supply)
	// Volume 15, authority 0, freshness 0 -> 0.40*15 = 6.
	assert.Equal(t, 6.0, *r.Supply)
	assert.True(t, r.Flags.HasAuthorityGap)
	assert.True(t, r.Flags.HasFreshnessGap)
	assert.True(t, r.Flags.IsUnderserved)
	assert.Equal(t, ConfidenceHigh, r.Confidence, "verified supply forces high confidence")
}

func TestScoreCandidate_RejectsGarbage(t *testing.T) {
	s := New(DefaultConfig())

	r := s.ScoreCandidate(CandidateInput{
		Post: Post{Topic: "the best way to", Platform: PlatformReddit, Score: 5000},
	})
	assert.False(t, r.Accepted)
	assert.NotEmpty(t, r.Reason)
	assert.Zero(t, r.Momentum)
}

func TestScoreCandidate_PartialGigaPenaltyRaisesSupply(t *testing.T) {
	s := New(DefaultConfig())
	now := time.Now().UTC()

	obs := &SupplyObservation{TotalResults: 800}

	plain := s.ScoreCandidate(CandidateInput{
		Post: Post{Topic: "Xr0 Verifier", Score: 100, HoursOld: 2}, Supply: obs, Now: now,
	})
	penalized := s.ScoreCandidate(CandidateInput{
		Post: Post{Topic: "React Native Navigation", Score: 100, HoursOld: 2}, Supply: obs, Now: now,
	})

	require.NotNil(t, plain.Supply)
	require.NotNil(t, penalized.Supply)
	assert.Equal(t, *plain.Supply+15, *penalized.Supply)
}
