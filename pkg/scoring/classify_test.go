package scoring

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestClassify_HotNewAcceleratingTopic(t *testing.T) {
	s := New(DefaultConfig())
	now := time.Now().UTC()

	// momentum=85, supply=23: baseGap = 85*0.77 = 65.45;
	// *1.2 (accelerating) *1.15 (first seen 1h ago) = 90.321 -> 90.3.
	c := s.Classify(85, 23, TrendAccelerating, now.Add(-time.Hour), now)

	assert.Equal(t, 90.3, c.GapScore)
	assert.Equal(t, PhaseInnovation, c.Phase)
	assert.Equal(t, ConfidenceHigh, c.Confidence)
	assert.Equal(t, 65.5, c.GapScoreV1)
}

func TestClassify_StaleSaturatedTopic(t *testing.T) {
	s := New(DefaultConfig())
	now := time.Now().UTC()

	// momentum=20, supply=80, no velocity data, first seen a year ago:
	// baseGap = 20*0.2 = 4; no multipliers apply.
	c := s.Classify(20, 80, "", now.AddDate(-1, 0, 0), now)

	assert.Equal(t, 4.0, c.GapScore)
	assert.Equal(t, PhaseSaturated, c.Phase)
	assert.Equal(t, ConfidenceLow, c.Confidence)
}

func TestGapScore_Monotonicity(t *testing.T) {
	s := New(DefaultConfig())
	now := time.Now().UTC()
	old := now.AddDate(0, -6, 0)

	// Decreasing in supply at fixed momentum.
	prev := 101.0
	for supply := 0.0; supply <= 100; supply += 5 {
		gap := s.GapScore(70, supply, TrendStable, old, now)
		assert.LessOrEqual(t, gap, prev, "supply=%v", supply)
		prev = gap
	}

	// Increasing in momentum at fixed supply.
	prev = -1.0
	for momentum := 0.0; momentum <= 100; momentum += 5 {
		gap := s.GapScore(momentum, 40, TrendStable, old, now)
		assert.GreaterOrEqual(t, gap, prev, "momentum=%v", momentum)
		prev = gap
	}
}

func TestGapScore_VelocityAndNoveltyMultipliers(t *testing.T) {
	s := New(DefaultConfig())
	now := time.Now().UTC()
	old := now.AddDate(0, -6, 0)

	base := s.GapScore(60, 50, TrendStable, old, now)
	assert.Equal(t, 30.0, base)

	assert.Equal(t, 36.0, s.GapScore(60, 50, TrendAccelerating, old, now))
	assert.Equal(t, 21.0, s.GapScore(60, 50, TrendDeclining, old, now))
	assert.Equal(t, base, s.GapScore(60, 50, "", old, now), "no trend data is neutral")

	// Topic first seen inside the 48h window takes the novelty bonus.
	assert.Equal(t, 34.5, s.GapScore(60, 50, TrendStable, now.Add(-12*time.Hour), now))
	// A zero first-seen timestamp counts as brand new.
	assert.Equal(t, 34.5, s.GapScore(60, 50, TrendStable, time.Time{}, now))
}

func TestClassifyPhase_OrderedTable(t *testing.T) {
	s := New(DefaultConfig())

	assert.Equal(t, PhaseInnovation, s.ClassifyPhase(65, 20))
	// High gap but contested supply falls through innovation.
	assert.Equal(t, PhaseEmergence, s.ClassifyPhase(65, 35))
	assert.Equal(t, PhaseEmergence, s.ClassifyPhase(50, 40))
	assert.Equal(t, PhaseGrowth, s.ClassifyPhase(50, 60))
	assert.Equal(t, PhaseGrowth, s.ClassifyPhase(35, 10))
	assert.Equal(t, PhaseMaturity, s.ClassifyPhase(20, 90))
	assert.Equal(t, PhaseSaturated, s.ClassifyPhase(10, 90))
}

func TestClassifyConfidence(t *testing.T) {
	s := New(DefaultConfig())

	assert.Equal(t, ConfidenceHigh, s.ClassifyConfidence(70, 30, false))
	// High momentum against contested supply only rates medium.
	assert.Equal(t, ConfidenceMedium, s.ClassifyConfidence(70, 60, false))
	assert.Equal(t, ConfidenceMedium, s.ClassifyConfidence(45, 20, false))
	assert.Equal(t, ConfidenceLow, s.ClassifyConfidence(30, 90, false))

	// A verified supply check is ground truth and overrides everything.
	assert.Equal(t, ConfidenceHigh, s.ClassifyConfidence(30, 90, true))
}

func TestClassify_RoundTripFromStoredValues(t *testing.T) {
	s := New(DefaultConfig())
	now := time.Now().UTC()
	firstSeen := now.Add(-300 * time.Hour)

	original := s.Classify(72, 33, TrendStable, firstSeen, now)

	// Recomputing from the same persisted inputs must reproduce the
	// triple bit-for-bit.
	reloaded := s.Classify(72, 33, TrendStable, firstSeen, now)
	assert.Equal(t, original, reloaded)
}
