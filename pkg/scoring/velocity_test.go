package scoring

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func hoursAgo(now time.Time, h float64) time.Time {
	return now.Add(-time.Duration(h * float64(time.Hour)))
}

func TestComputeVelocity_NeedsTwoPoints(t *testing.T) {
	s := New(DefaultConfig())
	now := time.Now().UTC()

	r := s.ComputeVelocity(nil, 50, now)
	assert.Nil(t, r.Velocity24h)
	assert.Nil(t, r.Velocity7d)
	assert.Equal(t, Trend(""), r.Trend)

	r = s.ComputeVelocity([]SignalPoint{{Momentum: 40, RecordedAt: hoursAgo(now, 24)}}, 50, now)
	assert.Nil(t, r.Velocity24h)
}

func TestComputeVelocity_PercentChange(t *testing.T) {
	s := New(DefaultConfig())
	now := time.Now().UTC()

	history := []SignalPoint{
		{Momentum: 40, RecordedAt: hoursAgo(now, 23)},  // within 24h tolerance
		{Momentum: 30, RecordedAt: hoursAgo(now, 170)}, // within 7d tolerance
	}

	r := s.ComputeVelocity(history, 60, now)
	require.NotNil(t, r.Velocity24h)
	require.NotNil(t, r.Velocity7d)
	assert.InDelta(t, 50.0, *r.Velocity24h, 1e-9)  // (60-40)/40
	assert.InDelta(t, 100.0, *r.Velocity7d, 1e-9)  // (60-30)/30
	assert.Equal(t, TrendAccelerating, r.Trend)
}

func TestComputeVelocity_ToleranceWindow(t *testing.T) {
	s := New(DefaultConfig())
	now := time.Now().UTC()

	// 40h is outside the 18h-30h acceptance band for the 24h target and
	// outside the 126h-210h band for the 7d target.
	history := []SignalPoint{
		{Momentum: 40, RecordedAt: hoursAgo(now, 40)},
		{Momentum: 35, RecordedAt: hoursAgo(now, 41)},
	}

	r := s.ComputeVelocity(history, 60, now)
	assert.Nil(t, r.Velocity24h)
	assert.Nil(t, r.Velocity7d)
	assert.Equal(t, Trend(""), r.Trend, "no 7d data means no trend opinion")
}

func TestComputeVelocity_PicksClosestPoint(t *testing.T) {
	s := New(DefaultConfig())
	now := time.Now().UTC()

	history := []SignalPoint{
		{Momentum: 20, RecordedAt: hoursAgo(now, 29)},
		{Momentum: 50, RecordedAt: hoursAgo(now, 25)}, // closer to 24h
		{Momentum: 80, RecordedAt: hoursAgo(now, 19)},
	}

	r := s.ComputeVelocity(history, 60, now)
	require.NotNil(t, r.Velocity24h)
	assert.InDelta(t, 20.0, *r.Velocity24h, 1e-9) // against the 25h point
}

func TestComputeVelocity_ZeroHistoricalMomentumIsNoData(t *testing.T) {
	s := New(DefaultConfig())
	now := time.Now().UTC()

	history := []SignalPoint{
		{Momentum: 0, RecordedAt: hoursAgo(now, 24)},
		{Momentum: -5, RecordedAt: hoursAgo(now, 168)},
	}

	r := s.ComputeVelocity(history, 60, now)
	assert.Nil(t, r.Velocity24h, "division by zero must resolve to null, not Inf")
	assert.Nil(t, r.Velocity7d)
}

func TestClassifyTrend(t *testing.T) {
	s := New(DefaultConfig())

	up, flat, down := 31.0, 5.0, -16.0
	assert.Equal(t, TrendAccelerating, s.ClassifyTrend(&up))
	assert.Equal(t, TrendStable, s.ClassifyTrend(&flat))
	assert.Equal(t, TrendDeclining, s.ClassifyTrend(&down))
	assert.Equal(t, Trend(""), s.ClassifyTrend(nil))

	// Boundary values stay stable.
	edge1, edge2 := 30.0, -15.0
	assert.Equal(t, TrendStable, s.ClassifyTrend(&edge1))
	assert.Equal(t, TrendStable, s.ClassifyTrend(&edge2))
}
