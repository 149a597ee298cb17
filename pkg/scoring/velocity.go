package scoring

import (
	"math"
	"time"
)

// VelocityResult is the percentage momentum change over the 24-hour and
// 7-day windows. Nil fields mean no usable historical point existed.
// Trend is empty until 7-day data is present: no opinion without data.
type VelocityResult struct {
	Velocity24h *float64
	Velocity7d  *float64
	Trend       Trend
}

const (
	velocityWindow24h = 24.0
	velocityWindow7d  = 7 * 24.0
	// Accept historical points within ±25% of the target offset, e.g.
	// 18h-30h for the 24h window.
	velocityTolerance = 0.25
)

// ComputeVelocity derives 24h/7d velocity from a topic's momentum
// history. Requires at least two historical points. History is read
// only, never mutated.
func (s *Scorer) ComputeVelocity(history []SignalPoint, currentMomentum float64, now time.Time) VelocityResult {
	if len(history) < 2 {
		return VelocityResult{}
	}

	v24 := velocityAt(history, currentMomentum, now, velocityWindow24h)
	v7d := velocityAt(history, currentMomentum, now, velocityWindow7d)

	return VelocityResult{
		Velocity24h: v24,
		Velocity7d:  v7d,
		Trend:       s.ClassifyTrend(v7d),
	}
}

// ClassifyTrend maps 7-day velocity onto a trend label. A nil velocity
// yields the empty trend.
func (s *Scorer) ClassifyTrend(velocity7d *float64) Trend {
	if velocity7d == nil {
		return ""
	}
	switch {
	case *velocity7d > s.cfg.Velocity.AcceleratingAbove:
		return TrendAccelerating
	case *velocity7d < s.cfg.Velocity.DecliningBelow:
		return TrendDeclining
	default:
		return TrendStable
	}
}

// velocityAt finds the historical point whose age is closest to
// targetHours within tolerance and returns the percentage change from it.
// Historical momentum at or below zero is treated as no data rather than
// letting a division blow up into Inf.
func velocityAt(history []SignalPoint, current float64, now time.Time, targetHours float64) *float64 {
	tolerance := targetHours * velocityTolerance

	var closest *SignalPoint
	closestDiff := math.Inf(1)

	for i := range history {
		hoursAgo := now.Sub(history[i].RecordedAt).Hours()
		diff := math.Abs(hoursAgo - targetHours)
		if diff < closestDiff && diff <= tolerance {
			closest = &history[i]
			closestDiff = diff
		}
	}

	if closest == nil || closest.Momentum <= 0 {
		return nil
	}

	v := (current - closest.Momentum) / closest.Momentum * 100
	return &v
}
