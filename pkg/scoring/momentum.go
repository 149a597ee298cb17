package scoring

import "math"

// Momentum converts raw engagement into a 0-100 external-interest score.
//
// The log scale keeps a 5000-point Reddit thread from drowning out a
// 300-point HN story; comments add a capped bonus because discussion is
// a stronger intent signal than upvotes. Recency decay is applied last.
//
// Fresh computations are floored at cfg.MomentumFloor. Momentum read
// back from stored history is authoritative and is never recomputed
// here; this function is only for new signal events.
func (s *Scorer) Momentum(engagementScore, commentCount int, hoursOld float64) float64 {
	if engagementScore < 0 {
		engagementScore = 0
	}
	if commentCount < 0 {
		commentCount = 0
	}

	base := math.Min(50, math.Log10(float64(engagementScore)+1)*25)
	commentBonus := math.Min(25, float64(commentCount)/5)

	raw := (base + commentBonus) * RecencyMultiplier(s.cfg.Decay, hoursOld)
	return clamp(math.Round(raw), s.cfg.MomentumFloor, 100)
}
