package scoring

import "time"

// Classification is the ranked scoring output for one topic.
type Classification struct {
	GapScore   float64
	Phase      Phase
	Confidence Confidence
	// GapScoreV1 is the legacy formula without velocity and novelty
	// multipliers, kept as a compatibility output for consumers that
	// still chart both generations side by side.
	GapScoreV1 float64
}

// GapScore computes the primary ranking metric:
//
//	baseGap = momentum * (1 - supply/100)
//	gap     = round1(baseGap * velocityMultiplier * newTopicBonus)
//
// Accelerating topics get a 1.2x boost and declining ones a 0.7x cut;
// topics first seen inside the novelty window take an extra 1.15x.
func (s *Scorer) GapScore(momentum, supply float64, trend Trend, firstSeenAt, now time.Time) float64 {
	momentum = clamp(momentum, 0, 100)
	supply = clamp(supply, 0, 100)

	baseGap := momentum * (1 - supply/100)
	return round1(baseGap * s.VelocityMultiplier(trend) * s.newTopicBonus(firstSeenAt, now))
}

// GapScoreV1 is the legacy momentum-vs-supply gap with no multipliers.
func (s *Scorer) GapScoreV1(momentum, supply float64) float64 {
	momentum = clamp(momentum, 0, 100)
	supply = clamp(supply, 0, 100)
	return round1(momentum * (1 - supply/100))
}

// VelocityMultiplier maps a trend onto its gap multiplier. The empty
// trend (no data) is neutral.
func (s *Scorer) VelocityMultiplier(trend Trend) float64 {
	switch trend {
	case TrendAccelerating:
		return s.cfg.Velocity.AcceleratingMultiplier
	case TrendDeclining:
		return s.cfg.Velocity.DecliningMultiplier
	case TrendStable:
		return s.cfg.Velocity.StableMultiplier
	default:
		return 1.0
	}
}

// newTopicBonus rewards topics first seen within the novelty window.
// A zero firstSeenAt means the topic was just created, which counts as
// new.
func (s *Scorer) newTopicBonus(firstSeenAt, now time.Time) float64 {
	if firstSeenAt.IsZero() {
		return s.cfg.NewTopicBonus
	}
	window := time.Duration(s.cfg.NewTopicWindowHours * float64(time.Hour))
	if firstSeenAt.After(now.Add(-window)) {
		return s.cfg.NewTopicBonus
	}
	return 1.0
}

// ClassifyPhase maps (gap, supply) onto a lifecycle phase. The table is
// ordered; first match wins.
func (s *Scorer) ClassifyPhase(gapScore, supply float64) Phase {
	t := s.cfg.Phases
	switch {
	case gapScore >= t.InnovationGap && supply < t.InnovationSupply:
		return PhaseInnovation
	case gapScore >= t.EmergenceGap && supply < t.EmergenceSupply:
		return PhaseEmergence
	case gapScore >= t.GrowthGap:
		return PhaseGrowth
	case gapScore >= t.MaturityGap:
		return PhaseMaturity
	default:
		return PhaseSaturated
	}
}

// ClassifyConfidence labels score reliability from momentum and supply.
// verifiedSupply forces high: a live API check is ground truth and
// outranks the heuristic rule.
func (s *Scorer) ClassifyConfidence(momentum, supply float64, verifiedSupply bool) Confidence {
	if verifiedSupply {
		return ConfidenceHigh
	}
	r := s.cfg.Confidence
	switch {
	case momentum >= r.HighMomentum && supply < r.HighSupplyBelow:
		return ConfidenceHigh
	case momentum >= r.MediumMomentum:
		return ConfidenceMedium
	default:
		return ConfidenceLow
	}
}

// Classify is the pure recalculation entry point: given stored momentum
// and supply plus the velocity trend and topic age, it reproduces the
// full gap/phase/confidence triple.
func (s *Scorer) Classify(momentum, supply float64, trend Trend, firstSeenAt, now time.Time) Classification {
	gap := s.GapScore(momentum, supply, trend, firstSeenAt, now)
	return Classification{
		GapScore:   gap,
		Phase:      s.ClassifyPhase(gap, supply),
		Confidence: s.ClassifyConfidence(momentum, supply, false),
		GapScoreV1: s.GapScoreV1(momentum, supply),
	}
}
