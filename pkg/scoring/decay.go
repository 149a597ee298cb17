package scoring

import "math"

// DecayStrategy names a recency decay shape.
type DecayStrategy string

const (
	// DecayPlateau holds a full boost for the first six hours so posts
	// can prove staying power, then declines linearly with a 0.3 floor.
	DecayPlateau DecayStrategy = "plateau"
	// DecayInverseSqrt front-loads freshness: min(1.4, 1/sqrt(h/2)),
	// floored at 0.1.
	DecayInverseSqrt DecayStrategy = "inverse_sqrt"
)

// RecencyMultiplier converts a post age in hours into an engagement
// multiplier. Total over all inputs: negative and NaN ages clamp to 0.
func RecencyMultiplier(strategy DecayStrategy, hoursOld float64) float64 {
	if math.IsNaN(hoursOld) || hoursOld < 0 {
		hoursOld = 0
	}
	switch strategy {
	case DecayInverseSqrt:
		return inverseSqrtDecay(hoursOld)
	default:
		return plateauDecay(hoursOld)
	}
}

func plateauDecay(hoursOld float64) float64 {
	switch {
	case hoursOld <= 6:
		// Fresh posts: full boost, still proving themselves.
		return 1.2
	case hoursOld <= 24:
		// Validated posts: gradual decline from 1.2 to 1.0.
		return 1.0 + 0.2*(1-(hoursOld-6)/18)
	case hoursOld <= 48:
		// Aging posts: decline from 1.0 to 0.7.
		return 1.0 - 0.3*(hoursOld-24)/24
	default:
		// Old posts: keep declining, floor at 0.3.
		return math.Max(0.7-0.02*(hoursOld-48), 0.3)
	}
}

func inverseSqrtDecay(hoursOld float64) float64 {
	m := 1 / math.Sqrt(math.Max(0.5, hoursOld)/2)
	if m > 1.4 {
		return 1.4
	}
	return math.Max(m, 0.1)
}
