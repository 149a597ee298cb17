package scoring

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRecencyMultiplier_PlateauShape(t *testing.T) {
	// Flat boost through the grace window.
	assert.Equal(t, 1.2, RecencyMultiplier(DecayPlateau, 0))
	assert.Equal(t, 1.2, RecencyMultiplier(DecayPlateau, 6))

	// Linear 1.2 -> 1.0 over 6..24h.
	assert.InDelta(t, 1.1, RecencyMultiplier(DecayPlateau, 15), 1e-9)
	assert.InDelta(t, 1.0, RecencyMultiplier(DecayPlateau, 24), 1e-9)

	// Linear 1.0 -> 0.7 over 24..48h.
	assert.InDelta(t, 0.85, RecencyMultiplier(DecayPlateau, 36), 1e-9)
	assert.InDelta(t, 0.7, RecencyMultiplier(DecayPlateau, 48), 1e-9)

	// Fixed slope beyond 48h, floored at 0.3.
	assert.InDelta(t, 0.5, RecencyMultiplier(DecayPlateau, 58), 1e-9)
	assert.Equal(t, 0.3, RecencyMultiplier(DecayPlateau, 500))
}

func TestRecencyMultiplier_InverseSqrtShape(t *testing.T) {
	// Capped at 1.4 for very fresh posts.
	assert.Equal(t, 1.4, RecencyMultiplier(DecayInverseSqrt, 0))
	assert.Equal(t, 1.4, RecencyMultiplier(DecayInverseSqrt, 0.5))

	// 1/sqrt(h/2) past the cap.
	assert.InDelta(t, 1/math.Sqrt(4), RecencyMultiplier(DecayInverseSqrt, 8), 1e-9)
	assert.InDelta(t, 1/math.Sqrt(12), RecencyMultiplier(DecayInverseSqrt, 24), 1e-9)
}

func TestRecencyMultiplier_BoundsAndMonotonicity(t *testing.T) {
	for _, strategy := range []DecayStrategy{DecayPlateau, DecayInverseSqrt} {
		prev := math.Inf(1)
		for h := 0.0; h <= 720; h += 0.5 {
			m := RecencyMultiplier(strategy, h)
			assert.GreaterOrEqual(t, m, 0.1, "strategy %s at %.1fh", strategy, h)
			assert.LessOrEqual(t, m, 1.4, "strategy %s at %.1fh", strategy, h)
			if h > 6 { // past the grace window
				assert.LessOrEqual(t, m, prev, "strategy %s must not increase at %.1fh", strategy, h)
			}
			prev = m
		}
	}
}

func TestRecencyMultiplier_ClampsBadInput(t *testing.T) {
	assert.Equal(t, 1.2, RecencyMultiplier(DecayPlateau, -10))
	assert.Equal(t, 1.2, RecencyMultiplier(DecayPlateau, math.NaN()))
	assert.Equal(t, 1.4, RecencyMultiplier(DecayInverseSqrt, -1))
}
