package scoring

import "math"

// Authority points per competing video, keyed on channel size. Channels
// under 100K subs score zero: small creators are beatable.
const (
	megaChannelSubs  = 1_000_000
	largeChannelSubs = 500_000
	medChannelSubs   = 100_000

	megaChannelPoints  = 10
	largeChannelPoints = 7
	medChannelPoints   = 4
)

// Freshness points per competing video, keyed on age. Content older than
// 90 days scores zero: stale results are an opening.
const (
	veryRecentDays = 7
	recentDays     = 30
	agingDays      = 90

	veryRecentPoints = 10
	recentPoints     = 5
	agingPoints      = 2
)

// Opportunity flag cutoffs. Flags are diagnostics for the ranking
// consumer, not inputs back into the gap formula.
const (
	authorityGapBelow   = 30
	freshnessGapBelow   = 20
	underservedResults  = 1000
	underservedMomentum = 40
)

// Flags are independent boolean diagnostics about the competitive field.
type Flags struct {
	HasAuthorityGap bool `json:"has_authority_gap"`
	HasFreshnessGap bool `json:"has_freshness_gap"`
	IsUnderserved   bool `json:"is_underserved"`
}

// VolumeScore maps a total search-result count onto 5-100. More results
// means more competition, so higher is worse for opportunity-seekers.
// The breakpoints are tunable; monotonicity is the invariant.
func VolumeScore(totalResults int64) float64 {
	switch {
	case totalResults > 1_000_000:
		return 100
	case totalResults > 500_000:
		return 90
	case totalResults > 100_000:
		return 75
	case totalResults > 50_000:
		return 60
	case totalResults > 10_000:
		return 45
	case totalResults > 1_000:
		return 30
	case totalResults > 100:
		return 15
	default:
		return 5
	}
}

// AuthorityScore measures how dominated the top results are by large
// channels, 0-100. Normalized by the actual video count so a topic with
// three results is scored on the same scale as one with ten — dividing
// by a fixed K would understate competition on thin result sets.
func AuthorityScore(videos []Video) float64 {
	if len(videos) == 0 {
		return 0
	}

	raw := 0.0
	for _, v := range videos {
		switch {
		case v.ChannelSubs > megaChannelSubs:
			raw += megaChannelPoints
		case v.ChannelSubs > largeChannelSubs:
			raw += largeChannelPoints
		case v.ChannelSubs > medChannelSubs:
			raw += medChannelPoints
		}
	}

	normalized := raw / float64(len(videos)) * 10
	return math.Min(math.Round(normalized), 100)
}

// FreshnessScore measures how recently the competition published, 0-100.
// Higher means an actively contested topic. Same count-normalization as
// AuthorityScore.
func FreshnessScore(videos []Video) float64 {
	if len(videos) == 0 {
		return 0
	}

	raw := 0.0
	for _, v := range videos {
		switch {
		case v.DaysOld <= veryRecentDays:
			raw += veryRecentPoints
		case v.DaysOld <= recentDays:
			raw += recentPoints
		case v.DaysOld <= agingDays:
			raw += agingPoints
		}
	}

	normalized := raw / float64(len(videos)) * 10
	return math.Min(math.Round(normalized), 100)
}

// SupplyScore is the composite competitive-saturation score, a fixed
// convex combination of the three sub-scores (weights from config).
func (s *Scorer) SupplyScore(volumeScore, authorityScore, freshnessScore float64) float64 {
	volumeScore = clamp(volumeScore, 0, 100)
	authorityScore = clamp(authorityScore, 0, 100)
	freshnessScore = clamp(freshnessScore, 0, 100)

	composite := volumeScore*s.cfg.SupplyWeights.Volume +
		authorityScore*s.cfg.SupplyWeights.Authority +
		freshnessScore*s.cfg.SupplyWeights.Freshness

	return math.Round(composite)
}

// OpportunityFlags derives the gap diagnostics surfaced alongside the
// ranked score.
func OpportunityFlags(authorityScore, freshnessScore float64, totalResults int64, momentum float64) Flags {
	return Flags{
		HasAuthorityGap: authorityScore < authorityGapBelow,
		HasFreshnessGap: freshnessScore < freshnessGapBelow,
		IsUnderserved:   totalResults < underservedResults && momentum > underservedMomentum,
	}
}
