package scoring

import "time"

// SupplyObservation is parsed YouTube data for one topic. Verified means
// it came from a live API check rather than a stored heuristic pass.
type SupplyObservation struct {
	TotalResults int64
	Videos       []Video
	Verified     bool
}

// CandidateInput bundles everything known about one candidate at scoring
// time. History, FirstSeenAt and Supply are all optional; a first-pass
// caller typically has none of them yet.
type CandidateInput struct {
	Post        Post
	History     []SignalPoint
	FirstSeenAt time.Time
	Supply      *SupplyObservation
	Now         time.Time
}

// CandidateScore is the single-call scoring result.
type CandidateScore struct {
	Accepted bool
	Reason   string

	Momentum float64
	// Supply is nil when no YouTube data exists yet; the gap score then
	// assumes the documented default supply.
	Supply     *float64
	GapScore   float64
	Phase      Phase
	Confidence Confidence
	Flags      Flags
	Velocity   VelocityResult
}

// ScoreCandidate runs the whole engine for one raw post: candidate
// filter, momentum, supply (when observed), velocity and classification.
// It never fails; rejected candidates come back with Accepted=false and
// zero scores.
func (s *Scorer) ScoreCandidate(in CandidateInput) CandidateScore {
	if verdict := s.FilterCandidate(in.Post.Topic); !verdict.Accepted {
		return CandidateScore{Reason: verdict.Reason}
	}

	now := in.Now
	if now.IsZero() {
		now = time.Now().UTC()
	}

	momentum := s.Momentum(in.Post.Score, in.Post.Comments, in.Post.HoursOld)

	supply := s.cfg.DefaultSupply
	var observed *float64
	var flags Flags
	verified := false

	if in.Supply != nil {
		volume := VolumeScore(in.Supply.TotalResults)
		authority := AuthorityScore(in.Supply.Videos)
		freshness := FreshnessScore(in.Supply.Videos)
		supply = s.SupplyScore(volume, authority, freshness)
		supply = s.GigaAdjustedSupply(in.Post.Topic, supply)
		flags = OpportunityFlags(authority, freshness, in.Supply.TotalResults, momentum)
		verified = in.Supply.Verified
		observed = &supply
	}

	velocity := s.ComputeVelocity(in.History, momentum, now)
	c := s.Classify(momentum, supply, velocity.Trend, in.FirstSeenAt, now)
	if verified {
		c.Confidence = ConfidenceHigh
	}

	return CandidateScore{
		Accepted:   true,
		Momentum:   momentum,
		Supply:     observed,
		GapScore:   c.GapScore,
		Phase:      c.Phase,
		Confidence: c.Confidence,
		Flags:      flags,
		Velocity:   velocity,
	}
}
