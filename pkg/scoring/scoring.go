// Package scoring is the opportunity-scoring engine: pure functions that
// turn raw engagement signals, YouTube supply statistics and historical
// momentum series into a ranked, explainable gap score.
//
// Every function here is total over its documented domain. Bad numeric
// input is clamped, missing data is modeled with nil fields, and nothing
// in this package performs I/O.
package scoring

import "time"

// Platform identifies the source of a collected post.
type Platform string

const (
	PlatformReddit     Platform = "reddit"
	PlatformHackerNews Platform = "hackernews"
	PlatformRSS        Platform = "rss"
)

// Post is one collected post attributed to a topic candidate. The URL is
// the unique identifier used for ranking within a batch.
type Post struct {
	Topic    string
	Platform Platform
	Score    int
	Comments int
	HoursOld float64
	URL      string
}

// Video describes one competing YouTube result.
type Video struct {
	ChannelSubs int64
	DaysOld     int
}

// SignalPoint is one historical momentum measurement.
type SignalPoint struct {
	Momentum   float64
	RecordedAt time.Time
}

// Trend is the velocity classification. Empty means no 7-day data.
type Trend string

const (
	TrendAccelerating Trend = "accelerating"
	TrendStable       Trend = "stable"
	TrendDeclining    Trend = "declining"
)

// Phase is the opportunity lifecycle label.
type Phase string

const (
	PhaseInnovation Phase = "innovation"
	PhaseEmergence  Phase = "emergence"
	PhaseGrowth     Phase = "growth"
	PhaseMaturity   Phase = "maturity"
	PhaseSaturated  Phase = "saturated"
)

// Confidence labels score reliability.
type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

// Scorer applies a Config. It is stateless and safe for concurrent use.
type Scorer struct {
	cfg Config
}

// New creates a Scorer. Zero-valued weights fall back to the defaults so
// a partially filled config file cannot silently zero out the formula.
func New(cfg Config) *Scorer {
	def := DefaultConfig()
	if cfg.Decay == "" {
		cfg.Decay = def.Decay
	}
	if cfg.SupplyWeights.Volume+cfg.SupplyWeights.Authority+cfg.SupplyWeights.Freshness == 0 {
		cfg.SupplyWeights = def.SupplyWeights
	}
	if cfg.Phases == (PhaseThresholds{}) {
		cfg.Phases = def.Phases
	}
	if cfg.Velocity == (VelocityConfig{}) {
		cfg.Velocity = def.Velocity
	}
	if cfg.Confidence == (ConfidenceRules{}) {
		cfg.Confidence = def.Confidence
	}
	if cfg.MomentumFloor == 0 {
		cfg.MomentumFloor = def.MomentumFloor
	}
	if cfg.NewTopicBonus == 0 {
		cfg.NewTopicBonus = def.NewTopicBonus
	}
	if cfg.NewTopicWindowHours == 0 {
		cfg.NewTopicWindowHours = def.NewTopicWindowHours
	}
	if cfg.DefaultSupply == 0 {
		cfg.DefaultSupply = def.DefaultSupply
	}
	if cfg.LegacyMomentum == 0 {
		cfg.LegacyMomentum = def.LegacyMomentum
	}
	if cfg.ColdStartMomentum == 0 {
		cfg.ColdStartMomentum = def.ColdStartMomentum
	}
	if cfg.GigaTopics == nil {
		cfg.GigaTopics = def.GigaTopics
	}
	if cfg.GigaPartialPenalty == 0 {
		cfg.GigaPartialPenalty = def.GigaPartialPenalty
	}
	return &Scorer{cfg: cfg}
}

// Config returns the effective configuration.
func (s *Scorer) Config() Config { return s.cfg }

// DefaultSupply is the supply assumed before any YouTube check.
func (s *Scorer) DefaultSupply() float64 { return s.cfg.DefaultSupply }

// ColdStartMomentum is the momentum assumed for entirely unknown topics.
func (s *Scorer) ColdStartMomentum() float64 { return s.cfg.ColdStartMomentum }

// LegacyMomentum is the momentum assumed for known topics whose stored
// signal predates momentum tracking.
func (s *Scorer) LegacyMomentum() float64 { return s.cfg.LegacyMomentum }
