package scoring

import "math"

// Config holds every tunable weight and threshold used by the scorer.
// Alternative tunings are a config change, not a code change.
type Config struct {
	// Decay selects the recency strategy for the whole pipeline.
	// One strategy per pipeline; never mixed within a single gap computation.
	Decay DecayStrategy `yaml:"decay"`

	// MomentumFloor is the lower clamp for freshly computed momentum.
	// Stored historical values may sit below it.
	MomentumFloor float64 `yaml:"momentum_floor"`

	SupplyWeights SupplyWeights   `yaml:"supply_weights"`
	Phases        PhaseThresholds `yaml:"phases"`
	Velocity      VelocityConfig  `yaml:"velocity"`
	Confidence    ConfidenceRules `yaml:"confidence"`

	// NewTopicBonus multiplies the gap score for topics first seen
	// within NewTopicWindowHours of the scoring pass.
	NewTopicBonus       float64 `yaml:"new_topic_bonus"`
	NewTopicWindowHours float64 `yaml:"new_topic_window_hours"`

	// DefaultSupply is used before any YouTube check has run.
	DefaultSupply float64 `yaml:"default_supply"`
	// LegacyMomentum is assumed when a topic has a record but no stored
	// momentum; ColdStartMomentum when the topic is entirely unknown.
	LegacyMomentum    float64 `yaml:"legacy_momentum"`
	ColdStartMomentum float64 `yaml:"cold_start_momentum"`

	// GigaTopics is the denylist of oversaturated terms. An exact match
	// (or "<term> tutorial"/"<term> guide") is rejected outright; a
	// candidate merely containing a denylisted token takes
	// GigaPartialPenalty extra supply instead.
	GigaTopics         []string `yaml:"giga_topics"`
	GigaPartialPenalty float64  `yaml:"giga_partial_penalty"`
}

// SupplyWeights is the convex combination for the composite supply score.
// Must sum to 1.0.
type SupplyWeights struct {
	Volume    float64 `yaml:"volume"`
	Authority float64 `yaml:"authority"`
	Freshness float64 `yaml:"freshness"`
}

// PhaseThresholds is the lifecycle phase table, evaluated in order on
// (gap score, supply score), first match wins.
type PhaseThresholds struct {
	InnovationGap    float64 `yaml:"innovation_gap"`
	InnovationSupply float64 `yaml:"innovation_supply"`
	EmergenceGap     float64 `yaml:"emergence_gap"`
	EmergenceSupply  float64 `yaml:"emergence_supply"`
	GrowthGap        float64 `yaml:"growth_gap"`
	MaturityGap      float64 `yaml:"maturity_gap"`
}

// VelocityConfig holds the trend cutoffs and gap multipliers.
type VelocityConfig struct {
	AcceleratingAbove float64 `yaml:"accelerating_above"` // 7d velocity %
	DecliningBelow    float64 `yaml:"declining_below"`

	AcceleratingMultiplier float64 `yaml:"accelerating_multiplier"`
	StableMultiplier       float64 `yaml:"stable_multiplier"`
	DecliningMultiplier    float64 `yaml:"declining_multiplier"`
}

// ConfidenceRules classifies score reliability.
type ConfidenceRules struct {
	HighMomentum    float64 `yaml:"high_momentum"`     // momentum >= this
	HighSupplyBelow float64 `yaml:"high_supply_below"` // AND supply < this
	MediumMomentum  float64 `yaml:"medium_momentum"`
}

// DefaultConfig returns the production tuning.
func DefaultConfig() Config {
	return Config{
		Decay:         DecayPlateau,
		MomentumFloor: 10,
		SupplyWeights: SupplyWeights{
			Volume:    0.40,
			Authority: 0.35,
			Freshness: 0.25,
		},
		Phases: PhaseThresholds{
			InnovationGap:    60,
			InnovationSupply: 30,
			EmergenceGap:     45,
			EmergenceSupply:  50,
			GrowthGap:        30,
			MaturityGap:      15,
		},
		Velocity: VelocityConfig{
			AcceleratingAbove:      30,
			DecliningBelow:         -15,
			AcceleratingMultiplier: 1.2,
			StableMultiplier:       1.0,
			DecliningMultiplier:    0.7,
		},
		Confidence: ConfidenceRules{
			HighMomentum:    60,
			HighSupplyBelow: 40,
			MediumMomentum:  40,
		},
		NewTopicBonus:       1.15,
		NewTopicWindowHours: 48,
		DefaultSupply:       50,
		LegacyMomentum:      50,
		ColdStartMomentum:   20,
		GigaTopics:          DefaultGigaTopics(),
		GigaPartialPenalty:  15,
	}
}

// DefaultGigaTopics is the stock denylist: general-purpose languages,
// mega-platforms and generic industry buzzwords that are always fully
// saturated on YouTube.
func DefaultGigaTopics() []string {
	return []string{
		// languages and core web tech
		"python", "javascript", "java", "c++", "c#", "go", "golang",
		"rust", "typescript", "php", "ruby", "swift", "kotlin",
		"html", "css", "sql", "bash",
		// frameworks and tools everyone already covers
		"react", "angular", "vue", "node.js", "nodejs", "django",
		"flask", "spring boot", "docker", "kubernetes", "git", "linux",
		"excel", "powerpoint", "photoshop", "blender", "unity", "unreal engine",
		// mega-platforms
		"youtube", "facebook", "instagram", "tiktok", "twitter",
		"whatsapp", "snapchat", "netflix", "amazon", "google", "apple",
		"minecraft", "fortnite", "roblox", "gta",
		// generic buzzwords
		"ai", "artificial intelligence", "machine learning", "chatgpt",
		"crypto", "cryptocurrency", "bitcoin", "blockchain", "nft",
		"programming", "coding", "web development", "data science",
		"marketing", "digital marketing", "seo", "dropshipping",
		"affiliate marketing", "passive income", "make money online",
		"fitness", "weight loss", "yoga", "meditation", "cooking",
		"makeup", "gaming", "travel", "vlog",
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// round1 rounds to one decimal, the documented gap score precision.
func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
