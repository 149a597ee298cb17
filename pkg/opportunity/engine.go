// Package opportunity runs the scoring pipeline: fuse collected posts
// into topics, score them, persist signals and rank opportunities.
package opportunity

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/juggajay/nicheradar/internal/store"
	"github.com/juggajay/nicheradar/pkg/extract"
	"github.com/juggajay/nicheradar/pkg/scoring"
	"github.com/juggajay/nicheradar/pkg/source"
)

// SupplyChecker verifies YouTube content supply for a keyword.
type SupplyChecker interface {
	CheckSupply(ctx context.Context, keyword string) (*source.SupplyResult, error)
	Suggest(ctx context.Context, query string) ([]string, error)
}

// Engine drives the scan, check and recalculate pipelines.
type Engine struct {
	store     store.Store
	scorer    *scoring.Scorer
	extractor extract.Extractor
	youtube   SupplyChecker // optional, nil = supply checks disabled
	log       zerolog.Logger

	mu         sync.Mutex
	topicLocks map[string]*sync.Mutex
}

// NewEngine creates a new pipeline engine.
func NewEngine(s store.Store, scorer *scoring.Scorer, extractor extract.Extractor, youtube SupplyChecker, log zerolog.Logger) *Engine {
	if scorer == nil {
		scorer = scoring.New(scoring.DefaultConfig())
	}
	if extractor == nil {
		extractor = extract.Heuristic{}
	}
	return &Engine{
		store:      s,
		scorer:     scorer,
		extractor:  extractor,
		youtube:    youtube,
		log:        log,
		topicLocks: make(map[string]*sync.Mutex),
	}
}

// lockTopic serializes upserts per topic key so concurrent pipelines
// cannot interleave create/touch/upsert for the same topic.
func (e *Engine) lockTopic(key string) func() {
	e.mu.Lock()
	l, ok := e.topicLocks[key]
	if !ok {
		l = &sync.Mutex{}
		e.topicLocks[key] = l
	}
	e.mu.Unlock()

	l.Lock()
	return l.Unlock
}

// ScanResult summarizes one scan batch.
type ScanResult struct {
	ScanID               int64 `json:"scan_id"`
	PostsCollected       int   `json:"posts_collected"`
	TopicsUpdated        int   `json:"topics_updated"`
	OpportunitiesCreated int   `json:"opportunities_created"`
	Rejected             int   `json:"rejected"`
}

type candidateMeta struct {
	display  string
	category string
}

// Scan processes one batch of collected posts end to end: extract topic
// candidates, fuse across platforms, score, and upsert topics, signals
// and opportunities. Per-topic failures are logged and skipped; a bad
// candidate never aborts the batch.
func (e *Engine) Scan(ctx context.Context, posts []source.Post) (*ScanResult, error) {
	now := time.Now().UTC()

	scanID, err := e.store.StartScan(ctx, now)
	if err != nil {
		return nil, fmt.Errorf("start scan: %w", err)
	}

	result := &ScanResult{ScanID: scanID, PostsCollected: len(posts)}

	batch, meta := e.buildBatch(ctx, posts, now)
	groups := scoring.FuseCrossPlatform(batch)

	keys := make([]string, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		g := groups[key]
		m := meta[key]

		created, err := e.scoreGroup(ctx, g, m, now)
		if err != nil {
			if err == errRejected {
				result.Rejected++
				continue
			}
			e.log.Warn().Err(err).Str("topic", key).Msg("topic scoring failed")
			continue
		}
		result.TopicsUpdated++
		if created {
			result.OpportunitiesCreated++
		}
	}

	completed := time.Now().UTC()
	if err := e.store.FinishScan(ctx, &store.ScanLog{
		ID:                   scanID,
		CompletedAt:          &completed,
		Status:               "completed",
		PostsCollected:       result.PostsCollected,
		TopicsUpdated:        result.TopicsUpdated,
		OpportunitiesCreated: result.OpportunitiesCreated,
	}); err != nil {
		e.log.Warn().Err(err).Int64("scan_id", scanID).Msg("finish scan failed")
	}

	e.log.Info().
		Int("posts", result.PostsCollected).
		Int("topics", result.TopicsUpdated).
		Int("created", result.OpportunitiesCreated).
		Int("rejected", result.Rejected).
		Msg("scan completed")

	return result, nil
}

// buildBatch extracts topic candidates from every post title and expands
// them into one scoring post per (candidate, post) pair.
func (e *Engine) buildBatch(ctx context.Context, posts []source.Post, now time.Time) ([]scoring.Post, map[string]candidateMeta) {
	titles := make([]string, len(posts))
	for i, p := range posts {
		titles[i] = p.Title
	}

	candidates, err := e.extractor.Extract(ctx, titles)
	if err != nil {
		e.log.Warn().Err(err).Msg("extractor failed, falling back to heuristic")
		candidates, _ = extract.Heuristic{}.Extract(ctx, titles)
	}

	var batch []scoring.Post
	meta := make(map[string]candidateMeta)

	for i, post := range posts {
		for _, candidate := range candidates[i] {
			key := scoring.NormalizeTopicKey(candidate)
			if key == "" {
				continue
			}

			batch = append(batch, scoring.Post{
				Topic:    candidate,
				Platform: scoring.Platform(post.Platform),
				Score:    post.Score,
				Comments: post.Comments,
				HoursOld: post.HoursOld(now),
				URL:      post.URL,
			})

			if _, ok := meta[key]; !ok {
				category := post.Category
				if category == "" {
					category = "uncategorised"
				}
				meta[key] = candidateMeta{display: candidate, category: category}
			}
		}
	}

	return batch, meta
}

var errRejected = fmt.Errorf("candidate rejected")

func (e *Engine) scoreGroup(ctx context.Context, g *scoring.TopicGroup, m candidateMeta, now time.Time) (created bool, err error) {
	if verdict := e.scorer.FilterCandidate(m.display); !verdict.Accepted {
		return false, errRejected
	}

	unlock := e.lockTopic(g.Key)
	defer unlock()

	topic, err := e.upsertTopic(ctx, g.Key, m, now)
	if err != nil {
		return false, err
	}

	history, err := e.loadHistory(ctx, topic.ID)
	if err != nil {
		return false, err
	}

	sig := buildSignal(topic.ID, g, now)
	momentum := e.groupMomentum(g, now)
	sig.Momentum = momentum

	if err := e.store.InsertSignal(ctx, sig); err != nil {
		return false, err
	}

	snap, err := e.store.LatestSupply(ctx, topic.ID)
	if err != nil {
		return false, err
	}

	supply := e.scorer.DefaultSupply()
	verified := false
	var flags scoring.Flags
	if snap != nil {
		supply = snap.SupplyScore
		verified = snap.Verified
		flags = scoring.OpportunityFlags(snap.AuthorityScore, snap.FreshnessScore, snap.TotalResults, momentum)
	}

	velocity := e.scorer.ComputeVelocity(history, momentum, now)
	cls := e.scorer.Classify(momentum, supply, velocity.Trend, topic.FirstSeenAt, now)
	cls.Confidence = e.scorer.ClassifyConfidence(momentum, supply, verified)

	existing, err := e.store.GetOpportunityByTopic(ctx, topic.ID)
	if err != nil {
		return false, err
	}

	opp := &store.Opportunity{
		TopicID:            topic.ID,
		Keyword:            topic.Keyword,
		Category:           topic.Category,
		Momentum:           momentum,
		Supply:             supply,
		GapScore:           cls.GapScore,
		GapScoreV1:         cls.GapScoreV1,
		Phase:              string(cls.Phase),
		Confidence:         string(cls.Confidence),
		Velocity24h:        velocity.Velocity24h,
		Velocity7d:         velocity.Velocity7d,
		VelocityTrend:      trendPtr(velocity.Trend),
		CrossPlatformCount: len(g.Platforms),
		HasAuthorityGap:    flags.HasAuthorityGap,
		HasFreshnessGap:    flags.HasFreshnessGap,
		IsUnderserved:      flags.IsUnderserved,
		CalculatedAt:       now,
	}
	if err := e.store.UpsertOpportunity(ctx, opp); err != nil {
		return false, err
	}

	return existing == nil, nil
}

func (e *Engine) upsertTopic(ctx context.Context, key string, m candidateMeta, now time.Time) (*store.Topic, error) {
	topic, err := e.store.GetTopicByKey(ctx, key)
	if err != nil {
		return nil, err
	}
	if topic != nil {
		if err := e.store.TouchTopic(ctx, topic.ID, now); err != nil {
			return nil, err
		}
		topic.LastSeenAt = now
		return topic, nil
	}

	topic = &store.Topic{
		ID:          uuid.NewString(),
		Keyword:     m.display,
		KeywordNorm: key,
		Category:    m.category,
		FirstSeenAt: now,
		LastSeenAt:  now,
		Active:      true,
	}
	if err := e.store.CreateTopic(ctx, topic); err != nil {
		return nil, err
	}
	return topic, nil
}

func (e *Engine) loadHistory(ctx context.Context, topicID string) ([]scoring.SignalPoint, error) {
	signals, err := e.store.ListSignals(ctx, topicID, 100)
	if err != nil {
		return nil, err
	}
	points := make([]scoring.SignalPoint, 0, len(signals))
	for _, s := range signals {
		points = append(points, scoring.SignalPoint{
			Momentum:   s.Momentum,
			RecordedAt: s.RecordedAt,
		})
	}
	return points, nil
}

// groupMomentum scores the fused group's combined engagement at the age
// of its freshest post, then applies the platform presence multiplier.
func (e *Engine) groupMomentum(g *scoring.TopicGroup, now time.Time) float64 {
	comments := 0
	hoursOld := math.Inf(1)
	for _, p := range g.Posts {
		comments += p.Comments
		if p.HoursOld < hoursOld {
			hoursOld = p.HoursOld
		}
	}
	if math.IsInf(hoursOld, 1) {
		hoursOld = 0
	}

	momentum := e.scorer.Momentum(g.TotalScore, comments, hoursOld)
	return math.Min(math.Round(momentum*g.Multiplier), 100)
}

func buildSignal(topicID string, g *scoring.TopicGroup, now time.Time) *store.Signal {
	sig := &store.Signal{
		TopicID:       topicID,
		RecordedAt:    now,
		PlatformCount: len(g.Platforms),
		Strength:      g.Strength,
	}
	for _, platform := range g.Platforms {
		sig.Platforms = append(sig.Platforms, string(platform))
	}
	for _, p := range g.Posts {
		switch p.Platform {
		case scoring.PlatformReddit:
			sig.RedditScore += p.Score
			sig.RedditComments += p.Comments
		case scoring.PlatformHackerNews:
			sig.HNScore += p.Score
			sig.HNComments += p.Comments
		}
	}
	return sig
}

func trendPtr(t scoring.Trend) *string {
	if t == "" {
		return nil
	}
	s := string(t)
	return &s
}
