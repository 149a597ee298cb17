package opportunity

import (
	"context"
	"fmt"
	"time"

	"github.com/juggajay/nicheradar/internal/store"
	"github.com/juggajay/nicheradar/pkg/scoring"
)

// CheckResult is the outcome of a verified YouTube supply check.
type CheckResult struct {
	Keyword      string  `json:"keyword"`
	Supply       float64 `json:"supply"`
	TotalResults int64   `json:"total_results"`
	Videos7d     int     `json:"videos_7d"`
	Videos30d    int     `json:"videos_30d"`
	GapScore     float64 `json:"gap_score,omitempty"`
	Phase        string  `json:"phase,omitempty"`
	Tracked      bool    `json:"tracked"`
}

// CheckSupply runs a live YouTube check for a keyword. When the keyword
// maps to a tracked topic, the snapshot is persisted and the opportunity
// reclassified with confidence forced to high. Untracked keywords still
// get a computed supply score back.
func (e *Engine) CheckSupply(ctx context.Context, keyword string) (*CheckResult, error) {
	if e.youtube == nil {
		return nil, fmt.Errorf("supply checks disabled: no youtube client configured")
	}

	res, err := e.youtube.CheckSupply(ctx, keyword)
	if err != nil {
		return nil, fmt.Errorf("check supply %q: %w", keyword, err)
	}

	videos := make([]scoring.Video, 0, len(res.Videos))
	for _, v := range res.Videos {
		videos = append(videos, scoring.Video{ChannelSubs: v.ChannelSubs, DaysOld: v.DaysOld})
	}

	volume := scoring.VolumeScore(res.TotalResults)
	authority := scoring.AuthorityScore(videos)
	freshness := scoring.FreshnessScore(videos)
	supply := e.scorer.SupplyScore(volume, authority, freshness)
	supply = e.scorer.GigaAdjustedSupply(keyword, supply)

	result := &CheckResult{
		Keyword:      keyword,
		Supply:       supply,
		TotalResults: res.TotalResults,
		Videos7d:     res.Videos7d,
		Videos30d:    res.Videos30d,
	}

	key := scoring.NormalizeTopicKey(keyword)
	topic, err := e.store.GetTopicByKey(ctx, key)
	if err != nil {
		return nil, err
	}
	if topic == nil {
		return result, nil
	}

	unlock := e.lockTopic(key)
	defer unlock()

	now := time.Now().UTC()
	snap := &store.SupplySnapshot{
		TopicID:        topic.ID,
		CheckedAt:      now,
		TotalResults:   res.TotalResults,
		Videos7d:       res.Videos7d,
		Videos30d:      res.Videos30d,
		Videos90d:      res.Videos90d,
		VolumeScore:    volume,
		AuthorityScore: authority,
		FreshnessScore: freshness,
		SupplyScore:    supply,
		Verified:       true,
	}
	for _, v := range res.Videos {
		snap.TopVideos = append(snap.TopVideos, store.TopVideo{
			VideoID:     v.VideoID,
			Title:       v.Title,
			ChannelName: v.ChannelName,
			ChannelSubs: v.ChannelSubs,
			Views:       v.Views,
			DaysOld:     v.DaysOld,
		})
	}
	if err := e.store.InsertSupplySnapshot(ctx, snap); err != nil {
		return nil, err
	}

	history, err := e.loadHistory(ctx, topic.ID)
	if err != nil {
		return nil, err
	}
	momentum := e.storedMomentum(history)

	velocity := e.scorer.ComputeVelocity(history, momentum, now)
	cls := e.scorer.Classify(momentum, supply, velocity.Trend, topic.FirstSeenAt, now)
	cls.Confidence = e.scorer.ClassifyConfidence(momentum, supply, true)
	flags := scoring.OpportunityFlags(authority, freshness, res.TotalResults, momentum)

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
		HasAuthorityGap:    flags.HasAuthorityGap,
		HasFreshnessGap:    flags.HasFreshnessGap,
		IsUnderserved:      flags.IsUnderserved,
		CalculatedAt:       now,
	}
	if existing, err := e.store.GetOpportunityByTopic(ctx, topic.ID); err == nil && existing != nil {
		opp.CrossPlatformCount = existing.CrossPlatformCount
	}
	if err := e.store.UpsertOpportunity(ctx, opp); err != nil {
		return nil, err
	}

	result.Tracked = true
	result.GapScore = cls.GapScore
	result.Phase = string(cls.Phase)

	e.log.Info().
		Str("keyword", keyword).
		Float64("supply", supply).
		Float64("gap", cls.GapScore).
		Msg("supply verified")

	return result, nil
}

// storedMomentum reads the most recent momentum from history. Topics with
// signals but no momentum tracking read as the legacy default.
func (e *Engine) storedMomentum(history []scoring.SignalPoint) float64 {
	if len(history) == 0 {
		return e.scorer.LegacyMomentum()
	}
	latest := history[0]
	for _, p := range history[1:] {
		if p.RecordedAt.After(latest.RecordedAt) {
			latest = p
		}
	}
	if latest.Momentum <= 0 {
		return e.scorer.LegacyMomentum()
	}
	return latest.Momentum
}

// Recalculate reclassifies every stored opportunity from persisted
// signals and snapshots without touching external services.
func (e *Engine) Recalculate(ctx context.Context) (int, error) {
	opps, err := e.store.ListOpportunities(ctx, store.OpportunityListOpts{Limit: 1000})
	if err != nil {
		return 0, fmt.Errorf("recalculate: %w", err)
	}

	now := time.Now().UTC()
	updated := 0

	for i := range opps {
		opp := opps[i]
		if err := e.recalculateOne(ctx, &opp, now); err != nil {
			e.log.Warn().Err(err).Str("keyword", opp.Keyword).Msg("recalculate failed")
			continue
		}
		updated++
	}

	e.log.Info().Int("updated", updated).Msg("recalculation completed")
	return updated, nil
}

func (e *Engine) recalculateOne(ctx context.Context, opp *store.Opportunity, now time.Time) error {
	topic, err := e.store.GetTopic(ctx, opp.TopicID)
	if err != nil {
		return err
	}
	if topic == nil {
		return fmt.Errorf("topic %s missing", opp.TopicID)
	}

	unlock := e.lockTopic(topic.KeywordNorm)
	defer unlock()

	history, err := e.loadHistory(ctx, topic.ID)
	if err != nil {
		return err
	}
	momentum := e.storedMomentum(history)

	supply := e.scorer.DefaultSupply()
	verified := false
	var flags scoring.Flags

	snap, err := e.store.LatestSupply(ctx, topic.ID)
	if err != nil {
		return err
	}
	if snap != nil {
		supply = snap.SupplyScore
		verified = snap.Verified
		flags = scoring.OpportunityFlags(snap.AuthorityScore, snap.FreshnessScore, snap.TotalResults, momentum)
	}

	velocity := e.scorer.ComputeVelocity(history, momentum, now)
	cls := e.scorer.Classify(momentum, supply, velocity.Trend, topic.FirstSeenAt, now)
	cls.Confidence = e.scorer.ClassifyConfidence(momentum, supply, verified)

	opp.Momentum = momentum
	opp.Supply = supply
	opp.GapScore = cls.GapScore
	opp.GapScoreV1 = cls.GapScoreV1
	opp.Phase = string(cls.Phase)
	opp.Confidence = string(cls.Confidence)
	opp.Velocity24h = velocity.Velocity24h
	opp.Velocity7d = velocity.Velocity7d
	opp.VelocityTrend = trendPtr(velocity.Trend)
	opp.HasAuthorityGap = flags.HasAuthorityGap
	opp.HasFreshnessGap = flags.HasFreshnessGap
	opp.IsUnderserved = flags.IsUnderserved
	opp.CalculatedAt = now

	return e.store.UpsertOpportunity(ctx, opp)
}
