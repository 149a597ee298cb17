package store

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func newTestTopic(keyword, norm string, firstSeen time.Time) *Topic {
	return &Topic{
		ID:          uuid.NewString(),
		Keyword:     keyword,
		KeywordNorm: norm,
		Category:    "ai",
		FirstSeenAt: firstSeen,
		LastSeenAt:  firstSeen,
		Active:      true,
	}
}

func TestTopicLifecycle(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Second)

	topic := newTestTopic("DeepSeek R1", "deepseek r1", now)
	require.NoError(t, s.CreateTopic(ctx, topic))

	got, err := s.GetTopicByKey(ctx, "deepseek r1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, topic.ID, got.ID)
	assert.Equal(t, "DeepSeek R1", got.Keyword)
	assert.True(t, got.Active)

	missing, err := s.GetTopicByKey(ctx, "nope")
	require.NoError(t, err)
	assert.Nil(t, missing)

	later := now.Add(2 * time.Hour)
	require.NoError(t, s.TouchTopic(ctx, topic.ID, later))

	got, err = s.GetTopic(ctx, topic.ID)
	require.NoError(t, err)
	assert.Equal(t, later, got.LastSeenAt.UTC())
	assert.Equal(t, now, got.FirstSeenAt.UTC(), "first seen never moves")
}

func TestTopicKeyIsUnique(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	now := time.Now().UTC()

	require.NoError(t, s.CreateTopic(ctx, newTestTopic("Bun Bundler", "bun bundler", now)))
	err := s.CreateTopic(ctx, newTestTopic("bun Bundler", "bun bundler", now))
	assert.Error(t, err)
}

func TestSignalsAppendOnly(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Second)

	topic := newTestTopic("Xr0 Verifier", "xr0 verifier", now)
	require.NoError(t, s.CreateTopic(ctx, topic))

	for i, momentum := range []float64{40, 55, 70} {
		sig := &Signal{
			TopicID:       topic.ID,
			RecordedAt:    now.Add(time.Duration(i) * time.Hour),
			RedditScore:   100 * (i + 1),
			Momentum:      momentum,
			Platforms:     []string{"reddit", "hackernews"},
			PlatformCount: 2,
			Strength:      75,
		}
		require.NoError(t, s.InsertSignal(ctx, sig))
		assert.NotZero(t, sig.ID)
	}

	signals, err := s.ListSignals(ctx, topic.ID, 10)
	require.NoError(t, err)
	require.Len(t, signals, 3)
	// Newest first.
	assert.Equal(t, 70.0, signals[0].Momentum)
	assert.Equal(t, []string{"reddit", "hackernews"}, signals[0].Platforms)
}

func TestSupplySnapshots_LatestWins(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Second)

	topic := newTestTopic("Local-First Sync", "local-first sync", now)
	require.NoError(t, s.CreateTopic(ctx, topic))

	none, err := s.LatestSupply(ctx, topic.ID)
	require.NoError(t, err)
	assert.Nil(t, none)

	older := &SupplySnapshot{
		TopicID:      topic.ID,
		CheckedAt:    now.Add(-24 * time.Hour),
		TotalResults: 5000,
		SupplyScore:  42,
	}
	newer := &SupplySnapshot{
		TopicID:      topic.ID,
		CheckedAt:    now,
		TotalResults: 9000,
		Videos7d:     3,
		TopVideos: []TopVideo{
			{VideoID: "abc", Title: "Sync engines explained", ChannelSubs: 12000, DaysOld: 4},
		},
		VolumeScore:    55,
		AuthorityScore: 10,
		FreshnessScore: 30,
		SupplyScore:    33,
		Verified:       true,
	}
	require.NoError(t, s.InsertSupplySnapshot(ctx, older))
	require.NoError(t, s.InsertSupplySnapshot(ctx, newer))

	got, err := s.LatestSupply(ctx, topic.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, int64(9000), got.TotalResults)
	assert.True(t, got.Verified)
	require.Len(t, got.TopVideos, 1)
	assert.Equal(t, "Sync engines explained", got.TopVideos[0].Title)
}

func TestUpsertOpportunity_OneRowPerTopic(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Second)

	topic := newTestTopic("DeepSeek R1", "deepseek r1", now)
	require.NoError(t, s.CreateTopic(ctx, topic))

	v24 := 50.0
	trend := "accelerating"
	o := &Opportunity{
		TopicID:       topic.ID,
		Keyword:       "DeepSeek R1",
		Category:      "ai",
		Momentum:      85,
		Supply:        23,
		GapScore:      90.3,
		GapScoreV1:    65.5,
		Phase:         "innovation",
		Confidence:    "high",
		Velocity24h:   &v24,
		VelocityTrend: &trend,
		IsUnderserved: true,
		CalculatedAt:  now,
	}
	require.NoError(t, s.UpsertOpportunity(ctx, o))
	require.NotZero(t, o.ID)
	firstID := o.ID

	// Mark it watched, then rescore. UI state must survive the upsert.
	require.NoError(t, s.SetWatched(ctx, o.ID, true))
	require.NoError(t, s.SetNotes(ctx, o.ID, "record this week"))

	o.Momentum = 60
	o.GapScore = 44.1
	o.Phase = "emergence"
	o.Velocity24h = nil
	o.VelocityTrend = nil
	require.NoError(t, s.UpsertOpportunity(ctx, o))
	assert.Equal(t, firstID, o.ID)

	got, err := s.GetOpportunityByTopic(ctx, topic.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, 44.1, got.GapScore)
	assert.Equal(t, "emergence", got.Phase)
	assert.Nil(t, got.Velocity24h)
	assert.Nil(t, got.VelocityTrend)
	assert.True(t, got.Watched)
	assert.Equal(t, "record this week", got.Notes)
}

func TestListOpportunities_Filters(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Second)

	seed := []struct {
		keyword string
		gap     float64
		phase   string
	}{
		{"DeepSeek R1", 90.3, "innovation"},
		{"Bun Bundler", 48.0, "emergence"},
		{"Old News", 5.0, "saturated"},
	}
	for _, row := range seed {
		topic := newTestTopic(row.keyword, row.keyword, now)
		require.NoError(t, s.CreateTopic(ctx, topic))
		require.NoError(t, s.UpsertOpportunity(ctx, &Opportunity{
			TopicID: topic.ID, Keyword: row.keyword,
			GapScore: row.gap, Phase: row.phase, Confidence: "medium",
			CalculatedAt: now,
		}))
	}

	all, err := s.ListOpportunities(ctx, OpportunityListOpts{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	// Sorted by gap score, best first.
	assert.Equal(t, "DeepSeek R1", all[0].Keyword)
	assert.Equal(t, "Old News", all[2].Keyword)

	hot, err := s.ListOpportunities(ctx, OpportunityListOpts{MinGap: 40})
	require.NoError(t, err)
	assert.Len(t, hot, 2)

	emergent, err := s.ListOpportunities(ctx, OpportunityListOpts{Phase: "emergence"})
	require.NoError(t, err)
	require.Len(t, emergent, 1)
	assert.Equal(t, "Bun Bundler", emergent[0].Keyword)

	require.NoError(t, s.MarkAlerted(ctx, all[0].ID))
	fresh, err := s.ListOpportunities(ctx, OpportunityListOpts{Unalerted: true})
	require.NoError(t, err)
	assert.Len(t, fresh, 2)
}

func TestScanLog(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	started := time.Now().UTC().Truncate(time.Second)

	id, err := s.StartScan(ctx, started)
	require.NoError(t, err)
	require.NotZero(t, id)

	running, err := s.LastScan(ctx)
	require.NoError(t, err)
	require.NotNil(t, running)
	assert.Equal(t, "running", running.Status)

	done := started.Add(30 * time.Second)
	require.NoError(t, s.FinishScan(ctx, &ScanLog{
		ID:                   id,
		CompletedAt:          &done,
		Status:               "completed",
		PostsCollected:       120,
		TopicsUpdated:        14,
		OpportunitiesCreated: 3,
	}))

	last, err := s.LastScan(ctx)
	require.NoError(t, err)
	assert.Equal(t, "completed", last.Status)
	assert.Equal(t, 120, last.PostsCollected)
	require.NotNil(t, last.CompletedAt)
}

func TestGetStats(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	now := time.Now().UTC()

	for i, phase := range []string{"innovation", "innovation", "growth"} {
		topic := newTestTopic("t", string(rune('a'+i)), now)
		require.NoError(t, s.CreateTopic(ctx, topic))
		require.NoError(t, s.UpsertOpportunity(ctx, &Opportunity{
			TopicID: topic.ID, Keyword: topic.Keyword,
			Phase: phase, Confidence: "low", CalculatedAt: now,
		}))
	}

	stats, err := s.GetStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, stats.Topics)
	assert.Equal(t, 3, stats.Opportunities)
	assert.Equal(t, 2, stats.ByPhase["innovation"])
	assert.Equal(t, 1, stats.ByPhase["growth"])
}
