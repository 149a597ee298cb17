package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

// Topic is a normalized subject tracked over time. The normalized key is
// unique; first_seen_at never changes after creation.
type Topic struct {
	ID          string    `db:"id" json:"id"`
	Keyword     string    `db:"keyword" json:"keyword"`
	KeywordNorm string    `db:"keyword_norm" json:"keyword_norm"`
	Category    string    `db:"category" json:"category"`
	FirstSeenAt time.Time `db:"first_seen_at" json:"first_seen_at"`
	LastSeenAt  time.Time `db:"last_seen_at" json:"last_seen_at"`
	Active      bool      `db:"active" json:"active"`
}

// Signal is one append-only momentum measurement for a topic.
type Signal struct {
	ID             int64     `db:"id" json:"id"`
	TopicID        string    `db:"topic_id" json:"topic_id"`
	RecordedAt     time.Time `db:"recorded_at" json:"recorded_at"`
	RedditScore    int       `db:"reddit_score" json:"reddit_score"`
	RedditComments int       `db:"reddit_comments" json:"reddit_comments"`
	HNScore        int       `db:"hn_score" json:"hn_score"`
	HNComments     int       `db:"hn_comments" json:"hn_comments"`
	Momentum       float64   `db:"momentum" json:"momentum"`
	PlatformsJSON  string    `db:"platforms" json:"-"`
	Platforms      []string  `json:"platforms" db:"-"`
	PlatformCount  int       `db:"platform_count" json:"platform_count"`
	Strength       float64   `db:"strength" json:"strength"`
}

// TopVideo is one competing YouTube result inside a supply snapshot.
type TopVideo struct {
	VideoID     string `json:"video_id"`
	Title       string `json:"title"`
	ChannelName string `json:"channel_name"`
	ChannelSubs int64  `json:"channel_subs"`
	Views       int64  `json:"views"`
	DaysOld     int    `json:"days_old"`
}

// SupplySnapshot records one YouTube supply check. Snapshots are
// append-only; the newest one per topic is authoritative.
type SupplySnapshot struct {
	ID             int64      `db:"id" json:"id"`
	TopicID        string     `db:"topic_id" json:"topic_id"`
	CheckedAt      time.Time  `db:"checked_at" json:"checked_at"`
	TotalResults   int64      `db:"total_results" json:"total_results"`
	Videos7d       int        `db:"videos_7d" json:"videos_7d"`
	Videos30d      int        `db:"videos_30d" json:"videos_30d"`
	Videos90d      int        `db:"videos_90d" json:"videos_90d"`
	TopVideosJSON  string     `db:"top_videos" json:"-"`
	TopVideos      []TopVideo `json:"top_videos" db:"-"`
	VolumeScore    float64    `db:"volume_score" json:"volume_score"`
	AuthorityScore float64    `db:"authority_score" json:"authority_score"`
	FreshnessScore float64    `db:"freshness_score" json:"freshness_score"`
	SupplyScore    float64    `db:"supply_score" json:"supply_score"`
	Verified       bool       `db:"verified" json:"verified"`
}

// Opportunity is the current scoring verdict for a topic, exactly one
// row per topic. Velocity fields are null until enough history exists.
type Opportunity struct {
	ID                 int64     `db:"id" json:"id"`
	TopicID            string    `db:"topic_id" json:"topic_id"`
	Keyword            string    `db:"keyword" json:"keyword"`
	Category           string    `db:"category" json:"category"`
	Momentum           float64   `db:"momentum" json:"momentum"`
	Supply             float64   `db:"supply" json:"supply"`
	GapScore           float64   `db:"gap_score" json:"gap_score"`
	GapScoreV1         float64   `db:"gap_score_v1" json:"gap_score_v1"`
	Phase              string    `db:"phase" json:"phase"`
	Confidence         string    `db:"confidence" json:"confidence"`
	Velocity24h        *float64  `db:"velocity_24h" json:"velocity_24h"`
	Velocity7d         *float64  `db:"velocity_7d" json:"velocity_7d"`
	VelocityTrend      *string   `db:"velocity_trend" json:"velocity_trend"`
	CrossPlatformCount int       `db:"cross_platform_count" json:"cross_platform_count"`
	HasAuthorityGap    bool      `db:"has_authority_gap" json:"has_authority_gap"`
	HasFreshnessGap    bool      `db:"has_freshness_gap" json:"has_freshness_gap"`
	IsUnderserved      bool      `db:"is_underserved" json:"is_underserved"`
	Watched            bool      `db:"watched" json:"watched"`
	Notes              string    `db:"notes" json:"notes"`
	Alerted            bool      `db:"alerted" json:"alerted"`
	CalculatedAt       time.Time `db:"calculated_at" json:"calculated_at"`
}

// ScanLog records one collection run.
type ScanLog struct {
	ID                   int64      `db:"id" json:"id"`
	StartedAt            time.Time  `db:"started_at" json:"started_at"`
	CompletedAt          *time.Time `db:"completed_at" json:"completed_at"`
	Status               string     `db:"status" json:"status"`
	PostsCollected       int        `db:"posts_collected" json:"posts_collected"`
	TopicsUpdated        int        `db:"topics_updated" json:"topics_updated"`
	OpportunitiesCreated int        `db:"opportunities_created" json:"opportunities_created"`
	Error                string     `db:"error" json:"error"`
}

// OpportunityListOpts controls opportunity listing.
type OpportunityListOpts struct {
	MinGap      float64
	Phase       string
	WatchedOnly bool
	Unalerted   bool
	Limit       int
}

// Stats summarizes the current dataset.
type Stats struct {
	Topics        int            `json:"topics"`
	Opportunities int            `json:"opportunities"`
	Watched       int            `json:"watched"`
	ByPhase       map[string]int `json:"by_phase"`
}

// Store is the persistence interface. Single-row lookups return
// (nil, nil) when no row matches; absence is a state, not an error.
type Store interface {
	GetTopicByKey(ctx context.Context, keywordNorm string) (*Topic, error)
	GetTopic(ctx context.Context, id string) (*Topic, error)
	CreateTopic(ctx context.Context, t *Topic) error
	TouchTopic(ctx context.Context, id string, lastSeen time.Time) error

	InsertSignal(ctx context.Context, sig *Signal) error
	ListSignals(ctx context.Context, topicID string, limit int) ([]Signal, error)

	InsertSupplySnapshot(ctx context.Context, snap *SupplySnapshot) error
	LatestSupply(ctx context.Context, topicID string) (*SupplySnapshot, error)

	UpsertOpportunity(ctx context.Context, o *Opportunity) error
	GetOpportunity(ctx context.Context, id int64) (*Opportunity, error)
	GetOpportunityByTopic(ctx context.Context, topicID string) (*Opportunity, error)
	ListOpportunities(ctx context.Context, opts OpportunityListOpts) ([]Opportunity, error)
	SetWatched(ctx context.Context, id int64, watched bool) error
	SetNotes(ctx context.Context, id int64, notes string) error
	MarkAlerted(ctx context.Context, id int64) error

	StartScan(ctx context.Context, startedAt time.Time) (int64, error)
	FinishScan(ctx context.Context, log *ScanLog) error
	LastScan(ctx context.Context) (*ScanLog, error)

	GetStats(ctx context.Context) (*Stats, error)

	Close() error
}

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db *sqlx.DB
}

// New opens a SQLite database and runs migrations.
func New(path string) (*SQLiteStore, error) {
	db, err := sqlx.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) GetTopicByKey(ctx context.Context, keywordNorm string) (*Topic, error) {
	var t Topic
	err := s.db.GetContext(ctx, &t, "SELECT * FROM topics WHERE keyword_norm = ?", keywordNorm)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get topic %q: %w", keywordNorm, err)
	}
	return &t, nil
}

func (s *SQLiteStore) GetTopic(ctx context.Context, id string) (*Topic, error) {
	var t Topic
	err := s.db.GetContext(ctx, &t, "SELECT * FROM topics WHERE id = ?", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get topic %s: %w", id, err)
	}
	return &t, nil
}

func (s *SQLiteStore) CreateTopic(ctx context.Context, t *Topic) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO topics (id, keyword, keyword_norm, category, first_seen_at, last_seen_at, active)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, t.ID, t.Keyword, t.KeywordNorm, t.Category, t.FirstSeenAt, t.LastSeenAt, t.Active)
	if err != nil {
		return fmt.Errorf("create topic %q: %w", t.KeywordNorm, err)
	}
	return nil
}

func (s *SQLiteStore) TouchTopic(ctx context.Context, id string, lastSeen time.Time) error {
	_, err := s.db.ExecContext(ctx,
		"UPDATE topics SET last_seen_at = ?, active = 1 WHERE id = ?", lastSeen, id)
	if err != nil {
		return fmt.Errorf("touch topic %s: %w", id, err)
	}
	return nil
}

func (s *SQLiteStore) InsertSignal(ctx context.Context, sig *Signal) error {
	platformsJSON, _ := json.Marshal(sig.Platforms)

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO topic_signals (topic_id, recorded_at, reddit_score, reddit_comments, hn_score, hn_comments, momentum, platforms, platform_count, strength)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, sig.TopicID, sig.RecordedAt, sig.RedditScore, sig.RedditComments,
		sig.HNScore, sig.HNComments, sig.Momentum, string(platformsJSON),
		sig.PlatformCount, sig.Strength)
	if err != nil {
		return fmt.Errorf("insert signal for %s: %w", sig.TopicID, err)
	}
	sig.ID, _ = res.LastInsertId()
	return nil
}

func (s *SQLiteStore) ListSignals(ctx context.Context, topicID string, limit int) ([]Signal, error) {
	if limit <= 0 {
		limit = 100
	}
	var signals []Signal
	err := s.db.SelectContext(ctx, &signals,
		"SELECT * FROM topic_signals WHERE topic_id = ? ORDER BY recorded_at DESC LIMIT ?",
		topicID, limit)
	if err != nil {
		return nil, fmt.Errorf("list signals for %s: %w", topicID, err)
	}
	for i := range signals {
		json.Unmarshal([]byte(signals[i].PlatformsJSON), &signals[i].Platforms)
	}
	return signals, nil
}

func (s *SQLiteStore) InsertSupplySnapshot(ctx context.Context, snap *SupplySnapshot) error {
	videosJSON, _ := json.Marshal(snap.TopVideos)

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO supply_snapshots (topic_id, checked_at, total_results, videos_7d, videos_30d, videos_90d, top_videos, volume_score, authority_score, freshness_score, supply_score, verified)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, snap.TopicID, snap.CheckedAt, snap.TotalResults, snap.Videos7d,
		snap.Videos30d, snap.Videos90d, string(videosJSON), snap.VolumeScore,
		snap.AuthorityScore, snap.FreshnessScore, snap.SupplyScore, snap.Verified)
	if err != nil {
		return fmt.Errorf("insert supply snapshot for %s: %w", snap.TopicID, err)
	}
	snap.ID, _ = res.LastInsertId()
	return nil
}

func (s *SQLiteStore) LatestSupply(ctx context.Context, topicID string) (*SupplySnapshot, error) {
	var snap SupplySnapshot
	err := s.db.GetContext(ctx, &snap,
		"SELECT * FROM supply_snapshots WHERE topic_id = ? ORDER BY checked_at DESC LIMIT 1",
		topicID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("latest supply for %s: %w", topicID, err)
	}
	json.Unmarshal([]byte(snap.TopVideosJSON), &snap.TopVideos)
	return &snap, nil
}

func (s *SQLiteStore) UpsertOpportunity(ctx context.Context, o *Opportunity) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO opportunities (topic_id, keyword, category, momentum, supply, gap_score, gap_score_v1, phase, confidence, velocity_24h, velocity_7d, velocity_trend, cross_platform_count, has_authority_gap, has_freshness_gap, is_underserved, calculated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(topic_id) DO UPDATE SET
			keyword = excluded.keyword,
			category = excluded.category,
			momentum = excluded.momentum,
			supply = excluded.supply,
			gap_score = excluded.gap_score,
			gap_score_v1 = excluded.gap_score_v1,
			phase = excluded.phase,
			confidence = excluded.confidence,
			velocity_24h = excluded.velocity_24h,
			velocity_7d = excluded.velocity_7d,
			velocity_trend = excluded.velocity_trend,
			cross_platform_count = excluded.cross_platform_count,
			has_authority_gap = excluded.has_authority_gap,
			has_freshness_gap = excluded.has_freshness_gap,
			is_underserved = excluded.is_underserved,
			calculated_at = excluded.calculated_at
	`, o.TopicID, o.Keyword, o.Category, o.Momentum, o.Supply, o.GapScore,
		o.GapScoreV1, o.Phase, o.Confidence, o.Velocity24h, o.Velocity7d,
		o.VelocityTrend, o.CrossPlatformCount, o.HasAuthorityGap,
		o.HasFreshnessGap, o.IsUnderserved, o.CalculatedAt)
	if err != nil {
		return fmt.Errorf("upsert opportunity for %s: %w", o.TopicID, err)
	}

	// The upsert path does not report the row id, so read it back.
	if err := s.db.GetContext(ctx, &o.ID,
		"SELECT id FROM opportunities WHERE topic_id = ?", o.TopicID); err != nil {
		return fmt.Errorf("upsert opportunity for %s: %w", o.TopicID, err)
	}
	return nil
}

func (s *SQLiteStore) GetOpportunity(ctx context.Context, id int64) (*Opportunity, error) {
	var o Opportunity
	err := s.db.GetContext(ctx, &o, "SELECT * FROM opportunities WHERE id = ?", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get opportunity %d: %w", id, err)
	}
	return &o, nil
}

func (s *SQLiteStore) GetOpportunityByTopic(ctx context.Context, topicID string) (*Opportunity, error) {
	var o Opportunity
	err := s.db.GetContext(ctx, &o, "SELECT * FROM opportunities WHERE topic_id = ?", topicID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get opportunity for topic %s: %w", topicID, err)
	}
	return &o, nil
}

func (s *SQLiteStore) ListOpportunities(ctx context.Context, opts OpportunityListOpts) ([]Opportunity, error) {
	query := "SELECT * FROM opportunities WHERE 1=1"
	var args []any

	if opts.MinGap > 0 {
		query += " AND gap_score >= ?"
		args = append(args, opts.MinGap)
	}
	if opts.Phase != "" {
		query += " AND phase = ?"
		args = append(args, opts.Phase)
	}
	if opts.WatchedOnly {
		query += " AND watched = 1"
	}
	if opts.Unalerted {
		query += " AND alerted = 0"
	}

	query += " ORDER BY gap_score DESC"

	limit := opts.Limit
	if limit <= 0 {
		limit = 50
	}
	query += " LIMIT ?"
	args = append(args, limit)

	var opps []Opportunity
	if err := s.db.SelectContext(ctx, &opps, query, args...); err != nil {
		return nil, fmt.Errorf("list opportunities: %w", err)
	}
	return opps, nil
}

func (s *SQLiteStore) SetWatched(ctx context.Context, id int64, watched bool) error {
	_, err := s.db.ExecContext(ctx, "UPDATE opportunities SET watched = ? WHERE id = ?", watched, id)
	if err != nil {
		return fmt.Errorf("set watched %d: %w", id, err)
	}
	return nil
}

func (s *SQLiteStore) SetNotes(ctx context.Context, id int64, notes string) error {
	_, err := s.db.ExecContext(ctx, "UPDATE opportunities SET notes = ? WHERE id = ?", notes, id)
	if err != nil {
		return fmt.Errorf("set notes %d: %w", id, err)
	}
	return nil
}

func (s *SQLiteStore) MarkAlerted(ctx context.Context, id int64) error {
	_, err := s.db.ExecContext(ctx, "UPDATE opportunities SET alerted = 1 WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("mark alerted %d: %w", id, err)
	}
	return nil
}

func (s *SQLiteStore) StartScan(ctx context.Context, startedAt time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		"INSERT INTO scan_log (started_at, status) VALUES (?, 'running')", startedAt)
	if err != nil {
		return 0, fmt.Errorf("start scan: %w", err)
	}
	return res.LastInsertId()
}

func (s *SQLiteStore) FinishScan(ctx context.Context, log *ScanLog) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE scan_log SET completed_at = ?, status = ?, posts_collected = ?, topics_updated = ?, opportunities_created = ?, error = ?
		WHERE id = ?
	`, log.CompletedAt, log.Status, log.PostsCollected, log.TopicsUpdated,
		log.OpportunitiesCreated, log.Error, log.ID)
	if err != nil {
		return fmt.Errorf("finish scan %d: %w", log.ID, err)
	}
	return nil
}

func (s *SQLiteStore) LastScan(ctx context.Context) (*ScanLog, error) {
	var log ScanLog
	err := s.db.GetContext(ctx, &log, "SELECT * FROM scan_log ORDER BY id DESC LIMIT 1")
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("last scan: %w", err)
	}
	return &log, nil
}

func (s *SQLiteStore) GetStats(ctx context.Context) (*Stats, error) {
	stats := &Stats{ByPhase: make(map[string]int)}

	if err := s.db.GetContext(ctx, &stats.Topics, "SELECT COUNT(*) FROM topics"); err != nil {
		return nil, fmt.Errorf("count topics: %w", err)
	}
	if err := s.db.GetContext(ctx, &stats.Opportunities, "SELECT COUNT(*) FROM opportunities"); err != nil {
		return nil, fmt.Errorf("count opportunities: %w", err)
	}
	if err := s.db.GetContext(ctx, &stats.Watched, "SELECT COUNT(*) FROM opportunities WHERE watched = 1"); err != nil {
		return nil, fmt.Errorf("count watched: %w", err)
	}

	rows, err := s.db.QueryxContext(ctx, "SELECT phase, COUNT(*) as cnt FROM opportunities GROUP BY phase")
	if err != nil {
		return nil, fmt.Errorf("count by phase: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var phase string
		var cnt int
		if err := rows.Scan(&phase, &cnt); err != nil {
			return nil, err
		}
		stats.ByPhase[phase] = cnt
	}
	return stats, nil
}
