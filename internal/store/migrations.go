package store

const schema = `
CREATE TABLE IF NOT EXISTS topics (
    id            TEXT PRIMARY KEY,
    keyword       TEXT NOT NULL,
    keyword_norm  TEXT NOT NULL UNIQUE,
    category      TEXT NOT NULL DEFAULT '',
    first_seen_at DATETIME NOT NULL,
    last_seen_at  DATETIME NOT NULL,
    active        BOOLEAN NOT NULL DEFAULT 1
);

CREATE INDEX IF NOT EXISTS idx_topics_last_seen ON topics(last_seen_at);

CREATE TABLE IF NOT EXISTS topic_signals (
    id              INTEGER PRIMARY KEY AUTOINCREMENT,
    topic_id        TEXT NOT NULL REFERENCES topics(id),
    recorded_at     DATETIME NOT NULL,
    reddit_score    INTEGER NOT NULL DEFAULT 0,
    reddit_comments INTEGER NOT NULL DEFAULT 0,
    hn_score        INTEGER NOT NULL DEFAULT 0,
    hn_comments     INTEGER NOT NULL DEFAULT 0,
    momentum        REAL NOT NULL,
    platforms       TEXT NOT NULL DEFAULT '[]',
    platform_count  INTEGER NOT NULL DEFAULT 1,
    strength        REAL NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_signals_topic ON topic_signals(topic_id, recorded_at);

CREATE TABLE IF NOT EXISTS supply_snapshots (
    id              INTEGER PRIMARY KEY AUTOINCREMENT,
    topic_id        TEXT NOT NULL REFERENCES topics(id),
    checked_at      DATETIME NOT NULL,
    total_results   INTEGER NOT NULL DEFAULT 0,
    videos_7d       INTEGER NOT NULL DEFAULT 0,
    videos_30d      INTEGER NOT NULL DEFAULT 0,
    videos_90d      INTEGER NOT NULL DEFAULT 0,
    top_videos      TEXT NOT NULL DEFAULT '[]',
    volume_score    REAL NOT NULL DEFAULT 0,
    authority_score REAL NOT NULL DEFAULT 0,
    freshness_score REAL NOT NULL DEFAULT 0,
    supply_score    REAL NOT NULL DEFAULT 0,
    verified        BOOLEAN NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_supply_topic ON supply_snapshots(topic_id, checked_at);

CREATE TABLE IF NOT EXISTS opportunities (
    id                   INTEGER PRIMARY KEY AUTOINCREMENT,
    topic_id             TEXT NOT NULL UNIQUE REFERENCES topics(id),
    keyword              TEXT NOT NULL,
    category             TEXT NOT NULL DEFAULT '',
    momentum             REAL NOT NULL DEFAULT 0,
    supply               REAL NOT NULL DEFAULT 50,
    gap_score            REAL NOT NULL DEFAULT 0,
    gap_score_v1         REAL NOT NULL DEFAULT 0,
    phase                TEXT NOT NULL DEFAULT 'saturated',
    confidence           TEXT NOT NULL DEFAULT 'low',
    velocity_24h         REAL,
    velocity_7d          REAL,
    velocity_trend       TEXT,
    cross_platform_count INTEGER NOT NULL DEFAULT 1,
    has_authority_gap    BOOLEAN NOT NULL DEFAULT 0,
    has_freshness_gap    BOOLEAN NOT NULL DEFAULT 0,
    is_underserved       BOOLEAN NOT NULL DEFAULT 0,
    watched              BOOLEAN NOT NULL DEFAULT 0,
    notes                TEXT NOT NULL DEFAULT '',
    alerted              BOOLEAN NOT NULL DEFAULT 0,
    calculated_at        DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_opportunities_gap ON opportunities(gap_score);
CREATE INDEX IF NOT EXISTS idx_opportunities_phase ON opportunities(phase);

CREATE TABLE IF NOT EXISTS scan_log (
    id                    INTEGER PRIMARY KEY AUTOINCREMENT,
    started_at            DATETIME NOT NULL,
    completed_at          DATETIME,
    status                TEXT NOT NULL DEFAULT 'running',
    posts_collected       INTEGER NOT NULL DEFAULT 0,
    topics_updated        INTEGER NOT NULL DEFAULT 0,
    opportunities_created INTEGER NOT NULL DEFAULT 0,
    error                 TEXT NOT NULL DEFAULT ''
);
`
