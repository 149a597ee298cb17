package source

import (
	"context"
	"time"
)

// Platform identifies where a post was observed.
type Platform string

const (
	PlatformReddit     Platform = "reddit"
	PlatformHackerNews Platform = "hackernews"
	PlatformRSS        Platform = "rss"
)

// Post is the standardized data model for all collectors.
type Post struct {
	Platform    Platform  `json:"platform"`
	Title       string    `json:"title"`
	URL         string    `json:"url"`
	Score       int       `json:"score"`
	Comments    int       `json:"comments"`
	Subreddit   string    `json:"subreddit,omitempty"`
	Category    string    `json:"category,omitempty"`
	PublishedAt time.Time `json:"published_at"`
	CollectedAt time.Time `json:"collected_at"`
}

// HoursOld returns the post's age at the given instant, floored at zero.
func (p Post) HoursOld(now time.Time) float64 {
	if p.PublishedAt.IsZero() {
		return 0
	}
	h := now.Sub(p.PublishedAt).Hours()
	if h < 0 {
		return 0
	}
	return h
}

// Source is the interface every collector must implement.
type Source interface {
	Name() Platform
	Collect(ctx context.Context) ([]Post, error)
}

// AllPlatforms returns all known signal platforms.
func AllPlatforms() []Platform {
	return []Platform{PlatformReddit, PlatformHackerNews, PlatformRSS}
}
