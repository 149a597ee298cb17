package source

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/mmcdole/gofeed"
	"github.com/rs/zerolog/log"
)

// RSSFeed is a named RSS/Atom feed URL.
type RSSFeed struct {
	Name     string `yaml:"name"`
	URL      string `yaml:"url"`
	Category string `yaml:"category"`
}

// RSS collects recent entries from tech blog feeds.
type RSS struct {
	client *http.Client
	parser *gofeed.Parser
	feeds  []RSSFeed
	maxAge time.Duration
}

// NewRSS creates a new RSS collector.
func NewRSS(feeds []RSSFeed) *RSS {
	return &RSS{
		client: &http.Client{Timeout: 30 * time.Second},
		parser: gofeed.NewParser(),
		feeds:  feeds,
		maxAge: 24 * time.Hour,
	}
}

func (r *RSS) Name() Platform { return PlatformRSS }

func (r *RSS) Collect(ctx context.Context) ([]Post, error) {
	var allPosts []Post

	for _, feed := range r.feeds {
		posts, err := r.collectFeed(ctx, feed)
		if err != nil {
			log.Warn().Err(err).Str("feed", feed.Name).Msg("rss fetch failed")
			continue
		}
		allPosts = append(allPosts, posts...)
	}

	return allPosts, nil
}

func (r *RSS) collectFeed(ctx context.Context, feed RSSFeed) ([]Post, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, feed.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("create rss request %s: %w", feed.Name, err)
	}
	req.Header.Set("User-Agent", "nicheradar/1.0")

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch rss %s: %w", feed.Name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("rss %s status %d", feed.Name, resp.StatusCode)
	}

	parsed, err := r.parser.Parse(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse rss %s: %w", feed.Name, err)
	}

	var posts []Post
	cutoff := time.Now().Add(-r.maxAge)

	for _, entry := range parsed.Items {
		published := time.Now().UTC()
		if entry.PublishedParsed != nil {
			published = entry.PublishedParsed.UTC()
		} else if entry.UpdatedParsed != nil {
			published = entry.UpdatedParsed.UTC()
		}

		if published.Before(cutoff) {
			continue
		}

		link := entry.Link
		if link == "" && len(entry.Links) > 0 {
			link = entry.Links[0]
		}

		posts = append(posts, Post{
			Platform:    PlatformRSS,
			Title:       entry.Title,
			URL:         link,
			Category:    feed.Category,
			PublishedAt: published,
			CollectedAt: time.Now().UTC(),
		})
	}

	return posts, nil
}
