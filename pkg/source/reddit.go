package source

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// SubredditConfig configures one monitored subreddit.
type SubredditConfig struct {
	Name     string `yaml:"name"`
	MinScore int    `yaml:"min_score"`
	Category string `yaml:"category"`
}

// Reddit collects rising posts from a set of subreddits.
type Reddit struct {
	client       *http.Client
	clientID     string
	clientSecret string
	subreddits   []SubredditConfig
	mu           sync.Mutex
	token        string
	tokenExpiry  time.Time
}

// NewReddit creates a new Reddit collector.
func NewReddit(clientID, clientSecret string, subreddits []SubredditConfig) *Reddit {
	if len(subreddits) == 0 {
		subreddits = []SubredditConfig{
			{Name: "programming", MinScore: 100, Category: "dev"},
			{Name: "MachineLearning", MinScore: 50, Category: "ai"},
			{Name: "LocalLLaMA", MinScore: 50, Category: "ai"},
			{Name: "selfhosted", MinScore: 50, Category: "infra"},
			{Name: "webdev", MinScore: 75, Category: "dev"},
		}
	}
	return &Reddit{
		client:       &http.Client{Timeout: 30 * time.Second},
		clientID:     clientID,
		clientSecret: clientSecret,
		subreddits:   subreddits,
	}
}

func (r *Reddit) Name() Platform { return PlatformReddit }

func (r *Reddit) Collect(ctx context.Context) ([]Post, error) {
	if err := r.authenticate(ctx); err != nil {
		return nil, fmt.Errorf("reddit auth: %w", err)
	}

	var allPosts []Post
	for _, sub := range r.subreddits {
		posts, err := r.fetchSubreddit(ctx, sub)
		if err != nil {
			log.Warn().Err(err).Str("subreddit", sub.Name).Msg("reddit fetch failed")
			continue
		}
		allPosts = append(allPosts, posts...)
	}

	return allPosts, nil
}

func (r *Reddit) authenticate(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.token != "" && time.Now().Before(r.tokenExpiry) {
		return nil
	}

	data := url.Values{"grant_type": {"client_credentials"}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		"https://www.reddit.com/api/v1/access_token",
		strings.NewReader(data.Encode()))
	if err != nil {
		return err
	}

	req.SetBasicAuth(r.clientID, r.clientSecret)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("User-Agent", "nicheradar/1.0")

	resp, err := r.client.Do(req)
	if err != nil {
		return fmt.Errorf("reddit token request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("reddit auth status %d", resp.StatusCode)
	}

	var tokenResp struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&tokenResp); err != nil {
		return fmt.Errorf("decode reddit token: %w", err)
	}

	r.token = tokenResp.AccessToken
	r.tokenExpiry = time.Now().Add(time.Duration(tokenResp.ExpiresIn-60) * time.Second)
	return nil
}

func (r *Reddit) fetchSubreddit(ctx context.Context, sub SubredditConfig) ([]Post, error) {
	// Rising surfaces momentum earlier than hot.
	reqURL := fmt.Sprintf("https://oauth.reddit.com/r/%s/rising.json?limit=50", sub.Name)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, err
	}

	req.Header.Set("Authorization", "Bearer "+r.token)
	req.Header.Set("User-Agent", "nicheradar/1.0")

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch r/%s: %w", sub.Name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("reddit r/%s status %d", sub.Name, resp.StatusCode)
	}

	var listing redditListing
	if err := json.NewDecoder(resp.Body).Decode(&listing); err != nil {
		return nil, fmt.Errorf("decode r/%s: %w", sub.Name, err)
	}

	var posts []Post
	for _, child := range listing.Data.Children {
		post := child.Data
		if post.Stickied || post.Score < sub.MinScore {
			continue
		}

		postURL := post.URL
		if postURL == "" || strings.HasPrefix(postURL, "/r/") {
			postURL = "https://reddit.com" + post.Permalink
		}

		posts = append(posts, Post{
			Platform:    PlatformReddit,
			Title:       post.Title,
			URL:         postURL,
			Score:       post.Score,
			Comments:    post.NumComments,
			Subreddit:   sub.Name,
			Category:    sub.Category,
			PublishedAt: time.Unix(int64(post.CreatedUTC), 0).UTC(),
			CollectedAt: time.Now().UTC(),
		})
	}

	return posts, nil
}

type redditListing struct {
	Data struct {
		Children []struct {
			Data redditPost `json:"data"`
		} `json:"children"`
	} `json:"data"`
}

type redditPost struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	URL         string  `json:"url"`
	Permalink   string  `json:"permalink"`
	Score       int     `json:"score"`
	NumComments int     `json:"num_comments"`
	CreatedUTC  float64 `json:"created_utc"`
	Stickied    bool    `json:"stickied"`
}
