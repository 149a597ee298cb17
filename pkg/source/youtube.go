package source

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"
)

const ytBaseURL = "https://www.googleapis.com/youtube/v3"

// VideoStat describes one competing video on the supply side.
type VideoStat struct {
	VideoID     string `json:"video_id"`
	Title       string `json:"title"`
	ChannelName string `json:"channel_name"`
	ChannelID   string `json:"channel_id"`
	ChannelSubs int64  `json:"channel_subs"`
	Views       int64  `json:"views"`
	DaysOld     int    `json:"days_old"`
}

// SupplyResult is a verified snapshot of YouTube competition for a keyword.
type SupplyResult struct {
	Keyword      string      `json:"keyword"`
	TotalResults int64       `json:"total_results"`
	Videos       []VideoStat `json:"videos"`
	Videos7d     int         `json:"videos_7d"`
	Videos30d    int         `json:"videos_30d"`
	Videos90d    int         `json:"videos_90d"`
	CheckedAt    time.Time   `json:"checked_at"`
}

// YouTube checks content supply via the Data API. It is not a Source;
// it answers "how contested is this keyword" rather than collecting posts.
type YouTube struct {
	client *http.Client
	apiKey string
}

// NewYouTube creates a new YouTube supply client.
func NewYouTube(apiKey string) *YouTube {
	return &YouTube{
		client: &http.Client{Timeout: 30 * time.Second},
		apiKey: apiKey,
	}
}

// CheckSupply runs the three-call pattern: search for total result count
// and the top matches, fetch per-video statistics, then fetch subscriber
// counts for the channels behind them.
func (y *YouTube) CheckSupply(ctx context.Context, keyword string) (*SupplyResult, error) {
	if y.apiKey == "" {
		return nil, fmt.Errorf("youtube: API key required (set YOUTUBE_API_KEY)")
	}

	result := &SupplyResult{Keyword: keyword, CheckedAt: time.Now().UTC()}

	videoIDs, err := y.search(ctx, keyword, result)
	if err != nil {
		return nil, err
	}
	if len(videoIDs) == 0 {
		return result, nil
	}

	channelIDs, err := y.fetchVideos(ctx, videoIDs, result)
	if err != nil {
		return nil, err
	}

	if err := y.fetchChannels(ctx, channelIDs, result); err != nil {
		return nil, err
	}

	for _, v := range result.Videos {
		switch {
		case v.DaysOld <= 7:
			result.Videos7d++
			result.Videos30d++
			result.Videos90d++
		case v.DaysOld <= 30:
			result.Videos30d++
			result.Videos90d++
		case v.DaysOld <= 90:
			result.Videos90d++
		}
	}

	return result, nil
}

func (y *YouTube) search(ctx context.Context, keyword string, result *SupplyResult) ([]string, error) {
	params := url.Values{}
	params.Set("part", "snippet")
	params.Set("q", keyword)
	params.Set("type", "video")
	params.Set("order", "relevance")
	params.Set("maxResults", "10")
	params.Set("key", y.apiKey)

	var search ytSearchResult
	if err := y.get(ctx, ytBaseURL+"/search?"+params.Encode(), &search); err != nil {
		return nil, fmt.Errorf("youtube search %q: %w", keyword, err)
	}

	result.TotalResults = search.PageInfo.TotalResults

	var ids []string
	for _, item := range search.Items {
		if item.ID.VideoID != "" {
			ids = append(ids, item.ID.VideoID)
		}
	}
	return ids, nil
}

func (y *YouTube) fetchVideos(ctx context.Context, videoIDs []string, result *SupplyResult) ([]string, error) {
	params := url.Values{}
	params.Set("part", "statistics,snippet")
	params.Set("id", strings.Join(videoIDs, ","))
	params.Set("key", y.apiKey)

	var videos ytVideoResult
	if err := y.get(ctx, ytBaseURL+"/videos?"+params.Encode(), &videos); err != nil {
		return nil, fmt.Errorf("youtube video stats: %w", err)
	}

	seen := make(map[string]bool)
	var channelIDs []string
	now := time.Now().UTC()

	for _, v := range videos.Items {
		daysOld := 0
		if !v.Snippet.PublishedAt.IsZero() {
			daysOld = int(now.Sub(v.Snippet.PublishedAt).Hours() / 24)
		}
		result.Videos = append(result.Videos, VideoStat{
			VideoID:     v.ID,
			Title:       v.Snippet.Title,
			ChannelName: v.Snippet.ChannelTitle,
			ChannelID:   v.Snippet.ChannelID,
			Views:       v.Statistics.ViewCount,
			DaysOld:     daysOld,
		})
		if !seen[v.Snippet.ChannelID] {
			seen[v.Snippet.ChannelID] = true
			channelIDs = append(channelIDs, v.Snippet.ChannelID)
		}
	}
	return channelIDs, nil
}

func (y *YouTube) fetchChannels(ctx context.Context, channelIDs []string, result *SupplyResult) error {
	if len(channelIDs) == 0 {
		return nil
	}

	params := url.Values{}
	params.Set("part", "statistics")
	params.Set("id", strings.Join(channelIDs, ","))
	params.Set("key", y.apiKey)

	var channels ytChannelResult
	if err := y.get(ctx, ytBaseURL+"/channels?"+params.Encode(), &channels); err != nil {
		return fmt.Errorf("youtube channel stats: %w", err)
	}

	subs := make(map[string]int64, len(channels.Items))
	for _, c := range channels.Items {
		subs[c.ID] = c.Statistics.SubscriberCount
	}
	for i := range result.Videos {
		result.Videos[i].ChannelSubs = subs[result.Videos[i].ChannelID]
	}
	return nil
}

var jsonpBody = regexp.MustCompile(`\[.*\]`)

// Suggest returns autocomplete completions for a query, used by discovery
// to expand a seed keyword into candidate sub-niches.
func (y *YouTube) Suggest(ctx context.Context, query string) ([]string, error) {
	reqURL := "https://suggestqueries.google.com/complete/search?client=youtube&ds=yt&q=" +
		url.QueryEscape(query)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36")

	resp, err := y.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("youtube suggest %q: %w", query, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("youtube suggest status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	return parseSuggestions(string(body)), nil
}

// parseSuggestions unwraps the JSONP envelope:
// [query, [[suggestion, 0], [suggestion, 0], ...]]
func parseSuggestions(body string) []string {
	match := jsonpBody.FindString(body)
	if match == "" {
		return nil
	}

	var payload []json.RawMessage
	if err := json.Unmarshal([]byte(match), &payload); err != nil || len(payload) < 2 {
		return nil
	}

	var pairs [][]json.RawMessage
	if err := json.Unmarshal(payload[1], &pairs); err != nil {
		return nil
	}

	var suggestions []string
	for _, pair := range pairs {
		if len(pair) == 0 {
			continue
		}
		var s string
		if err := json.Unmarshal(pair[0], &s); err == nil && s != "" {
			suggestions = append(suggestions, s)
		}
	}
	return suggestions
}

func (y *YouTube) get(ctx context.Context, reqURL string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return err
	}

	resp, err := y.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("status %d", resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

type ytSearchResult struct {
	PageInfo struct {
		TotalResults int64 `json:"totalResults"`
	} `json:"pageInfo"`
	Items []struct {
		ID struct {
			VideoID string `json:"videoId"`
		} `json:"id"`
	} `json:"items"`
}

type ytVideoResult struct {
	Items []struct {
		ID      string `json:"id"`
		Snippet struct {
			Title        string    `json:"title"`
			ChannelTitle string    `json:"channelTitle"`
			ChannelID    string    `json:"channelId"`
			PublishedAt  time.Time `json:"publishedAt"`
		} `json:"snippet"`
		Statistics struct {
			ViewCount int64 `json:"viewCount,string"`
		} `json:"statistics"`
	} `json:"items"`
}

type ytChannelResult struct {
	Items []struct {
		ID         string `json:"id"`
		Statistics struct {
			SubscriberCount int64 `json:"subscriberCount,string"`
		} `json:"statistics"`
	} `json:"items"`
}
