package scoring

import (
	"math"
	"sort"
	"strings"
	"unicode"
)

// TopicGroup is one fused topic within a collection batch.
type TopicGroup struct {
	Key        string
	Posts      []Post
	Platforms  []Platform
	TotalScore int
	// Multiplier boosts momentum for multi-platform presence:
	// 1 platform 1.0, 2 platforms 1.4, 3+ platforms 1.7.
	Multiplier float64
	// Strength is the diagnostic rank percentile averaged across the
	// group's platforms. It does not feed the gap formula.
	Strength float64
}

// CrossPlatform reports whether the group qualifies for cross-platform
// badging. Single-post groups never do.
func (g *TopicGroup) CrossPlatform() bool {
	return len(g.Posts) > 1 && len(g.Platforms) > 1
}

var quoteFolder = strings.NewReplacer(
	"‘", "'", "’", "'", // curly single quotes
	"“", `"`, "”", `"`, // curly double quotes
)

// NormalizeTopicKey folds a raw topic string into the key used for
// cross-platform matching and topic deduplication: lowercased, trimmed,
// internal whitespace collapsed, punctuation stripped except + # . -
// so tokens like "C++" and "C#" survive.
func NormalizeTopicKey(topic string) string {
	s := strings.ToLower(strings.TrimSpace(topic))
	s = quoteFolder.Replace(s)

	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_':
			b.WriteRune(r)
		case unicode.IsSpace(r):
			b.WriteRune(' ')
		case r == '+' || r == '#' || r == '.' || r == '-':
			b.WriteRune(r)
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// PlatformCountMultiplier maps distinct-platform presence onto the
// momentum multiplier.
func PlatformCountMultiplier(platformCount int) float64 {
	switch {
	case platformCount <= 1:
		return 1.0
	case platformCount == 2:
		return 1.4
	default:
		return 1.7
	}
}

// FuseCrossPlatform groups a batch of collected posts by normalized
// topic key and computes each group's platform set, presence multiplier
// and strength percentile. The whole batch must be collected first; the
// strength ranking is relative to it.
func FuseCrossPlatform(batch []Post) map[string]*TopicGroup {
	groups := make(map[string]*TopicGroup)

	for _, post := range batch {
		key := NormalizeTopicKey(post.Topic)
		if key == "" {
			continue
		}
		g, ok := groups[key]
		if !ok {
			g = &TopicGroup{Key: key}
			groups[key] = g
		}
		g.Posts = append(g.Posts, post)
		g.TotalScore += post.Score
	}

	for _, g := range groups {
		seen := make(map[Platform]bool)
		for _, p := range g.Posts {
			if !seen[p.Platform] {
				seen[p.Platform] = true
				g.Platforms = append(g.Platforms, p.Platform)
			}
		}
		sort.Slice(g.Platforms, func(i, j int) bool { return g.Platforms[i] < g.Platforms[j] })

		g.Multiplier = PlatformCountMultiplier(len(g.Platforms))
		g.Strength = crossPlatformStrength(g.Posts, batch)
	}

	return groups
}

// crossPlatformStrength ranks the group's best post on each of its
// platforms against every batch post from that platform (rank 1 = top
// engagement), converts ranks to percentiles and averages them.
func crossPlatformStrength(groupPosts, batch []Post) float64 {
	byPlatform := make(map[Platform][]Post)
	for _, p := range groupPosts {
		byPlatform[p.Platform] = append(byPlatform[p.Platform], p)
	}

	var percentiles []float64
	for platform, posts := range byPlatform {
		var platformBatch []Post
		for _, p := range batch {
			if p.Platform == platform {
				platformBatch = append(platformBatch, p)
			}
		}
		sort.SliceStable(platformBatch, func(i, j int) bool {
			return platformBatch[i].Score > platformBatch[j].Score
		})

		best := posts[0]
		for _, p := range posts[1:] {
			if p.Score > best.Score {
				best = p
			}
		}

		// Rank by URL, the unique post identifier within a batch.
		rank := 0
		for i, p := range platformBatch {
			if p.URL == best.URL {
				rank = i + 1
				break
			}
		}
		if rank == 0 {
			continue
		}

		total := math.Max(float64(len(platformBatch)), 1)
		percentiles = append(percentiles, math.Round((1-float64(rank-1)/total)*100))
	}

	if len(percentiles) == 0 {
		return 0
	}
	sum := 0.0
	for _, p := range percentiles {
		sum += p
	}
	return math.Round(sum / float64(len(percentiles)))
}
