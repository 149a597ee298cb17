package opportunity

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/juggajay/nicheradar/pkg/scoring"
)

// Discovery is one expanded sub-niche for a seed keyword. Untracked
// keywords carry an estimated gap; tracked ones report the stored score.
type Discovery struct {
	Keyword    string  `json:"keyword"`
	GapScore   float64 `json:"gap_score"`
	Phase      string  `json:"phase"`
	Confidence string  `json:"confidence"`
	Tracked    bool    `json:"tracked"`
}

const maxDiscoveries = 30

var (
	yearPattern     = regexp.MustCompile(`20[2-9][0-9]`)
	tutorialPattern = regexp.MustCompile(`(?i)tutorial|guide|how to`)
)

var discoverModifiers = []string{" tutorial", " guide", " for beginners"}

// Discover expands a seed keyword into candidate sub-niches via
// autocomplete and estimates the opportunity gap for each.
func (e *Engine) Discover(ctx context.Context, seed string) ([]Discovery, error) {
	if e.youtube == nil {
		return nil, fmt.Errorf("discovery disabled: no youtube client configured")
	}
	if len(strings.TrimSpace(seed)) < 2 {
		return nil, fmt.Errorf("seed keyword too short")
	}

	keywords, err := e.expandSeed(ctx, seed)
	if err != nil {
		return nil, err
	}

	var results []Discovery
	for _, keyword := range keywords {
		d, err := e.discoverOne(ctx, keyword)
		if err != nil {
			e.log.Warn().Err(err).Str("keyword", keyword).Msg("discovery lookup failed")
			continue
		}
		results = append(results, d)
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].GapScore > results[j].GapScore
	})
	if len(results) > maxDiscoveries {
		results = results[:maxDiscoveries]
	}
	return results, nil
}

func (e *Engine) expandSeed(ctx context.Context, seed string) ([]string, error) {
	seen := make(map[string]bool)
	var expansions []string

	add := func(suggestions []string, limit int) {
		if limit > 0 && len(suggestions) > limit {
			suggestions = suggestions[:limit]
		}
		for _, s := range suggestions {
			key := strings.ToLower(strings.TrimSpace(s))
			if key == "" || seen[key] {
				continue
			}
			seen[key] = true
			expansions = append(expansions, s)
		}
	}

	base, err := e.youtube.Suggest(ctx, seed)
	if err != nil {
		return nil, fmt.Errorf("expand seed %q: %w", seed, err)
	}
	add(base, 0)

	// Further expansion is best effort; the suggest endpoint is
	// unofficial, so pace the calls and shrug off failures.
	for _, mod := range discoverModifiers {
		if suggestions, err := e.youtube.Suggest(ctx, seed+mod); err == nil {
			add(suggestions, 5)
		}
		if err := sleepCtx(ctx, 100*time.Millisecond); err != nil {
			return expansions, nil
		}
	}
	for _, letter := range []string{"a", "b", "c", "d"} {
		if suggestions, err := e.youtube.Suggest(ctx, seed+" "+letter); err == nil {
			add(suggestions, 3)
		}
		if err := sleepCtx(ctx, 100*time.Millisecond); err != nil {
			return expansions, nil
		}
	}

	if len(expansions) > 50 {
		expansions = expansions[:50]
	}
	return expansions, nil
}

func (e *Engine) discoverOne(ctx context.Context, keyword string) (Discovery, error) {
	key := scoring.NormalizeTopicKey(keyword)

	topic, err := e.store.GetTopicByKey(ctx, key)
	if err != nil {
		return Discovery{}, err
	}
	if topic != nil {
		opp, err := e.store.GetOpportunityByTopic(ctx, topic.ID)
		if err != nil {
			return Discovery{}, err
		}
		if opp != nil {
			return Discovery{
				Keyword:    keyword,
				GapScore:   opp.GapScore,
				Phase:      opp.Phase,
				Confidence: opp.Confidence,
				Tracked:    true,
			}, nil
		}
	}

	return estimateDiscovery(keyword), nil
}

// estimateDiscovery guesses a gap for an untracked keyword from shape
// alone: recent years, tutorial intent and long-tail phrasing all hint
// at underserved search demand.
func estimateDiscovery(keyword string) Discovery {
	gap := 30.0
	if yearPattern.MatchString(keyword) {
		gap += 15
	}
	if tutorialPattern.MatchString(keyword) {
		gap += 10
	}
	if len(strings.Fields(keyword)) >= 4 {
		gap += 20
	}

	phase := string(scoring.PhaseGrowth)
	if gap >= 60 {
		phase = string(scoring.PhaseEmergence)
	}

	return Discovery{
		Keyword:    keyword,
		GapScore:   gap,
		Phase:      phase,
		Confidence: string(scoring.ConfidenceLow),
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
