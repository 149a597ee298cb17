package scoring

import (
	"math"
	"regexp"
	"strings"
	"unicode"
)

// FilterResult is the verdict on one extracted topic candidate.
type FilterResult struct {
	Accepted bool
	// Reason explains a rejection; empty when accepted.
	Reason string
	// ForcedSaturated marks a giga-topic: were it scored anyway, its
	// supply would be pinned to 100.
	ForcedSaturated bool
}

// Connector words that make a candidate look like a clipped sentence
// fragment rather than a topic.
var (
	trailingConnectors = wordSet("for", "the", "and", "or", "to", "a", "an",
		"in", "on", "with", "of", "is", "are", "was", "were")
	leadingConnectors = wordSet("the", "a", "an", "and", "or", "but",
		"for", "to", "in", "on")
)

// Garbage patterns: phrasing that extraction oracles produce when they
// hand back a sentence instead of a subject.
var garbagePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)^(what|why|how|when|where|who|which)\b`),
	regexp.MustCompile(`(?i)^(this|that|these|those|my|your|his|her|its|our|their)\b`),
	regexp.MustCompile(`\.\.\.|…`),
	regexp.MustCompile(`^\d`),
	regexp.MustCompile(`(?i)^\d+\s+(ways|tips|steps|reasons|things|mistakes)\b`),
}

// IsValidTopic reports whether a candidate string is usable as a topic,
// with a short reason when it is not.
func (s *Scorer) IsValidTopic(candidate string) (bool, string) {
	c := strings.TrimSpace(candidate)

	if len(c) < 3 {
		return false, "too short"
	}
	if len(c) > 40 {
		return false, "too long"
	}

	words := strings.Fields(c)
	if len(words) > 4 {
		return false, "too many words"
	}

	// A colon followed by a clause is a headline fragment, not a topic.
	if i := strings.Index(c, ":"); i >= 0 && len(c)-i-1 >= 5 {
		return false, "sentence fragment"
	}

	if leadingConnectors[strings.ToLower(words[0])] {
		return false, "leading connector word"
	}
	if trailingConnectors[strings.ToLower(words[len(words)-1])] {
		return false, "trailing connector word"
	}

	// Multi-word candidates should name something: require at least one
	// capitalized word as a cheap proper-noun heuristic.
	if len(words) > 1 && !anyCapitalized(words) {
		return false, "no capitalized words"
	}

	for _, p := range garbagePatterns {
		if p.MatchString(c) {
			return false, "garbage pattern"
		}
	}

	return true, ""
}

// IsGigaTopic reports whether the candidate is on the oversaturation
// denylist, either exactly or as a "<term> tutorial"/"<term> guide"
// variant. Giga-topics are rejected at ingestion; if scored anyway their
// supply is forced to 100.
func (s *Scorer) IsGigaTopic(candidate string) bool {
	norm := NormalizeTopicKey(candidate)
	if norm == "" {
		return false
	}
	for _, term := range s.cfg.GigaTopics {
		t := NormalizeTopicKey(term)
		if norm == t || norm == t+" tutorial" || norm == t+" guide" {
			return true
		}
	}
	return false
}

// GigaSupplyPenalty returns the extra supply applied to candidates that
// contain a denylisted term without being one. "React Native Navigation"
// contains "react" but is a specific compound term that may still be
// viable, so it takes a penalty instead of full saturation.
func (s *Scorer) GigaSupplyPenalty(candidate string) float64 {
	if s.IsGigaTopic(candidate) {
		return 0 // full saturation handled by the caller, not a penalty
	}

	norm := NormalizeTopicKey(candidate)
	tokens := wordSet(strings.Fields(norm)...)

	for _, term := range s.cfg.GigaTopics {
		t := NormalizeTopicKey(term)
		if t == "" || norm == t {
			continue
		}
		if tokens[t] || (strings.Contains(t, " ") && strings.Contains(norm, t)) {
			return s.cfg.GigaPartialPenalty
		}
	}
	return 0
}

// GigaAdjustedSupply applies the denylist to a computed supply score: a
// full giga-topic match pins supply to 100, a partial match adds the
// penalty. The result never exceeds 100.
func (s *Scorer) GigaAdjustedSupply(keyword string, supply float64) float64 {
	if s.IsGigaTopic(keyword) {
		return 100
	}
	return math.Min(supply+s.GigaSupplyPenalty(keyword), 100)
}

// FilterCandidate runs the full candidate gate: validity first, then the
// giga-topic denylist. Once rejected a candidate never re-enters the
// pipeline.
func (s *Scorer) FilterCandidate(raw string) FilterResult {
	if ok, reason := s.IsValidTopic(raw); !ok {
		return FilterResult{Reason: reason}
	}
	if s.IsGigaTopic(raw) {
		return FilterResult{Reason: "oversaturated topic", ForcedSaturated: true}
	}
	return FilterResult{Accepted: true}
}

func anyCapitalized(words []string) bool {
	for _, w := range words {
		r := []rune(w)[0]
		if unicode.IsUpper(r) {
			return true
		}
	}
	return false
}

func wordSet(words ...string) map[string]bool {
	set := make(map[string]bool, len(words))
	for _, w := range words {
		set[w] = true
	}
	return set
}
