// Package extract turns raw post titles into topic candidates.
package extract

import (
	"context"
	"regexp"
	"strings"
)

// Extractor produces candidate keywords for each title. The result slice
// is aligned with the input: result[i] holds the candidates for titles[i].
type Extractor interface {
	Extract(ctx context.Context, titles []string) ([][]string, error)
}

const maxCandidatesPerTitle = 3

var (
	prefixPattern = regexp.MustCompile(`(?i)^(TIL|ELI5|CMV|TIFU|AMA|WIBTA|AITA|Show HN|Ask HN|Tell HN|Launch HN)\s*:?\s*`)
	quotedPattern = regexp.MustCompile(`"([^"]+)"`)
	phrasePattern = regexp.MustCompile(`\b([A-Z][a-zA-Z0-9]*(?:\s+[A-Z][a-zA-Z0-9]*){0,2})\b`)
	punctPattern  = regexp.MustCompile(`[^\w\s]`)
	digitsOnly    = regexp.MustCompile(`^\d+$`)
)

// Heuristic extracts candidates without any external calls: quoted terms,
// capitalized phrases, and short titles used whole.
type Heuristic struct{}

func (Heuristic) Extract(_ context.Context, titles []string) ([][]string, error) {
	out := make([][]string, len(titles))
	for i, title := range titles {
		out[i] = FromTitle(title)
	}
	return out, nil
}

// FromTitle extracts up to three candidate keywords from one title.
// Casing is preserved so downstream filtering can reason about it.
func FromTitle(title string) []string {
	if title == "" {
		return nil
	}

	cleaned := prefixPattern.ReplaceAllString(title, "")

	var candidates []string
	for _, m := range quotedPattern.FindAllStringSubmatch(cleaned, -1) {
		candidates = append(candidates, m[1])
	}
	for _, m := range phrasePattern.FindAllString(cleaned, -1) {
		candidates = append(candidates, m)
	}

	// A short title often is the topic.
	whole := strings.TrimSpace(punctPattern.ReplaceAllString(cleaned, ""))
	if n := len(strings.Fields(whole)); n >= 3 && n <= 6 {
		candidates = append(candidates, whole)
	}

	seen := make(map[string]bool)
	var result []string
	for _, c := range candidates {
		c = strings.TrimSpace(c)
		key := strings.ToLower(c)
		if len(key) <= 3 || seen[key] || digitsOnly.MatchString(key) {
			continue
		}
		seen[key] = true
		result = append(result, c)
		if len(result) == maxCandidatesPerTitle {
			break
		}
	}
	return result
}
