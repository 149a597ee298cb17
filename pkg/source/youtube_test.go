package source

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseSuggestions(t *testing.T) {
	body := `window.google.ac.h(["rust async",[["rust async tutorial",0],["rust async runtime",0],["rust async book",0]],{"q":"x"}])`
	got := parseSuggestions(body)
	assert.Equal(t, []string{"rust async tutorial", "rust async runtime", "rust async book"}, got)
}

func TestParseSuggestions_Malformed(t *testing.T) {
	assert.Nil(t, parseSuggestions("not jsonp at all"))
	assert.Nil(t, parseSuggestions(`["only the query"]`))
}

func TestPostHoursOld(t *testing.T) {
	now := time.Now().UTC()

	p := Post{PublishedAt: now.Add(-3 * time.Hour)}
	assert.InDelta(t, 3.0, p.HoursOld(now), 1e-9)

	assert.Zero(t, Post{}.HoursOld(now), "unknown publish time reads as fresh")
	future := Post{PublishedAt: now.Add(time.Hour)}
	assert.Zero(t, future.HoursOld(now), "clock skew floors at zero")
}
