package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeTopicKey(t *testing.T) {
	assert.Equal(t, "c++ tutorial", NormalizeTopicKey("  C++   Tutorial! "))
	assert.Equal(t, "c#", NormalizeTopicKey("C#"))
	assert.Equal(t, "node.js", NormalizeTopicKey("Node.js"))
	assert.Equal(t, "reacts new compiler", NormalizeTopicKey("React’s New Compiler"))
	assert.Equal(t, "deepseek r1", NormalizeTopicKey("DeepSeek R1"))
	assert.Equal(t, "", NormalizeTopicKey("!!!"))
}

func TestPlatformCountMultiplier(t *testing.T) {
	assert.Equal(t, 1.0, PlatformCountMultiplier(1))
	assert.Equal(t, 1.4, PlatformCountMultiplier(2))
	assert.Equal(t, 1.7, PlatformCountMultiplier(3))
	assert.Equal(t, 1.7, PlatformCountMultiplier(5))
}

func TestFuseCrossPlatform_GroupsByNormalizedKey(t *testing.T) {
	batch := []Post{
		{Topic: "DeepSeek R1", Platform: PlatformReddit, Score: 900, URL: "r1"},
		{Topic: "deepseek r1!", Platform: PlatformHackerNews, Score: 400, URL: "h1"},
		{Topic: "Zig Comptime", Platform: PlatformHackerNews, Score: 200, URL: "h2"},
	}

	groups := FuseCrossPlatform(batch)
	require.Len(t, groups, 2)

	g := groups["deepseek r1"]
	require.NotNil(t, g)
	assert.Len(t, g.Posts, 2)
	assert.Equal(t, []Platform{PlatformHackerNews, PlatformReddit}, g.Platforms)
	assert.Equal(t, 1.4, g.Multiplier)
	assert.Equal(t, 1300, g.TotalScore)
	assert.True(t, g.CrossPlatform())

	// Best on both platforms -> 100th percentile on each.
	assert.Equal(t, 100.0, g.Strength)
}

func TestFuseCrossPlatform_SinglePostGroup(t *testing.T) {
	batch := []Post{
		{Topic: "Zig Comptime", Platform: PlatformHackerNews, Score: 300, URL: "h1"},
		{Topic: "Bun Bundler", Platform: PlatformHackerNews, Score: 100, URL: "h2"},
	}

	groups := FuseCrossPlatform(batch)
	g := groups["bun bundler"]
	require.NotNil(t, g)
	assert.Equal(t, 1.0, g.Multiplier)
	assert.False(t, g.CrossPlatform(), "single-post groups are never badged cross-platform")

	// Rank 2 of 2 on HN: (1 - 1/2) * 100 = 50.
	assert.Equal(t, 50.0, g.Strength)
}

func TestFuseCrossPlatform_StrengthAveragesPlatformPercentiles(t *testing.T) {
	batch := []Post{
		{Topic: "Ollama", Platform: PlatformReddit, Score: 500, URL: "r1"},
		{Topic: "Other A", Platform: PlatformReddit, Score: 900, URL: "r2"},
		{Topic: "Ollama", Platform: PlatformHackerNews, Score: 250, URL: "h1"},
	}

	g := FuseCrossPlatform(batch)["ollama"]
	// Reddit: rank 2 of 2 -> 50. HN: rank 1 of 1 -> 100. Average 75.
	assert.Equal(t, 75.0, g.Strength)
}
