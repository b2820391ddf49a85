package identity

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/SuYxh/ai-news-aggregator/internal/news"
)

func TestHash_StableAcrossCosmeticVariation(t *testing.T) {
	base := Hash("techurls", "Hacker News", "OpenAI releases new model", "https://example.com/a")

	variants := []struct {
		name                       string
		site, source, title, rawURL string
	}{
		{"case", "TechURLs", "HACKER NEWS", "openai RELEASES new model", "https://example.com/a"},
		{"whitespace", "  techurls ", " Hacker News\t", "  OpenAI releases new model ", "https://example.com/a"},
		{"tracking params", "techurls", "Hacker News", "OpenAI releases new model", "https://example.com/a?utm_source=x&fbclid=1"},
		{"fragment and slash", "techurls", "Hacker News", "OpenAI releases new model", "https://example.com/a/#comments"},
	}

	for _, v := range variants {
		t.Run(v.name, func(t *testing.T) {
			assert.Equal(t, base, Hash(v.site, v.source, v.title, v.rawURL))
		})
	}
}

func TestHash_SourceLabelIsPartOfIdentity(t *testing.T) {
	a := Hash("tophub", "36氪", "同一条新闻", "https://example.com/a")
	b := Hash("tophub", "虎嗅", "同一条新闻", "https://example.com/a")
	assert.NotEqual(t, a, b)
}

func TestHash_Format(t *testing.T) {
	id := Hash("s", "src", "t", "https://example.com/")
	assert.Len(t, id, 40)
	assert.Regexp(t, `^[0-9a-f]{40}$`, id)
}

func TestOf(t *testing.T) {
	c := news.Candidate{SiteID: "zeli", Source: "Hacker News · 24h最热", Title: "Title", URL: "https://example.com/x"}
	assert.Equal(t, Hash("zeli", "Hacker News · 24h最热", "Title", "https://example.com/x"), Of(c))
}
