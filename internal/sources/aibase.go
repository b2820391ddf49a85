package sources

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/SuYxh/ai-news-aggregator/internal/news"
	"github.com/SuYxh/ai-news-aggregator/internal/sites"
	"github.com/SuYxh/ai-news-aggregator/internal/timeparse"
	"github.com/SuYxh/ai-news-aggregator/internal/urlnorm"
)

const (
	aibaseHome     = "https://www.aibase.com"
	aibaseEndpoint = aibaseHome + "/zh/news"
)

// AIBase разбирает ленту новостей aibase.com.
type AIBase struct {
	base
	fetcher  *Fetcher
	endpoint string
	home     string
}

// NewAIBase создаёт адаптер.
func NewAIBase(f *Fetcher) *AIBase {
	return &AIBase{
		base:     base{id: sites.AIBase, name: "AIbase"},
		fetcher:  f,
		endpoint: aibaseEndpoint,
		home:     aibaseHome,
	}
}

// Fetch реализует Adapter.
func (a *AIBase) Fetch(ctx context.Context, now time.Time) ([]news.Candidate, error) {
	doc, err := a.fetcher.GetDocument(ctx, a.endpoint)
	if err != nil {
		return nil, fmt.Errorf("aibase: %w", err)
	}

	var items []news.Candidate
	doc.Find("a[href^='/news/']").Each(func(_ int, link *goquery.Selection) {
		heading := link.Find("h3").First()
		if heading.Length() == 0 {
			return
		}
		title := strings.TrimSpace(heading.Text())
		href := strings.TrimSpace(link.AttrOr("href", ""))
		if title == "" || href == "" {
			return
		}

		hint := strings.TrimSpace(link.Find("div.text-sm.text-gray-400 span").First().Text())
		items = append(items, a.candidate(
			a.name,
			title,
			urlnorm.Resolve(a.home, href),
			timeparse.ParsePtr(hint, now),
			map[string]any{"time_hint": hint},
		))
	})
	return items, nil
}
