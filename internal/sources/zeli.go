package sources

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/SuYxh/ai-news-aggregator/internal/news"
	"github.com/SuYxh/ai-news-aggregator/internal/sites"
	"github.com/SuYxh/ai-news-aggregator/internal/timeparse"
)

const (
	zeliEndpoint = "https://zeli.app/api/hacker-news?type=hot24h"
	zeliSource   = "Hacker News · 24h最热"
)

// Zeli читает суточный топ Hacker News через API zeli.app.
type Zeli struct {
	base
	fetcher  *Fetcher
	endpoint string
}

type zeliResponse struct {
	Posts []struct {
		ID    any    `json:"id"`
		Title string `json:"title"`
		URL   string `json:"url"`
		Time  any    `json:"time"`
	} `json:"posts"`
}

// NewZeli создаёт адаптер.
func NewZeli(f *Fetcher) *Zeli {
	return &Zeli{
		base:     base{id: sites.Zeli, name: "Zeli"},
		fetcher:  f,
		endpoint: zeliEndpoint,
	}
}

// Fetch реализует Adapter. Пост без времени получает момент запуска.
func (a *Zeli) Fetch(ctx context.Context, now time.Time) ([]news.Candidate, error) {
	var resp zeliResponse
	if err := a.fetcher.GetJSON(ctx, a.endpoint, &resp); err != nil {
		return nil, fmt.Errorf("zeli: %w", err)
	}

	items := make([]news.Candidate, 0, len(resp.Posts))
	for _, p := range resp.Posts {
		title := strings.TrimSpace(p.Title)
		link := strings.TrimSpace(p.URL)
		if title == "" || link == "" {
			continue
		}

		published := timeparse.Value(p.Time, now)
		if published == nil {
			published = news.TimePtr(now)
		}
		items = append(items, a.candidate(zeliSource, title, link, published, map[string]any{"hn_id": p.ID}))
	}
	return items, nil
}
