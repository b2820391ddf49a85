package sources

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/SuYxh/ai-news-aggregator/internal/news"
	"github.com/SuYxh/ai-news-aggregator/internal/sites"
	"github.com/SuYxh/ai-news-aggregator/internal/textutil"
	"github.com/SuYxh/ai-news-aggregator/internal/timeparse"
	"github.com/SuYxh/ai-news-aggregator/internal/urlnorm"
)

const buzzingEndpoint = "https://www.buzzing.cc/feed.json"

// Buzzing читает JSON Feed buzzing.cc.
type Buzzing struct {
	base
	fetcher  *Fetcher
	endpoint string
}

type buzzingFeed struct {
	Items []struct {
		Title         string `json:"title"`
		URL           string `json:"url"`
		Source        string `json:"source"`
		SiteName      string `json:"site_name"`
		Channel       string `json:"channel"`
		Category      string `json:"category"`
		DatePublished string `json:"date_published"`
		DateModified  string `json:"date_modified"`
	} `json:"items"`
}

// NewBuzzing создаёт адаптер.
func NewBuzzing(f *Fetcher) *Buzzing {
	return &Buzzing{
		base:     base{id: sites.Buzzing, name: "Buzzing"},
		fetcher:  f,
		endpoint: buzzingEndpoint,
	}
}

// Fetch реализует Adapter.
func (a *Buzzing) Fetch(ctx context.Context, now time.Time) ([]news.Candidate, error) {
	var feed buzzingFeed
	if err := a.fetcher.GetJSON(ctx, a.endpoint, &feed); err != nil {
		return nil, fmt.Errorf("buzzing: %w", err)
	}

	items := make([]news.Candidate, 0, len(feed.Items))
	for _, it := range feed.Items {
		title := strings.TrimSpace(it.Title)
		link := strings.TrimSpace(it.URL)
		if title == "" || link == "" {
			continue
		}

		source := textutil.FirstNonEmpty(it.Source, it.SiteName, it.Channel, it.Category, urlnorm.Host(link), a.name)
		published := timeparse.ParsePtr(textutil.FirstNonEmpty(it.DatePublished, it.DateModified), now)

		items = append(items, a.candidate(source, title, link, published, map[string]any{
			"raw": map[string]string{
				"source":    it.Source,
				"site_name": it.SiteName,
				"channel":   it.Channel,
				"category":  it.Category,
			},
		}))
	}
	return items, nil
}
