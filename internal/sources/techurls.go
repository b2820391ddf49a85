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
)

const techURLsEndpoint = "https://techurls.com/"

// TechURLs разбирает блоки издателей на главной странице techurls.com.
type TechURLs struct {
	base
	fetcher  *Fetcher
	endpoint string
}

// NewTechURLs создаёт адаптер.
func NewTechURLs(f *Fetcher) *TechURLs {
	return &TechURLs{
		base:     base{id: sites.TechURLs, name: "TechURLs"},
		fetcher:  f,
		endpoint: techURLsEndpoint,
	}
}

// Fetch реализует Adapter.
func (a *TechURLs) Fetch(ctx context.Context, now time.Time) ([]news.Candidate, error) {
	doc, err := a.fetcher.GetDocument(ctx, a.endpoint)
	if err != nil {
		return nil, fmt.Errorf("techurls: %w", err)
	}

	var items []news.Candidate
	doc.Find("div.publisher-block").Each(func(_ int, block *goquery.Selection) {
		source := publisherSource(block)

		block.Find("div.publisher-link").Each(func(_ int, row *goquery.Selection) {
			link := row.Find("a.article-link").First()
			if link.Length() == 0 {
				return
			}
			href := strings.TrimSpace(link.AttrOr("href", ""))
			if href == "" {
				return
			}

			aside := row.Find(".aside .text").First()
			hint := strings.TrimSpace(aside.AttrOr("title", ""))
			if hint == "" {
				hint = strings.TrimSpace(aside.Text())
			}

			items = append(items, a.candidate(
				source,
				strings.TrimSpace(link.Text()),
				href,
				timeparse.ParsePtr(hint, now),
				map[string]any{"time_hint": hint},
			))
		})
	})
	return items, nil
}

func publisherSource(block *goquery.Selection) string {
	primary := block.Find(".publisher-text .primary").First()
	name := ""
	if primary.Length() > 0 {
		name = strings.TrimSpace(primary.Text())
	} else {
		name = block.AttrOr("data-publisher", "unknown")
	}

	secondary := strings.TrimSpace(block.Find(".publisher-text .secondary").First().Text())
	if secondary != "" && secondary != name {
		return name + " · " + secondary
	}
	return name
}
