package sources

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"

	"github.com/SuYxh/ai-news-aggregator/internal/news"
	"github.com/SuYxh/ai-news-aggregator/internal/sites"
	"github.com/SuYxh/ai-news-aggregator/internal/urlnorm"
)

const aihubEndpoint = "https://ai.hubtoday.app/"

var issueDatePattern = regexp.MustCompile(`AI资讯日报\s*(\d{4})[/\-](\d{1,2})[/\-](\d{1,2})`)

// AIHubToday разбирает выпуск ежедневного дайджеста ai.hubtoday.app.
// Все ссылки выпуска получают дату выпуска.
type AIHubToday struct {
	base
	fetcher  *Fetcher
	endpoint string
}

// NewAIHubToday создаёт адаптер.
func NewAIHubToday(f *Fetcher) *AIHubToday {
	return &AIHubToday{
		base:     base{id: sites.AIHubToday, name: "AI HubToday"},
		fetcher:  f,
		endpoint: aihubEndpoint,
	}
}

// Fetch реализует Adapter.
func (a *AIHubToday) Fetch(ctx context.Context, now time.Time) ([]news.Candidate, error) {
	doc, err := a.fetcher.GetDocument(ctx, a.endpoint)
	if err != nil {
		return nil, fmt.Errorf("aihubtoday: %w", err)
	}

	c := digestCollector{
		adapter: a,
		issued:  issueDate(doc.Find("body").Text(), now.Location()),
		generic: sites.Lookup(sites.AIHubToday).GenericTitle,
		seen:    make(map[string]struct{}),
	}

	doc.Find("article .content li p").Each(func(_ int, p *goquery.Selection) {
		link := p.Find("a[href^='http']").First()
		if link.Length() == 0 {
			return
		}
		c.add(strongText(p), link.AttrOr("href", ""), "Daily Digest", "")
	})
	doc.Find("article .content a[target='_blank']").Each(func(_ int, link *goquery.Selection) {
		c.add(link.Text(), link.AttrOr("href", ""), "Daily Digest", strongText(link.Closest("p")))
	})
	doc.Find("article a[href^='http']").Each(func(_ int, link *goquery.Selection) {
		c.add(link.Text(), link.AttrOr("href", ""), "Daily Digest", strongText(link.Closest("p")))
	})

	if len(c.items) == 0 {
		doc.Find("a[href^='http']").Each(func(_ int, link *goquery.Selection) {
			c.add(link.Text(), link.AttrOr("href", ""), "Page Fallback", strongText(link.Closest("p")))
		})
	}
	return c.items, nil
}

type digestCollector struct {
	adapter *AIHubToday
	issued  *time.Time
	generic func(string) bool
	seen    map[string]struct{}
	items   []news.Candidate
}

func (c *digestCollector) add(title, href, source, fallback string) {
	title = strings.TrimSpace(title)
	href = strings.TrimSpace(href)
	fallback = strings.TrimSpace(fallback)

	if c.generic(title) && fallback != "" {
		title = fallback
	}
	if utf8.RuneCountInString(title) < 5 || !strings.HasPrefix(href, "http") {
		return
	}
	if title == "自媒体账号" || strings.Contains(href, "source.hubtoday.app") {
		return
	}
	if c.generic(title) {
		return
	}

	key := urlnorm.Normalize(href)
	if _, ok := c.seen[key]; ok {
		return
	}
	c.seen[key] = struct{}{}

	c.items = append(c.items, c.adapter.candidate(source, title, href, c.issued, map[string]any{}))
}

func strongText(p *goquery.Selection) string {
	if p.Length() == 0 {
		return ""
	}
	return strings.TrimSpace(p.Find("strong").First().Text())
}

func issueDate(text string, loc *time.Location) *time.Time {
	m := issueDatePattern.FindStringSubmatch(text)
	if m == nil {
		return nil
	}
	year, _ := strconv.Atoi(m[1])
	month, _ := strconv.Atoi(m[2])
	day, _ := strconv.Atoi(m[3])
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, loc)
	return &t
}
