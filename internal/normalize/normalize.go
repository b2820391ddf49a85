// Package normalize превращает сырых кандидатов из адаптеров в пригодные для архива.
package normalize

import (
	"strings"
	"time"

	"github.com/SuYxh/ai-news-aggregator/internal/news"
	"github.com/SuYxh/ai-news-aggregator/internal/urlnorm"
)

// Candidate обрезает заголовок и канонизирует URL.
// Второе значение false означает, что кандидат отброшен.
func Candidate(c news.Candidate) (news.Candidate, bool) {
	title := strings.TrimSpace(c.Title)
	rawURL := strings.TrimSpace(c.URL)
	if title == "" || rawURL == "" || !urlnorm.IsHTTP(rawURL) {
		return news.Candidate{}, false
	}

	out := c
	out.Title = title
	out.URL = urlnorm.Normalize(rawURL)
	out.SiteID = strings.TrimSpace(c.SiteID)
	out.SiteName = strings.TrimSpace(c.SiteName)
	out.Source = strings.TrimSpace(c.Source)
	if c.PublishedAt != nil {
		t := c.PublishedAt.UTC().Truncate(time.Second)
		out.PublishedAt = &t
	}
	return out, true
}

// All нормализует пачку кандидатов и возвращает число отброшенных.
func All(candidates []news.Candidate) ([]news.Candidate, int) {
	out := make([]news.Candidate, 0, len(candidates))
	dropped := 0
	for _, c := range candidates {
		n, ok := Candidate(c)
		if !ok {
			dropped++
			continue
		}
		out = append(out, n)
	}
	return out, dropped
}
