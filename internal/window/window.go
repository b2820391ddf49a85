// Package window отбирает записи архива по времени события и готовит их к показу.
package window

import (
	"strings"
	"time"

	"github.com/SuYxh/ai-news-aggregator/internal/dedupe"
	"github.com/SuYxh/ai-news-aggregator/internal/news"
	"github.com/SuYxh/ai-news-aggregator/internal/sites"
	"github.com/SuYxh/ai-news-aggregator/internal/textutil"
)

// Select возвращает записи, чьё время события не раньше now - window,
// с нормализацией для показа. Сортировка по времени события по убыванию.
func Select(records []news.Record, now time.Time, window time.Duration) []news.Record {
	start := now.Add(-window)
	out := make([]news.Record, 0, len(records))

	for _, r := range records {
		if !inWindow(r, start) {
			continue
		}

		normalized := r
		normalized.Title = textutil.FixMojibake(r.Title)
		normalized.Source = textutil.FixMojibake(sites.DisplaySource(r))

		if dropTitle(normalized) {
			continue
		}
		out = append(out, normalized)
	}

	return dedupe.CollapseByURL(out)
}

// Recut повторно применяет только временной предикат, сохраняя порядок.
// Нужен, чтобы получить узкое окно из уже обогащённого широкого.
func Recut(records []news.Record, now time.Time, window time.Duration) []news.Record {
	start := now.Add(-window)
	out := make([]news.Record, 0, len(records))
	for _, r := range records {
		if inWindow(r, start) {
			out = append(out, r)
		}
	}
	return out
}

func inWindow(r news.Record, start time.Time) bool {
	ts := sites.EventTime(r)
	return ts != nil && !ts.Before(start)
}

func dropTitle(r news.Record) bool {
	if strings.TrimSpace(r.Title) == "" {
		return true
	}
	placeholder := sites.Lookup(r.SiteID).PlaceholderTitle
	return placeholder != nil && placeholder(r.Title)
}
