// Package sources содержит адаптеры источников и параллельный запуск их загрузки.
package sources

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/SuYxh/ai-news-aggregator/internal/news"
)

// Adapter — контракт источника. Между вызовами адаптер состояния не хранит.
type Adapter interface {
	ID() string
	Name() string
	Fetch(ctx context.Context, now time.Time) ([]news.Candidate, error)
}

// Builtin возвращает встроенные адаптеры в порядке запуска.
func Builtin(f *Fetcher) []Adapter {
	return []Adapter{
		NewTechURLs(f),
		NewBuzzing(f),
		NewTopHub(f),
		NewZeli(f),
		NewAIHubToday(f),
		NewAIBase(f),
		NewAIHot(f),
	}
}

// Select оставляет адаптеры из списка ids. Пустой список означает все.
func Select(all []Adapter, ids []string) ([]Adapter, error) {
	if len(ids) == 0 {
		return all, nil
	}
	byID := make(map[string]Adapter, len(all))
	for _, a := range all {
		byID[a.ID()] = a
	}

	selected := make([]Adapter, 0, len(ids))
	for _, raw := range ids {
		id := strings.ToLower(strings.TrimSpace(raw))
		a, ok := byID[id]
		if !ok {
			return nil, fmt.Errorf("unknown adapter %q", raw)
		}
		selected = append(selected, a)
	}
	return selected, nil
}

type base struct {
	id   string
	name string
}

func (b base) ID() string   { return b.id }
func (b base) Name() string { return b.name }

func (b base) candidate(source, title, url string, published *time.Time, meta map[string]any) news.Candidate {
	return news.Candidate{
		SiteID:      b.id,
		SiteName:    b.name,
		Source:      source,
		Title:       title,
		URL:         url,
		PublishedAt: published,
		Meta:        meta,
	}
}
