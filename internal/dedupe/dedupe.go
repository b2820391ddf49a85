// Package dedupe схлопывает дубликаты записей в кластеры и выбирает представителя.
package dedupe

import (
	"math/rand/v2"
	"sort"
	"strings"

	"github.com/SuYxh/ai-news-aggregator/internal/news"
	"github.com/SuYxh/ai-news-aggregator/internal/sites"
	"github.com/SuYxh/ai-news-aggregator/internal/urlnorm"
)

// Mode задаёт способ выбора представителя кластера.
type Mode int

const (
	// Random — равновероятный выбор; используется для полного представления.
	Random Mode = iota
	// Latest — самое позднее событие, при равенстве больший id.
	Latest
)

func (m Mode) String() string {
	if m == Latest {
		return "latest"
	}
	return "random"
}

// Key возвращает ключ кластера записи.
func Key(r news.Record) string {
	u := urlnorm.Normalize(r.URL)
	if sites.Lookup(r.SiteID).URLOnlyGrouping {
		return "url::" + u
	}
	title := r.TitleOriginal
	if title == "" {
		title = r.Title
	}
	return strings.ToLower(title) + "||" + u
}

// Dedupe оставляет по одной записи на ключ. rng нужен только режиму Random;
// nil означает глобальный генератор.
func Dedupe(records []news.Record, mode Mode, rng *rand.Rand) []news.Record {
	groups := group(records, Key)

	out := make([]news.Record, 0, len(groups))
	for _, members := range groups {
		switch {
		case len(members) == 1:
			out = append(out, members[0])
		case mode == Random:
			out = append(out, members[intN(rng, len(members))])
		default:
			out = append(out, latest(members))
		}
	}

	SortByEventTime(out)
	return out
}

// CollapseByURL — узкий проход для сайтов с заглушками в заголовках:
// кластер по URL, предпочтение нормальным заголовкам, затем правило Latest.
// Записи остальных сайтов проходят без изменений.
func CollapseByURL(records []news.Record) []news.Record {
	keep := make([]news.Record, 0, len(records))
	prone := make([]news.Record, 0)
	for _, r := range records {
		if sites.Lookup(r.SiteID).HasPlaceholderTitles() {
			prone = append(prone, r)
			continue
		}
		keep = append(keep, r)
	}

	groups := group(prone, func(r news.Record) string { return urlnorm.Normalize(r.URL) })
	for _, members := range groups {
		if urlnorm.Normalize(members[0].URL) == "" {
			continue
		}
		preferred := make([]news.Record, 0, len(members))
		for _, m := range members {
			generic := sites.Lookup(m.SiteID).GenericTitle
			if generic == nil || !generic(m.Title) {
				preferred = append(preferred, m)
			}
		}
		if len(preferred) == 0 {
			preferred = members
		}
		keep = append(keep, latest(preferred))
	}

	SortByEventTime(keep)
	return keep
}

// SortByEventTime сортирует по времени события по убыванию; записи без времени в конце, равенство по id.
func SortByEventTime(records []news.Record) {
	sort.SliceStable(records, func(i, j int) bool {
		ti, tj := sites.EventTime(records[i]), sites.EventTime(records[j])
		switch {
		case ti == nil && tj == nil:
			return records[i].ID < records[j].ID
		case ti == nil:
			return false
		case tj == nil:
			return true
		case !ti.Equal(*tj):
			return ti.After(*tj)
		default:
			return records[i].ID < records[j].ID
		}
	})
}

// Beats сообщает, побеждает ли candidate текущего лучшего по правилу Latest.
func Beats(candidate, best news.Record) bool {
	ct, bt := sites.EventTime(candidate), sites.EventTime(best)
	switch {
	case ct == nil && bt == nil:
		return candidate.ID > best.ID
	case bt == nil:
		return true
	case ct == nil:
		return false
	case ct.After(*bt):
		return true
	case ct.Before(*bt):
		return false
	default:
		return candidate.ID > best.ID
	}
}

func latest(members []news.Record) news.Record {
	best := members[0]
	for _, m := range members[1:] {
		if Beats(m, best) {
			best = m
		}
	}
	return best
}

// group собирает кластеры в порядке первого появления ключа.
func group(records []news.Record, key func(news.Record) string) [][]news.Record {
	index := make(map[string]int, len(records))
	groups := make([][]news.Record, 0, len(records))
	for _, r := range records {
		k := key(r)
		i, ok := index[k]
		if !ok {
			i = len(groups)
			index[k] = i
			groups = append(groups, nil)
		}
		groups[i] = append(groups[i], r)
	}
	return groups
}

func intN(rng *rand.Rand, n int) int {
	if rng == nil {
		return rand.IntN(n)
	}
	return rng.IntN(n)
}
