package bilingual

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/SuYxh/ai-news-aggregator/internal/news"
	"github.com/SuYxh/ai-news-aggregator/internal/textutil"
	"github.com/SuYxh/ai-news-aggregator/internal/translate"
	"github.com/SuYxh/ai-news-aggregator/internal/urlnorm"
)

// Options настраивает живые вызовы.
type Options struct {
	// Concurrency — число одновременных живых вызовов; 1 = последовательно.
	Concurrency int
	// RequestsPerSecond — ограничение частоты вызовов; 0 = без ограничения.
	RequestsPerSecond float64
}

// Stats — счётчики одного обогащения.
type Stats struct {
	Items      int
	CJK        int
	Skipped    int
	FromIndex  int
	FromCache  int
	Translated int
	Failed     int
}

// Enricher заполняет поля title_original, title_en, title_zh и title_bilingual.
type Enricher struct {
	provider    translate.Provider
	cache       *Cache
	limiter     *rate.Limiter
	concurrency int
	logger      zerolog.Logger
}

// NewEnricher создаёт обогатитель. provider может быть nil: тогда живые вызовы не делаются.
func NewEnricher(provider translate.Provider, cache *Cache, opts Options, logger zerolog.Logger) *Enricher {
	if cache == nil {
		cache = NewCache()
	}
	concurrency := opts.Concurrency
	if concurrency < 1 {
		concurrency = 1
	}
	var limiter *rate.Limiter
	if opts.RequestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), 1)
	}
	return &Enricher{
		provider:    provider,
		cache:       cache,
		limiter:     limiter,
		concurrency: concurrency,
		logger:      logger.With().Str("component", "bilingual").Logger(),
	}
}

// Cache возвращает кэш переводов.
func (e *Enricher) Cache() *Cache {
	return e.cache
}

// Enrich обогащает обе выборки. Живые вызовы разрешены только для aiItems и
// ограничены budget. Входные срезы не изменяются.
func (e *Enricher) Enrich(ctx context.Context, aiItems, allItems []news.Record, budget *Budget) ([]news.Record, []news.Record, Stats) {
	index := BuildIndex(allItems)
	var stats counters

	aiOut := e.enrichSet(ctx, aiItems, index, budget, true, &stats)
	allOut := e.enrichSet(ctx, allItems, index, nil, false, &stats)

	s := stats.snapshot()
	e.logger.Info().
		Int("items", s.Items).
		Int("from_index", s.FromIndex).
		Int("from_cache", s.FromCache).
		Int("translated", s.Translated).
		Int("failed", s.Failed).
		Int("budget_remaining", budget.Remaining()).
		Msg("bilingual enrichment done")
	return aiOut, allOut, s
}

// BuildIndex строит индекс «нормализованный URL → китайский заголовок»; при повторе URL побеждает последний.
func BuildIndex(records []news.Record) map[string]string {
	index := make(map[string]string, len(records))
	for _, r := range records {
		title := strings.TrimSpace(r.Title)
		u := urlnorm.Normalize(r.URL)
		if title != "" && u != "" && textutil.HasCJK(title) {
			index[u] = title
		}
	}
	return index
}

func (e *Enricher) enrichSet(ctx context.Context, items []news.Record, index map[string]string, budget *Budget, allowLive bool, stats *counters) []news.Record {
	out := make([]news.Record, len(items))
	pending := make([]int, 0)

	for i, item := range items {
		r, needsLive := e.enrichOffline(item, index, stats)
		out[i] = r
		if needsLive && allowLive && e.provider != nil {
			pending = append(pending, i)
		}
	}

	if len(pending) == 0 || budget.Remaining() == 0 {
		return out
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.concurrency)
	for _, i := range pending {
		g.Go(func() error {
			title := out[i].TitleOriginal
			// Повторный заголовок мог быть переведён другим воркером.
			zh, ok := e.cache.Get(title)
			if ok {
				stats.fromCache.Add(1)
			} else {
				zh, ok = e.translateLive(gctx, title, budget, stats)
			}
			if ok {
				setTranslation(&out[i], zh)
			}
			return nil
		})
	}
	_ = g.Wait()
	return out
}

// enrichOffline заполняет поля без сети; второе значение сообщает, нужен ли живой перевод.
func (e *Enricher) enrichOffline(item news.Record, index map[string]string, stats *counters) (news.Record, bool) {
	stats.items.Add(1)
	title := strings.TrimSpace(item.Title)
	out := item
	out.TitleOriginal = title
	out.TitleEN = nil
	out.TitleZH = nil
	out.TitleBilingual = title

	if textutil.HasCJK(title) {
		stats.cjk.Add(1)
		out.TitleZH = news.StringPtr(title)
		return out, false
	}
	if !textutil.IsMostlyEnglish(title) {
		stats.skipped.Add(1)
		return out, false
	}
	out.TitleEN = news.StringPtr(title)

	if zh, ok := index[urlnorm.Normalize(item.URL)]; ok {
		stats.fromIndex.Add(1)
		setTranslation(&out, zh)
		return out, false
	}
	if zh, ok := e.cache.Get(title); ok {
		stats.fromCache.Add(1)
		setTranslation(&out, zh)
		return out, false
	}
	return out, true
}

func (e *Enricher) translateLive(ctx context.Context, title string, budget *Budget, stats *counters) (string, bool) {
	if !budget.TryAcquire() {
		return "", false
	}
	if e.limiter != nil {
		if err := e.limiter.Wait(ctx); err != nil {
			budget.Release()
			return "", false
		}
	}

	resp, err := e.provider.Translate(ctx, translate.Request{Text: title, TargetLang: translate.TargetZhCN})
	if err != nil {
		budget.Release()
		stats.failed.Add(1)
		if errors.Is(err, translate.ErrQuotaExhausted) {
			budget.Exhaust()
			e.logger.Warn().Err(err).Msg("translation provider quota exhausted, stopping live calls")
			return "", false
		}
		e.logger.Debug().Err(err).Str("title", title).Msg("live translation failed")
		return "", false
	}

	zh := strings.TrimSpace(resp.Text)
	if zh == "" || zh == title || !textutil.HasCJK(zh) {
		budget.Release()
		stats.failed.Add(1)
		e.logger.Debug().Str("title", title).Str("result", zh).Msg("live translation rejected")
		return "", false
	}

	e.cache.Set(title, zh)
	stats.translated.Add(1)
	return zh, true
}

func setTranslation(r *news.Record, zh string) {
	r.TitleZH = news.StringPtr(zh)
	r.TitleBilingual = zh + " / " + r.TitleOriginal
}

type counters struct {
	items, cjk, skipped, fromIndex, fromCache, translated, failed atomic.Int64
}

func (c *counters) snapshot() Stats {
	return Stats{
		Items:      int(c.items.Load()),
		CJK:        int(c.cjk.Load()),
		Skipped:    int(c.skipped.Load()),
		FromIndex:  int(c.fromIndex.Load()),
		FromCache:  int(c.fromCache.Load()),
		Translated: int(c.translated.Load()),
		Failed:     int(c.failed.Load()),
	}
}
