package sources

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/SuYxh/ai-news-aggregator/internal/news"
)

// Result — итог одного адаптера.
type Result struct {
	Status news.FetchStatus
	Items  []news.Candidate
}

// Runner запускает адаптеры на ограниченном пуле и дожидается всех.
type Runner struct {
	adapters    []Adapter
	concurrency int
	timeout     time.Duration
	logger      zerolog.Logger
}

// NewRunner создаёт запускатель. timeout <= 0 отключает дедлайн адаптера.
func NewRunner(adapters []Adapter, concurrency int, timeout time.Duration, logger zerolog.Logger) *Runner {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Runner{
		adapters:    adapters,
		concurrency: concurrency,
		timeout:     timeout,
		logger:      logger.With().Str("component", "sources").Logger(),
	}
}

// Run вызывает все адаптеры. Ошибка адаптера попадает в его статус, остальные продолжают работу.
// Результаты идут в порядке адаптеров, а не завершения.
func (r *Runner) Run(ctx context.Context, now time.Time) []Result {
	results := make([]Result, len(r.adapters))

	var g errgroup.Group
	g.SetLimit(r.concurrency)
	for i, a := range r.adapters {
		g.Go(func() error {
			results[i] = r.runOne(ctx, a, now)
			return nil
		})
	}
	_ = g.Wait()

	return results
}

func (r *Runner) runOne(ctx context.Context, a Adapter, now time.Time) Result {
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	start := time.Now()
	items, err := safeFetch(ctx, a, now)
	elapsed := time.Since(start)

	status := news.FetchStatus{
		SiteID:     a.ID(),
		SiteName:   a.Name(),
		OK:         err == nil,
		DurationMS: elapsed.Milliseconds(),
	}
	if err != nil {
		status.Error = news.StringPtr(err.Error())
		r.logger.Warn().Err(err).Str("site_id", a.ID()).Dur("duration", elapsed).Msg("adapter failed")
		return Result{Status: status}
	}

	status.ItemCount = len(items)
	r.logger.Info().Str("site_id", a.ID()).Int("items", len(items)).Dur("duration", elapsed).Msg("adapter done")
	return Result{Status: status, Items: items}
}

// safeFetch превращает панику адаптера в обычную ошибку.
func safeFetch(ctx context.Context, a Adapter, now time.Time) (items []news.Candidate, err error) {
	defer func() {
		if v := recover(); v != nil {
			items, err = nil, fmt.Errorf("panic: %v", v)
		}
	}()
	return a.Fetch(ctx, now)
}

// Flatten разворачивает результаты в общий список кандидатов и статусов.
func Flatten(results []Result) ([]news.Candidate, []news.FetchStatus) {
	var items []news.Candidate
	statuses := make([]news.FetchStatus, 0, len(results))
	for _, res := range results {
		items = append(items, res.Items...)
		statuses = append(statuses, res.Status)
	}
	return items, statuses
}
