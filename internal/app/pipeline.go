package app

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/SuYxh/ai-news-aggregator/internal/archive"
	"github.com/SuYxh/ai-news-aggregator/internal/bilingual"
	"github.com/SuYxh/ai-news-aggregator/internal/news"
	"github.com/SuYxh/ai-news-aggregator/internal/normalize"
	"github.com/SuYxh/ai-news-aggregator/internal/output"
	"github.com/SuYxh/ai-news-aggregator/internal/payload"
	"github.com/SuYxh/ai-news-aggregator/internal/sources"
	"github.com/SuYxh/ai-news-aggregator/internal/window"
)

// ErrNotConfigured возвращается, когда пайплайн запущен без обязательных зависимостей.
var ErrNotConfigured = errors.New("pipeline dependencies not configured")

// Clock определяет источник времени (удобно подменять в тестах).
type Clock func() time.Time

// SourceRunner опрашивает встроенные адаптеры.
type SourceRunner interface {
	Run(ctx context.Context, now time.Time) []sources.Result
}

// FeedCollector загружает ленты из OPML.
type FeedCollector interface {
	Path() string
	Collect(ctx context.Context, now time.Time) (sources.FeedResult, error)
}

// ArchiveStore хранит архив между запусками.
type ArchiveStore interface {
	Load(ctx context.Context) (*archive.Store, error)
	Save(ctx context.Context, payload news.ArchivePayload) error
}

// Filter оставляет тематически релевантные записи.
type Filter interface {
	Apply(records []news.Record) []news.Record
}

// Enricher добавляет двуязычные заголовки.
type Enricher interface {
	Enrich(ctx context.Context, aiItems, allItems []news.Record, budget *bilingual.Budget) ([]news.Record, []news.Record, bilingual.Stats)
}

// TitleCache сохраняет кэш переводов.
type TitleCache interface {
	Save(path string, max int) error
}

// Writer пишет выходные файлы в каталог.
type Writer interface {
	EnsureDir() error
	Path(name string) string
	WriteJSON(name string, v any) error
}

// Options — числовые параметры запуска.
type Options struct {
	WindowHours     int
	WideWindowHours int
	ArchiveDays     int
	TranslateMaxNew int
	CacheMaxEntries int
	// Location — часовой пояс, в котором источники пишут время без зоны.
	Location *time.Location
}

// PipelineDeps перечисляет зависимости пайплайна.
type PipelineDeps struct {
	Sources  SourceRunner
	Feeds    FeedCollector // nil = OPML отключён
	Archive  ArchiveStore
	Filter   Filter
	Enricher Enricher
	Cache    TitleCache
	Writer   Writer
	Options  Options
	Logger   zerolog.Logger
	Clock    Clock
	Rand     *rand.Rand
	RunID    func() string
}

// Report — краткий итог запуска.
type Report struct {
	RunID          string
	FetchedRaw     int
	Dropped        int
	Pruned         int
	ArchiveTotal   int
	ItemsWindow    int
	ItemsWide      int
	Translation    bilingual.Stats
	FailedSites    []string
	LatestFile     string
	WideLatestFile string
}

// Pipeline инкапсулирует один проход агрегатора.
type Pipeline struct {
	sources  SourceRunner
	feeds    FeedCollector
	archive  ArchiveStore
	filter   Filter
	enricher Enricher
	cache    TitleCache
	writer   Writer
	opts     Options
	logger   zerolog.Logger
	clock    Clock
	rng      *rand.Rand
	runID    func() string
}

// NewPipeline создаёт новый экземпляр пайплайна.
func NewPipeline(deps PipelineDeps) *Pipeline {
	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}
	runID := deps.RunID
	if runID == nil {
		runID = uuid.NewString
	}
	opts := deps.Options
	if opts.Location == nil {
		opts.Location = time.UTC
	}

	return &Pipeline{
		sources:  deps.Sources,
		feeds:    deps.Feeds,
		archive:  deps.Archive,
		filter:   deps.Filter,
		enricher: deps.Enricher,
		cache:    deps.Cache,
		writer:   deps.Writer,
		opts:     opts,
		logger:   deps.Logger.With().Str("component", "pipeline").Logger(),
		clock:    clock,
		rng:      deps.Rand,
		runID:    runID,
	}
}

// Run исполняет полный цикл: сбор, слияние с архивом, отбор окон, обогащение и запись файлов.
// Файлы пишутся только после успешного завершения всех шагов.
func (p *Pipeline) Run(ctx context.Context) (Report, error) {
	if err := p.validateDeps(); err != nil {
		return Report{}, err
	}

	now := p.clock().UTC().Truncate(time.Second)
	report := Report{RunID: p.runID()}
	log := p.logger.With().Str("run_id", report.RunID).Logger()

	if err := p.writer.EnsureDir(); err != nil {
		return report, fmt.Errorf("prepare output dir: %w", err)
	}

	store, err := p.archive.Load(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("archive load failed, starting empty")
		store = archive.New()
	}

	log.Info().Msg("step 1: fetching sources")
	localNow := now.In(p.opts.Location)
	candidates, statuses := sources.Flatten(p.sources.Run(ctx, localNow))
	feedResult, opmlEnabled := p.collectFeeds(ctx, localNow, log)
	if p.feeds != nil {
		candidates = append(candidates, feedResult.Items...)
		statuses = append(statuses, feedResult.Summary)
	}
	if err := ctx.Err(); err != nil {
		return report, fmt.Errorf("fetch sources: %w", err)
	}
	report.FetchedRaw = len(candidates)
	log.Info().Int("raw_items", len(candidates)).Int("sources", len(statuses)).Msg("sources fetched")

	log.Info().Msg("step 2: merging archive")
	valid, dropped := normalize.All(candidates)
	for _, c := range valid {
		store.Upsert(c, now)
	}
	report.Dropped = dropped
	report.Pruned = store.Prune(now, time.Duration(p.opts.ArchiveDays)*24*time.Hour)
	report.ArchiveTotal = store.Len()
	log.Info().Int("dropped", dropped).Int("pruned", report.Pruned).Int("archive_total", report.ArchiveTotal).Msg("archive merged")

	log.Info().Msg("step 3: selecting windows")
	snapshot := store.Snapshot()
	wideAll := window.Select(snapshot, now, hours(p.opts.WideWindowHours))
	wideAI := p.filter.Apply(wideAll)
	log.Info().Int("ai_items", len(wideAI)).Int("all_items", len(wideAll)).Int("window_hours", p.opts.WideWindowHours).Msg("wide window selected")

	log.Info().Msg("step 4: bilingual enrichment")
	budget := bilingual.NewBudget(p.opts.TranslateMaxNew)
	wideAI, wideAll, report.Translation = p.enricher.Enrich(ctx, wideAI, wideAll, budget)

	narrowAll := window.Recut(wideAll, now, hours(p.opts.WindowHours))
	narrowAI := window.Recut(wideAI, now, hours(p.opts.WindowHours))

	builder := payload.Builder{
		Now:          now,
		ArchiveTotal: store.Len(),
		Statuses:     statuses,
		Rand:         p.dedupeRand(now),
	}
	latest := builder.Latest(narrowAll, narrowAI, p.opts.WindowHours)
	wide := builder.Latest(wideAll, wideAI, p.opts.WideWindowHours)
	status := payload.Status(payload.StatusInput{
		Now:              now,
		RunID:            report.RunID,
		Statuses:         statuses,
		Feeds:            feedResult.Feeds,
		OPMLPath:         p.opmlPath(),
		OPMLEnabled:      opmlEnabled,
		FetchedRawItems:  report.FetchedRaw,
		ItemsBeforeTopic: len(wideAll),
		ItemsInWindow:    latest.TotalItems,
	})
	report.ItemsWindow = latest.TotalItems
	report.ItemsWide = wide.TotalItems
	report.FailedSites = status.FailedSites

	if err := ctx.Err(); err != nil {
		return report, fmt.Errorf("build payloads: %w", err)
	}

	log.Info().Msg("step 5: writing output files")
	report.LatestFile = output.LatestFile(p.opts.WindowHours)
	report.WideLatestFile = output.LatestFile(p.opts.WideWindowHours)
	if err := p.writer.WriteJSON(report.LatestFile, latest); err != nil {
		return report, fmt.Errorf("write %s: %w", report.LatestFile, err)
	}
	if err := p.writer.WriteJSON(report.WideLatestFile, wide); err != nil {
		return report, fmt.Errorf("write %s: %w", report.WideLatestFile, err)
	}
	if err := p.writer.WriteJSON(output.StatusFile, status); err != nil {
		return report, fmt.Errorf("write %s: %w", output.StatusFile, err)
	}
	if err := p.archive.Save(ctx, archive.Payload(store, now)); err != nil {
		return report, fmt.Errorf("save archive: %w", err)
	}
	if err := p.cache.Save(p.writer.Path(output.TitleCacheFile), p.opts.CacheMaxEntries); err != nil {
		return report, fmt.Errorf("save title cache: %w", err)
	}

	log.Info().
		Int("items_window", report.ItemsWindow).
		Int("items_wide", report.ItemsWide).
		Int("archive_total", report.ArchiveTotal).
		Msg("pipeline finished")
	return report, nil
}

// collectFeeds возвращает результат OPML и признак того, что файл подписок найден.
// Отсутствующий файл или ошибка чтения становятся неуспешным сводным статусом opmlrss.
func (p *Pipeline) collectFeeds(ctx context.Context, now time.Time, log zerolog.Logger) (sources.FeedResult, bool) {
	if p.feeds == nil {
		return sources.FeedResult{}, false
	}

	log.Info().Str("path", p.feeds.Path()).Msg("fetching opml feeds")
	res, err := p.feeds.Collect(ctx, now)
	switch {
	case err == nil:
		return res, true
	case errors.Is(err, os.ErrNotExist):
		log.Warn().Str("path", p.feeds.Path()).Msg("opml file not found")
		return sources.FeedResult{Summary: sources.FailedSummary(fmt.Errorf("OPML not found: %s", p.feeds.Path()))}, false
	default:
		log.Warn().Err(err).Msg("opml feeds failed")
		return sources.FeedResult{Summary: sources.FailedSummary(err)}, true
	}
}

func (p *Pipeline) opmlPath() string {
	if p.feeds == nil {
		return ""
	}
	return p.feeds.Path()
}

func (p *Pipeline) dedupeRand(now time.Time) *rand.Rand {
	if p.rng != nil {
		return p.rng
	}
	return rand.New(rand.NewPCG(uint64(now.UnixNano()), rand.Uint64()))
}

func (p *Pipeline) validateDeps() error {
	switch {
	case p.sources == nil,
		p.archive == nil,
		p.filter == nil,
		p.enricher == nil,
		p.cache == nil,
		p.writer == nil,
		p.clock == nil:
		return ErrNotConfigured
	default:
		return nil
	}
}

func hours(n int) time.Duration {
	return time.Duration(n) * time.Hour
}
