package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/rs/zerolog"

	"github.com/SuYxh/ai-news-aggregator/internal/app"
	"github.com/SuYxh/ai-news-aggregator/internal/archive"
	"github.com/SuYxh/ai-news-aggregator/internal/bilingual"
	"github.com/SuYxh/ai-news-aggregator/internal/config"
	"github.com/SuYxh/ai-news-aggregator/internal/filter"
	"github.com/SuYxh/ai-news-aggregator/internal/logging"
	"github.com/SuYxh/ai-news-aggregator/internal/output"
	"github.com/SuYxh/ai-news-aggregator/internal/sources"
	"github.com/SuYxh/ai-news-aggregator/internal/translate"
)

type flags struct {
	configPath      string
	outputDir       string
	windowHours     int
	archiveDays     int
	translateMaxNew int
	rssOPML         string
	rssMaxFeeds     int
}

func parseFlags(defaultConfig string) flags {
	var f flags
	flag.StringVar(&f.configPath, "config", defaultConfig, "path to pipeline.yaml")
	flag.StringVar(&f.outputDir, "output-dir", "", "output directory (overrides pipeline.output_dir)")
	flag.IntVar(&f.windowHours, "window-hours", 0, "narrow window in hours (overrides pipeline.window_hours)")
	flag.IntVar(&f.archiveDays, "archive-days", 0, "archive retention in days (overrides pipeline.archive_days)")
	flag.IntVar(&f.translateMaxNew, "translate-max-new", -1, "max live translations per run (overrides pipeline.translate_max_new)")
	flag.StringVar(&f.rssOPML, "rss-opml", "", "OPML file with RSS subscriptions (overrides rss.opml_path)")
	flag.IntVar(&f.rssMaxFeeds, "rss-max-feeds", -1, "max OPML feeds, 0 means all (overrides rss.max_feeds)")
	flag.Parse()
	return f
}

func (f flags) apply(cfg *config.Root) {
	if f.outputDir != "" {
		cfg.Pipeline.OutputDir = f.outputDir
	}
	if f.windowHours > 0 {
		cfg.Pipeline.WindowHours = f.windowHours
	}
	if f.archiveDays > 0 {
		cfg.Pipeline.ArchiveDays = f.archiveDays
	}
	if f.translateMaxNew >= 0 {
		cfg.Pipeline.TranslateMaxNew = f.translateMaxNew
	}
	if f.rssOPML != "" {
		cfg.RSS.OPMLPath = f.rssOPML
	}
	if f.rssMaxFeeds >= 0 {
		cfg.RSS.MaxFeeds = f.rssMaxFeeds
	}
}

func main() {
	if _, err := config.LoadDotEnv(".env"); err != nil {
		fmt.Fprintf(os.Stderr, "load .env: %v\n", err)
		os.Exit(1)
	}

	envCfg, err := config.LoadEnvConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load env config: %v\n", err)
		os.Exit(1)
	}

	logger, err := logging.New(envCfg.Environment, envCfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, envCfg, parseFlags(envCfg.ConfigPath), logger); err != nil {
		logger.Error().Err(err).Msg("pipeline failed")
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context, envCfg *config.EnvConfig, f flags, logger zerolog.Logger) error {
	rootCfg, err := config.LoadRootOrDefault(f.configPath)
	if err != nil {
		return fmt.Errorf("load pipeline config: %w", err)
	}
	envCfg.Apply(&rootCfg)
	f.apply(&rootCfg)
	if err := rootCfg.Validate(); err != nil {
		return fmt.Errorf("validate config: %w", err)
	}

	fetcher := sources.NewFetcher(rootCfg.HTTP, nil)
	adapters, err := sources.Select(sources.Builtin(fetcher), rootCfg.Pipeline.Adapters)
	if err != nil {
		return fmt.Errorf("select adapters: %w", err)
	}
	runner := sources.NewRunner(adapters, rootCfg.Pipeline.AdapterConcurrency, rootCfg.Pipeline.AdapterTimeout(), logger)

	var feeds app.FeedCollector
	if strings.TrimSpace(rootCfg.RSS.OPMLPath) != "" {
		feeds = sources.NewOPMLFeeds(rootCfg.RSS, fetcher, logger)
	}

	topic, err := filter.New(rootCfg.Filter)
	if err != nil {
		return fmt.Errorf("build filter: %w", err)
	}

	provider, err := buildProvider(ctx, rootCfg, envCfg, logger)
	if err != nil {
		return fmt.Errorf("build translation provider: %w", err)
	}

	writer := output.NewWriter(rootCfg.Pipeline.OutputDir)
	cache, err := bilingual.LoadCache(writer.Path(output.TitleCacheFile))
	if err != nil {
		logger.Warn().Err(err).Msg("title cache unreadable, starting empty")
	}
	enricher := bilingual.NewEnricher(provider, cache, bilingual.Options{
		Concurrency:       rootCfg.Pipeline.TranslateConcurrency,
		RequestsPerSecond: rootCfg.Translation.RequestsPerSecond,
	}, logger)

	p := app.NewPipeline(app.PipelineDeps{
		Sources:  runner,
		Feeds:    feeds,
		Archive:  archive.NewFileStore(writer.Path(output.ArchiveFile), logger),
		Filter:   topic,
		Enricher: enricher,
		Cache:    enricher.Cache(),
		Writer:   writer,
		Options: app.Options{
			WindowHours:     rootCfg.Pipeline.WindowHours,
			WideWindowHours: rootCfg.Pipeline.WideWindowHours,
			ArchiveDays:     rootCfg.Pipeline.ArchiveDays,
			TranslateMaxNew: rootCfg.Pipeline.TranslateMaxNew,
			CacheMaxEntries: rootCfg.Pipeline.CacheMaxEntries,
			Location:        rootCfg.Pipeline.Location(),
		},
		Logger: logger,
	})

	report, err := p.Run(ctx)
	if err != nil {
		return err
	}

	logger.Info().
		Str("run_id", report.RunID).
		Str("latest_file", writer.Path(report.LatestFile)).
		Int("items_window", report.ItemsWindow).
		Int("items_wide", report.ItemsWide).
		Int("archive_total", report.ArchiveTotal).
		Int("translated", report.Translation.Translated).
		Strs("failed_sites", report.FailedSites).
		Msg("pipeline completed successfully")
	return nil
}

// buildProvider возвращает nil, если живой перевод отключён (provider: none).
func buildProvider(ctx context.Context, rootCfg config.Root, envCfg *config.EnvConfig, logger zerolog.Logger) (translate.Provider, error) {
	name := strings.ToLower(strings.TrimSpace(rootCfg.Translation.Provider))
	if name == "none" || rootCfg.Pipeline.TranslateMaxNew == 0 {
		return nil, nil
	}

	registry := translate.NewRegistry(translate.DefaultProviderName)
	if err := registry.Register(translate.NewGoogleProvider("", rootCfg.HTTP.UserAgent, rootCfg.Translation.Timeout())); err != nil {
		return nil, err
	}
	if strings.TrimSpace(envCfg.GeminiAPIKey) != "" {
		client, err := translate.NewGeminiClient(ctx, envCfg.GeminiAPIKey, logger)
		if err != nil {
			return nil, err
		}
		if err := registry.Register(translate.NewGeminiProvider(client, rootCfg.Translation.GeminiModel)); err != nil {
			return nil, err
		}
	}
	return registry.Provider(name)
}
