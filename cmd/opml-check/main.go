package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/SuYxh/ai-news-aggregator/internal/config"
	"github.com/SuYxh/ai-news-aggregator/internal/logging"
	"github.com/SuYxh/ai-news-aggregator/internal/news"
	"github.com/SuYxh/ai-news-aggregator/internal/sources"
)

// FeedReport — результат проверки одной ленты.
type FeedReport struct {
	Title     string `yaml:"title"`
	URL       string `yaml:"url"`
	Effective string `yaml:"effective_url,omitempty"`
	Items     int    `yaml:"items"`
	Skipped   string `yaml:"skipped,omitempty"`
	Error     string `yaml:"error,omitempty"`
}

// Report — итог проверки OPML-файла.
type Report struct {
	CheckedAt string       `yaml:"checked_at"`
	OPMLPath  string       `yaml:"opml_path"`
	OK        []FeedReport `yaml:"ok"`
	Empty     []FeedReport `yaml:"empty"`
	Failed    []FeedReport `yaml:"failed"`
	Skipped   []FeedReport `yaml:"skipped"`
	// SuggestSkipExact можно вставить в rss.skip_exact.
	SuggestSkipExact []string `yaml:"suggest_skip_exact"`
}

func main() {
	configPath := flag.String("config", "configs/pipeline.yaml", "path to pipeline.yaml")
	opmlPath := flag.String("opml", "", "OPML file (overrides rss.opml_path)")
	outputFile := flag.String("out", "", "write YAML report to file instead of stdout")
	flag.Parse()

	logger, err := logging.New("local", "warn")
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ init logger: %v\n", err)
		os.Exit(1)
	}

	cfg, err := config.LoadRootOrDefault(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ load config: %v\n", err)
		os.Exit(1)
	}
	if *opmlPath != "" {
		cfg.RSS.OPMLPath = *opmlPath
	}
	if strings.TrimSpace(cfg.RSS.OPMLPath) == "" {
		fmt.Fprintln(os.Stderr, "❌ OPML path is empty: set rss.opml_path or --opml")
		os.Exit(1)
	}

	fmt.Fprintf(os.Stderr, "🚀 Проверяю ленты из %s\n", cfg.RSS.OPMLPath)

	collector := sources.NewOPMLFeeds(cfg.RSS, sources.NewFetcher(cfg.HTTP, nil), logger)
	now := time.Now().UTC()
	res, err := collector.Collect(context.Background(), now)
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ %v\n", err)
		os.Exit(1)
	}

	report := buildReport(cfg.RSS.OPMLPath, now, res.Feeds)
	fmt.Fprintf(os.Stderr, "📊 ok=%d empty=%d failed=%d skipped=%d\n",
		len(report.OK), len(report.Empty), len(report.Failed), len(report.Skipped))

	data, err := yaml.Marshal(report)
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ marshal report: %v\n", err)
		os.Exit(1)
	}

	if *outputFile == "" {
		_, _ = os.Stdout.Write(data)
		return
	}
	header := "# Отчёт проверки OPML-лент\n# Сгенерировано cmd/opml-check\n\n"
	if err := os.WriteFile(*outputFile, []byte(header+string(data)), 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "❌ write report: %v\n", err)
		os.Exit(1)
	}
	fmt.Fprintf(os.Stderr, "💾 Результаты сохранены в %s\n", *outputFile)
}

func buildReport(path string, now time.Time, feeds []news.FeedStatus) Report {
	report := Report{
		CheckedAt: now.Format(time.RFC3339),
		OPMLPath:  path,
	}
	for _, f := range feeds {
		fr := FeedReport{Title: f.FeedTitle, URL: f.FeedURL, Items: f.ItemCount}
		if f.EffectiveFeedURL != nil && *f.EffectiveFeedURL != f.FeedURL {
			fr.Effective = *f.EffectiveFeedURL
		}
		switch {
		case f.Skipped:
			if f.SkipReason != nil {
				fr.Skipped = *f.SkipReason
			}
			report.Skipped = append(report.Skipped, fr)
		case !f.OK:
			if f.Error != nil {
				fr.Error = *f.Error
			}
			report.Failed = append(report.Failed, fr)
			report.SuggestSkipExact = append(report.SuggestSkipExact, f.FeedURL)
		case f.ItemCount == 0:
			report.Empty = append(report.Empty, fr)
		default:
			report.OK = append(report.OK, fr)
		}
	}
	sort.Strings(report.SuggestSkipExact)
	return report
}
