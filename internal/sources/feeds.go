package sources

import (
	"bytes"
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/SuYxh/ai-news-aggregator/internal/config"
	"github.com/SuYxh/ai-news-aggregator/internal/news"
	"github.com/SuYxh/ai-news-aggregator/internal/sites"
	"github.com/SuYxh/ai-news-aggregator/internal/textutil"
	"github.com/SuYxh/ai-news-aggregator/internal/timeparse"
	"github.com/SuYxh/ai-news-aggregator/internal/urlnorm"
)

// OPMLSiteName — site_name всех записей из OPML-лент.
const OPMLSiteName = "OPML RSS"

const feedAccept = "application/rss+xml, application/xml, text/xml, application/atom+xml, */*"

// FeedResult — итог обхода OPML: записи, сводный статус и статусы отдельных лент.
type FeedResult struct {
	Items   []news.Candidate
	Summary news.FetchStatus
	Feeds   []news.FeedStatus
}

// OPMLFeeds загружает ленты, перечисленные в OPML-файле.
type OPMLFeeds struct {
	cfg     config.RSS
	fetcher *Fetcher
	logger  zerolog.Logger
}

// NewOPMLFeeds создаёт сборщик лент.
func NewOPMLFeeds(cfg config.RSS, fetcher *Fetcher, logger zerolog.Logger) *OPMLFeeds {
	return &OPMLFeeds{
		cfg:     cfg,
		fetcher: fetcher,
		logger:  logger.With().Str("component", "opml").Logger(),
	}
}

// Path возвращает путь к OPML-файлу.
func (o *OPMLFeeds) Path() string {
	return o.cfg.OPMLPath
}

// Collect читает OPML и загружает ленты. Ошибка возвращается только при нечитаемом файле подписок.
func (o *OPMLFeeds) Collect(ctx context.Context, now time.Time) (FeedResult, error) {
	feeds, err := LoadOPML(o.cfg.OPMLPath)
	if err != nil {
		return FeedResult{}, err
	}
	if o.cfg.MaxFeeds > 0 && len(feeds) > o.cfg.MaxFeeds {
		feeds = feeds[:o.cfg.MaxFeeds]
	}
	o.logger.Info().Int("feeds", len(feeds)).Str("path", o.cfg.OPMLPath).Msg("opml loaded")

	statuses := make([]news.FeedStatus, 0, len(feeds))
	type job struct {
		feed      Feed
		effective string
	}
	var jobs []job
	for _, f := range feeds {
		effective, reason := ResolveFeedURL(o.cfg, f.XMLURL)
		if effective == "" {
			statuses = append(statuses, skippedStatus(f, reason))
			o.logger.Debug().Str("feed", f.Title).Str("reason", reason).Msg("feed skipped")
			continue
		}
		jobs = append(jobs, job{feed: f, effective: effective})
	}

	results := make([]feedFetch, len(jobs))
	var g errgroup.Group
	g.SetLimit(max(o.cfg.MaxConcurrency, 1))
	for i, j := range jobs {
		g.Go(func() error {
			results[i] = o.fetchFeed(ctx, j.feed, j.effective, now)
			return nil
		})
	}
	_ = g.Wait()

	var items []news.Candidate
	for _, r := range results {
		items = append(items, r.items...)
		statuses = append(statuses, r.status)
	}
	sortFeedStatuses(statuses)

	return FeedResult{
		Items:   items,
		Summary: summarize(statuses, len(items)),
		Feeds:   statuses,
	}, nil
}

type feedFetch struct {
	items  []news.Candidate
	status news.FeedStatus
}

func (o *OPMLFeeds) fetchFeed(ctx context.Context, f Feed, effective string, now time.Time) feedFetch {
	if o.cfg.FeedTimeoutSeconds > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(o.cfg.FeedTimeoutSeconds)*time.Second)
		defer cancel()
	}

	start := time.Now()
	items, err := o.safeLoadItems(ctx, f, effective, now)
	elapsed := time.Since(start)

	status := news.FeedStatus{
		FetchStatus: news.FetchStatus{
			SiteID:     FeedSiteID(effective),
			SiteName:   OPMLSiteName,
			OK:         err == nil,
			ItemCount:  len(items),
			DurationMS: elapsed.Milliseconds(),
		},
		FeedTitle:        f.Title,
		FeedURL:          f.XMLURL,
		EffectiveFeedURL: news.StringPtr(effective),
		Replaced:         effective != f.XMLURL,
	}

	log := o.logger.With().Str("feed", f.Title).Dur("duration", elapsed).Logger()
	switch {
	case err != nil:
		status.Error = news.StringPtr(err.Error())
		log.Warn().Err(err).Msg("feed failed")
	case len(items) == 0:
		log.Info().Msg("feed returned no items")
	default:
		log.Debug().Int("items", len(items)).Msg("feed done")
	}
	return feedFetch{items: items, status: status}
}

func (o *OPMLFeeds) safeLoadItems(ctx context.Context, f Feed, effective string, now time.Time) (items []news.Candidate, err error) {
	defer func() {
		if v := recover(); v != nil {
			items, err = nil, fmt.Errorf("panic: %v", v)
		}
	}()
	return o.loadItems(ctx, f, effective, now)
}

// loadItems разбирает ленту gofeed. Записи без распознаваемой даты публикации отбрасываются.
func (o *OPMLFeeds) loadItems(ctx context.Context, f Feed, effective string, now time.Time) ([]news.Candidate, error) {
	body, err := o.fetcher.Get(ctx, effective, feedAccept)
	if err != nil {
		return nil, err
	}
	parsed, err := gofeed.NewParser().Parse(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse feed: %w", err)
	}

	source := textutil.FirstNonEmpty(f.Title, parsed.Title, urlnorm.Host(effective))
	items := make([]news.Candidate, 0, len(parsed.Items))
	for _, entry := range parsed.Items {
		title := strings.TrimSpace(entry.Title)
		link := itemLink(entry)
		if title == "" || link == "" {
			continue
		}
		published := itemPublished(entry, now)
		if published == nil {
			continue
		}
		items = append(items, news.Candidate{
			SiteID:      sites.OPMLRSS,
			SiteName:    OPMLSiteName,
			Source:      source,
			Title:       title,
			URL:         link,
			PublishedAt: published,
			Meta: map[string]any{
				"feed_url":  effective,
				"feed_home": f.HTMLURL,
			},
		})
	}
	return items, nil
}

func itemLink(entry *gofeed.Item) string {
	if link := strings.TrimSpace(entry.Link); link != "" {
		return link
	}
	if strings.HasPrefix(entry.GUID, "http") {
		return strings.TrimSpace(entry.GUID)
	}
	return ""
}

func itemPublished(entry *gofeed.Item, now time.Time) *time.Time {
	switch {
	case entry.PublishedParsed != nil:
		return news.TimePtr(entry.PublishedParsed.UTC())
	case entry.UpdatedParsed != nil:
		return news.TimePtr(entry.UpdatedParsed.UTC())
	}
	if t := timeparse.ParsePtr(entry.Published, now); t != nil {
		return t
	}
	return timeparse.ParsePtr(entry.Updated, now)
}

func skippedStatus(f Feed, reason string) news.FeedStatus {
	if reason == "" {
		reason = "skipped"
	}
	return news.FeedStatus{
		FetchStatus: news.FetchStatus{
			SiteID:   FeedSiteID(f.XMLURL),
			SiteName: OPMLSiteName,
			OK:       true,
		},
		FeedTitle:  f.Title,
		FeedURL:    f.XMLURL,
		Skipped:    true,
		SkipReason: news.StringPtr(reason),
	}
}

func sortFeedStatuses(statuses []news.FeedStatus) {
	c := collate.New(language.Und)
	sort.SliceStable(statuses, func(i, j int) bool {
		return c.CompareString(feedLabel(statuses[i]), feedLabel(statuses[j])) < 0
	})
}

func feedLabel(s news.FeedStatus) string {
	return textutil.FirstNonEmpty(s.FeedTitle, s.FeedURL)
}

// summarize строит сводный статус opmlrss: успех, если хотя бы одна лента загружена.
func summarize(statuses []news.FeedStatus, itemCount int) news.FetchStatus {
	summary := news.FetchStatus{
		SiteID:    sites.OPMLRSS,
		SiteName:  OPMLSiteName,
		ItemCount: itemCount,
	}
	okFeeds, failed := 0, 0
	for _, s := range statuses {
		summary.DurationMS += s.DurationMS
		switch {
		case !s.OK:
			failed++
		case !s.Skipped:
			okFeeds++
		}
	}
	summary.OK = okFeeds > 0
	if failed > 0 {
		summary.Error = news.StringPtr(fmt.Sprintf("%d feeds failed", failed))
	}
	return summary
}

// FailedSummary — сводный статус, когда OPML-файл не удалось использовать.
func FailedSummary(err error) news.FetchStatus {
	return news.FetchStatus{
		SiteID:   sites.OPMLRSS,
		SiteName: OPMLSiteName,
		Error:    news.StringPtr(err.Error()),
	}
}
