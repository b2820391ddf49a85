// Package payload собирает выходные JSON-структуры запуска.
package payload

import (
	"math/rand/v2"
	"sort"
	"time"

	"github.com/SuYxh/ai-news-aggregator/internal/dedupe"
	"github.com/SuYxh/ai-news-aggregator/internal/filter"
	"github.com/SuYxh/ai-news-aggregator/internal/news"
)

// Builder собирает файлы окон для одного запуска.
type Builder struct {
	Now          time.Time
	ArchiveTotal int
	Statuses     []news.FetchStatus
	Rand         *rand.Rand
}

// Latest собирает файл окна: AI-выборка дедуплицируется в режиме Latest, полная в режиме Random.
func (b Builder) Latest(itemsAll, itemsAI []news.Record, hours int) news.LatestPayload {
	aiDedup := dedupe.Dedupe(itemsAI, dedupe.Latest, nil)
	allDedup := dedupe.Dedupe(itemsAll, dedupe.Random, b.Rand)

	stats := b.siteStats(itemsAll, aiDedup)

	sources := make(map[string]struct{}, len(aiDedup))
	for _, r := range aiDedup {
		sources[r.SiteID+"::"+r.Source] = struct{}{}
	}

	return news.LatestPayload{
		GeneratedAt:       b.Now.UTC().Truncate(time.Second),
		WindowHours:       hours,
		TotalItems:        len(aiDedup),
		TotalItemsAIRaw:   len(itemsAI),
		TotalItemsRaw:     len(itemsAll),
		TotalItemsAllMode: len(allDedup),
		TopicFilter:       filter.TopicName,
		ArchiveTotal:      b.ArchiveTotal,
		SiteCount:         len(stats),
		SourceCount:       len(sources),
		SiteStats:         stats,
		Items:             aiDedup,
		ItemsAI:           aiDedup,
		ItemsAllRaw:       nonNil(itemsAll),
		ItemsAll:          allDedup,
	}
}

// siteStats: count — записи сайта в дедуплицированной AI-выборке, raw_count — в полной выборке окна.
// Сайты, известные только по статусам, попадают с нулевыми счётчиками.
func (b Builder) siteStats(itemsAll, aiDedup []news.Record) []news.SiteStat {
	rawCount := make(map[string]int)
	names := make(map[string]string)
	for _, r := range itemsAll {
		rawCount[r.SiteID]++
		names[r.SiteID] = r.SiteName
	}
	for _, s := range b.Statuses {
		if _, ok := names[s.SiteID]; !ok {
			names[s.SiteID] = s.SiteName
		}
	}

	bySite := make(map[string]*news.SiteStat)
	for _, r := range aiDedup {
		st, ok := bySite[r.SiteID]
		if !ok {
			st = &news.SiteStat{SiteID: r.SiteID, SiteName: r.SiteName, RawCount: rawCount[r.SiteID]}
			bySite[r.SiteID] = st
		}
		st.Count++
	}
	for sid, name := range names {
		if _, ok := bySite[sid]; !ok {
			bySite[sid] = &news.SiteStat{SiteID: sid, SiteName: name, RawCount: rawCount[sid]}
		}
	}

	out := make([]news.SiteStat, 0, len(bySite))
	for _, st := range bySite {
		out = append(out, *st)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].SiteID < out[j].SiteID
	})
	return out
}

// StatusInput — данные для source-status.json.
type StatusInput struct {
	Now              time.Time
	RunID            string
	Statuses         []news.FetchStatus
	Feeds            []news.FeedStatus
	OPMLPath         string
	OPMLEnabled      bool
	FetchedRawItems  int
	ItemsBeforeTopic int
	ItemsInWindow    int
}

// Status собирает файл статуса источников.
func Status(in StatusInput) news.StatusPayload {
	statuses := nonNilStatuses(in.Statuses)
	out := news.StatusPayload{
		GeneratedAt:            in.Now.UTC().Truncate(time.Second),
		RunID:                  in.RunID,
		Sites:                  statuses,
		FailedSites:            []string{},
		ZeroItemSites:          []string{},
		FetchedRawItems:        in.FetchedRawItems,
		ItemsBeforeTopicFilter: in.ItemsBeforeTopic,
		ItemsIn24h:             in.ItemsInWindow,
		RSSOPML:                rssStatus(in),
	}

	for _, s := range statuses {
		switch {
		case !s.OK:
			out.FailedSites = append(out.FailedSites, s.SiteID)
		case s.ItemCount == 0:
			out.SuccessfulSites++
			out.ZeroItemSites = append(out.ZeroItemSites, s.SiteID)
		default:
			out.SuccessfulSites++
		}
	}
	return out
}

func rssStatus(in StatusInput) news.RSSStatus {
	rss := news.RSSStatus{
		Enabled:       in.OPMLEnabled,
		FeedTotal:     len(in.Feeds),
		FailedFeeds:   []string{},
		ZeroItemFeeds: []string{},
		SkippedFeeds:  []news.SkippedFeed{},
		ReplacedFeeds: []news.ReplacedFeed{},
		Feeds:         in.Feeds,
	}
	if rss.Feeds == nil {
		rss.Feeds = []news.FeedStatus{}
	}
	if in.OPMLEnabled {
		rss.Path = news.StringPtr(in.OPMLPath)
	}

	for _, f := range in.Feeds {
		addr := feedAddress(f)
		if !f.Skipped {
			rss.EffectiveFeedTotal++
		}
		if f.OK && !f.Skipped {
			rss.OKFeeds++
			if f.ItemCount == 0 {
				rss.ZeroItemFeeds = append(rss.ZeroItemFeeds, addr)
			}
		}
		if !f.OK {
			rss.FailedFeeds = append(rss.FailedFeeds, addr)
		}
		if f.Skipped {
			rss.SkippedFeeds = append(rss.SkippedFeeds, news.SkippedFeed{FeedURL: f.FeedURL, Reason: f.SkipReason})
		}
		if f.Replaced && f.EffectiveFeedURL != nil {
			rss.ReplacedFeeds = append(rss.ReplacedFeeds, news.ReplacedFeed{From: f.FeedURL, To: *f.EffectiveFeedURL})
		}
	}
	return rss
}

func feedAddress(f news.FeedStatus) string {
	if f.EffectiveFeedURL != nil && *f.EffectiveFeedURL != "" {
		return *f.EffectiveFeedURL
	}
	return f.FeedURL
}

func nonNil(records []news.Record) []news.Record {
	if records == nil {
		return []news.Record{}
	}
	return records
}

func nonNilStatuses(statuses []news.FetchStatus) []news.FetchStatus {
	if statuses == nil {
		return []news.FetchStatus{}
	}
	return statuses
}
