package payload

import (
	"math/rand/v2"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SuYxh/ai-news-aggregator/internal/news"
)

var now = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

func rec(id, site, source, title, url string, ago time.Duration) news.Record {
	t := now.Add(-ago)
	return news.Record{ID: id, SiteID: site, SiteName: site + " name", Source: source, Title: title, URL: url, FirstSeenAt: t, LastSeenAt: t}
}

func TestBuilder_Latest(t *testing.T) {
	all := []news.Record{
		rec("a1", "aibase", "AIbase", "大模型", "https://a.com/1", time.Hour),
		rec("a2", "aibase", "AIbase", "大模型", "https://a.com/1", 2*time.Hour),
		rec("t1", "techurls", "HN", "LLM news", "https://t.com/1", 3*time.Hour),
		rec("t2", "techurls", "Lobsters", "Garden", "https://t.com/2", 4*time.Hour),
	}
	ai := all[:3]

	b := Builder{
		Now:          now,
		ArchiveTotal: 42,
		Statuses: []news.FetchStatus{
			{SiteID: "aibase", SiteName: "aibase name", OK: true},
			{SiteID: "zeli", SiteName: "Zeli", OK: false},
		},
		Rand: rand.New(rand.NewPCG(1, 1)),
	}
	p := b.Latest(all, ai, 24)

	assert.Equal(t, 24, p.WindowHours)
	assert.Equal(t, 2, p.TotalItems)
	assert.Equal(t, 3, p.TotalItemsAIRaw)
	assert.Equal(t, 4, p.TotalItemsRaw)
	assert.Equal(t, 3, p.TotalItemsAllMode)
	assert.Equal(t, "ai_tech_robotics", p.TopicFilter)
	assert.Equal(t, 42, p.ArchiveTotal)
	assert.Equal(t, 2, p.SourceCount)
	assert.Equal(t, p.Items, p.ItemsAI)
	assert.Equal(t, "a1", p.Items[0].ID)

	require.Len(t, p.SiteStats, 3)
	assert.Equal(t, news.SiteStat{SiteID: "aibase", SiteName: "aibase name", Count: 1, RawCount: 2}, p.SiteStats[0])
	assert.Equal(t, news.SiteStat{SiteID: "techurls", SiteName: "techurls name", Count: 1, RawCount: 2}, p.SiteStats[1])
	assert.Equal(t, news.SiteStat{SiteID: "zeli", SiteName: "Zeli", Count: 0, RawCount: 0}, p.SiteStats[2])
	assert.Equal(t, 3, p.SiteCount)
}

func TestBuilder_Latest_Empty(t *testing.T) {
	p := Builder{Now: now}.Latest(nil, nil, 168)
	assert.NotNil(t, p.Items)
	assert.NotNil(t, p.ItemsAllRaw)
	assert.NotNil(t, p.SiteStats)
	assert.Equal(t, 0, p.TotalItems)
}

func TestStatus(t *testing.T) {
	errText := "timeout"
	effective := "https://new.example.com/feed"
	reason := "no_official_rss_for_source_type"

	in := StatusInput{
		Now:   now,
		RunID: "run-1",
		Statuses: []news.FetchStatus{
			{SiteID: "aibase", OK: true, ItemCount: 10},
			{SiteID: "zeli", OK: true, ItemCount: 0},
			{SiteID: "tophub", OK: false, Error: &errText},
		},
		Feeds: []news.FeedStatus{
			{FetchStatus: news.FetchStatus{OK: true, ItemCount: 3}, FeedURL: "https://old.example.com/feed", EffectiveFeedURL: &effective, Replaced: true},
			{FetchStatus: news.FetchStatus{OK: true}, FeedURL: "https://rsshub.app/x", Skipped: true, SkipReason: &reason},
			{FetchStatus: news.FetchStatus{OK: false, Error: &errText}, FeedURL: "https://down.example.com/rss"},
			{FetchStatus: news.FetchStatus{OK: true}, FeedURL: "https://quiet.example.com/rss"},
		},
		OPMLPath:         "feeds/follow.opml",
		OPMLEnabled:      true,
		FetchedRawItems:  13,
		ItemsBeforeTopic: 9,
		ItemsInWindow:    4,
	}

	s := Status(in)
	assert.Equal(t, "run-1", s.RunID)
	assert.Equal(t, 2, s.SuccessfulSites)
	assert.Equal(t, []string{"tophub"}, s.FailedSites)
	assert.Equal(t, []string{"zeli"}, s.ZeroItemSites)
	assert.Equal(t, 13, s.FetchedRawItems)
	assert.Equal(t, 9, s.ItemsBeforeTopicFilter)
	assert.Equal(t, 4, s.ItemsIn24h)

	rss := s.RSSOPML
	assert.True(t, rss.Enabled)
	require.NotNil(t, rss.Path)
	assert.Equal(t, "feeds/follow.opml", *rss.Path)
	assert.Equal(t, 4, rss.FeedTotal)
	assert.Equal(t, 3, rss.EffectiveFeedTotal)
	assert.Equal(t, 2, rss.OKFeeds)
	assert.Equal(t, []string{"https://down.example.com/rss"}, rss.FailedFeeds)
	assert.Equal(t, []string{"https://quiet.example.com/rss"}, rss.ZeroItemFeeds)
	assert.Equal(t, []news.SkippedFeed{{FeedURL: "https://rsshub.app/x", Reason: &reason}}, rss.SkippedFeeds)
	assert.Equal(t, []news.ReplacedFeed{{From: "https://old.example.com/feed", To: effective}}, rss.ReplacedFeeds)
}

func TestStatus_DisabledOPML(t *testing.T) {
	s := Status(StatusInput{Now: now})
	assert.False(t, s.RSSOPML.Enabled)
	assert.Nil(t, s.RSSOPML.Path)
	assert.NotNil(t, s.Sites)
	assert.NotNil(t, s.RSSOPML.Feeds)
}
