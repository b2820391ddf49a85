package window

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"

	"github.com/SuYxh/ai-news-aggregator/internal/news"
)

var now = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

func rec(id, site, source, title, url string, firstSeen time.Time, published *time.Time) news.Record {
	return news.Record{
		ID: id, SiteID: site, SiteName: site, Source: source, Title: title, URL: url,
		FirstSeenAt: firstSeen, LastSeenAt: firstSeen, PublishedAt: published,
	}
}

func ids(records []news.Record) []string {
	out := make([]string, 0, len(records))
	for _, r := range records {
		out = append(out, r.ID)
	}
	return out
}

func TestSelect_TimePredicate(t *testing.T) {
	oldPub := now.Add(-30 * time.Hour)
	newPub := now.Add(-2 * time.Hour)
	boundary := now.Add(-24 * time.Hour)

	records := []news.Record{
		rec("fresh-first-seen", "techurls", "HN", "Fresh", "https://a.com/1", now.Add(-time.Hour), nil),
		rec("old-first-seen", "techurls", "HN", "Old", "https://a.com/2", now.Add(-48*time.Hour), nil),
		rec("published-wins", "techurls", "HN", "Republished", "https://a.com/3", now.Add(-time.Hour), &oldPub),
		rec("published-recent", "techurls", "HN", "Recent", "https://a.com/4", now.Add(-72*time.Hour), &newPub),
		rec("boundary", "techurls", "HN", "Boundary", "https://a.com/5", boundary, nil),
		rec("feed-no-date", "opmlrss", "Blog", "Feed", "https://a.com/6", now.Add(-time.Hour), nil),
		rec("feed-dated", "opmlrss", "Blog", "Feed dated", "https://a.com/7", now.Add(-time.Hour), &newPub),
	}

	got := Select(records, now, 24*time.Hour)
	assert.ElementsMatch(t, []string{"fresh-first-seen", "published-recent", "boundary", "feed-dated"}, ids(got))
}

func TestSelect_SortedByEventTimeDesc(t *testing.T) {
	records := []news.Record{
		rec("b", "techurls", "HN", "B", "https://a.com/b", now.Add(-3*time.Hour), nil),
		rec("a", "techurls", "HN", "A", "https://a.com/a", now.Add(-1*time.Hour), nil),
		rec("c2", "techurls", "HN", "C2", "https://a.com/c2", now.Add(-2*time.Hour), nil),
		rec("c1", "techurls", "HN", "C1", "https://a.com/c1", now.Add(-2*time.Hour), nil),
	}
	got := Select(records, now, 24*time.Hour)
	assert.Equal(t, []string{"a", "c1", "c2", "b"}, ids(got))
}

func TestSelect_DisplayNormalization(t *testing.T) {
	broken, err := charmap.ISO8859_1.NewDecoder().String("机器之心")
	require.NoError(t, err)

	records := []news.Record{
		rec("empty-source", "techurls", "", "T1", "https://www.example.com/1", now, nil),
		rec("buzzing-placeholder", "buzzing", "buzzing", "T2", "https://news.example.org/2", now, nil),
		rec("mojibake", "tophub", broken, "T3", "https://x.com/3", now, nil),
		rec("keep", "techurls", "Hacker News", "T4", "https://x.com/4", now, nil),
	}

	got := Select(records, now, time.Hour)
	bySource := map[string]string{}
	for _, r := range got {
		bySource[r.ID] = r.Source
	}
	assert.Equal(t, "example.com", bySource["empty-source"])
	assert.Equal(t, "news.example.org", bySource["buzzing-placeholder"])
	assert.Equal(t, "机器之心", bySource["mojibake"])
	assert.Equal(t, "Hacker News", bySource["keep"])
}

func TestSelect_PlaceholderTitles(t *testing.T) {
	records := []news.Record{
		rec("p1", "aihubtoday", "AI Hub", "原文链接", "https://a.com/p1", now, nil),
		rec("p2", "aihubtoday", "AI Hub", "模型发布，详情见官方介绍", "https://a.com/p2", now, nil),
		rec("p3", "aihubtoday", "AI Hub", "详情", "https://a.com/p3", now, nil),
		rec("ok", "aihubtoday", "AI Hub", "谷歌发布新模型", "https://a.com/ok", now, nil),
		rec("other-site", "aibase", "AIbase", "详情", "https://a.com/other", now, nil),
	}
	got := Select(records, now, time.Hour)
	assert.ElementsMatch(t, []string{"ok", "other-site"}, ids(got))
}

func TestSelect_CollapsesPlaceholderProneSiteByURL(t *testing.T) {
	records := []news.Record{
		rec("generic", "aihubtoday", "AI Hub", "新模型上线(AI资讯)", "https://a.com/same", now, nil),
		rec("specific", "aihubtoday", "AI Hub", "谷歌发布 Gemini 3", "https://a.com/same/", now.Add(-time.Minute), nil),
		rec("other", "aibase", "AIbase", "x", "https://a.com/same", now, nil),
	}
	got := Select(records, now, time.Hour)
	assert.ElementsMatch(t, []string{"specific", "other"}, ids(got))
}

func TestRecut(t *testing.T) {
	records := []news.Record{
		rec("a", "techurls", "HN", "A", "https://a.com/a", now.Add(-time.Hour), nil),
		rec("b", "techurls", "HN", "B", "https://a.com/b", now.Add(-30*time.Hour), nil),
		rec("c", "techurls", "HN", "C", "https://a.com/c", now.Add(-2*time.Hour), nil),
	}
	got := Recut(records, now, 24*time.Hour)
	assert.Equal(t, []string{"a", "c"}, ids(got))
}
