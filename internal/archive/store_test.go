package archive

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SuYxh/ai-news-aggregator/internal/identity"
	"github.com/SuYxh/ai-news-aggregator/internal/news"
)

var t0 = time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)

func candidate(site, source, title, url string, published *time.Time) news.Candidate {
	return news.Candidate{SiteID: site, SiteName: site, Source: source, Title: title, URL: url, PublishedAt: published}
}

func TestStore_Upsert_InsertThenMerge(t *testing.T) {
	s := New()
	c := candidate("techurls", "Hacker News", "OpenAI releases new model", "https://example.com/a", nil)

	require.True(t, s.Upsert(c, t0))
	t1 := t0.Add(2 * time.Hour)
	require.False(t, s.Upsert(c, t1))

	require.Equal(t, 1, s.Len())
	r, ok := s.Get(identity.Of(c))
	require.True(t, ok)
	assert.Equal(t, t0, r.FirstSeenAt)
	assert.Equal(t, t1, r.LastSeenAt)
	assert.Nil(t, r.PublishedAt)
}

func TestStore_Upsert_Idempotent(t *testing.T) {
	pub := t0.Add(-time.Hour)
	batch := []news.Candidate{
		candidate("aibase", "AIbase", "大模型发布", "https://example.com/1", &pub),
		candidate("techurls", "Hacker News", "Rust 2.0", "https://example.com/2", nil),
	}

	s := New()
	for _, c := range batch {
		s.Upsert(c, t0)
	}
	first := s.Snapshot()

	for _, c := range batch {
		s.Upsert(c, t0)
	}
	assert.Equal(t, first, s.Snapshot())
}

func TestStore_Upsert_TwoRunScenario(t *testing.T) {
	s := New()
	c := candidate("techurls", "Hacker News", "Same story", "https://example.com/story", nil)
	s.Upsert(c, t0)

	pub := t0.Add(30 * time.Minute)
	c2 := c
	c2.PublishedAt = &pub
	t1 := t0.Add(time.Hour)
	s.Upsert(c2, t1)

	require.Equal(t, 1, s.Len())
	r, _ := s.Get(identity.Of(c))
	assert.Equal(t, t0, r.FirstSeenAt)
	assert.Equal(t, t1, r.LastSeenAt)
	require.NotNil(t, r.PublishedAt)
	assert.Equal(t, pub, *r.PublishedAt)
}

func TestStore_Upsert_DifferentSourceLabelsAreDistinct(t *testing.T) {
	s := New()
	s.Upsert(candidate("tophub", "36氪", "同一条新闻", "https://example.com/x", nil), t0)
	s.Upsert(candidate("tophub", "虎嗅", "同一条新闻", "https://example.com/x", nil), t0)
	assert.Equal(t, 2, s.Len())
}

func TestStore_Upsert_PublishedPolicy(t *testing.T) {
	first := t0.Add(-3 * time.Hour)
	later := t0.Add(-1 * time.Hour)

	tests := []struct {
		name     string
		site     string
		second   *time.Time
		wantTime *time.Time
	}{
		{name: "fill only keeps first value", site: "techurls", second: &later, wantTime: &first},
		{name: "fill only ignores null", site: "techurls", second: nil, wantTime: &first},
		{name: "refresh overwrites with non-null", site: "opmlrss", second: &later, wantTime: &later},
		{name: "refresh never clears", site: "opmlrss", second: nil, wantTime: &first},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := New()
			c := candidate(tt.site, "src", "title", "https://example.com/p", &first)
			s.Upsert(c, t0)
			c.PublishedAt = tt.second
			s.Upsert(c, t0.Add(time.Hour))

			r, _ := s.Get(identity.Of(c))
			require.NotNil(t, r.PublishedAt)
			assert.Equal(t, *tt.wantTime, *r.PublishedAt)
		})
	}
}

func TestStore_Prune(t *testing.T) {
	now := t0
	retention := 45 * 24 * time.Hour
	old := now.Add(-50 * 24 * time.Hour)
	recentPub := now.Add(-time.Hour)

	s := FromRecords([]news.Record{
		{ID: "stale", FirstSeenAt: old, LastSeenAt: old},
		{ID: "seen-recently", FirstSeenAt: old, LastSeenAt: now.Add(-time.Hour)},
		{ID: "published-recently", FirstSeenAt: old, LastSeenAt: old, PublishedAt: &recentPub},
		{ID: "boundary", FirstSeenAt: now.Add(-retention), LastSeenAt: now.Add(-retention)},
	})

	removed := s.Prune(now, retention)
	assert.Equal(t, 1, removed)
	_, ok := s.Get("stale")
	assert.False(t, ok)
	for _, id := range []string{"seen-recently", "published-recently", "boundary"} {
		_, ok := s.Get(id)
		assert.True(t, ok, id)
	}
}

func TestStore_Snapshot_Sorted(t *testing.T) {
	s := FromRecords([]news.Record{
		{ID: "b", FirstSeenAt: t0, LastSeenAt: t0},
		{ID: "a", FirstSeenAt: t0, LastSeenAt: t0},
		{ID: "c", FirstSeenAt: t0, LastSeenAt: t0.Add(time.Hour)},
	})
	snap := s.Snapshot()
	require.Len(t, snap, 3)
	assert.Equal(t, []string{"c", "a", "b"}, []string{snap[0].ID, snap[1].ID, snap[2].ID})
}

func TestFromRecords_DropsEnrichmentAndFixesOrder(t *testing.T) {
	zh := "标题"
	s := FromRecords([]news.Record{
		{ID: "x", FirstSeenAt: t0.Add(time.Hour), LastSeenAt: t0, TitleZH: &zh, TitleBilingual: "标题 / title"},
		{ID: ""},
	})
	require.Equal(t, 1, s.Len())
	r, _ := s.Get("x")
	assert.Nil(t, r.TitleZH)
	assert.Empty(t, r.TitleBilingual)
	assert.False(t, r.FirstSeenAt.After(r.LastSeenAt))
}
