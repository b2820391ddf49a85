package normalize

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SuYxh/ai-news-aggregator/internal/news"
)

func TestCandidate(t *testing.T) {
	tests := []struct {
		name   string
		in     news.Candidate
		wantOK bool
		want   news.Candidate
	}{
		{
			name:   "trims title and normalizes url",
			in:     news.Candidate{SiteID: "aibase", Title: "  标题  ", URL: " https://example.com/a/?utm_source=x "},
			wantOK: true,
			want:   news.Candidate{SiteID: "aibase", Title: "标题", URL: "https://example.com/a"},
		},
		{name: "empty title", in: news.Candidate{Title: "   ", URL: "https://example.com"}},
		{name: "empty url", in: news.Candidate{Title: "t", URL: "  "}},
		{name: "non http url", in: news.Candidate{Title: "t", URL: "ftp://example.com/file"}},
		{name: "relative url", in: news.Candidate{Title: "t", URL: "/news/1"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Candidate(tt.in)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestCandidate_PublishedAtTruncatedToUTCSeconds(t *testing.T) {
	loc := time.FixedZone("CST", 8*3600)
	ts := time.Date(2026, 3, 1, 10, 0, 0, 123456789, loc)

	got, ok := Candidate(news.Candidate{Title: "t", URL: "https://example.com", PublishedAt: &ts})
	require.True(t, ok)
	require.NotNil(t, got.PublishedAt)
	assert.Equal(t, time.Date(2026, 3, 1, 2, 0, 0, 0, time.UTC), *got.PublishedAt)
}

func TestAll(t *testing.T) {
	out, dropped := All([]news.Candidate{
		{Title: "ok", URL: "https://example.com/1"},
		{Title: "", URL: "https://example.com/2"},
		{Title: "bad", URL: "mailto:x@example.com"},
	})
	assert.Len(t, out, 1)
	assert.Equal(t, 2, dropped)
}
