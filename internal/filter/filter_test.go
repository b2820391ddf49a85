package filter

import (
	"testing"

	"github.com/SuYxh/ai-news-aggregator/internal/config"
	"github.com/SuYxh/ai-news-aggregator/internal/news"
)

func newFilter(t *testing.T) *Filter {
	t.Helper()
	f, err := New(config.DefaultFilter())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return f
}

func TestFilter_IsRelevant(t *testing.T) {
	f := newFilter(t)

	tests := []struct {
		name   string
		record news.Record
		want   bool
	}{
		{
			name:   "always relevant site",
			record: news.Record{SiteID: "aibase", Title: "今日天气", URL: "https://aibase.com/news/1"},
			want:   true,
		},
		{
			name:   "always relevant site is case insensitive",
			record: news.Record{SiteID: "AIHubToday", Title: "随便什么", URL: "https://x.com/1"},
			want:   true,
		},
		{
			name:   "zeli 24h source",
			record: news.Record{SiteID: "zeli", Source: "Hacker News · 24h最热", Title: "Cooking tips", URL: "https://x.com/1"},
			want:   true,
		},
		{
			name:   "zeli other source",
			record: news.Record{SiteID: "zeli", Source: "Hacker News · 最新", Title: "New LLM released", URL: "https://x.com/1"},
			want:   false,
		},
		{
			name:   "tophub mojibake noise",
			record: news.Record{SiteID: "tophub", Source: "æ·±åº¦ç§‘æŠ€", Title: "AI 大模型", URL: "https://x.com/1"},
			want:   false,
		},
		{
			name:   "tophub blocked source",
			record: news.Record{SiteID: "tophub", Source: "娱乐热榜", Title: "大模型明星", URL: "https://x.com/1"},
			want:   false,
		},
		{
			name:   "tophub source not allowed",
			record: news.Record{SiteID: "tophub", Source: "微博热搜", Title: "大模型发布", URL: "https://x.com/1"},
			want:   false,
		},
		{
			name:   "tophub allowed source continues to general rule",
			record: news.Record{SiteID: "tophub", Source: "36氪", Title: "某公司融资", URL: "https://x.com/1"},
			want:   false,
		},
		{
			name:   "tophub allowed source with ai title",
			record: news.Record{SiteID: "tophub", Source: "36氪", Title: "大模型创业公司融资", URL: "https://x.com/1"},
			want:   true,
		},
		{
			name:   "english signal pattern",
			record: news.Record{SiteID: "techurls", Source: "Hacker News", Title: "Show HN: an LLM for spreadsheets", URL: "https://x.com/1"},
			want:   true,
		},
		{
			name:   "tech keyword",
			record: news.Record{SiteID: "techurls", Source: "Lobsters", Title: "Writing a database in Rust", URL: "https://x.com/1"},
			want:   true,
		},
		{
			name:   "neither ai nor tech",
			record: news.Record{SiteID: "techurls", Source: "Blog", Title: "My garden in spring", URL: "https://x.com/1"},
			want:   false,
		},
		{
			name:   "commerce noise suppresses tech-only",
			record: news.Record{SiteID: "buzzing", Source: "deals", Title: "芯片 限时特价 包邮", URL: "https://x.com/1"},
			want:   false,
		},
		{
			name:   "commerce noise does not override ai keyword",
			record: news.Record{SiteID: "buzzing", Source: "deals", Title: "ChatGPT 会员优惠", URL: "https://x.com/1"},
			want:   true,
		},
		{
			name:   "generic noise does not override ai signal",
			record: news.Record{SiteID: "buzzing", Source: "news", Title: "Celebrity launches AI startup", URL: "https://x.com/1"},
			want:   true,
		},
		{
			name:   "generic noise suppresses tech-only",
			record: news.Record{SiteID: "buzzing", Source: "news", Title: "Celebrity buys a robot", URL: "https://x.com/1"},
			want:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := f.IsRelevant(tt.record); got != tt.want {
				t.Errorf("IsRelevant() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFilter_Apply_PreservesOrder(t *testing.T) {
	f := newFilter(t)
	records := []news.Record{
		{ID: "1", SiteID: "aibase", Title: "a"},
		{ID: "2", SiteID: "techurls", Title: "gardening"},
		{ID: "3", SiteID: "techurls", Title: "OpenAI news"},
	}

	got := f.Apply(records)
	if len(got) != 2 || got[0].ID != "1" || got[1].ID != "3" {
		t.Errorf("Apply() = %+v, want ids [1 3]", got)
	}
}

func TestNew_InvalidPattern(t *testing.T) {
	cfg := config.DefaultFilter()
	cfg.AISignalPattern = "("
	if _, err := New(cfg); err == nil {
		t.Fatal("expected error for invalid pattern")
	}
}
