package news

import "time"

// Candidate описывает элемент сразу после получения из источника (до нормализации).
type Candidate struct {
	SiteID      string
	SiteName    string
	Source      string
	Title       string
	URL         string
	PublishedAt *time.Time
	Meta        map[string]any
}

// Record — запись архива, одна на идентичность контента.
// Поля title_* заполняются обогащением на каждом запуске и не являются источником истины.
type Record struct {
	ID             string     `json:"id"`
	SiteID         string     `json:"site_id"`
	SiteName       string     `json:"site_name"`
	Source         string     `json:"source"`
	Title          string     `json:"title"`
	URL            string     `json:"url"`
	PublishedAt    *time.Time `json:"published_at"`
	FirstSeenAt    time.Time  `json:"first_seen_at"`
	LastSeenAt     time.Time  `json:"last_seen_at"`
	TitleOriginal  string     `json:"title_original,omitempty"`
	TitleEN        *string    `json:"title_en,omitempty"`
	TitleZH        *string    `json:"title_zh,omitempty"`
	TitleBilingual string     `json:"title_bilingual,omitempty"`
}

// FetchStatus — итог запуска одного адаптера.
type FetchStatus struct {
	SiteID     string  `json:"site_id"`
	SiteName   string  `json:"site_name"`
	OK         bool    `json:"ok"`
	ItemCount  int     `json:"item_count"`
	DurationMS int64   `json:"duration_ms"`
	Error      *string `json:"error"`
}

// FeedStatus — итог загрузки одной ленты из OPML.
type FeedStatus struct {
	FetchStatus
	FeedTitle        string  `json:"feed_title"`
	FeedURL          string  `json:"feed_url"`
	EffectiveFeedURL *string `json:"effective_feed_url"`
	Skipped          bool    `json:"skipped"`
	SkipReason       *string `json:"skip_reason"`
	Replaced         bool    `json:"replaced"`
}

// SiteStat хранит статистику по сайту в окне.
type SiteStat struct {
	SiteID   string `json:"site_id"`
	SiteName string `json:"site_name"`
	Count    int    `json:"count"`
	RawCount int    `json:"raw_count"`
}

// LatestPayload — файл latest-<window>.json.
type LatestPayload struct {
	GeneratedAt       time.Time  `json:"generated_at"`
	WindowHours       int        `json:"window_hours"`
	TotalItems        int        `json:"total_items"`
	TotalItemsAIRaw   int        `json:"total_items_ai_raw"`
	TotalItemsRaw     int        `json:"total_items_raw"`
	TotalItemsAllMode int        `json:"total_items_all_mode"`
	TopicFilter       string     `json:"topic_filter"`
	ArchiveTotal      int        `json:"archive_total"`
	SiteCount         int        `json:"site_count"`
	SourceCount       int        `json:"source_count"`
	SiteStats         []SiteStat `json:"site_stats"`
	Items             []Record   `json:"items"`
	ItemsAI           []Record   `json:"items_ai"`
	ItemsAllRaw       []Record   `json:"items_all_raw"`
	ItemsAll          []Record   `json:"items_all"`
}

// ArchivePayload — снимок архива (archive.json).
type ArchivePayload struct {
	GeneratedAt time.Time `json:"generated_at"`
	TotalItems  int       `json:"total_items"`
	Items       []Record  `json:"items"`
}

// SkippedFeed описывает ленту, пропущенную до загрузки.
type SkippedFeed struct {
	FeedURL string  `json:"feed_url"`
	Reason  *string `json:"reason"`
}

// ReplacedFeed описывает подмену адреса ленты.
type ReplacedFeed struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// RSSStatus — вложенная секция статуса для OPML-лент.
type RSSStatus struct {
	Enabled            bool           `json:"enabled"`
	Path               *string        `json:"path"`
	FeedTotal          int            `json:"feed_total"`
	EffectiveFeedTotal int            `json:"effective_feed_total"`
	OKFeeds            int            `json:"ok_feeds"`
	FailedFeeds        []string       `json:"failed_feeds"`
	ZeroItemFeeds      []string       `json:"zero_item_feeds"`
	SkippedFeeds       []SkippedFeed  `json:"skipped_feeds"`
	ReplacedFeeds      []ReplacedFeed `json:"replaced_feeds"`
	Feeds              []FeedStatus   `json:"feeds"`
}

// StatusPayload — файл source-status.json.
type StatusPayload struct {
	GeneratedAt            time.Time     `json:"generated_at"`
	RunID                  string        `json:"run_id"`
	Sites                  []FetchStatus `json:"sites"`
	SuccessfulSites        int           `json:"successful_sites"`
	FailedSites            []string      `json:"failed_sites"`
	ZeroItemSites          []string      `json:"zero_item_sites"`
	FetchedRawItems        int           `json:"fetched_raw_items"`
	ItemsBeforeTopicFilter int           `json:"items_before_topic_filter"`
	ItemsIn24h             int           `json:"items_in_24h"`
	RSSOPML                RSSStatus     `json:"rss_opml"`
}

// StringPtr возвращает указатель на копию строки.
func StringPtr(s string) *string {
	return &s
}

// TimePtr возвращает указатель на копию времени.
func TimePtr(t time.Time) *time.Time {
	return &t
}
