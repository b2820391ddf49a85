// Package sites хранит таблицу особенностей источников.
// Общая логика окна, фильтра и дедупликации спрашивает политику здесь вместо проверок site_id на месте.
package sites

import (
	"strings"
	"time"

	"github.com/SuYxh/ai-news-aggregator/internal/config"
	"github.com/SuYxh/ai-news-aggregator/internal/news"
	"github.com/SuYxh/ai-news-aggregator/internal/textutil"
	"github.com/SuYxh/ai-news-aggregator/internal/urlnorm"
)

// Идентификаторы сайтов с особым поведением.
const (
	OPMLRSS    = "opmlrss"
	AIHubToday = "aihubtoday"
	AIBase     = "aibase"
	AIHot      = "aihot"
	Buzzing    = "buzzing"
	Zeli       = "zeli"
	TopHub     = "tophub"
	TechURLs   = "techurls"
)

// UnknownSource подставляется, когда у записи нет ни источника, ни хоста.
const UnknownSource = "未分区"

// PublishedPolicy определяет, как повторное наблюдение меняет published_at.
type PublishedPolicy int

const (
	// FillOnly: значение выставляется, только если его ещё нет.
	FillOnly PublishedPolicy = iota
	// Refresh: новое непустое значение перезаписывает старое.
	Refresh
)

// Verdict — результат переопределения релевантности для сайта.
type Verdict int

const (
	Continue Verdict = iota
	Accept
	Reject
)

// Policy описывает особенности одного сайта. Нулевое значение = общее поведение.
type Policy struct {
	// RequirePublished: без published_at запись не попадает в окно.
	RequirePublished bool
	Published        PublishedPolicy
	AlwaysRelevant   bool
	// Relevance вызывается до общего правила.
	Relevance func(r news.Record, f config.Filter) Verdict
	// URLOnlyGrouping: кластер дедупликации определяется только URL.
	URLOnlyGrouping bool
	// PlaceholderTitle: такие записи выбрасываются при отборе окна.
	PlaceholderTitle func(title string) bool
	// GenericTitle: менее предпочтительные заголовки при схлопывании по URL.
	GenericTitle func(title string) bool
	// SourcePlaceholders — малоинформативные значения source, заменяемые хостом.
	SourcePlaceholders []string
}

var table = map[string]Policy{
	OPMLRSS: {RequirePublished: true, Published: Refresh},
	AIBase:  {AlwaysRelevant: true},
	AIHot:   {AlwaysRelevant: true},
	AIHubToday: {
		AlwaysRelevant:   true,
		URLOnlyGrouping:  true,
		PlaceholderTitle: isAIHubPlaceholder,
		GenericTitle:     isAIHubGeneric,
	},
	Buzzing: {SourcePlaceholders: []string{"buzzing"}},
	Zeli:    {Relevance: zeliRelevance},
	TopHub:  {Relevance: tophubRelevance},
}

// Lookup возвращает политику сайта; регистр идентификатора не важен.
func Lookup(siteID string) Policy {
	return table[strings.ToLower(strings.TrimSpace(siteID))]
}

// HasPlaceholderTitles сообщает, нужен ли сайту узкий проход схлопывания по URL.
func (p Policy) HasPlaceholderTitles() bool {
	return p.PlaceholderTitle != nil
}

// EventTime возвращает время события записи или nil, если записи нельзя доверить время.
func EventTime(r news.Record) *time.Time {
	if r.PublishedAt != nil && !r.PublishedAt.IsZero() {
		t := *r.PublishedAt
		return &t
	}
	if Lookup(r.SiteID).RequirePublished {
		return nil
	}
	if r.FirstSeenAt.IsZero() {
		return nil
	}
	t := r.FirstSeenAt
	return &t
}

// DisplaySource подставляет хост вместо пустого или малоинформативного source.
func DisplaySource(r news.Record) string {
	src := strings.TrimSpace(r.Source)
	if src != "" && !isSourcePlaceholder(r.SiteID, src) {
		return src
	}
	if host := urlnorm.Host(r.URL); host != "" {
		return host
	}
	if src != "" {
		return src
	}
	return UnknownSource
}

func isSourcePlaceholder(siteID, src string) bool {
	for _, p := range Lookup(siteID).SourcePlaceholders {
		if strings.EqualFold(src, p) {
			return true
		}
	}
	return false
}

var aihubPlaceholders = map[string]struct{}{
	"原文链接": {},
	"查看详情": {},
	"点击查看": {},
	"详情":   {},
}

func isAIHubPlaceholder(title string) bool {
	t := strings.TrimSpace(title)
	if t == "" {
		return true
	}
	if strings.Contains(t, "详情见官方介绍") {
		return true
	}
	_, ok := aihubPlaceholders[t]
	return ok
}

func isAIHubGeneric(title string) bool {
	t := strings.TrimSpace(title)
	return isAIHubPlaceholder(t) || strings.HasSuffix(t, "(AI资讯)")
}

func zeliRelevance(r news.Record, _ config.Filter) Verdict {
	src := strings.ToLower(r.Source)
	if strings.Contains(src, "24h") || strings.Contains(src, "24h最热") {
		return Accept
	}
	return Reject
}

func tophubRelevance(r news.Record, f config.Filter) Verdict {
	if textutil.HasMojibakeNoise(r.Source) || textutil.HasMojibakeNoise(r.Title) {
		return Reject
	}
	src := strings.ToLower(r.Source)
	if containsAny(src, f.TophubBlock) {
		return Reject
	}
	if !containsAny(src, f.TophubAllow) {
		return Reject
	}
	return Continue
}

func containsAny(haystack string, needles []string) bool {
	for _, n := range needles {
		if n != "" && strings.Contains(haystack, strings.ToLower(n)) {
			return true
		}
	}
	return false
}
