package filter

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/SuYxh/ai-news-aggregator/internal/config"
	"github.com/SuYxh/ai-news-aggregator/internal/news"
	"github.com/SuYxh/ai-news-aggregator/internal/sites"
)

// TopicName — значение topic_filter в выходных файлах.
const TopicName = "ai_tech_robotics"

// Filter реализует тематический фильтр AI/технологий.
type Filter struct {
	cfg    config.Filter
	signal *regexp.Regexp
}

// New создаёт экземпляр фильтра. Ключевые слова приводятся к нижнему регистру.
func New(cfg config.Filter) (*Filter, error) {
	var signal *regexp.Regexp
	if strings.TrimSpace(cfg.AISignalPattern) != "" {
		re, err := regexp.Compile(cfg.AISignalPattern)
		if err != nil {
			return nil, fmt.Errorf("compile ai signal pattern: %w", err)
		}
		signal = re
	}

	cfg.AIKeywords = lowerAll(cfg.AIKeywords)
	cfg.TechKeywords = lowerAll(cfg.TechKeywords)
	cfg.CommerceNoise = lowerAll(cfg.CommerceNoise)
	cfg.GenericNoise = lowerAll(cfg.GenericNoise)
	cfg.TophubAllow = lowerAll(cfg.TophubAllow)
	cfg.TophubBlock = lowerAll(cfg.TophubBlock)

	return &Filter{cfg: cfg, signal: signal}, nil
}

// IsRelevant применяет переопределения сайта, затем общее правило.
func (f *Filter) IsRelevant(r news.Record) bool {
	policy := sites.Lookup(r.SiteID)
	if policy.AlwaysRelevant {
		return true
	}
	if policy.Relevance != nil {
		switch policy.Relevance(r, f.cfg) {
		case sites.Accept:
			return true
		case sites.Reject:
			return false
		}
	}

	haystack := strings.ToLower(strings.Join([]string{r.Title, r.Source, r.SiteName, r.URL}, " "))

	hasAI := containsAny(haystack, f.cfg.AIKeywords) || (f.signal != nil && f.signal.MatchString(haystack))
	hasTech := containsAny(haystack, f.cfg.TechKeywords)
	if !hasAI && !hasTech {
		return false
	}

	// Шум не перебивает AI-сигнал.
	if !hasAI && (containsAny(haystack, f.cfg.CommerceNoise) || containsAny(haystack, f.cfg.GenericNoise)) {
		return false
	}
	return true
}

// Apply возвращает релевантные записи, сохраняя порядок.
func (f *Filter) Apply(records []news.Record) []news.Record {
	out := make([]news.Record, 0, len(records))
	for _, r := range records {
		if f.IsRelevant(r) {
			out = append(out, r)
		}
	}
	return out
}

func containsAny(haystack string, needles []string) bool {
	for _, n := range needles {
		if n != "" && strings.Contains(haystack, n) {
			return true
		}
	}
	return false
}

func lowerAll(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if s := strings.ToLower(strings.TrimSpace(v)); s != "" {
			out = append(out, s)
		}
	}
	return out
}
