package sources

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/SuYxh/ai-news-aggregator/internal/news"
	"github.com/SuYxh/ai-news-aggregator/internal/sites"
	"github.com/SuYxh/ai-news-aggregator/internal/textutil"
	"github.com/SuYxh/ai-news-aggregator/internal/timeparse"
)

const aihotEndpoint = "https://aihot.today/"

var (
	nextFlightChunk = regexp.MustCompile(`(?s)self\.__next_f\.push\(\[1,"(.*?)"\]\)</script>`)
	nextDataScript  = regexp.MustCompile(`(?s)<script[^>]*id=["']__NEXT_DATA__["'][^>]*>\s*(\{.*?\})\s*</script>`)
	nextDateRef     = regexp.MustCompile(`"\$D([^"]+)"`)

	errKeyNotFound = errors.New("key not found")
)

// AIHot извлекает данные страницы aihot.today из встроенного состояния Next.js.
type AIHot struct {
	base
	fetcher  *Fetcher
	endpoint string
}

type aihotItem struct {
	Title       string `json:"title"`
	TitleTrans  string `json:"title_trans"`
	Link        string `json:"link"`
	PublishTime any    `json:"publish_time"`
}

type aihotSource struct {
	ID    any    `json:"id"`
	Title string `json:"title"`
}

// NewAIHot создаёт адаптер.
func NewAIHot(f *Fetcher) *AIHot {
	return &AIHot{
		base:     base{id: sites.AIHot, name: "AI今日热榜"},
		fetcher:  f,
		endpoint: aihotEndpoint,
	}
}

// Fetch реализует Adapter. Страница без распознаваемого состояния даёт пустой список.
func (a *AIHot) Fetch(ctx context.Context, now time.Time) ([]news.Candidate, error) {
	body, err := a.fetcher.Get(ctx, a.endpoint, "text/html,application/xhtml+xml")
	if err != nil {
		return nil, fmt.Errorf("aihot: %w", err)
	}

	data, sourceList, ok := extractAIHotState(string(body))
	if !ok {
		return nil, nil
	}

	names := make(map[string]string, len(sourceList))
	for _, s := range sourceList {
		id := idString(s.ID)
		if id == "" {
			continue
		}
		names[id] = textutil.FirstNonEmpty(s.Title, id)
	}

	ids := make([]string, 0, len(data))
	for id := range data {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var items []news.Candidate
	for _, id := range ids {
		source := textutil.FixMojibake(textutil.FirstNonEmpty(names[id], id))
		for _, it := range data[id] {
			title := textutil.FixMojibake(textutil.FirstNonEmpty(it.TitleTrans, it.Title))
			link := strings.TrimSpace(it.Link)
			if title == "" || link == "" {
				continue
			}
			published := timeparse.Value(it.PublishTime, now)
			if published == nil {
				published = news.TimePtr(now)
			}
			items = append(items, a.candidate(source, title, link, published, map[string]any{"raw_source_id": id}))
		}
	}
	return items, nil
}

func extractAIHotState(html string) (map[string][]aihotItem, []aihotSource, bool) {
	if decoded := mergeFlightChunks(html); decoded != "" {
		var data map[string][]aihotItem
		var list []aihotSource
		errData := extractBalancedJSON(decoded, "initialDataMap", &data)
		errList := extractBalancedJSON(decoded, "dataSources", &list)
		if errData == nil && errList == nil && data != nil && list != nil {
			return data, list, true
		}
	}

	m := nextDataScript.FindStringSubmatch(html)
	if m == nil {
		return nil, nil, false
	}
	var payload struct {
		Props struct {
			PageProps struct {
				InitialDataMap map[string][]aihotItem `json:"initialDataMap"`
				DataSources    []aihotSource          `json:"dataSources"`
			} `json:"pageProps"`
		} `json:"props"`
	}
	if err := json.Unmarshal([]byte(m[1]), &payload); err != nil {
		return nil, nil, false
	}
	pp := payload.Props.PageProps
	if pp.InitialDataMap == nil || pp.DataSources == nil {
		return nil, nil, false
	}
	return pp.InitialDataMap, pp.DataSources, true
}

// mergeFlightChunks склеивает строковые фрагменты self.__next_f.push и снимает JSON-экранирование.
func mergeFlightChunks(html string) string {
	matches := nextFlightChunk.FindAllStringSubmatch(html, -1)
	if len(matches) == 0 {
		return ""
	}
	var b strings.Builder
	for _, m := range matches {
		b.WriteString(m[1])
	}
	merged := b.String()

	var decoded string
	if err := json.Unmarshal([]byte(`"`+merged+`"`), &decoded); err == nil {
		return decoded
	}
	merged = strings.ReplaceAll(merged, `\"`, `"`)
	return strings.ReplaceAll(merged, `\\`, `\`)
}

// extractBalancedJSON находит значение ключа key и декодирует сбалансированный объект или массив после него.
func extractBalancedJSON(decoded, key string, v any) error {
	idx := strings.Index(decoded, key)
	if idx < 0 {
		return fmt.Errorf("%w: %s", errKeyNotFound, key)
	}

	start := idx + len(key)
	for start < len(decoded) && decoded[start] != ':' {
		start++
	}
	start++
	for start < len(decoded) && decoded[start] != '{' && decoded[start] != '[' {
		start++
	}
	if start >= len(decoded) {
		return fmt.Errorf("no value for key %s", key)
	}

	open := decoded[start]
	closing := byte('}')
	if open == '[' {
		closing = ']'
	}

	depth := 0
	inString, escaped := false, false
	end := -1
	for i := start; i < len(decoded) && end < 0; i++ {
		ch := decoded[i]
		switch {
		case inString && escaped:
			escaped = false
		case inString && ch == '\\':
			escaped = true
		case inString && ch == '"':
			inString = false
		case inString:
		case ch == '"':
			inString = true
		case ch == open:
			depth++
		case ch == closing:
			depth--
			if depth == 0 {
				end = i + 1
			}
		}
	}
	if end < 0 {
		return fmt.Errorf("unbalanced value for key %s", key)
	}

	snippet := strings.ReplaceAll(decoded[start:end], `$undefined`, "null")
	snippet = nextDateRef.ReplaceAllString(snippet, `"$1"`)
	if err := json.Unmarshal([]byte(snippet), v); err != nil {
		return fmt.Errorf("decode %s: %w", key, err)
	}
	return nil
}

func idString(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		return fmt.Sprintf("%.0f", x)
	default:
		return fmt.Sprint(x)
	}
}
