// Package timeparse разбирает время публикации из разнородных форматов источников.
package timeparse

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Strategy — одна попытка разбора; первая успешная выигрывает.
type Strategy struct {
	Name  string
	Parse func(s string, now time.Time) (time.Time, bool)
}

var (
	unixMillis  = regexp.MustCompile(`^\d{12,}$`)
	unixSeconds = regexp.MustCompile(`^\d{9,11}$`)
	minutesAgo  = regexp.MustCompile(`(\d+)\s*分钟前`)
	hoursAgo    = regexp.MustCompile(`(\d+)\s*小时前`)
	daysAgo     = regexp.MustCompile(`(\d+)\s*天前`)
	clockTime   = regexp.MustCompile(`(\d{1,2}):(\d{2})`)
	todayClock  = regexp.MustCompile(`^(?:今天)?\s*(\d{1,2}):(\d{2})$`)
	monthDay    = regexp.MustCompile(`(?:\d{4}年\s*)?(\d{1,2})月(\d{1,2})日`)
	techURLs    = regexp.MustCompile(`(\d{4}-\d{2}-\d{2}\s+\d{1,2}:\d{2}:\d{2}[AP]M)\s+UTC`)
)

// Strategies — порядок разбора строкового значения.
var Strategies = []Strategy{
	{Name: "unix", Parse: parseUnixString},
	{Name: "relative_zh", Parse: parseRelativeZh},
	{Name: "techurls", Parse: parseTechURLs},
	{Name: "layouts", Parse: parseLayouts},
}

// Parse разбирает строку; now задаёт и опорный момент, и часовой пояс для времени без зоны.
func Parse(raw string, now time.Time) (time.Time, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return time.Time{}, false
	}
	s = strings.TrimPrefix(s, "$D")
	for _, st := range Strategies {
		if t, ok := st.Parse(s, now); ok {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

// ParsePtr — обёртка над Parse для nullable-полей.
func ParsePtr(raw string, now time.Time) *time.Time {
	t, ok := Parse(raw, now)
	if !ok {
		return nil
	}
	return &t
}

// ParseRelative применяет только разбор китайских относительных фраз.
// Подходит для строк, где кроме времени есть посторонний текст.
func ParseRelative(raw string, now time.Time) *time.Time {
	t, ok := parseRelativeZh(strings.TrimSpace(raw), now)
	if !ok {
		return nil
	}
	t = t.UTC()
	return &t
}

// FromUnix переводит секунды или миллисекунды (значения больше 1e10) во время.
func FromUnix(v float64) (time.Time, bool) {
	if math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
		return time.Time{}, false
	}
	if v > 10_000_000_000 {
		v /= 1000
	}
	sec, frac := math.Modf(v)
	return time.Unix(int64(sec), int64(frac*1e9)).UTC(), true
}

// Value разбирает произвольное значение из JSON (число или строку).
func Value(v any, now time.Time) *time.Time {
	switch x := v.(type) {
	case nil:
		return nil
	case float64:
		if t, ok := FromUnix(x); ok {
			return &t
		}
		return nil
	case int64:
		if t, ok := FromUnix(float64(x)); ok {
			return &t
		}
		return nil
	case int:
		if t, ok := FromUnix(float64(x)); ok {
			return &t
		}
		return nil
	case string:
		return ParsePtr(x, now)
	default:
		return nil
	}
}

func parseUnixString(s string, _ time.Time) (time.Time, bool) {
	if !unixMillis.MatchString(s) && !unixSeconds.MatchString(s) {
		return time.Time{}, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return time.Time{}, false
	}
	return FromUnix(v)
}

func parseRelativeZh(s string, now time.Time) (time.Time, bool) {
	if m := minutesAgo.FindStringSubmatch(s); m != nil {
		return now.Add(-time.Duration(atoi(m[1])) * time.Minute), true
	}
	if m := hoursAgo.FindStringSubmatch(s); m != nil {
		return now.Add(-time.Duration(atoi(m[1])) * time.Hour), true
	}
	if m := daysAgo.FindStringSubmatch(s); m != nil {
		return now.AddDate(0, 0, -atoi(m[1])), true
	}
	if strings.Contains(s, "刚刚") {
		return now, true
	}
	if strings.Contains(s, "昨天") {
		y := now.AddDate(0, 0, -1)
		if m := clockTime.FindStringSubmatch(s); m != nil {
			y = time.Date(y.Year(), y.Month(), y.Day(), atoi(m[1]), atoi(m[2]), 0, 0, now.Location())
		}
		return y, true
	}
	if m := todayClock.FindStringSubmatch(s); m != nil {
		c := time.Date(now.Year(), now.Month(), now.Day(), atoi(m[1]), atoi(m[2]), 0, 0, now.Location())
		if c.After(now.Add(5 * time.Minute)) {
			c = c.AddDate(0, 0, -1)
		}
		return c, true
	}
	if m := monthDay.FindStringSubmatch(s); m != nil {
		year := now.Year()
		c := time.Date(year, time.Month(atoi(m[1])), atoi(m[2]), 0, 0, 0, 0, now.Location())
		if c.After(now.Add(48 * time.Hour)) {
			c = time.Date(year-1, time.Month(atoi(m[1])), atoi(m[2]), 0, 0, 0, 0, now.Location())
		}
		return c, true
	}
	return time.Time{}, false
}

func parseTechURLs(s string, _ time.Time) (time.Time, bool) {
	m := techURLs.FindStringSubmatch(s)
	if m == nil {
		return time.Time{}, false
	}
	fields := strings.Fields(m[1])
	t, err := time.ParseInLocation("2006-01-02 3:04:05PM", strings.Join(fields, " "), time.UTC)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

var zonedLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	time.RFC1123Z,
	time.RFC1123,
	time.RFC822Z,
	time.RFC822,
	"Mon, 2 Jan 2006 15:04:05 -0700",
	"Mon, 2 Jan 2006 15:04:05 MST",
	"2006-01-02T15:04:05.000-0700",
	"2006-01-02T15:04:05-0700",
	"2006-01-02 15:04:05 -0700",
	"2006-01-02 15:04:05 MST",
}

var localLayouts = []string{
	"2006-01-02T15:04:05.000",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006/01/02 15:04:05",
	"2006/01/02 15:04",
	"2006-01-02",
	"2006/01/02",
	"2006.01.02",
	"Jan 2, 2006",
	"January 2, 2006",
	"2 Jan 2006",
}

func parseLayouts(s string, now time.Time) (time.Time, bool) {
	for _, layout := range zonedLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	for _, layout := range localLayouts {
		if t, err := time.ParseInLocation(layout, s, now.Location()); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}
