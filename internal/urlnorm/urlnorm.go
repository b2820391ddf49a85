// Package urlnorm приводит URL к канонической форме для идентичности и дедупликации.
package urlnorm

import (
	"net/url"
	"strings"
)

var trackingParams = map[string]struct{}{
	"utm_source":   {},
	"utm_medium":   {},
	"utm_campaign": {},
	"utm_term":     {},
	"utm_content":  {},
	"utm_id":       {},
	"ref":          {},
	"spm":          {},
	"fbclid":       {},
	"gclid":        {},
	"igshid":       {},
	"mkt_tok":      {},
	"mc_cid":       {},
	"mc_eid":       {},
	"_hsenc":       {},
	"_hsmi":        {},
}

// Normalize убирает фрагмент, трекинговые параметры и завершающий слэш пути.
// Если адрес не разбирается, возвращается исходная строка без пробелов по краям.
func Normalize(raw string) string {
	trimmed := strings.TrimSpace(raw)
	u, ok := parse(trimmed)
	if !ok {
		return trimmed
	}

	u.Fragment = ""
	u.RawFragment = ""
	u.RawQuery = stripTracking(u.RawQuery)
	u.ForceQuery = false
	if u.Path != "/" {
		u.Path = strings.TrimSuffix(u.Path, "/")
		u.RawPath = strings.TrimSuffix(u.RawPath, "/")
	}
	return u.String()
}

// Host возвращает хост без префикса www. или пустую строку.
func Host(raw string) string {
	u, ok := parse(strings.TrimSpace(raw))
	if !ok {
		return ""
	}
	return strings.TrimPrefix(u.Hostname(), "www.")
}

// Resolve разрешает относительную ссылку относительно base.
func Resolve(base, ref string) string {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return ""
	}
	b, err := url.Parse(base)
	if err != nil {
		return ref
	}
	r, err := url.Parse(ref)
	if err != nil {
		return ref
	}
	return b.ResolveReference(r).String()
}

// IsHTTP сообщает, начинается ли адрес со схемы http или https.
func IsHTTP(raw string) bool {
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(raw)), "http")
}

func parse(raw string) (*url.URL, bool) {
	if raw == "" {
		return nil, false
	}
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, false
	}
	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)
	if u.Path == "" && u.RawPath == "" {
		u.Path = "/"
	}
	return u, true
}

// stripTracking сохраняет порядок и исходное кодирование оставшихся параметров.
func stripTracking(rawQuery string) string {
	if rawQuery == "" {
		return ""
	}
	kept := make([]string, 0, 4)
	for _, pair := range strings.Split(rawQuery, "&") {
		if pair == "" {
			continue
		}
		name := pair
		if i := strings.IndexByte(pair, '='); i >= 0 {
			name = pair[:i]
		}
		if unescaped, err := url.QueryUnescape(name); err == nil {
			name = unescaped
		}
		name = strings.ToLower(name)
		if strings.HasPrefix(name, "utm_") {
			continue
		}
		if _, tracked := trackingParams[name]; tracked {
			continue
		}
		kept = append(kept, pair)
	}
	return strings.Join(kept, "&")
}
