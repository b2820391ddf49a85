// Package identity вычисляет стабильный идентификатор контента.
package identity

import (
	"crypto/sha1"
	"encoding/hex"
	"strings"

	"github.com/SuYxh/ai-news-aggregator/internal/news"
	"github.com/SuYxh/ai-news-aggregator/internal/urlnorm"
)

const separator = "||"

// Hash возвращает sha1 в hex от (site, source, title, url).
// Регистр и пробелы по краям site/source/title не влияют на результат; url нормализуется.
func Hash(siteID, source, title, rawURL string) string {
	parts := []string{
		fold(siteID),
		fold(source),
		fold(title),
		urlnorm.Normalize(rawURL),
	}
	sum := sha1.Sum([]byte(strings.Join(parts, separator)))
	return hex.EncodeToString(sum[:])
}

// Of вычисляет идентификатор кандидата.
func Of(c news.Candidate) string {
	return Hash(c.SiteID, c.Source, c.Title, c.URL)
}

func fold(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
