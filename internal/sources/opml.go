package sources

import (
	"bytes"
	"crypto/sha1"
	"encoding/hex"
	"encoding/xml"
	"fmt"
	"os"
	"strings"

	"golang.org/x/net/html/charset"

	"github.com/SuYxh/ai-news-aggregator/internal/config"
	"github.com/SuYxh/ai-news-aggregator/internal/textutil"
	"github.com/SuYxh/ai-news-aggregator/internal/urlnorm"
)

// Причины пропуска ленты.
const (
	SkipEmptyURL          = "empty_url"
	SkipNoOfficialRSS     = "no_official_rss_or_unreachable"
	SkipSourceTypeNoFeeds = "no_official_rss_for_source_type"
)

// Feed — подписка из OPML.
type Feed struct {
	Title   string
	XMLURL  string
	HTMLURL string
}

type opmlDocument struct {
	Body struct {
		Outlines []opmlOutline `xml:"outline"`
	} `xml:"body"`
}

type opmlOutline struct {
	Title    string        `xml:"title,attr"`
	Text     string        `xml:"text,attr"`
	XMLURL   string        `xml:"xmlUrl,attr"`
	HTMLURL  string        `xml:"htmlUrl,attr"`
	Outlines []opmlOutline `xml:"outline"`
}

// LoadOPML читает файл подписок.
func LoadOPML(path string) ([]Feed, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read opml: %w", err)
	}
	return ParseOPML(data)
}

// ParseOPML обходит вложенные outline в глубину. Повторный xmlUrl пропускается,
// заголовок берётся из title, затем text, хоста и самого адреса.
func ParseOPML(data []byte) ([]Feed, error) {
	var doc opmlDocument
	dec := xml.NewDecoder(bytes.NewReader(data))
	dec.CharsetReader = charset.NewReaderLabel
	dec.Strict = false
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("parse opml: %w", err)
	}

	var feeds []Feed
	seen := make(map[string]struct{})
	var walk func(outlines []opmlOutline)
	walk = func(outlines []opmlOutline) {
		for _, o := range outlines {
			xmlURL := strings.TrimSpace(o.XMLURL)
			if xmlURL != "" {
				if _, dup := seen[xmlURL]; !dup {
					seen[xmlURL] = struct{}{}
					feeds = append(feeds, Feed{
						Title:   textutil.FirstNonEmpty(o.Title, o.Text, urlnorm.Host(xmlURL), xmlURL),
						XMLURL:  xmlURL,
						HTMLURL: strings.TrimSpace(o.HTMLURL),
					})
				}
			}
			walk(o.Outlines)
		}
	}
	walk(doc.Body.Outlines)
	return feeds, nil
}

// ResolveFeedURL применяет списки пропуска и замены. При пропуске адрес пустой, а reason заполнен.
func ResolveFeedURL(cfg config.RSS, feedURL string) (string, string) {
	src := strings.TrimSpace(feedURL)
	if src == "" {
		return "", SkipEmptyURL
	}
	for _, exact := range cfg.SkipExact {
		if src == strings.TrimSpace(exact) {
			return "", SkipNoOfficialRSS
		}
	}
	for _, prefix := range cfg.SkipPrefixes {
		if prefix != "" && strings.HasPrefix(src, prefix) {
			return "", SkipSourceTypeNoFeeds
		}
	}
	if replaced := strings.TrimSpace(cfg.Replacements[src]); replaced != "" {
		return replaced, ""
	}
	return src, ""
}

// FeedSiteID строит идентификатор статуса ленты: opmlrss: и первые 10 символов sha1 адреса.
func FeedSiteID(feedURL string) string {
	sum := sha1.Sum([]byte(feedURL))
	return "opmlrss:" + hex.EncodeToString(sum[:])[:10]
}
