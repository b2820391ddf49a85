package sources

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/text/encoding/simplifiedchinese"

	"github.com/SuYxh/ai-news-aggregator/internal/news"
	"github.com/SuYxh/ai-news-aggregator/internal/sites"
	"github.com/SuYxh/ai-news-aggregator/internal/textutil"
	"github.com/SuYxh/ai-news-aggregator/internal/timeparse"
	"github.com/SuYxh/ai-news-aggregator/internal/urlnorm"
)

const tophubEndpoint = "https://tophub.today/"

// TopHub разбирает доски агрегатора tophub.today.
type TopHub struct {
	base
	fetcher  *Fetcher
	endpoint string
}

// NewTopHub создаёт адаптер.
func NewTopHub(f *Fetcher) *TopHub {
	return &TopHub{
		base:     base{id: sites.TopHub, name: "TopHub"},
		fetcher:  f,
		endpoint: tophubEndpoint,
	}
}

// Fetch реализует Adapter.
func (a *TopHub) Fetch(ctx context.Context, now time.Time) ([]news.Candidate, error) {
	body, err := a.fetcher.Get(ctx, a.endpoint, "text/html,application/xhtml+xml")
	if err != nil {
		return nil, fmt.Errorf("tophub: %w", err)
	}
	doc, err := parseDocument(decodeHTML(body))
	if err != nil {
		return nil, fmt.Errorf("tophub: %w", err)
	}

	var items []news.Candidate
	doc.Find(".cc-cd").Each(func(_ int, block *goquery.Selection) {
		source := boardSource(block)

		block.Find(".cc-cd-cb-l a").Each(func(_ int, link *goquery.Selection) {
			href := strings.TrimSpace(link.AttrOr("href", ""))
			row := link.Find(".cc-cd-cb-ll").First()
			titleTag := row.Find(".t").First()

			title := strings.TrimSpace(link.Text())
			if titleTag.Length() > 0 {
				title = strings.TrimSpace(titleTag.Text())
			}
			title = textutil.FixMojibake(title)
			if title == "" || href == "" {
				return
			}
			if !urlnorm.IsHTTP(href) {
				href = urlnorm.Resolve(a.endpoint, href)
			}

			rowText := title
			if row.Length() > 0 {
				rowText = strings.TrimSpace(row.Text())
			}

			items = append(items, a.candidate(
				source,
				title,
				href,
				timeparse.ParseRelative(rowText, now),
				map[string]any{"metric": strings.TrimSpace(row.Find(".e").First().Text())},
			))
		})
	})
	return items, nil
}

func boardSource(block *goquery.Selection) string {
	name := textOr(block.Find(".cc-cd-lb span").First(), "TopHub")
	board := textOr(block.Find(".cc-cd-sb-st").First(), "")
	if board != "" {
		return name + " · " + board
	}
	return name
}

func textOr(sel *goquery.Selection, fallback string) string {
	if sel.Length() == 0 {
		return fallback
	}
	return textutil.FixMojibake(strings.TrimSpace(sel.Text()))
}

// decodeHTML выбирает UTF-8 или GB18030: побеждает вариант с меньшим числом символов замены.
func decodeHTML(body []byte) []byte {
	asUTF8 := bytes.ToValidUTF8(body, []byte(string(utf8.RuneError)))
	bad := bytes.Count(asUTF8, []byte(string(utf8.RuneError)))
	if bad == 0 {
		return body
	}

	decoded, err := simplifiedchinese.GB18030.NewDecoder().Bytes(body)
	if err != nil {
		return asUTF8
	}
	if bytes.Count(decoded, []byte(string(utf8.RuneError))) < bad {
		return decoded
	}
	return asUTF8
}
