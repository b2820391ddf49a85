package sources

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/SuYxh/ai-news-aggregator/internal/config"
)

const maxBodyBytes = 16 << 20

// Fetcher — общий HTTP-загрузчик адаптеров с повторами на временных статусах.
type Fetcher struct {
	client     *http.Client
	retries    int
	retryDelay time.Duration
	retryOn    map[int]struct{}
	userAgent  string
	sleep      func(ctx context.Context, d time.Duration) error
}

// NewFetcher создаёт загрузчик по настройкам http-блока конфигурации.
func NewFetcher(cfg config.HTTP, client *http.Client) *Fetcher {
	if client == nil {
		timeout := cfg.Timeout()
		if timeout <= 0 {
			timeout = 30 * time.Second
		}
		client = &http.Client{Timeout: timeout}
	}
	retryOn := make(map[int]struct{}, len(cfg.RetryStatusCodes))
	for _, code := range cfg.RetryStatusCodes {
		retryOn[code] = struct{}{}
	}
	retries := cfg.Retries
	if retries < 0 {
		retries = 0
	}
	return &Fetcher{
		client:     client,
		retries:    retries,
		retryDelay: cfg.RetryDelay(),
		retryOn:    retryOn,
		userAgent:  cfg.UserAgent,
		sleep:      sleepContext,
	}
}

// UserAgent возвращает заголовок, с которым ходит загрузчик.
func (f *Fetcher) UserAgent() string {
	return f.userAgent
}

// Get загружает тело ответа. Статусы из retry_status_codes и сетевые ошибки повторяются
// с линейно растущей паузой, прочие статусы >= 400 сразу возвращают ошибку.
func (f *Fetcher) Get(ctx context.Context, url, accept string) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt <= f.retries; attempt++ {
		if attempt > 0 {
			if err := f.sleep(ctx, f.retryDelay*time.Duration(attempt)); err != nil {
				return nil, err
			}
		}

		body, retry, err := f.do(ctx, url, accept)
		if err == nil {
			return body, nil
		}
		lastErr = err
		if !retry || ctx.Err() != nil {
			break
		}
	}
	return nil, lastErr
}

func (f *Fetcher) do(ctx context.Context, url, accept string) ([]byte, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, false, fmt.Errorf("build request: %w", err)
	}
	if f.userAgent != "" {
		req.Header.Set("User-Agent", f.userAgent)
	}
	req.Header.Set("Accept-Language", "zh-CN,zh;q=0.9,en;q=0.8")
	if accept != "" {
		req.Header.Set("Accept", accept)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, true, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if _, ok := f.retryOn[resp.StatusCode]; ok {
		return nil, true, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	if resp.StatusCode >= 400 {
		return nil, false, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, true, fmt.Errorf("read body: %w", err)
	}
	return body, false, nil
}

// GetJSON загружает и декодирует JSON-ответ.
func (f *Fetcher) GetJSON(ctx context.Context, url string, v any) error {
	body, err := f.Get(ctx, url, "application/json")
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("decode json: %w", err)
	}
	return nil
}

// GetDocument загружает HTML-страницу и разбирает её goquery.
func (f *Fetcher) GetDocument(ctx context.Context, url string) (*goquery.Document, error) {
	body, err := f.Get(ctx, url, "text/html,application/xhtml+xml")
	if err != nil {
		return nil, err
	}
	return parseDocument(body)
}

func parseDocument(body []byte) (*goquery.Document, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	return doc, nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
