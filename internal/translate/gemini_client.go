package translate

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"google.golang.org/genai"
)

// GeminiClient — минимальный интерфейс генерации текста, который нужен провайдеру перевода.
type GeminiClient interface {
	GenerateText(ctx context.Context, model string, prompt string) (string, error)
}

// RetryPolicy задаёт паузы между повторами запроса к Gemini.
// Для заголовков паузы короче, чем для пакетной обработки: перевод не обязателен.
type RetryPolicy struct {
	MaxAttempts      int
	BaseDelay        time.Duration
	MaxDelay         time.Duration
	RateLimitDelay   time.Duration
	UnavailableDelay time.Duration
}

// DefaultRetryPolicy — политика по умолчанию.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts:      3,
		BaseDelay:        2 * time.Second,
		MaxDelay:         10 * time.Second,
		RateLimitDelay:   15 * time.Second,
		UnavailableDelay: 20 * time.Second,
	}
}

// Client вызывает Gemini через genai SDK с повторами по RetryPolicy.
type Client struct {
	client *genai.Client
	retry  RetryPolicy
	logger zerolog.Logger
	sleep  func(ctx context.Context, d time.Duration) error
}

var _ GeminiClient = (*Client)(nil)

// NewGeminiClient создаёт клиента с явно переданным ключом.
func NewGeminiClient(ctx context.Context, apiKey string, logger zerolog.Logger) (*Client, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apiKey})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	return &Client{
		client: client,
		retry:  DefaultRetryPolicy(),
		logger: logger.With().Str("component", "gemini").Logger(),
		sleep:  sleepContext,
	}, nil
}

// GenerateText отправляет запрос к Gemini API и возвращает текстовый ответ.
// Временные ошибки (429 по RPM/TPM, 500, 502, 503, 504) повторяются; исчерпанная
// дневная квота возвращает ErrQuotaExhausted без повторов.
func (c *Client) GenerateText(ctx context.Context, model string, prompt string) (string, error) {
	return c.withRetry(ctx, func(ctx context.Context) (string, error) {
		result, err := c.client.Models.GenerateContent(ctx, model, genai.Text(prompt), nil)
		if err != nil {
			return "", err
		}
		text, err := result.Text()
		if err != nil {
			return "", fmt.Errorf("get text from result: %w", err)
		}
		return text, nil
	})
}

func (c *Client) withRetry(ctx context.Context, call func(ctx context.Context) (string, error)) (string, error) {
	var lastErr error
	var delay time.Duration

	for attempt := 0; attempt < c.retry.MaxAttempts; attempt++ {
		if attempt > 0 {
			c.logger.Debug().Int("attempt", attempt+1).Dur("delay", delay).Msg("retrying gemini request")
			if err := c.sleep(ctx, delay); err != nil {
				return "", err
			}
		}

		text, err := call(ctx)
		if err == nil {
			return text, nil
		}
		lastErr = err

		switch classify(err) {
		case failDailyQuota:
			c.logger.Warn().Err(err).Msg("gemini daily quota exceeded, stopping live translation")
			return "", fmt.Errorf("gemini daily limit reached: %w: %v", ErrQuotaExhausted, err)
		case failQuota:
			return "", fmt.Errorf("gemini quota exceeded: %w: %v", ErrQuotaExhausted, err)
		case failRateLimit:
			delay = c.retry.RateLimitDelay
		case failUnavailable:
			delay = c.retry.UnavailableDelay
		case failServer:
			delay = min(c.retry.BaseDelay*time.Duration(attempt+1), c.retry.MaxDelay)
		default:
			return "", fmt.Errorf("generate content: %w", err)
		}
	}

	return "", fmt.Errorf("max retries exceeded: %w", lastErr)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

type failure int

const (
	failPermanent failure = iota
	failDailyQuota
	failRateLimit
	failUnavailable
	failServer
	failQuota
)

// Порядок важен: 429 с дневной квотой проверяется раньше обычного 429.
var failureMarkers = []struct {
	kind  failure
	all   []string
	anyOf []string
}{
	{kind: failDailyQuota, all: []string{"429"}, anyOf: []string{"per day", "perday", "free_tier_requests"}},
	{kind: failRateLimit, anyOf: []string{"429", "rate limit", "too many requests", "resource exhausted"}},
	{kind: failUnavailable, anyOf: []string{"503", "service unavailable", "overloaded"}},
	{kind: failServer, anyOf: []string{"500", "502", "504", "internal server error", "bad gateway", "gateway timeout"}},
	{kind: failQuota, anyOf: []string{"quota", "daily limit", "403"}},
}

// classify определяет вид ошибки SDK по тексту: genai не отдаёт типизированных кодов для всех случаев.
func classify(err error) failure {
	msg := strings.ToLower(err.Error())
	for _, m := range failureMarkers {
		if containsAll(msg, m.all) && containsAny(msg, m.anyOf) {
			return m.kind
		}
	}
	return failPermanent
}

func containsAll(s string, subs []string) bool {
	for _, sub := range subs {
		if !strings.Contains(s, sub) {
			return false
		}
	}
	return true
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
