package translate

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockGeminiClient - мок для тестирования GeminiProvider
type mockGeminiClient struct {
	generateTextFunc func(ctx context.Context, model string, prompt string) (string, error)
}

func (m *mockGeminiClient) GenerateText(ctx context.Context, model string, prompt string) (string, error) {
	if m.generateTextFunc != nil {
		return m.generateTextFunc(ctx, model, prompt)
	}
	return "", errors.New("not implemented")
}

func TestGeminiProvider_Translate(t *testing.T) {
	tests := []struct {
		name     string
		mockFunc func(ctx context.Context, model string, prompt string) (string, error)
		want     string
		wantErr  error
	}{
		{
			name: "plain answer",
			mockFunc: func(ctx context.Context, model string, prompt string) (string, error) {
				if !strings.Contains(prompt, "OpenAI releases new model") || model != "gemini-test" {
					return "", errors.New("unexpected request")
				}
				return "OpenAI 发布新模型\n", nil
			},
			want: "OpenAI 发布新模型",
		},
		{
			name: "quoted answer with fence",
			mockFunc: func(ctx context.Context, model string, prompt string) (string, error) {
				return "```\n\"OpenAI 发布新模型\"\n```", nil
			},
			want: "OpenAI 发布新模型",
		},
		{
			name: "echo is rejected",
			mockFunc: func(ctx context.Context, model string, prompt string) (string, error) {
				return "OpenAI releases new model", nil
			},
			wantErr: ErrEmptyResult,
		},
		{
			name: "client error",
			mockFunc: func(ctx context.Context, model string, prompt string) (string, error) {
				return "", ErrQuotaExhausted
			},
			wantErr: ErrQuotaExhausted,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewGeminiProvider(&mockGeminiClient{generateTextFunc: tt.mockFunc}, "gemini-test")
			resp, err := p.Translate(context.Background(), Request{Text: "OpenAI releases new model"})
			if tt.wantErr != nil {
				require.Error(t, err)
				assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, resp.Text)
			assert.Equal(t, "gemini", resp.ProviderName)
		})
	}
}

func TestClient_withRetry(t *testing.T) {
	newClient := func(slept *[]time.Duration) *Client {
		return &Client{
			retry:  DefaultRetryPolicy(),
			logger: zerolog.Nop(),
			sleep: func(ctx context.Context, d time.Duration) error {
				*slept = append(*slept, d)
				return nil
			},
		}
	}

	t.Run("temporary error is retried", func(t *testing.T) {
		var slept []time.Duration
		c := newClient(&slept)
		calls := 0
		text, err := c.withRetry(context.Background(), func(ctx context.Context) (string, error) {
			calls++
			if calls == 1 {
				return "", errors.New("Error 503, Service Unavailable")
			}
			return "ok", nil
		})
		require.NoError(t, err)
		assert.Equal(t, "ok", text)
		assert.Equal(t, 2, calls)
		assert.Equal(t, []time.Duration{DefaultRetryPolicy().UnavailableDelay}, slept)
	})

	t.Run("daily quota stops immediately", func(t *testing.T) {
		var slept []time.Duration
		c := newClient(&slept)
		calls := 0
		_, err := c.withRetry(context.Background(), func(ctx context.Context) (string, error) {
			calls++
			return "", errors.New("Error 429, quota metric generate_content_free_tier_requests, limit: 20")
		})
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrQuotaExhausted))
		assert.Equal(t, 1, calls)
		assert.Empty(t, slept)
	})

	t.Run("unknown error is not retried", func(t *testing.T) {
		var slept []time.Duration
		c := newClient(&slept)
		calls := 0
		_, err := c.withRetry(context.Background(), func(ctx context.Context) (string, error) {
			calls++
			return "", errors.New("invalid argument")
		})
		require.Error(t, err)
		assert.Equal(t, 1, calls)
	})

	t.Run("gives up after max attempts", func(t *testing.T) {
		var slept []time.Duration
		c := newClient(&slept)
		calls := 0
		_, err := c.withRetry(context.Background(), func(ctx context.Context) (string, error) {
			calls++
			return "", errors.New("502 bad gateway")
		})
		require.Error(t, err)
		assert.Equal(t, DefaultRetryPolicy().MaxAttempts, calls)
		assert.Len(t, slept, DefaultRetryPolicy().MaxAttempts-1)
	})
}

func TestClassify(t *testing.T) {
	tests := []struct {
		msg  string
		want failure
	}{
		{msg: "Error 429, Quota exceeded for metric: requests per day", want: failDailyQuota},
		{msg: "Error 429, Too Many Requests", want: failRateLimit},
		{msg: "RESOURCE EXHAUSTED", want: failRateLimit},
		{msg: "Error 503: the model is overloaded", want: failUnavailable},
		{msg: "Error 502 Bad Gateway", want: failServer},
		{msg: "Error 403: quota project not set", want: failQuota},
		{msg: "Error 400: invalid argument", want: failPermanent},
	}

	for _, tt := range tests {
		t.Run(tt.msg, func(t *testing.T) {
			assert.Equal(t, tt.want, classify(errors.New(tt.msg)))
		})
	}
}
