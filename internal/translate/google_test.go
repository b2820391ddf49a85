package translate

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGoogleProvider_Translate(t *testing.T) {
	var gotQuery map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		gotQuery = map[string]string{
			"client": q.Get("client"), "sl": q.Get("sl"), "tl": q.Get("tl"), "dt": q.Get("dt"), "q": q.Get("q"),
		}
		_, _ = w.Write([]byte(`[[["OpenAI 发布","OpenAI releases",null,null,10],["新模型","new model",null,null,10]],null,"en"]`))
	}))
	defer srv.Close()

	p := NewGoogleProvider(srv.URL, "test-agent", time.Second)
	resp, err := p.Translate(context.Background(), Request{Text: "OpenAI releases new model", TargetLang: TargetZhCN})
	require.NoError(t, err)
	assert.Equal(t, "OpenAI 发布新模型", resp.Text)
	assert.Equal(t, "google", resp.ProviderName)
	assert.Equal(t, map[string]string{
		"client": "gtx", "sl": "auto", "tl": "zh-CN", "dt": "t", "q": "OpenAI releases new model",
	}, gotQuery)
}

func TestGoogleProvider_Translate_Errors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr error
	}{
		{name: "same as input", status: 200, body: `[[["hello","hello"]]]`, wantErr: ErrEmptyResult},
		{name: "empty segments", status: 200, body: `[null]`, wantErr: ErrEmptyResult},
		{name: "rate limited", status: 429, body: ``, wantErr: ErrQuotaExhausted},
		{name: "server error", status: 500, body: ``},
		{name: "not json", status: 200, body: `<html>`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			_, err := NewGoogleProvider(srv.URL, "", time.Second).Translate(context.Background(), Request{Text: "hello"})
			require.Error(t, err)
			if tt.wantErr != nil {
				assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
			}
		})
	}
}
