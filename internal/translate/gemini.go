package translate

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// GeminiProvider переводит заголовки через LLM.
type GeminiProvider struct {
	client GeminiClient
	model  string
}

// NewGeminiProvider создаёт провайдера поверх клиента Gemini.
func NewGeminiProvider(client GeminiClient, model string) *GeminiProvider {
	if strings.TrimSpace(model) == "" {
		model = "gemini-2.0-flash"
	}
	return &GeminiProvider{client: client, model: model}
}

func (p *GeminiProvider) Name() string {
	return "gemini"
}

func (p *GeminiProvider) Translate(ctx context.Context, req Request) (*Response, error) {
	text := strings.TrimSpace(req.Text)
	if text == "" {
		return nil, fmt.Errorf("text is required")
	}
	target := req.TargetLang
	if target == "" {
		target = TargetZhCN
	}

	started := time.Now()
	raw, err := p.client.GenerateText(ctx, p.model, buildTitlePrompt(text, target))
	if err != nil {
		return nil, fmt.Errorf("gemini translate: %w", err)
	}

	translated := cleanModelOutput(raw)
	if translated == "" || translated == text {
		return nil, ErrEmptyResult
	}
	return &Response{
		Text:         translated,
		ProviderName: p.Name(),
		LatencyMs:    time.Since(started).Milliseconds(),
	}, nil
}

func buildTitlePrompt(title, target string) string {
	lang := "Simplified Chinese"
	if !strings.EqualFold(target, TargetZhCN) {
		lang = target
	}
	return fmt.Sprintf(`Translate the following news headline into %s.
Keep product names, company names and model names in their original form.
Reply with the translated headline only, on a single line, without quotes or explanations.

Headline: %s`, lang, title)
}

// cleanModelOutput берёт первую непустую строку и снимает кавычки.
func cleanModelOutput(raw string) string {
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		line = strings.TrimPrefix(line, "```")
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		return strings.Trim(line, "\"'“”「」 ")
	}
	return ""
}
