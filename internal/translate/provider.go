// Package translate содержит провайдеры живого перевода заголовков.
package translate

import (
	"context"
	"errors"
)

// Целевой язык перевода по умолчанию.
const TargetZhCN = "zh-CN"

var (
	// ErrQuotaExhausted означает, что провайдер исчерпал дневную квоту и дальнейшие вызовы бессмысленны.
	ErrQuotaExhausted = errors.New("translation quota exhausted")
	// ErrEmptyResult — провайдер вернул пустой перевод.
	ErrEmptyResult = errors.New("empty translation result")
)

// Provider переводит текст между языками.
type Provider interface {
	Translate(ctx context.Context, req Request) (*Response, error)
	Name() string
}

// Request описывает один запрос перевода.
type Request struct {
	Text       string
	SourceLang string // пусто = автоопределение
	TargetLang string
}

// Response содержит перевод и метаданные провайдера.
type Response struct {
	Text         string
	ProviderName string
	LatencyMs    int64
}
