package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// EnvConfig содержит ключи и другие переменные окружения.
type EnvConfig struct {
	Environment         string `envconfig:"ENVIRONMENT" default:"local"`
	LogLevel            string `envconfig:"LOG_LEVEL" default:"info"`
	ConfigPath          string `envconfig:"AGGREGATOR_CONFIG" default:"configs/pipeline.yaml"`
	TranslationProvider string `envconfig:"TRANSLATION_PROVIDER"`
	GeminiAPIKey        string `envconfig:"GEMINI_API_KEY"`
}

// LoadEnvConfig читает переменные окружения и возвращает конфигурацию.
// GEMINI_API_KEY обязателен только при выборе провайдера gemini.
func LoadEnvConfig() (*EnvConfig, error) {
	var cfg EnvConfig
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("process env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return &cfg, nil
}

// Validate проверяет согласованность переменных.
func (c *EnvConfig) Validate() error {
	if strings.EqualFold(strings.TrimSpace(c.TranslationProvider), "gemini") && strings.TrimSpace(c.GeminiAPIKey) == "" {
		return errors.New("GEMINI_API_KEY is required when TRANSLATION_PROVIDER=gemini")
	}
	return nil
}

// LoadDotEnv подгружает .env, если файл существует. Уже заданные переменные не перезаписываются.
func LoadDotEnv(path string) (bool, error) {
	if strings.TrimSpace(path) == "" {
		path = ".env"
	}
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("stat env file: %w", err)
	}
	if err := godotenv.Load(path); err != nil {
		return false, fmt.Errorf("load env file %s: %w", path, err)
	}
	return true, nil
}

// Apply переносит переопределения из окружения в файловую конфигурацию.
func (c *EnvConfig) Apply(root *Root) {
	if p := strings.TrimSpace(c.TranslationProvider); p != "" {
		root.Translation.Provider = strings.ToLower(p)
	}
}
