package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadEnvConfig(t *testing.T) {
	t.Setenv("ENVIRONMENT", "production")
	t.Setenv("TRANSLATION_PROVIDER", "Google")
	t.Setenv("GEMINI_API_KEY", "")

	cfg, err := LoadEnvConfig()
	if err != nil {
		t.Fatalf("LoadEnvConfig() error = %v", err)
	}
	if cfg.Environment != "production" || cfg.LogLevel != "info" || cfg.ConfigPath != "configs/pipeline.yaml" {
		t.Errorf("cfg = %+v", cfg)
	}

	root := Default()
	root.Translation.Provider = "gemini"
	cfg.Apply(&root)
	if root.Translation.Provider != "google" {
		t.Errorf("provider = %q, want google", root.Translation.Provider)
	}
}

func TestLoadEnvConfig_GeminiNeedsKey(t *testing.T) {
	t.Setenv("TRANSLATION_PROVIDER", "gemini")
	t.Setenv("GEMINI_API_KEY", "")

	if _, err := LoadEnvConfig(); err == nil {
		t.Fatal("expected error without GEMINI_API_KEY")
	}
}

func TestEnvConfig_ApplyKeepsFileProvider(t *testing.T) {
	root := Default()
	root.Translation.Provider = "gemini"
	(&EnvConfig{}).Apply(&root)
	if root.Translation.Provider != "gemini" {
		t.Errorf("provider = %q, want gemini", root.Translation.Provider)
	}
}

func TestLoadDotEnv(t *testing.T) {
	loaded, err := LoadDotEnv(filepath.Join(t.TempDir(), "missing.env"))
	if err != nil || loaded {
		t.Fatalf("missing file: loaded=%v err=%v", loaded, err)
	}

	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, []byte("AGGREGATOR_DOTENV_TEST=from-file\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("AGGREGATOR_DOTENV_TEST", "")
	os.Unsetenv("AGGREGATOR_DOTENV_TEST")

	loaded, err = LoadDotEnv(path)
	if err != nil || !loaded {
		t.Fatalf("LoadDotEnv() loaded=%v err=%v", loaded, err)
	}
	if got := os.Getenv("AGGREGATOR_DOTENV_TEST"); got != "from-file" {
		t.Errorf("env = %q", got)
	}
}
