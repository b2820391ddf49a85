package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type (
	// Root объединяет все конфигурационные блоки.
	Root struct {
		Pipeline    Pipeline    `yaml:"pipeline"`
		HTTP        HTTP        `yaml:"http"`
		RSS         RSS         `yaml:"rss"`
		Translation Translation `yaml:"translation"`
		Filter      Filter      `yaml:"filter"`
	}

	// Pipeline описывает параметры основного запуска.
	Pipeline struct {
		OutputDir             string   `yaml:"output_dir"`
		WindowHours           int      `yaml:"window_hours"`
		WideWindowHours       int      `yaml:"wide_window_hours"`
		ArchiveDays           int      `yaml:"archive_days"`
		TranslateMaxNew       int      `yaml:"translate_max_new"`
		AdapterConcurrency    int      `yaml:"adapter_concurrency"`
		AdapterTimeoutSeconds int      `yaml:"adapter_timeout_seconds"`
		TranslateConcurrency  int      `yaml:"translate_concurrency"`
		CacheMaxEntries       int      `yaml:"cache_max_entries"`
		SourceTimezone        string   `yaml:"source_timezone"`
		Adapters              []string `yaml:"adapters"` // пустой список = все встроенные
	}

	// HTTP — общие настройки загрузчика.
	HTTP struct {
		TimeoutSeconds   int    `yaml:"timeout_seconds"`
		Retries          int    `yaml:"retries"`
		RetryDelayMS     int    `yaml:"retry_delay_ms"`
		RetryStatusCodes []int  `yaml:"retry_status_codes"`
		UserAgent        string `yaml:"user_agent"`
	}

	// RSS описывает ленты из OPML.
	RSS struct {
		OPMLPath           string            `yaml:"opml_path"`
		MaxFeeds           int               `yaml:"max_feeds"` // 0 = без ограничения
		MaxConcurrency     int               `yaml:"max_concurrency"`
		FeedTimeoutSeconds int               `yaml:"feed_timeout_seconds"`
		SkipExact          []string          `yaml:"skip_exact"`
		SkipPrefixes       []string          `yaml:"skip_prefixes"`
		Replacements       map[string]string `yaml:"replacements"`
	}

	// Translation — провайдер живого перевода заголовков.
	Translation struct {
		Provider          string  `yaml:"provider"`
		RequestsPerSecond float64 `yaml:"requests_per_second"` // 0 = без ограничения
		GeminiModel       string  `yaml:"gemini_model"`
		TimeoutSeconds    int     `yaml:"timeout_seconds"`
	}

	// Filter — словари тематического фильтра. Все значения в нижнем регистре.
	Filter struct {
		AIKeywords      []string `yaml:"ai_keywords"`
		AISignalPattern string   `yaml:"ai_signal_pattern"`
		TechKeywords    []string `yaml:"tech_keywords"`
		CommerceNoise   []string `yaml:"commerce_noise"`
		GenericNoise    []string `yaml:"generic_noise"`
		TophubAllow     []string `yaml:"tophub_allow"`
		TophubBlock     []string `yaml:"tophub_block"`
	}
)

// Default возвращает конфигурацию по умолчанию.
func Default() Root {
	return Root{
		Pipeline: Pipeline{
			OutputDir:             "data",
			WindowHours:           24,
			WideWindowHours:       24 * 7,
			ArchiveDays:           45,
			TranslateMaxNew:       80,
			AdapterConcurrency:    5,
			AdapterTimeoutSeconds: 60,
			TranslateConcurrency:  1,
			CacheMaxEntries:       20000,
			SourceTimezone:        "Asia/Shanghai",
		},
		HTTP: HTTP{
			TimeoutSeconds:   30,
			Retries:          2,
			RetryDelayMS:     1000,
			RetryStatusCodes: []int{429, 500, 502, 503, 504},
			UserAgent:        "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36",
		},
		RSS: RSS{
			MaxConcurrency:     10,
			FeedTimeoutSeconds: 20,
			SkipPrefixes:       []string{"https://rsshub.app/"},
		},
		Translation: Translation{
			Provider:       "google",
			GeminiModel:    "gemini-2.0-flash",
			TimeoutSeconds: 12,
		},
		Filter: DefaultFilter(),
	}
}

// LoadRoot читает основной файл конфигурации поверх значений по умолчанию.
// Отсутствующие в файле ключи сохраняют значения из Default.
func LoadRoot(path string) (Root, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return Root{}, fmt.Errorf("read config: %w", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Root{}, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Root{}, fmt.Errorf("validate config: %w", err)
	}
	return cfg, nil
}

// LoadRootOrDefault ведёт себя как LoadRoot, но отсутствующий файл не считается ошибкой.
func LoadRootOrDefault(path string) (Root, error) {
	if path == "" {
		return Default(), nil
	}
	cfg, err := LoadRoot(path)
	if errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}
	return cfg, err
}

// Validate проверяет диапазоны значений.
func (r Root) Validate() error {
	p := r.Pipeline
	if p.OutputDir == "" {
		return errors.New("pipeline.output_dir is required")
	}
	if p.WindowHours < 1 {
		return errors.New("pipeline.window_hours must be >= 1")
	}
	if p.WideWindowHours < p.WindowHours {
		return fmt.Errorf("pipeline.wide_window_hours (%d) must be >= window_hours (%d)", p.WideWindowHours, p.WindowHours)
	}
	if p.ArchiveDays < 1 {
		return errors.New("pipeline.archive_days must be >= 1")
	}
	if p.TranslateMaxNew < 0 {
		return errors.New("pipeline.translate_max_new must be >= 0")
	}
	if p.AdapterConcurrency < 1 {
		return errors.New("pipeline.adapter_concurrency must be >= 1")
	}
	if p.TranslateConcurrency < 1 {
		return errors.New("pipeline.translate_concurrency must be >= 1")
	}
	if _, err := time.LoadLocation(p.SourceTimezone); err != nil {
		return fmt.Errorf("pipeline.source_timezone: %w", err)
	}
	if r.HTTP.Retries < 0 {
		return errors.New("http.retries must be >= 0")
	}
	if r.RSS.MaxFeeds < 0 {
		return errors.New("rss.max_feeds must be >= 0")
	}
	if r.Translation.RequestsPerSecond < 0 {
		return errors.New("translation.requests_per_second must be >= 0")
	}
	return nil
}

// AdapterTimeout возвращает таймаут одного адаптера.
func (p Pipeline) AdapterTimeout() time.Duration {
	return time.Duration(p.AdapterTimeoutSeconds) * time.Second
}

// Location возвращает часовой пояс, в котором источники пишут время без зоны.
func (p Pipeline) Location() *time.Location {
	loc, err := time.LoadLocation(p.SourceTimezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// Timeout возвращает таймаут HTTP-запроса.
func (h HTTP) Timeout() time.Duration {
	return time.Duration(h.TimeoutSeconds) * time.Second
}

// RetryDelay возвращает базовую задержку между попытками.
func (h HTTP) RetryDelay() time.Duration {
	return time.Duration(h.RetryDelayMS) * time.Millisecond
}

// Timeout возвращает таймаут одного запроса перевода.
func (t Translation) Timeout() time.Duration {
	return time.Duration(t.TimeoutSeconds) * time.Second
}
