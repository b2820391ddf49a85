package bilingual

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"

	"github.com/SuYxh/ai-news-aggregator/internal/output"
)

// Cache — потокобезопасный кэш «исходный заголовок → перевод».
type Cache struct {
	mu      sync.RWMutex
	entries map[string]string
	touched map[string]struct{}
}

// NewCache создаёт пустой кэш.
func NewCache() *Cache {
	return &Cache{
		entries: make(map[string]string),
		touched: make(map[string]struct{}),
	}
}

// LoadCache читает кэш из JSON-объекта. Отсутствующий или повреждённый файл даёт пустой кэш
// и ошибку для логирования; пустые ключи и значения отбрасываются.
func LoadCache(path string) (*Cache, error) {
	c := NewCache()
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return c, nil
		}
		return c, fmt.Errorf("read title cache: %w", err)
	}

	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return c, fmt.Errorf("unmarshal title cache: %w", err)
	}
	for k, v := range raw {
		s, ok := v.(string)
		if !ok {
			continue
		}
		key, val := strings.TrimSpace(k), strings.TrimSpace(s)
		if key == "" || val == "" {
			continue
		}
		c.entries[key] = val
	}
	return c, nil
}

// Get возвращает перевод и помечает запись как использованную в этом запуске.
func (c *Cache) Get(title string) (string, bool) {
	c.mu.RLock()
	v, ok := c.entries[title]
	c.mu.RUnlock()
	if ok {
		c.mu.Lock()
		c.touched[title] = struct{}{}
		c.mu.Unlock()
	}
	return v, ok
}

// Set сохраняет перевод.
func (c *Cache) Set(title, translated string) {
	title, translated = strings.TrimSpace(title), strings.TrimSpace(translated)
	if title == "" || translated == "" {
		return
	}
	c.mu.Lock()
	c.entries[title] = translated
	c.touched[title] = struct{}{}
	c.mu.Unlock()
}

// Len возвращает число записей.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Bounded возвращает не более max записей: сначала использованные в этом запуске,
// затем остальные в порядке ключей. max <= 0 снимает ограничение.
func (c *Cache) Bounded(max int) map[string]string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if max <= 0 || len(c.entries) <= max {
		out := make(map[string]string, len(c.entries))
		for k, v := range c.entries {
			out[k] = v
		}
		return out
	}

	touched := make([]string, 0, len(c.touched))
	rest := make([]string, 0, len(c.entries))
	for k := range c.entries {
		if _, ok := c.touched[k]; ok {
			touched = append(touched, k)
		} else {
			rest = append(rest, k)
		}
	}
	sort.Strings(touched)
	sort.Strings(rest)

	out := make(map[string]string, max)
	for _, k := range append(touched, rest...) {
		if len(out) >= max {
			break
		}
		out[k] = c.entries[k]
	}
	return out
}

// Save записывает кэш атомарно с учётом ограничения размера.
func (c *Cache) Save(path string, max int) error {
	if err := output.WriteJSONFile(path, c.Bounded(max)); err != nil {
		return fmt.Errorf("save title cache: %w", err)
	}
	return nil
}
