// Package output записывает JSON-файлы результата атомарно.
package output

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Имена файлов в каталоге результата.
const (
	ArchiveFile      = "archive.json"
	StatusFile       = "source-status.json"
	TitleCacheFile   = "title-zh-cache.json"
	latestFilePrefix = "latest-"
)

// LatestFile возвращает имя файла окна: latest-24h.json, latest-7d.json.
func LatestFile(hours int) string {
	if hours%24 == 0 && hours > 24 {
		return fmt.Sprintf("%s%dd.json", latestFilePrefix, hours/24)
	}
	return fmt.Sprintf("%s%dh.json", latestFilePrefix, hours)
}

// Writer пишет файлы в один каталог.
type Writer struct {
	dir string
}

// NewWriter создаёт писателя для каталога dir.
func NewWriter(dir string) *Writer {
	return &Writer{dir: dir}
}

// Dir возвращает каталог результата.
func (w *Writer) Dir() string {
	return w.dir
}

// Path возвращает полный путь к файлу в каталоге результата.
func (w *Writer) Path(name string) string {
	return filepath.Join(w.dir, name)
}

// EnsureDir создаёт каталог и проверяет, что в него можно писать.
func (w *Writer) EnsureDir() error {
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	probe, err := os.CreateTemp(w.dir, ".probe-*")
	if err != nil {
		return fmt.Errorf("output directory not writable: %w", err)
	}
	name := probe.Name()
	_ = probe.Close()
	_ = os.Remove(name)
	return nil
}

// WriteJSON записывает v в файл name каталога результата.
func (w *Writer) WriteJSON(name string, v any) error {
	return WriteJSONFile(w.Path(name), v)
}

// WriteJSONFile записывает v с отступами атомарно (через временный файл).
func WriteJSONFile(path string, v any) error {
	data, err := Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", filepath.Base(path), err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}

	// Атомарная запись через временный файл
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}

// Marshal кодирует JSON с двумя пробелами отступа, без экранирования HTML в URL.
func Marshal(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
