package archive

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/SuYxh/ai-news-aggregator/internal/news"
	"github.com/SuYxh/ai-news-aggregator/internal/output"
)

// FileStore хранит снимок архива в JSON-файле.
type FileStore struct {
	path   string
	logger zerolog.Logger
}

// NewFileStore создаёт новый файловый стор.
func NewFileStore(path string, logger zerolog.Logger) *FileStore {
	return &FileStore{
		path:   path,
		logger: logger.With().Str("component", "archive").Logger(),
	}
}

// Path возвращает путь к файлу снимка.
func (s *FileStore) Path() string {
	return s.path
}

// Load читает архив из файла. Отсутствующий или повреждённый файл даёт пустой архив;
// повреждённый файл сохраняется рядом с суффиксом .broken.
func (s *FileStore) Load(ctx context.Context) (*Store, error) {
	_ = ctx

	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			s.logger.Info().Str("path", s.path).Msg("archive not found, starting empty")
			return New(), nil
		}
		s.logger.Warn().Err(err).Str("path", s.path).Msg("archive unreadable, starting empty")
		return New(), nil
	}

	records, err := decodeSnapshot(data)
	if err != nil {
		brokenPath := s.path + ".broken"
		if werr := os.WriteFile(brokenPath, data, 0o644); werr != nil {
			s.logger.Warn().Err(werr).Str("path", brokenPath).Msg("failed to preserve broken archive")
		}
		s.logger.Warn().Err(err).Str("path", s.path).Msg("archive corrupt, starting empty")
		return New(), nil
	}

	store := FromRecords(records)
	s.logger.Info().Int("records", store.Len()).Msg("archive loaded")
	return store, nil
}

// Save записывает снимок архива атомарно.
func (s *FileStore) Save(ctx context.Context, payload news.ArchivePayload) error {
	_ = ctx
	if err := output.WriteJSONFile(s.path, payload); err != nil {
		return fmt.Errorf("save archive: %w", err)
	}
	return nil
}

// Payload собирает снимок для сохранения.
func Payload(store *Store, generatedAt time.Time) news.ArchivePayload {
	items := store.Snapshot()
	return news.ArchivePayload{
		GeneratedAt: generatedAt.UTC().Truncate(time.Second),
		TotalItems:  len(items),
		Items:       items,
	}
}

type snapshotFile struct {
	Items json.RawMessage `json:"items"`
}

// rawRecord терпимо относится к пустым и нестандартным датам.
type rawRecord struct {
	ID          string  `json:"id"`
	SiteID      string  `json:"site_id"`
	SiteName    string  `json:"site_name"`
	Source      string  `json:"source"`
	Title       string  `json:"title"`
	URL         string  `json:"url"`
	PublishedAt *string `json:"published_at"`
	FirstSeenAt *string `json:"first_seen_at"`
	LastSeenAt  *string `json:"last_seen_at"`
}

func decodeSnapshot(data []byte) ([]news.Record, error) {
	var snap snapshotFile
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("unmarshal archive: %w", err)
	}

	trimmed := bytes.TrimSpace(snap.Items)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, nil
	}

	var raws []rawRecord
	switch trimmed[0] {
	case '[':
		if err := json.Unmarshal(trimmed, &raws); err != nil {
			return nil, fmt.Errorf("unmarshal archive items list: %w", err)
		}
	case '{':
		byID := make(map[string]rawRecord)
		if err := json.Unmarshal(trimmed, &byID); err != nil {
			return nil, fmt.Errorf("unmarshal archive items map: %w", err)
		}
		keys := make([]string, 0, len(byID))
		for k := range byID {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			r := byID[k]
			if strings.TrimSpace(r.ID) == "" {
				r.ID = k
			}
			raws = append(raws, r)
		}
	default:
		return nil, fmt.Errorf("unexpected archive items type")
	}

	records := make([]news.Record, 0, len(raws))
	for _, raw := range raws {
		records = append(records, raw.toRecord())
	}
	return records, nil
}

func (r rawRecord) toRecord() news.Record {
	rec := news.Record{
		ID:          strings.TrimSpace(r.ID),
		SiteID:      r.SiteID,
		SiteName:    r.SiteName,
		Source:      r.Source,
		Title:       r.Title,
		URL:         r.URL,
		PublishedAt: parseISO(r.PublishedAt),
	}
	if t := parseISO(r.FirstSeenAt); t != nil {
		rec.FirstSeenAt = *t
	}
	if t := parseISO(r.LastSeenAt); t != nil {
		rec.LastSeenAt = *t
	}
	return rec
}

func parseISO(v *string) *time.Time {
	if v == nil {
		return nil
	}
	s := strings.TrimSpace(*v)
	if s == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return nil
	}
	t = t.UTC()
	return &t
}
