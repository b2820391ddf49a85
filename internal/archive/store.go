// Package archive хранит дедуплицированный по идентичности архив записей между запусками.
package archive

import (
	"sort"
	"time"

	"github.com/SuYxh/ai-news-aggregator/internal/identity"
	"github.com/SuYxh/ai-news-aggregator/internal/news"
	"github.com/SuYxh/ai-news-aggregator/internal/sites"
)

// Store — коллекция записей по идентичности. Не потокобезопасна: один писатель.
type Store struct {
	records map[string]news.Record
}

// New создаёт пустой архив.
func New() *Store {
	return &Store{records: make(map[string]news.Record)}
}

// FromRecords восстанавливает архив из снимка. Записи без id пропускаются,
// при повторе id выигрывает запись с более поздним last_seen_at.
func FromRecords(records []news.Record) *Store {
	s := New()
	for _, r := range records {
		if r.ID == "" {
			continue
		}
		if prev, ok := s.records[r.ID]; ok && prev.LastSeenAt.After(r.LastSeenAt) {
			continue
		}
		s.records[r.ID] = sanitize(r)
	}
	return s
}

// Upsert вносит нормализованного кандидата. Возвращает true, если запись новая.
func (s *Store) Upsert(c news.Candidate, now time.Time) bool {
	now = now.UTC().Truncate(time.Second)
	id := identity.Of(c)

	existing, ok := s.records[id]
	if !ok {
		s.records[id] = news.Record{
			ID:          id,
			SiteID:      c.SiteID,
			SiteName:    c.SiteName,
			Source:      c.Source,
			Title:       c.Title,
			URL:         c.URL,
			PublishedAt: copyTime(c.PublishedAt),
			FirstSeenAt: now,
			LastSeenAt:  now,
		}
		return true
	}

	existing.SiteID = c.SiteID
	existing.SiteName = c.SiteName
	existing.Source = c.Source
	existing.Title = c.Title
	existing.URL = c.URL
	if now.After(existing.LastSeenAt) {
		existing.LastSeenAt = now
	}
	existing.PublishedAt = mergePublished(sites.Lookup(c.SiteID).Published, existing.PublishedAt, c.PublishedAt)
	s.records[id] = existing
	return false
}

// Prune удаляет записи, у которых самое позднее из (last_seen_at, published_at, first_seen_at)
// раньше now - retention. Запись без единой даты считается увиденной в now и получает эти отметки.
// Возвращает число удалённых.
func (s *Store) Prune(now time.Time, retention time.Duration) int {
	now = now.UTC().Truncate(time.Second)
	cutoff := now.Add(-retention)
	removed := 0
	for id, r := range s.records {
		latest := latestKnown(r)
		if latest.IsZero() {
			r.FirstSeenAt, r.LastSeenAt = now, now
			s.records[id] = r
			continue
		}
		if latest.Before(cutoff) {
			delete(s.records, id)
			removed++
		}
	}
	return removed
}

// Len возвращает число записей.
func (s *Store) Len() int {
	return len(s.records)
}

// Get возвращает запись по идентичности.
func (s *Store) Get(id string) (news.Record, bool) {
	r, ok := s.records[id]
	return r, ok
}

// Snapshot возвращает копии записей, отсортированные по last_seen_at по убыванию (при равенстве по id).
func (s *Store) Snapshot() []news.Record {
	out := make([]news.Record, 0, len(s.records))
	for _, r := range s.records {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].LastSeenAt.Equal(out[j].LastSeenAt) {
			return out[i].LastSeenAt.After(out[j].LastSeenAt)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func mergePublished(policy sites.PublishedPolicy, current, incoming *time.Time) *time.Time {
	if incoming == nil {
		return current
	}
	if current == nil || policy == sites.Refresh {
		return copyTime(incoming)
	}
	return current
}

func latestKnown(r news.Record) time.Time {
	latest := r.LastSeenAt
	if r.PublishedAt != nil && r.PublishedAt.After(latest) {
		latest = *r.PublishedAt
	}
	if r.FirstSeenAt.After(latest) {
		latest = r.FirstSeenAt
	}
	return latest
}

// sanitize убирает производные поля обогащения и чинит first_seen_at > last_seen_at.
func sanitize(r news.Record) news.Record {
	r.TitleOriginal = ""
	r.TitleEN = nil
	r.TitleZH = nil
	r.TitleBilingual = ""
	if r.LastSeenAt.IsZero() {
		r.LastSeenAt = r.FirstSeenAt
	}
	if r.FirstSeenAt.IsZero() || r.FirstSeenAt.After(r.LastSeenAt) {
		r.FirstSeenAt = r.LastSeenAt
	}
	return r
}

func copyTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := t.UTC()
	return &v
}
