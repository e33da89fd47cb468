package pipeline

import (
	"carrental-backend/internal/domain"
)

// Timeline is the display model of a booking's history. It asks for an
// auto-scroll only when entries were appended after the initial load.
type Timeline struct {
	entries []domain.StatusHistoryEntry
	loaded  bool
}

// Load replaces the entries without requesting a scroll.
func (t *Timeline) Load(entries []domain.StatusHistoryEntry) {
	t.entries = domain.SortHistory(entries)
	t.loaded = true
}

// Refresh updates the entries and reports whether new ones were appended.
func (t *Timeline) Refresh(entries []domain.StatusHistoryEntry) bool {
	if !t.loaded {
		t.Load(entries)
		return false
	}
	seen := make(map[int64]bool, len(t.entries))
	for _, e := range t.entries {
		seen[e.ID] = true
	}
	appended := false
	for _, e := range entries {
		if !seen[e.ID] {
			appended = true
			break
		}
	}
	t.entries = domain.SortHistory(entries)
	return appended
}

func (t *Timeline) Entries() []domain.StatusHistoryEntry {
	out := make([]domain.StatusHistoryEntry, len(t.entries))
	copy(out, t.entries)
	return out
}

func (t *Timeline) Len() int { return len(t.entries) }
