package memory

import (
	"sync"

	"codeberg.org/miketth/hyprkeymap/pkg/hyprkeymap"
)

// Store keeps the newest entries in memory, up to its limit.
type Store struct {
	lock    sync.Mutex
	entries []hyprkeymap.JournalEntry
	limit   int
}

func NewStore(limit int) *Store {
	return &Store{limit: limit}
}

func (s *Store) Record(entry hyprkeymap.JournalEntry) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	s.entries = append(s.entries, entry)
	if s.limit > 0 && len(s.entries) > s.limit {
		s.entries = s.entries[len(s.entries)-s.limit:]
	}
	return nil
}

// Recent returns up to limit entries, newest first.
func (s *Store) Recent(limit int) ([]hyprkeymap.JournalEntry, error) {
	s.lock.Lock()
	defer s.lock.Unlock()

	return newestFirst(s.entries, limit), nil
}

func newestFirst(entries []hyprkeymap.JournalEntry, limit int) []hyprkeymap.JournalEntry {
	if limit <= 0 || limit > len(entries) {
		limit = len(entries)
	}

	out := make([]hyprkeymap.JournalEntry, 0, limit)
	for i := len(entries) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, entries[i])
	}
	return out
}
