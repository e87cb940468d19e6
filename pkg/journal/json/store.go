package json

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"codeberg.org/miketth/hyprkeymap/pkg/hyprkeymap"
)

type entry struct {
	Time     time.Time `json:"time"`
	Client   uint64    `json:"client"`
	Object   uint32    `json:"object"`
	Keyboard string    `json:"keyboard"`
	Group    uint32    `json:"group"`
	Initial  bool      `json:"initial,omitempty"`
}

// Store keeps the journal in memory and writes it to a JSON file from
// SaveLooper.
type Store struct {
	entries []entry
	limit   int
	file    *os.File
	lock    sync.Mutex
	dirty   bool
}

func NewStore(filename string, limit int) (*Store, error) {
	fileExists := true
	_, err := os.Stat(filename)
	if os.IsNotExist(err) {
		fileExists = false
	}

	file, err := os.OpenFile(filename, os.O_CREATE|os.O_RDWR, 0644)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}

	store := &Store{
		file:  file,
		limit: limit,
		dirty: true,
	}

	if fileExists {
		err = store.load()
		if err != nil {
			file.Close()
			return nil, fmt.Errorf("load: %w", err)
		}

		store.dirty = false
	}

	return store, nil
}

func (s *Store) Close() error {
	return s.file.Close()
}

func (s *Store) load() error {
	s.lock.Lock()
	defer s.lock.Unlock()
	_, err := s.file.Seek(0, 0)
	if err != nil {
		return fmt.Errorf("seek to start of file: %w", err)
	}

	dec := json.NewDecoder(s.file)
	err = dec.Decode(&s.entries)
	if err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("decode json: %w", err)
	}

	return nil
}

func (s *Store) save() error {
	s.lock.Lock()
	defer s.lock.Unlock()

	if !s.dirty {
		return nil
	}

	_, err := s.file.Seek(0, 0)
	if err != nil {
		return fmt.Errorf("seek to start of file: %w", err)
	}

	err = s.file.Truncate(0)
	if err != nil {
		return fmt.Errorf("truncate file: %w", err)
	}

	enc := json.NewEncoder(s.file)
	err = enc.Encode(s.entries)
	if err != nil {
		return fmt.Errorf("encode json: %w", err)
	}

	s.dirty = false

	return nil
}

// SaveLooper writes the journal every interval and once more when ctx is
// done, then closes the file.
func (s *Store) SaveLooper(ctx context.Context, interval time.Duration) error {
	defer s.file.Close()

	for {
		select {
		case <-ctx.Done():
			err := s.save()
			if err != nil {
				return fmt.Errorf("save: %w", err)
			}

			return ctx.Err()
		case <-time.After(interval):
			err := s.save()
			if err != nil {
				return fmt.Errorf("save: %w", err)
			}
		}
	}
}

func (s *Store) Record(e hyprkeymap.JournalEntry) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	s.entries = append(s.entries, entry(e))
	if s.limit > 0 && len(s.entries) > s.limit {
		s.entries = s.entries[len(s.entries)-s.limit:]
	}
	s.dirty = true
	return nil
}

func (s *Store) Recent(limit int) ([]hyprkeymap.JournalEntry, error) {
	s.lock.Lock()
	defer s.lock.Unlock()

	if limit <= 0 || limit > len(s.entries) {
		limit = len(s.entries)
	}

	out := make([]hyprkeymap.JournalEntry, 0, limit)
	for i := len(s.entries) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, hyprkeymap.JournalEntry(s.entries[i]))
	}
	return out, nil
}
