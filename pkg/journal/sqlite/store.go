//go:generate go run ./schemadump -path schema.sql
//go:generate sqlc generate

package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"codeberg.org/miketth/hyprkeymap/pkg/hyprkeymap"
	"codeberg.org/miketth/hyprkeymap/pkg/journal/sqlite/migrations"
	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"
)

type Store struct {
	db      *sql.DB
	querier *Queries
}

func NewStore(filename string, log *zap.SugaredLogger) (*Store, error) {
	db, err := sql.Open("sqlite3", filename)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	if err := migrations.Migrate(db, log); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return &Store{
		db:      db,
		querier: New(db),
	}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) Record(entry hyprkeymap.JournalEntry) error {
	if err := s.querier.InsertGroupChange(context.Background(), InsertGroupChangeParams{
		Time:     entry.Time.UTC(),
		Client:   int64(entry.Client),
		Object:   int64(entry.Object),
		Keyboard: entry.Keyboard,
		Grp:      int64(entry.Group),
		Initial:  entry.Initial,
	}); err != nil {
		return fmt.Errorf("sqlite insert: %w", err)
	}

	return nil
}

// Recent returns up to limit entries, newest first. A limit of zero or less
// returns everything.
func (s *Store) Recent(limit int) ([]hyprkeymap.JournalEntry, error) {
	sqlLimit := int64(limit)
	if limit <= 0 {
		sqlLimit = -1
	}

	rows, err := s.querier.ListRecentGroupChanges(context.Background(), sqlLimit)
	if err != nil {
		return nil, fmt.Errorf("sqlite select: %w", err)
	}

	ret := make([]hyprkeymap.JournalEntry, 0, len(rows))
	for _, row := range rows {
		ret = append(ret, hyprkeymap.JournalEntry{
			Time:     row.Time,
			Client:   uint64(row.Client),
			Object:   uint32(row.Object),
			Keyboard: row.Keyboard,
			Group:    uint32(row.Grp),
			Initial:  row.Initial,
		})
	}

	return ret, nil
}
