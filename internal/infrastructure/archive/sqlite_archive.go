package archive

import (
	"context"
	"database/sql"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	_ "github.com/mattn/go-sqlite3"

	"paperdigest/internal/domain"
	"paperdigest/internal/ports"
)

const schemaSQL = `CREATE TABLE IF NOT EXISTS digest_items (
	paper_id  TEXT PRIMARY KEY,
	title     TEXT NOT NULL,
	ran_at    TIMESTAMP NOT NULL,
	persisted BOOLEAN NOT NULL
)`

// SQLiteArchive keeps an audit trail of digest contents in a local
// sqlite database. It plays no part in deduplication; the history file
// stays the single source for that.
type SQLiteArchive struct {
	db *sql.DB
}

var _ ports.RunArchive = (*SQLiteArchive)(nil)

// Open creates or opens the archive database and ensures the schema.
func Open(path string) (*SQLiteArchive, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open archive: %w", err)
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init archive schema: %w", err)
	}

	return &SQLiteArchive{db: db}, nil
}

// SaveEntries upserts one row per digest item. A paper recommended again
// on a later run keeps one row with the latest run timestamp.
func (a *SQLiteArchive) SaveEntries(ctx context.Context, entries []domain.RunEntry) error {
	if a == nil || a.db == nil || len(entries) == 0 {
		return nil
	}

	for _, entry := range entries {
		query, args, err := sq.Insert("digest_items").
			Columns("paper_id", "title", "ran_at", "persisted").
			Values(entry.PaperID, entry.Title, entry.RanAt, entry.Persisted).
			Suffix(`ON CONFLICT (paper_id) DO UPDATE
				SET title = excluded.title,
				    ran_at = excluded.ran_at,
				    persisted = excluded.persisted`).
			ToSql()
		if err != nil {
			return fmt.Errorf("build archive insert: %w", err)
		}

		if _, err := a.db.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("archive item %s: %w", entry.PaperID, err)
		}
	}

	return nil
}

// Close releases the underlying database handle.
func (a *SQLiteArchive) Close() error {
	if a == nil || a.db == nil {
		return nil
	}
	return a.db.Close()
}
