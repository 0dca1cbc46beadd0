package archive

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"paperdigest/internal/domain"
)

func TestSaveEntriesAndUpsert(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "archive.db")
	store, err := Open(path)
	if err != nil {
		t.Fatalf("Open returned error: %v", err)
	}
	defer store.Close()

	ctx := context.Background()
	firstRun := time.Date(2025, time.November, 9, 6, 0, 0, 0, time.UTC)

	entries := []domain.RunEntry{
		{PaperID: "http://arxiv.org/abs/1", Title: "First", RanAt: firstRun, Persisted: true},
		{PaperID: "http://arxiv.org/abs/2", Title: "Second", RanAt: firstRun, Persisted: false},
	}
	if err := store.SaveEntries(ctx, entries); err != nil {
		t.Fatalf("SaveEntries returned error: %v", err)
	}

	// Paper 2 was not persisted to history, so a later run may recommend
	// it again; the archive keeps one row with the latest state.
	secondRun := firstRun.Add(24 * time.Hour)
	again := []domain.RunEntry{
		{PaperID: "http://arxiv.org/abs/2", Title: "Second", RanAt: secondRun, Persisted: true},
	}
	if err := store.SaveEntries(ctx, again); err != nil {
		t.Fatalf("SaveEntries upsert returned error: %v", err)
	}

	var count int
	if err := store.db.QueryRow("SELECT COUNT(*) FROM digest_items").Scan(&count); err != nil {
		t.Fatalf("count rows: %v", err)
	}
	if count != 2 {
		t.Fatalf("expected 2 rows, got %d", count)
	}

	var persisted bool
	row := store.db.QueryRow("SELECT persisted FROM digest_items WHERE paper_id = ?", "http://arxiv.org/abs/2")
	if err := row.Scan(&persisted); err != nil {
		t.Fatalf("scan row: %v", err)
	}
	if !persisted {
		t.Fatalf("upsert did not update persisted flag")
	}
}

func TestSaveEntriesEmptyIsNoop(t *testing.T) {
	t.Parallel()

	store, err := Open(filepath.Join(t.TempDir(), "archive.db"))
	if err != nil {
		t.Fatalf("Open returned error: %v", err)
	}
	defer store.Close()

	if err := store.SaveEntries(context.Background(), nil); err != nil {
		t.Fatalf("empty SaveEntries returned error: %v", err)
	}
}
