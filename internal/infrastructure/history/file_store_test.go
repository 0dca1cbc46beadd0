package history

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"paperdigest/internal/domain"
)

func TestLoadMissingFile(t *testing.T) {
	t.Parallel()

	store := NewFileStore(filepath.Join(t.TempDir(), "absent.json"), nil)

	history, err := store.Load(context.Background())
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if len(history) != 0 {
		t.Fatalf("expected empty history, got %d records", len(history))
	}
}

func TestLoadCorruptFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "history.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	store := NewFileStore(path, nil)

	history, err := store.Load(context.Background())
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if len(history) != 0 {
		t.Fatalf("expected empty history, got %d records", len(history))
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "history.json")
	store := NewFileStore(path, nil)
	ctx := context.Background()

	want := domain.History{
		"http://arxiv.org/abs/2501.00001": {Title: "First", Summary: "first summary"},
		"http://arxiv.org/abs/2501.00002": {Title: "Second", Summary: "second summary"},
	}

	if err := store.Save(ctx, want); err != nil {
		t.Fatalf("Save returned error: %v", err)
	}

	got, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if len(got) != len(want) {
		t.Fatalf("expected %d records, got %d", len(want), len(got))
	}
	for id, record := range want {
		if got[id] != record {
			t.Fatalf("record %s: expected %+v, got %+v", id, record, got[id])
		}
	}
}

func TestSaveOverwritesWholeState(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "history.json")
	store := NewFileStore(path, nil)
	ctx := context.Background()

	first := domain.History{"a": {Title: "A"}, "b": {Title: "B"}}
	if err := store.Save(ctx, first); err != nil {
		t.Fatalf("first Save: %v", err)
	}

	second := domain.History{"c": {Title: "C"}}
	if err := store.Save(ctx, second); err != nil {
		t.Fatalf("second Save: %v", err)
	}

	got, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if len(got) != 1 {
		t.Fatalf("expected 1 record after overwrite, got %d", len(got))
	}
	if _, ok := got["c"]; !ok {
		t.Fatalf("expected record c to survive, got %v", got)
	}

	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Fatalf("temp file left behind")
	}
}
