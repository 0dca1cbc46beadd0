package history

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"paperdigest/internal/domain"
	"paperdigest/internal/ports"
)

// FileStore persists the recommendation history as a single JSON file
// keyed by paper ID. A run owns the store exclusively, so the whole
// file is rewritten on save.
type FileStore struct {
	path   string
	logger *slog.Logger
}

var _ ports.HistoryStore = (*FileStore)(nil)

// NewFileStore wires the store to its backing file path.
func NewFileStore(path string, logger *slog.Logger) *FileStore {
	return &FileStore{path: path, logger: logger}
}

// Load reads the persisted history. A missing or unreadable file yields
// an empty history so the pipeline degrades to treating everything as
// new rather than halting.
func (s *FileStore) Load(ctx context.Context) (domain.History, error) {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			s.warn("history file unreadable, starting empty", "path", s.path, "error", err)
		}
		return domain.History{}, nil
	}

	var history domain.History
	if err := json.Unmarshal(raw, &history); err != nil {
		s.warn("history file malformed, starting empty", "path", s.path, "error", err)
		return domain.History{}, nil
	}

	if history == nil {
		history = domain.History{}
	}
	return history, nil
}

// Save rewrites the entire persisted state. The write goes through a
// temp file and rename, so a later Load never observes a partial file.
func (s *FileStore) Save(ctx context.Context, history domain.History) error {
	raw, err := json.MarshalIndent(history, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal history: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o644); err != nil {
		return fmt.Errorf("write history: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace history: %w", err)
	}

	return nil
}

func (s *FileStore) warn(msg string, args ...any) {
	if s.logger != nil {
		s.logger.Warn(msg, args...)
	}
}
