package out

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"dokureader/internal/modules/library/domain"
	libraryout "dokureader/internal/modules/library/port/out"
)

type FileStateStore struct {
	path string
}

func NewFileStateStore(path string) libraryout.StateStore {
	return &FileStateStore{path: path}
}

func (s *FileStateStore) Load(_ context.Context) (domain.State, error) {
	payload, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return domain.State{SchemaVersion: domain.SchemaVersion, Topics: []domain.Topic{}}, nil
		}
		return domain.State{}, fmt.Errorf("read state: %w", err)
	}
	state := domain.State{}
	if err := json.Unmarshal(payload, &state); err != nil {
		return domain.State{}, fmt.Errorf("decode state %s: %w", s.path, err)
	}
	if state.SchemaVersion > domain.SchemaVersion {
		return domain.State{}, fmt.Errorf("state schema %d is newer than supported %d", state.SchemaVersion, domain.SchemaVersion)
	}
	if state.Topics == nil {
		state.Topics = []domain.Topic{}
	}
	return state, nil
}

// Save replaces the state file atomically.
func (s *FileStateStore) Save(_ context.Context, state domain.State) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create state dir: %w", err)
	}
	payload, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal state: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".state-*.json")
	if err != nil {
		return fmt.Errorf("create temp state: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)
	if _, err := tmp.Write(payload); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write temp state: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp state: %w", err)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		return fmt.Errorf("replace state: %w", err)
	}
	return nil
}
