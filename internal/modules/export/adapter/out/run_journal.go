package out

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"dokureader/internal/modules/export/domain"
	exportout "dokureader/internal/modules/export/port/out"
	apperrors "dokureader/internal/platform/errors"
)

type FileRunJournal struct {
	path string
}

func NewFileRunJournal(path string) exportout.RunJournal {
	return &FileRunJournal{path: path}
}

func (j *FileRunJournal) Save(_ context.Context, run domain.Run) error {
	if err := os.MkdirAll(filepath.Dir(j.path), 0o755); err != nil {
		return fmt.Errorf("create journal dir: %w", err)
	}
	payload, err := json.MarshalIndent(run, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal export run: %w", err)
	}
	tmp := j.path + ".tmp"
	if err := os.WriteFile(tmp, payload, 0o644); err != nil {
		return fmt.Errorf("write export run: %w", err)
	}
	if err := os.Rename(tmp, j.path); err != nil {
		return fmt.Errorf("replace export run: %w", err)
	}
	return nil
}

func (j *FileRunJournal) Latest(_ context.Context) (domain.Run, error) {
	payload, err := os.ReadFile(j.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return domain.Run{}, fmt.Errorf("%w: no export has run yet", apperrors.ErrNotFound)
		}
		return domain.Run{}, fmt.Errorf("read export run: %w", err)
	}
	run := domain.Run{}
	if err := json.Unmarshal(payload, &run); err != nil {
		return domain.Run{}, fmt.Errorf("decode export run: %w", err)
	}
	if run.ID == "" {
		return domain.Run{}, fmt.Errorf("%w: export journal is empty", apperrors.ErrNotFound)
	}
	return run, nil
}
