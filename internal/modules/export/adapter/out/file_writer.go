package out

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	exportout "dokureader/internal/modules/export/port/out"
)

type FileOutputWriter struct{}

func NewFileOutputWriter() exportout.OutputWriter {
	return FileOutputWriter{}
}

// Write creates missing parent directories. A failed write may leave a
// partial file behind.
func (FileOutputWriter) Write(_ context.Context, path string, pdf []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create export dir: %w", err)
	}
	if err := os.WriteFile(path, pdf, 0o644); err != nil {
		return err
	}
	return nil
}
