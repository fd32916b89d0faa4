package out

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"dokureader/internal/modules/plugin/domain"
	pluginout "dokureader/internal/modules/plugin/port/out"
)

// ManifestPath returns the location of the plugin manifest inside dataDir.
func ManifestPath(dataDir string) string {
	return filepath.Join(dataDir, "plugins", "plugins.json")
}

type FileManifestStore struct {
	dataDir string
}

func NewFileManifestStore(dataDir string) pluginout.ManifestStore {
	return &FileManifestStore{dataDir: dataDir}
}

// Load returns manifests in file order. A missing or blank file means no plugins.
func (s *FileManifestStore) Load(_ context.Context) ([]domain.Manifest, error) {
	path := ManifestPath(s.dataDir)
	raw, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		return []domain.Manifest{}, nil
	case err != nil:
		return nil, fmt.Errorf("read plugin manifest: %w", err)
	}
	manifests := []domain.Manifest{}
	if len(bytes.TrimSpace(raw)) == 0 {
		return manifests, nil
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&manifests); err != nil {
		return nil, fmt.Errorf("decode plugin manifest %s: %w", path, err)
	}
	for i := range manifests {
		manifests[i].Binary = s.resolveBinary(manifests[i].Binary)
	}
	return manifests, nil
}

// resolveBinary expands environment variables and anchors relative paths at the data dir.
func (s *FileManifestStore) resolveBinary(binary string) string {
	if binary == "" {
		return ""
	}
	binary = os.ExpandEnv(binary)
	if filepath.IsAbs(binary) {
		return filepath.Clean(binary)
	}
	return filepath.Join(s.dataDir, binary)
}
