package out

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"dokureader/internal/modules/library/domain"
	libraryout "dokureader/internal/modules/library/port/out"
)

// LegacyFileName is the state file of the original desktop application, relative to the home directory.
const LegacyFileName = ".dokubibliothek_state.json"

type LegacyStateFile struct{}

func NewLegacyStateFile() libraryout.LegacyStateReader {
	return LegacyStateFile{}
}

func (LegacyStateFile) Read(_ context.Context, path string) (domain.LegacyState, error) {
	payload, err := os.ReadFile(path)
	if err != nil {
		return domain.LegacyState{}, fmt.Errorf("read legacy state: %w", err)
	}
	state := domain.LegacyState{}
	if err := json.Unmarshal(payload, &state); err != nil {
		return domain.LegacyState{}, fmt.Errorf("decode legacy state: %w", err)
	}
	return state, nil
}
