package out

import (
	"context"

	"dokureader/internal/modules/library/domain"
)

type StateStore interface {
	Load(ctx context.Context) (domain.State, error)
	Save(ctx context.Context, state domain.State) error
}

type LegacyStateReader interface {
	Read(ctx context.Context, path string) (domain.LegacyState, error)
}

// DocumentIndex is a search cache derived from the state. Rebuild replaces
// its whole content atomically.
type DocumentIndex interface {
	Rebuild(ctx context.Context, topics []domain.Topic) error
	Search(ctx context.Context, query string, limit int) ([]domain.DocumentHit, error)
}

// FormatChecker reports whether a file can be exported at all.
type FormatChecker interface {
	Supported(path string) bool
}
