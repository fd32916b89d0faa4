package out

import (
	"context"

	"dokureader/internal/modules/convert/domain"
)

// Backend is one conversion strategy. Open probes availability at call time
// and fails with an error wrapping domain.ErrToolUnavailable when the
// underlying tool is missing.
type Backend interface {
	Name() string
	Supports(kind domain.Kind) bool
	Open(ctx context.Context) (Converter, error)
}

// Converter is a backend handle scoped to one run.
type Converter interface {
	Convert(ctx context.Context, path string) ([]byte, error)
	Close() error
}

// Source yields the backends it contributes when a run starts.
type Source interface {
	Backends(ctx context.Context) ([]Backend, error)
}
