package out

import (
	"context"

	convertout "dokureader/internal/modules/convert/port/out"
)

// Backends is a fixed list of backends usable as a run source.
type Backends []convertout.Backend

func (b Backends) Backends(_ context.Context) ([]convertout.Backend, error) {
	return b, nil
}

// selfConverter lets stateless backends act as their own per-run handle.
type selfConverter struct{}

func (selfConverter) Close() error { return nil }
