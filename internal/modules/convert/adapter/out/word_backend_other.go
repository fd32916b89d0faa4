//go:build !windows

package out

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"dokureader/internal/modules/convert/domain"
	convertout "dokureader/internal/modules/convert/port/out"
)

func newWordBackend(timeout time.Duration) *WordBackend {
	return &WordBackend{timeout: timeout}
}

func (b *WordBackend) Open(_ context.Context) (convertout.Converter, error) {
	return nil, fmt.Errorf("%w: word: automation is not available on %s", domain.ErrToolUnavailable, runtime.GOOS)
}
