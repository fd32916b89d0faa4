package tx

import (
	"context"
	"sync"
)

// Manager wraps a read-modify-write boundary around the state store.
type Manager interface {
	Within(ctx context.Context, fn func(context.Context) error) error
}

// MutexManager serialises callers within one process.
type MutexManager struct {
	mu sync.Mutex
}

func NewMutexManager() *MutexManager {
	return &MutexManager{}
}

func (m *MutexManager) Within(ctx context.Context, fn func(context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return fn(ctx)
}
