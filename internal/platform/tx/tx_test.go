package tx_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"dokureader/internal/platform/tx"
)

func TestMutexManagerSerialises(t *testing.T) {
	t.Parallel()
	m := tx.NewMutexManager()
	counter := 0
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = m.Within(context.Background(), func(context.Context) error {
				v := counter
				counter = v + 1
				return nil
			})
		}()
	}
	wg.Wait()
	if counter != 50 {
		t.Fatalf("expected 50 increments, got %d", counter)
	}
}

func TestMutexManagerHonoursCancellation(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	called := false
	err := tx.NewMutexManager().Within(ctx, func(context.Context) error {
		called = true
		return nil
	})
	if !errors.Is(err, context.Canceled) || called {
		t.Fatalf("expected cancellation before fn, got err=%v called=%t", err, called)
	}
}
