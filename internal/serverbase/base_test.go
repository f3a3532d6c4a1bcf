// SPDX-License-Identifier: MPL-2.0

package serverbase

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

func TestLifecycle_HappyPath(t *testing.T) {
	t.Parallel()

	b := NewBase()
	if b.State() != StateCreated {
		t.Fatalf("initial state = %s", b.State())
	}
	if b.Context() != nil {
		t.Error("Context should be nil before start")
	}

	if err := b.TransitionToStarting(context.Background()); err != nil {
		t.Fatalf("TransitionToStarting() error = %v", err)
	}
	if b.State() != StateStarting {
		t.Errorf("state = %s, want starting", b.State())
	}

	b.TransitionToRunning()
	if !b.IsRunning() {
		t.Errorf("state = %s, want running", b.State())
	}
	select {
	case <-b.StartedChannel():
	default:
		t.Error("started channel should be closed")
	}

	if !b.TransitionToStopping() {
		t.Fatal("TransitionToStopping() = false")
	}
	select {
	case <-b.Context().Done():
	default:
		t.Error("context should be cancelled once stopping")
	}

	b.TransitionToStopped()
	b.CloseErrChannel()
	if b.State() != StateStopped {
		t.Errorf("state = %s, want stopped", b.State())
	}
	if _, open := <-b.Err(); open {
		t.Error("error channel should be closed")
	}
}

func TestLifecycle_Failure(t *testing.T) {
	t.Parallel()

	b := NewBase()
	if err := b.TransitionToStarting(context.Background()); err != nil {
		t.Fatal(err)
	}
	boom := errors.New("bind failed")
	b.TransitionToFailed(boom)

	if b.State() != StateFailed || !errors.Is(b.LastError(), boom) {
		t.Errorf("state = %s, lastErr = %v", b.State(), b.LastError())
	}
	select {
	case err := <-b.Err():
		if !errors.Is(err, boom) {
			t.Errorf("Err() delivered %v", err)
		}
	default:
		t.Error("expected error on Err()")
	}
	if b.TransitionToStopping() {
		t.Error("stopping a failed server should be a no-op")
	}
}

func TestLifecycle_CancelledContext(t *testing.T) {
	t.Parallel()

	b := NewBase()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := b.TransitionToStarting(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("error = %v, want context.Canceled", err)
	}
	if b.State() != StateFailed {
		t.Errorf("state = %s, want failed", b.State())
	}
}

func TestLifecycle_Idempotency(t *testing.T) {
	t.Parallel()

	t.Run("double start", func(t *testing.T) {
		t.Parallel()
		b := NewBase()
		_ = b.TransitionToStarting(context.Background())
		if err := b.TransitionToStarting(context.Background()); err == nil {
			t.Error("second start should fail")
		}
	})

	t.Run("stop without start", func(t *testing.T) {
		t.Parallel()
		b := NewBase()
		if b.TransitionToStopping() {
			t.Error("nothing to stop")
		}
		if b.State() != StateStopped {
			t.Errorf("state = %s, want stopped", b.State())
		}
	})

	t.Run("concurrent stop", func(t *testing.T) {
		t.Parallel()
		b := NewBase()
		_ = b.TransitionToStarting(context.Background())
		b.TransitionToRunning()

		var (
			wg   sync.WaitGroup
			mu   sync.Mutex
			wins int
		)
		for range 10 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if b.TransitionToStopping() {
					mu.Lock()
					wins++
					mu.Unlock()
				}
			}()
		}
		wg.Wait()
		if wins != 1 {
			t.Errorf("%d callers won the stop transition, want 1", wins)
		}
	})
}

func TestWaitForReady_Timeout(t *testing.T) {
	t.Parallel()

	b := NewBase()
	_ = b.TransitionToStarting(context.Background())
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	if err := b.WaitForReady(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("WaitForReady() = %v, want deadline exceeded", err)
	}
}

func TestGoroutineTracking(t *testing.T) {
	t.Parallel()

	b := NewBase(WithErrorBuffer(4))
	var count int
	var mu sync.Mutex
	for range 5 {
		b.AddGoroutine()
		go func() {
			defer b.DoneGoroutine()
			mu.Lock()
			count++
			mu.Unlock()
		}()
	}
	b.WaitForShutdown()
	if count != 5 {
		t.Errorf("count = %d, want 5", count)
	}

	for range 6 {
		b.SendError(errors.New("x"))
	}
	if got := len(b.Err()); got != 4 {
		t.Errorf("buffered errors = %d, want 4", got)
	}
}

func TestState_Validate(t *testing.T) {
	t.Parallel()

	for s := StateCreated; s <= StateFailed; s++ {
		if err := s.Validate(); err != nil {
			t.Errorf("State(%d).Validate() = %v", s, err)
		}
	}
	for _, s := range []State{-1, 99} {
		if err := s.Validate(); !errors.Is(err, ErrInvalidState) {
			t.Errorf("State(%d).Validate() = %v, want ErrInvalidState", s, err)
		}
		if s.String() != "unknown" {
			t.Errorf("State(%d).String() = %q", s, s.String())
		}
	}
	if !StateStopped.IsTerminal() || !StateFailed.IsTerminal() || StateRunning.IsTerminal() {
		t.Error("IsTerminal mismatch")
	}
}
