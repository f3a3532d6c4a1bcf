// SPDX-License-Identifier: MPL-2.0

package serverbase

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
)

type (
	// Base is embedded by servers for lifecycle bookkeeping. A Base is
	// single-use: once stopped or failed, a new server must be created.
	Base struct {
		state atomic.Int32

		mu      sync.Mutex
		lastErr error

		ctx       context.Context
		cancel    context.CancelFunc
		wg        sync.WaitGroup
		startedCh chan struct{}
		errCh     chan error
	}

	// Option configures a Base.
	Option func(*Base)
)

// WithErrorBuffer sets the capacity of the asynchronous error channel.
func WithErrorBuffer(size int) Option {
	return func(b *Base) {
		b.errCh = make(chan error, size)
	}
}

// NewBase creates a Base in StateCreated.
func NewBase(opts ...Option) *Base {
	b := &Base{
		startedCh: make(chan struct{}),
		errCh:     make(chan error, 1),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// State returns the current state.
func (b *Base) State() State { return State(b.state.Load()) }

// IsRunning reports whether the server is in StateRunning.
func (b *Base) IsRunning() bool { return b.State() == StateRunning }

// Err delivers asynchronous serving errors. It is closed once the server
// has stopped.
func (b *Base) Err() <-chan error { return b.errCh }

// LastError returns the error that moved the server to StateFailed.
func (b *Base) LastError() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.lastErr
}

// Context is cancelled when the server stops or fails. It is nil before
// TransitionToStarting succeeds.
func (b *Base) Context() context.Context {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.ctx
}

// StartedChannel is closed when the server reaches StateRunning.
func (b *Base) StartedChannel() <-chan struct{} { return b.startedCh }

// TransitionToStarting moves created -> starting. An already cancelled ctx
// fails the server instead, before any resource is acquired.
func (b *Base) TransitionToStarting(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		err = fmt.Errorf("context cancelled before start: %w", err)
		b.TransitionToFailed(err)
		return err
	}
	if !b.state.CompareAndSwap(int32(StateCreated), int32(StateStarting)) {
		return fmt.Errorf("cannot start server in state %s", b.State())
	}

	b.mu.Lock()
	b.ctx, b.cancel = context.WithCancel(context.Background())
	b.mu.Unlock()
	return nil
}

// TransitionToRunning moves starting -> running and signals readiness.
func (b *Base) TransitionToRunning() {
	if b.state.CompareAndSwap(int32(StateStarting), int32(StateRunning)) {
		close(b.startedCh)
	}
}

// TransitionToFailed records err and moves to the failed state.
func (b *Base) TransitionToFailed(err error) {
	b.mu.Lock()
	b.lastErr = err
	cancel := b.cancel
	b.mu.Unlock()

	b.state.Store(int32(StateFailed))
	if cancel != nil {
		cancel()
	}
	b.SendError(err)
}

// TransitionToStopping moves starting or running -> stopping and cancels
// Context. It returns false when there is nothing to stop; a server that
// was never started goes straight to stopped.
func (b *Base) TransitionToStopping() bool {
	for {
		cur := b.State()
		switch cur {
		case StateCreated:
			if b.state.CompareAndSwap(int32(StateCreated), int32(StateStopped)) {
				return false
			}
		case StateStarting, StateRunning:
			if b.state.CompareAndSwap(int32(cur), int32(StateStopping)) {
				b.mu.Lock()
				cancel := b.cancel
				b.mu.Unlock()
				if cancel != nil {
					cancel()
				}
				return true
			}
		default:
			return false
		}
	}
}

// TransitionToStopped marks shutdown as complete.
func (b *Base) TransitionToStopped() { b.state.Store(int32(StateStopped)) }

// WaitForReady blocks until running or until ctx is done.
func (b *Base) WaitForReady(ctx context.Context) error {
	select {
	case <-b.startedCh:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("waiting for server ready: %w", ctx.Err())
	}
}

// AddGoroutine registers a background goroutine; the goroutine must defer
// DoneGoroutine.
func (b *Base) AddGoroutine() { b.wg.Add(1) }

// DoneGoroutine marks a background goroutine as finished.
func (b *Base) DoneGoroutine() { b.wg.Done() }

// WaitForShutdown blocks until every registered goroutine has returned.
func (b *Base) WaitForShutdown() { b.wg.Wait() }

// SendError reports err without blocking; it is dropped when the channel
// is full.
func (b *Base) SendError(err error) {
	select {
	case b.errCh <- err:
	default:
	}
}

// CloseErrChannel closes Err. Call it once, after TransitionToStopped.
func (b *Base) CloseErrChannel() { close(b.errCh) }
