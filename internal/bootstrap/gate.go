package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/at-ishikawa/studyflow/internal/database"
)

var (
	// ErrStorageUnavailable is returned by Wait when storage setup failed
	// or the gate was closed.
	ErrStorageUnavailable = errors.New("storage unavailable")
	ErrGateClosed         = errors.New("storage gate closed")
)

// State is the lifecycle state of a StorageGate.
type State string

const (
	StateStarting State = "starting"
	StateReady    State = "ready"
	StateFailed   State = "failed"
	StateClosed   State = "closed"
)

// StorageGate tracks a storage setup running in the background and hands
// the handle to callers once it is ready.
type StorageGate struct {
	once   sync.Once
	done   chan struct{}
	mu     sync.RWMutex
	state  State
	handle *database.Handle
	err    error
	closed bool
}

// NewStorageGate returns a gate in the starting state.
func NewStorageGate() *StorageGate {
	return &StorageGate{
		done:  make(chan struct{}),
		state: StateStarting,
	}
}

// ReadyGate returns a gate that is already ready with handle.
func ReadyGate(handle *database.Handle) *StorageGate {
	g := NewStorageGate()
	g.once.Do(func() { g.finish(handle, nil) })
	return g
}

// Start runs setup once in its own goroutine. Later calls are no-ops.
// A panic inside setup moves the gate to failed.
func (g *StorageGate) Start(ctx context.Context, setup func(ctx context.Context) (*database.Handle, error)) {
	g.once.Do(func() {
		go func() {
			var (
				handle *database.Handle
				err    error
			)
			defer func() {
				if r := recover(); r != nil {
					err = fmt.Errorf("storage setup panicked: %v", r)
					handle = nil
				}
				g.finish(handle, err)
			}()
			handle, err = setup(ctx)
		}()
	})
}

func (g *StorageGate) finish(handle *database.Handle, err error) {
	g.mu.Lock()
	if g.closed {
		if handle != nil {
			_ = handle.Close()
		}
		g.mu.Unlock()
		close(g.done)
		return
	}
	if err != nil {
		g.state = StateFailed
		g.err = err
		if handle != nil {
			_ = handle.Close()
		}
	} else {
		g.state = StateReady
		g.handle = handle
	}
	g.mu.Unlock()
	close(g.done)

	if err != nil {
		slog.Error("storage setup failed", "error", err)
	}
}

// Wait blocks until setup finished or ctx is done. A failed setup returns
// an error wrapping both ErrStorageUnavailable and the setup error.
func (g *StorageGate) Wait(ctx context.Context) (*database.Handle, error) {
	select {
	case <-g.done:
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	g.mu.RLock()
	defer g.mu.RUnlock()
	if g.err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStorageUnavailable, g.err)
	}
	return g.handle, nil
}

func (g *StorageGate) State() State {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.state
}

// Err returns the setup error once the gate has failed.
func (g *StorageGate) Err() error {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.err
}

// Close releases the handle. It does not wait for a setup still in
// progress; a handle produced after Close is closed on arrival. Closing a
// gate that was never started releases its waiters and disables Start.
func (g *StorageGate) Close(ctx context.Context) error {
	g.mu.Lock()
	if g.closed {
		g.mu.Unlock()
		return nil
	}
	g.closed = true
	g.state = StateClosed
	if g.err == nil {
		g.err = ErrGateClosed
	}
	handle := g.handle
	g.handle = nil
	g.mu.Unlock()

	g.once.Do(func() { close(g.done) })
	return handle.Close()
}
