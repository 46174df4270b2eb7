// Package lifecycle coordinates startup and shutdown across application systems.
// Systems register startup work and shutdown watchers; the coordinator owns the
// root context that signals shutdown.
package lifecycle

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"
)

// ReadinessChecker reports whether startup has completed, for health
// endpoints that should not depend on the full coordinator.
type ReadinessChecker interface {
	Ready() bool
}

// Coordinator tracks registered startup and shutdown functions and owns the
// application root context.
type Coordinator struct {
	ctx    context.Context
	cancel context.CancelFunc

	mu      sync.Mutex
	startup []func()

	shutdown sync.WaitGroup
	ready    atomic.Bool
}

// New creates a coordinator with a fresh root context.
func New() *Coordinator {
	ctx, cancel := context.WithCancel(context.Background())
	return &Coordinator{
		ctx:    ctx,
		cancel: cancel,
	}
}

// Context returns the root context, cancelled when Shutdown is called.
func (c *Coordinator) Context() context.Context {
	return c.ctx
}

// Ready reports whether startup has completed.
func (c *Coordinator) Ready() bool {
	return c.ready.Load()
}

// OnStartup registers a function to run during WaitForStartup.
// Functions registered after startup has completed run immediately.
func (c *Coordinator) OnStartup(fn func()) {
	if c.ready.Load() {
		fn()
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.startup = append(c.startup, fn)
}

// OnShutdown runs the function in its own goroutine and tracks it until it
// returns. Shutdown functions typically block on Context().Done() before
// performing their teardown.
func (c *Coordinator) OnShutdown(fn func()) {
	c.shutdown.Go(fn)
}

// WaitForStartup runs all registered startup functions in registration order
// and marks the coordinator ready.
func (c *Coordinator) WaitForStartup() {
	c.mu.Lock()
	fns := c.startup
	c.startup = nil
	c.mu.Unlock()

	for _, fn := range fns {
		fn()
	}

	c.ready.Store(true)
}

// Shutdown cancels the root context and waits up to timeout for all shutdown
// functions to complete.
func (c *Coordinator) Shutdown(timeout time.Duration) error {
	c.cancel()

	done := make(chan struct{})
	go func() {
		c.shutdown.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-time.After(timeout):
		return fmt.Errorf("shutdown timed out after %s", timeout)
	}
}
