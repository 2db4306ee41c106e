package devserver

import (
	"fmt"
	"sync"
)

// LockError is returned when the cell was poisoned by a panicking update.
type LockError struct {
	Cause any
}

func (e *LockError) Error() string {
	return fmt.Sprintf("dev server options poisoned by panic during update: %v", e.Cause)
}

// Snapshot is a copy of the options held by a Cell.
type Snapshot struct {
	Options

	// Degraded is true when the cell is poisoned and Options holds
	// DefaultOptions instead of the live record.
	Degraded bool
}

// Cell holds the Options shared between the supervisor, the relay and the
// proxy handler. All methods are safe for concurrent use.
type Cell struct {
	mu       sync.Mutex
	opts     Options
	poisoned any
	// fallback is DefaultOptions computed once when the cell is poisoned.
	fallback Options
}

// NewCell returns a cell initialised with opts.
func NewCell(opts Options) *Cell {
	return &Cell{opts: opts}
}

// Get returns a copy of the current options. A poisoned cell yields
// DefaultOptions.
func (c *Cell) Get() Options {
	return c.Snapshot().Options
}

// Snapshot returns a copy of the current options, flagged Degraded when the
// cell is poisoned.
func (c *Cell) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.poisoned != nil {
		return Snapshot{Options: c.fallback, Degraded: true}
	}
	return Snapshot{Options: c.opts}
}

// Set replaces the options.
func (c *Cell) Set(opts Options) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.poisoned != nil {
		return &LockError{Cause: c.poisoned}
	}
	c.opts = opts
	return nil
}

// UpdatePort sets the port, leaving the other fields untouched.
func (c *Cell) UpdatePort(port uint16) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.poisoned != nil {
		return &LockError{Cause: c.poisoned}
	}
	c.opts.Port = port
	return nil
}

// Update applies fn to the options under the lock. fn must not block. If fn
// panics the cell is poisoned and a *LockError is returned.
func (c *Cell) Update(fn func(*Options)) (err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.poisoned != nil {
		return &LockError{Cause: c.poisoned}
	}

	next := c.opts
	defer func() {
		if r := recover(); r != nil {
			c.poisoned = r
			c.fallback = DefaultOptions()
			err = &LockError{Cause: r}
		}
	}()

	fn(&next)
	c.opts = next
	return nil
}

// Poisoned reports whether a panicking update poisoned the cell.
func (c *Cell) Poisoned() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.poisoned != nil
}
