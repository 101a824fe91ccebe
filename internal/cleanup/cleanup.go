// Package cleanup collects shutdown hooks, such as closing the log file,
// that must run after the command returns.
package cleanup

import (
	"errors"
	"fmt"
	"sync"
)

type hook struct {
	name string
	fn   func() error
}

var (
	mu    sync.Mutex
	hooks []hook
)

// Register adds a named hook. Hooks run in LIFO order.
func Register(name string, fn func() error) {
	if fn == nil {
		return
	}
	mu.Lock()
	hooks = append(hooks, hook{name: name, fn: fn})
	mu.Unlock()
}

// RunAll runs and clears every registered hook. Failures are joined; one
// failing hook does not stop the rest.
func RunAll() error {
	mu.Lock()
	local := hooks
	hooks = nil
	mu.Unlock()

	var errs []error
	for i := len(local) - 1; i >= 0; i-- {
		if err := local[i].fn(); err != nil {
			errs = append(errs, fmt.Errorf("cleanup %s: %w", local[i].name, err))
		}
	}
	return errors.Join(errs...)
}
