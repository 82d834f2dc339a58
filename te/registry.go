package te

import (
	"fmt"
	"sync"
)

// registry is a name-keyed, concurrency-safe lookup table for named
// expressions, adapted from the teacher's tools/registry.go dispatch
// table (same sync.RWMutex-guarded global map shape, repurposed here
// from tool-by-name dispatch to temporal-expression-by-name lookup, so
// assertions built once at startup can be referenced by name from
// multiple call sites instead of re-threaded through every caller).
type registry struct {
	mu    sync.RWMutex
	exprs map[string]Expr
}

var defaultRegistry = &registry{exprs: make(map[string]Expr)}

// Register adds expr under name to the default registry. It returns
// ErrDuplicateName if name is already registered.
func Register(name string, expr Expr) error {
	return defaultRegistry.register(name, expr)
}

// Lookup returns the expression registered under name, if any.
func Lookup(name string) (Expr, bool) {
	return defaultRegistry.lookup(name)
}

// Unregister removes name from the default registry; a no-op if absent.
func Unregister(name string) {
	defaultRegistry.unregister(name)
}

func (r *registry) register(name string, expr Expr) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.exprs[name]; exists {
		return fmt.Errorf("te: %w: %s", ErrDuplicateName, name)
	}
	r.exprs[name] = expr
	return nil
}

func (r *registry) lookup(name string) (Expr, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.exprs[name]
	return e, ok
}

func (r *registry) unregister(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.exprs, name)
}
