// Package builtins implements the engine's built-in function
// registry: name-keyed Callables with arity checked at compile time
// (by the compiler) and call time (by the VM).
package builtins

import (
	"fmt"
	"sync"
	"time"

	"github.com/exprflow/exprflow/value"
)

// Callable is one built-in function: a fixed arity and an
// implementation over already-evaluated argument Values.
type Callable interface {
	Name() string
	Arity() int
	Call(args []value.Value) (value.Value, error)
}

// Registry holds all registered builtins with collision detection,
// mutex-guarded the way core/decorators/registry.go guards its own
// maps, even though this engine's single-threaded execution model
// (spec.md §5) never actually calls it concurrently — a Registry may
// still be shared (read-only) across threads, same as a Chunk.
type Registry struct {
	mu        sync.RWMutex
	callables map[string]Callable
}

// NewRegistry returns a Registry pre-populated with clock and abs.
func NewRegistry() *Registry {
	r := &Registry{callables: make(map[string]Callable)}
	r.mustRegister(clockFn{})
	r.mustRegister(absFn{})
	return r
}

// Register adds a Callable, returning an error on a name collision.
func (r *Registry) Register(c Callable) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.callables[c.Name()]; exists {
		return fmt.Errorf("builtin %q already registered", c.Name())
	}
	r.callables[c.Name()] = c
	return nil
}

func (r *Registry) mustRegister(c Callable) {
	if err := r.Register(c); err != nil {
		panic(err)
	}
}

// Get returns the named Callable, or false if unregistered.
func (r *Registry) Get(name string) (Callable, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.callables[name]
	return c, ok
}

// Names returns every registered builtin name, used by the parser to
// rank "did you mean" suggestions for unknown callees.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.callables))
	for n := range r.callables {
		names = append(names, n)
	}
	return names
}

// clockFn returns seconds since the Unix epoch (spec.md §4.8).
type clockFn struct{}

func (clockFn) Name() string  { return "clock" }
func (clockFn) Arity() int    { return 0 }
func (clockFn) Call(args []value.Value) (value.Value, error) {
	return value.NewDouble(float64(time.Now().UnixNano()) / 1e9), nil
}

// absFn returns the absolute value, preserving the operand's numeric
// variant (spec.md §4.8).
type absFn struct{}

func (absFn) Name() string { return "abs" }
func (absFn) Arity() int   { return 1 }
func (absFn) Call(args []value.Value) (value.Value, error) {
	v := args[0]
	switch {
	case v.IsInteger():
		i := v.AsInteger()
		if i < 0 {
			i = -i
		}
		return value.NewInt(i), nil
	case v.IsDouble():
		d := v.AsDouble()
		if d < 0 {
			d = -d
		}
		return value.NewDouble(d), nil
	default:
		return value.NullValue, nil
	}
}
