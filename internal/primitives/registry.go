// Package primitives implements the shared primitive registry and the
// compiler from AST to executable closures. The registry is the mechanism
// behind capability expansion: both search engines hold it by reference, so
// a learned program registered here is immediately usable by subsequent
// searches. Names are only ever added, never removed or replaced.
package primitives

import (
	"fmt"
	"sort"
	"sync"

	"eidos/internal/lang"
	"eidos/internal/logging"
)

// Func is an applicable runtime value: a primitive's implementation or a
// closure produced by higher-order primitives like compose and fix.
type Func func(args []lang.Value) (lang.Value, error)

// Primitive is a named, fixed-arity base operation.
type Primitive struct {
	Name  string
	Arity int
	Fn    Func
}

// Registry maps primitive names to their arity and implementation.
// Safe for concurrent readers; writers only append.
type Registry struct {
	mu    sync.RWMutex
	prims map[string]Primitive
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{prims: make(map[string]Primitive)}
}

// NewBaseRegistry returns a registry populated with the fixed base set.
func NewBaseRegistry() *Registry {
	r := NewRegistry()
	installBase(r)
	logging.Registry("base registry initialized: %d primitives", r.Len())
	return r
}

// Register adds a primitive. Duplicate or malformed registrations are
// explicit errors; everything else about the registry is append-only.
func (r *Registry) Register(name string, arity int, fn Func) error {
	if name == "" {
		return fmt.Errorf("register: empty primitive name")
	}
	if arity < 0 {
		return fmt.Errorf("register %q: negative arity %d", name, arity)
	}
	if fn == nil {
		return fmt.Errorf("register %q: nil implementation", name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.prims[name]; exists {
		return fmt.Errorf("register %q: %w", name, ErrDuplicatePrimitive)
	}
	r.prims[name] = Primitive{Name: name, Arity: arity, Fn: fn}
	logging.RegistryDebug("registered primitive %q arity=%d", name, arity)
	return nil
}

// Lookup returns the primitive for name.
func (r *Registry) Lookup(name string) (Primitive, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.prims[name]
	if !ok {
		return Primitive{}, fmt.Errorf("%w: %q", ErrUnknownPrimitive, name)
	}
	return p, nil
}

// ArityOf returns the registered arity of name.
func (r *Registry) ArityOf(name string) (int, error) {
	p, err := r.Lookup(name)
	if err != nil {
		return 0, err
	}
	return p.Arity, nil
}

// Has reports whether name is registered.
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.prims[name]
	return ok
}

// Names returns all registered names in sorted order. Enumeration iterates
// this slice, so candidate order is deterministic.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.prims))
	for name := range r.prims {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of registered primitives.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.prims)
}
