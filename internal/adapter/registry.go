package adapter

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrUnknownAdapter is returned by Lookup for names that were never registered.
	ErrUnknownAdapter = errors.New("unknown adapter")
	// ErrDuplicateAdapter is returned when two adapters share a name.
	ErrDuplicateAdapter = errors.New("duplicate adapter")
)

// Registry is the ordered set of adapters a run covers. It is built once at
// startup and not modified afterwards.
type Registry struct {
	adapters []Adapter
	byName   map[string]Adapter
}

// NewRegistry registers the given adapters in order.
func NewRegistry(adapters ...Adapter) (*Registry, error) {
	r := &Registry{byName: make(map[string]Adapter, len(adapters))}
	for _, a := range adapters {
		if err := r.Register(a); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Register appends an adapter.
func (r *Registry) Register(a Adapter) error {
	if a == nil {
		return fmt.Errorf("register adapter: nil adapter")
	}
	name := strings.TrimSpace(a.Name())
	if name == "" {
		return fmt.Errorf("register adapter: name is required")
	}
	if _, exists := r.byName[name]; exists {
		return fmt.Errorf("register adapter %q: %w", name, ErrDuplicateAdapter)
	}
	r.byName[name] = a
	r.adapters = append(r.adapters, a)
	return nil
}

// Lookup finds an adapter by name.
func (r *Registry) Lookup(name string) (Adapter, error) {
	a, ok := r.byName[strings.TrimSpace(name)]
	if !ok {
		return nil, fmt.Errorf("lookup %q: %w", name, ErrUnknownAdapter)
	}
	return a, nil
}

// All returns the adapters in registration order.
func (r *Registry) All() []Adapter {
	out := make([]Adapter, len(r.adapters))
	copy(out, r.adapters)
	return out
}

// Names returns adapter names in registration order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.adapters))
	for _, a := range r.adapters {
		names = append(names, a.Name())
	}
	return names
}

// Len reports how many adapters are registered.
func (r *Registry) Len() int {
	return len(r.adapters)
}
