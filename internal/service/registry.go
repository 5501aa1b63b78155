package service

import (
	"fmt"
	"sync"
)

// Registry holds the resources the console exposes, in registration order.
type Registry struct {
	mu     sync.RWMutex
	byName map[string]Resource
	order  []string
}

// NewRegistry creates a registry holding resources.
func NewRegistry(resources ...Resource) *Registry {
	r := &Registry{byName: make(map[string]Resource)}
	for _, res := range resources {
		r.MustRegister(res)
	}
	return r
}

// Register adds res. Names must be unique.
func (r *Registry) Register(res Resource) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if res == nil || res.Name() == "" {
		return fmt.Errorf("resource needs a name")
	}
	if _, dup := r.byName[res.Name()]; dup {
		return fmt.Errorf("resource %q already registered", res.Name())
	}
	r.byName[res.Name()] = res
	r.order = append(r.order, res.Name())
	return nil
}

// MustRegister is Register that panics on error.
func (r *Registry) MustRegister(res Resource) {
	if err := r.Register(res); err != nil {
		panic(err)
	}
}

// Get returns the resource registered under name.
func (r *Registry) Get(name string) (Resource, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	res, ok := r.byName[name]
	return res, ok
}

// All returns every resource in registration order.
func (r *Registry) All() []Resource {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Resource, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.byName[name])
	}
	return out
}
