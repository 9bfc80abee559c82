package provider

import (
	"maps"
	"slices"
)

// Factory builds a variant from provider-specific params.
type Factory[P, V any] func(params P) V

// Entry binds a provider identifier to its factory.
type Entry[P, V any] struct {
	ID      string
	Factory Factory[P, V]
}

// Registry is an immutable dispatch table from provider identifier to
// factory, with an explicit default arm.
type Registry[P, V any] struct {
	factories map[string]Factory[P, V]
	fallback  Factory[P, V]
}

// NewRegistry creates a Registry. Later entries with a duplicate ID replace
// earlier ones; entries with an empty ID or nil factory are ignored.
func NewRegistry[P, V any](fallback Factory[P, V], entries ...Entry[P, V]) *Registry[P, V] {
	r := &Registry[P, V]{
		factories: make(map[string]Factory[P, V], len(entries)),
		fallback:  fallback,
	}
	for _, e := range entries {
		if e.ID == "" || e.Factory == nil {
			continue
		}
		r.factories[e.ID] = e.Factory
	}
	return r
}

// Select builds the variant registered under id, or the default variant
// when id is empty or unknown.
func (r *Registry[P, V]) Select(id string, params P) V {
	if f, ok := r.factories[id]; ok {
		return f(params)
	}
	var zero P
	return r.fallback(zero)
}

// Has reports whether id names a registered (non-default) provider.
func (r *Registry[P, V]) Has(id string) bool {
	_, ok := r.factories[id]
	return ok
}

// IDs returns the registered provider identifiers, sorted.
func (r *Registry[P, V]) IDs() []string {
	return slices.Sorted(maps.Keys(r.factories))
}
