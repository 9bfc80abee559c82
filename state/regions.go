package state

import (
	"maps"
	"slices"
)

// Regions is an immutable string-keyed map of screen-owned state.
// The zero value is an empty map ready for use.
type Regions struct {
	m map[string]any
}

// Get returns the value stored under key.
func (r Regions) Get(key string) (any, bool) {
	v, ok := r.m[key]
	return v, ok
}

// With returns a copy of r with key set to v.
func (r Regions) With(key string, v any) Regions {
	next := make(map[string]any, len(r.m)+1)
	maps.Copy(next, r.m)
	next[key] = v
	return Regions{m: next}
}

// Without returns a copy of r with key removed.
func (r Regions) Without(key string) Regions {
	if _, ok := r.m[key]; !ok {
		return r
	}
	next := maps.Clone(r.m)
	delete(next, key)
	return Regions{m: next}
}

// Keys returns the sorted region keys.
func (r Regions) Keys() []string {
	return slices.Sorted(maps.Keys(r.m))
}

// Len returns the number of regions.
func (r Regions) Len() int { return len(r.m) }
