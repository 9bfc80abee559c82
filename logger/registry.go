package logger

import (
	"slices"
	"sync"
)

// Component loggers, keyed by name. Get derives and caches a logger from
// the global one on first use; Register pins an explicit one.
var components = struct {
	sync.RWMutex
	byName map[string]*Logger
	pinned map[string]bool
}{
	byName: make(map[string]*Logger),
	pinned: make(map[string]bool),
}

// Register pins l as the logger for component name.
func Register(name string, l *Logger) {
	components.Lock()
	defer components.Unlock()
	components.byName[name] = l
	components.pinned[name] = true
}

// Get returns the logger for component name.
func Get(name string) *Logger {
	components.RLock()
	l, ok := components.byName[name]
	components.RUnlock()
	if ok {
		return l
	}

	components.Lock()
	defer components.Unlock()
	if l, ok := components.byName[name]; ok {
		return l
	}
	l = GetGlobalLogger().WithComponent(name)
	components.byName[name] = l
	return l
}

// Components lists the component names handed out so far.
func Components() []string {
	components.RLock()
	defer components.RUnlock()
	names := make([]string, 0, len(components.byName))
	for n := range components.byName {
		names = append(names, n)
	}
	slices.Sort(names)
	return names
}

// resetDerived drops cached loggers that were not registered explicitly,
// so they pick up a new global logger.
func resetDerived() {
	components.Lock()
	defer components.Unlock()
	for n := range components.byName {
		if !components.pinned[n] {
			delete(components.byName, n)
		}
	}
}
