package render

import (
	"context"
	"maps"
	"sync"
)

// Mounter is the host's mount primitive.
type Mounter interface {
	Mount(ctx context.Context, containerID string, props Props) error
	Unmount(ctx context.Context, containerID string) error
}

// MemoryMounter keeps the last props mounted in each container. It serves
// headless hosts and tests.
type MemoryMounter struct {
	mu       sync.RWMutex
	mounted  map[string]Props
	mounts   int
	unmounts int
}

// NewMemoryMounter creates an empty MemoryMounter.
func NewMemoryMounter() *MemoryMounter {
	return &MemoryMounter{mounted: make(map[string]Props)}
}

// Mount implements Mounter.
func (m *MemoryMounter) Mount(_ context.Context, containerID string, props Props) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.mounted[containerID] = props
	m.mounts++
	return nil
}

// Unmount implements Mounter.
func (m *MemoryMounter) Unmount(_ context.Context, containerID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.mounted, containerID)
	m.unmounts++
	return nil
}

// Props returns what is mounted in containerID.
func (m *MemoryMounter) Props(containerID string) (Props, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.mounted[containerID]
	return p, ok
}

// Mounted returns a copy of every mounted container.
func (m *MemoryMounter) Mounted() map[string]Props {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return maps.Clone(m.mounted)
}

// Counts returns how many mounts and unmounts have happened.
func (m *MemoryMounter) Counts() (mounts, unmounts int) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.mounts, m.unmounts
}

// Fanout mounts into several mounters in order, stopping at the first
// error.
type Fanout []Mounter

// Mount implements Mounter.
func (f Fanout) Mount(ctx context.Context, containerID string, props Props) error {
	for _, m := range f {
		if err := m.Mount(ctx, containerID, props); err != nil {
			return err
		}
	}
	return nil
}

// Unmount implements Mounter.
func (f Fanout) Unmount(ctx context.Context, containerID string) error {
	for _, m := range f {
		if err := m.Unmount(ctx, containerID); err != nil {
			return err
		}
	}
	return nil
}
