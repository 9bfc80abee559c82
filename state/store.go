package state

import (
	"slices"
	"sync"

	"github.com/kbukum/widgetkit/errors"
	"github.com/kbukum/widgetkit/ident"
)

const resourceInstance = "instance"

// Reader is read-only access to the Store.
type Reader interface {
	Get(id ident.ID) (Tree, error)
}

// Store maps instance ids to their current Tree.
type Store struct {
	mu    sync.RWMutex
	trees map[ident.ID]Tree
}

// NewStore creates an empty Store.
func NewStore() *Store {
	return &Store{trees: make(map[ident.ID]Tree)}
}

// Get returns the current tree for id, or a NOT_FOUND error.
func (s *Store) Get(id ident.ID) (Tree, error) {
	s.mu.RLock()
	t, ok := s.trees[id]
	s.mu.RUnlock()
	if !ok {
		return Tree{}, errors.NotFound(resourceInstance, id.String())
	}
	return t, nil
}

// Insert stores the first tree for id. It fails with ALREADY_EXISTS when
// the id is taken.
func (s *Store) Insert(id ident.ID, t Tree) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.trees[id]; ok {
		return errors.AlreadyExists(resourceInstance, id.String())
	}
	s.trees[id] = t
	return nil
}

// Set replaces the tree for id.
func (s *Store) Set(id ident.ID, t Tree) {
	s.mu.Lock()
	s.trees[id] = t
	s.mu.Unlock()
}

// Remove deletes id and reports whether it existed.
func (s *Store) Remove(id ident.ID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.trees[id]
	delete(s.trees, id)
	return ok
}

// Has reports whether id is live.
func (s *Store) Has(id ident.ID) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.trees[id]
	return ok
}

// Len returns the number of live instances.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.trees)
}

// IDs returns the live instance ids in sorted order.
func (s *Store) IDs() []ident.ID {
	s.mu.RLock()
	ids := make([]ident.ID, 0, len(s.trees))
	for id := range s.trees {
		ids = append(ids, id)
	}
	s.mu.RUnlock()
	slices.Sort(ids)
	return ids
}

var _ Reader = (*Store)(nil)
