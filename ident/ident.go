// Package ident issues process-wide unique widget instance identifiers.
package ident

import (
	"strconv"
	"sync/atomic"

	"github.com/google/uuid"
)

// ID is an opaque widget instance identifier.
type ID string

// String returns the raw token.
func (id ID) String() string { return string(id) }

// Allocator issues unique instance ids. Implementations must be safe for
// concurrent use.
type Allocator interface {
	Next() ID
}

// Sequence allocates monotonically increasing ids with a fixed prefix.
type Sequence struct {
	prefix  string
	counter atomic.Uint64
}

// NewSequence creates a Sequence. The first id is prefix+"1".
func NewSequence(prefix string) *Sequence {
	return &Sequence{prefix: prefix}
}

// Next returns the next id in the sequence.
func (s *Sequence) Next() ID {
	return ID(s.prefix + strconv.FormatUint(s.counter.Add(1), 10))
}

// UUIDAllocator allocates random (version 4) UUID ids.
type UUIDAllocator struct {
	prefix string
}

// NewUUID creates a UUIDAllocator.
func NewUUID(prefix string) *UUIDAllocator {
	return &UUIDAllocator{prefix: prefix}
}

// Next returns a fresh random id.
func (a *UUIDAllocator) Next() ID {
	return ID(a.prefix + uuid.NewString())
}

var (
	_ Allocator = (*Sequence)(nil)
	_ Allocator = (*UUIDAllocator)(nil)
)
