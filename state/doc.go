// Package state holds the per-instance State Tree and the Store that keys
// trees by instance id.
//
// A Tree is a value. Every mutation produces a new Tree derived from the
// previous one; nothing reachable from a stored Tree can be changed in
// place. Screen-owned regions live in an immutable Regions map whose
// contents the engine never interprets.
//
// Store is the only shared resource of the engine. Reads and writes are
// atomic with respect to each other, so no caller ever observes a partially
// written tree.
package state
