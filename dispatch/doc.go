// Package dispatch implements the action dispatcher: the only writer of
// instance state.
//
// Every mutating dispatch reads the current tree, applies a pure
// transform, stores the result and publishes exactly one notification on
// the render channel. Dispatches on the same instance are serialized.
// Events raised while a dispatch is in flight are held until its state
// write and render are complete and are delivered before it returns, so
// event listeners may dispatch again.
package dispatch
