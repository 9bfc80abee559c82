// Package render turns an instance's state tree into the property bag the
// host UI mounts.
//
// A Pipeline subscribes to the render channel of one instance. On every
// notification it either removes the widget from its container (when the
// tree is not rendering) or asks the host Engine for the current Screen,
// builds Props from the tree and the screen, and mounts them. Screen
// transitions to "login" and "signUp" raise "signin ready" and
// "signup ready" once per transition.
package render
