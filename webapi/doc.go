// Package webapi is the network collaborator a widget delegates its
// authentication-server calls to: fetching the user profile, parsing the
// redirect hash and building the logout URL.
//
// API is the seam hosts replace; Client is the reference implementation
// over the tenant's HTTP endpoints.
package webapi
