// Package security builds the TLS settings of outbound connections to the
// authentication server, for tenants behind a private CA or mutual TLS.
package security
