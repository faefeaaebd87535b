// Package keystore defines the interface for per-service secret storage used
// by the totp tool.
package keystore

import "errors"

// ErrNotFound is reported when a service has no stored secret.
var ErrNotFound = errors.New("service not found")

// A Store maps service names to Base32-encoded TOTP secrets.  A service name
// maps to at most one secret at a time.
type Store interface {
	// Set stores the secret for the named service, replacing any existing
	// value.
	Set(service, secret string) error

	// Get returns the secret stored for the named service.  It reports
	// ErrNotFound if no secret is stored.
	Get(service string) (string, error)

	// Delete removes the secret stored for the named service.  It reports
	// ErrNotFound if no secret is stored.
	Delete(service string) error

	// List returns the names of the configured services in lexicographic
	// order.
	List() ([]string, error)
}
