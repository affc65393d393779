// Package store persists small JSON records under string keys.
//
// It stands in for browser local storage: reads fail soft, so a missing key,
// an unreadable row, or a record that no longer decodes are all reported as
// absent rather than as errors.
package store

// Keys used by the session manager and the sign-in form.
const (
	KeyAccounts       = "accounts"
	KeyCurrentSession = "current_session"
	KeyLastEmail      = "last_email"
)

// Store reads and writes JSON-encoded values by key.
type Store interface {
	// Read decodes the value stored at key into dst and reports whether it was present and valid.
	Read(key string, dst any) bool
	// Write encodes value as JSON and stores it at key, replacing any previous value.
	Write(key string, value any) error
	// Remove deletes key. Removing a missing key is not an error.
	Remove(key string) error
}
