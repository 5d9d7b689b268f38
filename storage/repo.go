package storage

import "errors"

// ErrNotFound is returned by Get when the key has never been set or was deleted
var ErrNotFound = errors.New("storage: key not found")

// Keys holding a persisted session. Every component that needs the credential reads it through
// the session store, so these are the only two keys in use.
const (
	KeyCredential = "access_token" // Serialised token.Credential
	KeyIdentity   = "user"         // Serialised users.Identity
)

// Repo is the durable key-value capability the session store persists to.
// Values are strings; calls are synchronous from the caller's point of view.
type Repo interface {
	// Get returns the value for key or ErrNotFound
	Get(key string) (string, error)

	// Set creates or overwrites key
	Set(key, value string) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(key string) error
}
