// Package cache provides the caching layer for data-provider lookups.
//
// Leaf extensions consult external data sources (transcription
// dictionaries, frequency tables) that may live behind files, MongoDB,
// or HTTP. The cache keeps those lookups cheap and repeatable across
// pipeline runs.
//
// Backends implement the Cache interface: FileCache for CLI usage,
// RedisCache for the annotation server, MemoryCache for tests and
// short-lived processes, and NullCache to disable caching entirely.
// Keyers generate namespaced keys; ScopedKeyer adds a prefix for
// multi-tenant isolation.
package cache

import (
	"context"
	"time"
)

// TTL defaults per cached object class.
const (
	// TTLProvider is how long provider lookup results are cached.
	// Dictionary data changes rarely, so a day is conservative.
	TTLProvider = 24 * time.Hour

	// TTLDocument is how long annotated documents are cached by the
	// server for repeated identical requests.
	TTLDocument = time.Hour
)

// Cache stores opaque byte values under string keys with a TTL.
// Implementations must be safe for concurrent use.
type Cache interface {
	// Get retrieves a value. The second return is false on a miss.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a value. A ttl of zero means no expiration.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes a value. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// Keyer generates cache keys for the object classes the engine caches.
type Keyer interface {
	// ProviderKey keys one provider lookup: provider name plus input.
	ProviderKey(provider, input string) string

	// DocumentKey keys an annotation run: document hash plus the
	// options that affect the output.
	DocumentKey(docHash string, opts DocumentKeyOpts) string
}

// DocumentKeyOpts are the run options that change annotation output.
type DocumentKeyOpts struct {
	Policy     string   `json:"policy"`
	Extensions []string `json:"extensions"`
}

// DefaultKeyer generates hashed, namespaced keys.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the standard keyer.
func NewDefaultKeyer() Keyer { return &DefaultKeyer{} }

// ProviderKey generates a key for one provider lookup.
func (k *DefaultKeyer) ProviderKey(provider, input string) string {
	return hashKey("provider", provider, input)
}

// DocumentKey generates a key for one annotation run.
func (k *DefaultKeyer) DocumentKey(docHash string, opts DocumentKeyOpts) string {
	return hashKey("document", docHash, opts)
}
