package cache

// ScopedKeyer wraps a Keyer with a prefix for multi-tenant isolation.
// The annotation server uses this to give each project or tenant a
// separate cache namespace over one shared Redis.
//
// Example usage:
//
//	// Tenant-specific keys for private dictionaries
//	tenantKeyer := NewScopedKeyer(NewDefaultKeyer(), "tenant:abc123:")
//
//	// Global keys for shared dictionaries
//	globalKeyer := NewDefaultKeyer()
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix.
// The prefix is prepended to all generated keys.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{
		inner:  inner,
		prefix: prefix,
	}
}

// ProviderKey generates a prefixed key for one provider lookup.
func (k *ScopedKeyer) ProviderKey(provider, input string) string {
	return k.prefix + k.inner.ProviderKey(provider, input)
}

// DocumentKey generates a prefixed key for one annotation run.
func (k *ScopedKeyer) DocumentKey(docHash string, opts DocumentKeyOpts) string {
	return k.prefix + k.inner.DocumentKey(docHash, opts)
}
