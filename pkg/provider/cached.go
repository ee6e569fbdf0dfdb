package provider

import (
	"context"
	"encoding/json"
	"time"

	"github.com/fustilio/glost/pkg/cache"
	"github.com/fustilio/glost/pkg/observability"
)

// Cached decorates a Provider with a cache.Cache. Lookups hit the cache
// first; misses fall through to the wrapped provider and the result
// (including "absent") is written back with the configured TTL.
//
// Absent entries are cached as an explicit marker so a word missing
// from a slow backend is not re-queried on every run.
type Cached struct {
	inner Provider
	cache cache.Cache
	keyer cache.Keyer
	ttl   time.Duration
}

// cachedEntry is the wire format for cached lookups. Found false marks
// a cached "absent" result.
type cachedEntry struct {
	Found bool           `json:"found"`
	Data  map[string]any `json:"data,omitempty"`
}

// NewCached wraps inner with the given cache. A nil cache disables
// caching (NullCache); a nil keyer uses the default; a zero ttl uses
// cache.TTLProvider.
func NewCached(inner Provider, c cache.Cache, keyer cache.Keyer, ttl time.Duration) *Cached {
	if c == nil {
		c = cache.NewNullCache()
	}
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if ttl <= 0 {
		ttl = cache.TTLProvider
	}
	return &Cached{inner: inner, cache: c, keyer: keyer, ttl: ttl}
}

// Name returns the wrapped provider's identifier.
func (p *Cached) Name() string { return p.inner.Name() }

// GetData answers from cache when possible, otherwise from the wrapped
// provider. Cache failures are treated as misses; a broken cache must
// not break lookups.
func (p *Cached) GetData(ctx context.Context, input string) (map[string]any, bool, error) {
	key := p.keyer.ProviderKey(p.inner.Name(), p.cacheInput(input))

	if raw, hit, err := p.cache.Get(ctx, key); err == nil && hit {
		var entry cachedEntry
		if err := json.Unmarshal(raw, &entry); err == nil {
			observability.Cache().OnCacheHit(ctx, "provider")
			return entry.Data, entry.Found, nil
		}
	}
	observability.Cache().OnCacheMiss(ctx, "provider")

	start := time.Now()
	data, found, err := p.inner.GetData(ctx, input)
	if err != nil {
		observability.Provider().OnLookupError(ctx, p.inner.Name(), input, err)
		return nil, false, err
	}
	observability.Provider().OnLookup(ctx, p.inner.Name(), input, found, time.Since(start))

	if raw, err := json.Marshal(cachedEntry{Found: found, Data: data}); err == nil {
		if err := p.cache.Set(ctx, key, raw, p.ttl); err == nil {
			observability.Cache().OnCacheSet(ctx, "provider", len(raw))
		}
	}
	return data, found, nil
}

// cacheInput normalizes the input through the wrapped provider's Keyed
// interface when implemented.
func (p *Cached) cacheInput(input string) string {
	if k, ok := p.inner.(Keyed); ok {
		return k.CacheKey(input)
	}
	return input
}

// Ensure Cached implements Provider.
var _ Provider = (*Cached)(nil)
