// Package provider defines the data-provider surface leaf extensions
// rely on: transcription dictionaries, frequency tables, and similar
// lookup sources.
//
// Providers return "absent" (found == false) for entries they do not
// know, reserving errors for genuine failures such as a broken
// connection. This keeps not-found cheap for enhancers, which simply
// skip words the provider cannot annotate.
//
// Implementations in this package: StaticDict (map-backed, loadable
// from a JSON file or an http(s) URL), MongoDict (MongoDB collection),
// and Cached (a decorator that adds a cache.Cache in front of any
// provider).
package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
)

// Provider answers lookups for one kind of linguistic data.
// Implementations must be safe for concurrent use: one extension's
// enhancer pass may dispatch node lookups concurrently.
type Provider interface {
	// Name returns the provider identifier (e.g. "ipa-dict").
	Name() string

	// GetData looks up input (usually a word's surface form). found is
	// false when the provider has no entry; err is reserved for genuine
	// failures.
	GetData(ctx context.Context, input string) (data map[string]any, found bool, err error)
}

// BatchProvider is an optional interface for providers that can answer
// several lookups in one round trip.
type BatchProvider interface {
	Provider

	// GetBatch looks up every input. Absent entries are simply missing
	// from the result map.
	GetBatch(ctx context.Context, inputs []string) (map[string]map[string]any, error)
}

// Keyed is an optional interface for providers whose inputs need
// normalization before they are usable as cache keys.
type Keyed interface {
	// CacheKey maps an input to its canonical cache key.
	CacheKey(input string) string
}

// GetBatch answers a batch lookup through p, using BatchProvider when
// implemented and falling back to sequential GetData calls otherwise.
func GetBatch(ctx context.Context, p Provider, inputs []string) (map[string]map[string]any, error) {
	if bp, ok := p.(BatchProvider); ok {
		return bp.GetBatch(ctx, inputs)
	}
	out := make(map[string]map[string]any, len(inputs))
	for _, input := range inputs {
		data, found, err := p.GetData(ctx, input)
		if err != nil {
			return nil, err
		}
		if found {
			out[input] = data
		}
	}
	return out, nil
}

// StaticDict is a map-backed provider. It is the workhorse for tests
// and for dictionaries small enough to load into memory.
type StaticDict struct {
	name    string
	entries map[string]map[string]any
}

// NewStaticDict creates a provider over the given entries. The map is
// used as-is; do not mutate it after construction.
func NewStaticDict(name string, entries map[string]map[string]any) *StaticDict {
	return &StaticDict{name: name, entries: entries}
}

// LoadStaticDict reads a JSON file of the form
// {"word": {"field": value, ...}, ...} into a StaticDict.
func LoadStaticDict(name, path string) (*StaticDict, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read dictionary %s: %w", path, err)
	}
	var entries map[string]map[string]any
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parse dictionary %s: %w", path, err)
	}
	return NewStaticDict(name, entries), nil
}

// Name returns the provider identifier.
func (d *StaticDict) Name() string { return d.name }

// GetData looks up the entry for input.
func (d *StaticDict) GetData(ctx context.Context, input string) (map[string]any, bool, error) {
	entry, ok := d.entries[input]
	if !ok {
		return nil, false, nil
	}
	return entry, true, nil
}

// GetBatch answers several lookups at once.
func (d *StaticDict) GetBatch(ctx context.Context, inputs []string) (map[string]map[string]any, error) {
	out := make(map[string]map[string]any, len(inputs))
	for _, input := range inputs {
		if entry, ok := d.entries[input]; ok {
			out[input] = entry
		}
	}
	return out, nil
}

// Len returns the number of entries.
func (d *StaticDict) Len() int { return len(d.entries) }

var (
	_ Provider      = (*StaticDict)(nil)
	_ BatchProvider = (*StaticDict)(nil)
)
