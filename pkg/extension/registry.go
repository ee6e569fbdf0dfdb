package extension

import (
	"github.com/fustilio/glost/pkg/errors"
)

// Registry holds the set of known extensions in registration order.
// Registration order matters: it is the tie-break order the resolver
// preserves for extensions with no dependency relationship.
//
// Registry is not safe for concurrent mutation; register everything at
// startup, then share it freely (Resolve and the read accessors do not
// mutate).
type Registry struct {
	byID  map[string]*Extension
	order []*Extension
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{byID: make(map[string]*Extension)}
}

// Register validates the descriptor and adds it to the registry.
// Returns INVALID_EXTENSION for malformed descriptors or duplicate ids.
func (r *Registry) Register(e *Extension) error {
	if e == nil {
		return errors.New(errors.ErrCodeInvalidExtension, "extension must not be nil")
	}
	if err := e.Validate(); err != nil {
		return err
	}
	if _, exists := r.byID[e.ID]; exists {
		return errors.New(errors.ErrCodeInvalidExtension, "duplicate extension id %q", e.ID)
	}
	r.byID[e.ID] = e
	r.order = append(r.order, e)
	return nil
}

// MustRegister registers the extension and panics on error. Intended
// for built-in extensions wired at startup, where a failure is a
// programming error.
func (r *Registry) MustRegister(e *Extension) {
	if err := r.Register(e); err != nil {
		panic(err)
	}
}

// Get returns the extension with the given id and true, or nil and
// false when not registered.
func (r *Registry) Get(id string) (*Extension, bool) {
	e, ok := r.byID[id]
	return e, ok
}

// Has reports whether an extension with the given id is registered.
func (r *Registry) Has(id string) bool {
	_, ok := r.byID[id]
	return ok
}

// IDs returns all registered ids in registration order.
func (r *Registry) IDs() []string {
	ids := make([]string, len(r.order))
	for i, e := range r.order {
		ids[i] = e.ID
	}
	return ids
}

// All returns all registered extensions in registration order.
// The returned slice is a copy; the descriptors are shared.
func (r *Registry) All() []*Extension {
	out := make([]*Extension, len(r.order))
	copy(out, r.order)
	return out
}

// Len returns the number of registered extensions.
func (r *Registry) Len() int { return len(r.order) }

// selection returns the extensions to run: all of them when only is
// empty, otherwise the named subset in registration order. Unknown ids
// in only are a MISSING_EXTENSION failure.
func (r *Registry) selection(only []string) ([]*Extension, error) {
	if len(only) == 0 {
		return r.All(), nil
	}
	wanted := make(map[string]bool, len(only))
	for _, id := range only {
		if !r.Has(id) {
			return nil, errors.New(errors.ErrCodeMissingExtension, "unknown extension id %q", id)
		}
		wanted[id] = true
	}
	var out []*Extension
	for _, e := range r.order {
		if wanted[e.ID] {
			out = append(out, e)
		}
	}
	return out, nil
}
