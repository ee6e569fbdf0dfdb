// Package extension defines the descriptor surface for annotation
// extensions and the registry that orders and checks them.
//
// An extension is a unit of annotation logic with a unique id, declared
// dependencies and data contracts, and up to three behaviors:
//
//   - Transform: receives the whole tree and returns a (possibly new)
//     tree. Only transforms may restructure the tree.
//   - Visitors: a dispatch table from node kind to visitor. Visitors may
//     mutate a node's own fields but must not restructure the tree.
//   - Enhance: invoked per word node; returns a partial annotation map
//     that the engine deep-merges into the node's extras, or a
//     missing-dependency failure when a required prior field is absent.
//
// Descriptors are constructed once and treated as immutable per run.
//
// # Ordering
//
// Registry.Resolve computes a linear execution order in which every
// extension follows all of its in-set dependencies, using depth-first
// search with on-stack marks for cycle detection. Extensions with no
// ordering relationship keep their relative input order.
//
// # Contracts
//
// Provides and Requires declare the field names an extension writes and
// reads. They are advisory for ordering (the resolver only follows
// explicit Dependencies) but enforced at run time: an extension whose
// required field is absent raises a MISSING_DEPENDENCY failure.
// DetectConflicts surfaces overlapping provides and explicit conflict
// declarations before a run.
package extension

import (
	"context"

	"github.com/fustilio/glost/pkg/doctree"
	"github.com/fustilio/glost/pkg/errors"
)

// TransformFunc receives the current tree and returns its replacement.
// Returning the input tree unchanged is valid.
type TransformFunc func(ctx context.Context, tree *doctree.Node) (*doctree.Node, error)

// VisitFunc is invoked for each node whose kind has a table entry.
// It may mutate the node's own fields, including its extras map.
type VisitFunc func(ctx context.Context, node *doctree.Node) error

// EnhanceFunc is invoked per word node and returns a partial annotation
// map to be deep-merged into the node's extras. A nil map means the
// extension has nothing to add for this word, which is not a failure.
type EnhanceFunc func(ctx context.Context, word *doctree.Node) (map[string]any, error)

// Contract declares the field names an extension writes (provides) or
// reads (requires), partitioned by where they live on the node.
type Contract struct {
	Extras   []string `json:"extras,omitempty"`   // keys in the extras map, e.g. "transcription"
	Metadata []string `json:"metadata,omitempty"` // transcription schemes, e.g. "ipa"
	Nodes    []string `json:"nodes,omitempty"`    // node kinds the extension creates
}

// Fields returns every declared field as a flat, prefixed list
// ("extras.transcription", "metadata.ipa", "nodes.sentence").
func (c *Contract) Fields() []string {
	if c == nil {
		return nil
	}
	var fields []string
	for _, f := range c.Extras {
		fields = append(fields, "extras."+f)
	}
	for _, f := range c.Metadata {
		fields = append(fields, "metadata."+f)
	}
	for _, f := range c.Nodes {
		fields = append(fields, "nodes."+f)
	}
	return fields
}

// Extension describes one unit of annotation logic. ID is mandatory and
// unique within a registry; at least one behavior must be present.
type Extension struct {
	ID           string   // unique identifier, e.g. "transcription"
	Name         string   // human-readable name for reports and listings
	Dependencies []string // ids that must execute before this extension
	Conflicts    []string // ids this extension cannot run alongside

	Requires *Contract // fields read at run time (optional)
	Provides *Contract // fields written (optional)

	Transform TransformFunc
	Visitors  map[doctree.Kind]VisitFunc
	Enhance   EnhanceFunc
}

// HasBehavior reports whether the extension declares at least one of
// transform, visitors, or enhance.
func (e *Extension) HasBehavior() bool {
	return e.Transform != nil || len(e.Visitors) > 0 || e.Enhance != nil
}

// Validate checks the descriptor for structural problems: an invalid
// id, a visitor registered for an unknown node kind, an invalid
// contract field name, or no behavior at all.
func (e *Extension) Validate() error {
	if err := errors.ValidateExtensionID(e.ID); err != nil {
		return err
	}
	if !e.HasBehavior() {
		return errors.New(errors.ErrCodeInvalidExtension,
			"extension %q declares no transform, visitors, or enhance behavior", e.ID)
	}
	for kind := range e.Visitors {
		if !kind.Valid() {
			return errors.New(errors.ErrCodeInvalidExtension,
				"extension %q has a visitor for unknown node kind %q", e.ID, kind)
		}
	}
	for _, f := range e.Requires.Fields() {
		if err := errors.ValidateFieldName(f); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidExtension, err,
				"extension %q has an invalid requires field", e.ID)
		}
	}
	for _, f := range e.Provides.Fields() {
		if err := errors.ValidateFieldName(f); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidExtension, err,
				"extension %q has an invalid provides field", e.ID)
		}
	}
	return nil
}

// ConflictsWith reports whether the extension explicitly declares a
// conflict with the given id.
func (e *Extension) ConflictsWith(id string) bool {
	for _, c := range e.Conflicts {
		if c == id {
			return true
		}
	}
	return false
}
