package extension

import (
	"fmt"
	"sort"
)

// Severity grades a detected conflict.
type Severity string

const (
	// SeverityError marks an explicit conflicts declaration between two
	// extensions. The detector is advisory and does not itself block a
	// run, but callers should treat these as misconfiguration.
	SeverityError Severity = "error"

	// SeverityWarning marks overlapping provides: both extensions write
	// the same field, so the later-executing one wins at each leaf.
	SeverityWarning Severity = "warning"
)

// Conflict records one detected pair. A and B are extension ids with
// A preceding B in the inspected order.
type Conflict struct {
	A        string   `json:"a"`
	B        string   `json:"b"`
	Field    string   `json:"field,omitempty"` // overlapping field, empty for explicit conflicts
	Severity Severity `json:"severity"`
	Reason   string   `json:"reason"`
}

// DetectConflicts inspects a set of extensions and reports:
//
//   - pairs where either side declares the other in Conflicts
//     (SeverityError)
//   - pairs whose provides contracts intersect (SeverityWarning,
//     last-write-wins risk)
//
// The result is advisory: it never blocks a run, but the orchestrator
// surfaces it in the run report. Pairs are reported once, in the order
// the extensions appear in exts.
func DetectConflicts(exts []*Extension) []Conflict {
	var conflicts []Conflict

	for i, a := range exts {
		for _, b := range exts[i+1:] {
			if a.ConflictsWith(b.ID) || b.ConflictsWith(a.ID) {
				conflicts = append(conflicts, Conflict{
					A:        a.ID,
					B:        b.ID,
					Severity: SeverityError,
					Reason:   fmt.Sprintf("extensions %q and %q are declared mutually exclusive", a.ID, b.ID),
				})
			}
			for _, field := range overlap(a.Provides, b.Provides) {
				conflicts = append(conflicts, Conflict{
					A:        a.ID,
					B:        b.ID,
					Field:    field,
					Severity: SeverityWarning,
					Reason:   fmt.Sprintf("extensions %q and %q both provide %q; the later one wins", a.ID, b.ID, field),
				})
			}
		}
	}
	return conflicts
}

// overlap returns the fields two provides contracts have in common,
// sorted for deterministic reports.
func overlap(a, b *Contract) []string {
	if a == nil || b == nil {
		return nil
	}
	set := make(map[string]bool)
	for _, f := range a.Fields() {
		set[f] = true
	}
	var shared []string
	for _, f := range b.Fields() {
		if set[f] {
			shared = append(shared, f)
		}
	}
	sort.Strings(shared)
	return shared
}
