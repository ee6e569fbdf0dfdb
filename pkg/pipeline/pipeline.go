// Package pipeline provides the core annotation pipeline for Glost.
//
// This package implements the resolve → execute → report loop that can
// be used by CLI and API components. Given a document tree, a registry
// of extensions, and run options, the Runner computes a valid execution
// order, runs each extension's transform / visit / enhance behaviors,
// merges their output into the tree, and assembles a run report.
//
// # Architecture
//
// One run has three phases:
//
//  1. Resolve: order the selected extensions by declared dependencies;
//     cycles and unknown dependency ids abort before any mutation.
//  2. Execute: run each extension in order against the tree. Conflict
//     detection results are attached to the report as warnings.
//  3. Report: return the final tree plus the applied / skipped / error
//     record for the run.
//
// Extensions never run concurrently with each other — extension N+1 may
// depend on annotations N wrote. Within one extension's enhancer pass,
// word lookups are dispatched to a bounded worker pool and folded back
// in traversal order, so reports stay deterministic.
//
// # Usage
//
// Create a Runner and execute the pipeline:
//
//	runner := pipeline.NewRunner(registry, logger)
//	opts := pipeline.Options{Policy: pipeline.PolicyLenient}
//	tree, report, err := runner.Execute(ctx, doc, opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(report.Applied)
package pipeline

import (
	"time"

	"github.com/charmbracelet/log"

	"github.com/fustilio/glost/pkg/errors"
	"github.com/fustilio/glost/pkg/extension"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and API
// =============================================================================

const (
	// DefaultEnhanceWorkers is the bound on concurrent enhancer
	// invocations within one extension's word pass. Provider-backed
	// enhancers are I/O bound, so a small pool is enough.
	DefaultEnhanceWorkers = 8
)

// Policy selects how the orchestrator reacts to an extension failure.
type Policy string

const (
	// PolicyStrict aborts the run on the first extension failure.
	// Mutations from already-applied extensions are retained; there is
	// no rollback, because extensions are expected to be independently
	// useful and idempotent.
	PolicyStrict Policy = "strict"

	// PolicyLenient records the failure, skips the extension, and
	// continues. Dependents of a skipped extension cascade
	// deterministically: they are skipped without executing.
	PolicyLenient Policy = "lenient"
)

// DefaultPolicy is used when Options.Policy is empty.
const DefaultPolicy = PolicyLenient

// ValidPolicies is the set of supported failure policies.
var ValidPolicies = map[Policy]bool{
	PolicyStrict:  true,
	PolicyLenient: true,
}

// ValidatePolicy checks that a policy is valid.
func ValidatePolicy(p Policy) error {
	if !ValidPolicies[p] {
		return errors.New(errors.ErrCodeInvalidPolicy,
			"invalid policy: %q (must be one of: strict, lenient)", p)
	}
	return nil
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for one pipeline run.
// This struct supports JSON serialization for API requests.
type Options struct {
	// Policy is the failure policy: strict or lenient.
	Policy Policy `json:"policy,omitempty"`

	// Only restricts the run to a subset of registered extension ids.
	// Empty means run everything in the registry.
	Only []string `json:"only,omitempty"`

	// Timing enables per-extension duration capture in the report.
	Timing bool `json:"timing,omitempty"`

	// EnhanceWorkers bounds concurrent enhancer invocations within one
	// extension's word pass. Zero uses DefaultEnhanceWorkers; one
	// forces sequential execution.
	EnhanceWorkers int `json:"enhance_workers,omitempty"`

	// Logger overrides the Runner's logger for this run.
	// Nil falls back to the logger the Runner was constructed with.
	Logger *log.Logger `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool `json:"-"`
}

// ValidateAndSetDefaults checks fields and applies defaults.
// This method is idempotent - calling it multiple times has the same
// effect as calling it once.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if o.Policy == "" {
		o.Policy = DefaultPolicy
	}
	if err := ValidatePolicy(o.Policy); err != nil {
		return err
	}
	if o.EnhanceWorkers <= 0 {
		o.EnhanceWorkers = DefaultEnhanceWorkers
	}
	o.validated = true
	return nil
}

// IsStrict reports whether the run aborts on the first failure.
func (o *Options) IsStrict() bool { return o.Policy == PolicyStrict }

// =============================================================================
// Report - The Run Record
// =============================================================================

// Skip records one extension that did not execute (or executed and
// failed under the lenient policy) together with the reason.
type Skip struct {
	ID     string `json:"id"`
	Reason string `json:"reason"`
}

// Failure records one captured extension failure. NodePath is set when
// the failure is attributable to a specific node.
type Failure struct {
	ID       string `json:"id"`
	NodePath string `json:"node_path,omitempty"`
	Message  string `json:"message"`
}

// Report is the structured record of one pipeline run. Callers always
// receive a report; under the strict policy the first fatal error is
// additionally surfaced as the call's error.
type Report struct {
	// RunID uniquely identifies this run in logs and API responses.
	RunID string `json:"run_id"`

	// Applied lists extensions that completed, in execution order.
	Applied []string `json:"applied"`

	// Skipped lists extensions that did not complete, with reasons.
	Skipped []Skip `json:"skipped,omitempty"`

	// Errors lists captured failures, one entry per failed extension.
	Errors []Failure `json:"errors,omitempty"`

	// Warnings carries advisory conflict findings for the executed set.
	Warnings []extension.Conflict `json:"warnings,omitempty"`

	// Timings holds per-extension durations when Options.Timing is set.
	Timings map[string]time.Duration `json:"timings,omitempty"`
}

// WasApplied reports whether the extension completed in this run.
func (r *Report) WasApplied(id string) bool {
	for _, a := range r.Applied {
		if a == id {
			return true
		}
	}
	return false
}

// WasSkipped reports whether the extension was skipped in this run.
func (r *Report) WasSkipped(id string) bool {
	for _, s := range r.Skipped {
		if s.ID == id {
			return true
		}
	}
	return false
}

// Failed reports whether the run captured any failure.
func (r *Report) Failed() bool { return len(r.Errors) > 0 }

func (r *Report) recordTiming(id string, d time.Duration) {
	if r.Timings == nil {
		r.Timings = make(map[string]time.Duration)
	}
	r.Timings[id] = d
}
