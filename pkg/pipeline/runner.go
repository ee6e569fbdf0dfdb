package pipeline

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/fustilio/glost/pkg/doctree"
	"github.com/fustilio/glost/pkg/errors"
	"github.com/fustilio/glost/pkg/extension"
	"github.com/fustilio/glost/pkg/observability"
)

// Runner drives annotation runs against a registry of extensions.
//
// The Runner is stateless apart from the registry and logger - it does
// not retain per-run state, so independent calls over independent trees
// may run fully in parallel. One call is sequential across extensions: a
// later extension may depend on annotations an earlier one wrote, and
// the sequential pipeline guarantees single-writer access to the tree.
type Runner struct {
	Registry *extension.Registry
	Logger   *log.Logger
}

// NewRunner creates a runner over the given registry.
// If logger is nil, the default logger is used.
func NewRunner(reg *extension.Registry, logger *log.Logger) *Runner {
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{Registry: reg, Logger: logger}
}

// Execute runs the annotation pipeline over the tree and returns the
// (possibly replaced) tree plus the run report.
//
// The report is always non-nil. Resolution failures (cycles, unknown
// dependency ids) abort before any mutation regardless of policy: the
// input tree is returned untouched and the report holds only the
// resolution failure. Under the strict policy the first extension
// failure aborts the run and is returned as the call's error; mutations
// from already-applied extensions are retained. Under the lenient
// policy the call always completes and callers must inspect the report.
//
// Cancellation is honored between extensions; a cancelled context never
// interrupts an extension mid-pass, so the tree stays consistent.
func (r *Runner) Execute(ctx context.Context, tree *doctree.Node, opts Options) (*doctree.Node, *Report, error) {
	report := &Report{RunID: uuid.NewString()}
	if tree == nil {
		return nil, report, errors.New(errors.ErrCodeInvalidDocument, "document tree must not be nil")
	}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return tree, report, err
	}
	logger := r.logger(opts)
	runStart := time.Now()

	// Phase 1: Resolve
	observability.Pipeline().OnResolveStart(ctx, r.Registry.Len())
	order, err := r.Registry.Resolve(opts.Only)
	if err != nil {
		observability.Pipeline().OnResolveComplete(ctx, nil, err)
		report.Errors = append(report.Errors, Failure{Message: errors.UserMessage(err)})
		logger.Error("resolution failed", "run", report.RunID, "err", err)
		return tree, report, err
	}
	observability.Pipeline().OnResolveComplete(ctx, extensionIDs(order), nil)
	logger.Debug("resolved execution order", "run", report.RunID, "order", extensionIDs(order))

	// Conflict detection is advisory: findings land in the report and
	// the log, but never block the run.
	report.Warnings = extension.DetectConflicts(order)
	for _, c := range report.Warnings {
		logger.Warn("extension conflict", "run", report.RunID, "severity", c.Severity, "reason", c.Reason)
	}

	// Phase 2: Execute in resolved order. unavailable maps an extension
	// id that failed or was skipped to the reason, so dependents cascade
	// deterministically without executing.
	unavailable := make(map[string]string)

	for _, ext := range order {
		if err := ctx.Err(); err != nil {
			return tree, report, errors.Wrap(errors.ErrCodeTimeout, err, "run cancelled before %q", ext.ID)
		}

		if reason, blocked := blockedBy(ext, unavailable); blocked {
			report.Skipped = append(report.Skipped, Skip{ID: ext.ID, Reason: reason})
			unavailable[ext.ID] = "skipped: " + reason
			observability.Pipeline().OnExtensionSkipped(ctx, ext.ID, reason)
			logger.Info("skipped extension", "run", report.RunID, "extension", ext.ID, "reason", reason)
			continue
		}

		observability.Pipeline().OnExtensionStart(ctx, ext.ID)
		start := time.Now()
		res := execute(ctx, ext, tree, opts.EnhanceWorkers)
		elapsed := time.Since(start)
		observability.Pipeline().OnExtensionComplete(ctx, ext.ID, elapsed, res.Err)
		if opts.Timing {
			report.recordTiming(ext.ID, elapsed)
		}

		if res.Err == nil {
			tree = res.Tree
			report.Applied = append(report.Applied, ext.ID)
			logger.Info("applied extension", "run", report.RunID, "extension", ext.ID, "duration", elapsed)
			continue
		}

		failure := Failure{ID: ext.ID, NodePath: res.NodePath, Message: errors.UserMessage(res.Err)}
		report.Errors = append(report.Errors, failure)
		tree = res.Tree

		if opts.IsStrict() {
			logger.Error("extension failed, aborting run", "run", report.RunID,
				"extension", ext.ID, "node", res.NodePath, "err", res.Err)
			return tree, report, res.Err
		}

		report.Skipped = append(report.Skipped, Skip{ID: ext.ID, Reason: errors.UserMessage(res.Err)})
		unavailable[ext.ID] = "failed: " + errors.UserMessage(res.Err)
		logger.Warn("extension failed, continuing", "run", report.RunID,
			"extension", ext.ID, "node", res.NodePath, "err", res.Err)
	}

	// Phase 3: Report
	observability.Pipeline().OnRunComplete(ctx,
		len(report.Applied), len(report.Skipped), len(report.Errors), time.Since(runStart))
	logger.Info("run complete", "run", report.RunID,
		"applied", len(report.Applied), "skipped", len(report.Skipped), "errors", len(report.Errors))
	return tree, report, nil
}

// blockedBy reports whether one of the extension's declared dependencies
// already failed or was skipped in this run.
func blockedBy(ext *extension.Extension, unavailable map[string]string) (string, bool) {
	for _, dep := range ext.Dependencies {
		if state, ok := unavailable[dep]; ok {
			return "dependency " + dep + " " + state, true
		}
	}
	return "", false
}

func (r *Runner) logger(opts Options) *log.Logger {
	if opts.Logger != nil {
		return opts.Logger
	}
	if r.Logger != nil {
		return r.Logger
	}
	return log.Default()
}

func extensionIDs(exts []*extension.Extension) []string {
	ids := make([]string, len(exts))
	for i, e := range exts {
		ids[i] = e.ID
	}
	return ids
}
