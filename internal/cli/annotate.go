package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/fustilio/glost/pkg/doctree"
	"github.com/fustilio/glost/pkg/pipeline"
)

// annotateOpts holds the command-line flags for the annotate command.
type annotateOpts struct {
	config      string   // optional TOML config path
	policy      string   // failure policy: strict or lenient
	only        []string // restrict the run to these extension ids
	timing      bool     // capture per-extension durations in the report
	out         string   // annotated document output path ("-" for stdout)
	reportPath  string   // optional run report output path
	interactive bool     // pick extensions interactively
	workers     int      // enhancer concurrency bound
}

// newAnnotateCmd creates the annotate command, which runs the extension
// pipeline over a document tree read from a file or stdin.
func newAnnotateCmd() *cobra.Command {
	var opts annotateOpts

	cmd := &cobra.Command{
		Use:   "annotate [file]",
		Short: "Annotate a document tree with the extension pipeline",
		Long: `Annotate reads a JSON document tree from a file (or stdin when the
argument is "-" or omitted), resolves the requested extensions into
dependency order, runs them, and writes the annotated tree back out.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			input := "-"
			if len(args) == 1 {
				input = args[0]
			}
			return runAnnotate(cmd.Context(), input, &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.config, "config", "c", "", "TOML config file")
	cmd.Flags().StringVar(&opts.policy, "policy", "", "failure policy: strict or lenient (default lenient)")
	cmd.Flags().StringSliceVar(&opts.only, "only", nil, "run only these extensions (comma-separated ids)")
	cmd.Flags().BoolVar(&opts.timing, "timing", false, "record per-extension durations in the report")
	cmd.Flags().StringVarP(&opts.out, "out", "o", "-", "annotated document output (\"-\" for stdout)")
	cmd.Flags().StringVar(&opts.reportPath, "report", "", "write the run report as JSON to this file")
	cmd.Flags().BoolVarP(&opts.interactive, "interactive", "i", false, "pick extensions interactively")
	cmd.Flags().IntVar(&opts.workers, "workers", 0, "enhancer concurrency (0 for default)")

	return cmd
}

// runAnnotate wires config, registry, and pipeline together for one run.
func runAnnotate(ctx context.Context, input string, opts *annotateOpts) error {
	logger := loggerFromContext(ctx)

	cfg, err := loadConfig(opts.config)
	if err != nil {
		return err
	}
	runOpts, err := mergeRunOptions(cfg, opts)
	if err != nil {
		return err
	}

	logger.Debugf("Policy %s, extensions: %s", runOpts.Policy, extensionList(runOpts.Only))

	tree, err := readDocumentArg(input)
	if err != nil {
		return err
	}
	logger.Debugf("Loaded document: %d words", len(doctree.Words(tree)))

	registry, cleanup, err := buildRegistry(ctx, cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	if opts.interactive {
		selected, err := pickExtensions(registry, runOpts.Only)
		if err != nil {
			return err
		}
		if len(selected) == 0 {
			printInfo("no extensions selected")
			return nil
		}
		runOpts.Only = selected
	}

	prog := newProgress(logger)
	runner := pipeline.NewRunner(registry, logger)
	annotated, report, runErr := runner.Execute(ctx, tree, runOpts)
	if runErr != nil {
		printReport(report)
		return runErr
	}
	prog.done(fmt.Sprintf("Annotated with %d extension(s)", len(report.Applied)))

	if err := writeDocumentArg(annotated, opts.out); err != nil {
		return err
	}
	if opts.reportPath != "" {
		if err := writeReportFile(report, opts.reportPath); err != nil {
			return err
		}
		printFile(opts.reportPath)
	}
	printReport(report)
	return nil
}

// mergeRunOptions layers flag values over config values.
func mergeRunOptions(cfg *Config, opts *annotateOpts) (pipeline.Options, error) {
	runOpts := pipeline.Options{
		Policy:         pipeline.Policy(cfg.Policy),
		Only:           cfg.Only,
		Timing:         opts.timing,
		EnhanceWorkers: opts.workers,
	}
	if opts.policy != "" {
		runOpts.Policy = pipeline.Policy(opts.policy)
	}
	if len(opts.only) > 0 {
		runOpts.Only = opts.only
	}
	if err := runOpts.ValidateAndSetDefaults(); err != nil {
		return pipeline.Options{}, err
	}
	return runOpts, nil
}

// readDocumentArg loads a document from a path, or stdin for "-".
func readDocumentArg(path string) (*doctree.Node, error) {
	if path == "-" {
		return doctree.ReadDocument(os.Stdin)
	}
	return doctree.ReadDocumentFile(path)
}

// writeDocumentArg writes a document to a path, or stdout for "-".
func writeDocumentArg(tree *doctree.Node, path string) error {
	if path == "-" {
		return doctree.WriteDocument(tree, os.Stdout)
	}
	if err := doctree.WriteDocumentFile(tree, path); err != nil {
		return err
	}
	printFile(path)
	return nil
}

// writeReportFile serializes a run report as indented JSON.
func writeReportFile(report *pipeline.Report, path string) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}

// printReport summarizes a run report on stderr-friendly styled lines.
func printReport(report *pipeline.Report) {
	if report == nil {
		return
	}
	printRunStats(len(report.Applied), len(report.Skipped), len(report.Errors))
	for _, w := range report.Warnings {
		printWarning("conflict between %s and %s on %s: %s", w.A, w.B, w.Field, w.Reason)
	}
	for _, s := range report.Skipped {
		printDetail("skipped %s: %s", s.ID, s.Reason)
	}
	for _, f := range report.Errors {
		if f.NodePath != "" {
			printError("%s at %s: %s", f.ID, f.NodePath, f.Message)
			continue
		}
		printError("%s: %s", f.ID, f.Message)
	}
	if report.Timings != nil {
		for _, id := range report.Applied {
			if d, ok := report.Timings[id]; ok {
				printDetail("%s took %s", id, d)
			}
		}
	}
}

// extensionList formats ids for display.
func extensionList(ids []string) string {
	if len(ids) == 0 {
		return "all"
	}
	return strings.Join(ids, ", ")
}
