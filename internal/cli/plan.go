package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/fustilio/glost/pkg/extension"
)

// planOpts holds the command-line flags for the plan command.
type planOpts struct {
	config  string   // optional TOML config path
	only    []string // restrict the plan to these extension ids
	dotPath string   // write the dependency graph as DOT
	svgPath string   // render the dependency graph as SVG via graphviz
}

// newPlanCmd creates the plan command, which resolves the execution
// order without running anything and reports conflicts.
func newPlanCmd() *cobra.Command {
	var opts planOpts

	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Show the resolved extension execution order and conflicts",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPlan(cmd.Context(), &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.config, "config", "c", "", "TOML config file")
	cmd.Flags().StringSliceVar(&opts.only, "only", nil, "plan only these extensions (comma-separated ids)")
	cmd.Flags().StringVar(&opts.dotPath, "dot", "", "write the dependency graph as DOT to this file")
	cmd.Flags().StringVar(&opts.svgPath, "svg", "", "render the dependency graph as SVG to this file")

	return cmd
}

func runPlan(ctx context.Context, opts *planOpts) error {
	logger := loggerFromContext(ctx)

	cfg, err := loadConfig(opts.config)
	if err != nil {
		return err
	}
	registry, cleanup, err := buildRegistry(ctx, cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	only := cfg.Only
	if len(opts.only) > 0 {
		only = opts.only
	}
	logger.Debugf("Planning extensions: %s", extensionList(only))

	order, err := registry.Resolve(only)
	if err != nil {
		return err
	}

	fmt.Println(StyleTitle.Render("Execution order"))
	for i, e := range order {
		line := fmt.Sprintf("%2d. %s", i+1, e.ID)
		if len(e.Dependencies) > 0 {
			line += " " + StyleDim.Render("(after "+strings.Join(e.Dependencies, ", ")+")")
		}
		fmt.Println("  " + line)
	}

	conflicts := extension.DetectConflicts(order)
	if len(conflicts) > 0 {
		printNewline()
		for _, c := range conflicts {
			if c.Severity == extension.SeverityError {
				printError("conflict between %s and %s: %s", c.A, c.B, c.Reason)
				continue
			}
			printWarning("conflict between %s and %s on %s: %s", c.A, c.B, c.Field, c.Reason)
		}
	}

	if opts.dotPath != "" || opts.svgPath != "" {
		if err := writeGraph(ctx, order, opts); err != nil {
			return err
		}
	}
	return nil
}

// writeGraph emits the dependency graph as DOT and/or rendered SVG.
func writeGraph(ctx context.Context, order []*extension.Extension, opts *planOpts) error {
	if opts.dotPath != "" {
		dot := extension.ToDOT(order)
		if err := os.WriteFile(opts.dotPath, []byte(dot), 0o644); err != nil {
			return err
		}
		printFile(opts.dotPath)
	}
	if opts.svgPath != "" {
		// Graphviz layout runs in-process and can take a while on
		// larger graphs.
		spinner := newSpinnerWithContext(ctx, "Rendering dependency graph...")
		spinner.Start()
		svg, err := extension.RenderSVG(order)
		if err != nil {
			spinner.StopWithError("Graph rendering failed")
			return err
		}
		spinner.Stop()
		if err := os.WriteFile(opts.svgPath, svg, 0o644); err != nil {
			return err
		}
		printFile(opts.svgPath)
	}
	return nil
}
