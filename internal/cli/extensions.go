package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/fustilio/glost/pkg/extension"
)

// newExtensionsCmd creates the extensions command, which lists the
// registered extensions with their dependencies and contracts.
func newExtensionsCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "extensions",
		Short: "List registered extensions and their contracts",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExtensions(cmd.Context(), configPath)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "TOML config file")
	return cmd
}

func runExtensions(ctx context.Context, configPath string) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	registry, cleanup, err := buildRegistry(ctx, cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	exts := registry.All()
	fmt.Println(StyleTitle.Render(fmt.Sprintf("Registered extensions (%d)", len(exts))))
	printNewline()

	for _, e := range exts {
		name := e.ID
		if e.Name != "" && e.Name != e.ID {
			name = fmt.Sprintf("%s (%s)", e.ID, e.Name)
		}
		fmt.Println(StyleHighlight.Render(name))
		if len(e.Dependencies) > 0 {
			printKeyValue("  depends on", strings.Join(e.Dependencies, ", "))
		}
		if len(e.Conflicts) > 0 {
			printKeyValue("  conflicts", strings.Join(e.Conflicts, ", "))
		}
		if fields := contractFields(e.Requires); fields != "" {
			printKeyValue("  requires", fields)
		}
		if fields := contractFields(e.Provides); fields != "" {
			printKeyValue("  provides", fields)
		}
		printKeyValue("  behaviors", behaviors(e))
	}
	return nil
}

// contractFields renders a contract as a comma-separated field list.
func contractFields(c *extension.Contract) string {
	if c == nil {
		return ""
	}
	return strings.Join(c.Fields(), ", ")
}

// behaviors names the phases an extension participates in.
func behaviors(e *extension.Extension) string {
	var b []string
	if e.Transform != nil {
		b = append(b, "transform")
	}
	if len(e.Visitors) > 0 {
		b = append(b, "visit")
	}
	if e.Enhance != nil {
		b = append(b, "enhance")
	}
	return strings.Join(b, ", ")
}
