package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/fustilio/glost/internal/api"
	"github.com/fustilio/glost/pkg/pipeline"
)

// newServeCmd creates the serve command, which runs the HTTP annotation
// service until interrupted.
func newServeCmd() *cobra.Command {
	var (
		configPath string
		listen     string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP annotation service",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), configPath, listen)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "TOML config file")
	cmd.Flags().StringVarP(&listen, "listen", "l", "", "listen address (default :8080)")
	return cmd
}

func runServe(ctx context.Context, configPath, listen string) error {
	logger := loggerFromContext(ctx)

	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	if listen == "" {
		listen = cfg.Server.Listen
	}

	registry, cleanup, err := buildRegistry(ctx, cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	runner := pipeline.NewRunner(registry, logger)
	server := api.NewServer(runner, logger)
	return server.ListenAndServe(ctx, listen)
}
