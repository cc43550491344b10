package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/veeox/veeox/app"
	"github.com/veeox/veeox/config"
)

func serveCmd(configPath *string) *cobra.Command {
	var (
		addr string
		h2c  bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			cfg, err := loadConfig(ctx, *configPath)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("addr") {
				cfg.Addr = addr
			}
			if cmd.Flags().Changed("h2c") {
				cfg.H2C = h2c
			}

			a, err := app.New(cfg)
			if err != nil {
				return err
			}
			return a.Run(ctx)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides config)")
	cmd.Flags().BoolVar(&h2c, "h2c", false, "serve HTTP/2 cleartext alongside HTTP/1.1")
	return cmd
}

func loadConfig(ctx context.Context, path string) (*config.Config, error) {
	if path == "" {
		return config.Load(ctx)
	}
	return config.LoadFrom(ctx, path)
}
