package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/heartmarshall/pokecatalog/internal/app"
)

func newServeCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the REST API",
		Long: `Starts the HTTP server. With catalog.warm_on_start the catalog is
aggregated in the background; /ready answers 503 until it is served.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			e.log.Info("starting pokecatalog",
				slog.String("version", app.BuildVersion()),
				slog.String("cache_driver", e.cfg.Cache.Driver),
				slog.Int("offset", e.cfg.Catalog.Offset),
				slog.Int("limit", e.cfg.Catalog.Limit),
			)
			return e.withApp(ctx, func(a *app.App) error {
				return a.Serve(ctx)
			})
		},
	}
}

// runCtx is the context for one-shot commands.
func runCtx(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
}
