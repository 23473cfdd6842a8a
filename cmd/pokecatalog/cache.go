package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/heartmarshall/pokecatalog/internal/app"
)

func newCacheCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the persistent cache",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Drop every cached entry, including the view state",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := runCtx(cmd)
			defer cancel()

			return e.withApp(ctx, func(a *app.App) error {
				if err := a.Aggregator.ClearCache(ctx); err != nil {
					return err
				}
				_, err := fmt.Fprintf(cmd.OutOrStdout(), "cache cleared (%s)\n", e.cfg.Cache.Driver)
				return err
			})
		},
	})
	return cmd
}
