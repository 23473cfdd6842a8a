package main

import (
	"github.com/spf13/cobra"

	"github.com/heartmarshall/pokecatalog/internal/app"
)

func newWarmCmd(e *env) *cobra.Command {
	var refresh bool

	cmd := &cobra.Command{
		Use:   "warm",
		Short: "Aggregate the configured window into the cache and print the status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := runCtx(cmd)
			defer cancel()

			return e.withApp(ctx, func(a *app.App) error {
				run := a.Aggregator.Warm
				if refresh {
					run = a.Aggregator.Refresh
				}
				if _, err := run(ctx); err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), a.Aggregator.Status())
			})
		},
	}
	cmd.Flags().BoolVar(&refresh, "refresh", false, "ignore cached entries and fetch everything again")
	return cmd
}
