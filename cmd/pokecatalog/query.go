package main

import (
	"github.com/spf13/cobra"

	"github.com/heartmarshall/pokecatalog/internal/app"
	"github.com/heartmarshall/pokecatalog/internal/service/query"
)

func newQueryCmd(e *env) *cobra.Command {
	var q query.Query

	cmd := &cobra.Command{
		Use:   "query [name]",
		Short: "Print a catalog page, or one entity's detail when a name is given",
		Example: `  pokecatalog query --type fire --page 2
  pokecatalog query --search char
  pokecatalog query bulbasaur`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := runCtx(cmd)
			defer cancel()

			return e.withApp(ctx, func(a *app.App) error {
				if _, err := a.Aggregator.Warm(ctx); err != nil {
					return err
				}
				if len(args) == 1 {
					d, err := a.Catalog.Detail(ctx, args[0])
					if err != nil {
						return err
					}
					return printJSON(cmd.OutOrStdout(), d)
				}

				if !cmd.Flags().Changed("page") {
					q.Page = a.Catalog.ViewState().ActivePage
				}
				res, err := a.Query.List(ctx, q)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), res)
			})
		},
	}
	cmd.Flags().IntVar(&q.Page, "page", 1, "1-indexed page (default: the persisted active page)")
	cmd.Flags().IntVar(&q.Limit, "limit", 0, "items per page (default: catalog.page_limit)")
	cmd.Flags().StringVar(&q.Type, "type", "", `type tag to filter by ("none" disables)`)
	cmd.Flags().StringVar(&q.Search, "search", "", "case-insensitive name prefix")
	return cmd
}
