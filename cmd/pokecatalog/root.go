package main

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/heartmarshall/pokecatalog/internal/app"
	"github.com/heartmarshall/pokecatalog/internal/config"
)

// env is what every subcommand needs after flags are parsed.
type env struct {
	configPath string
	cfg        *config.Config
	log        *slog.Logger
}

func newRootCmd() *cobra.Command {
	e := &env{}

	root := &cobra.Command{
		Use:           "pokecatalog",
		Short:         "Aggregate, cache and query a PokeAPI-style creature catalog",
		Version:       app.BuildVersion(),
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.LoadFrom(e.configPath)
			if err != nil {
				return err
			}
			e.cfg = cfg
			e.log = app.NewLogger(cfg.Log, cmd.ErrOrStderr())
			return nil
		},
	}
	root.PersistentFlags().StringVarP(&e.configPath, "config", "c", "", "path to config.yaml (default $CONFIG_PATH or ./config.yaml)")

	root.AddCommand(
		newServeCmd(e),
		newWarmCmd(e),
		newQueryCmd(e),
		newCacheCmd(e),
	)
	return root
}

// withApp builds the application, runs fn and releases it.
func (e *env) withApp(ctx context.Context, fn func(a *app.App) error) error {
	a, err := app.New(ctx, e.cfg, e.log)
	if err != nil {
		return err
	}
	defer func() {
		if err := a.Close(context.Background()); err != nil {
			e.log.Warn("close", slog.String("error", err.Error()))
		}
	}()
	return fn(a)
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
