// Package backtest provides the backtest command
package backtest

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/databirdlab/densitycal/cmd/features"
	"github.com/databirdlab/densitycal/internal/app"
	"github.com/databirdlab/densitycal/internal/conf"
)

// Command creates the backtest command.
func Command(settings *conf.Settings) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "backtest",
		Short: "Cross-validate both model families, holding out one drone survey per fold",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c := settings.Calibration
			return app.Run(cmd.Context(), settings, cmd.OutOrStdout(), func(ctx context.Context, a *app.App) (any, error) {
				return a.Engine.BacktestReport(ctx, c.MinCalls, c.TopSpecies)
			})
		},
	}

	features.AddFlags(cmd)
	return cmd
}
