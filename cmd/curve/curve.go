// Package curve provides the curve command
package curve

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/databirdlab/densitycal/internal/app"
	"github.com/databirdlab/densitycal/internal/conf"
)

// Command creates the curve command.
func Command(settings *conf.Settings) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "curve",
		Short: "Report the median density per call-per-asset factor",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.Run(cmd.Context(), settings, cmd.OutOrStdout(), func(ctx context.Context, a *app.App) (any, error) {
				return a.Engine.CurveSummary(ctx, settings.Calibration.MinCalls)
			})
		},
	}

	cmd.Flags().Int("min-calls", conf.DefaultMinCalls, "Min acoustic calls per window")
	conf.BindFlag(cmd.Flags(), "min-calls", "calibration.mincalls")

	return cmd
}
