// Package features provides the features command
package features

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/databirdlab/densitycal/internal/app"
	"github.com/databirdlab/densitycal/internal/conf"
)

// Command creates the features command.
func Command(settings *conf.Settings) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "features",
		Short: "Print the feature vector and target density of every window",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c := settings.Calibration
			return app.Run(cmd.Context(), settings, cmd.OutOrStdout(), func(ctx context.Context, a *app.App) (any, error) {
				return a.Engine.FeatureRows(ctx, c.MinCalls, c.TopSpecies)
			})
		},
	}

	AddFlags(cmd)
	return cmd
}

// AddFlags defines the window selection flags shared by the model commands.
func AddFlags(cmd *cobra.Command) {
	cmd.Flags().Int("min-calls", conf.DefaultMinCalls, "Min acoustic calls per window")
	cmd.Flags().Int("top-species", conf.DefaultTopSpecies, "Number of species call-rate features")
	conf.BindFlag(cmd.Flags(), "min-calls", "calibration.mincalls")
	conf.BindFlag(cmd.Flags(), "top-species", "calibration.topspecies")
}
