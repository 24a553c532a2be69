// Package train provides the train command
package train

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/databirdlab/densitycal/cmd/features"
	"github.com/databirdlab/densitycal/internal/app"
	"github.com/databirdlab/densitycal/internal/conf"
)

// Command creates the train command.
func Command(settings *conf.Settings) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "train",
		Short: "Fit both model families on all windows and report in-sample metrics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c := settings.Calibration
			return app.Run(cmd.Context(), settings, cmd.OutOrStdout(), func(ctx context.Context, a *app.App) (any, error) {
				return a.Engine.TrainSummary(ctx, c.MinCalls, c.TopSpecies)
			})
		},
	}

	features.AddFlags(cmd)
	return cmd
}
