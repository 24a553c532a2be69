// Package rebuild provides the rebuild command
package rebuild

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/databirdlab/densitycal/internal/app"
	"github.com/databirdlab/densitycal/internal/conf"
)

// Command creates the rebuild command.
func Command(settings *conf.Settings) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rebuild",
		Short: "Rebuild calibration windows from the current surveys",
		Long: `Rebuild deletes every calibration window and pairs each acoustic survey
and ARU with drone surveys close in time whose footprint covers the ARU.
The previous windows are kept when the rebuild fails.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.Run(cmd.Context(), settings, cmd.OutOrStdout(), func(ctx context.Context, a *app.App) (any, error) {
				result, err := a.Engine.RebuildWindows(ctx, a.RebuildOptions())
				if err != nil {
					return nil, err
				}
				if err := a.Store.RefreshRowCounts(ctx); err != nil {
					return nil, err
				}
				return result, nil
			})
		},
	}

	setupFlags(cmd)
	return cmd
}

func setupFlags(cmd *cobra.Command) {
	cmd.Flags().Int("max-days-apart", conf.DefaultMaxDaysApart, "Max days between acoustic and drone survey dates")
	cmd.Flags().Float64("buffer-meters", conf.DefaultBufferMeters, "Distance around drone bounds within which an ARU matches")
	cmd.Flags().Int("min-acoustic-calls", conf.DefaultMinAcousticCalls, "Min calls for an acoustic survey and ARU to be paired")

	conf.BindFlag(cmd.Flags(), "max-days-apart", "calibration.maxdaysapart")
	conf.BindFlag(cmd.Flags(), "buffer-meters", "calibration.buffermeters")
	conf.BindFlag(cmd.Flags(), "min-acoustic-calls", "calibration.minacousticcalls")
}
