// Package windows provides the windows command
package windows

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/databirdlab/densitycal/internal/app"
	"github.com/databirdlab/densitycal/internal/conf"
)

// Command creates the windows command.
func Command(settings *conf.Settings) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "windows",
		Short: "List calibration windows, closest in time first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c := settings.Calibration
			return app.Run(cmd.Context(), settings, cmd.OutOrStdout(), func(ctx context.Context, a *app.App) (any, error) {
				return a.Engine.ListWindows(ctx, c.ListMinCalls, c.ListLimit)
			})
		},
	}

	cmd.Flags().Int("min-calls", conf.DefaultListMinCalls, "Min acoustic calls per window")
	cmd.Flags().Int("limit", conf.DefaultListLimit, "Max windows to list, 0 for all")
	conf.BindFlag(cmd.Flags(), "min-calls", "calibration.listmincalls")
	conf.BindFlag(cmd.Flags(), "limit", "calibration.listlimit")

	return cmd
}
