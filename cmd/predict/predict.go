// Package predict provides the predict command
package predict

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/databirdlab/densitycal/cmd/features"
	"github.com/databirdlab/densitycal/internal/app"
	"github.com/databirdlab/densitycal/internal/calibration"
	"github.com/databirdlab/densitycal/internal/conf"
)

// Command creates the predict command.
func Command(settings *conf.Settings) *cobra.Command {
	var surveyID, aruID uint

	cmd := &cobra.Command{
		Use:   "predict",
		Short: "Predict the density seen by one acoustic survey and ARU",
		Long: `Predict retrains both model families on all windows and applies the chosen
one to the acoustic survey and ARU. The estimate and its approximate 95%
interval are clamped at zero.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c := settings.Calibration
			req := calibration.PredictRequest{
				AcousticSurveyID: surveyID,
				ARUID:            aruID,
				Model:            c.Model,
				MinCalls:         c.MinCalls,
				TopSpecies:       c.TopSpecies,
			}
			return app.Run(cmd.Context(), settings, cmd.OutOrStdout(), func(ctx context.Context, a *app.App) (any, error) {
				return a.Engine.PredictDensity(ctx, req)
			})
		},
	}

	cmd.Flags().UintVar(&surveyID, "survey", 0, "Acoustic survey ID")
	cmd.Flags().UintVar(&aruID, "aru", 0, "ARU ID")
	cmd.Flags().String("model", conf.ModelBest, "Model: best, linear or quadratic")
	_ = cmd.MarkFlagRequired("survey")
	_ = cmd.MarkFlagRequired("aru")
	conf.BindFlag(cmd.Flags(), "model", "calibration.model")
	features.AddFlags(cmd)

	return cmd
}
