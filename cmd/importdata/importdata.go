// Package importdata provides the import command
package importdata

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/databirdlab/densitycal/internal/app"
	"github.com/databirdlab/densitycal/internal/calibration"
	"github.com/databirdlab/densitycal/internal/conf"
	"github.com/databirdlab/densitycal/internal/datastore"
)

// Command creates the import command.
func Command(settings *conf.Settings) *cobra.Command {
	var rebuildAfter bool

	cmd := &cobra.Command{
		Use:   "import <dataset.yaml>",
		Short: "Load ARUs, surveys, assets and detections from a YAML dataset",
		Long: `Import adds every record of the dataset in one transaction; nothing is
written when any record is invalid. With --rebuild the calibration windows
are rebuilt afterwards.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dataset, err := datastore.LoadDatasetFile(args[0])
			if err != nil {
				return err
			}
			return app.Run(cmd.Context(), settings, cmd.OutOrStdout(), func(ctx context.Context, a *app.App) (any, error) {
				return importDataset(ctx, a, dataset, rebuildAfter)
			})
		},
	}

	cmd.Flags().BoolVar(&rebuildAfter, "rebuild", false, "Rebuild calibration windows after the import")
	return cmd
}

// Report is the output of the import command.
type Report struct {
	Imported *datastore.ImportResult    `yaml:"imported" json:"imported"`
	Rebuild  *calibration.RebuildResult `yaml:"rebuild,omitempty" json:"rebuild,omitempty"`
}

func importDataset(ctx context.Context, a *app.App, dataset *datastore.Dataset, rebuildAfter bool) (*Report, error) {
	imported, err := datastore.Import(ctx, a.Store, dataset)
	if err != nil {
		return nil, err
	}
	report := &Report{Imported: imported}
	if rebuildAfter {
		result, err := a.Engine.RebuildWindows(ctx, a.RebuildOptions())
		if err != nil {
			return nil, err
		}
		report.Rebuild = result
	}
	if err := a.Store.RefreshRowCounts(ctx); err != nil {
		return nil, err
	}
	return report, nil
}
