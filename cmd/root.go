package cmd

import (
	"github.com/spf13/cobra"

	"github.com/databirdlab/densitycal/cmd/backtest"
	"github.com/databirdlab/densitycal/cmd/config"
	"github.com/databirdlab/densitycal/cmd/curve"
	"github.com/databirdlab/densitycal/cmd/features"
	"github.com/databirdlab/densitycal/cmd/importdata"
	"github.com/databirdlab/densitycal/cmd/predict"
	"github.com/databirdlab/densitycal/cmd/rebuild"
	"github.com/databirdlab/densitycal/cmd/serve"
	"github.com/databirdlab/densitycal/cmd/train"
	"github.com/databirdlab/densitycal/cmd/windows"
	"github.com/databirdlab/densitycal/internal/buildinfo"
	"github.com/databirdlab/densitycal/internal/conf"
)

// RootCommand creates the densitycal root command. settings is filled from
// the config file, environment and flags before any subcommand runs.
func RootCommand(settings *conf.Settings, build *buildinfo.Context) *cobra.Command {
	var configFile string

	rootCmd := &cobra.Command{
		Use:           "densitycal",
		Short:         "Acoustic to drone density calibration",
		Long:          "densitycal pairs acoustic surveys with drone surveys and fits models that predict animal density from call rates.",
		Version:       build.String(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	setupFlags(rootCmd, &configFile)

	rootCmd.AddCommand(
		rebuild.Command(settings),
		windows.Command(settings),
		curve.Command(settings),
		features.Command(settings),
		backtest.Command(settings),
		train.Command(settings),
		predict.Command(settings),
		importdata.Command(settings),
		serve.Command(settings, build),
		config.Command(settings),
	)

	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		// Only the executing command's flags override settings
		if err := conf.BindFlags(cmd.Flags()); err != nil {
			return err
		}
		loaded, err := conf.Load(configFile)
		if err != nil {
			return err
		}
		*settings = *loaded
		return nil
	}

	return rootCmd
}

// setupFlags defines flags that are global to the command line interface
func setupFlags(rootCmd *cobra.Command, configFile *string) {
	flags := rootCmd.PersistentFlags()
	flags.StringVarP(configFile, "config", "c", "", "Path to config.yaml (default: ./, ~/.config/densitycal, /etc/densitycal)")
	flags.BoolP("debug", "d", false, "Enable debug output")
	flags.StringP("output", "o", conf.OutputYAML, "Report format: yaml or json")
	flags.String("database", conf.DatabaseSQLite, "Database backend: sqlite or mysql")
	flags.String("sqlite-path", "densitycal.db", "SQLite database file")

	conf.BindFlag(flags, "debug", "debug")
	conf.BindFlag(flags, "output", "output.format")
	conf.BindFlag(flags, "database", "database.type")
	conf.BindFlag(flags, "sqlite-path", "database.sqlite.path")
}
