// Package serve provides the serve command
package serve

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/databirdlab/densitycal/internal/app"
	"github.com/databirdlab/densitycal/internal/buildinfo"
	"github.com/databirdlab/densitycal/internal/conf"
	"github.com/databirdlab/densitycal/internal/logger"
	"github.com/databirdlab/densitycal/internal/observability"
)

// Command creates the serve command.
func Command(settings *conf.Settings, build *buildinfo.Context) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Rebuild windows on a schedule and expose Prometheus metrics",
		Long: `Serve rebuilds calibration windows every schedule interval and, when
telemetry is enabled, serves /metrics until interrupted.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return Run(ctx, settings, build)
		},
	}

	setupFlags(cmd)
	return cmd
}

func setupFlags(cmd *cobra.Command) {
	cmd.Flags().Duration("interval", time.Hour, "Rebuild interval, 0 disables scheduled rebuilds")
	cmd.Flags().Bool("run-on-start", true, "Rebuild once at startup")
	cmd.Flags().Bool("telemetry", false, "Enable the Prometheus endpoint")
	cmd.Flags().String("listen", "0.0.0.0:8090", "Listen address of the Prometheus endpoint")

	conf.BindFlag(cmd.Flags(), "interval", "schedule.rebuildinterval")
	conf.BindFlag(cmd.Flags(), "run-on-start", "schedule.runonstart")
	conf.BindFlag(cmd.Flags(), "telemetry", "telemetry.enabled")
	conf.BindFlag(cmd.Flags(), "listen", "telemetry.listen")
}

// Run serves until ctx is cancelled.
func Run(ctx context.Context, settings *conf.Settings, build *buildinfo.Context) error {
	a, err := app.New(settings)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := a.Close(); closeErr != nil {
			a.Log().Warn("shutdown error", logger.Error(closeErr))
		}
	}()

	log := a.Log()
	log.Info("densitycal serving",
		logger.String("version", build.Version()),
		logger.String("build_date", build.BuildDate()),
		logger.Duration("rebuild_interval", settings.Schedule.RebuildInterval),
		logger.Bool("telemetry", settings.Telemetry.Enabled))

	var endpoint *observability.Endpoint
	if settings.Telemetry.Enabled {
		if endpoint, err = observability.NewEndpoint(settings, a.Metrics, a.Logger.Module("observability")); err != nil {
			return err
		}
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return a.Scheduler().Run(ctx)
	})
	if endpoint != nil {
		g.Go(func() error {
			return endpoint.Run(ctx)
		})
	}

	if err := g.Wait(); err != nil {
		log.Error("serve stopped with error", logger.Error(err))
		return err
	}
	log.Info("densitycal stopped")
	return nil
}
