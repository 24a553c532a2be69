// Package app wires configuration, logging, metrics and the datastore into
// a calibration engine. Commands build one App per invocation.
package app

import (
	"context"

	"github.com/databirdlab/densitycal/internal/calibration"
	"github.com/databirdlab/densitycal/internal/conf"
	"github.com/databirdlab/densitycal/internal/datastore"
	"github.com/databirdlab/densitycal/internal/errors"
	"github.com/databirdlab/densitycal/internal/logger"
	"github.com/databirdlab/densitycal/internal/observability"
)

// App holds the long-lived components of one process.
type App struct {
	Settings *conf.Settings
	Logger   *logger.CentralLogger
	Metrics  *observability.Metrics
	Store    *datastore.Store
	Engine   *calibration.Engine

	log logger.Logger
}

// New opens the configured store and builds the engine. The returned App
// must be closed.
func New(settings *conf.Settings) (*App, error) {
	logCfg := settings.Logging
	if settings.Debug {
		logCfg.DefaultLevel = "debug"
		if logCfg.Console != nil {
			console := *logCfg.Console
			console.Level = "debug"
			logCfg.Console = &console
		}
	}
	central, err := logger.NewCentralLogger(&logCfg)
	if err != nil {
		return nil, errors.New(err).
			Component("app").
			Category(errors.CategoryConfiguration).
			Build()
	}
	logger.SetGlobal(central)
	log := central.Module("app")

	m, err := observability.NewMetrics()
	if err != nil {
		_ = central.Close()
		return nil, err
	}
	errors.AddErrorHook(m.Errors.Hook())

	store, err := datastore.Open(&settings.Database, central.Module("datastore"))
	if err != nil {
		errors.ClearErrorHooks()
		_ = central.Close()
		return nil, err
	}
	store.SetMetrics(m.Datastore)

	log.Debug("application initialised", logger.String("database", store.Dialect()))

	return &App{
		Settings: settings,
		Logger:   central,
		Metrics:  m,
		Store:    store,
		Engine:   calibration.New(store, central.Module("calibration"), m.Calibration),
		log:      log,
	}, nil
}

// RebuildOptions returns the configured pairing thresholds.
func (a *App) RebuildOptions() calibration.RebuildOptions {
	return calibration.RebuildOptionsFrom(&a.Settings.Calibration)
}

// Scheduler returns the configured periodic rebuild loop.
func (a *App) Scheduler() *calibration.Scheduler {
	s := a.Settings.Schedule
	scheduler := calibration.NewScheduler(a.Engine, a.RebuildOptions(), s.RebuildInterval, s.RunOnStart)
	scheduler.OnRebuild = func(_ *calibration.RebuildResult, err error) {
		if err != nil {
			return
		}
		if refreshErr := a.Store.RefreshRowCounts(context.Background()); refreshErr != nil {
			a.log.Warn("failed to refresh row counts", logger.Error(refreshErr))
		}
	}
	return scheduler
}

// Log returns the app module logger.
func (a *App) Log() logger.Logger {
	return a.log
}

// Close releases the store, flushes logs and detaches the error hook.
func (a *App) Close() error {
	var errs []error
	if err := a.Store.Close(); err != nil {
		errs = append(errs, err)
	}
	errors.ClearErrorHooks()
	if err := a.Logger.Close(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}
