package app

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/databirdlab/densitycal/internal/conf"
	"github.com/databirdlab/densitycal/internal/errors"
	"github.com/databirdlab/densitycal/internal/logger"
)

func testSettings(t *testing.T) *conf.Settings {
	t.Helper()
	return &conf.Settings{
		Database: conf.DatabaseSettings{
			Type:   conf.DatabaseSQLite,
			SQLite: conf.SQLiteSettings{Path: filepath.Join(t.TempDir(), "app.db")},
		},
		Calibration: conf.CalibrationSettings{
			MaxDaysApart:     7,
			BufferMeters:     50,
			MinAcousticCalls: 2,
		},
		Logging: logger.LoggingConfig{
			DefaultLevel: "error",
			Timezone:     "UTC",
			Console:      &logger.ConsoleOutput{Enabled: false},
			FileOutput:   &logger.FileOutput{Enabled: false},
		},
		Schedule: conf.ScheduleSettings{RebuildInterval: time.Minute},
	}
}

func TestNew(t *testing.T) {
	settings := testSettings(t)

	a, err := New(settings)
	require.NoError(t, err)

	assert.Equal(t, conf.DatabaseSQLite, a.Store.Dialect())
	assert.NotNil(t, a.Engine)
	assert.NotNil(t, a.Metrics.Registry())

	opts := a.RebuildOptions()
	assert.Equal(t, 7, opts.MaxDaysApart)
	assert.InDelta(t, 50.0, opts.BufferMeters, 1e-9)
	assert.Equal(t, 2, opts.MinAcousticCalls)

	result, err := a.Engine.RebuildWindows(t.Context(), opts)
	require.NoError(t, err)
	assert.Zero(t, result.CreatedWindows)

	require.NotNil(t, a.Scheduler())
	require.NoError(t, a.Close())
}

func TestNew_CountsErrorsWhileOpen(t *testing.T) {
	a, err := New(testSettings(t))
	require.NoError(t, err)

	_ = errors.Newf("boom").Component("calibration").Category(errors.CategoryCalibration).Build()

	families, err := a.Metrics.Registry().Gather()
	require.NoError(t, err)
	found := false
	for _, mf := range families {
		if mf.GetName() == "densitycal_errors_total" {
			found = true
		}
	}
	assert.True(t, found, "error hook feeds the error counter")
	require.NoError(t, a.Close())
}

func TestNew_UnknownDatabase(t *testing.T) {
	settings := testSettings(t)
	settings.Database.Type = "oracle"

	_, err := New(settings)
	require.Error(t, err)
	assert.True(t, errors.IsCategory(err, errors.CategoryConfiguration))
}
