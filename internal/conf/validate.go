// validate.go: settings validation
package conf

import (
	"fmt"
	"slices"
	"strings"
)

// ValidationError represents a collection of validation errors
type ValidationError struct {
	Errors []string
}

// Error returns a string representation of the validation errors
func (ve ValidationError) Error() string {
	return fmt.Sprintf("Validation errors: %s", strings.Join(ve.Errors, "; "))
}

// ValidateSettings checks every section and reports all problems at once.
func ValidateSettings(settings *Settings) error {
	ve := ValidationError{}

	ve.Errors = append(ve.Errors, validateDatabaseSettings(&settings.Database)...)
	ve.Errors = append(ve.Errors, ValidateCalibrationSettings(&settings.Calibration)...)
	ve.Errors = append(ve.Errors, validateScheduleSettings(&settings.Schedule, &settings.Telemetry)...)

	if !slices.Contains([]string{OutputYAML, OutputJSON}, settings.Output.Format) {
		ve.Errors = append(ve.Errors, fmt.Sprintf("output.format must be %s or %s, got %q", OutputYAML, OutputJSON, settings.Output.Format))
	}

	if len(ve.Errors) > 0 {
		return ve
	}
	return nil
}

func validateDatabaseSettings(db *DatabaseSettings) []string {
	var errs []string

	switch db.Type {
	case DatabaseSQLite:
		if db.SQLite.Path == "" {
			errs = append(errs, "database.sqlite.path must be set")
		}
	case DatabaseMySQL:
		if db.MySQL.Host == "" {
			errs = append(errs, "database.mysql.host must be set")
		}
		if db.MySQL.Port < 1 || db.MySQL.Port > 65535 {
			errs = append(errs, fmt.Sprintf("database.mysql.port out of range: %d", db.MySQL.Port))
		}
		if db.MySQL.Database == "" {
			errs = append(errs, "database.mysql.database must be set")
		}
	default:
		errs = append(errs, fmt.Sprintf("database.type must be %s or %s, got %q", DatabaseSQLite, DatabaseMySQL, db.Type))
	}

	if db.SlowQueryThreshold < 0 {
		errs = append(errs, "database.slowquerythreshold must not be negative")
	}
	return errs
}

// ValidateCalibrationSettings checks thresholds and the model selector. Also
// used on per-command overrides.
func ValidateCalibrationSettings(c *CalibrationSettings) []string {
	var errs []string

	if c.MaxDaysApart < 0 {
		errs = append(errs, fmt.Sprintf("calibration.maxdaysapart must be >= 0, got %d", c.MaxDaysApart))
	}
	if c.BufferMeters < 0 {
		errs = append(errs, fmt.Sprintf("calibration.buffermeters must be >= 0, got %g", c.BufferMeters))
	}
	if c.MinAcousticCalls < 0 {
		errs = append(errs, fmt.Sprintf("calibration.minacousticcalls must be >= 0, got %d", c.MinAcousticCalls))
	}
	if c.MinCalls < 0 {
		errs = append(errs, fmt.Sprintf("calibration.mincalls must be >= 0, got %d", c.MinCalls))
	}
	if c.ListMinCalls < 0 {
		errs = append(errs, fmt.Sprintf("calibration.listmincalls must be >= 0, got %d", c.ListMinCalls))
	}
	if c.TopSpecies < 0 {
		errs = append(errs, fmt.Sprintf("calibration.topspecies must be >= 0, got %d", c.TopSpecies))
	}
	if c.ListLimit < 0 {
		errs = append(errs, fmt.Sprintf("calibration.listlimit must be >= 0, got %d", c.ListLimit))
	}
	if !IsValidModel(c.Model) {
		errs = append(errs, fmt.Sprintf("calibration.model must be one of best, linear, quadratic, got %q", c.Model))
	}
	return errs
}

func validateScheduleSettings(s *ScheduleSettings, t *TelemetrySettings) []string {
	var errs []string
	if s.RebuildInterval < 0 {
		errs = append(errs, "schedule.rebuildinterval must not be negative")
	}
	if t.Enabled && t.Listen == "" {
		errs = append(errs, "telemetry.listen must be set when telemetry is enabled")
	}
	return errs
}

// IsValidModel reports whether name is a known model selector
func IsValidModel(name string) bool {
	switch name {
	case ModelBest, ModelLinear, ModelQuadratic:
		return true
	}
	return false
}
