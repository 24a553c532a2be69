// Package logger provides module-aware structured logging built on log/slog.
//
// Components receive a Logger and scope it with Module:
//
//	central, err := logger.NewCentralLogger(&settings.Logging)
//	if err != nil {
//	    return err
//	}
//	defer central.Close()
//
//	log := central.Module("calibration")
//	log.Info("windows rebuilt",
//	    logger.Int("windows_created", 12),
//	    logger.Int("skipped", 3))
//
// Console output is human-readable text. File output is JSON and rotates
// through lumberjack when max_size is set. Per-module files are configured
// under logging.modules:
//
//	logging:
//	  default_level: "info"
//	  console:
//	    enabled: true
//	  file_output:
//	    enabled: true
//	    path: "logs/densitycal.log"
//	    max_size: 50
//	  modules:
//	    datastore:
//	      enabled: true
//	      file_path: "logs/datastore.log"
//	      level: "debug"
//
// A trace ID stored with WithTraceID is attached by WithContext, which is how
// a single window rebuild run is correlated across modules.
//
// Tests use NewSlogLogger with a bytes.Buffer or io.Discard.
package logger

import (
	"context"
	"time"
	"unique"
)

// LogLevel represents log severity levels
type LogLevel string

const (
	LogLevelTrace LogLevel = "trace"
	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"
)

// Field represents a structured log field.
// Keys are interned using unique.Make() for memory efficiency - the same key
// string (e.g., "error", "survey_id") used across every log call shares
// a single allocation.
type Field struct {
	Key   string
	Value any
}

// internKey returns an interned version of the key string.
// This ensures repeated keys share the same underlying memory.
func internKey(key string) string {
	return unique.Make(key).Value()
}

// Pre-interned common keys for zero-allocation access
var (
	errorKey = internKey("error")
)

// Logger is the centralized logging interface for dependency injection
type Logger interface {
	// Module returns a logger scoped to a specific module
	Module(name string) Logger

	// Leveled logging methods
	Trace(msg string, fields ...Field)
	Debug(msg string, fields ...Field)
	Info(msg string, fields ...Field)
	Warn(msg string, fields ...Field)
	Error(msg string, fields ...Field)

	// Context-aware logging
	With(fields ...Field) Logger
	WithContext(ctx context.Context) Logger

	// Log with explicit level
	Log(level LogLevel, msg string, fields ...Field)

	// Flush ensures all buffered logs are written
	Flush() error
}

// Field constructors. Keys are interned so the handful of keys used by the
// calibration pipeline ("survey_id", "aru_id", "window_id") share storage.

// String creates a string field.
func String(key, value string) Field {
	return Field{Key: internKey(key), Value: value}
}

// Int creates an integer field, e.g. window or skip counts.
func Int(key string, value int) Field {
	return Field{Key: internKey(key), Value: value}
}

// Int64 creates a 64-bit integer field.
func Int64(key string, value int64) Field {
	return Field{Key: internKey(key), Value: value}
}

// Uint64 creates an unsigned 64-bit integer field. Entity ids are logged with
// this or Uint.
func Uint64(key string, value uint64) Field {
	return Field{Key: internKey(key), Value: value}
}

// Uint creates an unsigned integer field.
func Uint(key string, value uint) Field {
	return Field{Key: internKey(key), Value: uint64(value)}
}

// Float64 creates a 64-bit float field. Output is rounded to three decimals.
//
//	log.Info("model trained",
//	    logger.String("recommended_model", "linear"),
//	    logger.Float64("rmse", report.Summary.Linear.RMSE))
func Float64(key string, value float64) Field {
	return Field{Key: internKey(key), Value: value}
}

// Bool creates a boolean field.
func Bool(key string, value bool) Field {
	return Field{Key: internKey(key), Value: value}
}

// Error creates a field under the fixed key "error". A nil error yields a nil value.
//
//	if err := store.InsertWindows(ctx, windows); err != nil {
//	    log.Error("failed to persist windows",
//	        logger.Error(err),
//	        logger.Int("count", len(windows)))
//	    return err
//	}
func Error(err error) Field {
	if err == nil {
		return Field{Key: errorKey, Value: nil}
	}
	return Field{Key: errorKey, Value: err.Error()}
}

// Duration creates a duration field rendered as a string ("1.5s").
func Duration(key string, value time.Duration) Field {
	return Field{Key: internKey(key), Value: value.String()}
}

// Time creates a time field.
func Time(key string, value time.Time) Field {
	return Field{Key: internKey(key), Value: value}
}

// Any creates a field for arbitrary values. Prefer the typed constructors;
// the value must be JSON-serializable for file output.
func Any(key string, value any) Field {
	return Field{Key: internKey(key), Value: value}
}
