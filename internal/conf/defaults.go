// conf/defaults.go default values for settings
package conf

import (
	"time"

	"github.com/spf13/viper"

	"github.com/databirdlab/densitycal/internal/logger"
)

// Calibration defaults
const (
	DefaultMaxDaysApart     = 14
	DefaultBufferMeters     = 150.0
	DefaultMinAcousticCalls = 1
	DefaultMinCalls         = 1
	DefaultListMinCalls     = 0
	DefaultTopSpecies       = 5
	DefaultListLimit        = 200
)

// Sets default values for the configuration.
func setDefaultConfig() {
	viper.SetDefault("debug", false)

	viper.SetDefault("database.type", DatabaseSQLite)
	viper.SetDefault("database.sqlite.path", "densitycal.db")
	viper.SetDefault("database.mysql.host", "localhost")
	viper.SetDefault("database.mysql.port", 3306)
	viper.SetDefault("database.mysql.username", "densitycal")
	viper.SetDefault("database.mysql.password", "")
	viper.SetDefault("database.mysql.database", "densitycal")
	viper.SetDefault("database.slowquerythreshold", 200*time.Millisecond)

	viper.SetDefault("calibration.maxdaysapart", DefaultMaxDaysApart)
	viper.SetDefault("calibration.buffermeters", DefaultBufferMeters)
	viper.SetDefault("calibration.minacousticcalls", DefaultMinAcousticCalls)
	viper.SetDefault("calibration.mincalls", DefaultMinCalls)
	viper.SetDefault("calibration.listmincalls", DefaultListMinCalls)
	viper.SetDefault("calibration.topspecies", DefaultTopSpecies)
	viper.SetDefault("calibration.listlimit", DefaultListLimit)
	viper.SetDefault("calibration.model", ModelBest)

	viper.SetDefault("logging.default_level", logger.DefaultLogLevel)
	viper.SetDefault("logging.timezone", "Local")
	viper.SetDefault("logging.console.enabled", logger.DefaultConsoleEnabled)
	viper.SetDefault("logging.console.level", logger.DefaultLogLevel)
	viper.SetDefault("logging.file_output.enabled", logger.DefaultFileEnabled)
	viper.SetDefault("logging.file_output.path", logger.DefaultLogPath)
	viper.SetDefault("logging.file_output.level", logger.DefaultLogLevel)
	viper.SetDefault("logging.file_output.max_size", logger.DefaultMaxSize)
	viper.SetDefault("logging.file_output.max_age", logger.DefaultMaxAge)
	viper.SetDefault("logging.file_output.max_rotated_files", logger.DefaultMaxRotatedFiles)
	viper.SetDefault("logging.file_output.compress", logger.DefaultCompressLogs)

	viper.SetDefault("telemetry.enabled", false)
	viper.SetDefault("telemetry.listen", "0.0.0.0:8090")

	viper.SetDefault("schedule.rebuildinterval", time.Hour)
	viper.SetDefault("schedule.runonstart", true)

	viper.SetDefault("output.format", OutputYAML)
}
