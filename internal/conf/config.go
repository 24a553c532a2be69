// config.go: settings struct for densitycal and functions to load and write it.
package conf

import (
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/databirdlab/densitycal/internal/errors"
	"github.com/databirdlab/densitycal/internal/logger"
)

//go:embed config.yaml
var configFiles embed.FS

// Database backends
const (
	DatabaseSQLite = "sqlite"
	DatabaseMySQL  = "mysql"
)

// Model selectors accepted by predict and calibration.model
const (
	ModelBest      = "best"
	ModelLinear    = "linear"
	ModelQuadratic = "quadratic"
)

// Output formats for command reports
const (
	OutputYAML = "yaml"
	OutputJSON = "json"
)

// SQLiteSettings configures the default embedded store
type SQLiteSettings struct {
	Path string `yaml:"path"` // database file, created when missing
}

// MySQLSettings configures the shared MySQL store
type MySQLSettings struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
}

// DatabaseSettings selects and configures the persistence backend
type DatabaseSettings struct {
	Type               string         `yaml:"type"` // sqlite or mysql
	SQLite             SQLiteSettings `yaml:"sqlite"`
	MySQL              MySQLSettings  `yaml:"mysql"`
	SlowQueryThreshold time.Duration  `yaml:"slowquerythreshold"` // statements slower than this log at WARN
}

// CalibrationSettings holds the defaults threaded into every engine call.
// Command flags override them per invocation.
type CalibrationSettings struct {
	MaxDaysApart     int     `yaml:"maxdaysapart"`     // max |drone date - acoustic date| in days
	BufferMeters     float64 `yaml:"buffermeters"`     // ARU match radius around drone bounds
	MinAcousticCalls int     `yaml:"minacousticcalls"` // min calls for an (acoustic survey, ARU) pair to be paired
	MinCalls         int     `yaml:"mincalls"`         // min window call count for reads and training
	ListMinCalls     int     `yaml:"listmincalls"`     // min window call count for windows
	TopSpecies       int     `yaml:"topspecies"`       // species feature columns
	ListLimit        int     `yaml:"listlimit"`        // max rows returned by windows, 0 for all
	Model            string  `yaml:"model"`            // best, linear or quadratic
}

// TelemetrySettings controls the Prometheus endpoint of the serve command
type TelemetrySettings struct {
	Enabled bool   `yaml:"enabled"`
	Listen  string `yaml:"listen"` // host:port
}

// ScheduleSettings controls periodic window rebuilds in serve mode
type ScheduleSettings struct {
	RebuildInterval time.Duration `yaml:"rebuildinterval"` // 0 disables scheduled rebuilds
	RunOnStart      bool          `yaml:"runonstart"`
}

// OutputSettings controls how command results are printed
type OutputSettings struct {
	Format string `yaml:"format"` // yaml or json
}

// Settings contains all configuration options for densitycal.
type Settings struct {
	Debug bool `yaml:"debug"`

	Database    DatabaseSettings     `yaml:"database"`
	Calibration CalibrationSettings  `yaml:"calibration"`
	Logging     logger.LoggingConfig `yaml:"logging"`
	Telemetry   TelemetrySettings    `yaml:"telemetry"`
	Schedule    ScheduleSettings     `yaml:"schedule"`
	Output      OutputSettings       `yaml:"output"`
}

var (
	settingsInstance *Settings
	settingsMutex    sync.RWMutex
)

// Load reads config.yaml and DENSITYCAL_* environment variables on top of the
// defaults. An explicit configFile wins over the default search paths.
func Load(configFile string) (*Settings, error) {
	settingsMutex.Lock()
	defer settingsMutex.Unlock()

	if err := initViper(configFile); err != nil {
		return nil, errors.New(err).
			Component("configuration").
			Category(errors.CategoryConfiguration).
			Context("config_file", configFile).
			Build()
	}

	settings := &Settings{}
	if err := viper.Unmarshal(settings); err != nil {
		return nil, errors.New(fmt.Errorf("error unmarshaling config into struct: %w", err)).
			Component("configuration").
			Category(errors.CategoryConfiguration).
			Build()
	}

	if err := ValidateSettings(settings); err != nil {
		return nil, errors.New(fmt.Errorf("error validating settings: %w", err)).
			Component("configuration").
			Category(errors.CategoryValidation).
			Build()
	}

	settingsInstance = settings
	return settingsInstance, nil
}

// initViper applies defaults, environment bindings and the config file.
// A missing config file is not an error; defaults apply.
func initViper(configFile string) error {
	setDefaultConfig()

	if err := configureEnvironmentVariables(); err != nil {
		return err
	}

	viper.SetConfigType("yaml")
	if configFile != "" {
		viper.SetConfigFile(configFile)
		if err := viper.ReadInConfig(); err != nil {
			return fmt.Errorf("error reading config file %s: %w", configFile, err)
		}
		return nil
	}

	viper.SetConfigName("config")
	configPaths, err := GetDefaultConfigPaths()
	if err != nil {
		return fmt.Errorf("error getting default config paths: %w", err)
	}
	for _, path := range configPaths {
		viper.AddConfigPath(path)
	}

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("fatal error reading config file: %w", err)
	}
	return nil
}

// GetSettings returns the settings of the last successful Load
func GetSettings() *Settings {
	settingsMutex.RLock()
	defer settingsMutex.RUnlock()
	return settingsInstance
}

// DefaultConfig returns the embedded default config.yaml
func DefaultConfig() ([]byte, error) {
	data, err := fs.ReadFile(configFiles, "config.yaml")
	if err != nil {
		return nil, errors.New(err).
			Component("configuration").
			Category(errors.CategoryFileIO).
			Build()
	}
	return data, nil
}

// WriteDefaultConfig writes the embedded config.yaml to path unless a file
// already exists there.
func WriteDefaultConfig(path string) error {
	if _, err := os.Stat(path); err == nil {
		return errors.Newf("config file already exists: %s", path).
			Component("configuration").
			Category(errors.CategoryConflict).
			Build()
	}

	data, err := DefaultConfig()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("error creating directories for config file: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("error writing default config file: %w", err)
	}
	return nil
}

// SaveYAMLConfig writes settings to configPath through a temp file and rename.
// Comments of an existing file are not preserved.
func SaveYAMLConfig(configPath string, settings *Settings) error {
	yamlData, err := yaml.Marshal(settings)
	if err != nil {
		return fmt.Errorf("error marshaling settings to YAML: %w", err)
	}

	tempFile, err := os.CreateTemp(filepath.Dir(configPath), "config-*.yaml")
	if err != nil {
		return fmt.Errorf("error creating temporary file: %w", err)
	}
	tempName := tempFile.Name()
	defer func() { _ = os.Remove(tempName) }()

	if _, err := tempFile.Write(yamlData); err != nil {
		_ = tempFile.Close()
		return fmt.Errorf("error writing to temporary file: %w", err)
	}
	if err := tempFile.Close(); err != nil {
		return fmt.Errorf("error closing temporary file: %w", err)
	}

	if err := os.Rename(tempName, configPath); err != nil {
		return fmt.Errorf("error replacing config file: %w", err)
	}
	return nil
}
