package logger

import "path/filepath"

// LoggingConfig is the logging section of the application settings
type LoggingConfig struct {
	DefaultLevel  string                  `yaml:"default_level" json:"default_level" mapstructure:"default_level"`
	Timezone      string                  `yaml:"timezone" json:"timezone" mapstructure:"timezone"` // "Local", "UTC" or an IANA name
	Console       *ConsoleOutput          `yaml:"console" json:"console" mapstructure:"console"`
	FileOutput    *FileOutput             `yaml:"file_output" json:"file_output" mapstructure:"file_output"`
	ModuleOutputs map[string]ModuleOutput `yaml:"modules" json:"modules" mapstructure:"modules"`
	ModuleLevels  map[string]string       `yaml:"module_levels" json:"module_levels" mapstructure:"module_levels"`
}

// ConsoleOutput is human-readable text on stdout, without timestamps.
type ConsoleOutput struct {
	Enabled bool   `yaml:"enabled" json:"enabled" mapstructure:"enabled"`
	Level   string `yaml:"level" json:"level" mapstructure:"level"`
}

// FileOutput is JSON lines with RFC3339 timestamps.
type FileOutput struct {
	Enabled         bool   `yaml:"enabled" json:"enabled" mapstructure:"enabled"`
	Path            string `yaml:"path" json:"path" mapstructure:"path"`
	MaxSize         int    `yaml:"max_size" json:"max_size" mapstructure:"max_size"`                            // MB before rotation, 0 disables rotation
	MaxAge          int    `yaml:"max_age" json:"max_age" mapstructure:"max_age"`                               // days
	MaxRotatedFiles int    `yaml:"max_rotated_files" json:"max_rotated_files" mapstructure:"max_rotated_files"` // 0 keeps all
	Compress        bool   `yaml:"compress" json:"compress" mapstructure:"compress"`
	Level           string `yaml:"level" json:"level" mapstructure:"level"`
}

// ModuleOutput sends one module to its own file. Zero rotation values
// inherit from FileOutput.
type ModuleOutput struct {
	Enabled         bool   `yaml:"enabled" json:"enabled" mapstructure:"enabled"`
	FilePath        string `yaml:"file_path" json:"file_path" mapstructure:"file_path"`
	Level           string `yaml:"level" json:"level" mapstructure:"level"`
	ConsoleAlso     bool   `yaml:"console_also" json:"console_also" mapstructure:"console_also"`
	MaxSize         int    `yaml:"max_size" json:"max_size" mapstructure:"max_size"`
	MaxAge          int    `yaml:"max_age" json:"max_age" mapstructure:"max_age"`
	MaxRotatedFiles int    `yaml:"max_rotated_files" json:"max_rotated_files" mapstructure:"max_rotated_files"`
	Compress        *bool  `yaml:"compress,omitempty" json:"compress,omitempty" mapstructure:"compress"`
}

// Defaults, mirrored in conf/defaults.go.
const (
	DefaultLogLevel          = "info"
	DefaultLogPath           = "logs/densitycal.log"
	DefaultDatastoreLogFile  = "datastore.log"
	DefaultSchedulerLogFile  = "scheduler.log"
	DefaultMaxSize           = 50
	DefaultMaxAge            = 30
	DefaultMaxRotatedFiles   = 5
	DefaultCompressLogs      = false
	DefaultConsoleEnabled    = true
	DefaultFileEnabled       = false
	DefaultModuleLevelForSQL = "info"
)

// ensureModuleOutput places a module file next to the main log file.
func ensureModuleOutput(cfg *LoggingConfig, module, fileName string) {
	if _, exists := cfg.ModuleOutputs[module]; !exists {
		cfg.ModuleOutputs[module] = ModuleOutput{
			Enabled:  cfg.FileOutput.Enabled,
			FilePath: filepath.Join(filepath.Dir(cfg.FileOutput.Path), fileName),
			Level:    DefaultModuleLevelForSQL,
		}
	}
}

// applyConfigDefaults fills nil sections so a sparse config still logs to
// the console. Module files follow the main file's enabled flag.
func applyConfigDefaults(cfg *LoggingConfig) {
	if cfg == nil {
		return
	}

	if cfg.DefaultLevel == "" {
		cfg.DefaultLevel = DefaultLogLevel
	}

	if cfg.Console == nil {
		cfg.Console = &ConsoleOutput{
			Enabled: DefaultConsoleEnabled,
			Level:   cfg.DefaultLevel,
		}
	}

	if cfg.FileOutput == nil {
		cfg.FileOutput = &FileOutput{
			Enabled:         DefaultFileEnabled,
			Path:            DefaultLogPath,
			Level:           cfg.DefaultLevel,
			MaxSize:         DefaultMaxSize,
			MaxAge:          DefaultMaxAge,
			MaxRotatedFiles: DefaultMaxRotatedFiles,
			Compress:        DefaultCompressLogs,
		}
	}

	if cfg.ModuleOutputs == nil {
		cfg.ModuleOutputs = make(map[string]ModuleOutput)
	}

	// SQL tracing is noisy, keep it out of the main file
	ensureModuleOutput(cfg, "datastore", DefaultDatastoreLogFile)
	ensureModuleOutput(cfg, "scheduler", DefaultSchedulerLogFile)
}
