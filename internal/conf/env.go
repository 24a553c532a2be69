// env.go: environment variable overrides
package conf

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment override, e.g.
// DENSITYCAL_DATABASE_MYSQL_PASSWORD.
const EnvPrefix = "DENSITYCAL"

// envBinding holds metadata for a validated environment variable
type envBinding struct {
	ConfigKey string
	EnvVar    string
	Validate  func(string) error
}

func getEnvBindings() []envBinding {
	return []envBinding{
		{"debug", "DENSITYCAL_DEBUG", validateEnvBool},
		{"database.type", "DENSITYCAL_DATABASE_TYPE", validateEnvDatabaseType},
		{"database.mysql.port", "DENSITYCAL_DATABASE_MYSQL_PORT", validateEnvPort},
		{"calibration.maxdaysapart", "DENSITYCAL_CALIBRATION_MAXDAYSAPART", validateEnvNonNegativeInt},
		{"calibration.buffermeters", "DENSITYCAL_CALIBRATION_BUFFERMETERS", validateEnvNonNegativeFloat},
		{"calibration.minacousticcalls", "DENSITYCAL_CALIBRATION_MINACOUSTICCALLS", validateEnvNonNegativeInt},
		{"calibration.mincalls", "DENSITYCAL_CALIBRATION_MINCALLS", validateEnvNonNegativeInt},
		{"calibration.listmincalls", "DENSITYCAL_CALIBRATION_LISTMINCALLS", validateEnvNonNegativeInt},
		{"calibration.topspecies", "DENSITYCAL_CALIBRATION_TOPSPECIES", validateEnvNonNegativeInt},
		{"schedule.rebuildinterval", "DENSITYCAL_SCHEDULE_REBUILDINTERVAL", validateEnvDuration},
	}
}

// configureEnvironmentVariables enables DENSITYCAL_* overrides for every key
// and validates the ones with known shapes.
func configureEnvironmentVariables() error {
	viper.SetEnvPrefix(EnvPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	var problems []string
	for _, b := range getEnvBindings() {
		if err := viper.BindEnv(b.ConfigKey, b.EnvVar); err != nil {
			problems = append(problems, fmt.Sprintf("failed to bind %s: %v", b.EnvVar, err))
			continue
		}
		if value := os.Getenv(b.EnvVar); value != "" && b.Validate != nil {
			if err := b.Validate(value); err != nil {
				problems = append(problems, fmt.Sprintf("invalid %s value %q: %v", b.EnvVar, value, err))
			}
		}
	}

	if len(problems) > 0 {
		return fmt.Errorf("environment variable issues:\n  - %s", strings.Join(problems, "\n  - "))
	}
	return nil
}

func validateEnvBool(value string) error {
	if _, err := strconv.ParseBool(value); err != nil {
		return fmt.Errorf("must be true or false")
	}
	return nil
}

func validateEnvDatabaseType(value string) error {
	switch value {
	case DatabaseSQLite, DatabaseMySQL:
		return nil
	}
	return fmt.Errorf("must be %s or %s", DatabaseSQLite, DatabaseMySQL)
}

func validateEnvPort(value string) error {
	port, err := strconv.Atoi(value)
	if err != nil || port < 1 || port > 65535 {
		return fmt.Errorf("must be a port number between 1 and 65535")
	}
	return nil
}

func validateEnvNonNegativeInt(value string) error {
	n, err := strconv.Atoi(value)
	if err != nil || n < 0 {
		return fmt.Errorf("must be a non-negative integer")
	}
	return nil
}

func validateEnvNonNegativeFloat(value string) error {
	f, err := strconv.ParseFloat(value, 64)
	if err != nil || f < 0 {
		return fmt.Errorf("must be a non-negative number")
	}
	return nil
}

func validateEnvDuration(value string) error {
	if _, err := time.ParseDuration(value); err != nil {
		return fmt.Errorf("must be a duration such as 30m or 1h")
	}
	return nil
}
