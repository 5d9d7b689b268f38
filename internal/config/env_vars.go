package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

const (
	appNameVar   = "APP_NAME"
	envVar       = "ENV"
	logLevelVar  = "HRDASH_LOG_LEVEL"
	folderEnvVar = "HRDASH_DATA_DIR"
)

type EnvVars struct{}

var _ EnvConfig = EnvVars{}

func (EnvVars) GetAppName() string {
	return GetEnv(appNameVar, "HR Dashboard")
}

func (EnvVars) GetEnv() string {
	env := os.Getenv(envVar)
	if env == "" {
		return "DEV"
	}
	return env
}

func (EnvVars) GetLogLevel() string {
	return GetEnv(logLevelVar, "info")
}

// GetDataFolder is where local state lives, ~/.hrdash unless overridden
func (EnvVars) GetDataFolder() string {
	if dir := os.Getenv(folderEnvVar); dir != "" {
		return dir
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "./.hrdash"
	}
	return filepath.Join(home, ".hrdash")
}

func GetEnv(envVar, defaultValue string) string {
	value := os.Getenv(envVar)
	if value == "" {
		return defaultValue
	}
	return value
}

// GetEnvInt falls back to defaultValue (with a warning) when the variable is not an integer
func GetEnvInt(envVar string, defaultValue int) int {
	value := strings.TrimSpace(os.Getenv(envVar))
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		log.Warn().Str("var", envVar).Str("value", value).Msg("Not an integer, using default")
		return defaultValue
	}
	return n
}

func GetEnvFloat(envVar string, defaultValue float64) float64 {
	value := strings.TrimSpace(os.Getenv(envVar))
	if value == "" {
		return defaultValue
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		log.Warn().Str("var", envVar).Str("value", value).Msg("Not a number, using default")
		return defaultValue
	}
	return f
}

// GetEnvDuration accepts Go durations ("30s") or a bare number of seconds
func GetEnvDuration(envVar string, defaultValue time.Duration) time.Duration {
	value := strings.TrimSpace(os.Getenv(envVar))
	if value == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(value); err == nil {
		return time.Duration(secs) * time.Second
	}
	log.Warn().Str("var", envVar).Str("value", value).Msg("Not a duration, using default")
	return defaultValue
}
