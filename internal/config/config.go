package config

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

type Config interface {
	EnvConfig
	APIConfig
	StorageConfig
	TransportConfig
	StubConfig
	CorsConfig
}

type EnvConfig interface {
	GetAppName() string
	GetEnv() string
	GetLogLevel() string
	GetDataFolder() string
}

type mainConfig struct {
	EnvVars
	API
	Storage
	Transport
	Stub
	Cors
}

// New loads .env files (when present) into the process environment and returns the config.
// Variables already set in the environment win over file values.
func New(envFiles ...string) Config {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if _, err := os.Stat(f); err != nil {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			log.Warn().Err(err).Str("file", f).Msg("Unable to load env file")
		}
	}
	return mainConfig{}
}
