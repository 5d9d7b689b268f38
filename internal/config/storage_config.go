package config

import (
	"path/filepath"
	"strings"
)

// Storage backends for the persisted session
const (
	StoreFile     = "file"
	StoreSQLite   = "sqlite"
	StorePostgres = "postgres"
	StoreRedis    = "redis"
	StoreMemory   = "memory"
)

type StorageConfig interface {
	GetStoreKind() string
	GetStorePath() string
	GetDatabaseURL() string
	GetRedisAddr() string
	GetRedisPrefix() string
}

type Storage struct{}

var _ StorageConfig = Storage{}

func (Storage) GetStoreKind() string {
	return strings.ToLower(GetEnv("HRDASH_STORE", StoreFile))
}

// GetStorePath is the session file (file store) or database file (sqlite store)
func (s Storage) GetStorePath() string {
	if p := GetEnv("HRDASH_STORE_PATH", ""); p != "" {
		return p
	}
	name := "session.json"
	if s.GetStoreKind() == StoreSQLite {
		name = "session.db"
	}
	return filepath.Join(EnvVars{}.GetDataFolder(), name)
}

func (Storage) GetDatabaseURL() string {
	return GetEnv("HRDASH_DATABASE_URL", "")
}

func (Storage) GetRedisAddr() string {
	return GetEnv("HRDASH_REDIS_ADDR", "localhost:6379")
}

func (Storage) GetRedisPrefix() string {
	return GetEnv("HRDASH_REDIS_PREFIX", "hrdash")
}
