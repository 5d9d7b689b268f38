package config

import (
	"strings"
	"time"
)

type APIConfig interface {
	GetAPIBaseURL() string
	GetHTTPTimeout() time.Duration
}

type API struct{}

var _ APIConfig = API{}

// GetAPIBaseURL returns the backend origin without a trailing slash (e.g. "http://localhost:8080")
func (API) GetAPIBaseURL() string {
	return strings.TrimRight(GetEnv("HRDASH_API_BASE_URL", "http://localhost:8080"), "/")
}

func (API) GetHTTPTimeout() time.Duration {
	return GetEnvDuration("HRDASH_HTTP_TIMEOUT", 30*time.Second)
}
