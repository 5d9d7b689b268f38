package config

import (
	"fmt"
	"strings"
	"time"
)

// StubConfig configures the stand-in backend server
type StubConfig interface {
	GetPort() string
	GetJWTSecret() string
	GetTokenExpiry() time.Duration
	GetRememberMeExpiry() time.Duration
	GetAdminPassword() string
}

type Stub struct{}

var _ StubConfig = Stub{}

func (Stub) GetPort() string {
	port := GetEnv("PORT", "8080")
	if !strings.HasPrefix(port, ":") {
		port = fmt.Sprintf(":%s", port)
	}
	return port
}

func (Stub) GetJWTSecret() string {
	return GetEnv("HRDASH_JWT_SECRET", "dev-secret-change-me")
}

func (Stub) GetTokenExpiry() time.Duration {
	return GetEnvDuration("HRDASH_TOKEN_EXPIRY", 24*time.Hour)
}

func (Stub) GetRememberMeExpiry() time.Duration {
	return GetEnvDuration("HRDASH_REMEMBER_ME_EXPIRY", 7*24*time.Hour)
}

func (Stub) GetAdminPassword() string {
	return GetEnv("HRDASH_ADMIN_PASSWORD", "admin123")
}
