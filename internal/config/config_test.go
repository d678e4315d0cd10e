package config

import (
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func TestLoad(t *testing.T) {
	tests := []struct {
		name     string
		envVars  map[string]string
		validate func(t *testing.T, cfg *Config)
	}{
		{
			name:    "load default configuration",
			envVars: map[string]string{},
			validate: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "0.0.0.0", cfg.ServerHost)
				assert.Equal(t, 8080, cfg.ServerPort)
				assert.Equal(t, "postgres", cfg.DBDriver)
				assert.Equal(t, 25, cfg.DBMaxOpenConnections)
				assert.Equal(t, 5, cfg.DBMaxIdleConnections)
				assert.Equal(t, 5*time.Minute, cfg.DBConnMaxLifetime)
				assert.Equal(t, "info", cfg.LogLevel)
				assert.Equal(t, "HS256", cfg.AuthSigningAlgorithm)
				assert.Equal(t, 30*time.Minute, cfg.AuthTokenExpiration)
				assert.False(t, cfg.AuthCookieSecure)
				assert.True(t, cfg.RateLimitLoginEnabled)
				assert.Equal(t, "voces", cfg.MetricsNamespace)
			},
		},
		{
			name: "load custom database configuration",
			envVars: map[string]string{
				"DB_DRIVER":               "mysql",
				"DB_CONNECTION_STRING":    "user:password@tcp(localhost:3306)/voces",
				"DB_MAX_OPEN_CONNECTIONS": "50",
				"DB_CONN_MAX_LIFETIME":    "10",
			},
			validate: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "mysql", cfg.DBDriver)
				assert.Equal(t, "user:password@tcp(localhost:3306)/voces", cfg.DBConnectionString)
				assert.Equal(t, 50, cfg.DBMaxOpenConnections)
				assert.Equal(t, 10*time.Minute, cfg.DBConnMaxLifetime)
			},
		},
		{
			name: "load custom token lifetime",
			envVars: map[string]string{
				"AUTH_TOKEN_EXPIRATION_SECONDS": "600",
			},
			validate: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 10*time.Minute, cfg.AuthTokenExpiration)
			},
		},
		{
			name: "load custom auth configuration",
			envVars: map[string]string{
				"AUTH_SIGNING_SECRET":    testSecret,
				"AUTH_SIGNING_ALGORITHM": "HS512",
				"AUTH_COOKIE_SECURE":     "true",
				"AUTH_COOKIE_DOMAIN":     "voces.example",
			},
			validate: func(t *testing.T, cfg *Config) {
				assert.Equal(t, testSecret, cfg.AuthSigningSecret)
				assert.Equal(t, "HS512", cfg.AuthSigningAlgorithm)
				assert.True(t, cfg.AuthCookieSecure)
				assert.Equal(t, "voces.example", cfg.AuthCookieDomain)
			},
		},
		{
			name: "load custom login rate limit",
			envVars: map[string]string{
				"RATE_LIMIT_LOGIN_ENABLED":          "false",
				"RATE_LIMIT_LOGIN_REQUESTS_PER_SEC": "2.5",
				"RATE_LIMIT_LOGIN_BURST":            "3",
			},
			validate: func(t *testing.T, cfg *Config) {
				assert.False(t, cfg.RateLimitLoginEnabled)
				assert.Equal(t, 2.5, cfg.RateLimitLoginRequestsPerSec)
				assert.Equal(t, 3, cfg.RateLimitLoginBurst)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			os.Clearenv()
			for key, value := range tt.envVars {
				require.NoError(t, os.Setenv(key, value))
			}

			tt.validate(t, Load())
		})
	}
}

func validConfig() *Config {
	return &Config{
		DBDriver:                     "postgres",
		AuthSigningSecret:            testSecret,
		AuthSigningAlgorithm:         "HS256",
		AuthTokenExpiration:          30 * time.Minute,
		RateLimitLoginEnabled:        true,
		RateLimitLoginRequestsPerSec: 1,
		RateLimitLoginBurst:          5,
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(cfg *Config)
		wantErr string
	}{
		{name: "valid", mutate: func(cfg *Config) {}},
		{
			name:    "missing secret",
			mutate:  func(cfg *Config) { cfg.AuthSigningSecret = "" },
			wantErr: "AUTH_SIGNING_SECRET is required",
		},
		{
			name:    "short secret",
			mutate:  func(cfg *Config) { cfg.AuthSigningSecret = "short" },
			wantErr: "at least 32 bytes",
		},
		{
			name: "short ciphertext allowed with keeper",
			mutate: func(cfg *Config) {
				cfg.AuthSigningSecret = "c2hvcnQ="
				cfg.AuthSigningSecretKeeperURI = "base64key://"
			},
		},
		{
			name: "keeper ciphertext must be base64",
			mutate: func(cfg *Config) {
				cfg.AuthSigningSecret = "not base64!"
				cfg.AuthSigningSecretKeeperURI = "base64key://"
			},
			wantErr: "base64",
		},
		{
			name:    "unsupported algorithm",
			mutate:  func(cfg *Config) { cfg.AuthSigningAlgorithm = "RS256" },
			wantErr: "not supported",
		},
		{
			name:    "non-positive token lifetime",
			mutate:  func(cfg *Config) { cfg.AuthTokenExpiration = 0 },
			wantErr: "AUTH_TOKEN_EXPIRATION_SECONDS",
		},
		{
			name:    "unsupported driver",
			mutate:  func(cfg *Config) { cfg.DBDriver = "sqlite" },
			wantErr: "unsupported database driver",
		},
		{
			name:    "rate limit without burst",
			mutate:  func(cfg *Config) { cfg.RateLimitLoginBurst = 0 },
			wantErr: "login rate limit",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, strings.Contains(err.Error(), tt.wantErr), err.Error())
		})
	}
}

func TestConfig_GetGinMode(t *testing.T) {
	assert.Equal(t, "debug", (&Config{LogLevel: "debug"}).GetGinMode())
	assert.Equal(t, "release", (&Config{LogLevel: "info"}).GetGinMode())
	assert.Equal(t, "release", (&Config{LogLevel: "bogus"}).GetGinMode())
}
