package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration
type Config struct {
	Server      ServerConfig
	IPG         IPGConfig
	ConfigStore ConfigStoreConfig
	RateLimit   RateLimitConfig
	Logger      LoggerConfig
	Environment string
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port        int
	Host        string
	MetricsPort int
}

// IPGConfig holds IPG order service configuration.
// Credentials live in the plugin configuration, not here.
type IPGConfig struct {
	SandboxURL    string
	ProductionURL string
	Timeout       time.Duration
	CertDir       string // Where temporary client certificates are written
}

// Config store backends
const (
	StoreLocal = "local"
	StoreAWS   = "aws"
	StoreVault = "vault"
)

// Vault auth methods
const (
	VaultAuthToken   = "token"
	VaultAuthAppRole = "approle"
)

// ConfigStoreConfig selects where the plugin configuration is kept
type ConfigStoreConfig struct {
	Backend         string // local, aws or vault
	LocalPath       string // Base directory for the local backend
	SecretPath      string // Secret name/path holding the configuration
	AWSRegion       string
	AWSProfile      string
	AWSEndpoint     string
	VaultAddr       string
	VaultAuthMethod string // token or approle
	VaultToken      string
	VaultRoleID     string
	VaultSecretID   string
	VaultNamespace  string // Vault Enterprise only
	VaultMount      string
	VaultKVVersion  string // v1 or v2
	VaultSkipVerify bool
}

// RateLimitConfig holds per-client request limits
type RateLimitConfig struct {
	RequestsPerSecond float64
	Burst             int
}

// LoggerConfig holds logging configuration
type LoggerConfig struct {
	Level       string // debug, info, warn, error
	Development bool
}

// LoadFromEnv loads configuration from environment variables
func LoadFromEnv() (*Config, error) {
	environment := getEnv("ENVIRONMENT", "development")

	cfg := &Config{
		Server: ServerConfig{
			Port:        getEnvAsInt("HTTP_PORT", 8080),
			Host:        getEnv("HTTP_HOST", "0.0.0.0"),
			MetricsPort: getEnvAsInt("METRICS_PORT", 9090),
		},
		IPG: IPGConfig{
			SandboxURL:    getEnv("IPG_SANDBOX_URL", "https://test.ipg-online.com/ipgapi/services"),
			ProductionURL: getEnv("IPG_PRODUCTION_URL", "https://www.ipg-online.com/ipgapi/services"),
			Timeout:       getEnvAsDuration("IPG_TIMEOUT", 45*time.Second),
			CertDir:       getEnv("IPG_CERT_DIR", ""),
		},
		ConfigStore: ConfigStoreConfig{
			Backend:         getEnv("CONFIG_STORE", StoreLocal),
			LocalPath:       getEnv("CONFIG_STORE_PATH", "./secrets"),
			SecretPath:      getEnv("CONFIG_SECRET_PATH", "ipg/plugin"),
			AWSRegion:       getEnv("AWS_REGION", "us-east-1"),
			AWSProfile:      getEnv("AWS_PROFILE", ""),
			AWSEndpoint:     getEnv("AWS_ENDPOINT", ""),
			VaultAddr:       getEnv("VAULT_ADDR", "http://127.0.0.1:8200"),
			VaultAuthMethod: getEnv("VAULT_AUTH_METHOD", VaultAuthToken),
			VaultToken:      getEnv("VAULT_TOKEN", ""),
			VaultRoleID:     getEnv("VAULT_ROLE_ID", ""),
			VaultSecretID:   getEnv("VAULT_SECRET_ID", ""),
			VaultNamespace:  getEnv("VAULT_NAMESPACE", ""),
			VaultMount:      getEnv("VAULT_MOUNT", "secret"),
			VaultKVVersion:  getEnv("VAULT_KV_VERSION", "v2"),
			VaultSkipVerify: getEnvAsBool("VAULT_SKIP_VERIFY", false),
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: getEnvAsFloat("RATE_LIMIT_RPS", 20),
			Burst:             getEnvAsInt("RATE_LIMIT_BURST", 40),
		},
		Logger: LoggerConfig{
			Level:       getEnv("LOG_LEVEL", "info"),
			Development: environment != "production",
		},
		Environment: environment,
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks cross-field constraints
func (c *Config) Validate() error {
	switch c.ConfigStore.Backend {
	case StoreLocal, StoreAWS:
	case StoreVault:
		if err := c.ConfigStore.validateVault(); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unknown CONFIG_STORE %q (want local, aws or vault)", c.ConfigStore.Backend)
	}

	if c.ConfigStore.SecretPath == "" {
		return fmt.Errorf("CONFIG_SECRET_PATH is required")
	}
	if c.IPG.Timeout <= 0 {
		return fmt.Errorf("IPG_TIMEOUT must be positive")
	}
	if c.RateLimit.RequestsPerSecond <= 0 || c.RateLimit.Burst <= 0 {
		return fmt.Errorf("RATE_LIMIT_RPS and RATE_LIMIT_BURST must be positive")
	}

	return nil
}

func (c ConfigStoreConfig) validateVault() error {
	switch c.VaultAuthMethod {
	case VaultAuthToken:
		if c.VaultToken == "" {
			return fmt.Errorf("VAULT_TOKEN is required when VAULT_AUTH_METHOD=token")
		}
	case VaultAuthAppRole:
		if c.VaultRoleID == "" || c.VaultSecretID == "" {
			return fmt.Errorf("VAULT_ROLE_ID and VAULT_SECRET_ID are required when VAULT_AUTH_METHOD=approle")
		}
	default:
		return fmt.Errorf("unknown VAULT_AUTH_METHOD %q (want token or approle)", c.VaultAuthMethod)
	}

	if c.VaultKVVersion != "v1" && c.VaultKVVersion != "v2" {
		return fmt.Errorf("unknown VAULT_KV_VERSION %q (want v1 or v2)", c.VaultKVVersion)
	}
	return nil
}

// Helper functions

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

// getEnvAsDuration accepts Go durations ("30s") or plain seconds ("30")
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(valueStr); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(valueStr); err == nil {
		return time.Duration(secs) * time.Second
	}
	return defaultValue
}
