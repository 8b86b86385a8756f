package ports

import (
	"context"
	"errors"

	"github.com/kevin07696/ipg-gateway/internal/domain"
)

// ErrSecretNotFound is returned when no secret exists at the path
var ErrSecretNotFound = errors.New("secret not found")

// Secret represents a retrieved secret with metadata
type Secret struct {
	Value     string            // The secret value
	Version   string            // Secret version identifier
	Metadata  map[string]string // Additional secret metadata
	CreatedAt string            // When this version was created
}

// SecretStore is the port for a secret management backend.
// Backends: local filesystem, AWS Secrets Manager, HashiCorp Vault.
type SecretStore interface {
	// GetSecret retrieves a secret by its path/name. Path format depends on the backend:
	//   - Local: relative file path under the base directory
	//   - AWS: secret name or ARN
	//   - Vault: path under the KV mount
	// Returns an error wrapping ErrSecretNotFound when the secret does not exist.
	GetSecret(ctx context.Context, path string) (*Secret, error)

	// PutSecret creates or updates a secret and returns the new version identifier
	PutSecret(ctx context.Context, path string, value string, metadata map[string]string) (version string, err error)
}

// ConfigStore persists the plugin configuration (a key/value item list)
type ConfigStore interface {
	// Load returns the stored configuration, or the defaults when nothing is stored yet
	Load(ctx context.Context) (*domain.PluginConfiguration, error)

	// Save replaces the stored configuration
	Save(ctx context.Context, cfg *domain.PluginConfiguration) error
}
