package secrets

import (
	"context"
	"errors"
	"fmt"

	"github.com/kevin07696/ipg-gateway/internal/adapters/ports"
	"github.com/kevin07696/ipg-gateway/internal/domain"
	"go.uber.org/zap"
)

// configStore keeps the plugin configuration as one JSON document in a SecretStore.
// The document holds the client key and password, so it never goes anywhere else.
type configStore struct {
	secrets ports.SecretStore
	path    string
	logger  *zap.Logger
}

// NewConfigStore creates a ConfigStore persisting to path in secrets
func NewConfigStore(secrets ports.SecretStore, path string, logger *zap.Logger) ports.ConfigStore {
	return &configStore{
		secrets: secrets,
		path:    path,
		logger:  logger,
	}
}

// Load reads the configuration, returning the defaults when none is stored yet
func (s *configStore) Load(ctx context.Context) (*domain.PluginConfiguration, error) {
	secret, err := s.secrets.GetSecret(ctx, s.path)
	if err != nil {
		if errors.Is(err, ports.ErrSecretNotFound) {
			s.logger.Debug("No stored plugin configuration, using defaults", zap.String("path", s.path))
			return domain.DefaultPluginConfiguration(), nil
		}
		return nil, fmt.Errorf("load plugin configuration: %w", err)
	}

	cfg := domain.DefaultPluginConfiguration()
	var stored domain.PluginConfiguration
	if err := jsonAPI.UnmarshalFromString(secret.Value, &stored); err != nil {
		return nil, fmt.Errorf("decode plugin configuration: %w", err)
	}

	cfg.Active = stored.Active
	cfg.Merge(stored.Configuration)

	return cfg, nil
}

// Save writes the configuration as a new secret version
func (s *configStore) Save(ctx context.Context, cfg *domain.PluginConfiguration) error {
	data, err := jsonAPI.MarshalToString(cfg)
	if err != nil {
		return fmt.Errorf("encode plugin configuration: %w", err)
	}

	version, err := s.secrets.PutSecret(ctx, s.path, data, map[string]string{"gateway": domain.GatewayName})
	if err != nil {
		return fmt.Errorf("save plugin configuration: %w", err)
	}

	s.logger.Info("Plugin configuration saved",
		zap.String("path", s.path),
		zap.String("version", version),
		zap.Bool("active", cfg.Active),
	)

	return nil
}
