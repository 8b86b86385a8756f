package main

import (
	"context"
	"fmt"

	"github.com/kevin07696/ipg-gateway/internal/adapters/ports"
	"github.com/kevin07696/ipg-gateway/internal/adapters/secrets"
	"github.com/kevin07696/ipg-gateway/internal/config"
	"go.uber.org/zap"
)

// initConfigStore builds the plugin configuration store for the configured backend:
//   - local: JSON files under CONFIG_STORE_PATH (development)
//   - aws:   AWS Secrets Manager in AWS_REGION (AWS_ENDPOINT for LocalStack)
//   - vault: HashiCorp Vault KV at VAULT_ADDR, token or AppRole login
func initConfigStore(ctx context.Context, cfg config.ConfigStoreConfig, logger *zap.Logger) (ports.ConfigStore, error) {
	secretStore, err := initSecretStore(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	logger.Info("Config store initialized",
		zap.String("backend", cfg.Backend),
		zap.String("secret_path", cfg.SecretPath),
	)

	return secrets.NewConfigStore(secretStore, cfg.SecretPath, logger), nil
}

func initSecretStore(ctx context.Context, cfg config.ConfigStoreConfig, logger *zap.Logger) (ports.SecretStore, error) {
	switch cfg.Backend {
	case config.StoreAWS:
		awsCfg := secrets.DefaultAWSSecretsManagerConfig(cfg.AWSRegion)
		awsCfg.Profile = cfg.AWSProfile
		awsCfg.Endpoint = cfg.AWSEndpoint
		return secrets.NewAWSSecretStore(ctx, awsCfg, logger)

	case config.StoreVault:
		vaultCfg := secrets.DefaultVaultConfig(cfg.VaultAddr)
		vaultCfg.AuthMethod = cfg.VaultAuthMethod
		vaultCfg.Token = cfg.VaultToken
		vaultCfg.RoleID = cfg.VaultRoleID
		vaultCfg.SecretID = cfg.VaultSecretID
		vaultCfg.Namespace = cfg.VaultNamespace
		vaultCfg.MountPath = cfg.VaultMount
		vaultCfg.KVVersion = cfg.VaultKVVersion
		vaultCfg.TLSSkipVerify = cfg.VaultSkipVerify
		return secrets.NewVaultSecretStore(ctx, vaultCfg, logger)

	case config.StoreLocal:
		logger.Warn("Using LOCAL config store - NOT for production use!",
			zap.String("path", cfg.LocalPath),
		)
		return secrets.NewLocalSecretStore(cfg.LocalPath, logger), nil

	default:
		return nil, fmt.Errorf("unknown config store backend %q", cfg.Backend)
	}
}
