package secrets

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/kevin07696/ipg-gateway/internal/adapters/ports"
	"go.uber.org/zap"
)

var jsonAPI = jsoniter.ConfigCompatibleWithStandardLibrary

// localSecretStore implements SecretStore using the local filesystem
// WARNING: This is for development only. Use AWS Secrets Manager or Vault in production.
type localSecretStore struct {
	basePath string
	logger   *zap.Logger
}

type localSecretFile struct {
	Value     string            `json:"value"`
	Tags      map[string]string `json:"tags,omitempty"`
	CreatedAt string            `json:"created_at"`
}

// NewLocalSecretStore creates a new local filesystem secret store
func NewLocalSecretStore(basePath string, logger *zap.Logger) ports.SecretStore {
	return &localSecretStore{
		basePath: basePath,
		logger:   logger,
	}
}

func (m *localSecretStore) resolve(secretPath string) (string, error) {
	filePath := filepath.Join(m.basePath, secretPath)
	rel, err := filepath.Rel(m.basePath, filePath)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("secret path escapes base directory: %s", secretPath)
	}
	return filePath, nil
}

// GetSecret retrieves a secret from the local filesystem
func (m *localSecretStore) GetSecret(ctx context.Context, secretPath string) (*ports.Secret, error) {
	filePath, err := m.resolve(secretPath)
	if err != nil {
		return nil, err
	}

	m.logger.Debug("Reading secret from filesystem",
		zap.String("path", secretPath),
	)

	data, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ports.ErrSecretNotFound, secretPath)
		}
		return nil, fmt.Errorf("failed to read secret: %w", err)
	}

	// Support both plain text and the JSON envelope written by PutSecret
	var file localSecretFile
	if err := jsonAPI.Unmarshal(data, &file); err == nil && file.Value != "" {
		return &ports.Secret{
			Value:     file.Value,
			Version:   "v1",
			Metadata:  file.Tags,
			CreatedAt: file.CreatedAt,
		}, nil
	}

	return &ports.Secret{
		Value:   string(data),
		Version: "v1",
	}, nil
}

// PutSecret stores a secret in the local filesystem
func (m *localSecretStore) PutSecret(ctx context.Context, secretPath, secretValue string, tags map[string]string) (string, error) {
	filePath, err := m.resolve(secretPath)
	if err != nil {
		return "", err
	}

	m.logger.Info("Storing secret to filesystem",
		zap.String("path", secretPath),
	)

	if err := os.MkdirAll(filepath.Dir(filePath), 0700); err != nil {
		return "", fmt.Errorf("failed to create directory: %w", err)
	}

	data, err := jsonAPI.MarshalIndent(localSecretFile{
		Value:     secretValue,
		Tags:      tags,
		CreatedAt: time.Now().UTC().Format(time.RFC3339),
	}, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal secret: %w", err)
	}

	if err := os.WriteFile(filePath, data, 0600); err != nil {
		return "", fmt.Errorf("failed to write secret: %w", err)
	}

	return "v1", nil
}
