package secrets

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	secretsmanagertypes "github.com/aws/aws-sdk-go-v2/service/secretsmanager/types"
	"github.com/kevin07696/ipg-gateway/internal/adapters/ports"
	pkghttp "github.com/kevin07696/ipg-gateway/pkg/http"
	"go.uber.org/zap"
)

// AWSSecretsManagerConfig contains configuration for AWS Secrets Manager adapter
type AWSSecretsManagerConfig struct {
	// AWS Region (e.g., "sa-east-1")
	Region string

	// Optional: AWS profile name (for local development)
	Profile string

	// Optional: Custom endpoint (for LocalStack testing)
	Endpoint string

	// Per-request timeout for Secrets Manager calls
	Timeout time.Duration
}

// DefaultAWSSecretsManagerConfig returns default configuration
func DefaultAWSSecretsManagerConfig(region string) *AWSSecretsManagerConfig {
	return &AWSSecretsManagerConfig{
		Region:  region,
		Timeout: 10 * time.Second,
	}
}

// secretsManagerAPI is the subset of the Secrets Manager client the store uses
type secretsManagerAPI interface {
	GetSecretValue(ctx context.Context, params *secretsmanager.GetSecretValueInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error)
	PutSecretValue(ctx context.Context, params *secretsmanager.PutSecretValueInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.PutSecretValueOutput, error)
	CreateSecret(ctx context.Context, params *secretsmanager.CreateSecretInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.CreateSecretOutput, error)
}

// awsSecretStore implements the SecretStore port for AWS Secrets Manager
type awsSecretStore struct {
	client secretsManagerAPI
	logger *zap.Logger
}

// NewAWSSecretStore creates a new AWS Secrets Manager backed store
func NewAWSSecretStore(ctx context.Context, cfg *AWSSecretsManagerConfig, logger *zap.Logger) (ports.SecretStore, error) {
	opts := []func(*config.LoadOptions) error{
		config.WithRegion(cfg.Region),
		config.WithHTTPClient(pkghttp.NewHTTPClient(pkghttp.DefaultClientConfig(), cfg.Timeout)),
	}
	if cfg.Profile != "" {
		// Use specific profile (local development)
		opts = append(opts, config.WithSharedConfigProfile(cfg.Profile))
	}

	// Default credentials chain (IAM role in production)
	awsConfig, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	clientOptions := []func(*secretsmanager.Options){}
	if cfg.Endpoint != "" {
		// Custom endpoint (for LocalStack)
		clientOptions = append(clientOptions, func(o *secretsmanager.Options) {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		})
	}

	logger.Info("AWS Secrets Manager store initialized",
		zap.String("region", cfg.Region),
		zap.Bool("custom_endpoint", cfg.Endpoint != ""),
	)

	return newAWSSecretStore(secretsmanager.NewFromConfig(awsConfig, clientOptions...), logger), nil
}

func newAWSSecretStore(client secretsManagerAPI, logger *zap.Logger) *awsSecretStore {
	return &awsSecretStore{client: client, logger: logger}
}

// GetSecret retrieves a secret by its name or ARN
func (a *awsSecretStore) GetSecret(ctx context.Context, path string) (*ports.Secret, error) {
	a.logger.Debug("Retrieving secret from AWS Secrets Manager", zap.String("path", path))

	startTime := time.Now()
	result, err := a.client.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{
		SecretId: aws.String(path),
	})
	if err != nil {
		var notFound *secretsmanagertypes.ResourceNotFoundException
		if errors.As(err, &notFound) {
			return nil, fmt.Errorf("%w: %s", ports.ErrSecretNotFound, path)
		}
		a.logger.Error("Failed to retrieve secret",
			zap.String("path", path),
			zap.Error(err),
		)
		return nil, fmt.Errorf("failed to get secret %s: %w", path, err)
	}

	a.logger.Debug("Secret retrieved successfully",
		zap.String("path", path),
		zap.Duration("elapsed", time.Since(startTime)),
	)

	secret := &ports.Secret{
		Value:    aws.ToString(result.SecretString),
		Version:  aws.ToString(result.VersionId),
		Metadata: make(map[string]string),
	}
	if result.CreatedDate != nil {
		secret.CreatedAt = result.CreatedDate.Format(time.RFC3339)
	}
	if result.ARN != nil {
		secret.Metadata["arn"] = *result.ARN
	}
	if result.Name != nil {
		secret.Metadata["name"] = *result.Name
	}

	return secret, nil
}

// PutSecret updates a secret, creating it when it does not exist yet
func (a *awsSecretStore) PutSecret(ctx context.Context, path string, value string, metadata map[string]string) (string, error) {
	a.logger.Info("Putting secret to AWS Secrets Manager", zap.String("path", path))

	result, err := a.client.PutSecretValue(ctx, &secretsmanager.PutSecretValueInput{
		SecretId:     aws.String(path),
		SecretString: aws.String(value),
	})
	if err == nil {
		a.logger.Info("Secret updated successfully",
			zap.String("path", path),
			zap.String("version", aws.ToString(result.VersionId)),
		)
		return aws.ToString(result.VersionId), nil
	}

	var notFound *secretsmanagertypes.ResourceNotFoundException
	if !errors.As(err, &notFound) {
		a.logger.Error("Failed to update secret",
			zap.String("path", path),
			zap.Error(err),
		)
		return "", fmt.Errorf("failed to put secret: %w", err)
	}

	createInput := &secretsmanager.CreateSecretInput{
		Name:         aws.String(path),
		SecretString: aws.String(value),
		Description:  aws.String("IPG gateway plugin configuration"),
	}
	for key, val := range metadata {
		createInput.Tags = append(createInput.Tags, secretsmanagertypes.Tag{
			Key:   aws.String(key),
			Value: aws.String(val),
		})
	}

	createResult, err := a.client.CreateSecret(ctx, createInput)
	if err != nil {
		a.logger.Error("Failed to create secret",
			zap.String("path", path),
			zap.Error(err),
		)
		return "", fmt.Errorf("failed to create secret: %w", err)
	}

	a.logger.Info("Secret created successfully",
		zap.String("path", path),
		zap.String("version", aws.ToString(createResult.VersionId)),
	)

	return aws.ToString(createResult.VersionId), nil
}
