// Package mocks provides shared mock implementations for testing.
package mocks

import (
	"context"

	"github.com/kevin07696/ipg-gateway/internal/adapters/ports"
	"github.com/kevin07696/ipg-gateway/internal/domain"
	"github.com/stretchr/testify/mock"
)

// MockIPGClient mocks the IPG order service client.
type MockIPGClient struct {
	mock.Mock
}

func (m *MockIPGClient) Invoke(ctx context.Context, cfg ports.APIConfig, tx *ports.Transaction) (*ports.OrderResult, error) {
	args := m.Called(ctx, cfg, tx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ports.OrderResult), args.Error(1)
}

func (m *MockIPGClient) TestConnection(ctx context.Context, cfg ports.APIConfig) error {
	args := m.Called(ctx, cfg)
	return args.Error(0)
}

// MockConfigStore mocks the plugin configuration store.
type MockConfigStore struct {
	mock.Mock
}

func (m *MockConfigStore) Load(ctx context.Context) (*domain.PluginConfiguration, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PluginConfiguration), args.Error(1)
}

func (m *MockConfigStore) Save(ctx context.Context, cfg *domain.PluginConfiguration) error {
	args := m.Called(ctx, cfg)
	return args.Error(0)
}
