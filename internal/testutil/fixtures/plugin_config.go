package fixtures

import (
	"github.com/kevin07696/ipg-gateway/internal/domain"
)

// PluginConfigBuilder provides fluent API for building plugin configurations.
type PluginConfigBuilder struct {
	cfg *domain.PluginConfiguration
}

// NewPluginConfig starts from the default configuration.
func NewPluginConfig() *PluginConfigBuilder {
	return &PluginConfigBuilder{cfg: domain.DefaultPluginConfiguration()}
}

func (b *PluginConfigBuilder) Active() *PluginConfigBuilder {
	b.cfg.Active = true
	return b
}

func (b *PluginConfigBuilder) Inactive() *PluginConfigBuilder {
	b.cfg.Active = false
	return b
}

// WithCredentials sets every required connection field.
func (b *PluginConfigBuilder) WithCredentials(certPEM, keyPEM, userID, password string) *PluginConfigBuilder {
	return b.
		With(domain.ConfigClientCertificate, certPEM).
		With(domain.ConfigClientKey, keyPEM).
		With(domain.ConfigUserID, userID).
		With(domain.ConfigUserPassword, password)
}

func (b *PluginConfigBuilder) With(name string, value interface{}) *PluginConfigBuilder {
	b.cfg.Merge([]domain.ConfigurationItem{{Name: name, Value: value}})
	return b
}

func (b *PluginConfigBuilder) Build() *domain.PluginConfiguration {
	return b.cfg
}
