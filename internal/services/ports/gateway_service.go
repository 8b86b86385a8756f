package ports

import (
	"context"

	"github.com/kevin07696/ipg-gateway/internal/domain"
)

// GatewayService defines the port for IPG card payment operations.
// Payment operations never return an error: every failure is reported
// through a GatewayResponse with IsSuccess false.
type GatewayService interface {
	// ProcessPayment authorizes and captures in one step (sale)
	ProcessPayment(ctx context.Context, payment *domain.PaymentData) *domain.GatewayResponse

	// Authorize reserves funds without capturing them (preAuth)
	Authorize(ctx context.Context, payment *domain.PaymentData) *domain.GatewayResponse

	// Capture authorizes and captures (sale)
	Capture(ctx context.Context, payment *domain.PaymentData) *domain.GatewayResponse

	// Confirm captures a previous authorization (postAuth)
	Confirm(ctx context.Context, payment *domain.PaymentData) *domain.GatewayResponse

	// Void cancels a previous transaction
	Void(ctx context.Context, payment *domain.PaymentData) *domain.GatewayResponse

	// Refund reports success without contacting the gateway unless
	// refund_via_gateway is enabled
	Refund(ctx context.Context, payment *domain.PaymentData) *domain.GatewayResponse

	// GetClientToken returns a fresh opaque token for the storefront
	GetClientToken() string

	// SupportedCurrencies lists the configured ISO 4217 currency codes
	SupportedCurrencies(ctx context.Context) ([]string, error)

	// PaymentConfig returns the client-facing payment settings
	PaymentConfig(ctx context.Context) ([]domain.PaymentConfigField, error)

	// ValidateConfiguration checks a configuration before it is saved.
	// Returns domain.ValidationErrors for per-field problems.
	ValidateConfiguration(ctx context.Context, cfg *domain.PluginConfiguration) error

	// SaveConfiguration merges update onto the stored configuration,
	// validates the result and persists it
	SaveConfiguration(ctx context.Context, update *domain.PluginConfiguration) error
}
