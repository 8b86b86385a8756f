package gateway

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/kevin07696/ipg-gateway/internal/adapters/ipg"
	adapterports "github.com/kevin07696/ipg-gateway/internal/adapters/ports"
	"github.com/kevin07696/ipg-gateway/internal/domain"
	"github.com/kevin07696/ipg-gateway/internal/services/ports"
	"github.com/kevin07696/ipg-gateway/pkg/crypto"
	"github.com/kevin07696/ipg-gateway/pkg/observability"
	"go.uber.org/zap"
)

const (
	msgRequired = "The parameter is required."
	msgInvalid  = "The parameter is invalid."
)

// gatewayService implements the GatewayService port
type gatewayService struct {
	client     adapterports.IPGClient
	store      adapterports.ConfigStore
	currencies adapterports.CurrencyCodes
	builder    *Builder
	logger     *zap.Logger
}

// NewGatewayService creates a new IPG gateway service.
// Plugin configuration is read from store on every call.
func NewGatewayService(
	client adapterports.IPGClient,
	store adapterports.ConfigStore,
	countries adapterports.CountryCodes,
	currencies adapterports.CurrencyCodes,
	logger *zap.Logger,
) ports.GatewayService {
	return &gatewayService{
		client:     client,
		store:      store,
		currencies: currencies,
		builder:    NewBuilder(countries, currencies),
		logger:     logger,
	}
}

// ProcessPayment always captures, whatever automatic_payment_capture says
func (s *gatewayService) ProcessPayment(ctx context.Context, payment *domain.PaymentData) *domain.GatewayResponse {
	return s.execute(ctx, OperationCapture, payment)
}

func (s *gatewayService) Authorize(ctx context.Context, payment *domain.PaymentData) *domain.GatewayResponse {
	return s.execute(ctx, OperationAuthorize, payment)
}

func (s *gatewayService) Capture(ctx context.Context, payment *domain.PaymentData) *domain.GatewayResponse {
	return s.execute(ctx, OperationCapture, payment)
}

func (s *gatewayService) Confirm(ctx context.Context, payment *domain.PaymentData) *domain.GatewayResponse {
	return s.execute(ctx, OperationConfirm, payment)
}

func (s *gatewayService) Void(ctx context.Context, payment *domain.PaymentData) *domain.GatewayResponse {
	return s.execute(ctx, OperationVoid, payment)
}

func (s *gatewayService) Refund(ctx context.Context, payment *domain.PaymentData) *domain.GatewayResponse {
	return s.execute(ctx, OperationRefund, payment)
}

// execute runs one operation end to end and normalizes the outcome
func (s *gatewayService) execute(ctx context.Context, op Operation, payment *domain.PaymentData) *domain.GatewayResponse {
	logger := s.logger.With(zap.String("operation", op.Name))
	if payment != nil {
		logger = logger.With(
			zap.String("gateway", payment.Gateway),
			zap.Int64("payment_id", payment.PaymentID),
			zap.String("amount", payment.Amount.String()),
			zap.String("currency", payment.Currency),
		)
	}

	gc, err := s.activeConfig(ctx)
	if err != nil {
		// An unreadable store means refund_via_gateway keeps its default
		if op.Kind == domain.KindRefund && domain.IsDomainError(err, domain.ErrorCodePluginNotConfigured) {
			logger.Warn("Configuration unavailable, refund not sent to gateway", zap.Error(err))
			return s.skipRefund(payment)
		}
		logger.Warn("Gateway operation rejected", zap.Error(err))
		return s.respond(op, payment, nil, err)
	}

	if op.Kind == domain.KindRefund && !gc.ConnectionParams.RefundViaGateway {
		logger.Info("Refund not sent to gateway")
		return s.skipRefund(payment)
	}

	tx, err := s.builder.BuildTransaction(payment, op)
	if err != nil {
		logger.Warn("Invalid payment data", zap.Error(err))
		return s.respond(op, payment, nil, err)
	}

	result, err := s.client.Invoke(ctx, apiConfig(gc), tx)
	if err != nil {
		pe := ipg.Classify(err)
		logger.Warn("Gateway operation failed",
			zap.String("code", pe.Code),
			zap.String("category", string(pe.Category)),
			zap.Bool("retriable", pe.IsRetriable),
			zap.Error(err),
		)
		return s.respond(op, payment, nil, err)
	}

	logger.Info("Gateway operation succeeded",
		zap.String("order_id", result.OrderID()),
		zap.String("transaction_result", result.TransactionResult()),
	)
	return s.respond(op, payment, result, nil)
}

func (s *gatewayService) respond(op Operation, payment *domain.PaymentData, result *adapterports.OrderResult, err error) *domain.GatewayResponse {
	resp := toResponse(op, payment, result, err)
	observability.RecordPaymentOperation(string(resp.Kind), resp.IsSuccess, resp.Currency)
	return resp
}

func (s *gatewayService) skipRefund(payment *domain.PaymentData) *domain.GatewayResponse {
	resp := refundSkipped(payment)
	observability.RecordPaymentOperation(string(resp.Kind), resp.IsSuccess, resp.Currency)
	return resp
}

// GetClientToken returns a random UUID; IPG has no client token concept
func (s *gatewayService) GetClientToken() string {
	return uuid.NewString()
}

func (s *gatewayService) SupportedCurrencies(ctx context.Context) ([]string, error) {
	gc, err := s.activeConfig(ctx)
	if err != nil {
		return nil, err
	}
	return gc.Currencies(), nil
}

func (s *gatewayService) PaymentConfig(ctx context.Context) ([]domain.PaymentConfigField, error) {
	gc, err := s.activeConfig(ctx)
	if err != nil {
		return nil, err
	}
	return []domain.PaymentConfigField{
		{Field: domain.ConfigStoreCustomerCard, Value: gc.StoreCustomer},
	}, nil
}

// ValidateConfiguration skips inactive configurations. For active ones it
// requires the credentials, checks the key pair and the currency list, then
// loads the service description with the credentials.
func (s *gatewayService) ValidateConfiguration(ctx context.Context, cfg *domain.PluginConfiguration) error {
	if cfg == nil || !cfg.Active {
		return nil
	}

	if missing := cfg.MissingFields(); len(missing) > 0 {
		return domain.NewValidationErrors(msgRequired, domain.ErrorCodeRequired, missing...)
	}

	gc := cfg.GatewayConfig()
	params := gc.ConnectionParams

	var errs domain.ValidationErrors
	if err := crypto.VerifyKeyPair(params.ClientCertificate, params.ClientKey); err != nil {
		s.logger.Warn("Client certificate and key do not match", zap.Error(err))
		errs = append(errs, domain.NewValidationErrors(msgInvalid, domain.ErrorCodeInvalid,
			domain.ConfigClientCertificate, domain.ConfigClientKey)...)
	}

	for _, code := range gc.Currencies() {
		if _, err := s.currencies.Numeric(code); err != nil {
			errs = append(errs, domain.FieldError{
				Field:   domain.ConfigSupportedCurrencies,
				Code:    domain.ErrorCodeInvalid,
				Message: fmt.Sprintf("Unknown currency %q.", code),
			})
			break
		}
	}

	if len(errs) > 0 {
		return errs
	}

	if err := s.client.TestConnection(ctx, apiConfig(&gc)); err != nil {
		s.logger.Warn("Gateway connection test failed", zap.Error(err))
		return domain.NewValidationErrors(msgInvalid, domain.ErrorCodeInvalid, domain.RequiredConfigFields...)
	}

	return nil
}

func (s *gatewayService) SaveConfiguration(ctx context.Context, update *domain.PluginConfiguration) error {
	if update == nil {
		return fmt.Errorf("configuration is required")
	}

	cfg, err := s.store.Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	cfg.Active = update.Active
	cfg.Merge(update.Configuration)

	if err := s.ValidateConfiguration(ctx, cfg); err != nil {
		return err
	}

	if err := s.store.Save(ctx, cfg); err != nil {
		return fmt.Errorf("failed to save configuration: %w", err)
	}

	s.logger.Info("Plugin configuration saved", zap.Bool("active", cfg.Active))
	return nil
}

// activeConfig loads the configuration and rejects an inactive plugin
func (s *gatewayService) activeConfig(ctx context.Context) (*domain.GatewayConfig, error) {
	cfg, err := s.store.Load(ctx)
	if err != nil {
		s.logger.Error("Failed to load plugin configuration", zap.Error(err))
		return nil, domain.WrapError(domain.ErrorCodePluginNotConfigured, domain.ErrPluginNotConfigured.Message, err)
	}
	if !cfg.Active {
		return nil, domain.ErrPluginInactive
	}

	gc := cfg.GatewayConfig()
	return &gc, nil
}

func apiConfig(gc *domain.GatewayConfig) adapterports.APIConfig {
	return adapterports.APIConfig{
		ClientCertificate: gc.ConnectionParams.ClientCertificate,
		ClientKey:         gc.ConnectionParams.ClientKey,
		UserID:            gc.ConnectionParams.UserID,
		Password:          gc.ConnectionParams.UserPassword,
		UseSandbox:        gc.ConnectionParams.UseSandbox,
	}
}
