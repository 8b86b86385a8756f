package gateway_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/kevin07696/ipg-gateway/internal/adapters/ipg"
	"github.com/kevin07696/ipg-gateway/internal/adapters/lookup"
	"github.com/kevin07696/ipg-gateway/internal/adapters/ports"
	"github.com/kevin07696/ipg-gateway/internal/domain"
	"github.com/kevin07696/ipg-gateway/internal/services/gateway"
	serviceports "github.com/kevin07696/ipg-gateway/internal/services/ports"
	"github.com/kevin07696/ipg-gateway/internal/testutil/fixtures"
	"github.com/kevin07696/ipg-gateway/internal/testutil/mocks"
	"github.com/kevin07696/ipg-gateway/pkg/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func setupService(t *testing.T) (serviceports.GatewayService, *mocks.MockIPGClient, *mocks.MockConfigStore) {
	t.Helper()

	client := new(mocks.MockIPGClient)
	store := new(mocks.MockConfigStore)
	svc := gateway.NewGatewayService(client, store, lookup.NewCountryCodes(), lookup.NewCurrencyCodes(), zap.NewNop())

	return svc, client, store
}

func generateCredentials(t *testing.T) (string, string) {
	t.Helper()

	cc, err := crypto.GenerateClientCertificate("WS1234567", time.Hour)
	require.NoError(t, err)
	return cc.CertificatePEM, cc.PrivateKeyPEM
}

func activeConfig(t *testing.T) *fixtures.PluginConfigBuilder {
	t.Helper()

	certPEM, keyPEM := generateCredentials(t)
	return fixtures.NewPluginConfig().
		Active().
		WithCredentials(certPEM, keyPEM, "WS1234567._.1", "s3cret")
}

func txOfType(txType ports.TransactionType) interface{} {
	return mock.MatchedBy(func(tx *ports.Transaction) bool {
		return tx.Type == txType
	})
}

var approved = &ports.OrderResult{Fields: map[string]string{
	"Brand":             "VISA",
	"OrderId":           "A-2b3e4f",
	"TransactionResult": "APPROVED",
}}

func TestGatewayService_Operations(t *testing.T) {
	tests := []struct {
		name   string
		call   func(serviceports.GatewayService, context.Context, *domain.PaymentData) *domain.GatewayResponse
		txType ports.TransactionType
		kind   domain.TransactionKind
	}{
		{"authorize", serviceports.GatewayService.Authorize, ports.TransactionTypePreAuth, domain.KindAuth},
		{"capture", serviceports.GatewayService.Capture, ports.TransactionTypeSale, domain.KindCapture},
		{"process payment", serviceports.GatewayService.ProcessPayment, ports.TransactionTypeSale, domain.KindCapture},
		{"confirm", serviceports.GatewayService.Confirm, ports.TransactionTypePostAuth, domain.KindCapture},
		{"void", serviceports.GatewayService.Void, ports.TransactionTypeVoid, domain.KindVoid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, client, store := setupService(t)
			store.On("Load", mock.Anything).Return(activeConfig(t).Build(), nil)
			client.On("Invoke", mock.Anything, mock.Anything, txOfType(tt.txType)).Return(approved, nil).Once()

			resp := tt.call(svc, context.Background(), fixtures.NewPayment().Build())

			assert.True(t, resp.IsSuccess)
			assert.Nil(t, resp.Error)
			assert.Equal(t, tt.kind, resp.Kind)
			assert.Equal(t, "A-2b3e4f", resp.TransactionID)
			require.NotNil(t, resp.PaymentMethodInfo)
			assert.Equal(t, "visa", resp.PaymentMethodInfo.Brand)
			assert.Equal(t, "card", resp.PaymentMethodInfo.Type)
			client.AssertExpectations(t)
		})
	}
}

func TestGatewayService_LogsPaymentContext(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	client := new(mocks.MockIPGClient)
	store := new(mocks.MockConfigStore)
	svc := gateway.NewGatewayService(client, store, lookup.NewCountryCodes(), lookup.NewCurrencyCodes(), zap.New(core))

	store.On("Load", mock.Anything).Return(activeConfig(t).Build(), nil)
	client.On("Invoke", mock.Anything, mock.Anything, mock.Anything).Return(approved, nil).Once()

	payment := fixtures.NewPayment().Build()
	payment.Gateway = "sipag"
	svc.Capture(context.Background(), payment)

	entries := logs.FilterMessage("Gateway operation succeeded").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "sipag", fields["gateway"])
	assert.Equal(t, int64(42), fields["payment_id"])
	assert.Equal(t, "capture", fields["operation"])
}

func TestGatewayService_PassesCredentials(t *testing.T) {
	svc, client, store := setupService(t)
	cfg := activeConfig(t).With(domain.ConfigUseSandbox, false).Build()
	store.On("Load", mock.Anything).Return(cfg, nil)

	gc := cfg.GatewayConfig()
	client.On("Invoke", mock.Anything, ports.APIConfig{
		ClientCertificate: gc.ConnectionParams.ClientCertificate,
		ClientKey:         gc.ConnectionParams.ClientKey,
		UserID:            "WS1234567._.1",
		Password:          "s3cret",
		UseSandbox:        false,
	}, mock.Anything).Return(approved, nil).Once()

	resp := svc.Capture(context.Background(), fixtures.NewPayment().Build())

	assert.True(t, resp.IsSuccess)
	client.AssertExpectations(t)
}

func TestGatewayService_ProcessPaymentIgnoresAutoCapture(t *testing.T) {
	svc, client, store := setupService(t)
	store.On("Load", mock.Anything).Return(activeConfig(t).With(domain.ConfigAutoCapture, false).Build(), nil)
	client.On("Invoke", mock.Anything, mock.Anything, txOfType(ports.TransactionTypeSale)).Return(approved, nil).Once()

	resp := svc.ProcessPayment(context.Background(), fixtures.NewPayment().Build())

	assert.True(t, resp.IsSuccess)
	assert.Equal(t, domain.KindCapture, resp.Kind)
	client.AssertExpectations(t)
}

func TestGatewayService_Fault(t *testing.T) {
	svc, client, store := setupService(t)
	store.On("Load", mock.Anything).Return(activeConfig(t).Build(), nil)
	client.On("Invoke", mock.Anything, mock.Anything, mock.Anything).
		Return(nil, &ipg.Fault{Code: "05", Message: "Do not honor"}).Once()

	resp := svc.Capture(context.Background(), fixtures.NewPayment().Build())

	assert.False(t, resp.IsSuccess)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "Do not honor", *resp.Error)
	assert.Nil(t, resp.PaymentMethodInfo)
	client.AssertNumberOfCalls(t, "Invoke", 1)
}

func TestGatewayService_Timeout(t *testing.T) {
	svc, client, store := setupService(t)
	store.On("Load", mock.Anything).Return(activeConfig(t).Build(), nil)
	client.On("Invoke", mock.Anything, mock.Anything, mock.Anything).
		Return(nil, &ipg.ConnectivityError{Op: "submit order", Timeout: true, Err: context.DeadlineExceeded}).Once()

	resp := svc.Authorize(context.Background(), fixtures.NewPayment().Build())

	assert.False(t, resp.IsSuccess)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "Gateway did not answer in time", *resp.Error)
	client.AssertNumberOfCalls(t, "Invoke", 1)
}

func TestGatewayService_RefundIsNoOpByDefault(t *testing.T) {
	svc, client, store := setupService(t)
	store.On("Load", mock.Anything).Return(activeConfig(t).Build(), nil)

	payment := fixtures.NewPayment().WithAmount("3.25").Build()
	resp := svc.Refund(context.Background(), payment)

	assert.True(t, resp.IsSuccess)
	assert.Nil(t, resp.Error)
	assert.Equal(t, domain.KindRefund, resp.Kind)
	assert.True(t, payment.Amount.Equal(resp.Amount))
	client.AssertNotCalled(t, "Invoke", mock.Anything, mock.Anything, mock.Anything)
}

func TestGatewayService_RefundSkippedWhenConfigurationUnavailable(t *testing.T) {
	svc, client, store := setupService(t)
	store.On("Load", mock.Anything).Return(nil, errors.New("vault sealed"))

	resp := svc.Refund(context.Background(), fixtures.NewPayment().WithAmount("3.25").Build())

	assert.True(t, resp.IsSuccess)
	assert.Nil(t, resp.Error)
	assert.Equal(t, domain.KindRefund, resp.Kind)
	client.AssertNotCalled(t, "Invoke", mock.Anything, mock.Anything, mock.Anything)
}

func TestGatewayService_RefundRejectedWhenInactive(t *testing.T) {
	svc, client, store := setupService(t)
	store.On("Load", mock.Anything).Return(fixtures.NewPluginConfig().Inactive().Build(), nil)

	resp := svc.Refund(context.Background(), fixtures.NewPayment().Build())

	assert.False(t, resp.IsSuccess)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "plugin is not active", *resp.Error)
	client.AssertNotCalled(t, "Invoke", mock.Anything, mock.Anything, mock.Anything)
}

func TestGatewayService_RefundViaGateway(t *testing.T) {
	svc, client, store := setupService(t)
	store.On("Load", mock.Anything).Return(activeConfig(t).With(domain.ConfigRefundViaGateway, true).Build(), nil)
	client.On("Invoke", mock.Anything, mock.Anything, mock.MatchedBy(func(tx *ports.Transaction) bool {
		return tx.Type == ports.TransactionTypeReturn && tx.Details.OrderID == "A-2b3e4f"
	})).Return(&ports.OrderResult{Fields: map[string]string{"OrderId": "A-2b3e4f"}}, nil).Once()

	resp := svc.Refund(context.Background(), fixtures.NewPayment().WithToken("A-2b3e4f").Build())

	assert.True(t, resp.IsSuccess)
	assert.Equal(t, domain.KindRefund, resp.Kind)
	client.AssertExpectations(t)
}

func TestGatewayService_Rejected(t *testing.T) {
	tests := []struct {
		name    string
		setup   func(*mocks.MockConfigStore)
		payment *domain.PaymentData
		message string
	}{
		{
			name: "plugin inactive",
			setup: func(store *mocks.MockConfigStore) {
				store.On("Load", mock.Anything).Return(fixtures.NewPluginConfig().Inactive().Build(), nil)
			},
			payment: fixtures.NewPayment().Build(),
			message: "plugin is not active",
		},
		{
			name: "configuration unavailable",
			setup: func(store *mocks.MockConfigStore) {
				store.On("Load", mock.Anything).Return(nil, errors.New("access denied"))
			},
			payment: fixtures.NewPayment().Build(),
			message: "plugin configuration is not available",
		},
		{
			name: "unknown currency",
			setup: func(store *mocks.MockConfigStore) {
				store.On("Load", mock.Anything).Return(fixtures.NewPluginConfig().Active().Build(), nil)
			},
			payment: fixtures.NewPayment().WithCurrency("ZZZ").Build(),
			message: "unknown currency",
		},
		{
			name: "missing token",
			setup: func(store *mocks.MockConfigStore) {
				store.On("Load", mock.Anything).Return(fixtures.NewPluginConfig().Active().Build(), nil)
			},
			payment: fixtures.NewPayment().WithToken("").Build(),
			message: "payment token is required for this operation",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, client, store := setupService(t)
			tt.setup(store)

			resp := svc.Capture(context.Background(), tt.payment)

			assert.False(t, resp.IsSuccess)
			require.NotNil(t, resp.Error)
			assert.Equal(t, tt.message, *resp.Error)
			client.AssertNotCalled(t, "Invoke", mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestGatewayService_GetClientToken(t *testing.T) {
	svc, _, _ := setupService(t)

	first := svc.GetClientToken()
	second := svc.GetClientToken()

	id, err := uuid.Parse(first)
	require.NoError(t, err)
	assert.Equal(t, uuid.Version(4), id.Version())
	assert.NotEqual(t, first, second)
}

func TestGatewayService_SupportedCurrencies(t *testing.T) {
	svc, _, store := setupService(t)
	store.On("Load", mock.Anything).
		Return(fixtures.NewPluginConfig().Active().With(domain.ConfigSupportedCurrencies, "BRL, usd").Build(), nil)

	currencies, err := svc.SupportedCurrencies(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"BRL", "USD"}, currencies)
}

func TestGatewayService_SupportedCurrencies_Inactive(t *testing.T) {
	svc, _, store := setupService(t)
	store.On("Load", mock.Anything).Return(fixtures.NewPluginConfig().Build(), nil)

	_, err := svc.SupportedCurrencies(context.Background())
	assert.True(t, domain.IsDomainError(err, domain.ErrorCodePluginInactive))
}

func TestGatewayService_PaymentConfig(t *testing.T) {
	svc, _, store := setupService(t)
	store.On("Load", mock.Anything).
		Return(fixtures.NewPluginConfig().Active().With(domain.ConfigStoreCustomerCard, true).Build(), nil)

	fields, err := svc.PaymentConfig(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []domain.PaymentConfigField{{Field: "store_customer_card", Value: true}}, fields)
}

func TestGatewayService_ValidateConfiguration(t *testing.T) {
	certPEM, keyPEM := generateCredentials(t)
	_, otherKeyPEM := generateCredentials(t)

	tests := []struct {
		name       string
		cfg        *domain.PluginConfiguration
		connection error
		wantFields []string
		wantCode   domain.ErrorCode
	}{
		{
			name: "inactive is not validated",
			cfg:  fixtures.NewPluginConfig().Inactive().Build(),
		},
		{
			name:       "missing credentials",
			cfg:        fixtures.NewPluginConfig().Active().With(domain.ConfigUserID, "WS1234567._.1").Build(),
			wantFields: []string{"client_certificate", "client_key", "user_password"},
			wantCode:   domain.ErrorCodeRequired,
		},
		{
			name: "mismatched key pair",
			cfg: fixtures.NewPluginConfig().Active().
				WithCredentials(certPEM, otherKeyPEM, "WS1234567._.1", "s3cret").Build(),
			wantFields: []string{"client_certificate", "client_key"},
			wantCode:   domain.ErrorCodeInvalid,
		},
		{
			name: "unknown currency",
			cfg: fixtures.NewPluginConfig().Active().
				WithCredentials(certPEM, keyPEM, "WS1234567._.1", "s3cret").
				With(domain.ConfigSupportedCurrencies, "BRL,ZZZ").Build(),
			wantFields: []string{"supported_currencies"},
			wantCode:   domain.ErrorCodeInvalid,
		},
		{
			name: "connection test fails",
			cfg: fixtures.NewPluginConfig().Active().
				WithCredentials(certPEM, keyPEM, "WS1234567._.1", "wrong").Build(),
			connection: &ipg.ConnectivityError{Op: "load service description", StatusCode: 401},
			wantFields: []string{"client_certificate", "client_key", "user_id", "user_password"},
			wantCode:   domain.ErrorCodeInvalid,
		},
		{
			name: "valid",
			cfg: fixtures.NewPluginConfig().Active().
				WithCredentials(certPEM, keyPEM, "WS1234567._.1", "s3cret").Build(),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, client, _ := setupService(t)
			client.On("TestConnection", mock.Anything, mock.Anything).Return(tt.connection).Maybe()

			err := svc.ValidateConfiguration(context.Background(), tt.cfg)

			if tt.wantFields == nil {
				assert.NoError(t, err)
				return
			}

			var verrs domain.ValidationErrors
			require.True(t, errors.As(err, &verrs))
			assert.Equal(t, tt.wantFields, verrs.Fields())
			for _, fe := range verrs {
				assert.Equal(t, tt.wantCode, fe.Code)
			}
		})
	}
}

func TestGatewayService_ValidateConfiguration_TestsConnectionWithCredentials(t *testing.T) {
	certPEM, keyPEM := generateCredentials(t)

	svc, client, _ := setupService(t)
	client.On("TestConnection", mock.Anything, mock.MatchedBy(func(cfg ports.APIConfig) bool {
		return cfg.UserID == "WS1234567._.1" &&
			cfg.Password == " s3cret " &&
			cfg.ClientKey != "" &&
			cfg.UseSandbox
	})).Return(nil).Once()

	cfg := fixtures.NewPluginConfig().Active().
		WithCredentials(certPEM, keyPEM, "WS1234567._.1", " s3cret ").Build()

	require.NoError(t, svc.ValidateConfiguration(context.Background(), cfg))
	client.AssertExpectations(t)
}

func TestGatewayService_SaveConfiguration(t *testing.T) {
	certPEM, keyPEM := generateCredentials(t)

	svc, client, store := setupService(t)
	store.On("Load", mock.Anything).Return(fixtures.NewPluginConfig().Build(), nil)
	client.On("TestConnection", mock.Anything, mock.Anything).Return(nil).Once()
	store.On("Save", mock.Anything, mock.MatchedBy(func(cfg *domain.PluginConfiguration) bool {
		gc := cfg.GatewayConfig()
		return cfg.Active && gc.ConnectionParams.UserID == "WS1234567._.1" && gc.SupportedCurrencies == "BRL"
	})).Return(nil).Once()

	update := fixtures.NewPluginConfig().Active().
		WithCredentials(certPEM, keyPEM, "WS1234567._.1", "s3cret").Build()

	require.NoError(t, svc.SaveConfiguration(context.Background(), update))
	store.AssertExpectations(t)
	client.AssertExpectations(t)
}

func TestGatewayService_SaveConfiguration_Invalid(t *testing.T) {
	svc, _, store := setupService(t)
	store.On("Load", mock.Anything).Return(fixtures.NewPluginConfig().Build(), nil)

	update := &domain.PluginConfiguration{Active: true}
	err := svc.SaveConfiguration(context.Background(), update)

	var verrs domain.ValidationErrors
	require.True(t, errors.As(err, &verrs))
	assert.Equal(t, domain.RequiredConfigFields, verrs.Fields())
	store.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}
