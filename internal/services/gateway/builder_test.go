package gateway

import (
	"testing"

	"github.com/kevin07696/ipg-gateway/internal/adapters/lookup"
	"github.com/kevin07696/ipg-gateway/internal/adapters/ports"
	"github.com/kevin07696/ipg-gateway/internal/domain"
	"github.com/kevin07696/ipg-gateway/internal/testutil/fixtures"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestBuilder() *Builder {
	return NewBuilder(lookup.NewCountryCodes(), lookup.NewCurrencyCodes())
}

func TestBuildTransaction_Capture(t *testing.T) {
	payment := fixtures.NewPayment().
		WithAmount("10.50").
		WithPaymentID(1234).
		WithShipping(fixtures.BrazilianAddress()).
		Build()

	tx, err := newTestBuilder().BuildTransaction(payment, OperationCapture)
	require.NoError(t, err)

	assert.Equal(t, ports.TransactionTypeSale, tx.Type)
	assert.Equal(t, ports.CardFunctionCredit, tx.CardFunction)
	assert.True(t, decimal.RequireFromString("10.50").Equal(tx.Payment.ChargeTotal))
	assert.Equal(t, "986", tx.Payment.Currency)
	assert.Equal(t, 1, tx.Payment.NumberOfInstallments)
	assert.Equal(t, "tok_1", tx.Payment.HostedDataID)
	assert.Equal(t, "1234", tx.Details.MerchantTransactionID)
	assert.Equal(t, "203.0.113.7", tx.Details.IP)
	assert.Empty(t, tx.Details.OrderID)
	assert.Nil(t, tx.CreditCardData)

	require.NotNil(t, tx.Billing)
	assert.Equal(t, "Maria Silva", tx.Billing.Name)
	assert.Equal(t, "BRA", tx.Billing.Country)
	assert.Equal(t, "SP", tx.Billing.State)
	assert.Equal(t, "01310-100", tx.Billing.Zip)
	assert.Equal(t, "buyer@example.com", tx.Billing.Email)

	require.NotNil(t, tx.Shipping)
	assert.Equal(t, "BRA", tx.Shipping.Country)
	assert.Empty(t, tx.Shipping.Email)
}

func TestBuildTransaction_PassesThroughCountryAndCurrency(t *testing.T) {
	billing := fixtures.BrazilianAddress()
	billing.Country = "US"

	payment := fixtures.NewPayment().
		WithCurrency("USD").
		WithBilling(billing).
		Build()

	tx, err := newTestBuilder().BuildTransaction(payment, OperationAuthorize)
	require.NoError(t, err)

	assert.Equal(t, ports.TransactionTypePreAuth, tx.Type)
	assert.Equal(t, "840", tx.Payment.Currency)
	assert.Equal(t, "USA", tx.Billing.Country)
}

func TestBuildTransaction_SubTotal(t *testing.T) {
	tests := []struct {
		name     string
		subTotal string
		want     bool
	}{
		{"absent", "", false},
		{"zero", "0", false},
		{"present", "8.00", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := fixtures.NewPayment()
			if tt.subTotal != "" {
				b = b.WithSubTotal(tt.subTotal)
			}

			tx, err := newTestBuilder().BuildTransaction(b.Build(), OperationCapture)
			require.NoError(t, err)

			if !tt.want {
				assert.Nil(t, tx.Payment.SubTotal)
				return
			}
			require.NotNil(t, tx.Payment.SubTotal)
			assert.Equal(t, "8", tx.Payment.SubTotal.String())
		})
	}
}

func TestBuildTransaction_CardData(t *testing.T) {
	payment := fixtures.NewPayment().
		WithToken("").
		WithCard("4111 1111 1111 1111", "12", "30", "123").
		Build()

	tx, err := newTestBuilder().BuildTransaction(payment, OperationCapture)
	require.NoError(t, err)

	require.NotNil(t, tx.CreditCardData)
	assert.Equal(t, "4111111111111111", tx.CreditCardData.CardNumber)
	assert.Equal(t, "12", tx.CreditCardData.ExpMonth)
	assert.Equal(t, "30", tx.CreditCardData.ExpYear)
	assert.Equal(t, "123", tx.CreditCardData.CardCodeValue)
	assert.Empty(t, tx.Payment.HostedDataID)
}

func TestBuildTransaction_FollowUps(t *testing.T) {
	for _, op := range []Operation{OperationConfirm, OperationVoid, OperationRefund} {
		t.Run(op.Name, func(t *testing.T) {
			payment := fixtures.NewPayment().WithToken("A-2b3e4f").Build()

			tx, err := newTestBuilder().BuildTransaction(payment, op)
			require.NoError(t, err)

			assert.Equal(t, op.Type, tx.Type)
			assert.Equal(t, "A-2b3e4f", tx.Details.OrderID)
			assert.Equal(t, "42", tx.Details.MerchantTransactionID)
			assert.Empty(t, tx.Payment.HostedDataID)
			assert.Nil(t, tx.Billing)
			assert.Nil(t, tx.CreditCardData)
		})
	}
}

func TestBuildTransaction_Errors(t *testing.T) {
	tests := []struct {
		name    string
		payment *domain.PaymentData
		op      Operation
		code    domain.ErrorCode
	}{
		{
			name:    "nil payment",
			payment: nil,
			op:      OperationCapture,
			code:    domain.ErrorCodePaymentAmountInvalid,
		},
		{
			name:    "zero amount",
			payment: fixtures.NewPayment().WithAmount("0").Build(),
			op:      OperationCapture,
			code:    domain.ErrorCodePaymentAmountInvalid,
		},
		{
			name:    "negative amount",
			payment: fixtures.NewPayment().WithAmount("-1").Build(),
			op:      OperationRefund,
			code:    domain.ErrorCodePaymentAmountInvalid,
		},
		{
			name:    "unknown currency",
			payment: fixtures.NewPayment().WithCurrency("ZZZ").Build(),
			op:      OperationCapture,
			code:    domain.ErrorCodePaymentCurrencyUnknown,
		},
		{
			name: "unknown country",
			payment: fixtures.NewPayment().WithBilling(&domain.AddressData{
				FirstName: "Maria",
				Country:   "ZZ",
			}).Build(),
			op:   OperationCapture,
			code: domain.ErrorCodePaymentCountryUnknown,
		},
		{
			name:    "sale without token or card",
			payment: fixtures.NewPayment().WithToken("").Build(),
			op:      OperationCapture,
			code:    domain.ErrorCodePaymentTokenMissing,
		},
		{
			name:    "confirm without token",
			payment: fixtures.NewPayment().WithToken("").Build(),
			op:      OperationConfirm,
			code:    domain.ErrorCodePaymentTokenMissing,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tx, err := newTestBuilder().BuildTransaction(tt.payment, tt.op)
			require.Error(t, err)
			assert.Nil(t, tx)
			assert.True(t, domain.IsPaymentDataError(err))
			assert.Equal(t, tt.code, domain.GetErrorCode(err))
		})
	}
}

func TestBuildTransaction_MerchantTransactionIDAlwaysSent(t *testing.T) {
	for _, op := range Operations {
		t.Run(op.Name, func(t *testing.T) {
			payment := fixtures.NewPayment().WithPaymentID(0).Build()

			tx, err := newTestBuilder().BuildTransaction(payment, op)
			require.NoError(t, err)
			assert.Equal(t, "0", tx.Details.MerchantTransactionID)
		})
	}
}

func TestBuildTransaction_VoidAllowsZeroAmount(t *testing.T) {
	payment := fixtures.NewPayment().WithAmount("0").Build()

	tx, err := newTestBuilder().BuildTransaction(payment, OperationVoid)
	require.NoError(t, err)
	assert.True(t, tx.Payment.ChargeTotal.IsZero())
}

func TestOperations(t *testing.T) {
	tests := []struct {
		op       Operation
		txType   ports.TransactionType
		kind     domain.TransactionKind
		followUp bool
	}{
		{OperationAuthorize, ports.TransactionTypePreAuth, domain.KindAuth, false},
		{OperationCapture, ports.TransactionTypeSale, domain.KindCapture, false},
		{OperationConfirm, ports.TransactionTypePostAuth, domain.KindCapture, true},
		{OperationVoid, ports.TransactionTypeVoid, domain.KindVoid, true},
		{OperationRefund, ports.TransactionTypeReturn, domain.KindRefund, true},
	}

	require.Len(t, Operations, len(tests))
	for _, tt := range tests {
		t.Run(tt.op.Name, func(t *testing.T) {
			assert.Equal(t, tt.txType, tt.op.Type)
			assert.Equal(t, tt.kind, tt.op.Kind)
			assert.Equal(t, tt.followUp, tt.op.FollowUp())
		})
	}
}
