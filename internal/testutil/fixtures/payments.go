package fixtures

import (
	"github.com/kevin07696/ipg-gateway/internal/domain"
	"github.com/shopspring/decimal"
)

// PaymentBuilder provides fluent API for building test payment data.
type PaymentBuilder struct {
	payment *domain.PaymentData
}

// NewPayment creates a payment builder with a tokenized BRL payment and a
// Brazilian billing address.
func NewPayment() *PaymentBuilder {
	return &PaymentBuilder{
		payment: &domain.PaymentData{
			Gateway:           "ipg",
			Amount:            decimal.RequireFromString("10.00"),
			Currency:          "BRL",
			Token:             "tok_1",
			PaymentID:         42,
			CustomerIPAddress: "203.0.113.7",
			CustomerEmail:     "buyer@example.com",
			Billing:           BrazilianAddress(),
		},
	}
}

func (b *PaymentBuilder) WithAmount(amount string) *PaymentBuilder {
	b.payment.Amount = decimal.RequireFromString(amount)
	return b
}

func (b *PaymentBuilder) WithSubTotal(amount string) *PaymentBuilder {
	b.payment.SubTotal = DecimalPtr(amount)
	return b
}

func (b *PaymentBuilder) WithCurrency(currency string) *PaymentBuilder {
	b.payment.Currency = currency
	return b
}

func (b *PaymentBuilder) WithToken(token string) *PaymentBuilder {
	b.payment.Token = token
	return b
}

func (b *PaymentBuilder) WithPaymentID(id int64) *PaymentBuilder {
	b.payment.PaymentID = id
	return b
}

func (b *PaymentBuilder) WithCard(number, month, year, cvc string) *PaymentBuilder {
	b.payment.Card = &domain.CardData{
		Number:   number,
		ExpMonth: month,
		ExpYear:  year,
		CVC:      cvc,
	}
	return b
}

func (b *PaymentBuilder) WithBilling(address *domain.AddressData) *PaymentBuilder {
	b.payment.Billing = address
	return b
}

func (b *PaymentBuilder) WithShipping(address *domain.AddressData) *PaymentBuilder {
	b.payment.Shipping = address
	return b
}

func (b *PaymentBuilder) Build() *domain.PaymentData {
	return b.payment
}

// BrazilianAddress returns a complete address in São Paulo.
func BrazilianAddress() *domain.AddressData {
	return &domain.AddressData{
		FirstName:      "Maria",
		LastName:       "Silva",
		StreetAddress1: "Av. Paulista, 1000",
		StreetAddress2: "Apto 12",
		City:           "São Paulo",
		PostalCode:     "01310-100",
		Country:        "BR",
		CountryArea:    "SP",
		Phone:          "+5511999999999",
	}
}
