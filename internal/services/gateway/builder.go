package gateway

import (
	"strconv"
	"strings"

	"github.com/kevin07696/ipg-gateway/internal/adapters/ports"
	"github.com/kevin07696/ipg-gateway/internal/domain"
)

// Builder turns platform payment data into IPG transaction documents
type Builder struct {
	countries  ports.CountryCodes
	currencies ports.CurrencyCodes
}

// NewBuilder creates a builder using the given code lookups
func NewBuilder(countries ports.CountryCodes, currencies ports.CurrencyCodes) *Builder {
	return &Builder{
		countries:  countries,
		currencies: currencies,
	}
}

// BuildTransaction builds the document for op.
// Returns a *domain.DomainError when the payment data cannot be sent.
func (b *Builder) BuildTransaction(payment *domain.PaymentData, op Operation) (*ports.Transaction, error) {
	if payment == nil {
		return nil, domain.ErrPaymentAmountInvalid
	}

	if payment.Amount.IsNegative() || (payment.Amount.IsZero() && op.Type != ports.TransactionTypeVoid) {
		return nil, domain.ErrPaymentAmountInvalid
	}

	currency, err := b.currencies.Numeric(payment.Currency)
	if err != nil {
		return nil, domain.WrapError(domain.ErrorCodePaymentCurrencyUnknown, "unknown currency", err).
			WithDetail("currency", payment.Currency)
	}

	tx := &ports.Transaction{
		Type:         op.Type,
		CardFunction: ports.CardFunctionCredit,
		Payment:      ports.NewPayment(currency, payment.Amount),
		Details: ports.TransactionDetails{
			MerchantTransactionID: strconv.FormatInt(payment.PaymentID, 10),
			IP:                    payment.CustomerIPAddress,
		},
	}

	if !payment.DeliveryAmount.IsZero() {
		tx.Payment.DeliveryAmount = payment.DeliveryAmount
	}

	if payment.SubTotal != nil && !payment.SubTotal.IsZero() {
		subTotal := *payment.SubTotal
		tx.Payment.SubTotal = &subTotal
	}

	if op.FollowUp() {
		if payment.Token == "" {
			return nil, domain.ErrPaymentTokenMissing
		}
		tx.Details.OrderID = payment.Token
		return tx, nil
	}

	switch {
	case payment.Card != nil:
		tx.CreditCardData = &ports.CreditCardData{
			CardNumber:    strings.ReplaceAll(payment.Card.Number, " ", ""),
			ExpMonth:      payment.Card.ExpMonth,
			ExpYear:       payment.Card.ExpYear,
			CardCodeValue: payment.Card.CVC,
		}
	case payment.Token != "":
		tx.Payment.HostedDataID = payment.Token
	default:
		return nil, domain.ErrPaymentTokenMissing
	}

	if payment.Billing != nil {
		billing, err := b.address(payment.Billing)
		if err != nil {
			return nil, err
		}
		billing.Email = payment.CustomerEmail
		tx.Billing = billing
	}

	if payment.Shipping != nil {
		shipping, err := b.address(payment.Shipping)
		if err != nil {
			return nil, err
		}
		tx.Shipping = shipping
	}

	return tx, nil
}

func (b *Builder) address(a *domain.AddressData) (*ports.Address, error) {
	out := &ports.Address{
		Name:     a.FullName(),
		Address1: a.StreetAddress1,
		Address2: a.StreetAddress2,
		City:     a.City,
		State:    a.CountryArea,
		Zip:      a.PostalCode,
		Phone:    a.Phone,
	}

	if a.Country != "" {
		country, err := b.countries.Alpha3(a.Country)
		if err != nil {
			return nil, domain.WrapError(domain.ErrorCodePaymentCountryUnknown, "unknown country", err).
				WithDetail("country", a.Country)
		}
		out.Country = country
	}

	return out, nil
}
