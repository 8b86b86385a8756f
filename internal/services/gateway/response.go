package gateway

import (
	"errors"
	"strconv"
	"strings"

	"github.com/kevin07696/ipg-gateway/internal/adapters/ipg"
	"github.com/kevin07696/ipg-gateway/internal/adapters/ports"
	"github.com/kevin07696/ipg-gateway/internal/domain"
)

const paymentMethodTypeCard = "card"

// toResponse normalizes the outcome of one operation.
// Exactly one of result and err is set.
func toResponse(op Operation, payment *domain.PaymentData, result *ports.OrderResult, err error) *domain.GatewayResponse {
	resp := &domain.GatewayResponse{
		Kind: op.Kind,
	}
	if payment != nil {
		resp.Amount = payment.Amount
		resp.Currency = payment.Currency
		resp.TransactionID = payment.Token
	}

	if err != nil {
		msg := errorMessage(err)
		resp.Error = &msg

		var fault *ipg.Fault
		if errors.As(err, &fault) {
			resp.RawResponse = fault.Raw
		}
		return resp
	}

	resp.IsSuccess = true
	resp.RawResponse = result.Fields
	if orderID := result.OrderID(); orderID != "" {
		resp.TransactionID = orderID
	}
	resp.PaymentMethodInfo = paymentMethodInfo(payment, result)

	return resp
}

// errorMessage is the message shown to the platform for a failed operation
func errorMessage(err error) string {
	var fault *ipg.Fault
	if errors.As(err, &fault) && fault.Message != "" {
		return fault.Message
	}

	var domainErr *domain.DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Message
	}

	return ipg.Classify(err).Message
}

func paymentMethodInfo(payment *domain.PaymentData, result *ports.OrderResult) *domain.PaymentMethodInfo {
	info := &domain.PaymentMethodInfo{
		Brand: strings.ToLower(result.Brand()),
		Type:  paymentMethodTypeCard,
	}

	if payment == nil || payment.Card == nil {
		return info
	}

	card := payment.Card
	number := strings.ReplaceAll(card.Number, " ", "")
	if len(number) >= 4 {
		info.Last4 = number[len(number)-4:]
	}
	if month, err := strconv.Atoi(card.ExpMonth); err == nil {
		info.ExpMonth = month
	}
	if year, err := strconv.Atoi(card.ExpYear); err == nil {
		if year < 100 {
			year += 2000
		}
		info.ExpYear = year
	}

	info.Name = card.HolderName
	if info.Name == "" && payment.Billing != nil {
		info.Name = payment.Billing.FullName()
	}

	return info
}

// refundSkipped reports a refund that was not sent to the gateway
func refundSkipped(payment *domain.PaymentData) *domain.GatewayResponse {
	resp := &domain.GatewayResponse{
		IsSuccess: true,
		Kind:      domain.KindRefund,
	}
	if payment != nil {
		resp.Amount = payment.Amount
		resp.Currency = payment.Currency
		resp.TransactionID = payment.Token
	}
	return resp
}
