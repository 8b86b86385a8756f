package ipg

import (
	"errors"

	pkgerrors "github.com/kevin07696/ipg-gateway/pkg/errors"
)

// ResponseCodeInfo describes a ProcessorResponseCode returned in a fault
type ResponseCodeInfo struct {
	Code        string
	Description string
	IsApproved  bool
	IsRetriable bool
	Category    pkgerrors.ErrorCategory
	UserMessage string
}

// Processor response codes follow the ISO 8583 action codes the acquirer forwards
var processorResponseCodes = map[string]ResponseCodeInfo{
	"00": {
		Code:        "00",
		Description: "Approved",
		IsApproved:  true,
		Category:    pkgerrors.CategoryApproved,
		UserMessage: "Payment successful",
	},
	"05": {
		Code:        "05",
		Description: "Do not honor",
		Category:    pkgerrors.CategoryDeclined,
		UserMessage: "Transaction declined by the card issuer.",
	},
	"14": {
		Code:        "14",
		Description: "Invalid card number",
		Category:    pkgerrors.CategoryInvalidCard,
		UserMessage: "Invalid card number. Please check your card details.",
	},
	"41": {
		Code:        "41",
		Description: "Lost card, pick up",
		Category:    pkgerrors.CategoryFraud,
		UserMessage: "Card reported as lost. Please contact your bank.",
	},
	"43": {
		Code:        "43",
		Description: "Stolen card, pick up",
		Category:    pkgerrors.CategoryFraud,
		UserMessage: "Card reported as stolen. Please contact your bank.",
	},
	"51": {
		Code:        "51",
		Description: "Insufficient funds",
		IsRetriable: true,
		Category:    pkgerrors.CategoryInsufficientFunds,
		UserMessage: "Insufficient funds. Please use a different payment method.",
	},
	"54": {
		Code:        "54",
		Description: "Expired card",
		Category:    pkgerrors.CategoryExpiredCard,
		UserMessage: "Your card has expired. Please use a different payment method.",
	},
	"57": {
		Code:        "57",
		Description: "Transaction not permitted to cardholder",
		Category:    pkgerrors.CategoryDeclined,
		UserMessage: "Transaction not permitted for this card.",
	},
	"59": {
		Code:        "59",
		Description: "Suspected fraud",
		Category:    pkgerrors.CategoryFraud,
		UserMessage: "Transaction declined for security reasons. Please contact your bank.",
	},
	"82": {
		Code:        "82",
		Description: "CVV verification failed",
		Category:    pkgerrors.CategoryInvalidCard,
		UserMessage: "Incorrect CVV. Please check the security code on your card.",
	},
	"91": {
		Code:        "91",
		Description: "Issuer or switch inoperative",
		IsRetriable: true,
		Category:    pkgerrors.CategorySystemError,
		UserMessage: "Card issuer unavailable. Please try again.",
	},
	"96": {
		Code:        "96",
		Description: "System malfunction",
		IsRetriable: true,
		Category:    pkgerrors.CategorySystemError,
		UserMessage: "System error. Please try again in a few moments.",
	},
}

// GetResponseCode retrieves information for a processor response code
func GetResponseCode(code string) ResponseCodeInfo {
	if info, exists := processorResponseCodes[code]; exists {
		return info
	}
	return ResponseCodeInfo{
		Code:        code,
		Description: "Unknown response code",
		Category:    pkgerrors.CategoryDeclined,
		UserMessage: "Transaction declined. Please try a different payment method.",
	}
}

// ToPaymentError converts a response code to a PaymentError
func (r ResponseCodeInfo) ToPaymentError(gatewayMessage string) *pkgerrors.PaymentError {
	return &pkgerrors.PaymentError{
		Code:           r.Code,
		Message:        r.UserMessage,
		GatewayMessage: gatewayMessage,
		IsRetriable:    r.IsRetriable,
		Category:       r.Category,
		Details:        map[string]interface{}{"description": r.Description},
	}
}

// Classify maps any Invoke error onto the shared payment error taxonomy
func Classify(err error) *pkgerrors.PaymentError {
	if err == nil {
		return nil
	}

	var fault *Fault
	if errors.As(err, &fault) {
		return GetResponseCode(fault.Code).ToPaymentError(fault.Message).Wrap(err)
	}

	var perr *ProvisioningError
	if errors.As(err, &perr) {
		return pkgerrors.NewPaymentError("PROVISIONING", "Client certificate could not be prepared", pkgerrors.CategoryConfiguration, false).Wrap(err)
	}

	var cerr *ConnectivityError
	if errors.As(err, &cerr) {
		if cerr.Timeout {
			return pkgerrors.NewPaymentError("TIMEOUT", "Gateway did not answer in time", pkgerrors.CategoryTimeout, true).Wrap(err)
		}
		return pkgerrors.NewPaymentError("CONNECTIVITY", "Gateway could not be reached", pkgerrors.CategoryNetworkError, cerr.Temporary()).Wrap(err)
	}

	return pkgerrors.NewPaymentError("SYSTEM", "Unexpected gateway error", pkgerrors.CategorySystemError, false).Wrap(err)
}
