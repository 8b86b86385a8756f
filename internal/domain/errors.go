package domain

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorCode represents a machine-readable error code
type ErrorCode string

const (
	// Plugin configuration errors, reported per field
	ErrorCodeRequired ErrorCode = "REQUIRED"
	ErrorCodeInvalid  ErrorCode = "INVALID"

	// Payment data errors (PAYMENT_*)
	ErrorCodePaymentAmountInvalid   ErrorCode = "PAYMENT_AMOUNT_INVALID"
	ErrorCodePaymentCurrencyUnknown ErrorCode = "PAYMENT_CURRENCY_UNKNOWN"
	ErrorCodePaymentCountryUnknown  ErrorCode = "PAYMENT_COUNTRY_UNKNOWN"
	ErrorCodePaymentTokenMissing    ErrorCode = "PAYMENT_TOKEN_MISSING"
	ErrorCodePaymentAddressMissing  ErrorCode = "PAYMENT_ADDRESS_MISSING"

	// Payment Gateway Errors (GATEWAY_*)
	ErrorCodeGatewayError       ErrorCode = "GATEWAY_ERROR"
	ErrorCodeGatewayTimeout     ErrorCode = "GATEWAY_TIMEOUT"
	ErrorCodeGatewayDeclined    ErrorCode = "GATEWAY_DECLINED"
	ErrorCodeGatewayUnreachable ErrorCode = "GATEWAY_UNREACHABLE"

	// Plugin Errors (PLUGIN_*)
	ErrorCodePluginInactive      ErrorCode = "PLUGIN_INACTIVE"
	ErrorCodePluginNotConfigured ErrorCode = "PLUGIN_NOT_CONFIGURED"

	// Internal Errors (INTERNAL_*)
	ErrorCodeInternalError ErrorCode = "INTERNAL_ERROR"
)

// DomainError represents a structured domain error with error code and context
type DomainError struct {
	Err     error
	Details map[string]interface{}
	Code    ErrorCode
	Message string
}

// Error implements the error interface
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error for errors.Is/As support
func (e *DomainError) Unwrap() error {
	return e.Err
}

// WithDetail adds a detail field to the error
func (e *DomainError) WithDetail(key string, value interface{}) *DomainError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// NewDomainError creates a new domain error
func NewDomainError(code ErrorCode, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
	}
}

// WrapError wraps an existing error with a domain error code
func WrapError(code ErrorCode, message string, err error) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
		Err:     err,
	}
}

// IsDomainError checks if an error is a DomainError with the given code
func IsDomainError(err error, code ErrorCode) bool {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Code == code
	}
	return false
}

// GetErrorCode extracts the error code from an error, returns empty string if not a DomainError
func GetErrorCode(err error) ErrorCode {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Code
	}
	return ""
}

// IsPaymentDataError reports whether err was caused by unusable payment data
func IsPaymentDataError(err error) bool {
	code := GetErrorCode(err)
	return code == ErrorCodePaymentAmountInvalid ||
		code == ErrorCodePaymentCurrencyUnknown ||
		code == ErrorCodePaymentCountryUnknown ||
		code == ErrorCodePaymentTokenMissing ||
		code == ErrorCodePaymentAddressMissing
}

// IsGatewayError checks if an error is a payment gateway error
func IsGatewayError(err error) bool {
	code := GetErrorCode(err)
	return code == ErrorCodeGatewayError ||
		code == ErrorCodeGatewayTimeout ||
		code == ErrorCodeGatewayDeclined ||
		code == ErrorCodeGatewayUnreachable
}

// FieldError is a validation failure attached to one configuration field.
type FieldError struct {
	Field   string    `json:"field"`
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

// ValidationErrors collects per-field configuration errors.
type ValidationErrors []FieldError

// NewValidationErrors reports the same message and code for every field.
func NewValidationErrors(message string, code ErrorCode, fields ...string) ValidationErrors {
	errs := make(ValidationErrors, 0, len(fields))
	for _, field := range fields {
		errs = append(errs, FieldError{Field: field, Code: code, Message: message})
	}
	return errs
}

func (v ValidationErrors) Error() string {
	parts := make([]string, 0, len(v))
	for _, fe := range v {
		parts = append(parts, fmt.Sprintf("%s: %s (%s)", fe.Field, fe.Message, fe.Code))
	}
	return "invalid configuration: " + strings.Join(parts, "; ")
}

// Fields returns the names of the offending fields in report order.
func (v ValidationErrors) Fields() []string {
	fields := make([]string, 0, len(v))
	for _, fe := range v {
		fields = append(fields, fe.Field)
	}
	return fields
}

// Structured error instances
var (
	ErrPaymentAmountInvalid  = NewDomainError(ErrorCodePaymentAmountInvalid, "payment amount must be positive")
	ErrPaymentTokenMissing   = NewDomainError(ErrorCodePaymentTokenMissing, "payment token is required for this operation")
	ErrPaymentAddressMissing = NewDomainError(ErrorCodePaymentAddressMissing, "billing address is required")

	ErrGatewayError    = NewDomainError(ErrorCodeGatewayError, "payment gateway error")
	ErrGatewayTimedOut = NewDomainError(ErrorCodeGatewayTimeout, "payment gateway timeout")
	ErrGatewayDeclined = NewDomainError(ErrorCodeGatewayDeclined, "payment declined by gateway")

	ErrPluginInactive      = NewDomainError(ErrorCodePluginInactive, "plugin is not active")
	ErrPluginNotConfigured = NewDomainError(ErrorCodePluginNotConfigured, "plugin configuration is not available")

	ErrInternalError = NewDomainError(ErrorCodeInternalError, "internal server error")
)
