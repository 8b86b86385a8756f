package gateway

import (
	"context"
	"errors"
	"net/http"

	"github.com/kevin07696/ipg-gateway/internal/domain"
	"github.com/kevin07696/ipg-gateway/internal/services/ports"
	"github.com/kevin07696/ipg-gateway/pkg/encoding"
	"github.com/kevin07696/ipg-gateway/pkg/observability"
	"github.com/kevin07696/ipg-gateway/pkg/resilience"
	"go.uber.org/zap"
)

// Handler exposes the gateway service over JSON/HTTP
type Handler struct {
	service  ports.GatewayService
	timeouts *resilience.TimeoutConfig
	logger   *zap.Logger
}

// NewHandler creates a new gateway HTTP handler
func NewHandler(service ports.GatewayService, timeouts *resilience.TimeoutConfig, logger *zap.Logger) *Handler {
	return &Handler{
		service:  service,
		timeouts: timeouts,
		logger:   logger,
	}
}

// ClientTokenResponse is returned by GET /v1/client-token
type ClientTokenResponse struct {
	ClientToken string `json:"client_token"`
}

// CurrenciesResponse is returned by GET /v1/currencies
type CurrenciesResponse struct {
	Currencies []string `json:"currencies"`
}

// ValidationResponse reports per-field configuration problems
type ValidationResponse struct {
	Valid  bool                `json:"valid"`
	Errors []domain.FieldError `json:"errors,omitempty"`
}

// ErrorResponse is the body of every non-2xx answer
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type paymentOperation func(ports.GatewayService, context.Context, *domain.PaymentData) *domain.GatewayResponse

// RegisterRoutes mounts every endpoint on mux
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	payments := []struct {
		route string
		op    paymentOperation
	}{
		{"/v1/payments/process", ports.GatewayService.ProcessPayment},
		{"/v1/payments/authorize", ports.GatewayService.Authorize},
		{"/v1/payments/capture", ports.GatewayService.Capture},
		{"/v1/payments/confirm", ports.GatewayService.Confirm},
		{"/v1/payments/void", ports.GatewayService.Void},
		{"/v1/payments/refund", ports.GatewayService.Refund},
	}
	for _, p := range payments {
		h.handle(mux, http.MethodPost, p.route, h.payment(p.op))
	}

	h.handle(mux, http.MethodGet, "/v1/client-token", h.ClientToken)
	h.handle(mux, http.MethodGet, "/v1/currencies", h.SupportedCurrencies)
	h.handle(mux, http.MethodGet, "/v1/payment-config", h.PaymentConfig)
	h.handle(mux, http.MethodPost, "/v1/configuration/validate", h.ValidateConfiguration)
	h.handle(mux, http.MethodPut, "/v1/configuration", h.SaveConfiguration)
}

func (h *Handler) handle(mux *http.ServeMux, method, route string, fn http.HandlerFunc) {
	mux.Handle(method+" "+route, observability.InstrumentHandler(route, h.withTimeout(fn)))
}

func (h *Handler) withTimeout(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := h.timeouts.HandlerContext(r.Context())
		defer cancel()
		next(w, r.WithContext(ctx))
	}
}

// payment decodes PaymentData and always answers 200 with a GatewayResponse;
// IsSuccess carries the outcome
func (h *Handler) payment(op paymentOperation) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payment domain.PaymentData
		if err := encoding.DecodeJSON(r.Body, &payment); err != nil {
			h.logger.Warn("Invalid payment request", zap.String("path", r.URL.Path), zap.Error(err))
			h.respondError(w, http.StatusBadRequest, "INVALID_REQUEST", "request body is not valid payment data")
			return
		}

		h.respondJSON(w, http.StatusOK, op(h.service, r.Context(), &payment))
	}
}

// ClientToken handles GET /v1/client-token
func (h *Handler) ClientToken(w http.ResponseWriter, r *http.Request) {
	h.respondJSON(w, http.StatusOK, ClientTokenResponse{ClientToken: h.service.GetClientToken()})
}

// SupportedCurrencies handles GET /v1/currencies
func (h *Handler) SupportedCurrencies(w http.ResponseWriter, r *http.Request) {
	currencies, err := h.service.SupportedCurrencies(r.Context())
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, CurrenciesResponse{Currencies: currencies})
}

// PaymentConfig handles GET /v1/payment-config
func (h *Handler) PaymentConfig(w http.ResponseWriter, r *http.Request) {
	fields, err := h.service.PaymentConfig(r.Context())
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, fields)
}

// ValidateConfiguration handles POST /v1/configuration/validate
func (h *Handler) ValidateConfiguration(w http.ResponseWriter, r *http.Request) {
	var cfg domain.PluginConfiguration
	if err := encoding.DecodeJSON(r.Body, &cfg); err != nil {
		h.respondError(w, http.StatusBadRequest, "INVALID_REQUEST", "request body is not a plugin configuration")
		return
	}

	if err := h.service.ValidateConfiguration(r.Context(), &cfg); err != nil {
		h.respondServiceError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, ValidationResponse{Valid: true})
}

// SaveConfiguration handles PUT /v1/configuration
func (h *Handler) SaveConfiguration(w http.ResponseWriter, r *http.Request) {
	var cfg domain.PluginConfiguration
	if err := encoding.DecodeJSON(r.Body, &cfg); err != nil {
		h.respondError(w, http.StatusBadRequest, "INVALID_REQUEST", "request body is not a plugin configuration")
		return
	}

	if err := h.service.SaveConfiguration(r.Context(), &cfg); err != nil {
		h.respondServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// respondServiceError maps service errors onto HTTP statuses
func (h *Handler) respondServiceError(w http.ResponseWriter, err error) {
	var verrs domain.ValidationErrors
	if errors.As(err, &verrs) {
		h.respondJSON(w, http.StatusUnprocessableEntity, ValidationResponse{Errors: verrs})
		return
	}

	var domainErr *domain.DomainError
	if errors.As(err, &domainErr) {
		switch domainErr.Code {
		case domain.ErrorCodePluginInactive:
			h.respondError(w, http.StatusConflict, string(domainErr.Code), domainErr.Message)
			return
		case domain.ErrorCodePluginNotConfigured:
			h.respondError(w, http.StatusServiceUnavailable, string(domainErr.Code), domainErr.Message)
			return
		}
	}

	h.logger.Error("Gateway request failed", zap.Error(err))
	h.respondError(w, http.StatusInternalServerError, string(domain.ErrorCodeInternalError), domain.ErrInternalError.Message)
}

func (h *Handler) respondJSON(w http.ResponseWriter, status int, v interface{}) {
	body, err := encoding.EncodeJSON(v)
	if err != nil {
		h.logger.Error("Failed to encode response", zap.Error(err))
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(body); err != nil {
		h.logger.Debug("Failed to write response", zap.Error(err))
	}
}

func (h *Handler) respondError(w http.ResponseWriter, status int, code, message string) {
	h.respondJSON(w, status, ErrorResponse{Code: code, Message: message})
}
