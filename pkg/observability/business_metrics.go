package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Gateway call outcomes
const (
	OutcomeApproved     = "approved"
	OutcomeFault        = "fault"
	OutcomeConnectivity = "connectivity"
	OutcomeTimeout      = "timeout"
	OutcomeProvisioning = "provisioning"
)

var (
	// IPG order calls
	gatewayRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ipg_requests_total",
		Help: "Total number of IPG order service calls",
	}, []string{
		"transaction_type", // preAuth, postAuth, sale, void, return
		"outcome",          // approved, fault, connectivity, timeout, provisioning
		"processor_code",   // ProcessorResponseCode on faults, empty otherwise
	})

	gatewayRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name: "ipg_request_duration_seconds",
		Help: "Duration of IPG order service calls including certificate provisioning",
		// Buckets: 100ms to 45s
		Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 45},
	}, []string{
		"transaction_type",
		"outcome",
	})

	// Platform-facing operations
	paymentOperationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "payment_operations_total",
		Help: "Total payment operations answered to the platform",
	}, []string{
		"kind",     // auth, capture, void, refund
		"status",   // success, failed
		"currency", // ISO 4217 alpha-3
	})
)

// RecordGatewayCall records one IPG order call
func RecordGatewayCall(transactionType, outcome, processorCode string, seconds float64) {
	gatewayRequestsTotal.WithLabelValues(transactionType, outcome, processorCode).Inc()
	gatewayRequestDuration.WithLabelValues(transactionType, outcome).Observe(seconds)
}

// RecordPaymentOperation records the normalized result of a platform operation
func RecordPaymentOperation(kind string, success bool, currency string) {
	status := "failed"
	if success {
		status = "success"
	}
	paymentOperationsTotal.WithLabelValues(kind, status, currency).Inc()
}
