package resilience

import (
	"context"
	"time"
)

// TimeoutConfig defines timeout values for the application's timeout hierarchy
//
// Timeout Hierarchy (from outermost to innermost):
//
//	HTTP Handler (60s)
//	  ↓
//	External API (45s - one IPG call: WSDL fetch + order POST)
//	  ↓
//	Service description fetch (15s)
//
// Each layer completes before its parent times out, so a gateway timeout is
// reported as such instead of surfacing as a cancelled handler.
type TimeoutConfig struct {
	HTTPHandler        time.Duration // Overall request timeout (default: 60s)
	ExternalAPI        time.Duration // One gateway invocation (default: 45s)
	ServiceDescription time.Duration // WSDL download (default: 15s)
}

// DefaultTimeoutConfig returns production timeout values
func DefaultTimeoutConfig() *TimeoutConfig {
	return &TimeoutConfig{
		HTTPHandler:        60 * time.Second,
		ExternalAPI:        45 * time.Second,
		ServiceDescription: 15 * time.Second,
	}
}

// TestTimeoutConfig returns shorter timeouts for testing
func TestTimeoutConfig() *TimeoutConfig {
	return &TimeoutConfig{
		HTTPHandler:        5 * time.Second,
		ExternalAPI:        2 * time.Second,
		ServiceDescription: 1 * time.Second,
	}
}

// WithExternalAPI returns a copy with the gateway call timeout replaced.
// Non-positive values keep the current timeout.
func (tc *TimeoutConfig) WithExternalAPI(d time.Duration) *TimeoutConfig {
	out := *tc
	if d > 0 {
		out.ExternalAPI = d
		if out.ServiceDescription > d {
			out.ServiceDescription = d
		}
		if out.HTTPHandler < d {
			out.HTTPHandler = d + 5*time.Second
		}
	}
	return &out
}

// HandlerContext creates a context with timeout for HTTP handlers
func (tc *TimeoutConfig) HandlerContext(parent context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(parent, tc.HTTPHandler)
}

// ExternalAPIContext creates a context for external API calls
func (tc *TimeoutConfig) ExternalAPIContext(parent context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(parent, tc.ExternalAPI)
}

// ServiceDescriptionContext creates a context for loading the WSDL
func (tc *TimeoutConfig) ServiceDescriptionContext(parent context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(parent, tc.ServiceDescription)
}
