package observability

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordGatewayCall(t *testing.T) {
	counter := gatewayRequestsTotal.WithLabelValues("sale", OutcomeFault, "05")
	before := testutil.ToFloat64(counter)

	RecordGatewayCall("sale", OutcomeFault, "05", 0.42)

	assert.Equal(t, before+1, testutil.ToFloat64(counter))
}

func TestRecordPaymentOperation(t *testing.T) {
	success := paymentOperationsTotal.WithLabelValues("capture", "success", "BRL")
	failed := paymentOperationsTotal.WithLabelValues("capture", "failed", "BRL")
	beforeSuccess, beforeFailed := testutil.ToFloat64(success), testutil.ToFloat64(failed)

	RecordPaymentOperation("capture", true, "BRL")
	RecordPaymentOperation("capture", false, "BRL")
	RecordPaymentOperation("capture", false, "BRL")

	assert.Equal(t, beforeSuccess+1, testutil.ToFloat64(success))
	assert.Equal(t, beforeFailed+2, testutil.ToFloat64(failed))
}

func TestInstrumentHandler(t *testing.T) {
	counter := httpRequestsTotal.WithLabelValues("/v1/test", "422")
	before := testutil.ToFloat64(counter)

	h := InstrumentHandler("/v1/test", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/test", nil))

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, before+1, testutil.ToFloat64(counter))
}

func TestHealthChecker(t *testing.T) {
	hc := NewHealthChecker()
	hc.Register("config_store", func(ctx context.Context) error { return nil })

	status := hc.Check(context.Background())
	assert.Equal(t, "healthy", status.Status)
	assert.Equal(t, "healthy", status.Checks["config_store"])

	rec := httptest.NewRecorder()
	hc.HealthHandler()(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestHealthChecker_Unhealthy(t *testing.T) {
	hc := NewHealthChecker()
	hc.Register("config_store", func(ctx context.Context) error { return errors.New("access denied") })

	rec := httptest.NewRecorder()
	hc.HealthHandler()(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var status HealthStatus
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
	assert.Equal(t, "unhealthy", status.Status)
	assert.Equal(t, "unhealthy: access denied", status.Checks["config_store"])
}
