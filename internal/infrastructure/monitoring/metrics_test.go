package monitoring

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestMetrics_RecordSearch(t *testing.T) {
	m := NewMetrics()

	m.RecordSearch(OutcomeSuccess, time.Second, 2)
	m.RecordSearch(OutcomeSuccess, time.Second, 3)
	m.RecordSearch(OutcomeValidation, 0, 0)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.searchesTotal.WithLabelValues(OutcomeSuccess)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.searchesTotal.WithLabelValues(OutcomeValidation)))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.searchesTotal.WithLabelValues(OutcomeError)))
}

func TestMetrics_NilIsSafe(t *testing.T) {
	var m *Metrics

	assert.NotPanics(t, func() {
		m.RecordSearch(OutcomeError, time.Second, 0)
		m.RecordAPIRequest(http.MethodPost, "/generate", 500, time.Second)
		m.SetSelectionSize(3)
		m.RecordStepFallbacks(1)
	})
}

func TestMetrics_Handler(t *testing.T) {
	m := NewMetrics()
	m.RecordAPIRequest(http.MethodPost, "/generate", 200, 10*time.Millisecond)
	m.SetSelectionSize(2)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `pantry_api_requests_total{endpoint="/generate",method="POST",status_code="200"} 1`)
	assert.Contains(t, rec.Body.String(), "pantry_selected_ingredients 2")
}

func TestSetupTracing_Disabled(t *testing.T) {
	shutdown, err := SetupTracing(context.Background(), TracingConfig{Enabled: false}, zap.NewNop())

	require.NoError(t, err)
	assert.NoError(t, shutdown(context.Background()))
	assert.NotNil(t, Tracer())
}

func TestInstrumentTransport_PassesThrough(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	client := &http.Client{Transport: InstrumentTransport(nil)}
	resp, err := client.Get(server.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
}
