package metrics_test

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/jrsteele09/hrdash/internal/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestCollector_RecordRequest(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := metrics.NewCollector(reg)

	c.RecordRequest("GET", "/api/dashboard/stats", 200, 20*time.Millisecond)
	c.RecordRequest("GET", "/api/dashboard/stats", 200, 30*time.Millisecond)
	c.RecordRequest("GET", "/api/dashboard/stats", 401, 5*time.Millisecond)

	expected := `
# HELP hrdash_api_requests_total API requests by method, route and response status
# TYPE hrdash_api_requests_total counter
hrdash_api_requests_total{method="GET",route="/api/dashboard/stats",status="200"} 2
hrdash_api_requests_total{method="GET",route="/api/dashboard/stats",status="401"} 1
`
	require.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected), "hrdash_api_requests_total"))
	require.Equal(t, 1, testutil.CollectAndCount(reg, "hrdash_api_request_duration_seconds"))
}

func TestCollector_Counters(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := metrics.NewCollector(reg)

	c.RecordSessionExpired()
	c.RecordSessionExpired()
	c.RecordTransportError("POST", "/api/auth/login")
	c.RecordRateLimitWait(10 * time.Millisecond)

	require.Equal(t, 1, testutil.CollectAndCount(reg, "hrdash_session_expired_total"))
	require.Equal(t, 1, testutil.CollectAndCount(reg, "hrdash_api_transport_errors_total"))

	families, err := reg.Gather()
	require.NoError(t, err)
	for _, mf := range families {
		if mf.GetName() == "hrdash_session_expired_total" {
			require.Equal(t, 2.0, mf.GetMetric()[0].GetCounter().GetValue())
		}
	}
}

func TestWriteText(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := metrics.NewCollector(reg)
	c.RecordSessionExpired()

	var buf bytes.Buffer
	require.NoError(t, metrics.WriteText(&buf, reg))
	require.Contains(t, buf.String(), "hrdash_session_expired_total 1")
}

func TestHandler(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics.NewCollector(reg).RecordSessionExpired()

	rec := httptest.NewRecorder()
	metrics.Handler(reg).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "hrdash_session_expired_total")
}
