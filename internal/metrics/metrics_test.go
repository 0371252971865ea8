package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollector_Records(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordAuthOutcome("resolved")
	c.RecordAuthOutcome("resolved")
	c.RecordAuthOutcome("expired")
	c.RecordGateDecision("admin", "forbidden")
	c.RecordHTTPRequest(http.MethodGet, "/api/ping", http.StatusOK, 15*time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(c.authOutcomes.WithLabelValues("resolved")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.authOutcomes.WithLabelValues("expired")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.gateDecisions.WithLabelValues("admin", "forbidden")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.httpRequests.WithLabelValues("GET", "/api/ping", "200")))
}

func TestHandler_ExposesMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)
	c.RecordGateDecision("staff", "allow")

	rec := httptest.NewRecorder()
	Handler(reg).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), `electricite_authz_decisions_total{decision="allow",guard="staff"} 1`))
}
