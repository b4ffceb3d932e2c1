package monitoring

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHealthChecker(t *testing.T) {
	tests := []struct {
		name        string
		dbErr       error
		engineErr   error
		wantOverall HealthStatus
	}{
		{"all healthy", nil, nil, HealthStatusHealthy},
		{"optional component down", nil, errors.New("no categories"), HealthStatusDegraded},
		{"critical component down", errors.New("database is locked"), nil, HealthStatusUnhealthy},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hc := NewHealthChecker("test")
			hc.RegisterComponent("database", true, PingCheck("database", func(context.Context) error { return tt.dbErr }))
			hc.RegisterComponent("engine", false, PingCheck("engine", func(context.Context) error { return tt.engineErr }))

			res := hc.Check(context.Background())
			assert.Equal(t, tt.wantOverall, res.Status)
			assert.Len(t, res.Components, 2)
			assert.Equal(t, "test", res.Version)
		})
	}
}

func TestMetrics(t *testing.T) {
	m := NewMetrics()
	m.ObserveRequest(http.MethodPost, "/api/match", http.StatusOK, 15*time.Millisecond)
	m.ObserveRequest(http.MethodPost, "/api/match", http.StatusOK, 5*time.Millisecond)
	m.ObserveRequest(http.MethodGet, "", http.StatusNotFound, time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.RequestsTotal.WithLabelValues("POST", "/api/match", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RequestsTotal.WithLabelValues("GET", "unmatched", "404")))

	// Второй экземпляр не конфликтует с первым
	other := NewMetrics()
	assert.Equal(t, 0.0, testutil.ToFloat64(other.RequestsTotal.WithLabelValues("POST", "/api/match", "200")))

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "mdm_http_requests_total"))
}
