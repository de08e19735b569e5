package api_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"

	"github.com/linesmerrill/legal-officer-api/api"
	"github.com/linesmerrill/legal-officer-api/metrics"
)

func TestNew_HealthAndMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	r := api.New(metrics.New(reg), reg)
	r.HandleFunc("/api/loc-request/{request_id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest("GET", "/health", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"alive":true}`, rr.Body.String())

	rr = httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest("GET", "/api/loc-request/abc", nil))
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest("GET", "/metrics", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.True(t, strings.Contains(rr.Body.String(),
		`legal_officer_http_request_duration_seconds_count{method="GET",route="/api/loc-request/{request_id}",status="404"} 1`))
}

func TestTimeoutMiddleware(t *testing.T) {
	var deadline time.Time
	handler := api.TimeoutMiddleware(time.Minute)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		deadline, _ = r.Context().Deadline()
	}))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/", nil))
	assert.WithinDuration(t, time.Now().Add(time.Minute), deadline, 5*time.Second)
}
