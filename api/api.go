package api

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/linesmerrill/legal-officer-api/metrics"
	"github.com/linesmerrill/legal-officer-api/models"
)

// New creates a new mux router with the health check, the prometheus
// endpoint and request instrumentation. Application routes are added by
// the caller.
func New(m *metrics.Metrics, gatherer prometheus.Gatherer) *mux.Router {
	r := mux.NewRouter()
	r.Use(MetricsMiddleware(m))
	r.HandleFunc("/health", healthCheckHandler).Methods("GET")
	r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})).Methods("GET")
	return r
}

func healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	b, _ := json.Marshal(models.HealthCheckResponse{
		Alive: true,
	})
	_, _ = w.Write(b)
}
