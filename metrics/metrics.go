package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcomes of handing an extrinsic to a synchronizer.
const (
	OutcomeApplied      = "applied"
	OutcomeIgnored      = "ignored"
	OutcomeFailed       = "failed_on_chain"
	OutcomeNotFound     = "not_found"
	OutcomeDecodeError  = "decode_error"
	OutcomeStorageError = "storage_error"
)

// Metrics provides observability for block synchronization and the API.
type Metrics struct {
	// Extrinsics seen by the synchronizers, by pallet and outcome
	Extrinsics *prometheus.CounterVec

	BlocksSynced prometheus.Counter
	SyncHeight   prometheus.Gauge
	SyncFailures prometheus.Counter

	// HTTP request latency by route template, method and status
	RequestDuration *prometheus.HistogramVec

	UpdateSubscribers prometheus.Gauge
}

// New creates a new Metrics instance with all metrics registered on reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Extrinsics: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "legal_officer_extrinsics_total",
			Help: "Extrinsics handled by the synchronizers by pallet and outcome",
		}, []string{"pallet", "outcome"}),

		BlocksSynced: factory.NewCounter(prometheus.CounterOpts{
			Name: "legal_officer_blocks_synced_total",
			Help: "Blocks fully synchronized",
		}),

		SyncHeight: factory.NewGauge(prometheus.GaugeOpts{
			Name: "legal_officer_sync_height",
			Help: "Number of the last synchronized block",
		}),

		SyncFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "legal_officer_sync_failures_total",
			Help: "Synchronization runs that stopped before reaching the chain head",
		}),

		RequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "legal_officer_http_request_duration_seconds",
			Help:    "Duration of HTTP requests by route",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}, []string{"method", "route", "status"}),

		UpdateSubscribers: factory.NewGauge(prometheus.GaugeOpts{
			Name: "legal_officer_update_subscribers",
			Help: "Connected case update websocket clients",
		}),
	}
}

// IncExtrinsic records the outcome of one extrinsic.
func (m *Metrics) IncExtrinsic(pallet, outcome string) {
	if m != nil {
		m.Extrinsics.WithLabelValues(pallet, outcome).Inc()
	}
}

// BlockSynced records that a block was fully processed.
func (m *Metrics) BlockSynced(number int64) {
	if m != nil {
		m.BlocksSynced.Inc()
		m.SyncHeight.Set(float64(number))
	}
}

// IncSyncFailure records a synchronization run that did not complete.
func (m *Metrics) IncSyncFailure() {
	if m != nil {
		m.SyncFailures.Inc()
	}
}

// ObserveRequest records the duration of an HTTP request.
func (m *Metrics) ObserveRequest(method, route string, status int, d time.Duration) {
	if m != nil {
		m.RequestDuration.WithLabelValues(method, route, strconv.Itoa(status)).Observe(d.Seconds())
	}
}

// SetSubscribers records the number of connected update clients.
func (m *Metrics) SetSubscribers(n int) {
	if m != nil {
		m.UpdateSubscribers.Set(float64(n))
	}
}
