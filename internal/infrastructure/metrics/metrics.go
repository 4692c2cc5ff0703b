package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "dental_center"

// StoreMetrics groups the collectors updated by the store, its persistence and file ingestion
type StoreMetrics struct {
	Transitions    *prometheus.CounterVec
	PersistWrites  prometheus.Counter
	PersistErrors  *prometheus.CounterVec
	IngestedBytes  prometheus.Counter
	IngestFailures *prometheus.CounterVec
	Records        *prometheus.GaugeVec
}

// NewStoreMetrics registers the store collectors on reg.
// Passing a fresh prometheus.NewRegistry() keeps tests isolated from the default registry.
func NewStoreMetrics(reg prometheus.Registerer) *StoreMetrics {
	factory := promauto.With(reg)
	return &StoreMetrics{
		Transitions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transitions_total",
			Help:      "Committed state transitions by action kind.",
		}, []string{"action"}),
		PersistWrites: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "persist_writes_total",
			Help:      "Snapshots handed to the durable slot.",
		}),
		PersistErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "persist_errors_total",
			Help:      "Persistence faults swallowed by the state repository.",
		}, []string{"op"}),
		IngestedBytes: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ingested_bytes_total",
			Help:      "Bytes read from uploaded files.",
		}),
		IngestFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ingest_failures_total",
			Help:      "Failed file ingestions by reason.",
		}, []string{"reason"}),
		Records: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "records",
			Help:      "Records in the current state by collection.",
		}, []string{"collection"}),
	}
}
