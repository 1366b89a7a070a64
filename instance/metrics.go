package instance

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	storePrometheusMetrics sync.Once

	storeLiveRecords = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "wireboard",
			Subsystem: "instance",
			Name:      "live_records",
			Help:      "Number of live records in an instance store",
		},
		[]string{"store"})
	storeBufferReallocations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "wireboard",
			Subsystem: "instance",
			Name:      "buffer_reallocations_total",
			Help:      "Number of times an instance store allocated a new device buffer",
		},
		[]string{"store"})
	storeUploadedBytes = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "wireboard",
			Subsystem: "instance",
			Name:      "uploaded_bytes_total",
			Help:      "Number of record bytes submitted to the device by an instance store",
		},
		[]string{"store"})
	storeStaleOperations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "wireboard",
			Subsystem: "instance",
			Name:      "stale_operations_total",
			Help:      "Number of updates and removes that referred to a stale handle",
		},
		[]string{"store", "operation"})
)

// storeMetrics holds the collectors of one store, curried by its label.
type storeMetrics struct {
	live          prometheus.Gauge
	reallocations prometheus.Counter
	uploadedBytes prometheus.Counter
	staleUpdates  prometheus.Counter
	staleRemoves  prometheus.Counter
}

func newStoreMetrics(label string) storeMetrics {
	storePrometheusMetrics.Do(func() {
		prometheus.MustRegister(storeLiveRecords)
		prometheus.MustRegister(storeBufferReallocations)
		prometheus.MustRegister(storeUploadedBytes)
		prometheus.MustRegister(storeStaleOperations)
	})

	return storeMetrics{
		live:          storeLiveRecords.WithLabelValues(label),
		reallocations: storeBufferReallocations.WithLabelValues(label),
		uploadedBytes: storeUploadedBytes.WithLabelValues(label),
		staleUpdates:  storeStaleOperations.WithLabelValues(label, "update"),
		staleRemoves:  storeStaleOperations.WithLabelValues(label, "remove"),
	}
}
