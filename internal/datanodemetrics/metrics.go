// Package datanodemetrics registers the storage node's Prometheus metrics.
package datanodemetrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds every counter/gauge the storage node reports.
type Metrics struct {
	StoreRequestsTotal prometheus.Counter
	StoreRejectedTotal prometheus.Counter
	ReadRequestsTotal  prometheus.Counter
	ReadNotFoundTotal  prometheus.Counter
	UsedBytes          prometheus.Gauge
	CapacityBytes      prometheus.Gauge
	Load               prometheus.Gauge
}

// IncStoreRequests records one StoreChunk call.
func (m *Metrics) IncStoreRequests() { m.StoreRequestsTotal.Inc() }

// IncStoreRejected records one StoreChunk call rejected for lack of
// capacity or a write failure.
func (m *Metrics) IncStoreRejected() { m.StoreRejectedTotal.Inc() }

// IncReadRequests records one ReadChunk call.
func (m *Metrics) IncReadRequests() { m.ReadRequestsTotal.Inc() }

// IncReadNotFound records one ReadChunk call for an absent or corrupt
// chunk.
func (m *Metrics) IncReadNotFound() { m.ReadNotFoundTotal.Inc() }

// SetUsedSpace records the engine's current used-space figure.
func (m *Metrics) SetUsedSpace(bytes int64) { m.UsedBytes.Set(float64(bytes)) }

// SetLoad records the engine's current reported load.
func (m *Metrics) SetLoad(n int32) { m.Load.Set(float64(n)) }

// New registers and returns a fresh set of storage-node metrics against
// reg. capacity is recorded once since it does not change at runtime.
func New(reg prometheus.Registerer, capacity int64) *Metrics {
	factory := promauto.With(reg)

	m := &Metrics{
		StoreRequestsTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "datanode_store_requests_total",
			Help: "Total StoreChunk calls handled.",
		}),
		StoreRejectedTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "datanode_store_rejected_total",
			Help: "Total StoreChunk calls rejected for capacity or I/O failure.",
		}),
		ReadRequestsTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "datanode_read_requests_total",
			Help: "Total ReadChunk calls handled.",
		}),
		ReadNotFoundTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "datanode_read_not_found_total",
			Help: "Total ReadChunk calls for an absent or corrupt chunk.",
		}),
		UsedBytes: factory.NewGauge(prometheus.GaugeOpts{
			Name: "datanode_used_bytes",
			Help: "Bytes currently accounted for by the chunk engine.",
		}),
		CapacityBytes: factory.NewGauge(prometheus.GaugeOpts{
			Name: "datanode_capacity_bytes",
			Help: "Configured total chunk storage capacity in bytes.",
		}),
		Load: factory.NewGauge(prometheus.GaugeOpts{
			Name: "datanode_load",
			Help: "Current number of in-flight chunk operations.",
		}),
	}
	m.CapacityBytes.Set(float64(capacity))
	return m
}
