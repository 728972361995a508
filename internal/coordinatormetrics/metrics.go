// Package coordinatormetrics registers the coordinator's Prometheus
// metrics.
package coordinatormetrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds every counter/gauge the coordinator reports.
type Metrics struct {
	RegisterRequestsTotal    prometheus.Counter
	HeartbeatsTotal          prometheus.Counter
	AllocationsTotal         prometheus.Counter
	AllocationsRejectedTotal prometheus.Counter
	LookupsTotal             prometheus.Counter
	LookupsNotFoundTotal     prometheus.Counter
	StaleNodeEvictionsTotal  prometheus.Counter
	ActiveNodes              prometheus.Gauge
	CacheSize                prometheus.Gauge
}

// IncStaleEvictions records one storage node being evicted as stale.
func (m *Metrics) IncStaleEvictions() {
	m.StaleNodeEvictionsTotal.Inc()
}

// IncRegisterRequests records one RegisterDataNode call.
func (m *Metrics) IncRegisterRequests() { m.RegisterRequestsTotal.Inc() }

// IncHeartbeats records one Heartbeat call.
func (m *Metrics) IncHeartbeats() { m.HeartbeatsTotal.Inc() }

// IncAllocations records one successful AllocateChunkLocation call.
func (m *Metrics) IncAllocations() { m.AllocationsTotal.Inc() }

// IncAllocationsRejected records one AllocateChunkLocation call rejected
// as RESOURCE_EXHAUSTED.
func (m *Metrics) IncAllocationsRejected() { m.AllocationsRejectedTotal.Inc() }

// IncLookups records one GetFileLocation call.
func (m *Metrics) IncLookups() { m.LookupsTotal.Inc() }

// IncLookupsNotFound records one GetFileLocation call for an unknown
// filename.
func (m *Metrics) IncLookupsNotFound() { m.LookupsNotFoundTotal.Inc() }

// SetActiveNodes records the current count of live storage nodes.
func (m *Metrics) SetActiveNodes(n int) { m.ActiveNodes.Set(float64(n)) }

// SetCacheSize records the current location-cache entry count.
func (m *Metrics) SetCacheSize(n int) { m.CacheSize.Set(float64(n)) }

// New registers and returns a fresh set of coordinator metrics against
// reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		RegisterRequestsTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "coordinator_register_requests_total",
			Help: "Total RegisterDataNode calls handled.",
		}),
		HeartbeatsTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "coordinator_heartbeats_total",
			Help: "Total Heartbeat calls handled.",
		}),
		AllocationsTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "coordinator_allocations_total",
			Help: "Total successful AllocateChunkLocation calls.",
		}),
		AllocationsRejectedTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "coordinator_allocations_rejected_total",
			Help: "Total AllocateChunkLocation calls rejected as RESOURCE_EXHAUSTED.",
		}),
		LookupsTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "coordinator_lookups_total",
			Help: "Total GetFileLocation calls handled.",
		}),
		LookupsNotFoundTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "coordinator_lookups_not_found_total",
			Help: "Total GetFileLocation calls for unknown filenames.",
		}),
		StaleNodeEvictionsTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "coordinator_stale_node_evictions_total",
			Help: "Total storage nodes evicted from the node table as stale.",
		}),
		ActiveNodes: factory.NewGauge(prometheus.GaugeOpts{
			Name: "coordinator_active_nodes",
			Help: "Number of storage nodes currently considered live.",
		}),
		CacheSize: factory.NewGauge(prometheus.GaugeOpts{
			Name: "coordinator_location_cache_size",
			Help: "Current number of entries in the location cache.",
		}),
	}
}
