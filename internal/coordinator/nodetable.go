package coordinator

import (
	"sync"
	"time"

	"go.uber.org/zap"
)

// evictionRecorder is the narrow slice of coordinatormetrics.Metrics that
// the node table needs; kept as an interface here so the coordinator
// package does not import coordinatormetrics.
type evictionRecorder interface {
	IncStaleEvictions()
}

// nodeTable is the coordinator's in-memory view of the storage-node fleet.
// It owns its own mutex and is always locked independently of the other
// sub-structures, following a fixed nodes -> files -> chunks lock order.
type nodeTable struct {
	mu      sync.RWMutex
	nodes   map[string]*StorageNode
	logger  *zap.Logger
	metrics evictionRecorder
}

func newNodeTable(logger *zap.Logger, metrics evictionRecorder) *nodeTable {
	return &nodeTable{
		nodes:   make(map[string]*StorageNode),
		logger:  logger,
		metrics: metrics,
	}
}

// register creates or resets the record for address with the supplied
// capacity (RegisterDataNode semantics).
func (t *nodeTable) register(address string, availableSpace int64) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.nodes[address] = newStorageNode(address, availableSpace)
}

// applyHeartbeat updates (or creates) the record for address from a
// heartbeat report.
func (t *nodeTable) applyHeartbeat(address string, availableSpace int64, currentLoad int32, storedChunkIDs []string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	node, ok := t.nodes[address]
	if !ok {
		node = newStorageNode(address, availableSpace)
		t.nodes[address] = node
	}

	node.AvailableSpace = availableSpace
	node.CurrentLoad = currentLoad
	node.LastHeartbeat = time.Now()
	for _, id := range storedChunkIDs {
		node.ChunkIDs[id] = struct{}{}
	}
}

// sweepStale removes every node whose last heartbeat is older than
// StaleTimeout. Called opportunistically before placement and before
// every activeAddresses call; no dedicated timer is required for
// correctness.
func (t *nodeTable) sweepStale() {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := time.Now()
	for addr, node := range t.nodes {
		if node.isStale(now) {
			delete(t.nodes, addr)
			t.logger.Info("evicting stale storage node", zap.String("address", addr))
			if t.metrics != nil {
				t.metrics.IncStaleEvictions()
			}
		}
	}
}

// snapshot returns a defensive copy of every node currently in the table,
// live or not. Callers that need only live nodes should filter with
// isLive.
func (t *nodeTable) snapshot() []StorageNode {
	t.mu.RLock()
	defer t.mu.RUnlock()

	out := make([]StorageNode, 0, len(t.nodes))
	for _, n := range t.nodes {
		ids := make(map[string]struct{}, len(n.ChunkIDs))
		for id := range n.ChunkIDs {
			ids[id] = struct{}{}
		}
		out = append(out, StorageNode{
			Address:        n.Address,
			AvailableSpace: n.AvailableSpace,
			CurrentLoad:    n.CurrentLoad,
			ChunkIDs:       ids,
			LastHeartbeat:  n.LastHeartbeat,
		})
	}
	return out
}

// activeAddresses returns the set of addresses currently considered live.
func (t *nodeTable) activeAddresses() map[string]struct{} {
	t.sweepStale()

	t.mu.RLock()
	defer t.mu.RUnlock()

	now := time.Now()
	active := make(map[string]struct{})
	for addr, n := range t.nodes {
		if n.isLive(now) {
			active[addr] = struct{}{}
		}
	}
	return active
}

// applyTentativePlacement records the coordinator's own best-effort
// accounting for a newly placed chunk: decrement available space,
// increment load. Superseded by the node's next heartbeat.
func (t *nodeTable) applyTentativePlacement(address string, chunkSize int64) {
	t.mu.Lock()
	defer t.mu.Unlock()

	node, ok := t.nodes[address]
	if !ok {
		return
	}
	node.AvailableSpace -= chunkSize
	node.CurrentLoad++
}
