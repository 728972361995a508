// Package coordinator implements the metadata coordinator: the
// filename -> chunk-list -> node-set index, the placement policy, the
// liveness tracker and the location cache, glued into four RPC
// handlers.
package coordinator

import (
	"go.uber.org/zap"

	"github.com/BrianChoi12/minidfs/internal/cache"
	"github.com/BrianChoi12/minidfs/internal/wire"
)

// Metrics is the narrow interface the coordinator service needs from
// coordinatormetrics.Metrics, kept local so this package does not import
// coordinatormetrics.
type Metrics interface {
	evictionRecorder
	IncRegisterRequests()
	IncHeartbeats()
	IncAllocations()
	IncAllocationsRejected()
	IncLookups()
	IncLookupsNotFound()
	SetActiveNodes(n int)
	SetCacheSize(n int)
}

// Service implements the coordinator's RPC surface. It is registered with
// net/rpc under the name "Coordinator".
type Service struct {
	nodes    *nodeTable
	metadata *metadataIndex
	cache    *cache.LocationCache
	logger   *zap.Logger
	metrics  Metrics
}

// New constructs a coordinator service. metrics may be nil, in which case
// metrics collection is skipped.
func New(cfg Config, logger *zap.Logger, metrics Metrics) *Service {
	var rec evictionRecorder
	if metrics != nil {
		rec = metrics
	}
	return &Service{
		nodes:    newNodeTable(logger, rec),
		metadata: newMetadataIndex(),
		cache:    cache.New(cfg.CacheCapacity),
		logger:   logger,
		metrics:  metrics,
	}
}

// RegisterDataNode creates or resets a StorageNode record. Always
// succeeds.
func (s *Service) RegisterDataNode(args *wire.DataNodeInfo, reply *wire.Ack) error {
	s.nodes.register(args.Address, args.AvailableSpace)
	if s.metrics != nil {
		s.metrics.IncRegisterRequests()
	}

	s.logger.Info("storage node registered",
		zap.String("address", args.Address),
		zap.Int64("available_space", args.AvailableSpace))

	reply.OK = true
	reply.Message = "registered"
	return nil
}

// Heartbeat updates the node record (auto-registering an unknown address)
// and rebuilds chunk placement entries for every reported chunk id.
func (s *Service) Heartbeat(args *wire.DataNodeHeartbeat, reply *wire.HeartbeatResponse) error {
	s.nodes.applyHeartbeat(args.Address, args.AvailableSpace, args.CurrentLoad, args.StoredChunkIDs)

	for _, id := range args.StoredChunkIDs {
		s.metadata.addPlacement(id, args.Address)
	}

	if s.metrics != nil {
		s.metrics.IncHeartbeats()
		s.metrics.SetActiveNodes(len(s.nodes.activeAddresses()))
	}

	reply.OK = true
	reply.ChunksToDelete = nil
	return nil
}

// AllocateChunkLocation generates a new chunk id, places it on one
// storage node and records the allocation.
func (s *Service) AllocateChunkLocation(args *wire.ChunkAllocationRequest, reply *wire.ChunkLocation) error {
	address := s.nodes.selectNodeForChunk(args.ChunkSize)
	if address == "" {
		if s.metrics != nil {
			s.metrics.IncAllocationsRejected()
		}
		s.logger.Warn("placement exhausted",
			zap.String("filename", args.Filename),
			zap.Int32("chunk_index", args.ChunkIndex),
			zap.Int64("chunk_size", args.ChunkSize))
		return wire.ErrResourceExhausted
	}

	chunkID := s.metadata.nextChunkID(args.Filename, args.ChunkIndex)

	s.metadata.recordAllocation(args.Filename, args.ChunkIndex, chunkID, args.ChunkSize)
	s.metadata.setPlacement(chunkID, []string{address})
	s.nodes.applyTentativePlacement(address, args.ChunkSize)

	if s.metrics != nil {
		s.metrics.IncAllocations()
	}

	s.logger.Info("chunk allocated",
		zap.String("filename", args.Filename),
		zap.Int32("chunk_index", args.ChunkIndex),
		zap.String("chunk_id", chunkID),
		zap.String("address", address))

	reply.ChunkID = chunkID
	reply.DataNodeAddresses = []string{address}
	return nil
}

// GetFileLocation returns every chunk of filename, filtering each chunk's
// address list down to currently-live hosts and consulting/populating the
// location cache along the way.
func (s *Service) GetFileLocation(args *wire.FileLocationRequest, reply *wire.FileLocationResponse) error {
	if s.metrics != nil {
		s.metrics.IncLookups()
	}

	f := s.metadata.getFile(args.Filename)
	if f == nil {
		if s.metrics != nil {
			s.metrics.IncLookupsNotFound()
		}
		reply.Found = false
		reply.Chunks = nil
		return nil
	}

	active := s.nodes.activeAddresses()

	chunks := make([]wire.ChunkLocation, 0, len(f.ChunkIDs))
	for _, chunkID := range f.ChunkIDs {
		if chunkID == "" {
			continue
		}

		if entry, ok := s.cache.Get(chunkID); ok {
			chunks = append(chunks, wire.ChunkLocation{
				ChunkID:           entry.ChunkID,
				DataNodeAddresses: entry.Addresses,
			})
			continue
		}

		all := s.metadata.locations(chunkID)
		live := make([]string, 0, len(all))
		for _, addr := range all {
			if _, ok := active[addr]; ok {
				live = append(live, addr)
			}
		}

		if len(live) == 0 {
			// No live host remains for this chunk: drop it from the
			// response rather than fail the whole call.
			continue
		}

		s.cache.Put(chunkID, cache.Entry{ChunkID: chunkID, Addresses: live})
		chunks = append(chunks, wire.ChunkLocation{ChunkID: chunkID, DataNodeAddresses: live})
	}

	if s.metrics != nil {
		s.metrics.SetCacheSize(s.cache.Size())
	}

	reply.Found = true
	reply.Chunks = chunks
	return nil
}
