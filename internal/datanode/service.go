package datanode

import (
	"go.uber.org/zap"

	"github.com/BrianChoi12/minidfs/internal/wire"
)

// Metrics is the narrow interface the storage-node service needs from
// datanodemetrics.Metrics, kept local so this package does not import
// datanodemetrics.
type Metrics interface {
	IncStoreRequests()
	IncStoreRejected()
	IncReadRequests()
	IncReadNotFound()
	SetUsedSpace(bytes int64)
	SetLoad(n int32)
}

// Service implements the storage node's RPC surface over an Engine. It is
// registered with net/rpc under the name "DataNode".
type Service struct {
	engine  *Engine
	logger  *zap.Logger
	metrics Metrics
}

// NewService constructs a storage-node RPC service over engine. metrics
// may be nil, in which case metrics collection is skipped.
func NewService(engine *Engine, logger *zap.Logger, metrics Metrics) *Service {
	return &Service{engine: engine, logger: logger, metrics: metrics}
}

// StoreChunk writes the chunk's bytes to the local engine.
func (s *Service) StoreChunk(args *wire.ChunkData, reply *wire.Ack) error {
	s.engine.IncrementLoad()
	defer s.engine.DecrementLoad()

	if s.metrics != nil {
		s.metrics.IncStoreRequests()
	}

	if err := s.engine.StoreChunk(args.ChunkID, args.Data); err != nil {
		if s.metrics != nil {
			s.metrics.IncStoreRejected()
		}
		s.logger.Warn("store chunk failed",
			zap.String("chunk_id", args.ChunkID),
			zap.Error(err))
		reply.OK = false
		reply.Message = err.Error()
		return nil
	}

	if s.metrics != nil {
		s.metrics.SetUsedSpace(s.engine.UsedSpace())
		s.metrics.SetLoad(s.engine.Load())
	}

	s.logger.Info("chunk stored",
		zap.String("chunk_id", args.ChunkID),
		zap.Int("size", len(args.Data)))

	reply.OK = true
	reply.Message = "stored"
	return nil
}

// ReadChunk returns the requested chunk's bytes, or wire.ErrNotFound if it
// is absent or fails its integrity check.
func (s *Service) ReadChunk(args *wire.ChunkRequest, reply *wire.ChunkData) error {
	s.engine.IncrementLoad()
	defer s.engine.DecrementLoad()

	if s.metrics != nil {
		s.metrics.IncReadRequests()
	}

	data, ok := s.engine.ReadChunk(args.ChunkID)
	if !ok {
		if s.metrics != nil {
			s.metrics.IncReadNotFound()
		}
		return wire.ErrNotFound
	}

	reply.ChunkID = args.ChunkID
	reply.Data = data
	return nil
}
