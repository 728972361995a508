package datanode

import (
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/BrianChoi12/minidfs/internal/rpctransport"
	"github.com/BrianChoi12/minidfs/internal/wire"
)

// HeartbeatLoop owns the storage node's outbound connection to the
// coordinator: the initial registration call and the periodic heartbeat
// that follows it.
type HeartbeatLoop struct {
	cfg    Config
	engine *Engine
	logger *zap.Logger

	stop    chan struct{}
	stopped sync.WaitGroup
	running int32 // atomic
}

// NewHeartbeatLoop constructs a HeartbeatLoop for engine, dialing cfg's
// coordinator address lazily on each call rather than holding one
// long-lived connection, so a coordinator restart is transparent.
func NewHeartbeatLoop(cfg Config, engine *Engine, logger *zap.Logger) *HeartbeatLoop {
	return &HeartbeatLoop{
		cfg:    cfg,
		engine: engine,
		logger: logger,
		stop:   make(chan struct{}),
	}
}

// Register sends the one-time RegisterDataNode call that announces this
// node to the coordinator.
func (h *HeartbeatLoop) Register() error {
	client, err := rpctransport.Dial(h.cfg.CoordinatorAddr)
	if err != nil {
		return err
	}
	defer client.Close()

	args := &wire.DataNodeInfo{
		Address:        h.cfg.ListenAddr,
		AvailableSpace: h.engine.AvailableSpace(),
	}
	var reply wire.Ack
	if err := client.CallWithTimeout("Coordinator.RegisterDataNode", args, &reply, HeartbeatDeadline); err != nil {
		return err
	}

	h.logger.Info("registered with coordinator",
		zap.String("coordinator", h.cfg.CoordinatorAddr),
		zap.String("address", h.cfg.ListenAddr))
	return nil
}

// Run sends one heartbeat every HeartbeatPeriod until Stop is called. It
// blocks, so callers run it in its own goroutine.
func (h *HeartbeatLoop) Run() {
	atomic.StoreInt32(&h.running, 1)
	h.stopped.Add(1)
	defer h.stopped.Done()

	ticker := time.NewTicker(HeartbeatPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-h.stop:
			return
		case <-ticker.C:
			h.beat()
		}
	}
}

// Stop signals Run to exit and blocks until it has.
func (h *HeartbeatLoop) Stop() {
	if !atomic.CompareAndSwapInt32(&h.running, 1, 0) {
		return
	}
	close(h.stop)
	h.stopped.Wait()
}

func (h *HeartbeatLoop) beat() {
	if missing := h.engine.PerformHealthCheck(); len(missing) > 0 {
		h.logger.Warn("health check found chunks missing their data file",
			zap.Strings("chunk_ids", missing))
	}

	client, err := rpctransport.Dial(h.cfg.CoordinatorAddr)
	if err != nil {
		h.logger.Warn("heartbeat dial failed", zap.Error(err))
		return
	}
	defer client.Close()

	args := &wire.DataNodeHeartbeat{
		Address:        h.cfg.ListenAddr,
		StoredChunkIDs: h.engine.GetStoredChunkIDs(),
		AvailableSpace: h.engine.AvailableSpace(),
		CurrentLoad:    h.engine.Load(),
	}
	var reply wire.HeartbeatResponse
	if err := client.CallWithTimeout("Coordinator.Heartbeat", args, &reply, HeartbeatDeadline); err != nil {
		h.logger.Warn("heartbeat call failed", zap.Error(err))
		return
	}

	for _, id := range reply.ChunksToDelete {
		if h.engine.DeleteChunk(id) {
			h.logger.Info("deleted chunk on coordinator instruction", zap.String("chunk_id", id))
		}
	}
}
