// Command datanode runs a storage-node process.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/BrianChoi12/minidfs/internal/datanode"
	"github.com/BrianChoi12/minidfs/internal/datanodemetrics"
	"github.com/BrianChoi12/minidfs/internal/logging"
	"github.com/BrianChoi12/minidfs/internal/rpctransport"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "datanode:", err)
		os.Exit(1)
	}
}

func run() error {
	cfg := datanode.DefaultConfig()

	listenAddr := flag.String("datanode-addr", cfg.ListenAddr, "address to listen on for client and coordinator RPCs")
	coordinatorAddr := flag.String("metaserver-addr", cfg.CoordinatorAddr, "address of the metadata coordinator")
	storagePath := flag.String("storage-path", cfg.StoragePath, "directory to store chunk data under")
	storageCapacityGB := flag.Int64("storage-capacity", 10, "total chunk storage capacity in GB")
	metricsAddr := flag.String("metrics-addr", "0.0.0.0:9102", "address to serve /metrics on")
	gcOrphans := flag.String("gc-orphans", "", "path to a file of valid chunk ids (one per line); if set, delete any locally stored chunk not listed, then exit")
	verbose := flag.Bool("v", false, "enable verbose development logging")
	flag.Parse()

	cfg.ListenAddr = *listenAddr
	cfg.CoordinatorAddr = *coordinatorAddr
	cfg.StoragePath = *storagePath
	cfg.CapacityBytes = datanode.CapacityBytesFromGB(*storageCapacityGB)

	logger, err := logging.New("datanode", *verbose)
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}
	defer logger.Sync()

	engine, err := datanode.NewEngine(cfg.StoragePath, cfg.CapacityBytes)
	if err != nil {
		return fmt.Errorf("build chunk engine: %w", err)
	}
	logger.Info("chunk engine recovered",
		zap.String("path", cfg.StoragePath),
		zap.Int64("used_bytes", engine.UsedSpace()),
		zap.Int64("capacity_bytes", engine.Capacity()))

	if *gcOrphans != "" {
		return runOrphanCleanup(engine, logger, *gcOrphans)
	}

	registry := prometheus.NewRegistry()
	metrics := datanodemetrics.New(registry, cfg.CapacityBytes)

	service := datanode.NewService(engine, logger, metrics)

	server, err := rpctransport.NewServer(cfg.ListenAddr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", cfg.ListenAddr, err)
	}
	if err := server.RegisterName("DataNode", service); err != nil {
		return fmt.Errorf("register storage-node service: %w", err)
	}

	go server.Serve()
	logger.Info("datanode listening", zap.String("address", server.Addr()))

	heartbeat := datanode.NewHeartbeatLoop(cfg, engine, logger)
	if err := heartbeat.Register(); err != nil {
		logger.Warn("initial registration with coordinator failed", zap.Error(err))
	}
	go heartbeat.Run()

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	httpServer := &http.Server{Addr: *metricsAddr, Handler: mux}
	go func() {
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Warn("metrics server stopped", zap.Error(err))
		}
	}()
	logger.Info("metrics listening", zap.String("address", *metricsAddr))

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	logger.Info("shutting down")
	heartbeat.Stop()
	if err := server.Stop(); err != nil {
		logger.Warn("error stopping RPC server", zap.Error(err))
	}
	return nil
}

// runOrphanCleanup reads validPath (one chunk id per line) and deletes any
// locally stored chunk not listed in it, then returns. It does not start
// the RPC server or heartbeat loop.
func runOrphanCleanup(engine *datanode.Engine, logger *zap.Logger, validPath string) error {
	f, err := os.Open(validPath)
	if err != nil {
		return fmt.Errorf("open valid-ids file: %w", err)
	}
	defer f.Close()

	valid := make(map[string]struct{})
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		id := scanner.Text()
		if id == "" {
			continue
		}
		valid[id] = struct{}{}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read valid-ids file: %w", err)
	}

	removed := engine.CleanupOrphanedChunks(valid)
	logger.Info("orphan cleanup complete",
		zap.Int("removed_count", len(removed)),
		zap.Strings("removed_ids", removed))
	return nil
}
