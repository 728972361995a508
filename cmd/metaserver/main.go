// Command metaserver runs the metadata coordinator process.
package main

import (
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/BrianChoi12/minidfs/internal/coordinator"
	"github.com/BrianChoi12/minidfs/internal/coordinatormetrics"
	"github.com/BrianChoi12/minidfs/internal/logging"
	"github.com/BrianChoi12/minidfs/internal/rpctransport"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "metaserver:", err)
		os.Exit(1)
	}
}

func run() error {
	cfg := coordinator.DefaultConfig()

	listenAddr := flag.String("listen-addr", cfg.ListenAddr, "address to listen on for storage-node and client RPCs")
	metricsAddr := flag.String("metrics-addr", "0.0.0.0:9101", "address to serve /metrics on")
	verbose := flag.Bool("v", false, "enable verbose development logging")
	flag.Parse()

	cfg.ListenAddr = *listenAddr

	logger, err := logging.New("metaserver", *verbose)
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}
	defer logger.Sync()

	registry := prometheus.NewRegistry()
	metrics := coordinatormetrics.New(registry)

	service := coordinator.New(cfg, logger, metrics)

	server, err := rpctransport.NewServer(cfg.ListenAddr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", cfg.ListenAddr, err)
	}
	if err := server.RegisterName("Coordinator", service); err != nil {
		return fmt.Errorf("register coordinator service: %w", err)
	}

	go server.Serve()
	logger.Info("metaserver listening", zap.String("address", server.Addr()))

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
	if err := server.Stop(); err != nil {
		logger.Warn("error stopping RPC server", zap.Error(err))
	}
	return nil
}
