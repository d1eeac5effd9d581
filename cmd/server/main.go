// InkyPi FTP browse server
//
// Serves the directory-listing and image-preview API used by the picture
// frame's settings UI, plus Prometheus metrics on a separate listener.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/flakysalt/InkyPi/internal/api"
	"github.com/flakysalt/InkyPi/internal/config"
	"github.com/flakysalt/InkyPi/internal/logging"
	"github.com/flakysalt/InkyPi/internal/metrics"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		// Can't use structured logging yet
		panic("configuration error: " + err.Error())
	}

	if err := logging.Init(logging.Config{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
	}); err != nil {
		panic("logging init error: " + err.Error())
	}
	defer logging.Sync()

	logging.Info("ftp browse server starting",
		zap.String("listen", cfg.ListenAddr),
		zap.String("metrics", cfg.MetricsAddr))

	// Metrics listener
	metricsMux := http.NewServeMux()
	metricsMux.Handle("/metrics", metrics.Handler())
	metricsSrv := &http.Server{Addr: cfg.MetricsAddr, Handler: metricsMux}
	go func() {
		if err := metricsSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logging.Error("metrics server failed", zap.Error(err))
		}
	}()

	// API listener
	apiSrv := &http.Server{
		Addr:    cfg.ListenAddr,
		Handler: api.NewServer(cfg.FTPTimeout, cfg.FTPEncoding).Handler(),
	}
	go func() {
		logging.Info("api server listening", zap.String("addr", cfg.ListenAddr))
		if err := apiSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logging.Fatal("api server failed", zap.Error(err))
		}
	}()

	// Wait for shutdown signal
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	logging.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := apiSrv.Shutdown(ctx); err != nil {
		logging.Warn("api server shutdown", zap.Error(err))
	}
	if err := metricsSrv.Shutdown(ctx); err != nil {
		logging.Warn("metrics server shutdown", zap.Error(err))
	}
	logging.Info("shutdown complete")
}
