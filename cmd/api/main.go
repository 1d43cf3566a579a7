package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"filepond/internal/config"
	"filepond/internal/database"
	"filepond/internal/domain/filepond"
	"filepond/internal/pkg/logging"
	"filepond/internal/server"
	"filepond/internal/storage"
)

func main() {
	logging.CreateLogger()

	cfg, err := config.Load()
	if err != nil {
		logging.Fatal("invalid configuration", "err", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		logging.Fatal("db connect failed", "err", err)
	}
	if err := server.Migrate(db); err != nil {
		logging.Fatal("migration failed", "err", err)
	}

	disks, err := storage.Open(ctx, cfg.StorageConfig())
	if err != nil {
		logging.Fatal("storage setup failed", "err", err)
	}
	if _, err := disks.Disk(cfg.Filepond.Disk); err != nil {
		logging.Fatal("temp disk is not configured", "disk", cfg.Filepond.Disk, "available", disks.Names())
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	app := server.New(cfg, db, disks, reg)

	stopCleanup := app.Cleanup.ScheduleCleanup(ctx, filepond.CleanupConfig{
		Expiration:      cfg.Filepond.Expiration,
		Interval:        cfg.Filepond.CleanupInterval,
		EnableAutomatic: true,
	})
	if stopCleanup != nil {
		defer close(stopCleanup)
	}

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           app.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logging.Info("http server listening", "addr", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Fatal("http server failed", "err", err)
		}
	}()

	<-ctx.Done()
	logging.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logging.Error("graceful shutdown failed", "err", err)
	}
}
