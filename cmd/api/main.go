package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"vet-clinic-records/internal/bootstrap"
	"vet-clinic-records/internal/config"
	"vet-clinic-records/internal/platform/logger"
	"vet-clinic-records/internal/router"
)

// @title Vet Clinic Records API
// @version 1.0
// @description Mascotas, tratamientos y turnos de la clínica veterinaria.
// @BasePath /api
func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "api: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config load: %w", err)
	}

	log, err := logger.NewFromEnv()
	if err != nil {
		return fmt.Errorf("logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	log.Info("api starting", map[string]any{
		"env":       cfg.Env,
		"http_port": cfg.HTTPPort,
		"store":     cfg.Store,
		"auth_mode": cfg.AuthMode,
		"base_path": cfg.BasePath,
	})

	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	stores, err := bootstrap.OpenStores(rootCtx, cfg, log)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer func() {
		if err := stores.Close(context.Background()); err != nil {
			log.Error("store close failed", map[string]any{"error": err})
		}
	}()

	verifier, err := bootstrap.Verifier(cfg)
	if err != nil {
		return fmt.Errorf("auth verifier: %w", err)
	}
	if verifier == nil {
		log.Warn("auth in dev mode: X-Debug-User-ID is trusted", nil)
	}

	srv := &http.Server{
		Addr: ":" + cfg.HTTPPort,
		Handler: router.NewRouter(router.Options{
			AuthVerifier:    verifier,
			PetRepo:         stores.Pets,
			AppointmentRepo: stores.Appointments,
			Logger:          log,
			BasePath:        cfg.BasePath,
			CORSOrigins:     cfg.CORSOrigins,
			Ready:           stores.Ready,
		}),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("http server listening", map[string]any{"addr": srv.Addr})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
	case <-rootCtx.Done():
	}

	log.Info("shutting down api", nil)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
