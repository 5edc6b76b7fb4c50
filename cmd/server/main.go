package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/blagoySimandov/nem12ingest/internal/api"
	"github.com/blagoySimandov/nem12ingest/internal/config"
	"github.com/blagoySimandov/nem12ingest/internal/logger"
	"github.com/blagoySimandov/nem12ingest/internal/state"
)

func main() {
	cfg := config.Load()
	logger.SetLevel(cfg.LogLevel)

	var store state.Store
	if cfg.DatabaseURL != "" {
		pgStore, err := state.NewPostgresStore(cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("Failed to create PostgreSQL store: %v", err)
		}
		store = pgStore
	} else {
		logger.Log.Warn("DATABASE_URL not set, run history is kept in memory")
		store = state.NewMemoryStore()
	}
	defer store.Close()

	manager := state.NewManager(store, state.ManagerConfig{
		OutputDir:    cfg.OutputDir,
		OutputPrefix: cfg.OutputPrefix,
		Workers:      cfg.Workers,
		QueueSize:    cfg.QueueSize,
	})

	handler := api.NewIngestionHandler(manager)
	router := api.SetupRoutes(handler)

	srv := &http.Server{
		Addr:         cfg.ServerAddr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
		<-sigChan

		log.Println("Shutting down server...")

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			log.Printf("Server shutdown error: %v", err)
		}
	}()

	log.Printf("Server starting on %s", cfg.ServerAddr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("Server failed to start: %v", err)
	}

	log.Println("Waiting for running ingestions to finish...")
	manager.Wait()

	log.Println("Server stopped")
}
