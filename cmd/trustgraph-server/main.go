package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/roamsocial/trustgraph/internal/config"
	"github.com/roamsocial/trustgraph/internal/server"
	"github.com/roamsocial/trustgraph/internal/storage"
	"github.com/roamsocial/trustgraph/internal/storage/postgres"
	"github.com/roamsocial/trustgraph/internal/storage/sqlite"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize storage backend
	var relStore storage.RelationshipStore
	var contentStore storage.ContentStore

	switch cfg.Storage.Engine {
	case "postgres":
		store, err := postgres.NewStore(cfg.Storage.DSN)
		if err != nil {
			log.Fatalf("Failed to initialize postgres storage: %v", err)
		}
		defer store.Close()
		relStore = store
		contentStore = store
	case "sqlite", "":
		if dir := filepath.Dir(cfg.Storage.DSN); dir != "." && dir != "" {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				log.Fatalf("Failed to create data directory %s: %v", dir, err)
			}
		}
		store, err := sqlite.NewStore(cfg.Storage.DSN)
		if err != nil {
			log.Fatalf("Failed to initialize sqlite storage: %v", err)
		}
		defer store.Close()
		relStore = store
		contentStore = store
	default:
		log.Fatalf("Unknown storage engine: %s", cfg.Storage.Engine)
	}

	// Wrap the relationship store with a circuit breaker so repeated
	// store failures surface as a transient unavailable error instead
	// of hammering a broken backend.
	relStore = storage.NewBreakerStore(relStore)

	// Setup context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Start server
	addr, _ := server.Start(ctx, cfg, relStore, contentStore)
	log.Printf("Trust-graph API running at http://%s (storage: %s)", addr, cfg.Storage.Engine)

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	log.Println("Shutting down gracefully...")
	cancel()
	time.Sleep(1 * time.Second) // Give time for connections to close
}
