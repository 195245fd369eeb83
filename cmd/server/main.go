// File: cmd/server/main.go
package main

import (
	"context"
	"errors"
	"flag"
	"log" // Standard log for messages before/after zap is active
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"krishipredict_backend/internal/config"
)

func main() {
	syncListingsCmd := flag.NewFlagSet("sync-listings", flag.ExitOnError)
	syncTimeout := syncListingsCmd.Duration("timeout", 5*time.Minute, "Maximum time to spend re-indexing listings")

	if len(os.Args) > 1 && os.Args[1] == "sync-listings" {
		if err := syncListingsCmd.Parse(os.Args[2:]); err != nil {
			log.Fatalf("FATAL: %v", err)
		}
		runListingSync(*syncTimeout)
		return
	}

	// Default: Start server
	startServer()
}

func startServer() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("FATAL: Failed to load configuration: %v", err)
	}

	server, cleanup, err := initializeServer(cfg)
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize server: %v", err)
	}
	defer cleanup()

	go func() {
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("FATAL: Server failed to start or crashed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	log.Printf("INFO: Received signal '%s'. Shutting down server...", sig)

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), cfg.ServerTimeout)
	defer cancelShutdown()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("ERROR: Server forced to shutdown due to error: %v", err)
	} else {
		log.Println("INFO: Server shutdown complete.")
	}
	log.Println("INFO: Application exiting.")
}

// runListingSync re-indexes every active listing into Elasticsearch.
func runListingSync(timeout time.Duration) {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("FATAL: Failed to load configuration for sync: %v", err)
	}
	if cfg.ElasticsearchURL == "" {
		log.Fatal("FATAL: ELASTICSEARCH_URL must be set to sync listings.")
	}

	service, cleanup, err := initializeListingSync(cfg)
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize listing sync: %v", err)
	}
	defer cleanup()

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	n, err := service.SyncIndex(ctx)
	if err != nil {
		log.Printf("ERROR: Listing synchronization failed after %d documents: %v", n, err)
		cleanup()
		os.Exit(1)
	}
	log.Printf("INFO: Listing synchronization completed. %d listings indexed.", n)
}
