/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the compliance schedule engine server.
  Handles configuration, dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Load .env (if present), parse command-line flags
  2. Initialize SQLite store
  3. Create API handler with dependencies
  4. Configure HTTP router
  5. Start maintenance scheduler
  6. Start server with graceful shutdown

CONFIGURATION:
  Flags take precedence over environment variables. A .env file in the
  working directory is loaded first.

  -port / PORT                            HTTP server port (default: 8080)
  -db / DATABASE_PATH                     SQLite database path (default: compliance.db)
                                          Use ":memory:" for in-memory database
  -horizon / GENERATION_HORIZON_DAYS      Generation look-ahead (default: 45)
  -interval / MAINTENANCE_INTERVAL        Scheduler tick, Go duration (default: 1h)

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections
  2. Wait for active requests to complete (30s timeout)
  3. Stop the maintenance scheduler
  4. Close database connection
  5. Exit

EXAMPLES:
  # Run with file database
  ./server -db="./data/compliance.db"

  # Run with in-memory database and a short horizon
  ./server -db=":memory:" -horizon=14

SEE ALSO:
  - api/server.go: Router configuration
  - api/scheduler.go: Background maintenance
  - store/sqlite/sqlite.go: Database implementation
*/
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/warp/compliance-engine/api"
	"github.com/warp/compliance-engine/store/sqlite"
)

func main() {
	// .env is optional; absence is not an error.
	godotenv.Load()

	port := flag.Int("port", envInt("PORT", 8080), "HTTP server port")
	dbPath := flag.String("db", envString("DATABASE_PATH", "compliance.db"), "SQLite database path")
	horizon := flag.Int("horizon", envInt("GENERATION_HORIZON_DAYS", api.DefaultHorizonDays), "Record generation horizon in days")
	interval := flag.Duration("interval", envDuration("MAINTENANCE_INTERVAL", time.Hour), "Maintenance scheduler interval")
	flag.Parse()

	store, err := sqlite.New(*dbPath)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer store.Close()

	handler := api.NewHandler(store)
	handler.HorizonDays = *horizon

	router := api.NewRouter(handler)

	scheduler := api.NewMaintenanceScheduler(handler)
	scheduler.CheckInterval = *interval
	scheduler.HorizonDays = *horizon
	scheduler.Start()
	defer scheduler.Stop()

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", *port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Server starting on http://localhost:%d", *port)
		log.Printf("API available at http://localhost:%d/api", *port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server stopped")
}

func envString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
