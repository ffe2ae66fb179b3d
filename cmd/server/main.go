/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the off-schedule manager server.
  Handles configuration, dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Parse command-line flags
  2. Initialize SQLite store
  3. Build the auto-scheduler from flags
  4. Create API handler and router
  5. Start server with graceful shutdown

COMMAND-LINE FLAGS:
  -port      HTTP server port (default: 8080)
  -db        SQLite database path (default: clinic.db)
             Use ":memory:" for an in-memory database
  -clinical  Department/position marker gating scheduler eligibility
  -closed    Weekday the clinic is closed (0=Sunday .. 6=Saturday)
  -cap       Weekly work-day cap per employee

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections
  2. Wait for active requests to complete (30s timeout)
  3. Close database connection
  4. Exit

EXAMPLES:
  # Run with file database
  ./server -db="./data/clinic.db"

  # Run with in-memory database on another port
  ./server -db=":memory:" -port=3000

SEE ALSO:
  - api/server.go: Router configuration
  - api/handlers.go: HTTP handlers
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
	"syscall"
	"time"

	"github.com/SunQthecodemaker/off-schedule-manager-sub000/api"
	"github.com/SunQthecodemaker/off-schedule-manager-sub000/roster"
	"github.com/SunQthecodemaker/off-schedule-manager-sub000/store/sqlite"
)

func main() {
	// Flags
	port := flag.Int("port", 8080, "HTTP server port")
	dbPath := flag.String("db", "clinic.db", "SQLite database path")
	clinical := flag.String("clinical", "Clinical", "department/position marker for scheduler eligibility")
	closed := flag.Int("closed", int(time.Sunday), "weekday the clinic is closed (0=Sunday .. 6=Saturday)")
	weeklyCap := flag.Int("cap", 5, "weekly work-day cap per employee")
	flag.Parse()

	// Initialize store
	store, err := sqlite.New(*dbPath)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer store.Close()

	// Build the scheduler from the fixed doctor roster
	scheduler := roster.NewScheduler(roster.SchedulerConfig{
		ClosedWeekday:  time.Weekday(*closed),
		WeeklyCap:      *weeklyCap,
		ClinicalMarker: *clinical,
	})

	// Initialize handler and router
	handler := api.NewHandler(store, scheduler)
	router := api.NewRouter(handler)

	// Create server
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", *port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Printf("Server starting on http://localhost:%d", *port)
		log.Printf("API available at http://localhost:%d/api", *port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	// Wait for interrupt signal
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
