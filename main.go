package main

import (
	"context"
	"embed"
	"flag"
	"log"
	"net/http"
	"os/signal"
	"sync"
	"syscall"
	"time"

	_ "modernc.org/sqlite"

	"github.com/banshee-data/trajectory.report/internal/api"
	"github.com/banshee-data/trajectory.report/internal/config"
	"github.com/banshee-data/trajectory.report/internal/db"
	"github.com/banshee-data/trajectory.report/internal/ingest"
)

var (
	//go:embed static/*
	staticFiles embed.FS
	devMode     = flag.Bool("dev", false, "Run in dev mode")
	listen      = flag.String("listen", ":8080", "Listen address")
	dbFile      = flag.String("db", "trajectory.db", "SQLite database file")
	unitsFlag   = flag.String("units", "mps", "Display units for API responses (mps, kph, mph)")
	configPath  = flag.String("config", "", "Optional JSON config file")
	watchDir    = flag.String("watch-dir", "", "Directory to watch for dropped source CSVs (disabled when empty)")
)

// loadSettings resolves the runtime configuration: the -config file when
// given, built-in defaults otherwise.
func loadSettings() *config.Config {
	if *configPath == "" {
		return config.EmptyConfig()
	}
	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config %s: %v", *configPath, err)
	}
	return cfg
}

// Main
func main() {
	flag.Parse()

	// Subcommands run and exit before any server state is set up.
	if flag.NArg() > 0 {
		runCommand(flag.Arg(0), flag.Args()[1:])
		return
	}

	if *listen == "" {
		log.Fatal("Listen address is required")
	}

	cfg := loadSettings()

	database, err := db.NewDB(*dbFile)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close()

	// Create a wait group for the HTTP server and ingest worker routines
	var wg sync.WaitGroup
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// run the ingest watcher when a watch directory is configured; it polls
	// on its own ticker, so the goroutine here only ties its lifetime to ctx
	if *watchDir != "" {
		worker := ingest.NewWorker(database, *watchDir, cfg)
		worker.Start()
		log.Printf("watching %s for source files every %s", *watchDir, worker.Interval)

		wg.Add(1)
		go func() {
			defer wg.Done()
			<-ctx.Done()
			worker.Stop()
			log.Print("ingest worker terminated")
		}()
	}

	// HTTP server goroutine
	wg.Add(1)
	go func() {
		defer wg.Done()

		mux := http.NewServeMux()

		// mount the admin debugging routes
		database.AttachAdminRoutes(mux)

		// create a new API server instance using the database and config
		// and mount the API handlers
		apiMux := api.NewServer(database, *unitsFlag, cfg).ServeMux()
		mux.Handle("/api/", http.StripPrefix("/api", apiMux))

		// read static files from the embedded filesystem in production or from
		// the local ./static in dev for easier iteration without restarting the
		// server
		var staticHandler http.Handler
		if *devMode {
			staticHandler = http.FileServer(http.Dir("./static"))
		} else {
			staticHandler = http.FileServer(http.FS(staticFiles))
		}
		mux.Handle("/", staticHandler)

		server := &http.Server{
			Addr:    *listen,
			Handler: api.LoggingMiddleware(mux),
		}

		// Start server in a goroutine so it doesn't block
		go func() {
			log.Printf("listening on %s", *listen)
			if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Fatalf("failed to start server: %v", err)
			}
		}()

		// Wait for context cancellation to shut down server
		<-ctx.Done()
		log.Println("shutting down HTTP server...")

		// Create a shutdown context with a timeout
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Printf("HTTP server shutdown error: %v", err)
			// Force close the server if graceful shutdown fails
			if err := server.Close(); err != nil {
				log.Printf("HTTP server force close error: %v", err)
			}
		}

		log.Printf("HTTP server routine stopped")
	}()

	// Wait for all goroutines to finish
	wg.Wait()
	log.Printf("Graceful shutdown complete")
}
