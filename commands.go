package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/banshee-data/trajectory.report/internal/db"
	"github.com/banshee-data/trajectory.report/internal/ingest"
	"github.com/banshee-data/trajectory.report/internal/report"
	"github.com/banshee-data/trajectory.report/internal/version"
)

// runCommand dispatches the maintenance subcommands that run instead of the
// server. Global flags (-db, -config) are parsed before the command name, so
// they are already resolved here.
func runCommand(command string, args []string) {
	switch command {
	case "migrate":
		db.RunMigrateCommand(args, *dbFile)
	case "import":
		handleImport(args)
	case "export":
		handleExport(args)
	case "version":
		fmt.Printf("trajectory-report version %s (%s, built %s)\n",
			version.Version, version.GitSHA, version.BuildTime)
	case "help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`trajectory-report - Crash reconstruction trajectory server

Usage: trajectory-report [flags]                      run the HTTP server
       trajectory-report [flags] <command> [options]  run a subcommand

Commands:
  migrate    Manage database schema migrations (up, down, status, ...)
  import     Import a source CSV as a stored run
  export     Dump a stored track as CSV
  version    Show version information
  help       Show this help message

Flags:
  -listen <addr>       Listen address (default :8080)
  -db <file>           SQLite database file (default trajectory.db)
  -units <units>       Display units: mps, kph or mph (default mps)
  -config <file>       Optional JSON config file
  -watch-dir <dir>     Watch a directory for dropped source CSVs
  -dev                 Serve static files from ./static instead of the binary`)
}

func handleImport(args []string) {
	fs := flag.NewFlagSet("import", flag.ExitOnError)
	kind := fs.String("kind", "edr", "Source kind: edr, motion or xyzrpy")
	fs.Parse(args)

	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Usage: trajectory-report import [-kind edr|motion|xyzrpy] <file.csv>")
		os.Exit(1)
	}
	path := fs.Arg(0)
	cfg := loadSettings()

	database, err := db.NewDB(*dbFile)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close()

	ctx := context.Background()
	var runs []*db.Run
	switch *kind {
	case "edr":
		run, err := ingest.ImportEDRFile(ctx, database, cfg, path)
		if err != nil {
			log.Fatalf("Import failed: %v", err)
		}
		runs = append(runs, run)
	case "motion":
		imported, err := ingest.ImportMotionFile(ctx, database, cfg, path)
		if err != nil && len(imported) == 0 {
			log.Fatalf("Import failed: %v", err)
		}
		if err != nil {
			log.Printf("some vehicles failed to import: %v", err)
		}
		runs = imported
	case "xyzrpy":
		run, err := ingest.ImportXYZRPYFile(ctx, database, cfg, path)
		if err != nil {
			log.Fatalf("Import failed: %v", err)
		}
		runs = append(runs, run)
	default:
		log.Fatalf("Unknown import kind %q, expected edr, motion or xyzrpy", *kind)
	}

	for _, run := range runs {
		fmt.Printf("%s  %s (%d frames at %d fps)\n", run.ID, run.Name, run.FrameCount, run.FPS)
	}
}

func handleExport(args []string) {
	if len(args) < 2 {
		fmt.Fprintln(os.Stderr, "Usage: trajectory-report export <run-id> <out.csv>")
		os.Exit(1)
	}
	runID, outPath := args[0], args[1]

	database, err := db.NewDB(*dbFile)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close()

	frames, err := exportTrackCSV(database, runID, outPath)
	if err != nil {
		log.Fatalf("Export failed: %v", err)
	}
	fmt.Printf("exported %d frames of %s to %s\n", frames, runID, outPath)
}

// exportTrackCSV dumps the stored track for runID to outPath and returns
// the number of frames written.
func exportTrackCSV(database *db.DB, runID, outPath string) (int, error) {
	run, err := database.GetRun(runID)
	if err != nil {
		return 0, err
	}
	track, err := database.GetTrack(runID)
	if err != nil {
		return 0, err
	}

	out, err := os.Create(outPath)
	if err != nil {
		return 0, fmt.Errorf("create %s: %w", outPath, err)
	}
	if err := report.WriteTrackCSV(out, track, float64(run.FPS)); err != nil {
		out.Close()
		return 0, err
	}
	if err := out.Close(); err != nil {
		return 0, fmt.Errorf("close %s: %w", outPath, err)
	}
	return len(track), nil
}
