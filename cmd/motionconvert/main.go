// Command motionconvert re-exports an HVE variable-output CSV as RaceRender
// telemetry, one file per vehicle. With -tracks it also writes each vehicle's
// flattened (x, y, heading) track as JSON. No database involved.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/banshee-data/trajectory.report/internal/fsutil"
	"github.com/banshee-data/trajectory.report/internal/motionfile"
	"github.com/banshee-data/trajectory.report/internal/security"
	"github.com/banshee-data/trajectory.report/internal/units"
)

var (
	outDir     = flag.String("o", ".", "Output directory")
	unitSystem = flag.String("units", "metric", "Unit system the file was exported with: metric or imperial")
	tracks     = flag.Bool("tracks", false, "Also write per-vehicle track JSON")
)

// writeTrackJSON writes <name>_<vehicle>_track.json per vehicle into dir and
// returns the written paths.
func writeTrackJSON(fsys fsutil.FileSystem, f *motionfile.File, system units.System, dir string) ([]string, error) {
	var paths []string
	for _, vehicle := range f.Vehicles() {
		kin, err := f.ExtractKinematics(vehicle, system)
		if err != nil {
			return paths, err
		}

		name := fmt.Sprintf("%s_%s_track.json", f.Name, security.SanitizeFilename(vehicle))
		path := filepath.Join(dir, name)
		data, err := json.MarshalIndent(kin.OutputTrack(), "", "  ")
		if err != nil {
			return paths, fmt.Errorf("encode %s: %w", path, err)
		}
		if err := fsys.WriteFile(path, append(data, '\n'), 0o644); err != nil {
			return paths, fmt.Errorf("write %s: %w", path, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}

func main() {
	flag.Parse()
	if flag.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Usage: motionconvert [flags] <motion.csv>")
		flag.PrintDefaults()
		os.Exit(1)
	}
	path := flag.Arg(0)

	system, ok := units.ParseSystem(*unitSystem)
	if !ok {
		log.Fatalf("unknown unit system %q, want metric or imperial", *unitSystem)
	}

	in, err := os.Open(path)
	if err != nil {
		log.Fatalf("open input: %v", err)
	}
	defer in.Close()

	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	f, err := motionfile.Parse(in, name)
	if err != nil {
		log.Fatalf("parse %s: %v", path, err)
	}

	fsys := fsutil.OSFileSystem{}
	if err := fsys.MkdirAll(*outDir, 0o755); err != nil {
		log.Fatalf("create output dir %s: %v", *outDir, err)
	}
	written, err := f.ExportRaceRender(fsys, *outDir)
	for _, p := range written {
		log.Printf("wrote %s", p)
	}
	if err != nil {
		log.Fatalf("export failed: %v", err)
	}

	if *tracks {
		paths, err := writeTrackJSON(fsys, f, system, *outDir)
		for _, p := range paths {
			log.Printf("wrote %s", p)
		}
		if err != nil {
			log.Fatalf("track export failed: %v", err)
		}
	}
}
