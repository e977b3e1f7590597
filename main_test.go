package main

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/banshee-data/trajectory.report/internal/db"
	"github.com/banshee-data/trajectory.report/internal/kinematics"
)

func newTestDB(t *testing.T) *db.DB {
	t.Helper()
	database, err := db.NewDB(filepath.Join(t.TempDir(), "main_test.db"))
	if err != nil {
		t.Fatalf("NewDB: %v", err)
	}
	t.Cleanup(func() { database.Close() })
	return database
}

func TestExportTrackCSV(t *testing.T) {
	database := newTestDB(t)

	run := &db.Run{Name: "crash-a", Source: "edr", Units: "metric", FPS: 10}
	samples := []kinematics.Sample{{Time: 0, Speed: 10}, {Time: 1, Speed: 10}}
	track := kinematics.OutputTrack{
		{Frame: 0, Speed: 10},
		{Frame: 10, Pose: kinematics.Pose{X: 10}, Speed: 10},
	}
	if err := database.InsertRun(run, samples, track); err != nil {
		t.Fatalf("InsertRun: %v", err)
	}

	outPath := filepath.Join(t.TempDir(), "track.csv")
	frames, err := exportTrackCSV(database, run.ID, outPath)
	if err != nil {
		t.Fatalf("exportTrackCSV: %v", err)
	}
	if frames != 2 {
		t.Errorf("frames = %d, want 2", frames)
	}

	data, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 3 {
		t.Fatalf("got %d lines, want 3", len(lines))
	}
	if want := "frame,time_s,x_m,y_m,heading_rad,speed_mps,yaw_rate_rad"; lines[0] != want {
		t.Errorf("header = %q, want %q", lines[0], want)
	}
	if want := "10,1,10,0,0,10,0"; lines[2] != want {
		t.Errorf("last row = %q, want %q", lines[2], want)
	}
}

func TestExportTrackCSVMissingRun(t *testing.T) {
	database := newTestDB(t)

	outPath := filepath.Join(t.TempDir(), "track.csv")
	if _, err := exportTrackCSV(database, "run_missing", outPath); !errors.Is(err, db.ErrRunNotFound) {
		t.Errorf("err = %v, want ErrRunNotFound", err)
	}
	if _, err := os.Stat(outPath); !os.IsNotExist(err) {
		t.Errorf("no file should be created for a missing run")
	}
}

func TestLoadSettingsDefaults(t *testing.T) {
	old := *configPath
	*configPath = ""
	t.Cleanup(func() { *configPath = old })

	cfg := loadSettings()
	if got := cfg.GetDefaultFPS(); got != 24 {
		t.Errorf("GetDefaultFPS() = %v, want 24", got)
	}
}

func TestLoadSettingsFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	if err := os.WriteFile(path, []byte(`{"default_fps": 30}`), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	old := *configPath
	*configPath = path
	t.Cleanup(func() { *configPath = old })

	cfg := loadSettings()
	if got := cfg.GetDefaultFPS(); got != 30 {
		t.Errorf("GetDefaultFPS() = %v, want 30", got)
	}
}
