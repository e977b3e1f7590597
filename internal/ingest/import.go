// Package ingest imports dropped trajectory source files as stored runs:
// one-shot through the Import helpers, continuously through the watch Worker.
// EDR tables integrate under the configured defaults; HVE motion files fan
// out to one run per vehicle through the baker.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/banshee-data/trajectory.report/internal/bake"
	"github.com/banshee-data/trajectory.report/internal/config"
	"github.com/banshee-data/trajectory.report/internal/db"
	"github.com/banshee-data/trajectory.report/internal/edr"
	"github.com/banshee-data/trajectory.report/internal/kinematics"
	"github.com/banshee-data/trajectory.report/internal/motionfile"
	"github.com/banshee-data/trajectory.report/internal/posetrack"
)

// SaveOutput persists one baked track as a run.
func SaveOutput(database *db.DB, out *bake.Output) (*db.Run, error) {
	run := &db.Run{
		Name:        out.Name,
		Source:      out.Source,
		Units:       string(out.Units),
		FPS:         int(math.Round(out.FPS)),
		TimeOffset:  out.TimeOffset,
		Diagnostics: out.Diagnostics,
	}
	if err := database.InsertRun(run, out.Samples, out.Track); err != nil {
		return nil, fmt.Errorf("save run %s: %w", out.Name, err)
	}
	return run, nil
}

// edrOptions assembles the table and integrator options from the config.
func edrOptions(cfg *config.Config) (edr.TableOptions, kinematics.Options) {
	topts := edr.TableOptions{
		Units:    cfg.GetSourceUnits(),
		Input:    cfg.GetInputMode(),
		Steering: cfg.GetSteeringParams(),
	}
	kopts := kinematics.Options{
		FPS:     cfg.GetDefaultFPS(),
		Strict:  cfg.GetStrict(),
		PreRoll: cfg.GetPreRoll(),
	}
	if cfg.GetSlipEnabled() {
		kopts.Slip = edr.SideslipEstimator(cfg.GetSlipParams())
	}
	return topts, kopts
}

func bakeEDR(ctx context.Context, database *db.DB, cfg *config.Config, name string, r io.Reader) (*db.Run, error) {
	topts, kopts := edrOptions(cfg)
	table, err := edr.ReadTable(r, topts)
	if err != nil {
		return nil, err
	}
	out, err := bake.EDRItem(name, table, topts.Units, kopts).Bake(ctx)
	if err != nil {
		return nil, err
	}
	return SaveOutput(database, out)
}

// bakeMotion persists one run per vehicle. A vehicle without the kinematic
// channels fails alone; the other vehicles still import, and the joined
// error reports every failure.
func bakeMotion(ctx context.Context, database *db.DB, cfg *config.Config, f *motionfile.File) ([]*db.Run, error) {
	items := bake.MotionItems(f, cfg.GetSourceUnits())
	results := bake.New(cfg.GetBakeWorkers()).Run(ctx, items)

	var runs []*db.Run
	var errs []error
	for _, res := range results {
		if res.Err != nil {
			errs = append(errs, fmt.Errorf("bake %s: %w", res.Name, res.Err))
			continue
		}
		run, err := SaveOutput(database, res.Output)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		runs = append(runs, run)
	}
	return runs, errors.Join(errs...)
}

// ImportEDRFile integrates one EDR CSV under the configured defaults and
// persists it as a run named after the file.
func ImportEDRFile(ctx context.Context, database *db.DB, cfg *config.Config, path string) (*db.Run, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	run, err := bakeEDR(ctx, database, cfg, baseName(path), f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return run, nil
}

// ImportMotionFile bakes every vehicle of an HVE variable-output file and
// persists one run per vehicle.
func ImportMotionFile(ctx context.Context, database *db.DB, cfg *config.Config, path string) ([]*db.Run, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	mf, err := motionfile.Parse(f, baseName(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	runs, err := bakeMotion(ctx, database, cfg, mf)
	if err != nil {
		return runs, fmt.Errorf("%s: %w", path, err)
	}
	return runs, nil
}

// ImportXYZRPYFile imports a pose CSV as a run, densely resampled at the
// configured frame rate.
func ImportXYZRPYFile(ctx context.Context, database *db.DB, cfg *config.Config, path string) (*db.Run, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	fps := cfg.GetDefaultFPS()
	track, err := posetrack.ImportCSV(f, posetrack.ImportOptions{
		FPS:   fps,
		Units: cfg.GetSourceUnits(),
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	out, err := bake.XYZRPYItem(baseName(path), track, fps, cfg.GetSourceUnits()).Bake(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return SaveOutput(database, out)
}

// baseName strips the directory and extension: runs imported from files are
// named after the file.
func baseName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
