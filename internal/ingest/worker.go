package ingest

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/banshee-data/trajectory.report/internal/config"
	"github.com/banshee-data/trajectory.report/internal/db"
	"github.com/banshee-data/trajectory.report/internal/monitoring"
	"github.com/banshee-data/trajectory.report/internal/motionfile"
	"github.com/banshee-data/trajectory.report/internal/security"
	"github.com/banshee-data/trajectory.report/internal/timeutil"
)

// Worker periodically scans a drop directory for new *.csv files and imports
// each one as a run. Processed files are remembered by (path, mtime): a
// re-dropped file with a newer mtime imports again, and a file that failed
// logs once and stays skipped until it changes.
type Worker struct {
	DB       *db.DB
	Dir      string
	Cfg      *config.Config
	Interval time.Duration
	Clock    timeutil.Clock
	StopChan chan struct{}

	mu   sync.Mutex
	seen map[string]time.Time
}

// NewWorker builds a watcher over dir. The scan interval, source units and
// integrator defaults come from cfg.
func NewWorker(database *db.DB, dir string, cfg *config.Config) *Worker {
	if cfg == nil {
		cfg = config.EmptyConfig()
	}
	return &Worker{
		DB:       database,
		Dir:      dir,
		Cfg:      cfg,
		Interval: cfg.GetWatchInterval(),
		Clock:    timeutil.RealClock{},
		StopChan: make(chan struct{}),
		seen:     make(map[string]time.Time),
	}
}

// Start runs the periodic scan loop in a goroutine.
func (w *Worker) Start() {
	go func() {
		ticker := w.Clock.NewTicker(w.Interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C():
				if err := w.RunOnce(context.Background()); err != nil {
					monitoring.Logf("ingest: scan error: %v", err)
				}
			case <-w.StopChan:
				return
			}
		}
	}()
}

// Stop requests the worker to stop.
func (w *Worker) Stop() {
	close(w.StopChan)
}

// RunOnce scans the watch directory once. Only the directory read itself can
// fail; per-file problems are logged and the file stays skipped until its
// mtime changes.
func (w *Worker) RunOnce(ctx context.Context) error {
	entries, err := os.ReadDir(w.Dir)
	if err != nil {
		return err
	}

	for _, entry := range entries {
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), ".csv") {
			continue
		}

		path := filepath.Join(w.Dir, entry.Name())
		if err := security.ValidatePathWithinDirectory(path, w.Dir); err != nil {
			monitoring.Logf("ingest: skipping %s: %v", path, err)
			continue
		}

		info, err := entry.Info()
		if err != nil {
			monitoring.Logf("ingest: stat %s: %v", path, err)
			continue
		}
		if !w.markSeen(path, info.ModTime()) {
			continue
		}

		n, err := w.importFile(ctx, path)
		if err != nil {
			monitoring.Logf("ingest: import %s failed: %v", path, err)
			continue
		}
		monitoring.Logf("ingest: imported %d run(s) from %s", n, path)
	}
	return nil
}

// markSeen records (path, mtime) and reports whether the pair was new.
func (w *Worker) markSeen(path string, mtime time.Time) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	if prev, ok := w.seen[path]; ok && prev.Equal(mtime) {
		return false
	}
	w.seen[path] = mtime
	return true
}

// importFile sniffs the file kind and imports it, returning the number of
// runs persisted. HVE variable output is tried first: its data rows would
// also decode as EDR samples, while an EDR table can never parse as a motion
// file.
func (w *Worker) importFile(ctx context.Context, path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}

	if mf, err := motionfile.Parse(bytes.NewReader(data), baseName(path)); err == nil {
		runs, err := bakeMotion(ctx, w.DB, w.Cfg, mf)
		if err != nil {
			if len(runs) == 0 {
				return 0, err
			}
			monitoring.Logf("ingest: %s imported partially: %v", path, err)
		}
		return len(runs), nil
	}

	if _, err := bakeEDR(ctx, w.DB, w.Cfg, baseName(path), bytes.NewReader(data)); err != nil {
		return 0, err
	}
	return 1, nil
}
