package db

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/banshee-data/trajectory.report/internal/kinematics"
)

// ErrRunNotFound reports lookups for run ids with no stored run.
var ErrRunNotFound = errors.New("run not found")

// defaultListLimit bounds ListRuns when the caller passes no limit.
const defaultListLimit = 50

// Run is one persisted reconstruction: the metadata row for a set of
// canonical input samples and baked track points. Speeds are stored in m/s;
// display conversion happens at the API edge.
type Run struct {
	ID          string    `json:"run_id"`
	Name        string    `json:"name"`
	Source      string    `json:"source"`
	Units       string    `json:"units"`
	FPS         int       `json:"fps"`
	SampleCount int       `json:"sample_count"`
	FrameCount  int       `json:"frame_count"`
	TimeOffset  float64   `json:"time_offset"`
	Diagnostics []string  `json:"diagnostics,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// NewRunID returns a fresh run identifier.
func NewRunID() string {
	return "run_" + uuid.NewString()
}

const runColumns = `run_id, name, source, units, fps, sample_count,
	frame_count, time_offset, diagnostics, created_at`

// InsertRun stores a run with its samples and track points in one
// transaction. A missing ID and CreatedAt are filled in; SampleCount and
// FrameCount always reflect the stored rows.
func (db *DB) InsertRun(run *Run, samples []kinematics.Sample, track kinematics.OutputTrack) error {
	if run.ID == "" {
		run.ID = NewRunID()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now()
	}
	run.SampleCount = len(samples)
	run.FrameCount = len(track)

	diagJSON := []byte("[]")
	if run.Diagnostics != nil {
		var err error
		diagJSON, err = json.Marshal(run.Diagnostics)
		if err != nil {
			return fmt.Errorf("failed to encode run diagnostics: %w", err)
		}
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(`
		INSERT INTO runs (run_id, name, source, units, fps, sample_count,
			frame_count, time_offset, diagnostics, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.Name, run.Source, run.Units, run.FPS, run.SampleCount,
		run.FrameCount, run.TimeOffset, string(diagJSON), run.CreatedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}

	sampleStmt, err := tx.Prepare(`
		INSERT INTO run_samples (run_id, seq, time, speed_mps, yaw_rate_rad)
		VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare sample insert: %w", err)
	}
	defer sampleStmt.Close()

	for i, s := range samples {
		if _, err := sampleStmt.Exec(run.ID, i, s.Time, s.Speed, s.YawRate); err != nil {
			return fmt.Errorf("failed to insert sample %d: %w", i, err)
		}
	}

	trackStmt, err := tx.Prepare(`
		INSERT INTO track_points (run_id, seq, frame, x, y, heading_rad, speed_mps, yaw_rate_rad)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare track insert: %w", err)
	}
	defer trackStmt.Close()

	for i, p := range track {
		if _, err := trackStmt.Exec(run.ID, i, p.Frame, p.X, p.Y, p.Heading, p.Speed, p.YawRate); err != nil {
			return fmt.Errorf("failed to insert track point %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit run: %w", err)
	}
	return nil
}

// ListRuns returns run summaries, newest first. A non-positive limit uses
// the default.
func (db *DB) ListRuns(limit int) ([]Run, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}

	rows, err := db.Query(`
		SELECT `+runColumns+`
		FROM runs
		ORDER BY created_at DESC, rowid DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, *run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating runs: %w", err)
	}

	return runs, nil
}

// GetRun retrieves run metadata by id.
func (db *DB) GetRun(id string) (*Run, error) {
	row := db.QueryRow(`SELECT `+runColumns+` FROM runs WHERE run_id = ?`, id)

	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}
	return run, nil
}

// GetSamples returns a run's canonical input samples in input order.
func (db *DB) GetSamples(id string) ([]kinematics.Sample, error) {
	if err := db.requireRun(id); err != nil {
		return nil, err
	}

	rows, err := db.Query(`
		SELECT time, speed_mps, yaw_rate_rad
		FROM run_samples
		WHERE run_id = ?
		ORDER BY seq`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query samples: %w", err)
	}
	defer rows.Close()

	var samples []kinematics.Sample
	for rows.Next() {
		var s kinematics.Sample
		if err := rows.Scan(&s.Time, &s.Speed, &s.YawRate); err != nil {
			return nil, fmt.Errorf("failed to scan sample: %w", err)
		}
		samples = append(samples, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating samples: %w", err)
	}

	return samples, nil
}

// GetTrack returns a run's baked track points in emission order.
func (db *DB) GetTrack(id string) (kinematics.OutputTrack, error) {
	if err := db.requireRun(id); err != nil {
		return nil, err
	}

	rows, err := db.Query(`
		SELECT frame, x, y, heading_rad, speed_mps, yaw_rate_rad
		FROM track_points
		WHERE run_id = ?
		ORDER BY seq`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query track: %w", err)
	}
	defer rows.Close()

	var track kinematics.OutputTrack
	for rows.Next() {
		var p kinematics.TrackPoint
		if err := rows.Scan(&p.Frame, &p.X, &p.Y, &p.Heading, &p.Speed, &p.YawRate); err != nil {
			return nil, fmt.Errorf("failed to scan track point: %w", err)
		}
		track = append(track, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating track: %w", err)
	}

	return track, nil
}

// SpeedSeries returns a run's per-frame speeds (m/s) in emission order,
// for stats without materialising the full track.
func (db *DB) SpeedSeries(id string) ([]float64, error) {
	if err := db.requireRun(id); err != nil {
		return nil, err
	}

	rows, err := db.Query(`
		SELECT speed_mps
		FROM track_points
		WHERE run_id = ?
		ORDER BY seq`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query speeds: %w", err)
	}
	defer rows.Close()

	var speeds []float64
	for rows.Next() {
		var v float64
		if err := rows.Scan(&v); err != nil {
			return nil, fmt.Errorf("failed to scan speed: %w", err)
		}
		speeds = append(speeds, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating speeds: %w", err)
	}

	return speeds, nil
}

// DeleteRun removes a run and all its sample and track rows.
func (db *DB) DeleteRun(id string) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM track_points WHERE run_id = ?", id); err != nil {
		return fmt.Errorf("failed to delete track points: %w", err)
	}
	if _, err := tx.Exec("DELETE FROM run_samples WHERE run_id = ?", id); err != nil {
		return fmt.Errorf("failed to delete samples: %w", err)
	}

	res, err := tx.Exec("DELETE FROM runs WHERE run_id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete run: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete result: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit delete: %w", err)
	}
	return nil
}

func (db *DB) requireRun(id string) error {
	var one int
	err := db.QueryRow("SELECT 1 FROM runs WHERE run_id = ?", id).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	if err != nil {
		return fmt.Errorf("failed to check run: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (*Run, error) {
	var run Run
	var diagJSON string
	var createdUnix int64

	err := row.Scan(
		&run.ID, &run.Name, &run.Source, &run.Units, &run.FPS,
		&run.SampleCount, &run.FrameCount, &run.TimeOffset,
		&diagJSON, &createdUnix,
	)
	if err != nil {
		return nil, err
	}

	if diagJSON != "" && diagJSON != "[]" {
		if err := json.Unmarshal([]byte(diagJSON), &run.Diagnostics); err != nil {
			return nil, fmt.Errorf("failed to decode run diagnostics: %w", err)
		}
	}
	run.CreatedAt = time.Unix(createdUnix, 0)

	return &run, nil
}
