// Package report turns stored tracks into summary statistics, ECharts HTML
// pages and plan-view PNG plots.
package report

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/banshee-data/trajectory.report/internal/kinematics"
	"github.com/banshee-data/trajectory.report/internal/units"
)

// RunStats summarises a baked track. Speed fields are in the display units
// named by Units; distance stays in meters and angles in radians.
type RunStats struct {
	Units            string  `json:"units"`
	Duration         float64 `json:"duration_s"`
	Frames           int     `json:"frames"`
	Distance         float64 `json:"distance_m"`
	MinSpeed         float64 `json:"min_speed"`
	MeanSpeed        float64 `json:"mean_speed"`
	MaxSpeed         float64 `json:"max_speed"`
	P50Speed         float64 `json:"p50_speed"`
	P85Speed         float64 `json:"p85_speed"`
	P98Speed         float64 `json:"p98_speed"`
	PeakYawRate      float64 `json:"peak_yaw_rate_rad"`
	NetHeadingChange float64 `json:"net_heading_change_rad"`
}

// ComputeStats folds a track into a RunStats. Speeds are converted from the
// stored m/s to displayUnits at this edge; everything upstream stays metric.
func ComputeStats(track kinematics.OutputTrack, fps float64, displayUnits string) (*RunStats, error) {
	if len(track) == 0 {
		return nil, fmt.Errorf("track is empty")
	}
	if fps <= 0 {
		return nil, fmt.Errorf("fps must be positive, got %v", fps)
	}

	speeds := make([]float64, len(track))
	distance := 0.0
	peakYaw := 0.0
	for i, p := range track {
		speeds[i] = units.ConvertSpeed(p.Speed, displayUnits)
		if yaw := math.Abs(p.YawRate); yaw > peakYaw {
			peakYaw = yaw
		}
		if i > 0 {
			distance += math.Hypot(p.X-track[i-1].X, p.Y-track[i-1].Y)
		}
	}

	mean := stat.Mean(speeds, nil)

	sorted := make([]float64, len(speeds))
	copy(sorted, speeds)
	sort.Float64s(sorted)

	return &RunStats{
		Units:            displayUnits,
		Duration:         float64(track[len(track)-1].Frame-track[0].Frame) / fps,
		Frames:           len(track),
		Distance:         distance,
		MinSpeed:         sorted[0],
		MeanSpeed:        mean,
		MaxSpeed:         sorted[len(sorted)-1],
		P50Speed:         stat.Quantile(0.50, stat.Empirical, sorted, nil),
		P85Speed:         stat.Quantile(0.85, stat.Empirical, sorted, nil),
		P98Speed:         stat.Quantile(0.98, stat.Empirical, sorted, nil),
		PeakYawRate:      peakYaw,
		NetHeadingChange: track[len(track)-1].Heading - track[0].Heading,
	}, nil
}
