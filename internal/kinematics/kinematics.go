// Package kinematics converts sparse EDR sample tables into dense per-frame
// vehicle trajectories. The integrator is a pure single-pass fold: no I/O, no
// globals, O(output frames). Input preparation (CSV decode, unit conversion,
// steering-angle handling) lives in internal/edr.
package kinematics

import "errors"

// ErrInvalidInput reports sample tables that cannot be integrated: fewer than
// two samples, non-finite values, or (in strict mode) non-increasing
// timestamps. Callers test with errors.Is; the error is returned before any
// output is produced, never part-way through.
var ErrInvalidInput = errors.New("invalid input")

// Sample is one canonical input row: time in seconds, speed in m/s, yaw rate
// in rad/s.
type Sample struct {
	Time    float64 `json:"time"`
	Speed   float64 `json:"speed"`
	YawRate float64 `json:"yaw_rate"`
}

// Pose is a horizontal-plane position with heading in radians.
type Pose struct {
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	Heading float64 `json:"heading"`
}

// TrackPoint is one emitted frame. Speed and YawRate carry the integrator's
// running state at the frame so downstream stats need no re-derivation.
type TrackPoint struct {
	Frame int64 `json:"frame"`
	Pose
	Speed   float64 `json:"speed"`
	YawRate float64 `json:"yaw_rate"`
}

// OutputTrack is an ordered list of track points with non-decreasing frames.
// The first entry sits at frame 0, or -1 when pre-roll is requested.
type OutputTrack []TrackPoint
