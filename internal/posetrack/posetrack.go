// Package posetrack holds keyed 6-DOF pose tracks: per-frame position and
// orientation imported from XYZRPY CSV files or extracted from HVE motion
// files. A track evaluates at any frame with linear interpolation inside the
// keyed range and a selectable extrapolation mode outside it.
package posetrack

import (
	"math"
	"sort"

	"github.com/banshee-data/trajectory.report/internal/kinematics"
)

// Extrapolation selects how EvalAt behaves outside the keyed frame range.
type Extrapolation string

const (
	// Linear extends the slope of the boundary segment.
	Linear Extrapolation = "linear"
	// Constant holds the boundary pose.
	Constant Extrapolation = "constant"
)

// ParseExtrapolation maps a config/API string onto an Extrapolation mode.
// Empty input defaults to Linear.
func ParseExtrapolation(s string) (Extrapolation, bool) {
	switch Extrapolation(s) {
	case "", Linear:
		return Linear, true
	case Constant:
		return Constant, true
	}
	return "", false
}

// Key is one keyed pose: position in meters, orientation in radians.
type Key struct {
	Frame int64   `json:"frame"`
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Z     float64 `json:"z"`
	Roll  float64 `json:"roll"`
	Pitch float64 `json:"pitch"`
	Yaw   float64 `json:"yaw"`
}

// Pose is an evaluated (possibly interpolated) 6-DOF pose.
type Pose struct {
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Z     float64 `json:"z"`
	Roll  float64 `json:"roll"`
	Pitch float64 `json:"pitch"`
	Yaw   float64 `json:"yaw"`
}

// Track is an ordered set of pose keys with an extrapolation mode. Keys are
// sorted by frame and unique per frame; a later write to an existing frame
// replaces the earlier one.
type Track struct {
	Keys     []Key         `json:"keys"`
	Mode     Extrapolation `json:"mode"`
	MaxFrame int64         `json:"max_frame"`
}

// NewTrack normalises raw keys into a track: sorts by frame, keeps the last
// key written for a duplicated frame, and records the max frame.
func NewTrack(keys []Key, mode Extrapolation) *Track {
	if mode == "" {
		mode = Linear
	}
	sorted := make([]Key, len(keys))
	copy(sorted, keys)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Frame < sorted[j].Frame })

	// Last write wins for duplicate frames.
	dedup := sorted[:0]
	for _, k := range sorted {
		if n := len(dedup); n > 0 && dedup[n-1].Frame == k.Frame {
			dedup[n-1] = k
			continue
		}
		dedup = append(dedup, k)
	}

	t := &Track{Keys: dedup, Mode: mode}
	if len(dedup) > 0 {
		t.MaxFrame = dedup[len(dedup)-1].Frame
	}
	return t
}

func (k Key) pose() Pose {
	return Pose{X: k.X, Y: k.Y, Z: k.Z, Roll: k.Roll, Pitch: k.Pitch, Yaw: k.Yaw}
}

func lerpKeys(a, b Key, frame float64) Pose {
	span := float64(b.Frame - a.Frame)
	if span == 0 {
		return b.pose()
	}
	u := (frame - float64(a.Frame)) / span
	return Pose{
		X:     a.X + u*(b.X-a.X),
		Y:     a.Y + u*(b.Y-a.Y),
		Z:     a.Z + u*(b.Z-a.Z),
		Roll:  a.Roll + u*(b.Roll-a.Roll),
		Pitch: a.Pitch + u*(b.Pitch-a.Pitch),
		Yaw:   a.Yaw + u*(b.Yaw-a.Yaw),
	}
}

// EvalAt returns the pose at the given (possibly fractional) frame. Inside
// the keyed range it interpolates linearly between neighbouring keys. Before
// the first or after the last key, Constant holds the end pose while Linear
// extends the boundary segment's slope; a single-key track is constant
// either way.
func (t *Track) EvalAt(frame float64) Pose {
	n := len(t.Keys)
	if n == 0 {
		return Pose{}
	}
	if n == 1 {
		return t.Keys[0].pose()
	}

	first, last := t.Keys[0], t.Keys[n-1]
	switch {
	case frame <= float64(first.Frame):
		if t.Mode == Constant || frame == float64(first.Frame) {
			return first.pose()
		}
		return lerpKeys(first, t.Keys[1], frame)
	case frame >= float64(last.Frame):
		if t.Mode == Constant || frame == float64(last.Frame) {
			return last.pose()
		}
		return lerpKeys(t.Keys[n-2], last, frame)
	}

	// First key strictly above the target frame.
	hi := sort.Search(n, func(i int) bool { return float64(t.Keys[i].Frame) > frame })
	return lerpKeys(t.Keys[hi-1], t.Keys[hi], frame)
}

// OutputTrack resamples the track densely at every frame from 0 to MaxFrame,
// projecting to the horizontal plane: heading from yaw, speed and yaw rate
// differenced from consecutive frames at the given rate. The last frame
// holds the preceding rates.
func (t *Track) OutputTrack(fps float64) kinematics.OutputTrack {
	if len(t.Keys) == 0 || fps <= 0 {
		return nil
	}
	n := t.MaxFrame + 1
	out := make(kinematics.OutputTrack, 0, n)
	for frame := int64(0); frame < n; frame++ {
		cur := t.EvalAt(float64(frame))
		tp := kinematics.TrackPoint{
			Frame: frame,
			Pose:  kinematics.Pose{X: cur.X, Y: cur.Y, Heading: cur.Yaw},
		}
		if frame+1 < n {
			next := t.EvalAt(float64(frame + 1))
			tp.Speed = math.Hypot(next.X-cur.X, next.Y-cur.Y) * fps
			tp.YawRate = (next.Yaw - cur.Yaw) * fps
		} else if len(out) > 0 {
			tp.Speed = out[len(out)-1].Speed
			tp.YawRate = out[len(out)-1].YawRate
		}
		out = append(out, tp)
	}
	return out
}
