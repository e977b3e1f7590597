package kinematics

import "math"

// FrameMapper converts sample times to animation frame indices at a fixed
// frame rate.
type FrameMapper struct {
	fps float64
}

// NewFrameMapper returns a mapper for the given frames-per-second. The
// integrator validates fps before constructing one.
func NewFrameMapper(fps float64) FrameMapper {
	return FrameMapper{fps: fps}
}

// TimeToFrame maps a time in seconds to the nearest frame index, rounding
// half away from zero.
func (m FrameMapper) TimeToFrame(t float64) int64 {
	return int64(math.Round(t * m.fps))
}

// SubSteps returns the number of simulation steps for an interval spanning
// frames f0..f1. Sub-frame intervals still advance one step.
func (m FrameMapper) SubSteps(f0, f1 int64) int {
	n := int(f1 - f0)
	if n < 1 {
		return 1
	}
	return n
}

// StepDelta divides an interval into equal sub-step durations. The sub-steps
// sum exactly to t1-t0, so integration error is bounded per segment rather
// than accumulating with a fixed 1/fps step.
func (m FrameMapper) StepDelta(t0, t1 float64, numSteps int) float64 {
	return (t1 - t0) / float64(numSteps)
}
