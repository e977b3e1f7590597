package kinematics

import (
	"fmt"
	"math"
)

// SlipEstimator returns a body sideslip angle in radians for the running
// speed (m/s) and yaw rate (rad/s). See edr.SideslipEstimator for the bicycle
// model used with EDR input.
type SlipEstimator func(speedMPS, yawRateRad float64) float64

// Options configure a trajectory integration.
type Options struct {
	FPS     float64 // frames per second, must be positive
	Initial Pose    // pose at the first sample time
	PreRoll bool    // duplicate the initial pose at frame -1
	Strict  bool    // fail on degenerate intervals instead of skipping them
	Slip    SlipEstimator
}

// Result carries the integrated track and its bookkeeping. MaxFrame is the
// last emitted frame so callers holding a frame-range bound can extend it.
type Result struct {
	Track       OutputTrack `json:"track"`
	MaxFrame    int64       `json:"max_frame"`
	Diagnostics []string    `json:"diagnostics,omitempty"`
}

// Integrate folds a canonical sample table into a dense per-frame track.
// Speed and yaw rate are treated as piecewise-linear between samples; each
// inter-sample interval is advanced in max(f1-f0, 1) constant-acceleration
// sub-steps whose durations sum exactly to the interval length.
//
// Intervals with t1 <= t0 are skipped and recorded in Diagnostics (lenient
// default) or fail with ErrInvalidInput (Strict). A skipped interval leaves
// the running state untouched.
func Integrate(samples []Sample, opts Options) (*Result, error) {
	if opts.FPS <= 0 || math.IsInf(opts.FPS, 0) || math.IsNaN(opts.FPS) {
		return nil, fmt.Errorf("frame rate must be positive, got %v: %w", opts.FPS, ErrInvalidInput)
	}
	if len(samples) < 2 {
		return nil, fmt.Errorf("need at least 2 samples, got %d: %w", len(samples), ErrInvalidInput)
	}
	for i, s := range samples {
		if !isFinite(s.Time) || !isFinite(s.Speed) || !isFinite(s.YawRate) {
			return nil, fmt.Errorf("sample %d contains non-finite values: %w", i, ErrInvalidInput)
		}
	}

	mapper := NewFrameMapper(opts.FPS)

	x, y, psi := opts.Initial.X, opts.Initial.Y, opts.Initial.Heading
	v, r := samples[0].Speed, samples[0].YawRate

	est := mapper.TimeToFrame(samples[len(samples)-1].Time) - mapper.TimeToFrame(samples[0].Time)
	if est < 4 {
		est = 4
	}
	track := make(OutputTrack, 0, est+4)

	if opts.PreRoll {
		track = append(track, TrackPoint{Frame: -1, Pose: opts.Initial, Speed: v, YawRate: r})
	}
	track = append(track, TrackPoint{Frame: 0, Pose: opts.Initial, Speed: v, YawRate: r})
	lastFrame := int64(0)

	var diags []string
	for i := 0; i+1 < len(samples); i++ {
		t0, t1 := samples[i].Time, samples[i+1].Time
		span := t1 - t0
		if span <= 0 {
			if opts.Strict {
				return nil, fmt.Errorf("interval %d: non-increasing timestamps (%v >= %v): %w", i, t0, t1, ErrInvalidInput)
			}
			diags = append(diags, fmt.Sprintf("interval %d skipped: t1 <= t0", i))
			continue
		}

		f0 := mapper.TimeToFrame(t0)
		f1 := mapper.TimeToFrame(t1)
		numSteps := mapper.SubSteps(f0, f1)
		dt := mapper.StepDelta(t0, t1, numSteps)

		// Rates come from the sample deltas, not the running state, so a
		// skipped interval cannot bend the following ones.
		a := (samples[i+1].Speed - samples[i].Speed) / span
		rdot := (samples[i+1].YawRate - samples[i].YawRate) / span

		for step := 0; step < numSteps; step++ {
			if opts.Slip != nil {
				x, y, psi, v, r = integrateStepSlip(x, y, psi, v, r, dt, a, rdot, opts.Slip(v, r))
			} else {
				x, y, psi, v, r = IntegrateStep(x, y, psi, v, r, dt, a, rdot)
			}
			frame := f0 + int64(step) + 1
			track = append(track, TrackPoint{Frame: frame, Pose: Pose{X: x, Y: y, Heading: psi}, Speed: v, YawRate: r})
			if frame > lastFrame {
				lastFrame = frame
			}
		}
	}

	// Hold the final state out to the frame the last timestamp maps to, in
	// case sub-frame rounding left the track short.
	finalFrame := mapper.TimeToFrame(samples[len(samples)-1].Time)
	if finalFrame < lastFrame {
		finalFrame = lastFrame
	}
	if finalFrame > lastFrame {
		track = append(track, TrackPoint{Frame: finalFrame, Pose: Pose{X: x, Y: y, Heading: psi}, Speed: v, YawRate: r})
	}

	return &Result{Track: track, MaxFrame: finalFrame, Diagnostics: diags}, nil
}

func isFinite(f float64) bool {
	return !math.IsInf(f, 0) && !math.IsNaN(f)
}
