package edr

import (
	"fmt"
	"io"
	"math"

	"github.com/banshee-data/trajectory.report/internal/kinematics"
	"github.com/banshee-data/trajectory.report/internal/units"
)

// SampleTable is a canonicalised EDR table: times in seconds (first at or
// after zero), speeds in m/s, yaw rates in rad/s. Offset records the shift
// applied to pull negative pre-trigger times up to zero, so callers can map
// back to recorder timestamps.
type SampleTable struct {
	Samples []kinematics.Sample `json:"samples"`
	Offset  float64             `json:"offset"`
}

// TableOptions configure canonicalisation. The zero value means metric
// yaw-rate input; steering mode without explicit params uses the defaults.
type TableOptions struct {
	Units    units.System
	Input    InputMode
	Steering SteeringParams
}

// NewSampleTable canonicalises raw rows in one pass. Imperial speeds convert
// mph to m/s; the third column converts deg/s to rad/s (yaw-rate mode) or
// runs through the bicycle model with the row's converted speed (steering
// mode). A negative minimum time shifts the whole table so it starts at zero.
// The input slice is never mutated and no partial table is returned on error.
func NewSampleTable(raw []kinematics.Sample, opts TableOptions) (*SampleTable, error) {
	if len(raw) < 2 {
		return nil, fmt.Errorf("need at least 2 samples, got %d: %w", len(raw), kinematics.ErrInvalidInput)
	}

	mode := opts.Input
	if mode == "" {
		mode = InputYawRate
	}
	steer := opts.Steering
	if steer == (SteeringParams{}) {
		steer = DefaultSteeringParams()
	}

	speedFactor := opts.Units.SpeedFactor()

	out := make([]kinematics.Sample, len(raw))
	minTime := math.Inf(1)
	for i, row := range raw {
		if !finite(row.Time) || !finite(row.Speed) || !finite(row.YawRate) {
			return nil, fmt.Errorf("row %d contains non-finite values: %w", i, kinematics.ErrInvalidInput)
		}
		speedMPS := row.Speed * speedFactor

		var yawRad float64
		switch mode {
		case InputSteering:
			r, err := EstimateYawRateFromSteering(speedMPS, row.YawRate, steer.WheelbaseM, steer.SteeringRatio)
			if err != nil {
				return nil, fmt.Errorf("row %d: %w", i, err)
			}
			yawRad = r
		default:
			yawRad = units.DegToRad(row.YawRate)
		}

		out[i] = kinematics.Sample{Time: row.Time, Speed: speedMPS, YawRate: yawRad}
		if row.Time < minTime {
			minTime = row.Time
		}
	}

	offset := 0.0
	if minTime < 0 {
		offset = -minTime
		for i := range out {
			out[i].Time += offset
		}
	}

	return &SampleTable{Samples: out, Offset: offset}, nil
}

// ReadTable decodes an EDR CSV stream and canonicalises it in one call.
func ReadTable(r io.Reader, opts TableOptions) (*SampleTable, error) {
	raw, err := DecodeCSV(r)
	if err != nil {
		return nil, err
	}
	return NewSampleTable(raw, opts)
}

func finite(f float64) bool {
	return !math.IsInf(f, 0) && !math.IsNaN(f)
}
