// Package edr turns raw EDR (event data recorder) rows into canonical sample
// tables the trajectory integrator accepts: time in seconds, speed in m/s,
// yaw rate in rad/s. It covers CSV decoding, unit conversion, the
// steering-wheel-angle input mode, and body sideslip estimation.
package edr

import (
	"fmt"

	"github.com/banshee-data/trajectory.report/internal/kinematics"
)

// InputMode selects the meaning of the third CSV column.
type InputMode string

const (
	// InputYawRate reads column 3 as yaw rate in deg/s.
	InputYawRate InputMode = "yaw_rate"
	// InputSteering reads column 3 as steering wheel angle in degrees and
	// derives yaw rate with the bicycle model.
	InputSteering InputMode = "steering_wheel_angle"
)

// ParseInputMode maps a config/API string onto an InputMode.
func ParseInputMode(s string) (InputMode, error) {
	switch InputMode(s) {
	case InputYawRate, InputSteering:
		return InputMode(s), nil
	case "":
		return InputYawRate, nil
	}
	return "", fmt.Errorf("unknown input mode %q: %w", s, kinematics.ErrInvalidInput)
}

// SteeringParams hold the bicycle-model geometry for steering-angle input.
type SteeringParams struct {
	WheelbaseM    float64 `json:"wheelbase_m"`
	SteeringRatio float64 `json:"steering_ratio"`
}

// DefaultSteeringParams returns the passenger-car defaults used when a table
// arrives without vehicle geometry.
func DefaultSteeringParams() SteeringParams {
	return SteeringParams{WheelbaseM: 2.8, SteeringRatio: 16.0}
}

// SlipParams tune the sideslip estimator.
type SlipParams struct {
	WheelbaseM float64 `json:"wheelbase_m"`
	Gain       float64 `json:"gain"`
	MaxDeg     float64 `json:"max_deg"`
}

// DefaultSlipParams returns the stock estimator tuning.
func DefaultSlipParams() SlipParams {
	return SlipParams{WheelbaseM: 2.8, Gain: 1.0, MaxDeg: 12.0}
}
