package edr

import (
	"fmt"
	"math"

	"github.com/banshee-data/trajectory.report/internal/kinematics"
	"github.com/banshee-data/trajectory.report/internal/units"
)

// EstimateYawRateFromSteering derives a yaw rate (rad/s) from a steering
// wheel angle using the kinematic bicycle model: the road wheel angle is
// swa/ratio and r = (v/L)*tan(roadWheelAngle).
func EstimateYawRateFromSteering(speedMPS, steeringWheelAngleDeg, wheelbaseM, steeringRatio float64) (float64, error) {
	if wheelbaseM <= 0 {
		return 0, fmt.Errorf("wheelbase must be positive, got %v: %w", wheelbaseM, kinematics.ErrInvalidInput)
	}
	if steeringRatio <= 0 {
		return 0, fmt.Errorf("steering ratio must be positive, got %v: %w", steeringRatio, kinematics.ErrInvalidInput)
	}
	roadWheelDeg := steeringWheelAngleDeg / steeringRatio
	return (speedMPS / wheelbaseM) * math.Tan(units.DegToRad(roadWheelDeg)), nil
}

// SideslipEstimator returns a kinematics.SlipEstimator implementing
// beta = gain * atan(L*r/v), clamped to +/-MaxDeg and forced to zero near
// standstill where the ratio blows up.
func SideslipEstimator(p SlipParams) kinematics.SlipEstimator {
	clamp := units.DegToRad(p.MaxDeg)
	return func(speedMPS, yawRateRad float64) float64 {
		if math.Abs(speedMPS) < 1e-6 {
			return 0
		}
		beta := p.Gain * math.Atan(p.WheelbaseM*yawRateRad/speedMPS)
		if beta > clamp {
			return clamp
		}
		if beta < -clamp {
			return -clamp
		}
		return beta
	}
}
