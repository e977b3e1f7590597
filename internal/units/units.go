// Package units provides shared constants and conversions for speed units.
package units

import (
	"math"
	"strings"
)

// Unit constants
const (
	MPS  = "mps"
	MPH  = "mph"
	KMPH = "kmph"
	KPH  = "kph"
)

// Inbound conversion factors. EDR tables record speed in mph when the
// source is imperial; HVE and XYZRPY exports record distances in feet.
const (
	MPHToMPS     = 0.44704
	FeetToMeters = 0.3048
)

// ValidUnits contains all valid unit values
var ValidUnits = []string{MPS, MPH, KMPH, KPH}

// IsValid checks if the given unit is in the list of valid units
func IsValid(unit string) bool {
	for _, validUnit := range ValidUnits {
		if unit == validUnit {
			return true
		}
	}
	return false
}

// GetValidUnitsString returns a comma-separated string of valid units for error messages
func GetValidUnitsString() string {
	return "mps, mph, kmph, kph"
}

// ConvertSpeed converts a speed from meters per second to the target units
// Database stores speeds in m/s (meters per second)
func ConvertSpeed(speedMPS float64, targetUnits string) float64 {
	switch targetUnits {
	case MPS:
		return speedMPS
	case MPH:
		return speedMPS * 2.2369362920544
	case KMPH, KPH:
		return speedMPS * 3.6
	default:
		return speedMPS
	}
}

// System identifies the measurement system of a source file. Imperial
// sources record speeds in mph and distances in feet; metric sources are
// already m/s and meters.
type System string

const (
	SystemMetric   System = "metric"
	SystemImperial System = "imperial"
)

// ParseSystem maps a config or API string onto a System. Empty input
// defaults to metric.
func ParseSystem(s string) (System, bool) {
	switch System(strings.ToLower(s)) {
	case "", SystemMetric:
		return SystemMetric, true
	case SystemImperial:
		return SystemImperial, true
	}
	return "", false
}

// SpeedFactor returns the multiplier taking source speeds to m/s.
func (s System) SpeedFactor() float64 {
	if s == SystemImperial {
		return MPHToMPS
	}
	return 1.0
}

// LengthFactor returns the multiplier taking source lengths to meters.
func (s System) LengthFactor() float64 {
	if s == SystemImperial {
		return FeetToMeters
	}
	return 1.0
}

// DegToRad converts degrees to radians. Yaw rates and steering angles
// arrive in degrees regardless of the source unit system.
func DegToRad(deg float64) float64 {
	return deg * math.Pi / 180.0
}

// RadToDeg converts radians to degrees.
func RadToDeg(rad float64) float64 {
	return rad * 180.0 / math.Pi
}
