package motionfile

import (
	"fmt"
	"math"

	"github.com/banshee-data/trajectory.report/internal/kinematics"
	"github.com/banshee-data/trajectory.report/internal/posetrack"
	"github.com/banshee-data/trajectory.report/internal/units"
)

// Kinematics is the per-vehicle extraction of the KinematicOut object: a
// right-handed scene-frame pose track plus the speed and sideslip series.
// Speed scales with the file's length unit (ft/s to m/s for imperial files);
// Sideslip is radians. Speed is nil when the file has no VTotal channel.
type Kinematics struct {
	Vehicle  string
	TimeStep float64
	Track    *posetrack.Track
	Speed    []float64
	Sideslip []float64
}

// requiredChannels are the KinematicOut variables every HVE export carries.
var requiredChannels = []string{
	"VehKinematicX", "VehKinematicY", "VehKinematicZ",
	"VehKinematicRoll", "VehKinematicPitch", "VehKinematicYaw",
}

// ExtractKinematics converts a vehicle's KinematicOut channels into a pose
// track with one key per frame. HVE's frame is left-handed with Z down, so
// Y, Z, pitch and yaw negate on the way through; angles convert deg to rad
// and positions scale ft to m for imperial files.
func (f *File) ExtractKinematics(vehicle string, system units.System) (*Kinematics, error) {
	byObject, ok := f.channels[vehicle]
	if !ok {
		return nil, fmt.Errorf("vehicle %q not in motion file: %w", vehicle, kinematics.ErrInvalidInput)
	}
	ko, ok := byObject[kinematicObject]
	if !ok {
		return nil, fmt.Errorf("vehicle %q has no %s object: %w", vehicle, kinematicObject, kinematics.ErrInvalidInput)
	}
	for _, name := range requiredChannels {
		if _, ok := ko[name]; !ok {
			return nil, fmt.Errorf("vehicle %q missing channel %s:%s: %w",
				vehicle, kinematicObject, name, kinematics.ErrInvalidInput)
		}
	}

	scale := system.LengthFactor()
	x, y, z := ko["VehKinematicX"], ko["VehKinematicY"], ko["VehKinematicZ"]
	roll, pitch, yaw := ko["VehKinematicRoll"], ko["VehKinematicPitch"], ko["VehKinematicYaw"]

	n := len(x)
	keys := make([]posetrack.Key, n)
	for i := 0; i < n; i++ {
		keys[i] = posetrack.Key{
			Frame: int64(i),
			X:     at(x, i) * scale,
			Y:     at(y, i) * -scale,
			Z:     at(z, i) * -scale,
			Roll:  units.DegToRad(at(roll, i)),
			Pitch: -units.DegToRad(at(pitch, i)),
			Yaw:   -units.DegToRad(at(yaw, i)),
		}
	}

	out := &Kinematics{
		Vehicle:  vehicle,
		TimeStep: f.TimeStep,
		Track:    posetrack.NewTrack(keys, posetrack.Linear),
		Sideslip: make([]float64, n),
	}

	if vTotal, ok := ko["VehKinematicVTotal"]; ok {
		out.Speed = make([]float64, n)
		for i := 0; i < n; i++ {
			out.Speed[i] = at(vTotal, i) * scale
		}
	}

	slip, hasSlip := ko["VehKinematicSideslip"]
	vLong, vSide := ko["VehKinematicVLong"], ko["VehKinematicVSide"]
	for i := 0; i < n; i++ {
		switch {
		case hasSlip:
			out.Sideslip[i] = units.DegToRad(at(slip, i))
		case at(vLong, i) == 0:
			out.Sideslip[i] = 0
		default:
			out.Sideslip[i] = math.Atan2(at(vSide, i), at(vLong, i))
		}
	}
	return out, nil
}

// OutputTrack flattens the extraction into the shared per-frame track form:
// heading from scene yaw, speed from the VTotal channel (zero when the file
// lacks one) and yaw rate differenced from consecutive yaw keys.
func (k *Kinematics) OutputTrack() kinematics.OutputTrack {
	keys := k.Track.Keys
	out := make(kinematics.OutputTrack, len(keys))
	for i, key := range keys {
		tp := kinematics.TrackPoint{
			Frame: key.Frame,
			Pose:  kinematics.Pose{X: key.X, Y: key.Y, Heading: key.Yaw},
			Speed: at(k.Speed, i),
		}
		if i+1 < len(keys) && k.TimeStep > 0 {
			tp.YawRate = (keys[i+1].Yaw - key.Yaw) / k.TimeStep
		} else if i > 0 {
			tp.YawRate = out[i-1].YawRate
		}
		out[i] = tp
	}
	return out
}

func at(series []float64, i int) float64 {
	if i < len(series) {
		return series[i]
	}
	return 0
}
