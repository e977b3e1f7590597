package motionfile

import (
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/trajectory.report/internal/units"
)

func parseFixture(t *testing.T) *File {
	t.Helper()
	f, err := Parse(strings.NewReader(fixture), "crash42")
	require.NoError(t, err)
	return f
}

func TestExtractKinematicsImperial(t *testing.T) {
	t.Parallel()

	f := parseFixture(t)
	k, err := f.ExtractKinematics("Veh1", units.SystemImperial)
	require.NoError(t, err)

	require.Len(t, k.Track.Keys, 3)
	assert.Equal(t, int64(2), k.Track.MaxFrame)

	// Frame 1: x=1ft, y=2ft, z=3ft, roll=10deg, pitch=20deg, yaw=30deg.
	key := k.Track.Keys[1]
	assert.Equal(t, int64(1), key.Frame)
	assert.InDelta(t, 0.3048, key.X, 1e-12)
	assert.InDelta(t, -2*0.3048, key.Y, 1e-12, "HVE Y negates")
	assert.InDelta(t, -3*0.3048, key.Z, 1e-12, "HVE Z negates")
	assert.InDelta(t, 10*math.Pi/180, key.Roll, 1e-12)
	assert.InDelta(t, -20*math.Pi/180, key.Pitch, 1e-12, "HVE pitch negates")
	assert.InDelta(t, -30*math.Pi/180, key.Yaw, 1e-12, "HVE yaw negates")

	// Speed scales ft/s to m/s.
	require.Len(t, k.Speed, 3)
	assert.InDelta(t, 10*0.3048, k.Speed[0], 1e-12)
}

func TestExtractKinematicsMetricNoScaling(t *testing.T) {
	t.Parallel()

	f := parseFixture(t)
	k, err := f.ExtractKinematics("Veh1", units.SystemMetric)
	require.NoError(t, err)

	assert.Equal(t, 1.0, k.Track.Keys[1].X)
	assert.Equal(t, -2.0, k.Track.Keys[1].Y)
	assert.InDelta(t, 10.0, k.Speed[0], 1e-12)
}

func TestExtractKinematicsSideslipFallback(t *testing.T) {
	t.Parallel()

	// The fixture has no Sideslip channel, so the fallback uses
	// atan2(vSide, vLong), with zero when vLong is zero.
	f := parseFixture(t)
	k, err := f.ExtractKinematics("Veh1", units.SystemMetric)
	require.NoError(t, err)

	require.Len(t, k.Sideslip, 3)
	assert.Equal(t, 0.0, k.Sideslip[0])
	assert.InDelta(t, math.Atan2(5, 10), k.Sideslip[1], 1e-12)
}

func TestExtractKinematicsExplicitSideslipChannel(t *testing.T) {
	t.Parallel()

	in := `Time, V, V, V, V, V, V, V
sec, KinematicOut:VehKinematicX, KinematicOut:VehKinematicY, KinematicOut:VehKinematicZ, KinematicOut:VehKinematicRoll, KinematicOut:VehKinematicPitch, KinematicOut:VehKinematicYaw, KinematicOut:VehKinematicSideslip
Time, X, Y, Z, Roll, Pitch, Yaw, Sideslip
(sec), (m), (m), (m), (deg), (deg), (deg), (deg)
0.0, 0, 0, 0, 0, 0, 0, 90.0
0.5, 1, 0, 0, 0, 0, 0, -45.0
`
	f, err := Parse(strings.NewReader(in), "slip")
	require.NoError(t, err)

	k, err := f.ExtractKinematics("V", units.SystemMetric)
	require.NoError(t, err)
	assert.InDelta(t, math.Pi/2, k.Sideslip[0], 1e-12)
	assert.InDelta(t, -math.Pi/4, k.Sideslip[1], 1e-12)
	assert.Nil(t, k.Speed, "no VTotal channel in this file")
	assert.Equal(t, 2, f.FPS)
}

func TestExtractKinematicsMissingChannel(t *testing.T) {
	t.Parallel()

	in := `Time, V
sec, KinematicOut:VehKinematicX
Time, X
(sec), (m)
0.0, 0
0.5, 1
`
	f, err := Parse(strings.NewReader(in), "partial")
	require.NoError(t, err)

	_, err = f.ExtractKinematics("V", units.SystemMetric)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "VehKinematicY")
}

func TestExtractKinematicsUnknownVehicle(t *testing.T) {
	t.Parallel()

	f := parseFixture(t)
	_, err := f.ExtractKinematics("Veh9", units.SystemMetric)
	require.Error(t, err)
}
