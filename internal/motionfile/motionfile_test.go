package motionfile

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/trajectory.report/internal/kinematics"
)

// fixture is a minimal two-vehicle variable-output export: four header rows
// (vehicles, Object:Variable, translated names, units) and three data rows
// at 0.1s steps.
const fixture = `Time, Veh1, Veh1, Veh1, Veh1, Veh1, Veh1, Veh1, Veh1, Veh1, Veh1, Veh2
sec, KinematicOut:VehKinematicX, KinematicOut:VehKinematicY, KinematicOut:VehKinematicZ, KinematicOut:VehKinematicRoll, KinematicOut:VehKinematicPitch, KinematicOut:VehKinematicYaw, KinematicOut:VehKinematicVTotal, KinematicOut:VehKinematicVLong, KinematicOut:VehKinematicVSide, WheelsOut:WheelRotation, KinematicOut:VehKinematicX
Time, CG Kinematics: X Position, CG Kinematics: Y Position, CG Kinematics: Z Position, CG Kinematics: Roll, CG Kinematics: Pitch, CG Kinematics: Yaw, CG Kinematics: Total Velocity, CG Kinematics: Long Velocity, CG Kinematics: Side Velocity, WheelsOut Rotation, CG Kinematics: X Position
(sec), (ft), (ft), (ft), (deg), (deg), (deg), (ft/s), (ft/s), (ft/s), (deg), (ft)
0.0, 0.0, 0.0, 0.0, 0.0, 0.0, 0.0, 10.0, 10.0, 0.0, 1.0, 100.0
0.1, 1.0, 2.0, 3.0, 10.0, 20.0, 30.0, 10.0, 10.0, 5.0, 2.0, 101.0
0.2, 2.0, 4.0, 6.0, 20.0, 40.0, 60.0, 10.0, 10.0, 5.0, bad, 102.0
`

func TestParse(t *testing.T) {
	t.Parallel()

	f, err := Parse(strings.NewReader(fixture), "crash42")
	require.NoError(t, err)

	assert.Equal(t, "crash42", f.Name)
	assert.InDelta(t, 0.1, f.TimeStep, 1e-9)
	assert.Equal(t, 10, f.FPS)
	assert.Equal(t, 3, f.NumFrames)
	assert.Equal(t, []string{"Veh1", "Veh2"}, f.Vehicles())
	require.Len(t, f.Columns, 11)
}

func TestParseColumnSplit(t *testing.T) {
	t.Parallel()

	f, err := Parse(strings.NewReader(fixture), "crash42")
	require.NoError(t, err)

	c := f.Columns[0]
	assert.Equal(t, "Veh1", c.Vehicle)
	assert.Equal(t, "KinematicOut", c.Object)
	assert.Equal(t, "KinematicOut", c.Group)
	assert.Equal(t, "VehKinematicX", c.Variable)
	assert.Equal(t, "CG Kinematics: X Position", c.TransName)
	assert.Equal(t, "CG Kinematics", c.TransObject)
	assert.Equal(t, "X Position", c.TransVariable)
	assert.Equal(t, "(ft)", c.Unit)

	// Translated name without a colon keeps the whole string as variable.
	wheel := f.Columns[9]
	assert.Equal(t, "WheelsOut", wheel.Object)
	assert.Equal(t, "", wheel.TransObject)
	assert.Equal(t, "WheelsOut Rotation", wheel.TransVariable)
}

func TestParseNonNumericCellDecodesAsZero(t *testing.T) {
	t.Parallel()

	f, err := Parse(strings.NewReader(fixture), "crash42")
	require.NoError(t, err)

	wheel := f.Channel("Veh1", "WheelsOut", "WheelRotation")
	require.Len(t, wheel, 3)
	assert.Equal(t, []float64{1, 2, 0}, wheel)
}

func TestParseChannelLookup(t *testing.T) {
	t.Parallel()

	f, err := Parse(strings.NewReader(fixture), "crash42")
	require.NoError(t, err)

	assert.Equal(t, []float64{100, 101, 102}, f.Channel("Veh2", "KinematicOut", "VehKinematicX"))
	assert.Nil(t, f.Channel("Veh1", "KinematicOut", "NoSuchVariable"))
	assert.Nil(t, f.Channel("Veh9", "KinematicOut", "VehKinematicX"))
	assert.True(t, f.HasObject("Veh1", "WheelsOut"))
	assert.False(t, f.HasObject("Veh2", "WheelsOut"))
}

func TestParseRejectsFileWithoutKinematicOut(t *testing.T) {
	t.Parallel()

	in := `Time, Veh1
sec, WheelsOut:WheelRotation
Time, Wheel Rotation
(sec), (deg)
0.0, 1.0
0.1, 2.0
`
	_, err := Parse(strings.NewReader(in), "nokin")
	require.Error(t, err)
	assert.True(t, errors.Is(err, kinematics.ErrInvalidInput))
	assert.Contains(t, err.Error(), "not a valid HVE motion file")
}

func TestParseRejectsTruncatedFile(t *testing.T) {
	t.Parallel()

	in := "Time, Veh1\nsec, KinematicOut:VehKinematicX\nTime, X\n(sec), (ft)\n0.0, 1.0\n"
	_, err := Parse(strings.NewReader(in), "short")
	require.Error(t, err)
	assert.True(t, errors.Is(err, kinematics.ErrInvalidInput))
}

func TestParseRejectsNonPositiveTimeStep(t *testing.T) {
	t.Parallel()

	in := `Time, Veh1
sec, KinematicOut:VehKinematicX
Time, X
(sec), (ft)
0.2, 1.0
0.1, 2.0
`
	_, err := Parse(strings.NewReader(in), "backwards")
	require.Error(t, err)
	assert.True(t, errors.Is(err, kinematics.ErrInvalidInput))
}
