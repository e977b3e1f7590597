package posetrack

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTrackSortsAndDedupes(t *testing.T) {
	t.Parallel()

	track := NewTrack([]Key{
		{Frame: 10, X: 10},
		{Frame: 0, X: 0},
		{Frame: 5, X: 99},
		{Frame: 5, X: 5}, // later write replaces the earlier frame-5 key
	}, Linear)

	want := []Key{{Frame: 0}, {Frame: 5, X: 5}, {Frame: 10, X: 10}}
	if diff := cmp.Diff(want, track.Keys); diff != "" {
		t.Errorf("keys mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, int64(10), track.MaxFrame)
}

func TestEvalAtInterpolates(t *testing.T) {
	t.Parallel()

	track := NewTrack([]Key{
		{Frame: 0, X: 0, Y: 0, Yaw: 0},
		{Frame: 10, X: 20, Y: -10, Yaw: 1.0},
	}, Linear)

	got := track.EvalAt(5)
	assert.InDelta(t, 10.0, got.X, 1e-12)
	assert.InDelta(t, -5.0, got.Y, 1e-12)
	assert.InDelta(t, 0.5, got.Yaw, 1e-12)

	// Exactly on a key returns the key.
	assert.Equal(t, Pose{X: 20, Y: -10, Yaw: 1.0}, track.EvalAt(10))
}

func TestEvalAtFractionalFrame(t *testing.T) {
	t.Parallel()

	track := NewTrack([]Key{
		{Frame: 0, Z: 1},
		{Frame: 1, Z: 3},
	}, Linear)

	assert.InDelta(t, 2.5, track.EvalAt(0.75).Z, 1e-12)
}

func TestEvalAtExtrapolation(t *testing.T) {
	t.Parallel()

	keys := []Key{
		{Frame: 10, X: 10},
		{Frame: 20, X: 30},
		{Frame: 30, X: 30},
	}

	t.Run("constant holds ends", func(t *testing.T) {
		track := NewTrack(keys, Constant)
		assert.Equal(t, 10.0, track.EvalAt(0).X)
		assert.Equal(t, 30.0, track.EvalAt(100).X)
	})

	t.Run("linear extends boundary slope", func(t *testing.T) {
		track := NewTrack(keys, Linear)
		// First segment slope 2/frame; five frames before the first key.
		assert.InDelta(t, 0.0, track.EvalAt(5).X, 1e-12)
		// Last segment is flat, so the extension stays put.
		assert.InDelta(t, 30.0, track.EvalAt(40).X, 1e-12)
	})
}

func TestEvalAtSingleKeyIsConstant(t *testing.T) {
	t.Parallel()

	for _, mode := range []Extrapolation{Linear, Constant} {
		track := NewTrack([]Key{{Frame: 3, X: 7, Yaw: 0.2}}, mode)
		for _, frame := range []float64{-10, 0, 3, 50} {
			got := track.EvalAt(frame)
			assert.Equal(t, 7.0, got.X, "mode %s frame %v", mode, frame)
			assert.Equal(t, 0.2, got.Yaw, "mode %s frame %v", mode, frame)
		}
	}
}

func TestEvalAtEmptyTrack(t *testing.T) {
	t.Parallel()

	track := NewTrack(nil, Linear)
	assert.Equal(t, Pose{}, track.EvalAt(5))
}

func TestParseExtrapolation(t *testing.T) {
	t.Parallel()

	got, ok := ParseExtrapolation("")
	require.True(t, ok)
	assert.Equal(t, Linear, got)

	got, ok = ParseExtrapolation("constant")
	require.True(t, ok)
	assert.Equal(t, Constant, got)

	_, ok = ParseExtrapolation("bezier")
	assert.False(t, ok)
}
