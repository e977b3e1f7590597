package timeutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRealClockNow(t *testing.T) {
	t.Parallel()

	assert.WithinDuration(t, time.Now(), RealClock{}.Now(), time.Second)
}

func TestRealClockTickerDelivers(t *testing.T) {
	t.Parallel()

	ticker := RealClock{}.NewTicker(time.Millisecond)
	defer ticker.Stop()

	select {
	case <-ticker.C():
	case <-time.After(2 * time.Second):
		t.Fatal("real ticker never fired")
	}
}

func TestMockClockAdvance(t *testing.T) {
	t.Parallel()

	start := time.Unix(1756100000, 0)
	clock := NewMockClock(start)
	assert.Equal(t, start, clock.Now())

	clock.Advance(90 * time.Second)
	assert.Equal(t, start.Add(90*time.Second), clock.Now())
}

func TestMockTickerFiresOnDeadline(t *testing.T) {
	t.Parallel()

	clock := NewMockClock(time.Unix(1756100000, 0))
	ticker := clock.NewTicker(time.Minute)

	// Halfway there: nothing yet.
	clock.Advance(30 * time.Second)
	select {
	case tick := <-ticker.C():
		t.Fatalf("ticker fired early at %v", tick)
	default:
	}

	clock.Advance(30 * time.Second)
	select {
	case tick := <-ticker.C():
		assert.Equal(t, clock.Now(), tick)
	default:
		t.Fatal("ticker did not fire at its deadline")
	}

	// The deadline rearms, so each later Advance past it fires again.
	clock.Advance(time.Minute)
	select {
	case <-ticker.C():
	default:
		t.Fatal("ticker did not fire on the next interval")
	}
}

func TestMockTickerStopSilences(t *testing.T) {
	t.Parallel()

	clock := NewMockClock(time.Unix(1756100000, 0))
	ticker := clock.NewTicker(time.Second)
	ticker.Stop()

	clock.Advance(time.Hour)
	select {
	case <-ticker.C():
		t.Fatal("stopped ticker fired")
	default:
	}
}

func TestMockTickerDropsWhenPending(t *testing.T) {
	t.Parallel()

	clock := NewMockClock(time.Unix(1756100000, 0))
	ticker := clock.NewTicker(time.Second)

	// Two fires without draining: the second is dropped, same as a
	// neglected time.Ticker.
	clock.Advance(time.Second)
	clock.Advance(time.Second)

	select {
	case <-ticker.C():
	default:
		t.Fatal("expected one pending tick")
	}
	select {
	case <-ticker.C():
		t.Fatal("pending tick was not coalesced")
	default:
	}
}

func TestMockClockDrivesMultipleTickers(t *testing.T) {
	t.Parallel()

	clock := NewMockClock(time.Unix(1756100000, 0))
	fast := clock.NewTicker(time.Second)
	slow := clock.NewTicker(time.Hour)

	clock.Advance(time.Second)

	require.Len(t, fast.C(), 1)
	require.Len(t, slow.C(), 0)
}
