package game

import (
	"testing"
	"time"
)

func TestClockSampleDecrementsActiveSide(t *testing.T) {
	t0 := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	c := NewClock(t0)

	c.Sample(t0.Add(5 * time.Second))

	if c.WhiteMs != InitialClockMs-5000 {
		t.Fatalf("expected white at %d, got %d", InitialClockMs-5000, c.WhiteMs)
	}
	if c.BlackMs != InitialClockMs {
		t.Fatalf("black budget should be untouched, got %d", c.BlackMs)
	}
}

func TestClockSampleIdempotentAtSameInstant(t *testing.T) {
	t0 := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	c := NewClock(t0)

	now := t0.Add(10 * time.Second)
	c.Sample(now)
	first := c.WhiteMs
	c.Sample(now)

	if c.WhiteMs != first {
		t.Fatalf("repeated sample at same now changed budget: %d != %d", c.WhiteMs, first)
	}
}

func TestClockFloorsAtZero(t *testing.T) {
	t0 := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	c := NewClock(t0)

	c.Sample(t0.Add(10 * time.Minute))

	if c.WhiteMs != 0 {
		t.Fatalf("expected white floored at 0, got %d", c.WhiteMs)
	}
	if !c.Flagged(SideWhite) {
		t.Fatal("expected white to be flagged")
	}
}

func TestClockSwitchHandsOverActiveSide(t *testing.T) {
	t0 := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	c := NewClock(t0)

	c.Switch(t0.Add(2 * time.Second))

	if c.Active != SideBlack {
		t.Fatalf("expected black active after switch, got %q", c.Active)
	}
	if c.WhiteMs != InitialClockMs-2000 {
		t.Fatalf("switch should sample before handing over, white at %d", c.WhiteMs)
	}

	c.Switch(t0.Add(5 * time.Second))

	if c.Active != SideWhite {
		t.Fatalf("expected white active after second switch, got %q", c.Active)
	}
	if c.BlackMs != InitialClockMs-3000 {
		t.Fatalf("expected black at %d, got %d", InitialClockMs-3000, c.BlackMs)
	}
}

func TestClockFreezeStopsSampling(t *testing.T) {
	t0 := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	c := NewClock(t0)

	c.Sample(t0.Add(time.Second))
	c.Freeze()

	before := c.WhiteMs
	c.Sample(t0.Add(time.Hour))

	if c.WhiteMs != before {
		t.Fatalf("frozen clock mutated: %d != %d", c.WhiteMs, before)
	}
	if c.Active != "" {
		t.Fatalf("frozen clock still has active side %q", c.Active)
	}
}

func TestClockBackwardsNowIsNoOp(t *testing.T) {
	t0 := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	c := NewClock(t0)

	c.Sample(t0.Add(-time.Minute))

	if c.WhiteMs != InitialClockMs {
		t.Fatalf("backwards now decremented budget to %d", c.WhiteMs)
	}
}
