/*
Package game contains the core logic for chess sessions.

This file implements the per-game two-sided countdown clock. The clock is
lazy: no timer goroutine runs. Elapsed time is folded into the active side's
budget whenever state is read or mutated, so timeout is observed rather than
triggered.
*/
package game

import "time"

// InitialClockMs is the per-side time budget: 3 minutes.
const InitialClockMs int64 = 180_000

// Clock tracks the remaining time of both sides.
// All operations take the current time as a parameter; the clock itself never
// reads the wall clock, which keeps room logic deterministic under test.
type Clock struct {
	// WhiteMs and BlackMs are the remaining budgets in milliseconds.
	WhiteMs int64
	BlackMs int64

	// Active is the side whose budget is draining, "" when frozen.
	Active string

	// LastTick is the instant elapsed time was last folded in.
	// The zero value means no tick reference is set.
	LastTick time.Time
}

// NewClock returns a running clock with white to move.
func NewClock(now time.Time) *Clock {
	return &Clock{
		WhiteMs:  InitialClockMs,
		BlackMs:  InitialClockMs,
		Active:   SideWhite,
		LastTick: now,
	}
}

// Sample folds the elapsed time since LastTick into the active side's budget,
// flooring at zero. Calling it repeatedly with non-decreasing now values is
// idempotent.
func (c *Clock) Sample(now time.Time) {
	if c.Active == "" || c.LastTick.IsZero() {
		return
	}

	elapsed := now.Sub(c.LastTick).Milliseconds()
	if elapsed < 0 {
		elapsed = 0
	}

	switch c.Active {
	case SideWhite:
		c.WhiteMs = max(0, c.WhiteMs-elapsed)
	case SideBlack:
		c.BlackMs = max(0, c.BlackMs-elapsed)
	}

	c.LastTick = now
}

// Switch samples at now and hands the clock to the opposite side.
// Applied atomically with a move under the room lock.
func (c *Clock) Switch(now time.Time) {
	c.Sample(now)

	switch c.Active {
	case SideWhite:
		c.Active = SideBlack
	case SideBlack:
		c.Active = SideWhite
	}
}

// Freeze stops the clock permanently. Subsequent samples are no-ops.
func (c *Clock) Freeze() {
	c.Active = ""
	c.LastTick = time.Time{}
}

// Flagged reports whether the given side has exhausted its budget.
func (c *Clock) Flagged(side string) bool {
	switch side {
	case SideWhite:
		return c.WhiteMs <= 0
	case SideBlack:
		return c.BlackMs <= 0
	}
	return false
}
