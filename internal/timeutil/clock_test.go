package timeutil

import (
	"testing"
	"time"
)

func TestRealClock_Now(t *testing.T) {
	clock := RealClock{}
	before := time.Now()
	now := clock.Now()
	after := time.Now()

	if now.Before(before) || now.After(after) {
		t.Errorf("Now() = %v, expected between %v and %v", now, before, after)
	}
}

func TestRealClock_Since(t *testing.T) {
	start := time.Now().Add(-time.Second)
	if d := (RealClock{}).Since(start); d < time.Second {
		t.Errorf("Since = %v, want >= 1s", d)
	}
}

func TestMockClock_SetAndAdvance(t *testing.T) {
	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	clock := NewMockClock(base)

	if !clock.Now().Equal(base) {
		t.Errorf("Now = %v, want %v", clock.Now(), base)
	}

	clock.Advance(90 * time.Second)
	if got := clock.Since(base); got != 90*time.Second {
		t.Errorf("Since = %v, want 90s", got)
	}

	later := base.Add(time.Hour)
	clock.Set(later)
	if !clock.Now().Equal(later) {
		t.Errorf("Now after Set = %v, want %v", clock.Now(), later)
	}
}

func TestMockClock_NoWallClockDrift(t *testing.T) {
	clock := NewMockClock(time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC))
	a := clock.Now()
	time.Sleep(5 * time.Millisecond)
	b := clock.Now()
	if !a.Equal(b) {
		t.Errorf("mock clock moved on its own: %v -> %v", a, b)
	}
}
