// Package testutil provides assertion helpers shared across test files.
// Most of the engine's tests compare floating-point grids and derived
// statistics, so the helpers centre on tolerance-based comparison.
package testutil

import (
	"math"
	"testing"
)

// AssertNoError fails the test if err is not nil.
func AssertNoError(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// AssertError fails the test if err is nil.
func AssertError(t *testing.T, err error) {
	t.Helper()
	if err == nil {
		t.Fatal("expected error, got nil")
	}
}

// AssertInDelta checks that got is within delta of want.
func AssertInDelta(t *testing.T, got, want, delta float64) {
	t.Helper()
	if math.IsNaN(got) || math.Abs(got-want) > delta {
		t.Errorf("got %v, want %v within %v", got, want, delta)
	}
}

// AssertSlicesClose checks two float slices element-wise within delta.
func AssertSlicesClose(t *testing.T, got, want []float64, delta float64) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("length %d, want %d", len(got), len(want))
	}
	for i := range want {
		if math.IsNaN(got[i]) || math.Abs(got[i]-want[i]) > delta {
			t.Fatalf("index %d: got %v, want %v within %v", i, got[i], want[i], delta)
		}
	}
}

// AssertBytesEqual checks two byte slices element-wise.
func AssertBytesEqual(t *testing.T, got, want []uint8) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("length %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("index %d: got %d, want %d", i, got[i], want[i])
		}
	}
}
