package nowcast

import (
	"math"
	"testing"
)

func TestGridSample_ExactCells(t *testing.T) {
	g := NewGrid(2, 2)
	g.Set(0, 0, 10)
	g.Set(0, 1, 20)
	g.Set(1, 0, 30)
	g.Set(1, 1, 40)

	cases := []struct {
		y, x float64
		want float64
	}{
		{0, 0, 10},
		{0, 1, 20},
		{1, 0, 30},
		{1, 1, 40},
	}
	for _, c := range cases {
		if got := g.Sample(c.y, c.x); got != c.want {
			t.Errorf("Sample(%v,%v) = %v, want %v", c.y, c.x, got, c.want)
		}
	}
}

func TestGridSample_Interpolates(t *testing.T) {
	g := NewGrid(2, 2)
	g.Set(0, 0, 10)
	g.Set(0, 1, 20)
	g.Set(1, 0, 30)
	g.Set(1, 1, 40)

	if got := g.Sample(0, 0.5); got != 15 {
		t.Errorf("horizontal midpoint = %v, want 15", got)
	}
	if got := g.Sample(0.5, 0); got != 20 {
		t.Errorf("vertical midpoint = %v, want 20", got)
	}
	if got := g.Sample(0.5, 0.5); got != 25 {
		t.Errorf("centre = %v, want 25", got)
	}
}

func TestGridSample_ClampsOutOfRange(t *testing.T) {
	g := NewGrid(3, 3)
	g.Set(0, 0, 7)
	g.Set(2, 2, 9)

	if got := g.Sample(-5, -5); got != 7 {
		t.Errorf("sample beyond top-left = %v, want corner value 7", got)
	}
	if got := g.Sample(10, 10); got != 9 {
		t.Errorf("sample beyond bottom-right = %v, want corner value 9", got)
	}
}

func TestGridBytes_RoundsAndClamps(t *testing.T) {
	g := NewGrid(1, 4)
	g.Data[0] = -3.2
	g.Data[1] = 100.4
	g.Data[2] = 100.6
	g.Data[3] = 412.0

	got := g.Bytes()
	want := []uint8{0, 100, 101, 255}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Bytes()[%d] = %d, want %d", i, got[i], want[i])
		}
	}
}

func TestGridClone_Independent(t *testing.T) {
	g := NewGrid(2, 2)
	g.Set(1, 1, 5)
	c := g.Clone()
	c.Set(1, 1, 99)

	if g.At(1, 1) != 5 {
		t.Errorf("mutating clone changed original: %v", g.At(1, 1))
	}
}

func TestGridMeanMax(t *testing.T) {
	g := NewGrid(2, 2)
	copy(g.Data, []float64{1, 2, 3, 10})

	if got := g.Mean(); got != 4 {
		t.Errorf("Mean = %v, want 4", got)
	}
	if got := g.Max(); got != 10 {
		t.Errorf("Max = %v, want 10", got)
	}
}

func TestGridFromBytes_Widens(t *testing.T) {
	g := gridFromBytes(1, 3, []uint8{0, 128, 254})
	want := []float64{0, 128, 254}
	for i := range want {
		if math.Abs(g.Data[i]-want[i]) > 0 {
			t.Errorf("Data[%d] = %v, want %v", i, g.Data[i], want[i])
		}
	}
}
