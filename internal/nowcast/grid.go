package nowcast

import (
	"fmt"
	"math"
)

// Grid is a dense row-major scalar field. The engine carries reflectivity
// between pipeline stages as float64 grids and only quantises back to bytes
// when a frame is emitted, so repeated advection and evolution steps do not
// accumulate rounding error.
type Grid struct {
	Rows, Cols int
	Data       []float64 // len Rows*Cols, row-major
}

// NewGrid returns a zero-filled grid.
func NewGrid(rows, cols int) *Grid {
	return &Grid{Rows: rows, Cols: cols, Data: make([]float64, rows*cols)}
}

// gridFromBytes widens an 8-bit frame payload into a float grid.
func gridFromBytes(rows, cols int, data []uint8) *Grid {
	g := NewGrid(rows, cols)
	for i, b := range data {
		g.Data[i] = float64(b)
	}
	return g
}

// Clone returns a deep copy.
func (g *Grid) Clone() *Grid {
	out := &Grid{Rows: g.Rows, Cols: g.Cols, Data: make([]float64, len(g.Data))}
	copy(out.Data, g.Data)
	return out
}

// SameShape reports whether o has identical dimensions.
func (g *Grid) SameShape(o *Grid) bool {
	return g.Rows == o.Rows && g.Cols == o.Cols
}

// At returns the value at row r, column c. No bounds checking beyond the
// underlying slice.
func (g *Grid) At(r, c int) float64 { return g.Data[r*g.Cols+c] }

// Set writes the value at row r, column c.
func (g *Grid) Set(r, c int, v float64) { g.Data[r*g.Cols+c] = v }

// Sample bilinearly interpolates the field at fractional position (y, x),
// clamping the position to the grid bounds first. Out-of-range positions
// therefore read the nearest edge value rather than failing.
func (g *Grid) Sample(y, x float64) float64 {
	y = clampF(y, 0, float64(g.Rows-1))
	x = clampF(x, 0, float64(g.Cols-1))

	y0 := int(y)
	x0 := int(x)
	y1 := y0 + 1
	x1 := x0 + 1
	if y1 > g.Rows-1 {
		y1 = g.Rows - 1
	}
	if x1 > g.Cols-1 {
		x1 = g.Cols - 1
	}
	fy := y - float64(y0)
	fx := x - float64(x0)

	top := g.At(y0, x0)*(1-fx) + g.At(y0, x1)*fx
	bot := g.At(y1, x0)*(1-fx) + g.At(y1, x1)*fx
	return top*(1-fy) + bot*fy
}

// Bytes quantises the grid to the 8-bit reflectivity range, rounding to
// nearest and clamping to [0, 255].
func (g *Grid) Bytes() []uint8 {
	out := make([]uint8, len(g.Data))
	for i, v := range g.Data {
		out[i] = uint8(clampF(math.Round(v), 0, 255))
	}
	return out
}

// Mean returns the arithmetic mean of all cells, 0 for an empty grid.
func (g *Grid) Mean() float64 {
	if len(g.Data) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range g.Data {
		sum += v
	}
	return sum / float64(len(g.Data))
}

// Max returns the largest cell value, 0 for an empty grid.
func (g *Grid) Max() float64 {
	max := 0.0
	for _, v := range g.Data {
		if v > max {
			max = v
		}
	}
	return max
}

func (g *Grid) shapeString() string {
	return fmt.Sprintf("%dx%d", g.Rows, g.Cols)
}

func clampF(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
