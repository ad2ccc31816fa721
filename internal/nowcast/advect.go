package nowcast

import "fmt"

// advect implements semi-Lagrangian transport: instead of pushing each cell
// forward (which leaves holes), every destination cell traces its trajectory
// backward through the velocity field and samples where its contents came
// from. The scheme is unconditionally stable for any time step; the cost is
// slight diffusion from the bilinear resampling.

// Advect transports grid g by dt seconds through vel and returns the new
// grid. Backward-trajectory origins are clamped to the grid bounds, so
// material neither wraps around nor vanishes at the edges. The input grid is
// not modified.
//
// Returns ErrAdvection when the field shape does not match the grid or a
// trajectory is non-finite; a forecast run must abort on it.
func Advect(g *Grid, vel *VelocityField, dt float64) (*Grid, error) {
	if vel.Rows != g.Rows || vel.Cols != g.Cols {
		return nil, fmt.Errorf("%w: velocity field %dx%d does not match grid %s",
			ErrAdvection, vel.Rows, vel.Cols, g.shapeString())
	}
	out := NewGrid(g.Rows, g.Cols)
	for r := 0; r < g.Rows; r++ {
		for c := 0; c < g.Cols; c++ {
			i := r*g.Cols + c
			oy := float64(r) - vel.V[i]*dt
			ox := float64(c) - vel.U[i]*dt
			if !isFinite(oy) || !isFinite(ox) {
				return nil, fmt.Errorf("%w: non-finite trajectory at cell (%d,%d)", ErrAdvection, r, c)
			}
			out.Data[i] = g.Sample(oy, ox)
		}
	}
	return out, nil
}
