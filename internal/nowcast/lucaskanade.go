package nowcast

import "math"

// lucaskanade implements the iterative pyramidal Lucas-Kanade point tracker
// (Bouguet's formulation) used for sparse cloud-motion estimation. For one
// anchor point it answers: by how many cells did the patch around the point
// move between the previous and the next frame?
//
// At each pyramid level, working coarse to fine, the tracker builds the
// spatial gradient matrix G of the previous-frame patch and then Newton-
// iterates the displacement: sample the next-frame patch at the current
// estimate, form the image difference vector b, and solve the 2x2 system
// G*d = b for the update. The solved displacement is doubled when stepping
// down one level, so coarse levels capture motion far larger than the
// correlation window.
//
// An anchor is untrackable when the gradient matrix at the base level is
// (near-)singular - the patch has no two-dimensional texture to lock onto,
// as in a uniform or edge-only field. Coarse-level singularity only skips
// the refinement at that level.

// trackPoint tracks the point (y, x) from prev to next and returns the
// displacement in cells. ok is false when the point is untrackable or the
// refined position leaves the grid.
func trackPoint(prev, next *pyramid, y, x float64, cfg MotionConfig) (dy, dx float64, ok bool) {
	top := prev.top()
	if next.top() < top {
		top = next.top()
	}

	radius := cfg.WindowRadius
	patch := 2*radius + 1
	n := patch * patch
	pv := make([]float64, n) // previous-frame patch values
	ix := make([]float64, n) // horizontal gradient
	iy := make([]float64, n) // vertical gradient

	var gx, gy float64 // accumulated displacement guess, current-level cells
	for level := top; level >= 0; level-- {
		pg := prev.levels[level]
		ng := next.levels[level]
		scale := float64(int(1) << uint(level))
		py := y / scale
		px := x / scale

		// Gradient matrix of the previous-frame patch. Central differences
		// on bilinear samples; positions are clamped at the grid edge.
		var g11, g12, g22 float64
		idx := 0
		for wy := -radius; wy <= radius; wy++ {
			for wx := -radius; wx <= radius; wx++ {
				sy := py + float64(wy)
				sx := px + float64(wx)
				gxv := (pg.Sample(sy, sx+1) - pg.Sample(sy, sx-1)) / 2
				gyv := (pg.Sample(sy+1, sx) - pg.Sample(sy-1, sx)) / 2
				pv[idx] = pg.Sample(sy, sx)
				ix[idx] = gxv
				iy[idx] = gyv
				g11 += gxv * gxv
				g12 += gxv * gyv
				g22 += gyv * gyv
				idx++
			}
		}

		det := g11*g22 - g12*g12
		if minEigenvalue(g11, g12, g22)/float64(n) < cfg.MinEigenvalue || det == 0 {
			if level == 0 {
				return 0, 0, false
			}
			// No texture at this coarse level; carry the guess down.
			gx *= 2
			gy *= 2
			continue
		}

		// Newton refinement of the residual displacement at this level.
		var vx, vy float64
		for iter := 0; iter < cfg.MaxIterations; iter++ {
			var b1, b2 float64
			idx = 0
			for wy := -radius; wy <= radius; wy++ {
				for wx := -radius; wx <= radius; wx++ {
					diff := pv[idx] - ng.Sample(py+float64(wy)+gy+vy, px+float64(wx)+gx+vx)
					b1 += diff * ix[idx]
					b2 += diff * iy[idx]
					idx++
				}
			}
			ddx := (g22*b1 - g12*b2) / det
			ddy := (g11*b2 - g12*b1) / det
			vx += ddx
			vy += ddy
			if math.Hypot(ddx, ddy) < cfg.Epsilon {
				break
			}
		}
		gx += vx
		gy += vy
		if level > 0 {
			gx *= 2
			gy *= 2
		}
	}

	if !isFinite(gx) || !isFinite(gy) {
		return 0, 0, false
	}
	base := prev.levels[0]
	fy := y + gy
	fx := x + gx
	if fy < 0 || fy > float64(base.Rows-1) || fx < 0 || fx > float64(base.Cols-1) {
		return 0, 0, false
	}
	return gy, gx, true
}

// minEigenvalue returns the smaller eigenvalue of the symmetric 2x2 matrix
// [a b; b c].
func minEigenvalue(a, b, c float64) float64 {
	return ((a + c) - math.Sqrt((a-c)*(a-c)+4*b*b)) / 2
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
