package nowcast

import "fmt"

// MotionEstimator recovers a dense velocity field from one consecutive frame
// pair. Anchors on a sparse grid are tracked with pyramidal Lucas-Kanade,
// the per-anchor displacements are normalised by the pair's time gap into
// cells/second, densified to full resolution by nearest-anchor fill, and
// low-passed with a Gaussian so the advector sees a smooth field.
type MotionEstimator struct {
	cfg MotionConfig
}

// NewMotionEstimator returns an estimator with the given configuration.
// Zero-valued fields fall back to DefaultMotionConfig.
func NewMotionEstimator(cfg MotionConfig) *MotionEstimator {
	if cfg == (MotionConfig{}) {
		cfg = DefaultMotionConfig()
	}
	return &MotionEstimator{cfg: cfg}
}

// Estimate computes the velocity field carrying frame a onto frame b. The
// frames must share one shape and strictly increase in time. Returns
// ErrMotionEstimation when the pair cannot be tracked; the caller decides
// whether that is fatal (the aggregator skips such pairs).
func (e *MotionEstimator) Estimate(a, b Frame) (*VelocityField, error) {
	if !a.SameShape(b) {
		return nil, fmt.Errorf("%w: mismatched frame shapes %dx%d and %dx%d",
			ErrMotionEstimation, a.Rows, a.Cols, b.Rows, b.Cols)
	}
	dt := b.Timestamp.Sub(a.Timestamp).Seconds()
	if dt <= 0 {
		return nil, fmt.Errorf("%w: non-increasing frame timestamps (%s then %s)",
			ErrMotionEstimation, a.Timestamp.Format("15:04:05"), b.Timestamp.Format("15:04:05"))
	}

	prev := newPyramid(a.grid(), e.cfg.PyramidLevels)
	next := newPyramid(b.grid(), e.cfg.PyramidLevels)

	stride := e.cfg.AnchorStride
	anchorRows := (a.Rows + stride - 1) / stride
	anchorCols := (a.Cols + stride - 1) / stride
	du := make([]float64, anchorRows*anchorCols) // cells/s at each anchor
	dv := make([]float64, anchorRows*anchorCols)
	okAnchor := make([]bool, anchorRows*anchorCols)

	tracked := 0
	for ar := 0; ar < anchorRows; ar++ {
		for ac := 0; ac < anchorCols; ac++ {
			y := float64(ar * stride)
			x := float64(ac * stride)
			dy, dx, ok := trackPoint(prev, next, y, x, e.cfg)
			if !ok {
				continue
			}
			i := ar*anchorCols + ac
			du[i] = dx / dt
			dv[i] = dy / dt
			okAnchor[i] = true
			tracked++
		}
	}
	if tracked == 0 {
		return nil, fmt.Errorf("%w: no trackable anchors in %dx%d pair (degenerate field)",
			ErrMotionEstimation, a.Rows, a.Cols)
	}

	// Densify: every cell takes its nearest anchor's velocity, then both
	// components are smoothed. Untracked anchors contribute zero motion and
	// get blended in by the smoothing pass.
	u := NewGrid(a.Rows, a.Cols)
	v := NewGrid(a.Rows, a.Cols)
	for r := 0; r < a.Rows; r++ {
		ar := nearestAnchor(r, stride, anchorRows)
		for c := 0; c < a.Cols; c++ {
			ac := nearestAnchor(c, stride, anchorCols)
			i := ar*anchorCols + ac
			if okAnchor[i] {
				u.Set(r, c, du[i])
				v.Set(r, c, dv[i])
			}
		}
	}
	u = gaussianSmooth(u, e.cfg.SmoothingSigma)
	v = gaussianSmooth(v, e.cfg.SmoothingSigma)

	return &VelocityField{Rows: a.Rows, Cols: a.Cols, U: u.Data, V: v.Data}, nil
}

// nearestAnchor maps a cell index to its closest anchor index for the given
// stride, clamped to the anchor count.
func nearestAnchor(cell, stride, count int) int {
	i := (cell + stride/2) / stride
	if i >= count {
		i = count - 1
	}
	return i
}
