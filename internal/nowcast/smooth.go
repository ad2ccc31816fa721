package nowcast

import "math"

// gaussianSmooth low-passes a grid with a separable Gaussian kernel. The
// kernel radius is round(4*sigma), truncating the tails at four standard
// deviations, and borders reflect (edge sample mirrored, not repeated), so a
// constant field passes through unchanged. sigma <= 0 returns a plain copy.
func gaussianSmooth(g *Grid, sigma float64) *Grid {
	if sigma <= 0 {
		return g.Clone()
	}
	kernel := gaussianKernel(sigma)
	tmp := NewGrid(g.Rows, g.Cols)
	out := NewGrid(g.Rows, g.Cols)

	radius := len(kernel) / 2

	// Horizontal pass.
	for r := 0; r < g.Rows; r++ {
		for c := 0; c < g.Cols; c++ {
			sum := 0.0
			for k := -radius; k <= radius; k++ {
				sum += kernel[k+radius] * g.At(r, reflectIndex(c+k, g.Cols))
			}
			tmp.Set(r, c, sum)
		}
	}
	// Vertical pass.
	for r := 0; r < g.Rows; r++ {
		for c := 0; c < g.Cols; c++ {
			sum := 0.0
			for k := -radius; k <= radius; k++ {
				sum += kernel[k+radius] * tmp.At(reflectIndex(r+k, g.Rows), c)
			}
			out.Set(r, c, sum)
		}
	}
	return out
}

// gaussianKernel returns a normalised 1-D Gaussian of length 2*radius+1 with
// radius = round(4*sigma).
func gaussianKernel(sigma float64) []float64 {
	radius := int(4*sigma + 0.5)
	if radius < 1 {
		radius = 1
	}
	kernel := make([]float64, 2*radius+1)
	sum := 0.0
	for i := -radius; i <= radius; i++ {
		w := math.Exp(-float64(i*i) / (2 * sigma * sigma))
		kernel[i+radius] = w
		sum += w
	}
	for i := range kernel {
		kernel[i] /= sum
	}
	return kernel
}

// reflectIndex folds an out-of-range index back into [0, n) by mirror
// reflection about the array edges (..., 2, 1, 0 | 0, 1, 2, ...).
func reflectIndex(i, n int) int {
	if n == 1 {
		return 0
	}
	for i < 0 || i >= n {
		if i < 0 {
			i = -i - 1
		}
		if i >= n {
			i = 2*n - i - 1
		}
	}
	return i
}
