package nowcast

// pyramid is a coarse-to-fine image stack for the Lucas-Kanade tracker.
// Level 0 is the full-resolution grid; each higher level halves both
// dimensions with 2x2 box averaging. Coarse levels let the tracker lock onto
// displacements much larger than the correlation window.
type pyramid struct {
	levels []*Grid // levels[0] = full resolution
}

// minPyramidDim stops pyramid construction before a level becomes too small
// to hold a meaningful correlation window.
const minPyramidDim = 8

// newPyramid builds up to maxLevels levels above the base grid. The base is
// referenced, not copied.
func newPyramid(base *Grid, maxLevels int) *pyramid {
	p := &pyramid{levels: []*Grid{base}}
	for len(p.levels) < maxLevels {
		prev := p.levels[len(p.levels)-1]
		if prev.Rows/2 < minPyramidDim || prev.Cols/2 < minPyramidDim {
			break
		}
		p.levels = append(p.levels, downsample(prev))
	}
	return p
}

// top returns the index of the coarsest level.
func (p *pyramid) top() int { return len(p.levels) - 1 }

// downsample halves both dimensions by averaging 2x2 blocks. Odd trailing
// rows/columns are dropped, matching the floor division of the level shape.
func downsample(g *Grid) *Grid {
	rows := g.Rows / 2
	cols := g.Cols / 2
	out := NewGrid(rows, cols)
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			sum := g.At(2*r, 2*c) + g.At(2*r, 2*c+1) + g.At(2*r+1, 2*c) + g.At(2*r+1, 2*c+1)
			out.Set(r, c, sum/4)
		}
	}
	return out
}
