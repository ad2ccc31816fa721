package nowcast

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

// VelocityField is a dense motion field over a frame grid. U is the
// horizontal (column-axis) and V the vertical (row-axis) component, both in
// cells per second, row-major like Grid.
type VelocityField struct {
	Rows, Cols int
	U, V       []float64
}

// NewVelocityField returns a zero-motion field.
func NewVelocityField(rows, cols int) *VelocityField {
	return &VelocityField{
		Rows: rows,
		Cols: cols,
		U:    make([]float64, rows*cols),
		V:    make([]float64, rows*cols),
	}
}

// MeanSpeed returns the mean velocity magnitude in cells/second.
func (f *VelocityField) MeanSpeed() float64 {
	if len(f.U) == 0 {
		return 0
	}
	sum := 0.0
	for i := range f.U {
		sum += math.Hypot(f.U[i], f.V[i])
	}
	return sum / float64(len(f.U))
}

// VelocityAggregator folds pairwise motion estimates over a window of recent
// frames into one representative velocity field. Pairs that fail motion
// estimation are skipped and reported through the event sink; the survivors
// are averaged component-wise.
type VelocityAggregator struct {
	est    *MotionEstimator
	window int
	events EventSink
}

// NewVelocityAggregator returns an aggregator using est over windows of at
// most window frames. window <= 1 falls back to the default. A nil sink
// discards events.
func NewVelocityAggregator(est *MotionEstimator, window int, events EventSink) *VelocityAggregator {
	if window <= 1 {
		window = DefaultConfig().Window
	}
	return &VelocityAggregator{est: est, window: window, events: sinkOrNop(events)}
}

// Aggregate estimates motion for each consecutive pair among the newest
// frames (at most the window size) and returns the mean field over the pairs
// that succeeded. It returns ErrInsufficientData when fewer than two frames
// are supplied or when every pair fails.
func (a *VelocityAggregator) Aggregate(frames []Frame) (*VelocityField, error) {
	if len(frames) < 2 {
		return nil, fmt.Errorf("%w: have %d frames, motion needs at least 2", ErrInsufficientData, len(frames))
	}
	if len(frames) > a.window {
		frames = frames[len(frames)-a.window:]
	}

	var sum *VelocityField
	used := 0
	skipped := 0
	for i := 0; i < len(frames)-1; i++ {
		field, err := a.est.Estimate(frames[i], frames[i+1])
		if err != nil {
			skipped++
			a.events.Event(Event{Kind: EventPairSkipped, Pair: i, Err: err})
			continue
		}
		if sum != nil && (field.Rows != sum.Rows || field.Cols != sum.Cols) {
			// Shape drift inside the window; treat like a failed pair.
			skipped++
			a.events.Event(Event{Kind: EventPairSkipped, Pair: i,
				Err: fmt.Errorf("%w: window shape drift %dx%d", ErrMotionEstimation, field.Rows, field.Cols)})
			continue
		}
		a.events.Event(Event{Kind: EventPairEstimated, Pair: i})
		if sum == nil {
			sum = field
			used = 1
			continue
		}
		floats.Add(sum.U, field.U)
		floats.Add(sum.V, field.V)
		used++
	}
	if used == 0 {
		return nil, fmt.Errorf("%w: all %d frame pairs failed motion estimation", ErrInsufficientData, skipped)
	}
	if used > 1 {
		floats.Scale(1/float64(used), sum.U)
		floats.Scale(1/float64(used), sum.V)
	}

	a.events.Event(Event{
		Kind:         EventVelocityAggregated,
		PairsUsed:    used,
		PairsSkipped: skipped,
		MeanSpeed:    sum.MeanSpeed(),
	})
	return sum, nil
}
