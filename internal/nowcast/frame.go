package nowcast

import (
	"fmt"
	"time"
)

// NoDataCode is the reserved 8-bit value radar composites use for cells the
// radar network did not observe. NewFrame maps it to zero so the numerical
// pipeline never mistakes it for an extreme echo.
const NoDataCode uint8 = 255

// Frame is a single observed reflectivity composite: an 8-bit intensity grid
// with the acquisition timestamp. Frames are immutable once constructed; the
// engine only ever reads them.
type Frame struct {
	Timestamp  time.Time
	Rows, Cols int
	Data       []uint8 // len Rows*Cols, row-major
}

// NewFrame validates and sanitises a raw composite payload. The input slice
// is copied, the no-data code is mapped to zero, and any value below
// minIntensity is zeroed (pass 0 to keep everything). The frame takes the
// given timestamp as its observation time.
func NewFrame(ts time.Time, rows, cols int, raw []uint8, minIntensity uint8) (Frame, error) {
	if rows <= 0 || cols <= 0 {
		return Frame{}, fmt.Errorf("invalid frame shape %dx%d", rows, cols)
	}
	if len(raw) != rows*cols {
		return Frame{}, fmt.Errorf("frame payload is %d values, shape %dx%d needs %d", len(raw), rows, cols, rows*cols)
	}
	data := make([]uint8, len(raw))
	for i, v := range raw {
		if v == NoDataCode || v < minIntensity {
			continue // leave zero
		}
		data[i] = v
	}
	return Frame{Timestamp: ts, Rows: rows, Cols: cols, Data: data}, nil
}

// grid widens the frame payload into a float64 working grid.
func (f Frame) grid() *Grid {
	return gridFromBytes(f.Rows, f.Cols, f.Data)
}

// SameShape reports whether o has identical dimensions.
func (f Frame) SameShape(o Frame) bool {
	return f.Rows == o.Rows && f.Cols == o.Cols
}

// Mean returns the mean intensity of the frame, 0 for an empty grid.
func (f Frame) Mean() float64 {
	if len(f.Data) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range f.Data {
		sum += float64(v)
	}
	return sum / float64(len(f.Data))
}

// ForecastFrame is one predicted composite. Data uses the same shape and
// 8-bit range as the source frames. Confidence decreases with lead time and
// stays within (0, 1]; Method names the producing forecaster.
type ForecastFrame struct {
	Timestamp  time.Time
	Rows, Cols int
	Data       []uint8
	Confidence float64
	Method     string
}

// LeadTime returns the offset of this forecast from the given analysis time
// (normally the newest observed frame's timestamp).
func (f ForecastFrame) LeadTime(analysis time.Time) time.Duration {
	return f.Timestamp.Sub(analysis)
}
