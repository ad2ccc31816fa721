package nowcast

import (
	"fmt"
	"math"
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// TrendForecaster extrapolates domain-mean reflectivity by least squares
// over the recent window and renders each predicted mean as a uniform field.
// It carries no spatial structure at all; its value is as a cheap trend
// indicator and as a reference method for the evaluation harness.
type TrendForecaster struct {
	cfg Config
}

// NewTrendForecaster returns a trend forecaster sharing the engine's window,
// step and confidence configuration. Motion and evolution settings are
// ignored.
func NewTrendForecaster(cfg Config) *TrendForecaster {
	return &TrendForecaster{cfg: cfg.withDefaults()}
}

// Name implements Method.
func (t *TrendForecaster) Name() string { return MethodLinearTrend }

// Forecast fits mean intensity against observation time over the window and
// extrapolates cfg.Steps steps ahead. Predictions are clamped to the range
// of means actually observed in the window, so a steep fit cannot invent
// intensity the history never showed. At least two frames are required.
func (t *TrendForecaster) Forecast(frames []Frame) ([]ForecastFrame, error) {
	if len(frames) < 2 {
		return nil, fmt.Errorf("%w: %w: have %d frames, trend fit needs at least 2",
			ErrForecast, ErrInsufficientData, len(frames))
	}
	if len(frames) > t.cfg.Window {
		frames = frames[len(frames)-t.cfg.Window:]
	}

	origin := frames[0].Timestamp
	xs := make([]float64, len(frames))
	ys := make([]float64, len(frames))
	for i, f := range frames {
		xs[i] = f.Timestamp.Sub(origin).Seconds()
		ys[i] = f.Mean()
	}
	alpha, beta := stat.LinearRegression(xs, ys, nil, false)
	if !isFinite(alpha) || !isFinite(beta) {
		return nil, fmt.Errorf("%w: degenerate trend fit over %d frames", ErrForecast, len(frames))
	}
	lo := floats.Min(ys)
	hi := floats.Max(ys)

	seed := frames[len(frames)-1]
	out := make([]ForecastFrame, 0, t.cfg.Steps)
	for step := 1; step <= t.cfg.Steps; step++ {
		ts := seed.Timestamp.Add(time.Duration(step) * t.cfg.StepInterval)
		pred := alpha + beta*ts.Sub(origin).Seconds()
		pred = clampF(pred, lo, hi)

		level := uint8(clampF(math.Round(pred), 0, 255))
		data := make([]uint8, seed.Rows*seed.Cols)
		for i := range data {
			data[i] = level
		}
		out = append(out, ForecastFrame{
			Timestamp:  ts,
			Rows:       seed.Rows,
			Cols:       seed.Cols,
			Data:       data,
			Confidence: t.cfg.confidence(step),
			Method:     MethodLinearTrend,
		})
	}
	return out, nil
}
