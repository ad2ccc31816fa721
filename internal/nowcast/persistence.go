package nowcast

import (
	"fmt"
	"time"
)

// PersistenceForecaster repeats the newest observation across the whole
// horizon. Persistence is the canonical zero-skill reference: any method
// worth running has to beat it, and at very short lead times that is harder
// than it sounds.
type PersistenceForecaster struct {
	cfg Config
}

// NewPersistenceForecaster returns a persistence baseline sharing the
// engine's step and confidence configuration.
func NewPersistenceForecaster(cfg Config) *PersistenceForecaster {
	return &PersistenceForecaster{cfg: cfg.withDefaults()}
}

// Name implements Method.
func (p *PersistenceForecaster) Name() string { return MethodPersistence }

// Forecast emits cfg.Steps copies of the newest frame with advancing
// timestamps and the standard confidence decay. One frame of history is
// enough.
func (p *PersistenceForecaster) Forecast(frames []Frame) ([]ForecastFrame, error) {
	if len(frames) == 0 {
		return nil, fmt.Errorf("%w: %w: no frames to persist", ErrForecast, ErrInsufficientData)
	}
	seed := frames[len(frames)-1]

	out := make([]ForecastFrame, 0, p.cfg.Steps)
	for step := 1; step <= p.cfg.Steps; step++ {
		data := make([]uint8, len(seed.Data))
		copy(data, seed.Data)
		out = append(out, ForecastFrame{
			Timestamp:  seed.Timestamp.Add(time.Duration(step) * p.cfg.StepInterval),
			Rows:       seed.Rows,
			Cols:       seed.Cols,
			Data:       data,
			Confidence: p.cfg.confidence(step),
			Method:     MethodPersistence,
		})
	}
	return out, nil
}
