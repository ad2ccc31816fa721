package nowcast

import (
	"fmt"
	"time"
)

// Method tags attached to ForecastFrame.Method, identifying the producing
// forecaster.
const (
	MethodFluidDynamics = "fluid_dynamics"
	MethodLinearTrend   = "linear_trend"
	MethodPersistence   = "persistence"
)

// minForecastFrames is the smallest history the advective forecaster
// accepts: three frames give at least two motion pairs, enough to tell a
// consistent drift from a one-off artefact.
const minForecastFrames = 3

// Method is a forecast producer. The evaluation harness scores anything
// implementing it side by side.
type Method interface {
	// Name returns the method tag written into produced frames.
	Name() string
	// Forecast produces the forecast sequence for a chronological frame
	// history. Implementations wrap failures in ErrForecast.
	Forecast(frames []Frame) ([]ForecastFrame, error)
}

// Forecaster is the advective nowcast engine. One aggregated velocity field
// drives every step of a run; each step advects the evolving state forward
// by the step interval and then applies the evolution model. Errors in the
// motion estimate therefore compound with lead time, which the monotone
// confidence schedule reflects.
type Forecaster struct {
	cfg    Config
	agg    *VelocityAggregator
	evo    *EvolutionModel
	events EventSink
}

// NewForecaster returns a forecaster for the given configuration.
// Zero-valued config fields fall back to DefaultConfig; a nil sink discards
// events.
func NewForecaster(cfg Config, events EventSink) *Forecaster {
	cfg = cfg.withDefaults()
	sink := sinkOrNop(events)
	est := NewMotionEstimator(cfg.Motion)
	return &Forecaster{
		cfg:    cfg,
		agg:    NewVelocityAggregator(est, cfg.Window, sink),
		evo:    NewEvolutionModel(cfg.Evolution),
		events: sink,
	}
}

// Name implements Method.
func (f *Forecaster) Name() string { return MethodFluidDynamics }

// Forecast produces cfg.Steps forecast frames from a chronological history.
// The newest frame seeds the run; forecast timestamps advance from it in
// step-interval increments. The input frames are never modified.
//
// All failures come back wrapped in ErrForecast; errors.Is against
// ErrInsufficientData or ErrAdvection identifies the cause. An advection
// failure aborts the run with no partial result.
func (f *Forecaster) Forecast(frames []Frame) ([]ForecastFrame, error) {
	if len(frames) < minForecastFrames {
		return nil, fmt.Errorf("%w: %w: have %d frames, need at least %d",
			ErrForecast, ErrInsufficientData, len(frames), minForecastFrames)
	}

	vel, err := f.agg.Aggregate(frames)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrForecast, err)
	}

	seed := frames[len(frames)-1]
	current := seed.grid()
	dt := f.cfg.StepInterval.Seconds()

	out := make([]ForecastFrame, 0, f.cfg.Steps)
	for step := 1; step <= f.cfg.Steps; step++ {
		advected, err := Advect(current, vel, dt)
		if err != nil {
			return nil, fmt.Errorf("%w: step %d: %w", ErrForecast, step, err)
		}
		current = f.evo.Evolve(advected, dt)

		ff := ForecastFrame{
			Timestamp:  seed.Timestamp.Add(time.Duration(step) * f.cfg.StepInterval),
			Rows:       seed.Rows,
			Cols:       seed.Cols,
			Data:       current.Bytes(),
			Confidence: f.cfg.confidence(step),
			Method:     MethodFluidDynamics,
		}
		out = append(out, ff)
		f.events.Event(Event{
			Kind:          EventStepCompleted,
			Step:          step,
			Timestamp:     ff.Timestamp,
			Confidence:    ff.Confidence,
			MeanIntensity: current.Mean(),
			MaxIntensity:  current.Max(),
		})
	}
	return out, nil
}
