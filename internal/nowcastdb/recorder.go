package nowcastdb

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/regnkort/nowcast/internal/monitoring"
	"github.com/regnkort/nowcast/internal/nowcast"
	"github.com/regnkort/nowcast/internal/timeutil"
)

var logf = monitoring.Prefixed("rundb")

// RunRecorder coordinates the lifecycle of a recorded forecast run. It
// implements nowcast.EventSink, so wiring it into a Forecaster captures the
// run's pair statistics and per-step records as they happen. It is safe for
// concurrent use.
type RunRecorder struct {
	mu    sync.Mutex
	store *RunStore
	clock timeutil.Clock

	currentRun *ForecastRun
	startTime  time.Time

	// Stats collected from events during the run
	pairsUsed    int
	pairsSkipped int
	meanSpeed    float64
	steps        int
}

// NewRunRecorder creates a recorder writing through the given store. A nil
// clock falls back to the wall clock.
func NewRunRecorder(store *RunStore, clock timeutil.Clock) *RunRecorder {
	if clock == nil {
		clock = timeutil.RealClock{}
	}
	return &RunRecorder{store: store, clock: clock}
}

// StartRun begins a new recorded run and returns its ID. The previous run, if
// still open, is abandoned in the database with status "running".
func (r *RunRecorder) StartRun(source string, rows, cols, frameCount int, params RunParams) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	runID := uuid.New().String()

	paramsJSON, err := params.ToJSON()
	if err != nil {
		return "", err
	}

	r.currentRun = &ForecastRun{
		RunID:      runID,
		CreatedAt:  r.clock.Now(),
		Method:     params.Method,
		Source:     source,
		Rows:       rows,
		Cols:       cols,
		FrameCount: frameCount,
		ParamsJSON: paramsJSON,
		Status:     "running",
	}

	if err := r.store.InsertRun(r.currentRun); err != nil {
		r.currentRun = nil
		return "", err
	}

	r.startTime = r.clock.Now()
	r.pairsUsed = 0
	r.pairsSkipped = 0
	r.meanSpeed = 0
	r.steps = 0

	logf("started run %s for %s", runID, source)
	return runID, nil
}

// Event implements nowcast.EventSink. Step records are written through
// immediately; insert failures are logged and do not interrupt the forecast.
func (r *RunRecorder) Event(e nowcast.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.currentRun == nil {
		return
	}

	switch e.Kind {
	case nowcast.EventVelocityAggregated:
		r.pairsUsed = e.PairsUsed
		r.pairsSkipped = e.PairsSkipped
		r.meanSpeed = e.MeanSpeed
	case nowcast.EventStepCompleted:
		r.steps++
		step := &RunStep{
			RunID:         r.currentRun.RunID,
			Step:          e.Step,
			ForecastUnix:  e.Timestamp.Unix(),
			Confidence:    e.Confidence,
			MeanIntensity: e.MeanIntensity,
			MaxIntensity:  e.MaxIntensity,
		}
		if err := r.store.InsertStep(step); err != nil {
			logf("failed to insert step %d of run %s: %v", e.Step, r.currentRun.RunID, err)
		}
	}
}

// CompleteRun finalizes the current run with the statistics collected from
// events. It is a no-op when no run is active.
func (r *RunRecorder) CompleteRun() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.currentRun == nil {
		return nil
	}

	stats := &RunStats{
		DurationMs:   r.clock.Since(r.startTime).Milliseconds(),
		Steps:        r.steps,
		PairsUsed:    r.pairsUsed,
		PairsSkipped: r.pairsSkipped,
		MeanSpeed:    r.meanSpeed,
	}

	if err := r.store.CompleteRun(r.currentRun.RunID, stats); err != nil {
		return err
	}

	logf("completed run %s: %d steps, %d pairs used (%d skipped) in %dms",
		r.currentRun.RunID, stats.Steps, stats.PairsUsed, stats.PairsSkipped, stats.DurationMs)

	r.currentRun = nil
	return nil
}

// FailRun marks the current run as failed with an error message. It is a
// no-op when no run is active.
func (r *RunRecorder) FailRun(errMsg string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.currentRun == nil {
		return nil
	}

	if err := r.store.UpdateRunStatus(r.currentRun.RunID, "failed", errMsg); err != nil {
		return err
	}

	logf("failed run %s: %s", r.currentRun.RunID, errMsg)
	r.currentRun = nil
	return nil
}

// RecordScore persists a verification score against a run. Unlike step
// records, scores may be written after the run has completed.
func (r *RunRecorder) RecordScore(runID, method string, step int, leadTime time.Duration, scores nowcast.SkillScores) error {
	return r.store.InsertScore(&RunScore{
		RunID:        runID,
		Method:       method,
		Step:         step,
		LeadTimeSecs: leadTime.Seconds(),
		Scores:       scores,
	})
}

// IsRunActive returns true if there's an active recorded run.
func (r *RunRecorder) IsRunActive() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.currentRun != nil
}

// CurrentRunID returns the active run's ID, or empty string if none.
func (r *RunRecorder) CurrentRunID() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.currentRun == nil {
		return ""
	}
	return r.currentRun.RunID
}
