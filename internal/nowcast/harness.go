package nowcast

import (
	"fmt"
	"time"

	"github.com/regnkort/nowcast/internal/timeutil"
)

// EvaluationHarness scores forecast methods against held-out observations.
// An observed sequence is split into a history prefix handed to every
// method and a truth suffix the produced frames are verified against, one
// truth frame per forecast step. The truth frames must be sampled at the
// methods' step interval for the per-step comparison to be meaningful.
type EvaluationHarness struct {
	cfg     HarnessConfig
	methods []Method
	clock   timeutil.Clock
}

// HarnessConfig holds configuration for an evaluation run.
type HarnessConfig struct {
	// HistoryFrames is the number of leading frames handed to each method;
	// the remainder of the sequence is scoring truth
	HistoryFrames int

	// Threshold is the echo exceedance level for the categorical scores
	Threshold uint8
}

// DefaultHarnessConfig scores against a ten-frame history at the moderate
// echo threshold.
func DefaultHarnessConfig() HarnessConfig {
	return HarnessConfig{
		HistoryFrames: 10,
		Threshold:     80,
	}
}

// StepScore is one method's verification at one lead step.
type StepScore struct {
	Step     int
	LeadTime time.Duration
	Scores   SkillScores
}

// MethodResult is one method's outcome over a whole evaluation run. Err is
// set when the method failed to produce a forecast; Steps is then empty.
type MethodResult struct {
	Method  string
	Err     error
	Elapsed time.Duration
	Steps   []StepScore
}

// Overall returns the method's scores merged across all lead steps.
func (r MethodResult) Overall() SkillScores {
	var total SkillScores
	for _, s := range r.Steps {
		total.Merge(s.Scores)
	}
	return total
}

// NewEvaluationHarness returns a harness scoring the given methods. A nil
// clock uses the wall clock; tests inject timeutil.MockClock.
func NewEvaluationHarness(cfg HarnessConfig, clock timeutil.Clock, methods ...Method) *EvaluationHarness {
	if cfg.HistoryFrames <= 0 {
		cfg.HistoryFrames = DefaultHarnessConfig().HistoryFrames
	}
	if clock == nil {
		clock = timeutil.RealClock{}
	}
	return &EvaluationHarness{cfg: cfg, methods: methods, clock: clock}
}

// Run splits frames into history and truth, runs every method on the
// history and verifies each produced frame against the truth frame at the
// same step. A method failing is recorded in its result, not fatal to the
// run; Run itself only fails when the split leaves nothing to forecast from
// or nothing to score against.
func (h *EvaluationHarness) Run(frames []Frame) ([]MethodResult, error) {
	if len(frames) <= h.cfg.HistoryFrames {
		return nil, fmt.Errorf("evaluation needs more than %d frames, have %d", h.cfg.HistoryFrames, len(frames))
	}
	history := frames[:h.cfg.HistoryFrames]
	truth := frames[h.cfg.HistoryFrames:]
	analysis := history[len(history)-1].Timestamp

	results := make([]MethodResult, 0, len(h.methods))
	for _, m := range h.methods {
		start := h.clock.Now()
		forecast, err := m.Forecast(history)
		elapsed := h.clock.Since(start)
		if err != nil {
			results = append(results, MethodResult{Method: m.Name(), Err: err, Elapsed: elapsed})
			continue
		}

		res := MethodResult{Method: m.Name(), Elapsed: elapsed}
		for i, fc := range forecast {
			if i >= len(truth) {
				break
			}
			scores, err := VerifyFrame(fc, truth[i], h.cfg.Threshold)
			if err != nil {
				res.Err = fmt.Errorf("step %d: %w", i+1, err)
				break
			}
			res.Steps = append(res.Steps, StepScore{
				Step:     i + 1,
				LeadTime: fc.LeadTime(analysis),
				Scores:   scores,
			})
		}
		results = append(results, res)
	}
	return results, nil
}
