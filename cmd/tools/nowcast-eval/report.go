package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/regnkort/nowcast/internal/nowcast"
	"github.com/regnkort/nowcast/internal/security"
	"github.com/regnkort/nowcast/internal/units"
)

// EvalResult holds the results of one evaluation run.
type EvalResult struct {
	Frames        int     `json:"frames"`
	HistoryFrames int     `json:"history_frames"`
	TruthFrames   int     `json:"truth_frames"`
	Rows          int     `json:"rows"`
	Cols          int     `json:"cols"`
	Seed          int64   `json:"seed"`
	Noise         float64 `json:"noise"`
	Threshold     uint8   `json:"threshold"`
	ThresholdDBZ  float64 `json:"threshold_dbz"`
	RunID         string  `json:"run_id,omitempty"`

	Methods []MethodReport `json:"methods"`
}

// MethodReport holds per-method scores.
type MethodReport struct {
	Method    string       `json:"method"`
	Error     string       `json:"error,omitempty"`
	ElapsedMs int64        `json:"elapsed_ms"`
	Overall   ScoreReport  `json:"overall"`
	Steps     []StepReport `json:"steps,omitempty"`
}

// ScoreReport is the JSON shape of a set of skill scores.
type ScoreReport struct {
	POD     float64 `json:"pod"`
	FAR     float64 `json:"far"`
	CSI     float64 `json:"csi"`
	Bias    float64 `json:"bias"`
	MAE     float64 `json:"mae"`
	Samples int     `json:"samples"`
}

// StepReport is one lead step's scores.
type StepReport struct {
	Step        int     `json:"step"`
	LeadMinutes float64 `json:"lead_minutes"`
	ScoreReport
}

func scoreReport(s nowcast.SkillScores) ScoreReport {
	return ScoreReport{
		POD:     s.POD,
		FAR:     s.FAR,
		CSI:     s.CSI,
		Bias:    s.Bias,
		MAE:     s.MAE,
		Samples: s.Samples,
	}
}

func buildResult(cfg Config, threshold uint8, results []nowcast.MethodResult, runID string) *EvalResult {
	out := &EvalResult{
		Frames:        cfg.Frames,
		HistoryFrames: cfg.History,
		TruthFrames:   cfg.Frames - cfg.History,
		Rows:          cfg.Rows,
		Cols:          cfg.Cols,
		Seed:          cfg.Seed,
		Noise:         cfg.Noise,
		Threshold:     threshold,
		ThresholdDBZ:  units.CodeToDBZ(threshold),
		RunID:         runID,
	}

	for _, r := range results {
		mr := MethodReport{
			Method:    r.Method,
			ElapsedMs: r.Elapsed.Milliseconds(),
		}
		if r.Err != nil {
			mr.Error = r.Err.Error()
		} else {
			mr.Overall = scoreReport(r.Overall())
			for _, s := range r.Steps {
				mr.Steps = append(mr.Steps, StepReport{
					Step:        s.Step,
					LeadMinutes: s.LeadTime.Minutes(),
					ScoreReport: scoreReport(s.Scores),
				})
			}
		}
		out.Methods = append(out.Methods, mr)
	}

	return out
}

func printResults(result *EvalResult) {
	fmt.Println("\n=== Forecast Method Evaluation ===")
	fmt.Printf("Sequence: %d synthetic frames (%dx%d), seed %d, noise %.1f\n",
		result.Frames, result.Rows, result.Cols, result.Seed, result.Noise)
	fmt.Printf("Split: %d history / %d truth\n", result.HistoryFrames, result.TruthFrames)
	fmt.Printf("Threshold: code %d (%.1f dBZ)\n", result.Threshold, result.ThresholdDBZ)
	if result.RunID != "" {
		fmt.Printf("Run ID: %s\n", result.RunID)
	}

	for _, mr := range result.Methods {
		fmt.Printf("\n--- %s ---\n", mr.Method)
		if mr.Error != "" {
			fmt.Printf("Failed: %s\n", mr.Error)
			continue
		}
		fmt.Printf("Elapsed: %dms\n", mr.ElapsedMs)
		fmt.Printf("%6s %8s %7s %7s %7s %7s %8s\n", "step", "lead", "POD", "FAR", "CSI", "Bias", "MAE")
		for _, s := range mr.Steps {
			fmt.Printf("%6d %6.0fmin %7.3f %7.3f %7.3f %7.3f %8.2f\n",
				s.Step, s.LeadMinutes, s.POD, s.FAR, s.CSI, s.Bias, s.MAE)
		}
		o := mr.Overall
		fmt.Printf("Overall: POD %.3f  FAR %.3f  CSI %.3f  Bias %.3f  MAE %.2f (%d samples)\n",
			o.POD, o.FAR, o.CSI, o.Bias, o.MAE, o.Samples)
	}
	fmt.Println()
}

func exportJSON(result *EvalResult, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	encoder := json.NewEncoder(f)
	encoder.SetIndent("", "  ")
	return encoder.Encode(result)
}

// joinOutput places name under dir when an output directory is configured.
// The joined path must stay inside dir; a name like "../scores.json" is
// rejected.
func joinOutput(dir, name string) (string, error) {
	if dir == "" {
		return name, nil
	}
	path := filepath.Join(dir, name)
	if err := security.ValidatePathWithinDirectory(path, dir); err != nil {
		return "", err
	}
	return path, nil
}
