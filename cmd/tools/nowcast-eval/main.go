// Package main provides a forecast method evaluation tool for radar
// nowcasting. It generates a synthetic reflectivity sequence, splits it into
// history and held-back truth, scores every forecast method side by side and
// writes optional reports: JSON, skill-versus-lead PNG plots, an HTML chart
// page and a run record in SQLite.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/regnkort/nowcast/internal/config"
	"github.com/regnkort/nowcast/internal/nowcast"
	"github.com/regnkort/nowcast/internal/nowcastdb"
	"github.com/regnkort/nowcast/internal/version"
)

// Config holds configuration for the evaluation run.
type Config struct {
	Frames      int
	Rows        int
	Cols        int
	Seed        int64
	Noise       float64
	History     int
	TuningFile  string
	DBPath      string
	OutputDir   string
	PlotDir     string
	ChartFile   string
	JSONFile    string
	Verbose     bool
	ShowVersion bool
}

func main() {
	cfg := parseFlags()

	if cfg.ShowVersion {
		fmt.Printf("nowcast-eval %s (%s, built %s)\n", version.Version, version.GitSHA, version.BuildTime)
		return
	}

	if cfg.History < 3 {
		log.Fatal("history must be at least 3 frames")
	}
	if cfg.Frames <= cfg.History {
		log.Fatalf("frames (%d) must exceed history (%d) to leave truth frames", cfg.Frames, cfg.History)
	}

	tuning := config.EmptyTuningConfig()
	if cfg.TuningFile != "" {
		var err error
		tuning, err = config.LoadTuningConfig(cfg.TuningFile)
		if err != nil {
			log.Fatalf("Failed to load tuning config: %v", err)
		}
	}

	// Create output directory if needed
	if cfg.OutputDir != "" {
		if err := os.MkdirAll(cfg.OutputDir, 0755); err != nil {
			log.Fatalf("Failed to create output directory: %v", err)
		}
	}

	result, err := runEvaluation(cfg, tuning)
	if err != nil {
		log.Fatalf("Evaluation failed: %v", err)
	}

	printResults(result)

	if cfg.JSONFile != "" {
		path, err := joinOutput(cfg.OutputDir, cfg.JSONFile)
		if err == nil {
			err = exportJSON(result, path)
		}
		if err != nil {
			log.Printf("Warning: failed to export JSON: %v", err)
		} else {
			log.Printf("Results exported to: %s", path)
		}
	}

	if cfg.PlotDir != "" {
		dir, err := joinOutput(cfg.OutputDir, cfg.PlotDir)
		var n int
		if err == nil {
			n, err = generatePlots(result, dir)
		}
		if err != nil {
			log.Printf("Warning: failed to generate plots: %v", err)
		} else {
			log.Printf("Wrote %d plots to: %s", n, dir)
		}
	}

	if cfg.ChartFile != "" {
		path, err := joinOutput(cfg.OutputDir, cfg.ChartFile)
		if err == nil {
			err = writeHTMLReport(result, path)
		}
		if err != nil {
			log.Printf("Warning: failed to write HTML report: %v", err)
		} else {
			log.Printf("HTML report written to: %s", path)
		}
	}
}

func parseFlags() Config {
	cfg := Config{}

	flag.IntVar(&cfg.Frames, "frames", 16, "Total synthetic frames to generate")
	flag.IntVar(&cfg.Rows, "rows", 120, "Grid rows")
	flag.IntVar(&cfg.Cols, "cols", 120, "Grid columns")
	flag.Int64Var(&cfg.Seed, "seed", 42, "Synthetic sequence random seed")
	flag.Float64Var(&cfg.Noise, "noise", 1.5, "Synthetic noise amplitude (code units)")
	flag.IntVar(&cfg.History, "history", 10, "Frames handed to the methods; the rest score as truth")
	flag.StringVar(&cfg.TuningFile, "config", "", "Path to tuning config JSON")
	flag.StringVar(&cfg.DBPath, "db", "", "SQLite path for run recording (e.g., runs.db)")
	flag.StringVar(&cfg.OutputDir, "output", "", "Output directory for results")
	flag.StringVar(&cfg.PlotDir, "plots", "", "Directory for skill plot PNGs")
	flag.StringVar(&cfg.ChartFile, "chart", "", "Output HTML chart filename (e.g., report.html)")
	flag.StringVar(&cfg.JSONFile, "json", "", "Output JSON filename (e.g., scores.json)")
	flag.BoolVar(&cfg.Verbose, "verbose", false, "Log engine progress events")
	flag.BoolVar(&cfg.ShowVersion, "version", false, "Print version and exit")

	flag.Parse()

	return cfg
}

func runEvaluation(cfg Config, tuning *config.TuningConfig) (*EvalResult, error) {
	ncfg := forecastConfig(tuning)

	log.Printf("Generating %d synthetic frames (%dx%d, seed %d)", cfg.Frames, cfg.Rows, cfg.Cols, cfg.Seed)
	gen := nowcast.NewSyntheticGenerator(cfg.Rows, cfg.Cols, cfg.Seed)
	gen.NoiseLevel = cfg.Noise
	gen.Interval = ncfg.StepInterval
	frames := gen.Frames(cfg.Frames)

	// Apply the ingest threshold the way a live feed would.
	if minCode := tuning.GetMinIntensity(); minCode > 0 {
		for i := range frames {
			f, err := nowcast.NewFrame(frames[i].Timestamp, frames[i].Rows, frames[i].Cols, frames[i].Data, minCode)
			if err != nil {
				return nil, err
			}
			frames[i] = f
		}
	}

	var rec *nowcastdb.RunRecorder
	if cfg.DBPath != "" {
		db, err := nowcastdb.Open(cfg.DBPath)
		if err != nil {
			return nil, err
		}
		defer db.Close()
		if err := db.MigrateUp(); err != nil {
			return nil, err
		}
		rec = nowcastdb.NewRunRecorder(nowcastdb.NewRunStore(db.DB), nil)
	}

	var sinks []nowcast.EventSink
	if cfg.Verbose {
		sinks = append(sinks, nowcast.LogSink{})
	}
	if rec != nil {
		sinks = append(sinks, rec)
	}

	fluid := nowcast.NewForecaster(ncfg, combineSinks(sinks))
	trend := nowcast.NewTrendForecaster(ncfg)
	persist := nowcast.NewPersistenceForecaster(ncfg)

	threshold := tuning.GetVerifyThreshold()
	harness := nowcast.NewEvaluationHarness(nowcast.HarnessConfig{
		HistoryFrames: cfg.History,
		Threshold:     threshold,
	}, nil, fluid, trend, persist)

	var runID string
	if rec != nil {
		var err error
		runID, err = rec.StartRun("synthetic", cfg.Rows, cfg.Cols, cfg.History, nowcastdb.RunParams{
			Method: nowcast.MethodFluidDynamics,
			Config: ncfg,
		})
		if err != nil {
			return nil, err
		}
	}

	results, err := harness.Run(frames)
	if err != nil {
		if rec != nil {
			_ = rec.FailRun(err.Error())
		}
		return nil, err
	}

	if rec != nil {
		finalizeRun(rec, runID, results)
	}

	return buildResult(cfg, threshold, results, runID), nil
}

// finalizeRun closes out the recorded run and persists every method's scores
// against it.
func finalizeRun(rec *nowcastdb.RunRecorder, runID string, results []nowcast.MethodResult) {
	var failure error
	for _, r := range results {
		if r.Method == nowcast.MethodFluidDynamics {
			failure = r.Err
		}
	}

	if failure != nil {
		if err := rec.FailRun(failure.Error()); err != nil {
			log.Printf("Warning: failed to record run failure: %v", err)
		}
	} else if err := rec.CompleteRun(); err != nil {
		log.Printf("Warning: failed to complete run record: %v", err)
	}

	for _, r := range results {
		if r.Err != nil {
			continue
		}
		for _, s := range r.Steps {
			if err := rec.RecordScore(runID, r.Method, s.Step, s.LeadTime, s.Scores); err != nil {
				log.Printf("Warning: failed to record score: %v", err)
			}
		}
	}
}

// forecastConfig assembles the engine configuration from the tuning overlay,
// falling back to compiled-in defaults for anything unset.
func forecastConfig(t *config.TuningConfig) nowcast.Config {
	motion := nowcast.DefaultMotionConfig()
	motion.AnchorStride = t.GetAnchorStride()
	motion.WindowRadius = t.GetWindowRadius()
	motion.PyramidLevels = t.GetPyramidLevels()
	motion.SmoothingSigma = t.GetSmoothingSigma()

	return nowcast.Config{
		Window:          t.GetWindow(),
		Steps:           t.GetSteps(),
		StepInterval:    t.GetStepInterval(),
		ConfidenceSlope: t.GetConfidenceSlope(),
		ConfidenceFloor: t.GetConfidenceFloor(),
		Motion:          motion,
		Evolution: nowcast.EvolutionConfig{
			GrowthMin:   t.GetGrowthMin(),
			GrowthMax:   t.GetGrowthMax(),
			GrowthRate:  t.GetGrowthRate(),
			DecayMin:    t.GetDecayMin(),
			DecayRate:   t.GetDecayRate(),
			GlobalDecay: t.GetGlobalDecay(),
		},
	}
}

// teeSink fans events out to several sinks.
type teeSink struct {
	sinks []nowcast.EventSink
}

func (t teeSink) Event(e nowcast.Event) {
	for _, s := range t.sinks {
		s.Event(e)
	}
}

func combineSinks(sinks []nowcast.EventSink) nowcast.EventSink {
	switch len(sinks) {
	case 0:
		return nil
	case 1:
		return sinks[0]
	}
	return teeSink{sinks: sinks}
}
