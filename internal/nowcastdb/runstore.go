package nowcastdb

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/regnkort/nowcast/internal/nowcast"
)

// ForecastRun represents one recorded forecast invocation.
type ForecastRun struct {
	RunID        string
	CreatedAt    time.Time
	Method       string
	Source       string
	Rows         int
	Cols         int
	FrameCount   int
	ParamsJSON   []byte
	Status       string
	ErrorMessage string

	// Populated on completion.
	DurationMs   int64
	Steps        int
	PairsUsed    int
	PairsSkipped int
	MeanSpeed    float64
}

// RunParams captures the configurable parameters of a run for
// reproducibility. It is stored as JSON alongside the run record.
type RunParams struct {
	Method string         `json:"method"`
	Config nowcast.Config `json:"config"`
}

// ToJSON serializes the params for storage.
func (p RunParams) ToJSON() ([]byte, error) {
	return json.Marshal(p)
}

// RunStats carries the statistics collected over a completed run.
type RunStats struct {
	DurationMs   int64
	Steps        int
	PairsUsed    int
	PairsSkipped int
	MeanSpeed    float64
}

// RunStep is one persisted forecast step of a run.
type RunStep struct {
	RunID         string
	Step          int
	ForecastUnix  int64
	Confidence    float64
	MeanIntensity float64
	MaxIntensity  float64
}

// RunScore is a persisted verification result for one forecast step.
type RunScore struct {
	RunID        string
	Method       string
	Step         int
	LeadTimeSecs float64
	Scores       nowcast.SkillScores
}

// RunStore manages persistence for forecast runs, their steps and their
// verification scores.
type RunStore struct {
	db *sql.DB
}

// NewRunStore creates a RunStore backed by the given database.
func NewRunStore(db *sql.DB) *RunStore {
	return &RunStore{db: db}
}

// InsertRun persists a new run record.
func (s *RunStore) InsertRun(run *ForecastRun) error {
	stmt := `INSERT INTO forecast_runs (run_id, created_at, method, source, rows, cols, frame_count, params_json, status)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := s.db.Exec(stmt,
		run.RunID, run.CreatedAt.Unix(), run.Method, run.Source,
		run.Rows, run.Cols, run.FrameCount, string(run.ParamsJSON), run.Status)
	if err != nil {
		return fmt.Errorf("failed to insert run %s: %w", run.RunID, err)
	}
	return nil
}

// UpdateRunStatus sets the status and error message of a run.
func (s *RunStore) UpdateRunStatus(runID, status, errMsg string) error {
	res, err := s.db.Exec(`UPDATE forecast_runs SET status = ?, error_message = ? WHERE run_id = ?`,
		status, errMsg, runID)
	if err != nil {
		return fmt.Errorf("failed to update run %s: %w", runID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("run %s not found", runID)
	}
	return nil
}

// CompleteRun marks a run completed and stores its statistics.
func (s *RunStore) CompleteRun(runID string, stats *RunStats) error {
	stmt := `UPDATE forecast_runs
			 SET status = 'completed', duration_ms = ?, steps = ?, pairs_used = ?, pairs_skipped = ?, mean_speed = ?
			 WHERE run_id = ?`
	res, err := s.db.Exec(stmt,
		stats.DurationMs, stats.Steps, stats.PairsUsed, stats.PairsSkipped, stats.MeanSpeed, runID)
	if err != nil {
		return fmt.Errorf("failed to complete run %s: %w", runID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("run %s not found", runID)
	}
	return nil
}

// InsertStep persists one forecast step of a run.
func (s *RunStore) InsertStep(step *RunStep) error {
	stmt := `INSERT INTO forecast_steps (run_id, step, forecast_unix, confidence, mean_intensity, max_intensity)
			 VALUES (?, ?, ?, ?, ?, ?)`
	_, err := s.db.Exec(stmt,
		step.RunID, step.Step, step.ForecastUnix, step.Confidence, step.MeanIntensity, step.MaxIntensity)
	if err != nil {
		return fmt.Errorf("failed to insert step %d of run %s: %w", step.Step, step.RunID, err)
	}
	return nil
}

// StepsForRun returns the persisted steps of a run in step order.
func (s *RunStore) StepsForRun(runID string) ([]RunStep, error) {
	rows, err := s.db.Query(`SELECT run_id, step, forecast_unix, confidence, mean_intensity, max_intensity
							 FROM forecast_steps WHERE run_id = ? ORDER BY step`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query steps for run %s: %w", runID, err)
	}
	defer rows.Close()

	var steps []RunStep
	for rows.Next() {
		var st RunStep
		var mean, max sql.NullFloat64
		if err := rows.Scan(&st.RunID, &st.Step, &st.ForecastUnix, &st.Confidence, &mean, &max); err != nil {
			return nil, err
		}
		st.MeanIntensity = mean.Float64
		st.MaxIntensity = max.Float64
		steps = append(steps, st)
	}
	return steps, rows.Err()
}

// InsertScore persists the verification scores of one forecast step.
func (s *RunStore) InsertScore(sc *RunScore) error {
	stmt := `INSERT INTO forecast_scores (run_id, method, step, lead_time_secs, pod, far, csi, bias, mae, samples, hits, misses, false_alarms, correct_negatives)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := s.db.Exec(stmt,
		sc.RunID, sc.Method, sc.Step, sc.LeadTimeSecs,
		sc.Scores.POD, sc.Scores.FAR, sc.Scores.CSI, sc.Scores.Bias, sc.Scores.MAE,
		sc.Scores.Samples, sc.Scores.Hits, sc.Scores.Misses, sc.Scores.FalseAlarms, sc.Scores.CorrectNegatives)
	if err != nil {
		return fmt.Errorf("failed to insert score for run %s step %d: %w", sc.RunID, sc.Step, err)
	}
	return nil
}

// ScoresForRun returns the persisted verification scores of a run ordered by
// method and step.
func (s *RunStore) ScoresForRun(runID string) ([]RunScore, error) {
	rows, err := s.db.Query(`SELECT run_id, method, step, lead_time_secs, pod, far, csi, bias, mae, samples, hits, misses, false_alarms, correct_negatives
							 FROM forecast_scores WHERE run_id = ? ORDER BY method, step`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query scores for run %s: %w", runID, err)
	}
	defer rows.Close()

	var scores []RunScore
	for rows.Next() {
		var sc RunScore
		if err := rows.Scan(&sc.RunID, &sc.Method, &sc.Step, &sc.LeadTimeSecs,
			&sc.Scores.POD, &sc.Scores.FAR, &sc.Scores.CSI, &sc.Scores.Bias, &sc.Scores.MAE,
			&sc.Scores.Samples, &sc.Scores.Hits, &sc.Scores.Misses, &sc.Scores.FalseAlarms, &sc.Scores.CorrectNegatives); err != nil {
			return nil, err
		}
		scores = append(scores, sc)
	}
	return scores, rows.Err()
}

// GetRun fetches one run by ID.
func (s *RunStore) GetRun(runID string) (*ForecastRun, error) {
	row := s.db.QueryRow(`SELECT run_id, created_at, method, source, rows, cols, frame_count, params_json, status, error_message, duration_ms, steps, pairs_used, pairs_skipped, mean_speed
						  FROM forecast_runs WHERE run_id = ?`, runID)
	return scanRun(row)
}

// ListRuns returns up to limit runs, newest first.
func (s *RunStore) ListRuns(limit int) ([]*ForecastRun, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.Query(`SELECT run_id, created_at, method, source, rows, cols, frame_count, params_json, status, error_message, duration_ms, steps, pairs_used, pairs_skipped, mean_speed
							 FROM forecast_runs ORDER BY created_at DESC, run_id LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []*ForecastRun
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// rowScanner covers both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (*ForecastRun, error) {
	var run ForecastRun
	var createdUnix int64
	var paramsJSON string
	var source, errMsg sql.NullString
	var durationMs, steps, pairsUsed, pairsSkipped sql.NullInt64
	var meanSpeed sql.NullFloat64

	err := row.Scan(&run.RunID, &createdUnix, &run.Method, &source,
		&run.Rows, &run.Cols, &run.FrameCount, &paramsJSON, &run.Status, &errMsg,
		&durationMs, &steps, &pairsUsed, &pairsSkipped, &meanSpeed)
	if err != nil {
		return nil, err
	}

	run.CreatedAt = time.Unix(createdUnix, 0).UTC()
	run.Source = source.String
	run.ParamsJSON = []byte(paramsJSON)
	run.ErrorMessage = errMsg.String
	run.DurationMs = durationMs.Int64
	run.Steps = int(steps.Int64)
	run.PairsUsed = int(pairsUsed.Int64)
	run.PairsSkipped = int(pairsSkipped.Int64)
	run.MeanSpeed = meanSpeed.Float64
	return &run, nil
}
