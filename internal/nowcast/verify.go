package nowcast

import (
	"fmt"
	"math"
)

// SkillScores holds categorical verification of a forecast frame against an
// observed frame at an exceedance threshold, plus mean absolute error over
// all cells. Counts follow the standard contingency table: a hit is a cell
// where forecast and observation both meet the threshold.
type SkillScores struct {
	Hits             int
	Misses           int
	FalseAlarms      int
	CorrectNegatives int
	Samples          int // total cells scored

	POD  float64 // probability of detection: hits / (hits + misses)
	FAR  float64 // false alarm ratio: falseAlarms / (hits + falseAlarms)
	CSI  float64 // critical success index: hits / (hits + misses + falseAlarms)
	Bias float64 // frequency bias: (hits + falseAlarms) / (hits + misses)
	MAE  float64 // mean absolute intensity error over all cells
}

// VerifyFrame scores one forecast frame against the observation valid at the
// same time. Cells at or above threshold count as echo. Shapes must match.
func VerifyFrame(fc ForecastFrame, obs Frame, threshold uint8) (SkillScores, error) {
	if fc.Rows != obs.Rows || fc.Cols != obs.Cols {
		return SkillScores{}, fmt.Errorf("verify: forecast %dx%d vs observation %dx%d",
			fc.Rows, fc.Cols, obs.Rows, obs.Cols)
	}
	var s SkillScores
	absErr := 0.0
	for i := range fc.Data {
		f := fc.Data[i]
		o := obs.Data[i]
		absErr += math.Abs(float64(f) - float64(o))
		switch {
		case f >= threshold && o >= threshold:
			s.Hits++
		case f < threshold && o >= threshold:
			s.Misses++
		case f >= threshold && o < threshold:
			s.FalseAlarms++
		default:
			s.CorrectNegatives++
		}
	}
	s.Samples = len(fc.Data)
	if s.Samples > 0 {
		s.MAE = absErr / float64(s.Samples)
	}
	s.derive()
	return s, nil
}

// Merge accumulates another frame's counts into s and re-derives the
// ratios. MAE is combined weighted by sample counts.
func (s *SkillScores) Merge(o SkillScores) {
	total := s.Samples + o.Samples
	if total > 0 {
		s.MAE = (s.MAE*float64(s.Samples) + o.MAE*float64(o.Samples)) / float64(total)
	}
	s.Hits += o.Hits
	s.Misses += o.Misses
	s.FalseAlarms += o.FalseAlarms
	s.CorrectNegatives += o.CorrectNegatives
	s.Samples = total
	s.derive()
}

// derive recomputes the ratio scores from the counts. Empty denominators
// yield zero rather than NaN so downstream aggregation stays finite.
func (s *SkillScores) derive() {
	if d := s.Hits + s.Misses; d > 0 {
		s.POD = float64(s.Hits) / float64(d)
		s.Bias = float64(s.Hits+s.FalseAlarms) / float64(d)
	} else {
		s.POD = 0
		s.Bias = 0
	}
	if d := s.Hits + s.FalseAlarms; d > 0 {
		s.FAR = float64(s.FalseAlarms) / float64(d)
	} else {
		s.FAR = 0
	}
	if d := s.Hits + s.Misses + s.FalseAlarms; d > 0 {
		s.CSI = float64(s.Hits) / float64(d)
	} else {
		s.CSI = 0
	}
}
