package nowcast

import "math"

// EvolutionModel applies simple intensity physics between advection steps.
// Echoes in the moderate band intensify (developing convection), echoes
// above the decay threshold weaken (mature cores raining out), and the whole
// field fades exponentially with lead time. All rates are configured per
// hour and scaled by the step's dt.
type EvolutionModel struct {
	cfg EvolutionConfig
}

// NewEvolutionModel returns a model with the given configuration.
// Zero-valued fields fall back to DefaultEvolutionConfig.
func NewEvolutionModel(cfg EvolutionConfig) *EvolutionModel {
	if cfg == (EvolutionConfig{}) {
		cfg = DefaultEvolutionConfig()
	}
	return &EvolutionModel{cfg: cfg}
}

// Evolve advances grid g by dt seconds of intensity evolution and returns a
// new grid clamped to the valid reflectivity range. The input is never
// modified.
//
// Evolve deliberately cannot fail: if the computation breaks down
// numerically (non-finite dt or cell values), the input grid is returned
// unchanged, degrading the forecast to pure advection rather than killing
// the run over a cosmetic adjustment.
func (m *EvolutionModel) Evolve(g *Grid, dt float64) *Grid {
	hours := dt / 3600
	if !isFinite(hours) || hours < 0 {
		return g
	}
	growth := 1 + m.cfg.GrowthRate*hours
	decay := 1 - m.cfg.DecayRate*hours
	global := math.Exp(-m.cfg.GlobalDecay * hours)

	out := NewGrid(g.Rows, g.Cols)
	for i, v := range g.Data {
		switch {
		case v > m.cfg.GrowthMin && v < m.cfg.GrowthMax:
			v *= growth
		case v > m.cfg.DecayMin:
			v *= decay
		}
		v *= global
		if !isFinite(v) {
			return g
		}
		out.Data[i] = clampF(v, 0, 255)
	}
	return out
}
