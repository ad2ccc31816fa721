package nowcast

import "time"

// MotionConfig holds configuration for pairwise motion estimation.
type MotionConfig struct {
	// AnchorStride is the spacing (cells) of the sparse tracking grid; one
	// anchor point is tracked per stride x stride tile
	AnchorStride int

	// WindowRadius is the half-width of the square correlation window the
	// tracker integrates over (window edge = 2*radius+1)
	WindowRadius int

	// PyramidLevels is the number of coarse-to-fine image pyramid levels
	PyramidLevels int

	// MaxIterations bounds the Newton refinement iterations per level
	MaxIterations int

	// Epsilon is the displacement update (cells) below which refinement stops
	Epsilon float64

	// MinEigenvalue is the minimum normalised eigenvalue of the spatial
	// gradient matrix for an anchor to count as trackable; texture below
	// this is degenerate
	MinEigenvalue float64

	// SmoothingSigma is the Gaussian sigma (cells) applied to the dense
	// velocity components after anchor densification
	SmoothingSigma float64
}

// DefaultMotionConfig returns the defaults tuned for 8-bit national
// composites on a kilometre-scale grid.
func DefaultMotionConfig() MotionConfig {
	return MotionConfig{
		AnchorStride:   10,   // one tracked point per 10x10 tile
		WindowRadius:   10,   // 21x21 correlation window
		PyramidLevels:  3,    // handles displacements up to ~8x window
		MaxIterations:  30,   // Newton iteration cap per pyramid level
		Epsilon:        0.01, // hundredth-of-a-cell convergence
		MinEigenvalue:  1e-4, // normalised by window area
		SmoothingSigma: 2.0,  // densification low-pass
	}
}

// EvolutionConfig holds configuration for the intensity evolution model.
// All rates are per hour and scale linearly with the step interval.
type EvolutionConfig struct {
	// GrowthMin/GrowthMax bound (exclusively) the moderate-echo band that
	// intensifies between steps
	GrowthMin float64
	GrowthMax float64

	// GrowthRate is the fractional growth per hour inside the band
	GrowthRate float64

	// DecayMin is the exclusive lower bound of the very-intense band that
	// collapses between steps
	DecayMin float64

	// DecayRate is the fractional decay per hour above DecayMin
	DecayRate float64

	// GlobalDecay is the exponential fade rate per hour applied to every
	// cell, representing forecast uncertainty growth
	GlobalDecay float64
}

// DefaultEvolutionConfig returns the defaults for composite reflectivity
// codes in the 0-255 range.
func DefaultEvolutionConfig() EvolutionConfig {
	return EvolutionConfig{
		GrowthMin:   80,   // developing convection band lower bound
		GrowthMax:   150,  // band upper bound
		GrowthRate:  0.05, // +5%/h
		DecayMin:    180,  // mature cores rain out
		DecayRate:   0.15, // -15%/h
		GlobalDecay: 0.1,  // e-folding ~10 h
	}
}

// Config holds configuration for a forecast run.
type Config struct {
	// Window is the maximum number of most-recent frames used for velocity
	// aggregation
	Window int

	// Steps is the number of forecast frames to produce
	Steps int

	// StepInterval is the lead-time spacing between forecast frames
	StepInterval time.Duration

	// ConfidenceSlope is the per-step confidence loss; step s gets
	// max(ConfidenceFloor, 1 - s*ConfidenceSlope)
	ConfidenceSlope float64

	// ConfidenceFloor is the minimum confidence ever attached to a frame
	ConfidenceFloor float64

	// Motion configures pairwise motion estimation
	Motion MotionConfig

	// Evolution configures the intensity evolution model
	Evolution EvolutionConfig
}

// DefaultConfig returns the standard hour-ahead configuration: six steps at
// ten-minute spacing from a ten-frame window.
func DefaultConfig() Config {
	return Config{
		Window:          10,
		Steps:           6,
		StepInterval:    10 * time.Minute,
		ConfidenceSlope: 0.15,
		ConfidenceFloor: 0.1,
		Motion:          DefaultMotionConfig(),
		Evolution:       DefaultEvolutionConfig(),
	}
}

// withDefaults fills zero-valued fields from DefaultConfig so a partially
// populated Config behaves sensibly.
func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.Window <= 0 {
		c.Window = d.Window
	}
	if c.Steps <= 0 {
		c.Steps = d.Steps
	}
	if c.StepInterval <= 0 {
		c.StepInterval = d.StepInterval
	}
	if c.ConfidenceSlope <= 0 {
		c.ConfidenceSlope = d.ConfidenceSlope
	}
	if c.ConfidenceFloor <= 0 {
		c.ConfidenceFloor = d.ConfidenceFloor
	}
	if c.Motion == (MotionConfig{}) {
		c.Motion = d.Motion
	}
	if c.Evolution == (EvolutionConfig{}) {
		c.Evolution = d.Evolution
	}
	return c
}

// confidence returns the confidence attached to the given 1-based step.
func (c Config) confidence(step int) float64 {
	conf := 1.0 - float64(step)*c.ConfidenceSlope
	if conf < c.ConfidenceFloor {
		conf = c.ConfidenceFloor
	}
	return conf
}
