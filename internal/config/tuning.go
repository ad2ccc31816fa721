package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// TuningConfig carries the tunable forecast parameters as an optional JSON
// overlay. Every field is a pointer so an absent key is distinguishable from
// an explicit zero; the Get* methods fall back to the compiled-in defaults,
// which makes partial config files safe.
type TuningConfig struct {
	// Sequencer params
	Window          *int     `json:"window,omitempty"`
	Steps           *int     `json:"steps,omitempty"`
	StepInterval    *string  `json:"step_interval,omitempty"` // duration string like "10m"
	ConfidenceSlope *float64 `json:"confidence_slope,omitempty"`
	ConfidenceFloor *float64 `json:"confidence_floor,omitempty"`

	// Frame preparation params
	MinIntensity *int `json:"min_intensity,omitempty"` // sub-threshold codes are zeroed on ingest

	// Motion estimation params
	AnchorStride   *int     `json:"anchor_stride,omitempty"`
	WindowRadius   *int     `json:"window_radius,omitempty"`
	PyramidLevels  *int     `json:"pyramid_levels,omitempty"`
	SmoothingSigma *float64 `json:"smoothing_sigma,omitempty"`

	// Evolution params
	GrowthMin   *float64 `json:"growth_min,omitempty"`
	GrowthMax   *float64 `json:"growth_max,omitempty"`
	GrowthRate  *float64 `json:"growth_rate,omitempty"`
	DecayMin    *float64 `json:"decay_min,omitempty"`
	DecayRate   *float64 `json:"decay_rate,omitempty"`
	GlobalDecay *float64 `json:"global_decay,omitempty"`

	// Verification params
	VerifyThreshold *int `json:"verify_threshold,omitempty"` // echo exceedance code
}

// EmptyTuningConfig returns a TuningConfig with all fields unset.
func EmptyTuningConfig() *TuningConfig {
	return &TuningConfig{}
}

// LoadTuningConfig loads a TuningConfig from a JSON file. The file must have
// a .json extension and stay under the size cap. Fields omitted from the
// JSON keep their defaults through the Get* fallbacks.
func LoadTuningConfig(path string) (*TuningConfig, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024 // 1MB
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := EmptyTuningConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Validate checks that the configured values are usable.
func (c *TuningConfig) Validate() error {
	if c.Window != nil && *c.Window < 2 {
		return fmt.Errorf("window must be at least 2 frames, got %d", *c.Window)
	}
	if c.Steps != nil && *c.Steps < 1 {
		return fmt.Errorf("steps must be positive, got %d", *c.Steps)
	}
	if c.StepInterval != nil && *c.StepInterval != "" {
		d, err := time.ParseDuration(*c.StepInterval)
		if err != nil {
			return fmt.Errorf("invalid step_interval '%s': %w", *c.StepInterval, err)
		}
		if d <= 0 {
			return fmt.Errorf("step_interval must be positive, got %s", d)
		}
	}
	if c.ConfidenceSlope != nil && (*c.ConfidenceSlope <= 0 || *c.ConfidenceSlope >= 1) {
		return fmt.Errorf("confidence_slope must be in (0,1), got %f", *c.ConfidenceSlope)
	}
	if c.ConfidenceFloor != nil && (*c.ConfidenceFloor <= 0 || *c.ConfidenceFloor > 1) {
		return fmt.Errorf("confidence_floor must be in (0,1], got %f", *c.ConfidenceFloor)
	}
	if c.MinIntensity != nil && (*c.MinIntensity < 0 || *c.MinIntensity > 254) {
		return fmt.Errorf("min_intensity must be an 8-bit code below 255, got %d", *c.MinIntensity)
	}
	if c.AnchorStride != nil && *c.AnchorStride < 1 {
		return fmt.Errorf("anchor_stride must be positive, got %d", *c.AnchorStride)
	}
	if c.WindowRadius != nil && *c.WindowRadius < 1 {
		return fmt.Errorf("window_radius must be positive, got %d", *c.WindowRadius)
	}
	if c.PyramidLevels != nil && *c.PyramidLevels < 1 {
		return fmt.Errorf("pyramid_levels must be positive, got %d", *c.PyramidLevels)
	}
	if c.SmoothingSigma != nil && *c.SmoothingSigma < 0 {
		return fmt.Errorf("smoothing_sigma must be non-negative, got %f", *c.SmoothingSigma)
	}
	if c.GrowthMin != nil && c.GrowthMax != nil && *c.GrowthMin >= *c.GrowthMax {
		return fmt.Errorf("growth_min %f must be below growth_max %f", *c.GrowthMin, *c.GrowthMax)
	}
	if c.GrowthRate != nil && *c.GrowthRate < 0 {
		return fmt.Errorf("growth_rate must be non-negative, got %f", *c.GrowthRate)
	}
	if c.DecayRate != nil && *c.DecayRate < 0 {
		return fmt.Errorf("decay_rate must be non-negative, got %f", *c.DecayRate)
	}
	if c.GlobalDecay != nil && *c.GlobalDecay < 0 {
		return fmt.Errorf("global_decay must be non-negative, got %f", *c.GlobalDecay)
	}
	if c.VerifyThreshold != nil && (*c.VerifyThreshold < 0 || *c.VerifyThreshold > 254) {
		return fmt.Errorf("verify_threshold must be an 8-bit code below 255, got %d", *c.VerifyThreshold)
	}
	return nil
}

// GetWindow returns the window value or the default.
func (c *TuningConfig) GetWindow() int {
	if c.Window == nil {
		return 10
	}
	return *c.Window
}

// GetSteps returns the steps value or the default.
func (c *TuningConfig) GetSteps() int {
	if c.Steps == nil {
		return 6
	}
	return *c.Steps
}

// GetStepInterval parses and returns the step_interval as a time.Duration.
func (c *TuningConfig) GetStepInterval() time.Duration {
	if c.StepInterval == nil || *c.StepInterval == "" {
		return 10 * time.Minute
	}
	d, err := time.ParseDuration(*c.StepInterval)
	if err != nil {
		return 10 * time.Minute // default on parse error
	}
	return d
}

// GetConfidenceSlope returns the confidence_slope value or the default.
func (c *TuningConfig) GetConfidenceSlope() float64 {
	if c.ConfidenceSlope == nil {
		return 0.15
	}
	return *c.ConfidenceSlope
}

// GetConfidenceFloor returns the confidence_floor value or the default.
func (c *TuningConfig) GetConfidenceFloor() float64 {
	if c.ConfidenceFloor == nil {
		return 0.1
	}
	return *c.ConfidenceFloor
}

// GetMinIntensity returns the min_intensity value or the default.
func (c *TuningConfig) GetMinIntensity() uint8 {
	if c.MinIntensity == nil {
		return 0 // keep everything
	}
	return uint8(*c.MinIntensity)
}

// GetAnchorStride returns the anchor_stride value or the default.
func (c *TuningConfig) GetAnchorStride() int {
	if c.AnchorStride == nil {
		return 10
	}
	return *c.AnchorStride
}

// GetWindowRadius returns the window_radius value or the default.
func (c *TuningConfig) GetWindowRadius() int {
	if c.WindowRadius == nil {
		return 10
	}
	return *c.WindowRadius
}

// GetPyramidLevels returns the pyramid_levels value or the default.
func (c *TuningConfig) GetPyramidLevels() int {
	if c.PyramidLevels == nil {
		return 3
	}
	return *c.PyramidLevels
}

// GetSmoothingSigma returns the smoothing_sigma value or the default.
func (c *TuningConfig) GetSmoothingSigma() float64 {
	if c.SmoothingSigma == nil {
		return 2.0
	}
	return *c.SmoothingSigma
}

// GetGrowthMin returns the growth_min value or the default.
func (c *TuningConfig) GetGrowthMin() float64 {
	if c.GrowthMin == nil {
		return 80
	}
	return *c.GrowthMin
}

// GetGrowthMax returns the growth_max value or the default.
func (c *TuningConfig) GetGrowthMax() float64 {
	if c.GrowthMax == nil {
		return 150
	}
	return *c.GrowthMax
}

// GetGrowthRate returns the growth_rate value or the default.
func (c *TuningConfig) GetGrowthRate() float64 {
	if c.GrowthRate == nil {
		return 0.05
	}
	return *c.GrowthRate
}

// GetDecayMin returns the decay_min value or the default.
func (c *TuningConfig) GetDecayMin() float64 {
	if c.DecayMin == nil {
		return 180
	}
	return *c.DecayMin
}

// GetDecayRate returns the decay_rate value or the default.
func (c *TuningConfig) GetDecayRate() float64 {
	if c.DecayRate == nil {
		return 0.15
	}
	return *c.DecayRate
}

// GetGlobalDecay returns the global_decay value or the default.
func (c *TuningConfig) GetGlobalDecay() float64 {
	if c.GlobalDecay == nil {
		return 0.1
	}
	return *c.GlobalDecay
}

// GetVerifyThreshold returns the verify_threshold value or the default.
func (c *TuningConfig) GetVerifyThreshold() uint8 {
	if c.VerifyThreshold == nil {
		return 80
	}
	return uint8(*c.VerifyThreshold)
}
