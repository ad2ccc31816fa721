package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// Pointer helpers for building partial configs in tests.
func ptrFloat64(v float64) *float64 { return &v }
func ptrString(v string) *string    { return &v }
func ptrInt(v int) *int             { return &v }

func TestLoadTuningConfig(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "test_config.json")

	// Write test config with flat schema
	testJSON := `{
  "window": 8,
  "steps": 4,
  "step_interval": "5m",
  "confidence_slope": 0.2,
  "min_intensity": 16,
  "anchor_stride": 5,
  "smoothing_sigma": 1.5,
  "growth_rate": 0.08,
  "verify_threshold": 96
}`
	if err := os.WriteFile(configPath, []byte(testJSON), 0644); err != nil {
		t.Fatalf("Failed to write test config: %v", err)
	}

	cfg, err := LoadTuningConfig(configPath)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	// Verify values set in the file
	if cfg.Window == nil || *cfg.Window != 8 {
		t.Errorf("Expected Window 8, got %v", cfg.Window)
	}
	if cfg.Steps == nil || *cfg.Steps != 4 {
		t.Errorf("Expected Steps 4, got %v", cfg.Steps)
	}
	if cfg.StepInterval == nil || *cfg.StepInterval != "5m" {
		t.Errorf("Expected StepInterval '5m', got %v", cfg.StepInterval)
	}
	if cfg.ConfidenceSlope == nil || *cfg.ConfidenceSlope != 0.2 {
		t.Errorf("Expected ConfidenceSlope 0.2, got %v", cfg.ConfidenceSlope)
	}
	if cfg.GetStepInterval() != 5*time.Minute {
		t.Errorf("GetStepInterval() = %v, want 5m", cfg.GetStepInterval())
	}
	if cfg.GetMinIntensity() != 16 {
		t.Errorf("GetMinIntensity() = %d, want 16", cfg.GetMinIntensity())
	}
	if cfg.GetAnchorStride() != 5 {
		t.Errorf("GetAnchorStride() = %d, want 5", cfg.GetAnchorStride())
	}
	if cfg.GetSmoothingSigma() != 1.5 {
		t.Errorf("GetSmoothingSigma() = %f, want 1.5", cfg.GetSmoothingSigma())
	}
	if cfg.GetGrowthRate() != 0.08 {
		t.Errorf("GetGrowthRate() = %f, want 0.08", cfg.GetGrowthRate())
	}
	if cfg.GetVerifyThreshold() != 96 {
		t.Errorf("GetVerifyThreshold() = %d, want 96", cfg.GetVerifyThreshold())
	}

	// Fields absent from the file fall back to defaults
	if cfg.PyramidLevels != nil {
		t.Errorf("Expected PyramidLevels unset, got %v", *cfg.PyramidLevels)
	}
	if cfg.GetPyramidLevels() != 3 {
		t.Errorf("GetPyramidLevels() = %d, want default 3", cfg.GetPyramidLevels())
	}
	if cfg.GetConfidenceFloor() != 0.1 {
		t.Errorf("GetConfidenceFloor() = %f, want default 0.1", cfg.GetConfidenceFloor())
	}
}

func TestLoadTuningConfigMissing(t *testing.T) {
	_, err := LoadTuningConfig("/nonexistent/path/to/config.json")
	if err == nil {
		t.Error("Expected error when loading missing file, got nil")
	}
}

func TestLoadTuningConfigInvalid(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "invalid_config.json")

	// Write invalid JSON
	invalidJSON := `{
  "window": "invalid"
`
	if err := os.WriteFile(configPath, []byte(invalidJSON), 0644); err != nil {
		t.Fatalf("Failed to write test config: %v", err)
	}

	_, err := LoadTuningConfig(configPath)
	if err == nil {
		t.Error("Expected error when loading invalid JSON, got nil")
	}
}

func TestLoadTuningConfigWrongExtension(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte(`{}`), 0644); err != nil {
		t.Fatalf("Failed to write test config: %v", err)
	}

	_, err := LoadTuningConfig(configPath)
	if err == nil {
		t.Error("Expected error for non-json extension, got nil")
	}
}

func TestLoadTuningConfigTooLarge(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "huge_config.json")

	// Just over the 1MB cap
	padding := strings.Repeat(" ", 1*1024*1024)
	if err := os.WriteFile(configPath, []byte("{}"+padding), 0644); err != nil {
		t.Fatalf("Failed to write test config: %v", err)
	}

	_, err := LoadTuningConfig(configPath)
	if err == nil {
		t.Error("Expected error for oversized file, got nil")
	}
}

func TestLoadTuningConfigRejectsInvalidValues(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "bad_values.json")

	testJSON := `{"window": 1}`
	if err := os.WriteFile(configPath, []byte(testJSON), 0644); err != nil {
		t.Fatalf("Failed to write test config: %v", err)
	}

	_, err := LoadTuningConfig(configPath)
	if err == nil {
		t.Error("Expected validation error for window=1, got nil")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     *TuningConfig
		wantErr bool
	}{
		{
			name:    "empty config is valid",
			cfg:     EmptyTuningConfig(),
			wantErr: false,
		},
		{
			name: "window below minimum",
			cfg: &TuningConfig{
				Window: ptrInt(1),
			},
			wantErr: true,
		},
		{
			name: "zero steps",
			cfg: &TuningConfig{
				Steps: ptrInt(0),
			},
			wantErr: true,
		},
		{
			name: "unparseable step interval",
			cfg: &TuningConfig{
				StepInterval: ptrString("ten minutes"),
			},
			wantErr: true,
		},
		{
			name: "negative step interval",
			cfg: &TuningConfig{
				StepInterval: ptrString("-5m"),
			},
			wantErr: true,
		},
		{
			name: "valid step interval",
			cfg: &TuningConfig{
				StepInterval: ptrString("15m"),
			},
			wantErr: false,
		},
		{
			name: "confidence slope at one",
			cfg: &TuningConfig{
				ConfidenceSlope: ptrFloat64(1.0),
			},
			wantErr: true,
		},
		{
			name: "confidence slope at zero",
			cfg: &TuningConfig{
				ConfidenceSlope: ptrFloat64(0),
			},
			wantErr: true,
		},
		{
			name: "confidence floor of one is valid",
			cfg: &TuningConfig{
				ConfidenceFloor: ptrFloat64(1.0),
			},
			wantErr: false,
		},
		{
			name: "confidence floor of zero",
			cfg: &TuningConfig{
				ConfidenceFloor: ptrFloat64(0),
			},
			wantErr: true,
		},
		{
			name: "min intensity at no-data code",
			cfg: &TuningConfig{
				MinIntensity: ptrInt(255),
			},
			wantErr: true,
		},
		{
			name: "zero anchor stride",
			cfg: &TuningConfig{
				AnchorStride: ptrInt(0),
			},
			wantErr: true,
		},
		{
			name: "zero pyramid levels",
			cfg: &TuningConfig{
				PyramidLevels: ptrInt(0),
			},
			wantErr: true,
		},
		{
			name: "negative smoothing sigma",
			cfg: &TuningConfig{
				SmoothingSigma: ptrFloat64(-0.5),
			},
			wantErr: true,
		},
		{
			name: "zero smoothing sigma is valid",
			cfg: &TuningConfig{
				SmoothingSigma: ptrFloat64(0),
			},
			wantErr: false,
		},
		{
			name: "growth band inverted",
			cfg: &TuningConfig{
				GrowthMin: ptrFloat64(150),
				GrowthMax: ptrFloat64(80),
			},
			wantErr: true,
		},
		{
			name: "growth min alone is valid",
			cfg: &TuningConfig{
				GrowthMin: ptrFloat64(90),
			},
			wantErr: false,
		},
		{
			name: "negative decay rate",
			cfg: &TuningConfig{
				DecayRate: ptrFloat64(-0.1),
			},
			wantErr: true,
		},
		{
			name: "negative global decay",
			cfg: &TuningConfig{
				GlobalDecay: ptrFloat64(-0.01),
			},
			wantErr: true,
		},
		{
			name: "verify threshold above code range",
			cfg: &TuningConfig{
				VerifyThreshold: ptrInt(300),
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestGetStepInterval(t *testing.T) {
	tests := []struct {
		name string
		cfg  *TuningConfig
		want time.Duration
	}{
		{
			name: "5 minutes",
			cfg: &TuningConfig{
				StepInterval: ptrString("5m"),
			},
			want: 5 * time.Minute,
		},
		{
			name: "90 seconds",
			cfg: &TuningConfig{
				StepInterval: ptrString("90s"),
			},
			want: 90 * time.Second,
		},
		{
			name: "nil pointer returns default",
			cfg:  &TuningConfig{},
			want: 10 * time.Minute,
		},
		{
			name: "empty string returns default",
			cfg: &TuningConfig{
				StepInterval: ptrString(""),
			},
			want: 10 * time.Minute,
		},
		{
			name: "invalid duration returns default",
			cfg: &TuningConfig{
				StepInterval: ptrString("invalid"),
			},
			want: 10 * time.Minute,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.cfg.GetStepInterval()
			if got != tt.want {
				t.Errorf("GetStepInterval() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestGetterDefaults(t *testing.T) {
	cfg := EmptyTuningConfig()

	if got := cfg.GetWindow(); got != 10 {
		t.Errorf("GetWindow() = %d, want 10", got)
	}
	if got := cfg.GetSteps(); got != 6 {
		t.Errorf("GetSteps() = %d, want 6", got)
	}
	if got := cfg.GetConfidenceSlope(); got != 0.15 {
		t.Errorf("GetConfidenceSlope() = %f, want 0.15", got)
	}
	if got := cfg.GetConfidenceFloor(); got != 0.1 {
		t.Errorf("GetConfidenceFloor() = %f, want 0.1", got)
	}
	if got := cfg.GetMinIntensity(); got != 0 {
		t.Errorf("GetMinIntensity() = %d, want 0", got)
	}
	if got := cfg.GetAnchorStride(); got != 10 {
		t.Errorf("GetAnchorStride() = %d, want 10", got)
	}
	if got := cfg.GetWindowRadius(); got != 10 {
		t.Errorf("GetWindowRadius() = %d, want 10", got)
	}
	if got := cfg.GetPyramidLevels(); got != 3 {
		t.Errorf("GetPyramidLevels() = %d, want 3", got)
	}
	if got := cfg.GetSmoothingSigma(); got != 2.0 {
		t.Errorf("GetSmoothingSigma() = %f, want 2.0", got)
	}
	if got := cfg.GetGrowthMin(); got != 80 {
		t.Errorf("GetGrowthMin() = %f, want 80", got)
	}
	if got := cfg.GetGrowthMax(); got != 150 {
		t.Errorf("GetGrowthMax() = %f, want 150", got)
	}
	if got := cfg.GetGrowthRate(); got != 0.05 {
		t.Errorf("GetGrowthRate() = %f, want 0.05", got)
	}
	if got := cfg.GetDecayMin(); got != 180 {
		t.Errorf("GetDecayMin() = %f, want 180", got)
	}
	if got := cfg.GetDecayRate(); got != 0.15 {
		t.Errorf("GetDecayRate() = %f, want 0.15", got)
	}
	if got := cfg.GetGlobalDecay(); got != 0.1 {
		t.Errorf("GetGlobalDecay() = %f, want 0.1", got)
	}
	if got := cfg.GetVerifyThreshold(); got != 80 {
		t.Errorf("GetVerifyThreshold() = %d, want 80", got)
	}
}
