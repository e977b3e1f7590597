package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/banshee-data/trajectory.report/internal/edr"
	"github.com/banshee-data/trajectory.report/internal/units"
)

// Config represents the server and integrator defaults. The schema matches
// the /api/config endpoint so the same JSON can be used for both startup
// configuration and inspection. Fields omitted from the JSON file retain
// their default values, so partial configs are safe.
type Config struct {
	// Display and source units
	DisplayUnits *string `json:"display_units,omitempty"` // mps, mph, kmph
	SourceUnits  *string `json:"source_units,omitempty"`  // metric, imperial

	// Integrator params
	DefaultFPS *float64 `json:"default_fps,omitempty"`
	PreRoll    *bool    `json:"pre_roll,omitempty"`
	Strict     *bool    `json:"strict,omitempty"`
	InputMode  *string  `json:"input_mode,omitempty"` // yaw_rate, steering_wheel_angle

	// Vehicle geometry for steering-angle input and sideslip
	WheelbaseM    *float64 `json:"wheelbase_m,omitempty"`
	SteeringRatio *float64 `json:"steering_ratio,omitempty"`
	SlipEnabled   *bool    `json:"slip_enabled,omitempty"`
	SlipGain      *float64 `json:"slip_gain,omitempty"`
	SlipMaxDeg    *float64 `json:"slip_max_deg,omitempty"`

	// Ingest params
	WatchInterval *string `json:"watch_interval,omitempty"` // duration string like "5s"
	BakeWorkers   *int    `json:"bake_workers,omitempty"`
}

// Helper functions to create pointers
func ptrFloat64(v float64) *float64 { return &v }
func ptrBool(v bool) *bool          { return &v }
func ptrString(v string) *string    { return &v }
func ptrInt(v int) *int             { return &v }

// EmptyConfig returns a Config with all fields set to nil. The Get* methods
// provide fallback defaults for any fields left unset.
func EmptyConfig() *Config {
	return &Config{}
}

// LoadConfig loads a Config from a JSON file.
// The file is validated to ensure it has a .json extension and is under the max file size.
func LoadConfig(path string) (*Config, error) {
	// Validate the config file path.
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	// Cap config files at 1MB.
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

	cfg := EmptyConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks that the configuration values are valid.
func (c *Config) Validate() error {
	if c.DisplayUnits != nil && !units.IsValid(*c.DisplayUnits) {
		return fmt.Errorf("display_units must be one of %s, got %q", units.GetValidUnitsString(), *c.DisplayUnits)
	}

	if c.SourceUnits != nil {
		if _, ok := units.ParseSystem(*c.SourceUnits); !ok {
			return fmt.Errorf("source_units must be metric or imperial, got %q", *c.SourceUnits)
		}
	}

	if c.DefaultFPS != nil && *c.DefaultFPS <= 0 {
		return fmt.Errorf("default_fps must be positive, got %f", *c.DefaultFPS)
	}

	if c.InputMode != nil {
		if _, err := edr.ParseInputMode(*c.InputMode); err != nil {
			return fmt.Errorf("invalid input_mode: %w", err)
		}
	}

	if c.WheelbaseM != nil && *c.WheelbaseM <= 0 {
		return fmt.Errorf("wheelbase_m must be positive, got %f", *c.WheelbaseM)
	}

	if c.SteeringRatio != nil && *c.SteeringRatio <= 0 {
		return fmt.Errorf("steering_ratio must be positive, got %f", *c.SteeringRatio)
	}

	if c.SlipMaxDeg != nil && *c.SlipMaxDeg < 0 {
		return fmt.Errorf("slip_max_deg must be non-negative, got %f", *c.SlipMaxDeg)
	}

	if c.WatchInterval != nil && *c.WatchInterval != "" {
		if _, err := time.ParseDuration(*c.WatchInterval); err != nil {
			return fmt.Errorf("invalid watch_interval '%s': %w", *c.WatchInterval, err)
		}
	}

	if c.BakeWorkers != nil && *c.BakeWorkers < 1 {
		return fmt.Errorf("bake_workers must be at least 1, got %d", *c.BakeWorkers)
	}

	return nil
}

// GetDisplayUnits returns the display_units value or the default.
func (c *Config) GetDisplayUnits() string {
	if c.DisplayUnits == nil {
		return units.MPS // default: database units
	}
	return *c.DisplayUnits
}

// GetSourceUnits returns the source_units value or the default.
func (c *Config) GetSourceUnits() units.System {
	if c.SourceUnits == nil {
		return units.SystemMetric
	}
	sys, ok := units.ParseSystem(*c.SourceUnits)
	if !ok {
		return units.SystemMetric
	}
	return sys
}

// GetDefaultFPS returns the default_fps value or the default.
func (c *Config) GetDefaultFPS() float64 {
	if c.DefaultFPS == nil {
		return 24.0 // default: video frame rate
	}
	return *c.DefaultFPS
}

// GetPreRoll returns the pre_roll value or the default.
func (c *Config) GetPreRoll() bool {
	if c.PreRoll == nil {
		return false
	}
	return *c.PreRoll
}

// GetStrict returns the strict value or the default.
func (c *Config) GetStrict() bool {
	if c.Strict == nil {
		return false // default: lenient, matches already-processed datasets
	}
	return *c.Strict
}

// GetInputMode returns the input_mode value or the default.
func (c *Config) GetInputMode() edr.InputMode {
	if c.InputMode == nil {
		return edr.InputYawRate
	}
	mode, err := edr.ParseInputMode(*c.InputMode)
	if err != nil {
		return edr.InputYawRate
	}
	return mode
}

// GetSteeringParams returns the bicycle-model geometry.
func (c *Config) GetSteeringParams() edr.SteeringParams {
	p := edr.DefaultSteeringParams()
	if c.WheelbaseM != nil {
		p.WheelbaseM = *c.WheelbaseM
	}
	if c.SteeringRatio != nil {
		p.SteeringRatio = *c.SteeringRatio
	}
	return p
}

// GetSlipEnabled returns the slip_enabled value or the default.
func (c *Config) GetSlipEnabled() bool {
	if c.SlipEnabled == nil {
		return false
	}
	return *c.SlipEnabled
}

// GetSlipParams returns the sideslip estimator tuning.
func (c *Config) GetSlipParams() edr.SlipParams {
	p := edr.DefaultSlipParams()
	if c.WheelbaseM != nil {
		p.WheelbaseM = *c.WheelbaseM
	}
	if c.SlipGain != nil {
		p.Gain = *c.SlipGain
	}
	if c.SlipMaxDeg != nil {
		p.MaxDeg = *c.SlipMaxDeg
	}
	return p
}

// GetWatchInterval parses and returns the WatchInterval as a time.Duration.
func (c *Config) GetWatchInterval() time.Duration {
	if c.WatchInterval == nil || *c.WatchInterval == "" {
		return 5 * time.Second // default
	}
	d, err := time.ParseDuration(*c.WatchInterval)
	if err != nil {
		return 5 * time.Second // default on parse error
	}
	return d
}

// GetBakeWorkers returns the bake_workers value or the default.
func (c *Config) GetBakeWorkers() int {
	if c.BakeWorkers == nil {
		return 4
	}
	return *c.BakeWorkers
}
