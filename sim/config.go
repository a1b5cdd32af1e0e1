package sim

import (
	"fmt"
	"os"

	filter "github.com/scenekf/go-scenekf"
	"gopkg.in/yaml.v3"
)

// Config is scene simulation configuration
type Config struct {
	// Slots is the number of simulated object slots
	Slots int `yaml:"slots"`
	// Steps is the number of simulation steps
	Steps int `yaml:"steps"`
	// Seed seeds all simulation randomness
	Seed uint64 `yaml:"seed"`
	// Width and Height bound initial box positions
	Width  float64 `yaml:"width"`
	Height float64 `yaml:"height"`
	// Camera configures scene motion
	Camera CameraConfig `yaml:"camera"`
	// Detector configures measurement generation
	Detector DetectorConfig `yaml:"detector"`
	// Filter configures filter noise variances
	Filter FilterConfig `yaml:"filter"`
}

// CameraConfig configures the camera motion shifting the whole scene every step
type CameraConfig struct {
	// DX and DY is the nominal per step shift
	DX float64 `yaml:"dx"`
	DY float64 `yaml:"dy"`
	// Jitter is standard deviation of the per step shift
	Jitter float64 `yaml:"jitter"`
}

// DetectorConfig configures simulated detections
type DetectorConfig struct {
	// Std is standard deviation of detection noise of every slot variable
	Std float64 `yaml:"std"`
}

// FilterConfig configures filter variances. Unset variances default to 1.
type FilterConfig struct {
	StateVar   *float64 `yaml:"state_var"`
	ProcessVar *float64 `yaml:"process_var"`
	MeasVar    *float64 `yaml:"meas_var"`
}

// StateVariance returns initial state variance
func (f FilterConfig) StateVariance() filter.Var { return variance(f.StateVar) }

// ProcessVariance returns process noise variance
func (f FilterConfig) ProcessVariance() filter.Var { return variance(f.ProcessVar) }

// MeasVariance returns measurement noise variance
func (f FilterConfig) MeasVariance() filter.Var { return variance(f.MeasVar) }

func variance(v *float64) filter.Var {
	if v == nil {
		return filter.Var{}
	}

	return filter.Variance(*v)
}

// DefaultConfig returns default simulation configuration
func DefaultConfig() Config {
	return Config{
		Slots:  10,
		Steps:  50,
		Seed:   1,
		Width:  640,
		Height: 480,
		Camera: CameraConfig{
			DX:     2.0,
			DY:     -1.0,
			Jitter: 0.5,
		},
		Detector: DetectorConfig{
			Std: 2.0,
		},
	}
}

// LoadConfig reads YAML configuration from path on top of DefaultConfig and validates it.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// Validate returns error if c is not a valid configuration
func (c Config) Validate() error {
	if c.Slots <= 0 {
		return fmt.Errorf("invalid slot count: %d", c.Slots)
	}

	if c.Steps <= 0 {
		return fmt.Errorf("invalid step count: %d", c.Steps)
	}

	if c.Width <= 0 || c.Height <= 0 {
		return fmt.Errorf("invalid scene size: %v x %v", c.Width, c.Height)
	}

	if c.Camera.Jitter < 0 {
		return fmt.Errorf("invalid camera jitter: %v", c.Camera.Jitter)
	}

	if c.Detector.Std < 0 {
		return fmt.Errorf("invalid detector noise: %v", c.Detector.Std)
	}

	for name, v := range map[string]*float64{
		"state_var":   c.Filter.StateVar,
		"process_var": c.Filter.ProcessVar,
		"meas_var":    c.Filter.MeasVar,
	} {
		if v != nil && *v < 0 {
			return fmt.Errorf("invalid %s: %v", name, *v)
		}
	}

	return nil
}
