// Package config holds the read-only configuration tables of a node: the
// power-cost tables per sensor and radio mode, the sampling period table,
// application thresholds, the battery model and runner settings. A Config is
// loaded from YAML and always starts from Default, so a file only needs the
// values it overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/hupe1980/awarenode/core"
)

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid configuration")

// Config is the full node configuration.
type Config struct {
	Node    NodeConfig    `yaml:"node"`
	Sensor  ModeTable     `yaml:"sensor"`
	Radio   ModeTable     `yaml:"radio"`
	Trigger TriggerConfig `yaml:"trigger"`
	App     AppConfig     `yaml:"app"`
	Battery BatteryConfig `yaml:"battery"`
	Runner  RunnerConfig  `yaml:"runner"`
	Logging LoggingConfig `yaml:"logging"`
}

// NodeConfig holds the static costs and the lifetime goal of the node.
type NodeConfig struct {
	ExpectedLife time.Duration      `yaml:"expected_life"`
	BasePower    core.PowerEstimate `yaml:"base_power"`
	IdlePower    core.PowerEstimate `yaml:"idle_power"`
}

// Mode is one row of a power-cost table.
type Mode struct {
	Name       string  `yaml:"name"`
	Power      float64 `yaml:"power"`
	Covariance float64 `yaml:"covariance"`
	Accuracy   float64 `yaml:"accuracy"`
}

// Estimate returns the mode's power estimate.
func (m Mode) Estimate() core.PowerEstimate {
	return core.PowerEstimate{Power: m.Power, Covariance: m.Covariance}
}

// ModeTable maps a configuration index to its power cost.
type ModeTable struct {
	Default int    `yaml:"default"`
	Modes   []Mode `yaml:"modes"`
}

// TriggerConfig is the sampling period table and its stepping rules. Index 0
// is the shortest period (maximum sampling).
type TriggerConfig struct {
	Default     int             `yaml:"default"`
	MaxSampling int             `yaml:"max_sampling"`
	MinSampling int             `yaml:"min_sampling"`
	UpdateStep  int             `yaml:"update_step"`
	Periods     []time.Duration `yaml:"periods"`
}

// AppConfig holds the thresholds of the application's data-quality checks.
type AppConfig struct {
	MaxRate          float64 `yaml:"max_rate"`
	MinRateReference float64 `yaml:"min_rate_reference"`
	RangeLow         float64 `yaml:"range_low"`
	RangeHigh        float64 `yaml:"range_high"`
	Deviation        float64 `yaml:"deviation"`
	AverageWindow    int     `yaml:"average_window"`
}

// BatteryConfig describes the battery and the coulomb counter.
type BatteryConfig struct {
	Capacity           float64 `yaml:"capacity"`
	EffectiveCharge    float64 `yaml:"effective_charge"`
	FeedbackCovariance float64 `yaml:"feedback_covariance"`
	AverageWindow      int     `yaml:"average_window"`
}

// TotalCharge is the usable charge of a full battery.
func (b BatteryConfig) TotalCharge() float64 { return b.Capacity * b.EffectiveCharge }

// RunnerConfig controls the cycle scheduler.
type RunnerConfig struct {
	MaxCycles       int     `yaml:"max_cycles"`
	TimeScale       float64 `yaml:"time_scale"`
	StopOnDepletion bool    `yaml:"stop_on_depletion"`
}

// LoggingConfig selects the log backend.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	Format  string `yaml:"format"`
	Backend string `yaml:"backend"`
}

// Load reads and validates a YAML configuration file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes YAML on top of Default and validates the result.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Marshal encodes the configuration as YAML.
func (c *Config) Marshal() ([]byte, error) {
	return yaml.Marshal(c)
}

// Validate checks structural constraints the agents rely on.
func (c *Config) Validate() error {
	var errs []error
	if c.Node.ExpectedLife < 0 {
		errs = append(errs, invalid("node.expected_life", "must not be negative"))
	}
	errs = append(errs,
		c.Sensor.Validate("sensor"),
		c.Radio.Validate("radio"),
		c.Trigger.Validate(),
		c.App.Validate(),
		c.Battery.Validate(),
	)
	if c.Runner.TimeScale < 0 {
		errs = append(errs, invalid("runner.time_scale", "must not be negative"))
	}
	return errors.Join(errs...)
}

// Validate checks the table; path prefixes field names in errors.
func (t ModeTable) Validate(path string) error {
	var errs []error
	if len(t.Modes) == 0 {
		return invalid(path+".modes", "at least one mode is required")
	}
	if t.Default < 0 || t.Default >= len(t.Modes) {
		errs = append(errs, invalid(path+".default", "index %d out of range [0,%d)", t.Default, len(t.Modes)))
	}
	for i, m := range t.Modes {
		if m.Covariance < 0 {
			errs = append(errs, invalid(fmt.Sprintf("%s.modes[%d].covariance", path, i), "must not be negative"))
		}
	}
	return errors.Join(errs...)
}

// Validate checks the period table and its bounds.
func (t TriggerConfig) Validate() error {
	var errs []error
	n := len(t.Periods)
	if n == 0 {
		return invalid("trigger.periods", "at least one period is required")
	}
	for i, p := range t.Periods {
		if p <= 0 {
			errs = append(errs, invalid(fmt.Sprintf("trigger.periods[%d]", i), "must be positive"))
		}
	}
	if t.MaxSampling < 0 || t.MinSampling >= n || t.MaxSampling > t.MinSampling {
		errs = append(errs, invalid("trigger", "sampling bounds [%d,%d] must lie within [0,%d)", t.MaxSampling, t.MinSampling, n))
	}
	if t.Default < t.MaxSampling || t.Default > t.MinSampling {
		errs = append(errs, invalid("trigger.default", "index %d outside sampling bounds", t.Default))
	}
	if t.UpdateStep <= 0 {
		errs = append(errs, invalid("trigger.update_step", "must be positive"))
	}
	return errors.Join(errs...)
}

// Validate checks the application thresholds.
func (a AppConfig) Validate() error {
	var errs []error
	if a.MinRateReference <= 0 {
		errs = append(errs, invalid("app.min_rate_reference", "must be positive"))
	}
	if a.RangeLow > a.RangeHigh {
		errs = append(errs, invalid("app", "range_low %v exceeds range_high %v", a.RangeLow, a.RangeHigh))
	}
	if a.Deviation < 0 {
		errs = append(errs, invalid("app.deviation", "must not be negative"))
	}
	if a.AverageWindow <= 0 {
		errs = append(errs, invalid("app.average_window", "must be positive"))
	}
	return errors.Join(errs...)
}

// Validate checks the battery model.
func (b BatteryConfig) Validate() error {
	var errs []error
	if b.Capacity <= 0 {
		errs = append(errs, invalid("battery.capacity", "must be positive"))
	}
	if b.EffectiveCharge <= 0 || b.EffectiveCharge > 1 {
		errs = append(errs, invalid("battery.effective_charge", "must be in (0,1]"))
	}
	if b.FeedbackCovariance < 0 {
		errs = append(errs, invalid("battery.feedback_covariance", "must not be negative"))
	}
	if b.AverageWindow <= 0 {
		errs = append(errs, invalid("battery.average_window", "must be positive"))
	}
	return errors.Join(errs...)
}

func invalid(field, format string, args ...any) error {
	return fmt.Errorf("%w: %s: %s", ErrInvalid, field, fmt.Sprintf(format, args...))
}
