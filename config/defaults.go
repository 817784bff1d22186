package config

import (
	"time"

	"github.com/hupe1980/awarenode/core"
)

// Sensor and radio mode indices of the default tables.
const (
	LowPowerMode = iota
	StandardMode
	HighPowerMode
)

// DefaultExpectedLife is the lifetime goal of a node: 100 days.
const DefaultExpectedLife = 100 * 24 * time.Hour

// Default returns the factory configuration.
func Default() *Config {
	return &Config{
		Node: NodeConfig{
			ExpectedLife: DefaultExpectedLife,
			BasePower:    core.PowerEstimate{Power: 10, Covariance: 10},
			IdlePower:    core.PowerEstimate{Power: 0, Covariance: 0.1},
		},
		Sensor: ModeTable{
			Default: StandardMode,
			Modes: []Mode{
				{Name: "low", Power: 5, Covariance: 0.1, Accuracy: 5},
				{Name: "standard", Power: 10, Covariance: 0.1, Accuracy: 10},
				{Name: "high", Power: 15, Covariance: 0.1, Accuracy: 15},
			},
		},
		Radio: ModeTable{
			Default: StandardMode,
			Modes: []Mode{
				{Name: "low", Power: 50, Covariance: 0.1, Accuracy: 5},
				{Name: "standard", Power: 100, Covariance: 0.1, Accuracy: 10},
				{Name: "high", Power: 150, Covariance: 0.1, Accuracy: 15},
			},
		},
		Trigger: TriggerConfig{
			Default:     5,
			MaxSampling: 0,
			MinSampling: 11,
			UpdateStep:  25,
			Periods: []time.Duration{
				time.Second,
				5 * time.Second,
				15 * time.Second,
				30 * time.Second,
				time.Minute,
				5 * time.Minute,
				15 * time.Minute,
				30 * time.Minute,
				time.Hour,
				6 * time.Hour,
				12 * time.Hour,
				24 * time.Hour,
			},
		},
		App: AppConfig{
			MaxRate:          1.0,
			MinRateReference: 0.1,
			RangeLow:         0,
			RangeHigh:        100,
			Deviation:        10,
			AverageWindow:    10,
		},
		Battery: BatteryConfig{
			Capacity:           5000,
			EffectiveCharge:    0.7,
			FeedbackCovariance: 0.01,
			AverageWindow:      5,
		},
		Runner: RunnerConfig{
			MaxCycles:       0,
			TimeScale:       0,
			StopOnDepletion: true,
		},
		Logging: LoggingConfig{
			Level:   "info",
			Format:  "text",
			Backend: "slog",
		},
	}
}
