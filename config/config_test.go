package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault_IsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	assert.Len(t, cfg.Trigger.Periods, 12)
	assert.Equal(t, 5*time.Minute, cfg.Trigger.Periods[cfg.Trigger.Default])
	assert.Equal(t, 10.0, cfg.Sensor.Modes[cfg.Sensor.Default].Power)
	assert.Equal(t, 100.0, cfg.Radio.Modes[cfg.Radio.Default].Power)
	assert.InDelta(t, 3500.0, cfg.Battery.TotalCharge(), 1e-9)
}

func TestParse_OverridesOnTopOfDefaults(t *testing.T) {
	data := []byte(`
node:
  expected_life: 48h
trigger:
  default: 2
app:
  deviation: 2.5
radio:
  default: 0
  modes:
    - name: lora
      power: 40
      covariance: 0.2
`)
	cfg, err := Parse(data)
	require.NoError(t, err)

	assert.Equal(t, 48*time.Hour, cfg.Node.ExpectedLife)
	assert.Equal(t, 2, cfg.Trigger.Default)
	assert.Equal(t, 2.5, cfg.App.Deviation)
	require.Len(t, cfg.Radio.Modes, 1)
	assert.Equal(t, "lora", cfg.Radio.Modes[0].Name)

	// untouched sections keep their defaults
	assert.Equal(t, 10, cfg.App.AverageWindow)
	assert.Len(t, cfg.Sensor.Modes, 3)
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		yaml  string
		field string
	}{
		{"default mode out of range", "sensor:\n  default: 7\n", "sensor.default"},
		{"empty period table", "trigger:\n  periods: []\n", "trigger.periods"},
		{"zero period", "trigger:\n  periods: [1s, 0s]\n  default: 0\n  min_sampling: 1\n", "trigger.periods[1]"},
		{"zero rate reference", "app:\n  min_rate_reference: 0\n", "app.min_rate_reference"},
		{"effective charge above one", "battery:\n  effective_charge: 1.5\n", "battery.effective_charge"},
		{"negative covariance", "radio:\n  modes:\n    - power: 1\n      covariance: -1\n", "radio.modes[0].covariance"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalid)
			assert.Contains(t, err.Error(), tt.field)
		})
	}
}

func TestParse_Malformed(t *testing.T) {
	_, err := Parse([]byte("node: [unclosed"))
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrInvalid)
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "node.yaml")
	require.NoError(t, os.WriteFile(path, []byte("battery:\n  capacity: 1000\n"), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.InDelta(t, 700.0, cfg.Battery.TotalCharge(), 1e-9)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}

func TestMarshal_LoadsBack(t *testing.T) {
	cfg := Default()
	cfg.Trigger.Default = 3

	data, err := cfg.Marshal()
	require.NoError(t, err)
	assert.Contains(t, string(data), "expected_life: 2400h0m0s")

	back, err := Parse(data)
	require.NoError(t, err)
	assert.Equal(t, cfg, back)
}
