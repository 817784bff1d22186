package agent

import (
	"fmt"
	"math"

	"github.com/hupe1980/awarenode/config"
	"github.com/hupe1980/awarenode/core"
	"github.com/hupe1980/awarenode/logging"
)

// SensorAgentOptions configures a SensorAgent.
type SensorAgentOptions struct {
	// Name overrides the agent name (default "sensor").
	Name string
	// Table is the sensor's power-cost table.
	Table config.ModeTable
	// Alarm receives AlarmMeasurementError. Optional.
	Alarm core.AlarmFunc
	// Logger receives diagnostics. Optional.
	Logger logging.Logger
}

// SensorAgent models a sensor with several power modes. It reports the
// measured data together with the predicted power of the active mode and is
// itself the core.PowerSource for that mode's estimate.
type SensorAgent struct {
	BaseAgent
	env   core.SensorEnvironment
	modes *modeTable
	data  float64
}

// NewSensorAgent creates a sensor agent bound to env.
func NewSensorAgent(env core.SensorEnvironment, optFns ...func(o *SensorAgentOptions)) (*SensorAgent, error) {
	opts := SensorAgentOptions{
		Name:   "sensor",
		Table:  config.Default().Sensor,
		Logger: logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	if err := requireEnvironment("sensor agent", env); err != nil {
		return nil, err
	}
	if err := opts.Table.Validate("sensor"); err != nil {
		return nil, fmt.Errorf("sensor agent: %w", err)
	}

	a := &SensorAgent{
		BaseAgent: NewBaseAgent(opts.Name, opts.Logger, opts.Alarm),
		env:       env,
		modes:     newModeTable(opts.Table),
	}
	a.SetDescription("Models the sensing subsystem and its power modes")
	return a, nil
}

// Observe reads the sensor and publishes data, predicted power and increment.
func (a *SensorAgent) Observe(io *core.SensorInterface) {
	var obs core.SensorObservation
	a.env.Observe(&obs)

	a.learn(&obs, io.Inputs)
	a.reflect()
	a.reason(io)
}

// Act programs the active mode into the sensor.
func (a *SensorAgent) Act(_ *core.SensorInterface) {
	acts := core.SensorActuation{Mode: a.modes.current}
	a.env.Act(&acts)
}

// Oda runs Observe followed by Act.
func (a *SensorAgent) Oda(io *core.SensorInterface) {
	a.Observe(io)
	a.Act(io)
}

func (a *SensorAgent) learn(obs *core.SensorObservation, in core.SensorInputs) {
	a.data = obs.Data
	a.selectMode(in)
}

func (a *SensorAgent) reflect() {
	if math.IsNaN(a.data) {
		a.raise(core.AlarmMeasurementError)
	}
	a.initialized = true
}

func (a *SensorAgent) reason(io *core.SensorInterface) {
	io.Outputs = core.SensorOutputs{
		MeasuredData:            a.data,
		PredictedPower:          a.modes.estimate(),
		PredictedPowerIncrement: a.modes.takeIncrement(),
	}
}

// selectMode picks the cheapest mode meeting the accuracy target within the
// power target. Zero targets keep the current mode.
func (a *SensorAgent) selectMode(in core.SensorInputs) {
	if in.AccuracyTarget <= 0 && in.PowerTarget <= 0 {
		return
	}
	best := -1
	for i, m := range a.modes.modes {
		p := a.modes.estimates[i].Power
		if in.AccuracyTarget > 0 && m.Accuracy < in.AccuracyTarget {
			continue
		}
		if in.PowerTarget > 0 && p > in.PowerTarget {
			continue
		}
		if best < 0 || p < a.modes.estimates[best].Power {
			best = i
		}
	}
	if best < 0 {
		a.logger.Debug("No sensor mode meets targets", "accuracy_target", in.AccuracyTarget, "power_target", in.PowerTarget)
		return
	}
	if best != a.modes.current {
		_ = a.SetMode(best)
	}
}

// SetMode switches the sensor mode. The power difference is reported as an
// increment by the next Reason.
func (a *SensorAgent) SetMode(mode int) error {
	prev := a.modes.current
	if err := a.modes.set(mode); err != nil {
		return fmt.Errorf("sensor agent: %w", err)
	}
	a.logger.Debug("Sensor mode changed", "from", a.modes.name(prev), "to", a.modes.name(mode))
	return nil
}

// Mode returns the active mode index.
func (a *SensorAgent) Mode() int { return a.modes.current }

// Data returns the last measurement.
func (a *SensorAgent) Data() float64 { return a.data }

// Estimate implements core.PowerSource for the active mode.
func (a *SensorAgent) Estimate() core.PowerEstimate { return a.modes.estimate() }

// ApplyCorrection implements core.PowerSource for the active mode.
func (a *SensorAgent) ApplyCorrection(gain, residual float64) { a.modes.correct(gain, residual) }

var (
	_ core.Agent[core.SensorInterface] = (*SensorAgent)(nil)
	_ core.PowerSource                 = (*SensorAgent)(nil)
)
