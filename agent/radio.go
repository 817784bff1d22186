package agent

import (
	"fmt"

	"github.com/hupe1980/awarenode/config"
	"github.com/hupe1980/awarenode/core"
	"github.com/hupe1980/awarenode/logging"
)

// RadioAgentOptions configures a RadioAgent.
type RadioAgentOptions struct {
	// Name overrides the agent name (default "radio").
	Name string
	// Table is the radio's power-cost table.
	Table config.ModeTable
	// Alarm receives AlarmInvalidMode. Optional.
	Alarm core.AlarmFunc
	// Logger receives diagnostics. Optional.
	Logger logging.Logger
}

// RadioAgent models the radio link. The environment reports configuration
// changes; the agent tracks the active mode's power estimate and is the
// core.PowerSource for it.
type RadioAgent struct {
	BaseAgent
	env   core.RadioEnvironment
	modes *modeTable
}

// NewRadioAgent creates a radio agent bound to env.
func NewRadioAgent(env core.RadioEnvironment, optFns ...func(o *RadioAgentOptions)) (*RadioAgent, error) {
	opts := RadioAgentOptions{
		Name:   "radio",
		Table:  config.Default().Radio,
		Logger: logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	if err := requireEnvironment("radio agent", env); err != nil {
		return nil, err
	}
	if err := opts.Table.Validate("radio"); err != nil {
		return nil, fmt.Errorf("radio agent: %w", err)
	}

	a := &RadioAgent{
		BaseAgent: NewBaseAgent(opts.Name, opts.Logger, opts.Alarm),
		env:       env,
		modes:     newModeTable(opts.Table),
	}
	a.SetDescription("Models the radio link and its power modes")
	return a, nil
}

// Observe hands the pending payload to the environment, applies any reported
// configuration change and publishes predicted power and increment.
func (a *RadioAgent) Observe(io *core.RadioInterface) {
	obs := core.RadioObservation{Data: io.Inputs.Data, Mode: a.modes.current}
	a.env.Observe(&obs)

	a.learn(&obs)
	a.initialized = true
	a.reason(io)
}

// Act transmits the payload.
func (a *RadioAgent) Act(io *core.RadioInterface) {
	acts := core.RadioActuation{Data: io.Inputs.Data}
	a.env.Act(&acts)
}

// Oda runs Observe followed by Act.
func (a *RadioAgent) Oda(io *core.RadioInterface) {
	a.Observe(io)
	a.Act(io)
}

func (a *RadioAgent) learn(obs *core.RadioObservation) {
	if !obs.ConfigChange || obs.Mode == a.modes.current {
		return
	}
	if err := a.SetMode(obs.Mode); err != nil {
		a.logger.Warn("Ignoring radio configuration change", "error", err)
		a.raise(core.AlarmInvalidMode)
	}
}

func (a *RadioAgent) reason(io *core.RadioInterface) {
	io.Outputs = core.RadioOutputs{
		PredictedPower:          a.modes.estimate(),
		PredictedPowerIncrement: a.modes.takeIncrement(),
	}
}

// SetMode switches the radio mode. The power difference is reported as an
// increment by the next Reason.
func (a *RadioAgent) SetMode(mode int) error {
	prev := a.modes.current
	if err := a.modes.set(mode); err != nil {
		return fmt.Errorf("radio agent: %w", err)
	}
	a.logger.Debug("Radio mode changed", "from", a.modes.name(prev), "to", a.modes.name(mode))
	return nil
}

// Mode returns the active mode index.
func (a *RadioAgent) Mode() int { return a.modes.current }

// Estimate implements core.PowerSource for the active mode.
func (a *RadioAgent) Estimate() core.PowerEstimate { return a.modes.estimate() }

// ApplyCorrection implements core.PowerSource for the active mode.
func (a *RadioAgent) ApplyCorrection(gain, residual float64) { a.modes.correct(gain, residual) }

var (
	_ core.Agent[core.RadioInterface] = (*RadioAgent)(nil)
	_ core.PowerSource                = (*RadioAgent)(nil)
)
