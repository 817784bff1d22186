package agent

import (
	"fmt"
	"time"

	"github.com/hupe1980/awarenode/config"
	"github.com/hupe1980/awarenode/core"
	"github.com/hupe1980/awarenode/internal/util"
	"github.com/hupe1980/awarenode/logging"
)

// TriggerAgentOptions configures a TriggerAgent.
type TriggerAgentOptions struct {
	// Name overrides the agent name (default "trigger").
	Name string
	// Config is the sampling period table.
	Config config.TriggerConfig
	// Alarm receives AlarmSamplingSaturated. Optional.
	Alarm core.AlarmFunc
	// Logger receives diagnostics. Optional.
	Logger logging.Logger
}

// TriggerAgent models the sampling timer as an index into a monotonic period
// table. Index MaxSampling is the shortest period, MinSampling the longest.
//
// A sampling target is a one-shot command: the index moves by
// trunc(|target|/UpdateStep)+1 steps, towards shorter periods for a
// non-negative target and longer periods for a negative one, and the target
// is consumed.
type TriggerAgent struct {
	BaseAgent
	env    core.TriggerEnvironment
	cfg    config.TriggerConfig
	index  int
	target int
}

// NewTriggerAgent creates a trigger agent bound to env.
func NewTriggerAgent(env core.TriggerEnvironment, optFns ...func(o *TriggerAgentOptions)) (*TriggerAgent, error) {
	opts := TriggerAgentOptions{
		Name:   "trigger",
		Config: config.Default().Trigger,
		Logger: logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	if err := requireEnvironment("trigger agent", env); err != nil {
		return nil, err
	}
	if err := opts.Config.Validate(); err != nil {
		return nil, fmt.Errorf("trigger agent: %w", err)
	}

	cfg := opts.Config
	cfg.Periods = append([]time.Duration(nil), opts.Config.Periods...)

	a := &TriggerAgent{
		BaseAgent: NewBaseAgent(opts.Name, opts.Logger, opts.Alarm),
		env:       env,
		cfg:       cfg,
		index:     cfg.Default,
	}
	a.SetDescription("Models the sampling timer periodicity")
	return a, nil
}

// Observe consumes the sampling target and publishes the resulting period.
func (a *TriggerAgent) Observe(io *core.TriggerInterface) {
	var obs core.TriggerObservation
	a.env.Observe(&obs)

	a.learn(io)
	a.initialized = true
	a.reason(io)
}

// Act programs the current period into the timer.
func (a *TriggerAgent) Act(_ *core.TriggerInterface) {
	acts := core.TriggerActuation{Periodicity: a.Periodicity()}
	a.env.Act(&acts)
}

// Oda runs Observe followed by Act.
func (a *TriggerAgent) Oda(io *core.TriggerInterface) {
	a.Observe(io)
	a.Act(io)
}

func (a *TriggerAgent) learn(io *core.TriggerInterface) {
	a.target = util.Saturate(io.Inputs.SamplingTarget, core.IndexMin, core.IndexMax)
}

func (a *TriggerAgent) reason(io *core.TriggerInterface) {
	if a.target != 0 {
		a.apply(a.target)
		a.target = 0
		io.Inputs.SamplingTarget = 0
	}
	io.Outputs.Periodicity = a.Periodicity()
}

func (a *TriggerAgent) apply(target int) {
	step := Step(target, a.cfg.UpdateStep)
	next := util.Saturate(a.index+step, a.cfg.MaxSampling, a.cfg.MinSampling)
	if next == a.index {
		a.raise(core.AlarmSamplingSaturated)
		return
	}
	a.logger.Debug("Sampling period changed",
		"target", target,
		"from", a.cfg.Periods[a.index],
		"to", a.cfg.Periods[next],
	)
	a.index = next
}

// Step returns the signed index step for a sampling target: positive targets
// move towards shorter periods (negative step).
func Step(target, updateStep int) int {
	mag := target
	if mag < 0 {
		mag = -mag
	}
	step := mag/updateStep + 1
	if target >= 0 {
		return -step
	}
	return step
}

// Index returns the current period index.
func (a *TriggerAgent) Index() int { return a.index }

// Periodicity returns the current sampling period.
func (a *TriggerAgent) Periodicity() time.Duration { return a.cfg.Periods[a.index] }

var _ core.Agent[core.TriggerInterface] = (*TriggerAgent)(nil)
