package agent

import (
	"fmt"
	"math"

	"github.com/hupe1980/awarenode/config"
	"github.com/hupe1980/awarenode/core"
	"github.com/hupe1980/awarenode/internal/util"
	"github.com/hupe1980/awarenode/logging"
)

// PowerAgentOptions configures a PowerAgent.
type PowerAgentOptions struct {
	// Name overrides the agent name (default "power").
	Name string
	// Battery describes the battery and the coulomb counter.
	Battery config.BatteryConfig
	// Depleted is invoked once per battery exhaustion event. Optional.
	Depleted core.DepletionFunc
	// Logger receives diagnostics. Optional.
	Logger logging.Logger
}

// batteryModel tracks charge bookkeeping. Charge readings are cumulative;
// delta is the consumption of the current cycle.
type batteryModel struct {
	total          float64
	remaining      float64
	charge         float64
	previousCharge float64
	delta          float64
	previousDelta  float64
	depleted       bool
}

// PowerAgent models battery depletion. Each cycle it measures the charge
// drawn, compares it against the fused prediction to produce the feedback
// residual, predicts the remaining life in activations and derives the power
// index from the margin against the expected lifetime.
type PowerAgent struct {
	BaseAgent
	env        core.PowerEnvironment
	cfg        config.BatteryConfig
	onDepleted core.DepletionFunc
	battery    batteryModel
	avg        *util.MovingAverage
	feedback   core.PowerEstimate
	life       float64
	powerIndex int
}

// NewPowerAgent creates a power agent bound to env with a full battery.
func NewPowerAgent(env core.PowerEnvironment, optFns ...func(o *PowerAgentOptions)) (*PowerAgent, error) {
	opts := PowerAgentOptions{
		Name:    "power",
		Battery: config.Default().Battery,
		Logger:  logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	if err := requireEnvironment("power agent", env); err != nil {
		return nil, err
	}
	if err := opts.Battery.Validate(); err != nil {
		return nil, fmt.Errorf("power agent: %w", err)
	}

	a := &PowerAgent{
		BaseAgent:  NewBaseAgent(opts.Name, opts.Logger, nil),
		env:        env,
		cfg:        opts.Battery,
		onDepleted: opts.Depleted,
		avg:        util.NewMovingAverage(opts.Battery.AverageWindow),
		feedback:   core.PowerEstimate{Covariance: opts.Battery.FeedbackCovariance},
	}
	a.SetDescription("Models battery depletion and remaining life")
	a.SetBatteryCharge(opts.Battery.TotalCharge())
	return a, nil
}

// Observe reads the coulomb counter, updates the battery model, computes the
// feedback residual and the power index.
func (a *PowerAgent) Observe(io *core.PowerInterface) {
	var obs core.PowerObservation
	a.env.Observe(&obs)

	a.learn(&obs)
	a.reflect(io)
	a.reason(io)
}

// Act commits the cycle's charge values and reports the assessment.
func (a *PowerAgent) Act(_ *core.PowerInterface) {
	a.update()
	acts := core.PowerActuation{RemainingCharge: a.battery.remaining, PowerIndex: a.powerIndex}
	a.env.Act(&acts)
}

// Oda runs Observe followed by Act.
func (a *PowerAgent) Oda(io *core.PowerInterface) {
	a.Observe(io)
	a.Act(io)
}

func (a *PowerAgent) learn(obs *core.PowerObservation) {
	b := &a.battery
	b.charge = obs.Battery.Charge
	b.delta = b.charge - b.previousCharge

	switch {
	case b.delta < 0:
		a.logger.Warn("Charge counter went backwards", "charge", b.charge, "previous_charge", b.previousCharge)
	case b.remaining > b.delta:
		b.remaining -= b.delta
	default:
		b.remaining = 0
		if !b.depleted {
			b.depleted = true
			a.logger.Warn("Battery depleted", "charge", b.charge, "total", b.total)
			if a.onDepleted != nil {
				a.onDepleted()
			}
		}
	}

	a.avg.Add(b.charge)
}

func (a *PowerAgent) reflect(io *core.PowerInterface) {
	a.feedback = core.PowerEstimate{
		Power:      a.battery.delta - io.Inputs.PredictedChargeDelta,
		Covariance: a.cfg.FeedbackCovariance,
	}
	a.initialized = true
	io.Outputs.PowerFeedback = a.feedback
}

func (a *PowerAgent) reason(io *core.PowerInterface) {
	expected := float64(io.Inputs.ExpectedActivations)
	if a.battery.delta > 0 {
		a.life = math.Floor(a.battery.remaining / a.battery.delta)
		a.powerIndex = util.SaturateIndex(a.life-expected, core.IndexMin, core.IndexMax)
	} else {
		a.life = math.Inf(1)
		a.powerIndex = core.IndexMax
	}
	io.Outputs.PowerIndex = a.powerIndex
}

// update commits this cycle's readings so the next delta is computed against
// settled values.
func (a *PowerAgent) update() {
	a.battery.previousCharge = a.battery.charge
	a.battery.previousDelta = a.battery.delta
}

// SetBatteryCharge resets the battery to a full charge of c. It re-arms the
// depletion signal. Intended for simulation and tests.
func (a *PowerAgent) SetBatteryCharge(c float64) {
	a.battery.total = c
	a.battery.remaining = c
	a.battery.depleted = false
}

// RemainingCharge returns the remaining battery charge.
func (a *PowerAgent) RemainingCharge() float64 { return a.battery.remaining }

// RemainingChargePercent returns the remaining charge as a percentage of the
// total charge.
func (a *PowerAgent) RemainingChargePercent() float64 {
	if a.battery.total <= 0 {
		return 0
	}
	return a.battery.remaining / a.battery.total * 100
}

// Feedback returns the last feedback residual estimate.
func (a *PowerAgent) Feedback() core.PowerEstimate { return a.feedback }

// ChargeDelta returns the charge drawn during the last cycle.
func (a *PowerAgent) ChargeDelta() float64 { return a.battery.delta }

// PreviousChargeDelta returns the committed delta of the previous cycle.
func (a *PowerAgent) PreviousChargeDelta() float64 { return a.battery.previousDelta }

// AverageCharge returns the moving average of the raw charge readings.
func (a *PowerAgent) AverageCharge() float64 { return a.avg.Value() }

// PredictedLife returns the predicted remaining life in activations. It is
// +Inf when no consumption was measured.
func (a *PowerAgent) PredictedLife() float64 { return a.life }

// PowerIndex returns the power index computed by the last Reason.
func (a *PowerAgent) PowerIndex() int { return a.powerIndex }

// Depleted reports whether the battery is exhausted.
func (a *PowerAgent) Depleted() bool { return a.battery.depleted }

var _ core.Agent[core.PowerInterface] = (*PowerAgent)(nil)
