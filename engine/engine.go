package engine

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"gonum.org/v1/gonum/floats"

	"github.com/hupe1980/awarenode/agent"
	"github.com/hupe1980/awarenode/config"
	"github.com/hupe1980/awarenode/core"
	"github.com/hupe1980/awarenode/internal/util"
	"github.com/hupe1980/awarenode/logging"
)

// Environments binds the engine to the node's hardware. The four
// environments are required; alarm and depletion callbacks are optional.
type Environments struct {
	Sensor  core.SensorEnvironment
	Trigger core.TriggerEnvironment
	Radio   core.RadioEnvironment
	Power   core.PowerEnvironment

	SensorAlarm     core.AlarmFunc
	TriggerAlarm    core.AlarmFunc
	AppAlarm        core.AlarmFunc
	RadioAlarm      core.AlarmFunc
	BatteryDepleted core.DepletionFunc
}

// Options configures an Engine instance using the functional options pattern.
//
// Example:
//
//	eng, err := engine.New(envs, func(o *engine.Options) {
//	    o.Config = cfg
//	    o.Logger = logger
//	})
type Options struct {
	// Config holds every tunable of the node. Defaults to config.Default().
	Config *config.Config

	// Logger provides structured logging. Defaults to a NoOp logger.
	Logger logging.Logger

	// NodeID identifies the node in logs and telemetry. A random identifier
	// is generated when empty.
	NodeID string

	// Callbacks are registered before the first cycle.
	Callbacks []Callback
}

// model is the orchestrator's decision state.
type model struct {
	relevanceIndex          int
	powerIndex              int
	expectedLife            time.Duration
	expectedActivations     uint32
	predictedPower          float64
	predictedPowerIncrement float64
}

// Engine orchestrates the ODA agents of a sensing node.
//
// Each call to Cycle runs one decision cycle:
//  1. The application agent observes with the engine's relevance index as
//     its target.
//  2. The radio agent observes with the application's data as payload.
//  3. The power inputs are computed from the summed power predictions and
//     the power agent observes.
//  4. The relevance and power indices are copied into the engine model.
//  5. The power feedback residual is fused into the power sources.
//  6. The application, radio and power agents act.
//
// Concurrency Model:
//   - Cycle takes the write lock for its whole duration
//   - Accessors take the read lock and may run on any goroutine
//   - Callbacks run under the write lock and must only use their context
//
// A started cycle always completes. Only an invariant violation stops it: the
// violation is logged with its stack and re-panicked.
type Engine struct {
	mu sync.RWMutex

	id      string
	cfg     *config.Config
	logger  *logging.NodeLogger
	sources []core.PowerSource

	app   *agent.AppAgent
	radio *agent.RadioAgent
	power *agent.PowerAgent
	base  *core.StaticSource
	idle  *core.StaticSource

	appIO   core.AppInterface
	radioIO core.RadioInterface
	powerIO core.PowerInterface

	model     model
	fusion    FusionResult
	cycles    uint64
	callbacks *CallbackManager
}

// New creates an engine with its agents bound to envs. It fails when any
// environment is missing or the configuration is invalid; all failures are
// reported together.
func New(envs Environments, optFns ...func(o *Options)) (*Engine, error) {
	opts := Options{
		Logger: logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Config == nil {
		opts.Config = config.Default()
	}
	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}
	if opts.NodeID == "" {
		opts.NodeID = util.NewID()
	}

	cfg := opts.Config
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("engine: %w", err)
	}

	logger := logging.NewNodeLogger(opts.Logger).WithNode(opts.NodeID)

	app, appErr := agent.NewAppAgent(envs.Sensor, envs.Trigger, func(o *agent.AppAgentOptions) {
		o.Config = cfg.App
		o.SensorTable = cfg.Sensor
		o.Trigger = cfg.Trigger
		o.SensorAlarm = envs.SensorAlarm
		o.TriggerAlarm = envs.TriggerAlarm
		o.Alarm = envs.AppAlarm
		o.Logger = logger
	})
	radio, radioErr := agent.NewRadioAgent(envs.Radio, func(o *agent.RadioAgentOptions) {
		o.Table = cfg.Radio
		o.Alarm = envs.RadioAlarm
		o.Logger = logger
	})
	power, powerErr := agent.NewPowerAgent(envs.Power, func(o *agent.PowerAgentOptions) {
		o.Battery = cfg.Battery
		o.Depleted = envs.BatteryDepleted
		o.Logger = logger
	})
	if err := errors.Join(appErr, radioErr, powerErr); err != nil {
		return nil, fmt.Errorf("engine: %w", err)
	}

	e := &Engine{
		id:        opts.NodeID,
		cfg:       cfg,
		logger:    logger.WithComponent("engine"),
		app:       app,
		radio:     radio,
		power:     power,
		base:      core.NewStaticSource("base", cfg.Node.BasePower),
		idle:      core.NewStaticSource("idle", cfg.Node.IdlePower),
		callbacks: NewCallbackManager(),
	}
	e.model.expectedLife = cfg.Node.ExpectedLife
	e.sources = []core.PowerSource{e.base, e.idle, app.PowerSource(), radio}

	for _, cb := range opts.Callbacks {
		e.callbacks.RegisterCallback(cb)
	}

	e.logger.Info("Engine initialized",
		"expected_life", cfg.Node.ExpectedLife,
		"total_charge", cfg.Battery.TotalCharge(),
		"periodicity", app.Periodicity(),
	)
	for _, a := range []interface {
		Name() string
		Description() string
	}{app, radio, power} {
		e.logger.Debug("Agent ready", "agent", a.Name(), "description", a.Description())
	}
	return e, nil
}

// Cycle runs one decision cycle.
func (e *Engine) Cycle() {
	e.mu.Lock()
	defer e.mu.Unlock()

	defer func() {
		if r := recover(); r != nil {
			if v, ok := core.AsInvariantViolation(r); ok {
				e.logger.ErrorWithStack(v, "Invariant violated", "cycle", e.cycles)
			}
			panic(r)
		}
	}()

	start := time.Now()
	e.cycles++
	ctx := context.Background()
	meta := make(map[string]any)

	e.fire(ctx, CallbackBeforeCycle, nil, meta)

	e.appIO.Inputs.RelevanceTarget = e.model.relevanceIndex
	e.app.Observe(&e.appIO)

	e.radioIO.Inputs.Data = e.appIO.Outputs.Data
	e.radio.Observe(&e.radioIO)

	e.computePowerInputs()
	e.power.Observe(&e.powerIO)

	e.model.relevanceIndex = e.appIO.Outputs.RelevanceIndex
	e.model.powerIndex = e.powerIO.Outputs.PowerIndex
	e.fire(ctx, CallbackAfterObserve, nil, meta)

	e.fuse()
	e.fire(ctx, CallbackAfterFusion, &e.fusion, meta)

	e.app.Act(&e.appIO)
	e.radio.Act(&e.radioIO)
	e.power.Act(&e.powerIO)

	e.logger.LogCycle(e.cycles, time.Since(start), e.model.relevanceIndex, e.model.powerIndex, e.power.RemainingCharge())
	e.fire(ctx, CallbackAfterCycle, &e.fusion, meta)
}

// computePowerInputs sums the per-source predictions and converts the
// expected lifetime into activations of the current sampling period.
func (e *Engine) computePowerInputs() {
	e.model.predictedPower = floats.Sum([]float64{
		e.idle.Estimate().Power,
		e.base.Estimate().Power,
		e.appIO.Outputs.PredictedPower.Power,
		e.radioIO.Outputs.PredictedPower.Power,
	})
	e.model.predictedPowerIncrement = e.appIO.Outputs.PredictedPowerIncrement + e.radioIO.Outputs.PredictedPowerIncrement

	period := e.appIO.Outputs.Periodicity
	core.Invariant(period > 0, "sampling period must be positive, got %s", period)
	e.model.expectedActivations = util.SaturateUint32(e.model.expectedLife.Seconds() / period.Seconds())

	e.powerIO.Inputs = core.PowerInputs{
		PredictedChargeDelta: e.model.predictedPower,
		PredictedIncrement:   e.model.predictedPowerIncrement,
		ExpectedActivations:  e.model.expectedActivations,
	}
}

func (e *Engine) fuse() {
	res, err := Fuse(e.sources, e.powerIO.Outputs.PowerFeedback)
	core.Invariant(err == nil, "power fusion failed: %v", err)
	e.fusion = res
	e.logger.LogFusion(res.Residual, res.Confidence, res.Sources, res.Gains)
}

func (e *Engine) fire(ctx context.Context, t CallbackType, fusion *FusionResult, meta map[string]any) {
	if e.callbacks.Len(t) == 0 {
		return
	}
	cbCtx := &CallbackContext{
		NodeID:       e.id,
		Cycle:        e.cycles,
		CallbackType: t,
		Snapshot:     e.snapshot(),
		Fusion:       fusion,
		Metadata:     meta,
	}
	if err := e.callbacks.ExecuteCallbacks(ctx, t, cbCtx); err != nil {
		e.logger.Warn("Callback failed", "callback", string(t), "cycle", e.cycles, "error", err)
	}
}

// RegisterCallback adds a cycle callback.
func (e *Engine) RegisterCallback(cb Callback) {
	e.callbacks.RegisterCallback(cb)
}

// NodeID returns the node identifier.
func (e *Engine) NodeID() string { return e.id }

// Config returns the engine configuration. The returned value must not be
// modified.
func (e *Engine) Config() *config.Config { return e.cfg }

// CycleCount returns the number of cycles run.
func (e *Engine) CycleCount() uint64 {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.cycles
}

// Indices returns the relevance and power indices of the last cycle.
func (e *Engine) Indices() (relevance, power int) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.model.relevanceIndex, e.model.powerIndex
}

// RelevanceIndex returns the relevance index of the last cycle.
func (e *Engine) RelevanceIndex() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.model.relevanceIndex
}

// PowerIndex returns the power index of the last cycle.
func (e *Engine) PowerIndex() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.model.powerIndex
}

// PredictedPower returns the summed power prediction of the last cycle.
func (e *Engine) PredictedPower() float64 {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.model.predictedPower
}

// PredictedPowerIncrement returns the summed power increment of the last
// cycle.
func (e *Engine) PredictedPowerIncrement() float64 {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.model.predictedPowerIncrement
}

// PowerFeedback returns the feedback residual of the last cycle.
func (e *Engine) PowerFeedback() core.PowerEstimate {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.power.Feedback()
}

// BasePower returns the current base power estimate.
func (e *Engine) BasePower() core.PowerEstimate { return e.base.Estimate() }

// IdlePower returns the current idle power estimate.
func (e *Engine) IdlePower() core.PowerEstimate { return e.idle.Estimate() }

// ExpectedLife returns the lifetime the node is expected to reach.
func (e *Engine) ExpectedLife() time.Duration {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.model.expectedLife
}

// SetExpectedLife changes the lifetime target. It takes effect on the next
// cycle.
func (e *Engine) SetExpectedLife(d time.Duration) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.model.expectedLife = d
}

// ExpectedActivations returns the expected lifetime in activations of the
// sampling period of the last cycle.
func (e *Engine) ExpectedActivations() uint32 {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.model.expectedActivations
}

// SetBatteryCharge resets the battery to a full charge of c.
func (e *Engine) SetBatteryCharge(c float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.power.SetBatteryCharge(c)
}

// RemainingCharge returns the remaining battery charge.
func (e *Engine) RemainingCharge() float64 {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.power.RemainingCharge()
}

// RemainingChargePercent returns the remaining charge in percent.
func (e *Engine) RemainingChargePercent() float64 {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.power.RemainingChargePercent()
}

// Periodicity returns the current sampling period.
func (e *Engine) Periodicity() time.Duration {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.app.Periodicity()
}

// Depleted reports whether the battery is exhausted.
func (e *Engine) Depleted() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.power.Depleted()
}

// LastFusion returns the fusion update of the last cycle.
func (e *Engine) LastFusion() FusionResult {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.fusion
}

// Snapshot returns a consistent copy of the engine state.
func (e *Engine) Snapshot() Snapshot {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.snapshot()
}

// App returns the application agent. Not safe for use concurrently with
// Cycle.
func (e *Engine) App() *agent.AppAgent { return e.app }

// Radio returns the radio agent. Not safe for use concurrently with Cycle.
func (e *Engine) Radio() *agent.RadioAgent { return e.radio }

// Power returns the power agent. Not safe for use concurrently with Cycle.
func (e *Engine) Power() *agent.PowerAgent { return e.power }

// Snapshot is a point-in-time copy of the engine state.
type Snapshot struct {
	NodeID                  string             `json:"node_id"`
	Cycle                   uint64             `json:"cycle"`
	RelevanceIndex          int                `json:"relevance_index"`
	PowerIndex              int                `json:"power_index"`
	Data                    float64            `json:"data"`
	Confidence              int                `json:"confidence"`
	PredictedPower          float64            `json:"predicted_power"`
	PredictedPowerIncrement float64            `json:"predicted_power_increment"`
	PowerFeedback           core.PowerEstimate `json:"power_feedback"`
	BasePower               core.PowerEstimate `json:"base_power"`
	IdlePower               core.PowerEstimate `json:"idle_power"`
	SensorPower             core.PowerEstimate `json:"sensor_power"`
	RadioPower              core.PowerEstimate `json:"radio_power"`
	SensorMode              int                `json:"sensor_mode"`
	RadioMode               int                `json:"radio_mode"`
	ExpectedLife            time.Duration      `json:"expected_life"`
	ExpectedActivations     uint32             `json:"expected_activations"`
	PredictedLife           float64            `json:"-"`
	Periodicity             time.Duration      `json:"periodicity"`
	ChargeDelta             float64            `json:"charge_delta"`
	RemainingCharge         float64            `json:"remaining_charge"`
	RemainingChargePercent  float64            `json:"remaining_charge_percent"`
	Depleted                bool               `json:"depleted"`
}

// LifeIsUnbounded reports whether no consumption was measured in the last
// cycle.
func (s Snapshot) LifeIsUnbounded() bool { return math.IsInf(s.PredictedLife, 1) }

func (e *Engine) snapshot() Snapshot {
	return Snapshot{
		NodeID:                  e.id,
		Cycle:                   e.cycles,
		RelevanceIndex:          e.model.relevanceIndex,
		PowerIndex:              e.model.powerIndex,
		Data:                    e.appIO.Outputs.Data,
		Confidence:              e.app.Confidence(),
		PredictedPower:          e.model.predictedPower,
		PredictedPowerIncrement: e.model.predictedPowerIncrement,
		PowerFeedback:           e.power.Feedback(),
		BasePower:               e.base.Estimate(),
		IdlePower:               e.idle.Estimate(),
		SensorPower:             e.app.Sensor().Estimate(),
		RadioPower:              e.radio.Estimate(),
		SensorMode:              e.app.Sensor().Mode(),
		RadioMode:               e.radio.Mode(),
		ExpectedLife:            e.model.expectedLife,
		ExpectedActivations:     e.model.expectedActivations,
		PredictedLife:           e.power.PredictedLife(),
		Periodicity:             e.app.Periodicity(),
		ChargeDelta:             e.power.ChargeDelta(),
		RemainingCharge:         e.power.RemainingCharge(),
		RemainingChargePercent:  e.power.RemainingChargePercent(),
		Depleted:                e.power.Depleted(),
	}
}
