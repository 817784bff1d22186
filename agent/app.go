package agent

import (
	"errors"
	"math"
	"time"

	"github.com/hupe1980/awarenode/config"
	"github.com/hupe1980/awarenode/consistency"
	"github.com/hupe1980/awarenode/core"
	"github.com/hupe1980/awarenode/internal/util"
	"github.com/hupe1980/awarenode/logging"
)

// AppAgentOptions configures an AppAgent and the sensor and trigger agents
// it composes.
type AppAgentOptions struct {
	// Name overrides the agent name (default "app").
	Name string
	// Config holds the data-quality thresholds.
	Config config.AppConfig
	// SensorTable is passed to the composed sensor agent.
	SensorTable config.ModeTable
	// Trigger is passed to the composed trigger agent.
	Trigger config.TriggerConfig
	// SensorAlarm is forwarded to the sensor agent. Optional.
	SensorAlarm core.AlarmFunc
	// TriggerAlarm is forwarded to the trigger agent. Optional.
	TriggerAlarm core.AlarmFunc
	// Alarm receives AlarmImplausibleData. Optional.
	Alarm core.AlarmFunc
	// Logger is shared with the composed agents. Optional.
	Logger logging.Logger
}

// AppAgent models the sensing application. It composes a SensorAgent and a
// TriggerAgent, tracks the rate and moving average of the sensed signal and
// derives a relevance index from the plausibility, consistency and
// cross-validity of each sample.
type AppAgent struct {
	BaseAgent
	sensor    *SensorAgent
	trigger   *TriggerAgent
	sensorIO  core.SensorInterface
	triggerIO core.TriggerInterface

	cfg        config.AppConfig
	data       float64
	last       float64
	rate       float64
	avg        *util.MovingAverage
	confidence int
	relevance  int
}

// NewAppAgent creates the application agent together with its sensor and
// trigger agents. It fails if either of them fails.
func NewAppAgent(sensorEnv core.SensorEnvironment, triggerEnv core.TriggerEnvironment, optFns ...func(o *AppAgentOptions)) (*AppAgent, error) {
	def := config.Default()
	opts := AppAgentOptions{
		Name:        "app",
		Config:      def.App,
		SensorTable: def.Sensor,
		Trigger:     def.Trigger,
		Logger:      logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	sensor, sErr := NewSensorAgent(sensorEnv, func(o *SensorAgentOptions) {
		o.Table = opts.SensorTable
		o.Alarm = opts.SensorAlarm
		o.Logger = opts.Logger
	})
	trigger, tErr := NewTriggerAgent(triggerEnv, func(o *TriggerAgentOptions) {
		o.Config = opts.Trigger
		o.Alarm = opts.TriggerAlarm
		o.Logger = opts.Logger
	})
	if err := errors.Join(sErr, tErr, opts.Config.Validate()); err != nil {
		return nil, err
	}

	a := &AppAgent{
		BaseAgent: NewBaseAgent(opts.Name, opts.Logger, opts.Alarm),
		sensor:    sensor,
		trigger:   trigger,
		cfg:       opts.Config,
		avg:       util.NewMovingAverage(opts.Config.AverageWindow),
	}
	a.SetDescription("Models the sensing application and the relevance of its data")
	return a, nil
}

// Observe runs the sensor and trigger Observe phases, then Learn, Reflect and
// Reason on the sensed data.
func (a *AppAgent) Observe(io *core.AppInterface) {
	a.sensorIO.Inputs = io.Inputs.Sensor
	a.sensor.Observe(&a.sensorIO)

	a.triggerIO.Inputs.SamplingTarget = io.Inputs.RelevanceTarget
	a.trigger.Observe(&a.triggerIO)

	a.learn()
	a.reflect()
	a.reason(io)
}

// Act runs the sensor and trigger Act phases.
func (a *AppAgent) Act(_ *core.AppInterface) {
	a.sensor.Act(&a.sensorIO)
	a.trigger.Act(&a.triggerIO)
}

// Oda runs Observe followed by Act.
func (a *AppAgent) Oda(io *core.AppInterface) {
	a.Observe(io)
	a.Act(io)
}

// learn updates rate and average. Error samples are published but kept out
// of the rate reference and the average.
func (a *AppAgent) learn() {
	cur := a.sensorIO.Outputs.MeasuredData
	a.data = cur
	if math.IsNaN(cur) {
		a.rate = math.NaN()
		return
	}
	a.rate = util.RateOfChange(cur, a.last, a.cfg.MinRateReference)
	a.last = cur
	a.avg.Add(cur)
}

func (a *AppAgent) reflect() {
	plausibility := consistency.Plausibility(a.data, a.cfg.RangeLow, a.cfg.RangeHigh)

	cons, cross := consistency.Min, consistency.Min
	if a.initialized {
		cons = consistency.Consistency(a.rate, a.cfg.MaxRate)
		cross = consistency.CrossValidity(a.data, a.avg.Value(), a.cfg.Deviation)
	} else {
		a.initialized = true
	}

	a.confidence = consistency.Confidence(plausibility, cons, cross)
	if plausibility == consistency.Min {
		a.raise(core.AlarmImplausibleData)
	}
	a.logger.Debug("Data reflected",
		"data", a.data,
		"rate", a.rate,
		"average", a.avg.Value(),
		"plausibility", plausibility,
		"consistency", cons,
		"cross_validity", cross,
		"confidence", a.confidence,
	)
}

func (a *AppAgent) reason(io *core.AppInterface) {
	a.relevance = a.confidence
	io.Outputs = core.AppOutputs{
		Data:                    a.data,
		PredictedPower:          a.sensorIO.Outputs.PredictedPower,
		PredictedPowerIncrement: a.sensorIO.Outputs.PredictedPowerIncrement,
		Periodicity:             a.triggerIO.Outputs.Periodicity,
		RelevanceIndex:          a.relevance,
	}
}

// Sensor returns the composed sensor agent.
func (a *AppAgent) Sensor() *SensorAgent { return a.sensor }

// Trigger returns the composed trigger agent.
func (a *AppAgent) Trigger() *TriggerAgent { return a.trigger }

// PowerSource returns the handle to the sensor's power estimate.
func (a *AppAgent) PowerSource() core.PowerSource { return a.sensor }

// Periodicity returns the current sampling period.
func (a *AppAgent) Periodicity() time.Duration { return a.trigger.Periodicity() }

// Confidence returns the confidence computed by the last Reflect.
func (a *AppAgent) Confidence() int { return a.confidence }

// RelevanceIndex returns the relevance published by the last Reason.
func (a *AppAgent) RelevanceIndex() int { return a.relevance }

// Average returns the moving average of the sensed signal.
func (a *AppAgent) Average() float64 { return a.avg.Value() }

// Rate returns the last relative rate of change.
func (a *AppAgent) Rate() float64 { return a.rate }

var _ core.Agent[core.AppInterface] = (*AppAgent)(nil)
