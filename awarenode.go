// Package awarenode provides a high-level façade that assembles an
// energy-aware sensing node from its environments: the decision engine, a
// runner pacing the cycles, a bounded history of cycle records and
// Prometheus collectors for the node state and agent alarms. Most
// applications interact with this package by:
//  1. Binding the node to its hardware via engine.Environments
//  2. Creating a Node via New() (optionally overriding the defaults)
//  3. Running it synchronously (Run) or in the background (Start)
//
// The façade delegates the decision logic to engine.Engine and the pacing to
// runner.Runner while keeping setup concise. All defaults are safe for local
// simulation.
package awarenode

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/hupe1980/awarenode/config"
	"github.com/hupe1980/awarenode/core"
	"github.com/hupe1980/awarenode/engine"
	"github.com/hupe1980/awarenode/internal/util"
	"github.com/hupe1980/awarenode/logging"
	"github.com/hupe1980/awarenode/runner"
	"github.com/hupe1980/awarenode/telemetry"
)

// Options configures the Node instance.
type Options struct {
	// Config holds every tunable of the node (defaults to config.Default()).
	Config *config.Config

	// NodeID identifies the node in logs and metrics. Generated when empty.
	NodeID string

	// HistorySize bounds the number of cycle records kept in memory.
	HistorySize int

	// MaxCycles bounds a run; 0 runs until depletion or cancellation.
	MaxCycles int

	// TimeScale multiplies the sampling period between cycles. 0 runs the
	// cycles back to back, 1 runs in real time.
	TimeScale float64

	// StopOnDepletion ends a run once the battery is exhausted.
	StopOnDepletion bool

	// Callbacks are registered with the engine in addition to the history
	// recorder.
	Callbacks []engine.Callback

	// Logger (defaults to NoOp logger if nil)
	Logger logging.Logger
}

// Node is the high-level façade aggregating the engine, runner and telemetry.
type Node struct {
	opts      Options
	engine    *engine.Engine
	runner    *runner.Runner
	history   *telemetry.Recorder
	alarms    *telemetry.Alarms
	collector *telemetry.Collector
}

// New creates a node bound to envs. Alarm callbacks present in envs still
// fire; every alarm is additionally counted by the node's alarm collector.
func New(envs engine.Environments, optFns ...func(o *Options)) (*Node, error) {
	opts := Options{
		Config:          config.Default(),
		HistorySize:     256,
		StopOnDepletion: true,
		Logger:          logging.NoOpLogger{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	if opts.NodeID == "" {
		opts.NodeID = util.NewID()
	}

	alarms := telemetry.NewAlarms(opts.NodeID, opts.Logger)
	envs.SensorAlarm = chainAlarms(alarms.Func("sensor"), envs.SensorAlarm)
	envs.TriggerAlarm = chainAlarms(alarms.Func("trigger"), envs.TriggerAlarm)
	envs.AppAlarm = chainAlarms(alarms.Func("app"), envs.AppAlarm)
	envs.RadioAlarm = chainAlarms(alarms.Func("radio"), envs.RadioAlarm)

	history := telemetry.NewRecorder(opts.HistorySize)

	eng, err := engine.New(envs, func(o *engine.Options) {
		o.Config = opts.Config
		o.Logger = opts.Logger
		o.NodeID = opts.NodeID
		o.Callbacks = append([]engine.Callback{history.Callback()}, opts.Callbacks...)
	})
	if err != nil {
		return nil, fmt.Errorf("awarenode: %w", err)
	}

	r := runner.New(eng, func(o *runner.Options) {
		o.MaxCycles = opts.MaxCycles
		o.TimeScale = opts.TimeScale
		o.StopOnDepletion = opts.StopOnDepletion
		o.Logger = opts.Logger
	})

	return &Node{
		opts:      opts,
		engine:    eng,
		runner:    r,
		history:   history,
		alarms:    alarms,
		collector: telemetry.NewCollector(eng, opts.NodeID),
	}, nil
}

// Run executes cycles synchronously until a stop condition is met.
func (n *Node) Run(ctx context.Context) (runner.Result, error) {
	return n.runner.Run(ctx)
}

// Start executes cycles in a background goroutine. The returned channel
// receives the outcome once the run ends.
func (n *Node) Start(ctx context.Context) (<-chan runner.Outcome, error) {
	return n.runner.Start(ctx)
}

// Stop cancels a run started with Start.
func (n *Node) Stop() { n.runner.Stop() }

// Cycle runs a single decision cycle outside of the runner.
func (n *Node) Cycle() { n.engine.Cycle() }

// Register adds the node's collectors to reg.
func (n *Node) Register(reg prometheus.Registerer) error {
	for _, c := range []prometheus.Collector{n.collector, n.alarms} {
		if err := reg.Register(c); err != nil {
			return fmt.Errorf("awarenode: register collector: %w", err)
		}
	}
	return nil
}

// NodeID returns the node identifier.
func (n *Node) NodeID() string { return n.opts.NodeID }

// Engine exposes the decision engine.
func (n *Node) Engine() *engine.Engine { return n.engine }

// History exposes the recorded cycles.
func (n *Node) History() *telemetry.Recorder { return n.history }

// Snapshot returns the current engine state.
func (n *Node) Snapshot() engine.Snapshot { return n.engine.Snapshot() }

func chainAlarms(fns ...core.AlarmFunc) core.AlarmFunc {
	return func(code core.AlarmCode) {
		for _, fn := range fns {
			if fn != nil {
				fn(code)
			}
		}
	}
}
