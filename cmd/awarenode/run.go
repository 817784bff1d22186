package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/hupe1980/awarenode"
	"github.com/hupe1980/awarenode/core"
	"github.com/hupe1980/awarenode/engine"
	"github.com/hupe1980/awarenode/environment"
	"github.com/hupe1980/awarenode/environment/mqtt"
	"github.com/hupe1980/awarenode/internal/util"
	"github.com/hupe1980/awarenode/logging"
	"github.com/hupe1980/awarenode/runner"
)

type runOptions struct {
	nodeID      string
	cycles      int
	timeScale   float64
	draw        float64
	offset      float64
	amplitude   float64
	wavePeriod  int
	trace       bool
	metricsAddr string
	mqttBroker  string
	mqttTopic   string
	mqttConfig  string
}

// runSummary is printed to stdout once the run ends.
type runSummary struct {
	NodeID  string            `json:"node_id"`
	Cycles  uint64            `json:"cycles"`
	Reason  runner.StopReason `json:"reason"`
	Elapsed string            `json:"elapsed"`
	Final   engine.Snapshot   `json:"final"`
}

func newRunCmd(root *rootOptions) *cobra.Command {
	opts := &runOptions{}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run a simulated node until it stops",
		Long: `Runs the decision cycle against simulated hardware until the battery is
depleted, --cycles is reached or the process is interrupted.

The sensor produces a sine wave, the battery gauge draws a fixed charge
per cycle. With --mqtt-broker the payload of every cycle is published to the
broker and radio modes can be changed through the configuration topic.

Example:
  awarenode run --cycles 100 --draw 120 --metrics-addr :9100`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runNode(cmd, root, opts)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.nodeID, "node-id", "", "Node identifier (default: random)")
	f.IntVar(&opts.cycles, "cycles", 0, "Stop after this many cycles (default: runner.max_cycles)")
	f.Float64Var(&opts.timeScale, "time-scale", 0, "Multiplier applied to the sampling period between cycles (default: runner.time_scale)")
	f.Float64Var(&opts.draw, "draw", 120, "Simulated charge drawn per cycle")
	f.Float64Var(&opts.offset, "sensor-offset", 50, "Center of the simulated waveform")
	f.Float64Var(&opts.amplitude, "sensor-amplitude", 5, "Amplitude of the simulated waveform")
	f.IntVar(&opts.wavePeriod, "sensor-period", 20, "Samples per waveform period")
	f.BoolVar(&opts.trace, "trace", false, "Log a checkpoint after every cycle")
	f.StringVar(&opts.metricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address")
	f.StringVar(&opts.mqttBroker, "mqtt-broker", "", "Publish payloads to this MQTT broker, e.g. tcp://localhost:1883")
	f.StringVar(&opts.mqttTopic, "mqtt-topic", "awarenode/data", "MQTT topic for payloads")
	f.StringVar(&opts.mqttConfig, "mqtt-config-topic", "awarenode/config", "MQTT topic for radio mode changes")

	return cmd
}

func runNode(cmd *cobra.Command, root *rootOptions, opts *runOptions) error {
	cfg, err := root.loadConfig()
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("cycles") {
		cfg.Runner.MaxCycles = opts.cycles
	}
	if cmd.Flags().Changed("time-scale") {
		cfg.Runner.TimeScale = opts.timeScale
	}

	logger, syncLogs, err := newLogger(cfg.Logging, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer syncLogs()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if opts.nodeID == "" {
		opts.nodeID = util.NewID()
	}

	var radio core.RadioEnvironment = environment.NewLoopbackRadio()
	if opts.mqttBroker != "" {
		client, err := connectMQTT(opts)
		if err != nil {
			return err
		}
		defer client.Disconnect(250)

		uplink := mqtt.New(client, func(o *mqtt.Options) {
			o.Topic = opts.mqttTopic
			o.ConfigTopic = opts.mqttConfig
			o.NodeID = opts.nodeID
			o.Logger = logger
		})
		if err := uplink.Subscribe(client); err != nil {
			return err
		}
		radio = uplink
	}

	var callbacks []engine.Callback
	if opts.trace {
		callbacks = append(callbacks, engine.NewLoggingCallback(engine.CallbackAfterCycle, logger))
	}

	node, err := awarenode.New(engine.Environments{
		Sensor:  environment.NewWaveSensor(opts.offset, opts.amplitude, opts.wavePeriod),
		Trigger: environment.NewTimer(),
		Radio:   radio,
		Power:   environment.NewCoulombCounter(opts.draw),
	}, func(o *awarenode.Options) {
		o.Config = cfg
		o.NodeID = opts.nodeID
		o.MaxCycles = cfg.Runner.MaxCycles
		o.TimeScale = cfg.Runner.TimeScale
		o.StopOnDepletion = cfg.Runner.StopOnDepletion
		o.Callbacks = callbacks
		o.Logger = logger
	})
	if err != nil {
		return err
	}

	if opts.metricsAddr != "" {
		shutdown, err := serveMetrics(node, opts.metricsAddr, logger)
		if err != nil {
			return err
		}
		defer shutdown()
	}

	res, err := node.Run(ctx)
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(runSummary{
		NodeID:  node.NodeID(),
		Cycles:  res.Cycles,
		Reason:  res.Reason,
		Elapsed: res.Elapsed.String(),
		Final:   node.Snapshot(),
	})
}

func connectMQTT(opts *runOptions) (paho.Client, error) {
	clientOpts := paho.NewClientOptions().
		AddBroker(opts.mqttBroker).
		SetClientID("awarenode-" + opts.nodeID).
		SetAutoReconnect(true).
		SetConnectTimeout(10 * time.Second)

	client := paho.NewClient(clientOpts)
	token := client.Connect()
	if !token.WaitTimeout(15 * time.Second) {
		return nil, fmt.Errorf("mqtt connect %s: timed out", opts.mqttBroker)
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("mqtt connect %s: %w", opts.mqttBroker, err)
	}
	return client, nil
}

// serveMetrics exposes the node's collectors and returns a function that
// stops the server.
func serveMetrics(node *awarenode.Node, addr string, logger logging.Logger) (func(), error) {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	if err := node.Register(reg); err != nil {
		return nil, err
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("Serving metrics", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Metrics server failed", "error", err)
		}
	}()

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}, nil
}
