package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/hupe1980/awarenode/core"
	"github.com/hupe1980/awarenode/logging"
)

// Alarms counts agent alarms by agent and code.
type Alarms struct {
	counter *prometheus.CounterVec
	logger  logging.Logger
}

// NewAlarms creates an alarm counter. Register it with a prometheus
// registry to export it.
func NewAlarms(nodeID string, logger logging.Logger) *Alarms {
	if logger == nil {
		logger = logging.NoOpLogger{}
	}
	return &Alarms{
		counter: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   namespace,
			Name:        "alarms_total",
			Help:        "Alarms raised by agents.",
			ConstLabels: prometheus.Labels{"node_id": nodeID},
		}, []string{"agent", "code"}),
		logger: logger,
	}
}

// Func returns the alarm callback for agent.
func (a *Alarms) Func(agent string) core.AlarmFunc {
	return func(code core.AlarmCode) {
		a.counter.WithLabelValues(agent, code.String()).Inc()
		a.logger.Debug("Alarm counted", "agent", agent, "code", code.String())
	}
}

// Describe implements prometheus.Collector.
func (a *Alarms) Describe(ch chan<- *prometheus.Desc) { a.counter.Describe(ch) }

// Collect implements prometheus.Collector.
func (a *Alarms) Collect(ch chan<- prometheus.Metric) { a.counter.Collect(ch) }

var _ prometheus.Collector = (*Alarms)(nil)
