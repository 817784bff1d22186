package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/hupe1980/awarenode/engine"
)

const namespace = "awarenode"

// SnapshotSource provides engine snapshots. *engine.Engine satisfies it.
type SnapshotSource interface {
	Snapshot() engine.Snapshot
}

// Collector exports the engine state as Prometheus metrics.
type Collector struct {
	source SnapshotSource

	cycles              *prometheus.Desc
	relevanceIndex      *prometheus.Desc
	powerIndex          *prometheus.Desc
	confidence          *prometheus.Desc
	predictedPower      *prometheus.Desc
	powerFeedback       *prometheus.Desc
	sourcePower         *prometheus.Desc
	sourceCovariance    *prometheus.Desc
	samplingPeriod      *prometheus.Desc
	expectedActivations *prometheus.Desc
	remainingCharge     *prometheus.Desc
	remainingPercent    *prometheus.Desc
	depleted            *prometheus.Desc
}

// NewCollector creates a collector for source. nodeID is attached to every
// metric as constant label.
func NewCollector(source SnapshotSource, nodeID string) *Collector {
	labels := prometheus.Labels{"node_id": nodeID}
	desc := func(name, help string, variable ...string) *prometheus.Desc {
		return prometheus.NewDesc(prometheus.BuildFQName(namespace, "", name), help, variable, labels)
	}

	return &Collector{
		source:              source,
		cycles:              desc("cycles_total", "Number of decision cycles run."),
		relevanceIndex:      desc("relevance_index", "Relevance index of the last cycle."),
		powerIndex:          desc("power_index", "Power index of the last cycle."),
		confidence:          desc("data_confidence", "Confidence in the last sensed sample."),
		predictedPower:      desc("predicted_power", "Summed power prediction of the last cycle."),
		powerFeedback:       desc("power_feedback", "Measured minus predicted consumption of the last cycle."),
		sourcePower:         desc("source_power", "Fused power estimate per source.", "source"),
		sourceCovariance:    desc("source_covariance", "Covariance of the power estimate per source.", "source"),
		samplingPeriod:      desc("sampling_period_seconds", "Current sampling period."),
		expectedActivations: desc("expected_activations", "Expected lifetime in activations of the current period."),
		remainingCharge:     desc("remaining_charge", "Remaining battery charge."),
		remainingPercent:    desc("remaining_charge_percent", "Remaining battery charge in percent."),
		depleted:            desc("battery_depleted", "1 once the battery is exhausted."),
	}
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.cycles
	ch <- c.relevanceIndex
	ch <- c.powerIndex
	ch <- c.confidence
	ch <- c.predictedPower
	ch <- c.powerFeedback
	ch <- c.sourcePower
	ch <- c.sourceCovariance
	ch <- c.samplingPeriod
	ch <- c.expectedActivations
	ch <- c.remainingCharge
	ch <- c.remainingPercent
	ch <- c.depleted
}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	s := c.source.Snapshot()

	ch <- prometheus.MustNewConstMetric(c.cycles, prometheus.CounterValue, float64(s.Cycle))
	ch <- prometheus.MustNewConstMetric(c.relevanceIndex, prometheus.GaugeValue, float64(s.RelevanceIndex))
	ch <- prometheus.MustNewConstMetric(c.powerIndex, prometheus.GaugeValue, float64(s.PowerIndex))
	ch <- prometheus.MustNewConstMetric(c.confidence, prometheus.GaugeValue, float64(s.Confidence))
	ch <- prometheus.MustNewConstMetric(c.predictedPower, prometheus.GaugeValue, s.PredictedPower)
	ch <- prometheus.MustNewConstMetric(c.powerFeedback, prometheus.GaugeValue, s.PowerFeedback.Power)

	for _, src := range []struct {
		name string
		est  [2]float64
	}{
		{"base", [2]float64{s.BasePower.Power, s.BasePower.Covariance}},
		{"idle", [2]float64{s.IdlePower.Power, s.IdlePower.Covariance}},
		{"sensor", [2]float64{s.SensorPower.Power, s.SensorPower.Covariance}},
		{"radio", [2]float64{s.RadioPower.Power, s.RadioPower.Covariance}},
	} {
		ch <- prometheus.MustNewConstMetric(c.sourcePower, prometheus.GaugeValue, src.est[0], src.name)
		ch <- prometheus.MustNewConstMetric(c.sourceCovariance, prometheus.GaugeValue, src.est[1], src.name)
	}

	ch <- prometheus.MustNewConstMetric(c.samplingPeriod, prometheus.GaugeValue, s.Periodicity.Seconds())
	ch <- prometheus.MustNewConstMetric(c.expectedActivations, prometheus.GaugeValue, float64(s.ExpectedActivations))
	ch <- prometheus.MustNewConstMetric(c.remainingCharge, prometheus.GaugeValue, s.RemainingCharge)
	ch <- prometheus.MustNewConstMetric(c.remainingPercent, prometheus.GaugeValue, s.RemainingChargePercent)

	depleted := 0.0
	if s.Depleted {
		depleted = 1
	}
	ch <- prometheus.MustNewConstMetric(c.depleted, prometheus.GaugeValue, depleted)
}

var _ prometheus.Collector = (*Collector)(nil)
