package core

import "time"

// Index bounds shared by relevance and power indices.
const (
	IndexMin = -100
	IndexMax = 100
)

// SensorInputs carry optional targets used to select a sensor mode. Zero
// values leave the current mode untouched.
type SensorInputs struct {
	AccuracyTarget float64
	PowerTarget    float64
}

// SensorOutputs are published by the sensor agent's Reason step.
type SensorOutputs struct {
	MeasuredData            float64
	PredictedPower          PowerEstimate
	PredictedPowerIncrement float64
}

// SensorInterface is the per-cycle exchange struct of the sensor agent.
type SensorInterface struct {
	Inputs  SensorInputs
	Outputs SensorOutputs
}

// TriggerInputs carry the one-shot sampling target in [IndexMin, IndexMax].
type TriggerInputs struct {
	SamplingTarget int
}

// TriggerOutputs are published by the trigger agent's Reason step.
type TriggerOutputs struct {
	Periodicity time.Duration
}

// TriggerInterface is the per-cycle exchange struct of the trigger agent.
type TriggerInterface struct {
	Inputs  TriggerInputs
	Outputs TriggerOutputs
}

// RadioInputs carry the payload to transmit this cycle.
type RadioInputs struct {
	Data float64
}

// RadioOutputs are published by the radio agent's Reason step.
type RadioOutputs struct {
	PredictedPower          PowerEstimate
	PredictedPowerIncrement float64
}

// RadioInterface is the per-cycle exchange struct of the radio agent.
type RadioInterface struct {
	Inputs  RadioInputs
	Outputs RadioOutputs
}

// AppInputs carry the relevance the application should steer towards.
type AppInputs struct {
	RelevanceTarget int
	// Sensor is forwarded to the composed sensor agent.
	Sensor SensorInputs
}

// AppOutputs are published by the application agent's Reason step.
type AppOutputs struct {
	Data                    float64
	PredictedPower          PowerEstimate
	PredictedPowerIncrement float64
	Periodicity             time.Duration
	RelevanceIndex          int
}

// AppInterface is the per-cycle exchange struct of the application agent.
type AppInterface struct {
	Inputs  AppInputs
	Outputs AppOutputs
}

// PowerInputs are computed by the orchestrator before the power agent
// observes.
type PowerInputs struct {
	// PredictedChargeDelta is the fused prediction of this cycle's consumption.
	PredictedChargeDelta float64
	// PredictedIncrement is the predicted change in consumption.
	PredictedIncrement float64
	// ExpectedActivations is the expected lifetime expressed in cycles of
	// the current sampling period.
	ExpectedActivations uint32
}

// PowerOutputs are published by the power agent.
type PowerOutputs struct {
	PowerFeedback PowerEstimate
	PowerIndex    int
}

// PowerInterface is the per-cycle exchange struct of the power agent.
type PowerInterface struct {
	Inputs  PowerInputs
	Outputs PowerOutputs
}
