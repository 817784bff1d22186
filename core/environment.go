package core

import "time"

// SensorObservation is filled by the sensor environment.
type SensorObservation struct {
	// Data is the raw measurement. NaN signals a measurement error.
	Data float64
}

// SensorActuation tells the sensor environment which mode to run in.
type SensorActuation struct {
	Mode int
}

// TriggerObservation is filled by the trigger environment. The timer hardware
// reports nothing today; the struct exists so the contract can grow.
type TriggerObservation struct{}

// TriggerActuation carries the sampling period to program.
type TriggerActuation struct {
	Periodicity time.Duration
}

// RadioObservation is filled by the radio environment. Data is pre-filled
// with the payload queued for transmission.
type RadioObservation struct {
	ConfigChange bool
	Mode         int
	Data         float64
}

// RadioActuation carries the payload to transmit.
type RadioActuation struct {
	Data float64
}

// BatteryObservation is the coulomb counter reading.
type BatteryObservation struct {
	Voltage     float64
	Temperature float64
	// Charge is the cumulative charge drawn since power-on.
	Charge float64
}

// PowerObservation is filled by the power environment.
type PowerObservation struct {
	Battery BatteryObservation
}

// PowerActuation reports the battery assessment to the environment.
type PowerActuation struct {
	RemainingCharge float64
	PowerIndex      int
}

// SensorEnvironment is the boundary to the sensing hardware. Implementations
// must be synchronous, fill every field of the struct passed to them and not
// retain the pointer beyond the call.
type SensorEnvironment interface {
	Observe(obs *SensorObservation)
	Act(acts *SensorActuation)
}

// TriggerEnvironment is the boundary to the sampling timer.
type TriggerEnvironment interface {
	Observe(obs *TriggerObservation)
	Act(acts *TriggerActuation)
}

// RadioEnvironment is the boundary to the radio link.
type RadioEnvironment interface {
	Observe(obs *RadioObservation)
	Act(acts *RadioActuation)
}

// PowerEnvironment is the boundary to the battery gauge.
type PowerEnvironment interface {
	Observe(obs *PowerObservation)
	Act(acts *PowerActuation)
}

// Validator is optionally implemented by environments that can report
// themselves incomplete, e.g. function adapters with a nil callback.
type Validator interface {
	Validate() error
}

// AlarmCode identifies a non-fatal condition raised by an agent.
type AlarmCode uint8

const (
	// AlarmMeasurementError is raised when the sensor reports its error sentinel.
	AlarmMeasurementError AlarmCode = iota + 1
	// AlarmSamplingSaturated is raised when a sampling target cannot move the
	// period index because it is pinned at a bound.
	AlarmSamplingSaturated
	// AlarmInvalidMode is raised when an environment requests an unknown mode.
	AlarmInvalidMode
	// AlarmImplausibleData is raised when sensed data falls outside its range.
	AlarmImplausibleData
)

// String returns the alarm name.
func (c AlarmCode) String() string {
	switch c {
	case AlarmMeasurementError:
		return "measurement_error"
	case AlarmSamplingSaturated:
		return "sampling_saturated"
	case AlarmInvalidMode:
		return "invalid_mode"
	case AlarmImplausibleData:
		return "implausible_data"
	default:
		return "unknown"
	}
}

// AlarmFunc receives non-fatal alarms. It is always optional.
type AlarmFunc func(code AlarmCode)

// DepletionFunc is invoked once per battery exhaustion event.
type DepletionFunc func()
