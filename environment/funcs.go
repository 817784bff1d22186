package environment

import (
	"fmt"

	"github.com/hupe1980/awarenode/core"
)

func incomplete(kind string) error {
	return fmt.Errorf("%s: both ObserveFunc and ActFunc are required: %w", kind, core.ErrMissingEnvironment)
}

// SensorFuncs adapts two callbacks to core.SensorEnvironment.
type SensorFuncs struct {
	ObserveFunc func(obs *core.SensorObservation)
	ActFunc     func(acts *core.SensorActuation)
}

// Observe implements core.SensorEnvironment.
func (f SensorFuncs) Observe(obs *core.SensorObservation) { f.ObserveFunc(obs) }

// Act implements core.SensorEnvironment.
func (f SensorFuncs) Act(acts *core.SensorActuation) { f.ActFunc(acts) }

// Validate implements core.Validator.
func (f SensorFuncs) Validate() error {
	if f.ObserveFunc == nil || f.ActFunc == nil {
		return incomplete("sensor environment")
	}
	return nil
}

// TriggerFuncs adapts two callbacks to core.TriggerEnvironment.
type TriggerFuncs struct {
	ObserveFunc func(obs *core.TriggerObservation)
	ActFunc     func(acts *core.TriggerActuation)
}

// Observe implements core.TriggerEnvironment.
func (f TriggerFuncs) Observe(obs *core.TriggerObservation) { f.ObserveFunc(obs) }

// Act implements core.TriggerEnvironment.
func (f TriggerFuncs) Act(acts *core.TriggerActuation) { f.ActFunc(acts) }

// Validate implements core.Validator.
func (f TriggerFuncs) Validate() error {
	if f.ObserveFunc == nil || f.ActFunc == nil {
		return incomplete("trigger environment")
	}
	return nil
}

// RadioFuncs adapts two callbacks to core.RadioEnvironment.
type RadioFuncs struct {
	ObserveFunc func(obs *core.RadioObservation)
	ActFunc     func(acts *core.RadioActuation)
}

// Observe implements core.RadioEnvironment.
func (f RadioFuncs) Observe(obs *core.RadioObservation) { f.ObserveFunc(obs) }

// Act implements core.RadioEnvironment.
func (f RadioFuncs) Act(acts *core.RadioActuation) { f.ActFunc(acts) }

// Validate implements core.Validator.
func (f RadioFuncs) Validate() error {
	if f.ObserveFunc == nil || f.ActFunc == nil {
		return incomplete("radio environment")
	}
	return nil
}

// PowerFuncs adapts two callbacks to core.PowerEnvironment.
type PowerFuncs struct {
	ObserveFunc func(obs *core.PowerObservation)
	ActFunc     func(acts *core.PowerActuation)
}

// Observe implements core.PowerEnvironment.
func (f PowerFuncs) Observe(obs *core.PowerObservation) { f.ObserveFunc(obs) }

// Act implements core.PowerEnvironment.
func (f PowerFuncs) Act(acts *core.PowerActuation) { f.ActFunc(acts) }

// Validate implements core.Validator.
func (f PowerFuncs) Validate() error {
	if f.ObserveFunc == nil || f.ActFunc == nil {
		return incomplete("power environment")
	}
	return nil
}

var (
	_ core.SensorEnvironment  = SensorFuncs{}
	_ core.TriggerEnvironment = TriggerFuncs{}
	_ core.RadioEnvironment   = RadioFuncs{}
	_ core.PowerEnvironment   = PowerFuncs{}
	_ core.Validator          = SensorFuncs{}
	_ core.Validator          = TriggerFuncs{}
	_ core.Validator          = RadioFuncs{}
	_ core.Validator          = PowerFuncs{}
)
