package testutil

import (
	"github.com/hupe1980/awarenode/environment"
)

// Rig bundles simulated environments with recorders for every alarm source.
//
// Example:
//
//	rig := testutil.NewRig(200, 50, 50, 120)
//	eng, err := engine.New(engine.Environments{
//	    Sensor: rig.Sensor, Trigger: rig.Timer, Radio: rig.Radio, Power: rig.Gauge,
//	    AppAlarm: rig.AppAlarms.Func(),
//	})
type Rig struct {
	Sensor *environment.ScriptedSensor
	Timer  *environment.Timer
	Radio  *environment.LoopbackRadio
	Gauge  *environment.CoulombCounter

	SensorAlarms  *AlarmRecorder
	TriggerAlarms *AlarmRecorder
	AppAlarms     *AlarmRecorder
	RadioAlarms   *AlarmRecorder
	Depletions    *Counter
}

// NewRig creates a rig whose gauge draws draw charge per cycle and whose
// sensor replays values.
func NewRig(draw float64, values ...float64) *Rig {
	return &Rig{
		Sensor:        environment.NewScriptedSensor(values...),
		Timer:         environment.NewTimer(),
		Radio:         environment.NewLoopbackRadio(),
		Gauge:         environment.NewCoulombCounter(draw),
		SensorAlarms:  NewAlarmRecorder(),
		TriggerAlarms: NewAlarmRecorder(),
		AppAlarms:     NewAlarmRecorder(),
		RadioAlarms:   NewAlarmRecorder(),
		Depletions:    &Counter{},
	}
}
