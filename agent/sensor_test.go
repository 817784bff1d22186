package agent

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/awarenode/config"
	"github.com/hupe1980/awarenode/core"
	"github.com/hupe1980/awarenode/environment"
	"github.com/hupe1980/awarenode/internal/testutil"
)

func newSensor(t *testing.T, env core.SensorEnvironment, alarms *testutil.AlarmRecorder) *SensorAgent {
	t.Helper()
	a, err := NewSensorAgent(env, func(o *SensorAgentOptions) {
		o.Alarm = alarms.Func()
	})
	require.NoError(t, err)
	return a
}

func TestNewSensorAgent_MissingEnvironment(t *testing.T) {
	tests := []struct {
		name string
		env  core.SensorEnvironment
	}{
		{"nil", nil},
		{"nil pointer", (*environment.ScriptedSensor)(nil)},
		{"incomplete funcs", environment.SensorFuncs{ObserveFunc: func(*core.SensorObservation) {}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, err := NewSensorAgent(tt.env)
			assert.ErrorIs(t, err, core.ErrMissingEnvironment)
			assert.Nil(t, a)
		})
	}
}

func TestRequireEnvironment_TypedNil(t *testing.T) {
	var timer *environment.Timer
	var radio *environment.LoopbackRadio
	var gauge *environment.CoulombCounter

	_, err := NewTriggerAgent(timer)
	assert.ErrorIs(t, err, core.ErrMissingEnvironment)
	_, err = NewRadioAgent(radio)
	assert.ErrorIs(t, err, core.ErrMissingEnvironment)
	_, err = NewPowerAgent(gauge)
	assert.ErrorIs(t, err, core.ErrMissingEnvironment)

	assert.NoError(t, requireEnvironment("sensor agent", environment.NewScriptedSensor()))
}

func TestNewSensorAgent_InvalidTable(t *testing.T) {
	_, err := NewSensorAgent(environment.NewScriptedSensor(), func(o *SensorAgentOptions) {
		o.Table = config.ModeTable{}
	})
	assert.ErrorIs(t, err, config.ErrInvalid)
}

func TestSensorAgent_ObservePublishes(t *testing.T) {
	alarms := testutil.NewAlarmRecorder()
	a := newSensor(t, environment.NewScriptedSensor(21.5, 22), alarms)
	assert.Equal(t, "sensor", a.Name())
	assert.False(t, a.Initialized())

	var io core.SensorInterface
	a.Observe(&io)

	assert.True(t, a.Initialized())
	assert.Equal(t, 21.5, io.Outputs.MeasuredData)
	assert.Equal(t, core.PowerEstimate{Power: 10, Covariance: 0.1}, io.Outputs.PredictedPower)
	assert.Equal(t, 10.0, io.Outputs.PredictedPowerIncrement, "first cycle reports the full default mode power")

	a.Observe(&io)
	assert.Equal(t, 22.0, io.Outputs.MeasuredData)
	assert.Zero(t, io.Outputs.PredictedPowerIncrement)
	assert.Empty(t, alarms.Codes())
}

func TestSensorAgent_MeasurementError(t *testing.T) {
	alarms := testutil.NewAlarmRecorder()
	a := newSensor(t, environment.NewScriptedSensor(math.NaN(), 3), alarms)

	var io core.SensorInterface
	a.Observe(&io)
	assert.True(t, math.IsNaN(io.Outputs.MeasuredData))
	assert.Equal(t, []core.AlarmCode{core.AlarmMeasurementError}, alarms.Codes())

	a.Observe(&io)
	assert.Equal(t, 3.0, io.Outputs.MeasuredData)
	assert.Equal(t, 1, alarms.Count(core.AlarmMeasurementError))
}

func TestSensorAgent_SetModeIncrement(t *testing.T) {
	a := newSensor(t, environment.NewScriptedSensor(1), testutil.NewAlarmRecorder())

	var io core.SensorInterface
	a.Observe(&io)
	require.NoError(t, a.SetMode(config.HighPowerMode))
	require.NoError(t, a.SetMode(config.LowPowerMode))
	a.Observe(&io)

	assert.Equal(t, config.LowPowerMode, a.Mode())
	assert.Equal(t, 5.0, io.Outputs.PredictedPower.Power)
	assert.Equal(t, -5.0, io.Outputs.PredictedPowerIncrement, "increments accumulate until reported")

	err := a.SetMode(7)
	assert.ErrorIs(t, err, ErrUnknownMode)
	assert.Equal(t, config.LowPowerMode, a.Mode())
}

func TestSensorAgent_ModeSelection(t *testing.T) {
	tests := []struct {
		name   string
		inputs core.SensorInputs
		mode   int
	}{
		{"no targets keep default", core.SensorInputs{}, config.StandardMode},
		{"accuracy selects high", core.SensorInputs{AccuracyTarget: 12}, config.HighPowerMode},
		{"power budget selects low", core.SensorInputs{PowerTarget: 6}, config.LowPowerMode},
		{"cheapest meeting both", core.SensorInputs{AccuracyTarget: 5, PowerTarget: 12}, config.LowPowerMode},
		{"unmeetable keeps current", core.SensorInputs{AccuracyTarget: 20}, config.StandardMode},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := newSensor(t, environment.NewScriptedSensor(1), testutil.NewAlarmRecorder())
			io := core.SensorInterface{Inputs: tt.inputs}
			a.Observe(&io)
			assert.Equal(t, tt.mode, a.Mode())
		})
	}
}

func TestSensorAgent_ActProgramsMode(t *testing.T) {
	env := &testutil.MockSensorEnvironment{Data: 4}
	env.On("Observe", mock.Anything).Return()
	env.On("Act", core.SensorActuation{Mode: config.HighPowerMode}).Return().Once()

	a := newSensor(t, env, testutil.NewAlarmRecorder())
	io := core.SensorInterface{Inputs: core.SensorInputs{AccuracyTarget: 15}}
	a.Oda(&io)

	assert.Equal(t, 4.0, io.Outputs.MeasuredData)
	env.AssertExpectations(t)
}

func TestSensorAgent_CorrectionIsPerMode(t *testing.T) {
	a := newSensor(t, environment.NewScriptedSensor(1), testutil.NewAlarmRecorder())

	a.ApplyCorrection(0.5, 4)
	assert.InDelta(t, 12.0, a.Estimate().Power, 1e-12)
	assert.InDelta(t, 0.05, a.Estimate().Covariance, 1e-12)

	require.NoError(t, a.SetMode(config.LowPowerMode))
	assert.Equal(t, core.PowerEstimate{Power: 5, Covariance: 0.1}, a.Estimate())

	require.NoError(t, a.SetMode(config.StandardMode))
	assert.InDelta(t, 12.0, a.Estimate().Power, 1e-12)
}
