package agent

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/awarenode/config"
	"github.com/hupe1980/awarenode/core"
	"github.com/hupe1980/awarenode/environment"
	"github.com/hupe1980/awarenode/internal/testutil"
)

func newTrigger(t *testing.T, alarms *testutil.AlarmRecorder) (*TriggerAgent, *environment.Timer) {
	t.Helper()
	timer := environment.NewTimer()
	a, err := NewTriggerAgent(timer, func(o *TriggerAgentOptions) {
		o.Alarm = alarms.Func()
	})
	require.NoError(t, err)
	return a, timer
}

func TestStep(t *testing.T) {
	tests := []struct {
		target int
		want   int
	}{
		{0, -1},
		{1, -1},
		{24, -1},
		{25, -2},
		{50, -3},
		{100, -5},
		{-1, 1},
		{-30, 2},
		{-100, 5},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Step(tt.target, 25), "target %d", tt.target)
	}
}

func TestNewTriggerAgent_Errors(t *testing.T) {
	_, err := NewTriggerAgent(nil)
	assert.ErrorIs(t, err, core.ErrMissingEnvironment)

	_, err = NewTriggerAgent(environment.NewTimer(), func(o *TriggerAgentOptions) {
		o.Config.UpdateStep = 0
	})
	assert.ErrorIs(t, err, config.ErrInvalid)
}

func TestTriggerAgent_PositiveTargetShortensPeriod(t *testing.T) {
	alarms := testutil.NewAlarmRecorder()
	a, timer := newTrigger(t, alarms)
	require.Equal(t, 5, a.Index())

	io := core.TriggerInterface{Inputs: core.TriggerInputs{SamplingTarget: 50}}
	a.Oda(&io)

	assert.Equal(t, 2, a.Index())
	assert.Equal(t, 15*time.Second, io.Outputs.Periodicity)
	assert.Equal(t, 15*time.Second, timer.Period())
	assert.Zero(t, io.Inputs.SamplingTarget, "target is consumed")

	a.Oda(&io)
	assert.Equal(t, 2, a.Index(), "consumed target does not move the index again")
	assert.Empty(t, alarms.Codes())
}

func TestTriggerAgent_NegativeTargetLengthensPeriod(t *testing.T) {
	a, _ := newTrigger(t, testutil.NewAlarmRecorder())

	io := core.TriggerInterface{Inputs: core.TriggerInputs{SamplingTarget: -30}}
	a.Observe(&io)

	assert.Equal(t, 7, a.Index())
	assert.Equal(t, 30*time.Minute, io.Outputs.Periodicity)
}

func TestTriggerAgent_TargetIsClamped(t *testing.T) {
	a, _ := newTrigger(t, testutil.NewAlarmRecorder())

	io := core.TriggerInterface{Inputs: core.TriggerInputs{SamplingTarget: 1000}}
	a.Observe(&io)

	assert.Equal(t, 0, a.Index(), "1000 behaves like 100")
}

func TestTriggerAgent_SaturationAlarm(t *testing.T) {
	alarms := testutil.NewAlarmRecorder()
	a, _ := newTrigger(t, alarms)

	io := core.TriggerInterface{Inputs: core.TriggerInputs{SamplingTarget: 100}}
	a.Observe(&io)
	require.Equal(t, 0, a.Index())
	assert.Empty(t, alarms.Codes())

	io.Inputs.SamplingTarget = 10
	a.Observe(&io)
	assert.Equal(t, 0, a.Index())
	assert.Equal(t, []core.AlarmCode{core.AlarmSamplingSaturated}, alarms.Codes())

	for i := 0; i < 4; i++ {
		io.Inputs.SamplingTarget = -100
		a.Observe(&io)
	}
	assert.Equal(t, 11, a.Index())
	assert.Equal(t, 24*time.Hour, a.Periodicity())
	assert.Equal(t, 2, alarms.Count(core.AlarmSamplingSaturated))
}

func TestTriggerAgent_ActProgramsTimer(t *testing.T) {
	env := &testutil.MockTriggerEnvironment{}
	env.On("Observe", mock.Anything).Return()
	env.On("Act", core.TriggerActuation{Periodicity: 5 * time.Minute}).Return().Once()

	a, err := NewTriggerAgent(env)
	require.NoError(t, err)

	var io core.TriggerInterface
	a.Oda(&io)
	env.AssertExpectations(t)
}
