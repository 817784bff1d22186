package testutil

import (
	"github.com/stretchr/testify/mock"

	"github.com/hupe1980/awarenode/core"
)

// MockSensorEnvironment is a testify mock of core.SensorEnvironment. Set
// Data to control the measurement written by Observe.
type MockSensorEnvironment struct {
	mock.Mock
	Data float64
}

// Observe implements core.SensorEnvironment.
func (m *MockSensorEnvironment) Observe(obs *core.SensorObservation) {
	m.Called(obs)
	obs.Data = m.Data
}

// Act implements core.SensorEnvironment.
func (m *MockSensorEnvironment) Act(acts *core.SensorActuation) {
	m.Called(*acts)
}

// MockTriggerEnvironment is a testify mock of core.TriggerEnvironment.
type MockTriggerEnvironment struct {
	mock.Mock
}

// Observe implements core.TriggerEnvironment.
func (m *MockTriggerEnvironment) Observe(obs *core.TriggerObservation) {
	m.Called(obs)
}

// Act implements core.TriggerEnvironment.
func (m *MockTriggerEnvironment) Act(acts *core.TriggerActuation) {
	m.Called(*acts)
}

// MockRadioEnvironment is a testify mock of core.RadioEnvironment.
type MockRadioEnvironment struct {
	mock.Mock
}

// Observe implements core.RadioEnvironment.
func (m *MockRadioEnvironment) Observe(obs *core.RadioObservation) {
	m.Called(*obs)
}

// Act implements core.RadioEnvironment.
func (m *MockRadioEnvironment) Act(acts *core.RadioActuation) {
	m.Called(*acts)
}

var (
	_ core.SensorEnvironment  = (*MockSensorEnvironment)(nil)
	_ core.TriggerEnvironment = (*MockTriggerEnvironment)(nil)
	_ core.RadioEnvironment   = (*MockRadioEnvironment)(nil)
)
