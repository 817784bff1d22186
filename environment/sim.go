package environment

import (
	"math"
	"sync"
	"time"

	"github.com/hupe1980/awarenode/core"
)

// ScriptedSensor replays a fixed series of measurements and then keeps
// repeating the last one. It records the mode programmed by the agent.
type ScriptedSensor struct {
	mu     sync.Mutex
	values []float64
	next   int
	mode   int
	reads  int
}

// NewScriptedSensor creates a sensor replaying values. With no values it
// always reads 0.
func NewScriptedSensor(values ...float64) *ScriptedSensor {
	return &ScriptedSensor{values: append([]float64(nil), values...)}
}

// Observe implements core.SensorEnvironment.
func (s *ScriptedSensor) Observe(obs *core.SensorObservation) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reads++
	if len(s.values) == 0 {
		obs.Data = 0
		return
	}
	obs.Data = s.values[s.next]
	if s.next < len(s.values)-1 {
		s.next++
	}
}

// Act implements core.SensorEnvironment.
func (s *ScriptedSensor) Act(acts *core.SensorActuation) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mode = acts.Mode
}

// Mode returns the last programmed mode.
func (s *ScriptedSensor) Mode() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mode
}

// Reads returns how many measurements were taken.
func (s *ScriptedSensor) Reads() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reads
}

// WaveSensor produces a sine wave sampled once per observation.
type WaveSensor struct {
	mu        sync.Mutex
	offset    float64
	amplitude float64
	period    int
	step      int
	mode      int
}

// NewWaveSensor creates a sine source oscillating around offset with the
// given amplitude and a period expressed in samples.
func NewWaveSensor(offset, amplitude float64, period int) *WaveSensor {
	if period <= 0 {
		period = 1
	}
	return &WaveSensor{offset: offset, amplitude: amplitude, period: period}
}

// Observe implements core.SensorEnvironment.
func (s *WaveSensor) Observe(obs *core.SensorObservation) {
	s.mu.Lock()
	defer s.mu.Unlock()
	phase := 2 * math.Pi * float64(s.step) / float64(s.period)
	obs.Data = s.offset + s.amplitude*math.Sin(phase)
	s.step++
}

// Act implements core.SensorEnvironment.
func (s *WaveSensor) Act(acts *core.SensorActuation) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mode = acts.Mode
}

// Mode returns the last programmed mode.
func (s *WaveSensor) Mode() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mode
}

// Timer records the sampling period programmed by the trigger agent.
type Timer struct {
	mu       sync.Mutex
	period   time.Duration
	programs int
}

// NewTimer creates an unprogrammed timer.
func NewTimer() *Timer { return &Timer{} }

// Observe implements core.TriggerEnvironment.
func (t *Timer) Observe(_ *core.TriggerObservation) {}

// Act implements core.TriggerEnvironment.
func (t *Timer) Act(acts *core.TriggerActuation) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.period = acts.Periodicity
	t.programs++
}

// Period returns the last programmed period.
func (t *Timer) Period() time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.period
}

// Programs returns how often the timer was programmed.
func (t *Timer) Programs() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.programs
}

// LoopbackRadio records transmitted payloads. A mode requested with
// RequestMode is reported as a configuration change on the next observation.
type LoopbackRadio struct {
	mu      sync.Mutex
	pending bool
	mode    int
	sent    []float64
}

// NewLoopbackRadio creates a radio with an empty transmit log.
func NewLoopbackRadio() *LoopbackRadio { return &LoopbackRadio{} }

// RequestMode queues a configuration change to mode.
func (r *LoopbackRadio) RequestMode(mode int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pending = true
	r.mode = mode
}

// Observe implements core.RadioEnvironment.
func (r *LoopbackRadio) Observe(obs *core.RadioObservation) {
	r.mu.Lock()
	defer r.mu.Unlock()
	obs.ConfigChange = r.pending
	if r.pending {
		obs.Mode = r.mode
		r.pending = false
	}
}

// Act implements core.RadioEnvironment.
func (r *LoopbackRadio) Act(acts *core.RadioActuation) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, acts.Data)
}

// Sent returns a copy of every transmitted payload.
func (r *LoopbackRadio) Sent() []float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]float64(nil), r.sent...)
}

// CoulombCounter simulates a battery gauge whose cumulative charge grows by a
// fixed draw per observation. It records the last assessment reported by the
// power agent.
type CoulombCounter struct {
	mu          sync.Mutex
	draw        float64
	charge      float64
	voltage     float64
	temperature float64
	last        core.PowerActuation
}

// NewCoulombCounter creates a gauge drawing draw charge units per cycle.
func NewCoulombCounter(draw float64) *CoulombCounter {
	return &CoulombCounter{draw: draw, voltage: 3.7, temperature: 25}
}

// SetDraw changes the per-cycle draw.
func (c *CoulombCounter) SetDraw(draw float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.draw = draw
}

// Observe implements core.PowerEnvironment.
func (c *CoulombCounter) Observe(obs *core.PowerObservation) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.charge += c.draw
	obs.Battery = core.BatteryObservation{
		Voltage:     c.voltage,
		Temperature: c.temperature,
		Charge:      c.charge,
	}
}

// Act implements core.PowerEnvironment.
func (c *CoulombCounter) Act(acts *core.PowerActuation) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.last = *acts
}

// Charge returns the cumulative charge drawn.
func (c *CoulombCounter) Charge() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.charge
}

// LastActuation returns the last assessment reported by the power agent.
func (c *CoulombCounter) LastActuation() core.PowerActuation {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.last
}

var (
	_ core.SensorEnvironment  = (*ScriptedSensor)(nil)
	_ core.SensorEnvironment  = (*WaveSensor)(nil)
	_ core.TriggerEnvironment = (*Timer)(nil)
	_ core.RadioEnvironment   = (*LoopbackRadio)(nil)
	_ core.PowerEnvironment   = (*CoulombCounter)(nil)
)
