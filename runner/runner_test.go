package runner

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/hupe1980/awarenode/core"
	"github.com/hupe1980/awarenode/engine"
	"github.com/hupe1980/awarenode/internal/testutil"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type fakeCycler struct {
	mu        sync.Mutex
	cycles    uint64
	depleteAt uint64
	period    time.Duration
	onCycle   func(n uint64)
}

func (f *fakeCycler) Cycle() {
	f.mu.Lock()
	f.cycles++
	n := f.cycles
	f.mu.Unlock()
	if f.onCycle != nil {
		f.onCycle(n)
	}
}

func (f *fakeCycler) Periodicity() time.Duration { return f.period }

func (f *fakeCycler) Depleted() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.depleteAt > 0 && f.cycles >= f.depleteAt
}

func (f *fakeCycler) CycleCount() uint64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.cycles
}

func TestRunner_MaxCycles(t *testing.T) {
	c := &fakeCycler{}
	r := New(c, func(o *Options) { o.MaxCycles = 7 })

	res, err := r.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, StopMaxCycles, res.Reason)
	assert.Equal(t, uint64(7), res.Cycles)
	assert.Equal(t, uint64(7), c.CycleCount())
}

func TestRunner_StopOnDepletion(t *testing.T) {
	c := &fakeCycler{depleteAt: 4}
	r := New(c, func(o *Options) { o.MaxCycles = 100 })

	res, err := r.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, StopDepleted, res.Reason)
	assert.Equal(t, uint64(4), res.Cycles)
}

func TestRunner_IgnoreDepletion(t *testing.T) {
	c := &fakeCycler{depleteAt: 4}
	r := New(c, func(o *Options) {
		o.MaxCycles = 10
		o.StopOnDepletion = false
	})

	res, err := r.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, StopMaxCycles, res.Reason)
	assert.Equal(t, uint64(10), res.Cycles)
}

func TestRunner_CancelBetweenCycles(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	c := &fakeCycler{onCycle: func(n uint64) {
		if n == 3 {
			cancel()
		}
	}}
	r := New(c)

	res, err := r.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, StopCanceled, res.Reason)
	assert.Equal(t, uint64(3), res.Cycles, "the running cycle completes")
}

func TestRunner_WaitsScaledPeriod(t *testing.T) {
	c := &fakeCycler{period: time.Hour}
	r := New(c, func(o *Options) {
		o.MaxCycles = 3
		o.TimeScale = 1e-6
	})

	res, err := r.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, uint64(3), res.Cycles)
	assert.GreaterOrEqual(t, res.Elapsed, 2*3600*time.Microsecond)
}

func TestRunner_NoWaitAfterLastCycle(t *testing.T) {
	tests := []struct {
		name   string
		cycler *fakeCycler
		max    int
		reason StopReason
	}{
		{"max cycles", &fakeCycler{period: 24 * time.Hour}, 1, StopMaxCycles},
		{"depleted", &fakeCycler{period: 24 * time.Hour, depleteAt: 1}, 0, StopDepleted},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := New(tt.cycler, func(o *Options) {
				o.MaxCycles = tt.max
				o.TimeScale = 1
			})

			res, err := r.Run(context.Background())
			require.NoError(t, err)
			assert.Equal(t, tt.reason, res.Reason)
			assert.Equal(t, uint64(1), res.Cycles)
			assert.Less(t, res.Elapsed, time.Second)
		})
	}
}

func TestRunner_CancelDuringWait(t *testing.T) {
	c := &fakeCycler{period: time.Hour}
	r := New(c, func(o *Options) { o.TimeScale = 1 })

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	res, err := r.Run(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, uint64(1), res.Cycles)
}

func TestRunner_InvariantViolation(t *testing.T) {
	c := &fakeCycler{onCycle: func(n uint64) {
		core.Invariant(n < 2, "cycle %d broke", n)
	}}
	r := New(c)

	res, err := r.Run(context.Background())
	var v *core.InvariantViolation
	require.ErrorAs(t, err, &v)
	assert.Equal(t, "cycle 2 broke", v.Message)
	assert.Equal(t, StopViolation, res.Reason)
	assert.Equal(t, uint64(1), res.Cycles)
}

func TestRunner_StartStop(t *testing.T) {
	c := &fakeCycler{period: time.Hour}
	r := New(c, func(o *Options) { o.TimeScale = 1 })

	out, err := r.Start(context.Background())
	require.NoError(t, err)
	assert.True(t, r.Running())

	_, err = r.Start(context.Background())
	assert.ErrorIs(t, err, ErrAlreadyRunning)

	r.Stop()
	outcome := <-out
	assert.ErrorIs(t, outcome.Err, context.Canceled)
	assert.Equal(t, StopCanceled, outcome.Result.Reason)
	assert.False(t, r.Running())

	_, open := <-out
	assert.False(t, open)
}

func TestRunner_DrivesEngineToDepletion(t *testing.T) {
	rig := testutil.NewRig(200, 50)
	eng, err := engine.New(engine.Environments{
		Sensor:          rig.Sensor,
		Trigger:         rig.Timer,
		Radio:           rig.Radio,
		Power:           rig.Gauge,
		BatteryDepleted: rig.Depletions.Func(),
	})
	require.NoError(t, err)

	res, err := New(eng).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, StopDepleted, res.Reason)
	assert.Equal(t, uint64(18), res.Cycles)
	assert.Equal(t, 1, rig.Depletions.Value())
}
