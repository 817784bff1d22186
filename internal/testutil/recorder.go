package testutil

import (
	"sync"

	"github.com/hupe1980/awarenode/core"
)

// AlarmRecorder collects alarm codes raised through its Func.
type AlarmRecorder struct {
	mu    sync.Mutex
	codes []core.AlarmCode
}

// NewAlarmRecorder creates an empty recorder.
func NewAlarmRecorder() *AlarmRecorder { return &AlarmRecorder{} }

// Func returns the alarm callback feeding the recorder.
func (r *AlarmRecorder) Func() core.AlarmFunc {
	return func(code core.AlarmCode) {
		r.mu.Lock()
		defer r.mu.Unlock()
		r.codes = append(r.codes, code)
	}
}

// Codes returns a copy of all recorded codes in order.
func (r *AlarmRecorder) Codes() []core.AlarmCode {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]core.AlarmCode(nil), r.codes...)
}

// Count returns how often code was raised.
func (r *AlarmRecorder) Count(code core.AlarmCode) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, c := range r.codes {
		if c == code {
			n++
		}
	}
	return n
}

// Counter counts depletion events.
type Counter struct {
	mu sync.Mutex
	n  int
}

// Func returns the depletion callback feeding the counter.
func (c *Counter) Func() core.DepletionFunc {
	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		c.n++
	}
}

// Value returns the number of events.
func (c *Counter) Value() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.n
}
