package util

import "github.com/hupe1980/awarenode/core"

// MovingAverage is a fixed-window average over a circular buffer.
//
// While the window is still filling the value is the incremental mean of the
// samples seen so far, so a short history is not diluted by empty slots. Once
// the write pointer wraps for the first time the average switches to the
// circular update avg += (new-old)/N.
type MovingAverage struct {
	buf         []float64
	ptr         int
	initialized bool
	avg         float64
	sum         float64
}

// NewMovingAverage creates an average over a window of n samples.
func NewMovingAverage(n int) *MovingAverage {
	core.Invariant(n > 0, "moving average window must be positive, got %d", n)
	return &MovingAverage{buf: make([]float64, n)}
}

// Add folds v into the average and returns the new value.
func (m *MovingAverage) Add(v float64) float64 {
	n := len(m.buf)
	old := m.buf[m.ptr]
	m.buf[m.ptr] = v
	m.sum += v - old
	m.ptr++

	if m.initialized {
		m.avg += (v - old) / float64(n)
	} else {
		m.avg += (v - m.avg) / float64(m.ptr)
		if m.ptr >= n {
			m.initialized = true
		}
	}

	if m.ptr >= n {
		m.ptr = 0
	}
	return m.avg
}

// Value returns the current average.
func (m *MovingAverage) Value() float64 { return m.avg }

// Sum returns the running sum of the samples in the window.
func (m *MovingAverage) Sum() float64 { return m.sum }

// Initialized reports whether the window has been filled at least once.
func (m *MovingAverage) Initialized() bool { return m.initialized }

// Len returns the window size.
func (m *MovingAverage) Len() int { return len(m.buf) }

// Count returns how many slots currently hold samples.
func (m *MovingAverage) Count() int {
	if m.initialized {
		return len(m.buf)
	}
	return m.ptr
}

// Reset clears all samples.
func (m *MovingAverage) Reset() {
	for i := range m.buf {
		m.buf[i] = 0
	}
	m.ptr = 0
	m.initialized = false
	m.avg = 0
	m.sum = 0
}
