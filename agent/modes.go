package agent

import (
	"errors"
	"fmt"

	"github.com/hupe1980/awarenode/config"
	"github.com/hupe1980/awarenode/core"
)

// ErrUnknownMode is returned when a mode index is outside the mode table.
var ErrUnknownMode = errors.New("unknown mode")

// modeTable is the per-agent copy of a power-cost table. Each mode keeps its
// own estimate so corrections learned in one mode do not leak into another.
type modeTable struct {
	modes     []config.Mode
	estimates []core.PowerEstimate
	current   int
	increment float64
}

// newModeTable copies t. The pending increment starts at the full power of
// the default mode: from the fusion's point of view the subsystem was just
// switched on.
func newModeTable(t config.ModeTable) *modeTable {
	m := &modeTable{
		modes:     append([]config.Mode(nil), t.Modes...),
		estimates: make([]core.PowerEstimate, len(t.Modes)),
		current:   t.Default,
	}
	for i, mode := range t.Modes {
		m.estimates[i] = mode.Estimate()
	}
	m.increment = m.estimates[m.current].Power
	return m
}

func (m *modeTable) set(i int) error {
	if i < 0 || i >= len(m.estimates) {
		return fmt.Errorf("%w: %d (table has %d modes)", ErrUnknownMode, i, len(m.estimates))
	}
	m.increment += m.estimates[i].Power - m.estimates[m.current].Power
	m.current = i
	return nil
}

func (m *modeTable) estimate() core.PowerEstimate { return m.estimates[m.current] }

func (m *modeTable) correct(gain, residual float64) {
	m.estimates[m.current] = m.estimates[m.current].Corrected(gain, residual)
}

// takeIncrement returns the pending increment and clears it.
func (m *modeTable) takeIncrement() float64 {
	inc := m.increment
	m.increment = 0
	return inc
}

func (m *modeTable) name(i int) string {
	if i >= 0 && i < len(m.modes) && m.modes[i].Name != "" {
		return m.modes[i].Name
	}
	return fmt.Sprintf("mode_%d", i)
}
