package core

import (
	"math"
	"sync"
)

// PowerEstimate is a point estimate of a component's power draw together with
// its uncertainty. Lower covariance means higher confidence.
type PowerEstimate struct {
	Power      float64 `yaml:"power" json:"power"`
	Covariance float64 `yaml:"covariance" json:"covariance"`
}

// Corrected returns the estimate after absorbing gain*residual. Covariance
// shrinks by gain*covariance and never drops below zero.
func (e PowerEstimate) Corrected(gain, residual float64) PowerEstimate {
	return PowerEstimate{
		Power:      e.Power + gain*residual,
		Covariance: math.Max(0, e.Covariance-gain*e.Covariance),
	}
}

// PowerSource is a read/update handle over a PowerEstimate owned by some
// component. Fusion reads snapshots through Estimate and writes back only via
// ApplyCorrection, so no mutable pointer crosses component boundaries.
type PowerSource interface {
	// Name identifies the source in logs and telemetry.
	Name() string
	// Estimate returns a snapshot of the current estimate.
	Estimate() PowerEstimate
	// ApplyCorrection folds gain*residual into the owned estimate.
	ApplyCorrection(gain, residual float64)
}

// StaticSource is a PowerSource for costs that no agent models, such as the
// node's base and idle draw. It is safe for concurrent use.
type StaticSource struct {
	name string
	mu   sync.RWMutex
	est  PowerEstimate
}

// NewStaticSource returns a StaticSource seeded with est.
func NewStaticSource(name string, est PowerEstimate) *StaticSource {
	return &StaticSource{name: name, est: est}
}

// Name implements PowerSource.
func (s *StaticSource) Name() string { return s.name }

// Estimate implements PowerSource.
func (s *StaticSource) Estimate() PowerEstimate {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.est
}

// ApplyCorrection implements PowerSource.
func (s *StaticSource) ApplyCorrection(gain, residual float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.est = s.est.Corrected(gain, residual)
}

var _ PowerSource = (*StaticSource)(nil)
