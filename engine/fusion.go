package engine

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/hupe1980/awarenode/core"
)

// ErrDegenerateConfidence is returned by Fuse when the confidence denominator
// is zero or not finite.
var ErrDegenerateConfidence = errors.New("fusion confidence is zero or not finite")

// FusionResult describes one fusion update.
type FusionResult struct {
	// Residual is the measured-minus-predicted consumption that was distributed.
	Residual float64
	// Confidence is Σ covariance_i*power_i plus the feedback covariance.
	Confidence float64
	// Sources names the sources in update order.
	Sources []string
	// Gains holds gain_i per source.
	Gains []float64
	// Before and After hold the estimates around the update.
	Before []core.PowerEstimate
	After  []core.PowerEstimate
}

// GainSum returns Σ gain_i.
func (r FusionResult) GainSum() float64 { return floats.Sum(r.Gains) }

// Fuse distributes the feedback residual across sources.
//
// The denominator is computed once from pre-update snapshots:
//
//	confidence = Σ covariance_i*power_i + feedback.Covariance
//
// and each source then receives gain_i = covariance_i*power_i/confidence via
// ApplyCorrection(gain_i, residual), in slice order. Sources with a larger
// power×covariance product absorb more of the correction.
func Fuse(sources []core.PowerSource, feedback core.PowerEstimate) (FusionResult, error) {
	n := len(sources)
	res := FusionResult{
		Residual: feedback.Power,
		Sources:  make([]string, n),
		Gains:    make([]float64, n),
		Before:   make([]core.PowerEstimate, n),
		After:    make([]core.PowerEstimate, n),
	}

	pow := make([]float64, n)
	cov := make([]float64, n)
	for i, s := range sources {
		est := s.Estimate()
		res.Sources[i] = s.Name()
		res.Before[i] = est
		pow[i] = est.Power
		cov[i] = est.Covariance
	}

	res.Confidence = floats.Dot(cov, pow) + feedback.Covariance
	if res.Confidence == 0 || math.IsNaN(res.Confidence) || math.IsInf(res.Confidence, 0) {
		copy(res.After, res.Before)
		return res, fmt.Errorf("%w: %v", ErrDegenerateConfidence, res.Confidence)
	}

	floats.MulTo(res.Gains, cov, pow)
	floats.Scale(1/res.Confidence, res.Gains)

	for i, s := range sources {
		s.ApplyCorrection(res.Gains[i], res.Residual)
		res.After[i] = s.Estimate()
	}
	return res, nil
}
