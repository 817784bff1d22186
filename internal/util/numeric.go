package util

import (
	"cmp"
	"math"

	"github.com/hupe1980/awarenode/core"
)

// RateOfChange returns the relative change between two consecutive values.
// The reference is the smaller magnitude of the two, floored at minReference
// so values near zero do not blow the rate up.
func RateOfChange(value, previous, minReference float64) float64 {
	ref := math.Max(math.Min(math.Abs(value), math.Abs(previous)), minReference)
	core.Invariant(ref != 0, "rate reference is zero (minReference=%v)", minReference)
	return math.Abs(value-previous) / ref
}

// BoundedUpdate nudges predicted towards observed by gain.
func BoundedUpdate(predicted, observed, gain float64) float64 {
	return predicted + gain*(observed-predicted)
}

// Saturate clamps v into [lo, hi].
func Saturate[T cmp.Ordered](v, lo, hi T) T {
	return min(max(v, lo), hi)
}

// SaturateUint32 converts v to uint32, clamping to [0, MaxUint32]. NaN maps to 0.
func SaturateUint32(v float64) uint32 {
	switch {
	case math.IsNaN(v) || v <= 0:
		return 0
	case v >= math.MaxUint32:
		return math.MaxUint32
	default:
		return uint32(v)
	}
}

// SaturateIndex converts v to an int index clamped to [lo, hi]. NaN maps to lo.
func SaturateIndex(v float64, lo, hi int) int {
	switch {
	case math.IsNaN(v) || v <= float64(lo):
		return lo
	case v >= float64(hi):
		return hi
	default:
		return int(v)
	}
}
