// Package consistency implements the three binary data-quality checks that
// gate an agent's confidence: plausibility (range), consistency (rate of
// change) and cross-validity (deviation from an expected value).
//
// Every check returns exactly Min or Max. NaN inputs never pass a check.
package consistency

import "math"

// Check results.
const (
	Min = 0
	Max = 100
)

// Plausibility returns Max when lo <= value <= hi and Min otherwise.
func Plausibility(value, lo, hi float64) int {
	if value >= lo && value <= hi {
		return Max
	}
	return Min
}

// Consistency returns Min when rate exceeds maxRate.
func Consistency(rate, maxRate float64) int {
	if rate <= maxRate {
		return Max
	}
	return Min
}

// CrossValidity returns Min when value deviates from expected by more than
// maxDeviation.
func CrossValidity(value, expected, maxDeviation float64) int {
	if math.Abs(value-expected) <= maxDeviation {
		return Max
	}
	return Min
}

// Confidence is the integer mean of a set of check results. It returns Min for
// an empty set.
func Confidence(results ...int) int {
	if len(results) == 0 {
		return Min
	}
	sum := 0
	for _, r := range results {
		sum += r
	}
	return sum / len(results)
}
