package consistency

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPlausibility(t *testing.T) {
	tests := []struct {
		name  string
		value float64
		want  int
	}{
		{"lower bound", 0, Max},
		{"inside", 42.5, Max},
		{"upper bound", 100, Max},
		{"below", -0.001, Min},
		{"above", 100.001, Min},
		{"nan", math.NaN(), Min},
		{"inf", math.Inf(1), Min},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Plausibility(tt.value, 0, 100))
		})
	}
}

func TestPlausibility_Sweep(t *testing.T) {
	lo, hi := -5.0, 5.0
	for v := -10.0; v <= 10.0; v += 0.25 {
		want := Min
		if v >= lo && v <= hi {
			want = Max
		}
		assert.Equal(t, want, Plausibility(v, lo, hi), "value %v", v)
	}
}

func TestConsistency(t *testing.T) {
	for rate := 0.0; rate <= 3.0; rate += 0.125 {
		want := Max
		if rate > 1.0 {
			want = Min
		}
		assert.Equal(t, want, Consistency(rate, 1.0), "rate %v", rate)
	}
	assert.Equal(t, Min, Consistency(math.NaN(), 1.0))
}

func TestCrossValidity(t *testing.T) {
	tests := []struct {
		name     string
		value    float64
		expected float64
		want     int
	}{
		{"equal", 10, 10, Max},
		{"at deviation above", 20, 10, Max},
		{"at deviation below", 0, 10, Max},
		{"beyond above", 20.5, 10, Min},
		{"beyond below", -0.5, 10, Min},
		{"nan", math.NaN(), 10, Min},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CrossValidity(tt.value, tt.expected, 10))
		})
	}
}

func TestConfidence(t *testing.T) {
	assert.Equal(t, Min, Confidence())
	assert.Equal(t, 33, Confidence(Max, Min, Min))
	assert.Equal(t, 66, Confidence(Max, Max, Min))
	assert.Equal(t, Max, Confidence(Max, Max, Max))
}
