package engine

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/awarenode/core"
)

func staticSources(ests ...core.PowerEstimate) []core.PowerSource {
	sources := make([]core.PowerSource, len(ests))
	for i, est := range ests {
		sources[i] = core.NewStaticSource(string(rune('a'+i)), est)
	}
	return sources
}

func TestFuse_Gains(t *testing.T) {
	sources := staticSources(
		core.PowerEstimate{Power: 10, Covariance: 10},
		core.PowerEstimate{Power: 0, Covariance: 0.1},
		core.PowerEstimate{Power: 10, Covariance: 0.1},
		core.PowerEstimate{Power: 100, Covariance: 0.1},
	)

	res, err := Fuse(sources, core.PowerEstimate{Power: 30, Covariance: 0.01})
	require.NoError(t, err)

	assert.Equal(t, []string{"a", "b", "c", "d"}, res.Sources)
	assert.InDelta(t, 111.01, res.Confidence, 1e-9)
	assert.InDelta(t, 100/111.01, res.Gains[0], 1e-12)
	assert.Zero(t, res.Gains[1], "a source with zero power takes no correction")
	assert.InDelta(t, 1/111.01, res.Gains[2], 1e-12)
	assert.InDelta(t, 10/111.01, res.Gains[3], 1e-12)
	assert.InDelta(t, 1-0.01/111.01, res.GainSum(), 1e-12)
}

func TestFuse_ConservesResidual(t *testing.T) {
	tests := []struct {
		name     string
		residual float64
		feedback float64
	}{
		{"positive residual", 30, 0.01},
		{"negative residual", -12.5, 0.01},
		{"exact without feedback covariance", 7, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sources := staticSources(
				core.PowerEstimate{Power: 10, Covariance: 10},
				core.PowerEstimate{Power: 10, Covariance: 0.1},
				core.PowerEstimate{Power: 100, Covariance: 0.1},
			)
			res, err := Fuse(sources, core.PowerEstimate{Power: tt.residual, Covariance: tt.feedback})
			require.NoError(t, err)

			moved := 0.0
			for i := range sources {
				moved += res.After[i].Power - res.Before[i].Power
			}
			want := tt.residual * (1 - tt.feedback/res.Confidence)
			assert.InDelta(t, want, moved, 1e-9)
			if tt.feedback == 0 {
				assert.InDelta(t, tt.residual, moved, 1e-9)
			}
		})
	}
}

func TestFuse_ShrinksCovariance(t *testing.T) {
	sources := staticSources(
		core.PowerEstimate{Power: 10, Covariance: 10},
		core.PowerEstimate{Power: 5, Covariance: 0.5},
		core.PowerEstimate{Power: 100, Covariance: 0.1},
	)

	for round := 0; round < 20; round++ {
		res, err := Fuse(sources, core.PowerEstimate{Power: 3, Covariance: 0.01})
		require.NoError(t, err)
		for i := range sources {
			assert.LessOrEqual(t, res.After[i].Covariance, res.Before[i].Covariance, "round %d source %d", round, i)
			assert.GreaterOrEqual(t, res.After[i].Covariance, 0.0)
		}
	}
}

func TestFuse_LargestProductAbsorbsMost(t *testing.T) {
	sources := staticSources(
		core.PowerEstimate{Power: 10, Covariance: 10},
		core.PowerEstimate{Power: 100, Covariance: 0.1},
	)

	res, err := Fuse(sources, core.PowerEstimate{Power: 20, Covariance: 0.01})
	require.NoError(t, err)

	assert.Greater(t, res.After[0].Power-res.Before[0].Power, res.After[1].Power-res.Before[1].Power)
}

func TestFuse_DegenerateConfidence(t *testing.T) {
	tests := []struct {
		name     string
		sources  []core.PowerSource
		feedback core.PowerEstimate
	}{
		{
			name:    "zero",
			sources: staticSources(core.PowerEstimate{Power: 10}, core.PowerEstimate{Power: 5}),
		},
		{
			name:     "nan",
			sources:  staticSources(core.PowerEstimate{Power: math.NaN(), Covariance: 1}),
			feedback: core.PowerEstimate{Covariance: 0.01},
		},
		{
			name:     "inf",
			sources:  staticSources(core.PowerEstimate{Power: math.Inf(1), Covariance: 1}),
			feedback: core.PowerEstimate{Covariance: 0.01},
		},
		{
			name: "no sources",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := Fuse(tt.sources, tt.feedback)
			assert.ErrorIs(t, err, ErrDegenerateConfidence)
			assert.Len(t, res.After, len(res.Before))
		})
	}
}
