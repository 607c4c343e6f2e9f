package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProfitsSign(t *testing.T) {
	profits := Profits([]float64{0.5, -0.25, 0, 1e-9, -1e-9}, 1e6)
	require.Equal(t, []int64{500000, 0, 0, 0, 0}, profits)
}

func TestProfitsScale(t *testing.T) {
	duals := []float64{0.333333333, 1, 0.0000015}
	require.Equal(t, []int64{333, 1000, 0}, Profits(duals, 1e3))
	require.Equal(t, []int64{333333, 1000000, 1}, Profits(duals, 1e6))
}

func TestProfitsNeverOverestimate(t *testing.T) {
	duals := []float64{0.1, 0.2, 0.7, 0.999999}
	for _, scale := range []float64{10, 1e3, 1e6} {
		for i, p := range Profits(duals, scale) {
			assert.LessOrEqual(t, float64(p)/scale, duals[i])
		}
	}
}

func TestReducedCost(t *testing.T) {
	assert.InDelta(t, 0.0, ReducedCost(1000000, 1e6), 1e-12)
	assert.InDelta(t, -0.5, ReducedCost(1500000, 1e6), 1e-12)
	assert.InDelta(t, 1.0, ReducedCost(0, 1e6), 1e-12)
}
