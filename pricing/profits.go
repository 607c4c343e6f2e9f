// Package pricing turns master dual prices into knapsack profits, asks an
// exact 0/1 knapsack oracle for the most profitable bin, and reports the
// reduced cost of the pattern it implies.
package pricing

import "math"

const (
	DefaultScale   = 1e6
	DefaultEpsilon = 1e-6
)

// Profits maps dual prices to integral knapsack profits: the positive part of
// each dual, multiplied by scale and truncated. Items with a zero or negative
// dual get profit 0 and can never make a pattern attractive.
func Profits(duals []float64, scale float64) []int64 {
	profits := make([]int64, len(duals))
	for i, d := range duals {
		if d > 0 {
			profits[i] = int64(math.Floor(d * scale))
		}
	}
	return profits
}

// ReducedCost of a pattern whose items have total scaled profit profit.
// Every master column costs 1.
func ReducedCost(profit int64, scale float64) float64 {
	return 1 - float64(profit)/scale
}
