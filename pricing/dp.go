package pricing

import (
	"context"
	"errors"
	"fmt"
	"math"

	"golang.org/x/exp/constraints"
)

var ErrTableTooLarge = errors.New("dp table too large")

// TableCells is the size of the DP table for n items, (n+1)*(capacity+1),
// saturating at math.MaxInt.
func TableCells(n, capacity int) int {
	if n < 0 || capacity < 0 {
		return 0
	}
	if capacity >= math.MaxInt || capacity+1 > math.MaxInt/(n+1) {
		return math.MaxInt
	}
	return (n + 1) * (capacity + 1)
}

// DP is the textbook dynamic program over (item, remaining capacity).
// MaxCells caps the table size; zero means no cap.
type DP struct {
	MaxCells int
}

func (d DP) Solve(ctx context.Context, profits []int64, weights []int, capacity int) (Selection, error) {
	if err := checkArgs(profits, weights, capacity); err != nil {
		return Selection{}, err
	}
	cells := TableCells(len(weights), capacity)
	if d.MaxCells > 0 && cells > d.MaxCells {
		return Selection{}, fmt.Errorf("%w: %d cells, limit is %d", ErrTableTooLarge, cells, d.MaxCells)
	}
	profit, take, err := SolveDP(ctx, profits, weights, capacity)
	if err != nil {
		return Selection{}, err
	}
	return Selection{Profit: profit, Take: take}, nil
}

// SolveDP returns the best profit and one selection reaching it. An item is
// taken only when it strictly improves the table entry, so among ties the
// selection leaves out later items.
func SolveDP[P constraints.Integer](ctx context.Context, profits []P, weights []int, capacity int) (P, []bool, error) {
	n := len(weights)
	cols := capacity + 1
	dp := make([]P, (n+1)*cols)
	for i := 1; i <= n; i++ {
		if err := ctx.Err(); err != nil {
			return 0, nil, err
		}
		wi, pi := weights[i-1], profits[i-1]
		row, prev := dp[i*cols:(i+1)*cols], dp[(i-1)*cols:i*cols]
		for w := 0; w < cols; w++ {
			row[w] = prev[w]
			if wi <= w && pi > 0 && prev[w-wi]+pi > row[w] {
				row[w] = prev[w-wi] + pi
			}
		}
	}

	take := make([]bool, n)
	w := capacity
	for i := n; i > 0; i-- {
		if dp[i*cols+w] != dp[(i-1)*cols+w] {
			take[i-1] = true
			w -= weights[i-1]
		}
	}
	return dp[n*cols+capacity], take, nil
}
