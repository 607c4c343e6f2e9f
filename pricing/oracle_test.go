package pricing

import (
	"context"
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

func bruteForce(profits []int64, weights []int, capacity int) int64 {
	best := int64(0)
	for mask := 0; mask < 1<<len(weights); mask++ {
		p, w := int64(0), 0
		for i := range weights {
			if mask&(1<<i) != 0 {
				p += profits[i]
				w += weights[i]
			}
		}
		if w <= capacity && p > best {
			best = p
		}
	}
	return best
}

func checkSelection(t *testing.T, sel Selection, profits []int64, weights []int, capacity int) {
	t.Helper()
	require.Len(t, sel.Take, len(weights))
	p, w := int64(0), 0
	for i, taken := range sel.Take {
		if taken {
			p += profits[i]
			w += weights[i]
		}
	}
	require.LessOrEqual(t, w, capacity)
	require.Equal(t, sel.Profit, p)
}

func oracles() map[string]Oracle {
	return map[string]Oracle{
		"dp":     DP{},
		"branch": BranchBound{},
		"dd":     Diagram{},
		"pb":     PseudoBoolean{},
		"auto":   Auto{},
	}
}

func TestOraclesMatchBruteForce(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for name, oracle := range oracles() {
		t.Run(name, func(t *testing.T) {
			for round := 0; round < 40; round++ {
				n := 1 + rng.Intn(10)
				capacity := 1 + rng.Intn(30)
				profits := make([]int64, n)
				weights := make([]int, n)
				for i := range weights {
					weights[i] = 1 + rng.Intn(20)
					if rng.Intn(4) > 0 {
						profits[i] = int64(rng.Intn(1000000))
					}
				}
				sel, err := oracle.Solve(context.Background(), profits, weights, capacity)
				require.NoError(t, err)
				checkSelection(t, sel, profits, weights, capacity)
				require.Equal(t, bruteForce(profits, weights, capacity), sel.Profit, "round %d", round)
			}
		})
	}
}

func TestOraclesKnownInstance(t *testing.T) {
	profits := []int64{60, 100, 120}
	weights := []int{10, 20, 30}
	for name, oracle := range oracles() {
		t.Run(name, func(t *testing.T) {
			sel, err := oracle.Solve(context.Background(), profits, weights, 50)
			require.NoError(t, err)
			require.Equal(t, int64(220), sel.Profit)
			require.Equal(t, []bool{false, true, true}, sel.Take)
		})
	}
}

func TestOraclesZeroProfits(t *testing.T) {
	for name, oracle := range oracles() {
		t.Run(name, func(t *testing.T) {
			sel, err := oracle.Solve(context.Background(), []int64{0, 0}, []int{1, 2}, 5)
			require.NoError(t, err)
			require.Zero(t, sel.Profit)
		})
	}
}

func TestOraclesRejectBadInput(t *testing.T) {
	for name, oracle := range oracles() {
		t.Run(name, func(t *testing.T) {
			_, err := oracle.Solve(context.Background(), []int64{1}, []int{1}, 0)
			require.Error(t, err)
			_, err = oracle.Solve(context.Background(), []int64{1, 2}, []int{1}, 3)
			require.Error(t, err)
			_, err = oracle.Solve(context.Background(), []int64{-1}, []int{1}, 3)
			require.Error(t, err)
		})
	}
}

func TestDPCellLimit(t *testing.T) {
	_, err := DP{MaxCells: 10}.Solve(context.Background(), []int64{1, 1}, []int{1, 1}, 100)
	require.ErrorIs(t, err, ErrTableTooLarge)

	// (2+1)*(4+1) cells, exactly at the limit
	sel, err := DP{MaxCells: 15}.Solve(context.Background(), []int64{3, 4}, []int{1, 1}, 4)
	require.NoError(t, err)
	require.Equal(t, int64(7), sel.Profit)
}

func TestAutoFallsBackAtTableBoundary(t *testing.T) {
	// n*(capacity+1) = 10 fits the budget but the table needs 15 cells
	sel, err := Auto{CellBudget: 10}.Solve(context.Background(), []int64{3, 4}, []int{1, 1}, 4)
	require.NoError(t, err)
	require.Equal(t, int64(7), sel.Profit)
	require.Equal(t, []bool{true, true}, sel.Take)

	// the default budget is exceeded, so branch and bound answers
	sel, err = Auto{}.Solve(context.Background(), []int64{5, 6}, []int{1 << 24, 1 << 23}, 1<<24)
	require.NoError(t, err)
	require.Equal(t, int64(6), sel.Profit)
}

func TestTableCells(t *testing.T) {
	require.Equal(t, 15, TableCells(2, 4))
	require.Equal(t, math.MaxInt, TableCells(3, math.MaxInt-1))
}

func TestSolveDPGeneric(t *testing.T) {
	best, take, err := SolveDP(context.Background(), []int32{3, 4, 5}, []int{2, 3, 4}, 5)
	require.NoError(t, err)
	require.Equal(t, int32(7), best)
	require.Equal(t, []bool{true, true, false}, take)
}

func TestDiagramWidthLimit(t *testing.T) {
	profits := []int64{1, 2, 3, 4}
	weights := []int{1, 2, 3, 4}
	_, err := Diagram{MaxNodes: 2}.Solve(context.Background(), profits, weights, 10)
	require.ErrorContains(t, err, "limit is 2")

	sel, err := Diagram{MaxNodes: 64}.Solve(context.Background(), profits, weights, 10)
	require.NoError(t, err)
	require.Equal(t, int64(10), sel.Profit)
}

func TestSolveDiagramGeneric(t *testing.T) {
	best, take, err := SolveDiagram(context.Background(), []int32{3, 4, 5}, []int{2, 3, 4}, 5, 0)
	require.NoError(t, err)
	require.Equal(t, int32(7), best)
	require.Equal(t, []bool{true, true, false}, take)
}

func TestParetoFront(t *testing.T) {
	layer := []*ddNode[int]{{used: 4, profit: 5}, {used: 1, profit: 2}, {used: 3, profit: 2}, {used: 5, profit: 9}}
	front := paretoFront(layer)
	require.Len(t, front, 3)
	for i, want := range []int{1, 4, 5} {
		require.Equal(t, want, front[i].used)
	}
}

func TestByName(t *testing.T) {
	for _, name := range []string{"", "auto", "dp", "DP", "branch", "dd", "pb"} {
		o, err := ByName(name)
		require.NoError(t, err, name)
		require.NotNil(t, o)
	}
	_, err := ByName("greedy")
	require.Error(t, err)
}
