package pricing

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Selection is an optimal 0/1 knapsack solution: its total profit and, per
// item, whether it is taken.
type Selection struct {
	Profit int64
	Take   []bool
}

// Oracle solves max Σ p_i x_i s.t. Σ w_i x_i ≤ capacity, x binary, exactly.
// Any optimal selection may be returned; only the profit matters for pricing.
type Oracle interface {
	Solve(ctx context.Context, profits []int64, weights []int, capacity int) (Selection, error)
}

const defaultCellBudget = 1 << 24

// Auto uses the DP table when it fits CellBudget and branch and bound
// otherwise.
type Auto struct {
	CellBudget int
}

func (a Auto) Solve(ctx context.Context, profits []int64, weights []int, capacity int) (Selection, error) {
	budget := a.CellBudget
	if budget <= 0 {
		budget = defaultCellBudget
	}
	if TableCells(len(weights), capacity) <= budget {
		sel, err := DP{MaxCells: budget}.Solve(ctx, profits, weights, capacity)
		if !errors.Is(err, ErrTableTooLarge) {
			return sel, err
		}
	}
	return BranchBound{}.Solve(ctx, profits, weights, capacity)
}

// ByName returns the oracle registered under name. The empty name means auto.
func ByName(name string) (Oracle, error) {
	switch strings.ToLower(name) {
	case "", "auto":
		return Auto{}, nil
	case "dp":
		return DP{}, nil
	case "branch", "bb":
		return BranchBound{}, nil
	case "dd", "diagram":
		return Diagram{}, nil
	case "pb", "sat":
		return PseudoBoolean{}, nil
	}
	return nil, fmt.Errorf("unknown knapsack oracle %q (want auto, dp, dd, branch or pb)", name)
}

func checkArgs(profits []int64, weights []int, capacity int) error {
	if capacity <= 0 {
		return fmt.Errorf("capacity must be positive, got %d", capacity)
	}
	if len(profits) != len(weights) {
		return fmt.Errorf("%d profits for %d weights", len(profits), len(weights))
	}
	for i, w := range weights {
		if w <= 0 {
			return fmt.Errorf("item %d has non-positive weight %d", i, w)
		}
		if profits[i] < 0 {
			return fmt.Errorf("item %d has negative profit %d", i, profits[i])
		}
	}
	return nil
}
