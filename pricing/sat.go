package pricing

import (
	"context"
	"fmt"
	"sort"

	"github.com/crillab/gophersat/solver"
)

// PseudoBoolean prices with a general-purpose solver instead of a dedicated
// knapsack code: the capacity is a pseudo-boolean constraint for gophersat
// and the profit is maximised by bisection on a Σ p_i x_i ≥ target cut.
type PseudoBoolean struct{}

func (PseudoBoolean) Solve(ctx context.Context, profits []int64, weights []int, capacity int) (Selection, error) {
	if err := checkArgs(profits, weights, capacity); err != nil {
		return Selection{}, err
	}
	var items []int
	total, totalWeight := int64(0), 0
	for i, w := range weights {
		if profits[i] > 0 && w <= capacity {
			items = append(items, i)
			total += profits[i]
			totalWeight += w
		}
	}
	take := make([]bool, len(weights))
	if totalWeight <= capacity {
		for _, i := range items {
			take[i] = true
		}
		return Selection{Profit: total, Take: take}, nil
	}

	lits := make([]int, len(items))
	ws := make([]int, len(items))
	ps := make([]int, len(items))
	for k, i := range items {
		lits[k] = k + 1
		ws[k] = weights[i]
		ps[k] = int(profits[i])
	}
	fits := solver.LtEq(lits, ws, capacity)

	// lo is always reachable, hi never is
	lo, model := greedy(items, profits, weights, capacity)
	hi := total + 1
	for hi-lo > 1 {
		if err := ctx.Err(); err != nil {
			return Selection{}, err
		}
		mid := lo + (hi-lo)/2
		pb := solver.ParsePBConstrs([]solver.PBConstr{fits, solver.GtEq(lits, ps, int(mid))})
		s := solver.New(pb)
		switch s.Solve() {
		case solver.Sat:
			values := s.Model()
			got := make([]bool, len(items))
			reached := int64(0)
			for k := range items {
				if k < len(values) && values[k] {
					got[k] = true
					reached += profits[items[k]]
				}
			}
			if reached < mid {
				return Selection{}, fmt.Errorf("solver model reaches %d, asked for at least %d", reached, mid)
			}
			lo, model = reached, got
		case solver.Unsat:
			hi = mid
		default:
			return Selection{}, fmt.Errorf("solver could not decide profit target %d", mid)
		}
	}
	for k, i := range items {
		take[i] = model[k]
	}
	return Selection{Profit: lo, Take: take}, nil
}

// greedy fills by profit density; it seeds the bisection with a reachable
// lower bound.
func greedy(items []int, profits []int64, weights []int, capacity int) (int64, []bool) {
	order := make([]int, len(items))
	for k := range order {
		order[k] = k
	}
	sort.SliceStable(order, func(a, b int) bool {
		ia, ib := items[order[a]], items[order[b]]
		return float64(profits[ia])*float64(weights[ib]) > float64(profits[ib])*float64(weights[ia])
	})
	chosen := make([]bool, len(items))
	room, profit := capacity, int64(0)
	for _, k := range order {
		if w := weights[items[k]]; w <= room {
			room -= w
			profit += profits[items[k]]
			chosen[k] = true
		}
	}
	return profit, chosen
}
