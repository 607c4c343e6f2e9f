package pricing

import (
	"context"
	"sort"

	"github.com/oleiade/lane/v2"
)

// BranchBound is a best-first branch and bound over items sorted by
// profit density, bounded by the fractional (Dantzig) relaxation.
type BranchBound struct{}

type bbNode struct {
	parent *bbNode
	level  int // items [0, level) of the sorted order are decided
	taken  bool
	profit int64
	weight int
}

func (BranchBound) Solve(ctx context.Context, profits []int64, weights []int, capacity int) (Selection, error) {
	if err := checkArgs(profits, weights, capacity); err != nil {
		return Selection{}, err
	}
	order := make([]int, 0, len(weights))
	for i, w := range weights {
		if profits[i] > 0 && w <= capacity {
			order = append(order, i)
		}
	}
	sort.SliceStable(order, func(a, b int) bool {
		// p_a/w_a > p_b/w_b without division
		return float64(profits[order[a]])*float64(weights[order[b]]) >
			float64(profits[order[b]])*float64(weights[order[a]])
	})

	bound := func(node *bbNode) float64 {
		room := capacity - node.weight
		value := float64(node.profit)
		for _, i := range order[node.level:] {
			if weights[i] <= room {
				room -= weights[i]
				value += float64(profits[i])
				continue
			}
			value += float64(profits[i]) * float64(room) / float64(weights[i])
			break
		}
		return value
	}

	root := &bbNode{}
	best := root
	opens := lane.NewMinPriorityQueue[*bbNode, float64]()
	opens.Push(root, -bound(root))
	for popped := 0; ; popped++ {
		if popped%1024 == 0 {
			if err := ctx.Err(); err != nil {
				return Selection{}, err
			}
		}
		node, priority, ok := opens.Pop()
		if !ok {
			break
		}
		// profits are integral, so a bound below best+1 cannot improve
		if -priority < float64(best.profit+1)-1e-9 {
			break
		}
		if node.level == len(order) {
			continue
		}
		i := order[node.level]
		if node.weight+weights[i] <= capacity {
			with := &bbNode{parent: node, level: node.level + 1, taken: true,
				profit: node.profit + profits[i], weight: node.weight + weights[i]}
			if with.profit > best.profit {
				best = with
			}
			opens.Push(with, -bound(with))
		}
		without := &bbNode{parent: node, level: node.level + 1, profit: node.profit, weight: node.weight}
		opens.Push(without, -bound(without))
	}

	take := make([]bool, len(weights))
	for node := best; node.parent != nil; node = node.parent {
		if node.taken {
			take[order[node.level-1]] = true
		}
	}
	return Selection{Profit: best.profit, Take: take}, nil
}
