package pricing

import (
	"context"
	"encoding/binary"
	"fmt"
	"hash/maphash"
	"slices"

	"golang.org/x/exp/constraints"
)

// Diagram builds the knapsack as a layered decision diagram, one layer per
// item with arcs for skip and take. Nodes with equal used capacity are
// merged keeping the more profitable path, and each layer is reduced to its
// Pareto front of (used capacity, profit) before expanding the next item.
type Diagram struct {
	// MaxNodes caps the width of any layer; zero means no cap. Exceeding it
	// is an error, never a silent truncation.
	MaxNodes int
}

func (d Diagram) Solve(ctx context.Context, profits []int64, weights []int, capacity int) (Selection, error) {
	if err := checkArgs(profits, weights, capacity); err != nil {
		return Selection{}, err
	}
	profit, take, err := SolveDiagram(ctx, profits, weights, capacity, d.MaxNodes)
	if err != nil {
		return Selection{}, err
	}
	return Selection{Profit: profit, Take: take}, nil
}

type ddNode[P constraints.Integer] struct {
	parent *ddNode[P]
	used   int
	profit P
	took   bool
}

func (n *ddNode[P]) transitionTo(take bool, weight int, profit P, capacity int) *ddNode[P] {
	if !take {
		return &ddNode[P]{parent: n, used: n.used, profit: n.profit}
	}
	if n.used+weight > capacity || profit <= 0 {
		return nil
	}
	return &ddNode[P]{parent: n, used: n.used + weight, profit: n.profit + profit, took: true}
}

func (n *ddNode[P]) hashBytes(buf []byte) []byte {
	return binary.LittleEndian.AppendUint64(buf[:0], uint64(n.used))
}

// paretoFront keeps the nodes not dominated by a lighter node of at least
// equal profit.
func paretoFront[P constraints.Integer](layer []*ddNode[P]) []*ddNode[P] {
	slices.SortStableFunc(layer, func(a, b *ddNode[P]) int {
		return a.used - b.used
	})
	front := layer[:0]
	for _, n := range layer {
		if len(front) > 0 && front[len(front)-1].profit >= n.profit {
			continue
		}
		front = append(front, n)
	}
	return front
}

// SolveDiagram returns the best profit and a selection reaching it.
func SolveDiagram[P constraints.Integer](ctx context.Context, profits []P, weights []int, capacity, maxNodes int) (P, []bool, error) {
	closed := map[uint64][]*ddNode[P]{}
	hasher := maphash.Hash{}
	var buf []byte
	parents := []*ddNode[P]{{}}
	for j := range weights {
		if err := ctx.Err(); err != nil {
			return 0, nil, err
		}
		var children []*ddNode[P]
		for _, parent := range parents {
			for _, take := range [2]bool{false, true} {
				child := parent.transitionTo(take, weights[j], profits[j], capacity)
				if child == nil {
					continue
				}
				buf = child.hashBytes(buf)
				hasher.Reset()
				hasher.Write(buf)
				hash := hasher.Sum64()
				merged := false
				for i, other := range closed[hash] {
					if other.used != child.used {
						continue
					}
					merged = true
					if child.profit > other.profit {
						*closed[hash][i] = *child
					}
					break
				}
				if !merged {
					closed[hash] = append(closed[hash], child)
					children = append(children, child)
				}
			}
		}
		clear(closed)
		parents = paretoFront(children)
		if maxNodes > 0 && len(parents) > maxNodes {
			return 0, nil, fmt.Errorf("decision diagram layer %d has %d nodes, limit is %d", j+1, len(parents), maxNodes)
		}
	}

	// the front is sorted by used capacity with strictly rising profit
	best := parents[len(parents)-1]
	take := make([]bool, len(weights))
	for n, j := best, len(weights)-1; n.parent != nil; n, j = n.parent, j-1 {
		take[j] = n.took
	}
	return best.profit, take, nil
}
