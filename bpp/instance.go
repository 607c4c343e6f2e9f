package bpp

import (
	"fmt"
	"math"
)

// MaxCapacity bounds the bin capacity so capacities and DP table sizes stay
// exact in int arithmetic.
const MaxCapacity = math.MaxInt32

type Item struct {
	Index  int
	Weight int
}

// Instance is a bin packing problem: one capacity, n items. It is not
// modified after loading.
type Instance struct {
	Name     string
	Capacity int
	Items    []Item
}

func NewInstance(name string, capacity int, weights []int) *Instance {
	items := make([]Item, len(weights))
	for i, w := range weights {
		items[i] = Item{Index: i, Weight: w}
	}
	return &Instance{Name: name, Capacity: capacity, Items: items}
}

func (inst *Instance) Len() int {
	return len(inst.Items)
}

// Weights returns a fresh slice of the item weights in index order.
func (inst *Instance) Weights() []int {
	weights := make([]int, len(inst.Items))
	for i, item := range inst.Items {
		weights[i] = item.Weight
	}
	return weights
}

func (inst *Instance) TotalWeight() int {
	total := 0
	for _, item := range inst.Items {
		total += item.Weight
	}
	return total
}

// Validate rejects instances with no feasible packing. An item heavier than
// the bin is caught here, before any master solve.
func (inst *Instance) Validate() error {
	if inst.Capacity <= 0 {
		return fmt.Errorf("%w: bin capacity must be positive, got %d", ErrInput, inst.Capacity)
	}
	if inst.Capacity > MaxCapacity {
		return fmt.Errorf("%w: bin capacity %d exceeds %d", ErrInput, inst.Capacity, MaxCapacity)
	}
	if len(inst.Items) == 0 {
		return fmt.Errorf("%w: instance has no items", ErrInput)
	}
	for i, item := range inst.Items {
		if item.Index != i {
			return fmt.Errorf("%w: item %d has index %d", ErrInput, i, item.Index)
		}
		if item.Weight <= 0 {
			return fmt.Errorf("%w: item %d has non-positive weight %d", ErrInput, i+1, item.Weight)
		}
		if item.Weight > inst.Capacity {
			return fmt.Errorf("%w: item %d weight %d exceeds bin capacity %d", ErrInput, i+1, item.Weight, inst.Capacity)
		}
	}
	return nil
}
