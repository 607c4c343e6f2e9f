package bpp

import (
	"fmt"
	"strings"
)

// Pattern is one feasible way of filling a bin: a boolean vector with one
// entry per item. The zero value is an empty pattern of length 0.
type Pattern struct {
	use []bool
}

func NewPattern(n int, items ...int) (Pattern, error) {
	use := make([]bool, n)
	for _, i := range items {
		if i < 0 || i >= n {
			return Pattern{}, fmt.Errorf("item %d out of range [0,%d)", i, n)
		}
		use[i] = true
	}
	return Pattern{use: use}, nil
}

// PatternFromSelection copies take so later changes to it do not leak in.
func PatternFromSelection(take []bool) Pattern {
	use := make([]bool, len(take))
	copy(use, take)
	return Pattern{use: use}
}

func (p Pattern) Len() int {
	return len(p.use)
}

func (p Pattern) Has(i int) bool {
	return p.use[i]
}

// Items lists the indices of the items in the pattern in ascending order.
func (p Pattern) Items() []int {
	var items []int
	for i, u := range p.use {
		if u {
			items = append(items, i)
		}
	}
	return items
}

func (p Pattern) Size() int {
	size := 0
	for _, u := range p.use {
		if u {
			size++
		}
	}
	return size
}

func (p Pattern) Weight(inst *Instance) int {
	weight := 0
	for i, u := range p.use {
		if u {
			weight += inst.Items[i].Weight
		}
	}
	return weight
}

// Column returns the pattern as master constraint coefficients.
func (p Pattern) Column() []float64 {
	col := make([]float64, len(p.use))
	for i, u := range p.use {
		if u {
			col[i] = 1
		}
	}
	return col
}

// Key identifies the pattern by content; equal patterns have equal keys.
func (p Pattern) Key() string {
	var b strings.Builder
	b.Grow(len(p.use))
	for _, u := range p.use {
		if u {
			b.WriteByte('1')
		} else {
			b.WriteByte('0')
		}
	}
	return b.String()
}

func (p Pattern) String() string {
	return fmt.Sprint(p.Items())
}
