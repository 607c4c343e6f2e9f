package colgen

import (
	"fmt"
	"math"

	mapset "github.com/deckarep/golang-set/v2"

	"binpack_go/bpp"
)

// Bin is one bin of the solution; Items are 0-based item indices.
type Bin struct {
	Pattern int
	Items   []int
	Weight  int
}

// Bins expands integer column values into bins. A column with value v >= 1-eps
// yields floor(v+eps) identical bins, in column order.
func Bins(values []float64, pool *bpp.Pool, eps float64) []Bin {
	var bins []Bin
	inst := pool.Instance()
	for j, v := range values {
		if v < 1-eps {
			continue
		}
		p := pool.At(j)
		copies := int(math.Floor(v + eps))
		for c := 0; c < copies; c++ {
			bins = append(bins, Bin{Pattern: j, Items: p.Items(), Weight: p.Weight(inst)})
		}
	}
	return bins
}

// Verify checks that no bin is over capacity and that every item is in
// exactly one bin.
func Verify(inst *bpp.Instance, bins []Bin) error {
	seen := mapset.NewThreadUnsafeSet[int]()
	for b, bin := range bins {
		weight := 0
		for _, i := range bin.Items {
			if i < 0 || i >= inst.Len() {
				return fmt.Errorf("bin %d holds unknown item %d", b+1, i+1)
			}
			if !seen.Add(i) {
				return fmt.Errorf("item %d packed more than once", i+1)
			}
			weight += inst.Items[i].Weight
		}
		if weight > inst.Capacity {
			return fmt.Errorf("bin %d weighs %d, capacity is %d", b+1, weight, inst.Capacity)
		}
	}
	if seen.Cardinality() != inst.Len() {
		for i := 0; i < inst.Len(); i++ {
			if !seen.Contains(i) {
				return fmt.Errorf("item %d is not packed", i+1)
			}
		}
	}
	return nil
}
