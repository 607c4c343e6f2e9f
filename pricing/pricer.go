package pricing

import (
	"context"
	"errors"
	"fmt"

	"binpack_go/bpp"
)

// Candidate is the outcome of one pricing call.
type Candidate struct {
	Pattern     bpp.Pattern
	ReducedCost float64
	// Profit is the knapsack objective rescaled to dual units.
	Profit float64
}

// Pricer adapts master duals to a knapsack oracle. Zero Scale and Epsilon
// fall back to DefaultScale and DefaultEpsilon.
type Pricer struct {
	Oracle  Oracle
	Scale   float64
	Epsilon float64
}

func (pr Pricer) scale() float64 {
	if pr.Scale > 0 {
		return pr.Scale
	}
	return DefaultScale
}

func (pr Pricer) epsilon() float64 {
	if pr.Epsilon > 0 {
		return pr.Epsilon
	}
	return DefaultEpsilon
}

// Price searches for the bin pattern with the most negative reduced cost
// under duals. The bool result reports whether that pattern improves the
// master, i.e. its reduced cost is below -epsilon.
func (pr Pricer) Price(ctx context.Context, inst *bpp.Instance, duals []float64) (Candidate, bool, error) {
	if pr.Oracle == nil {
		return Candidate{}, false, fmt.Errorf("%w: no oracle configured", bpp.ErrOracle)
	}
	if inst.Capacity <= 0 {
		return Candidate{}, false, fmt.Errorf("%w: invalid capacity %d", bpp.ErrOracle, inst.Capacity)
	}
	if len(duals) != inst.Len() {
		return Candidate{}, false, fmt.Errorf("%w: %d duals for %d items", bpp.ErrOracle, len(duals), inst.Len())
	}
	scale := pr.scale()
	profits := Profits(duals, scale)
	weights := inst.Weights()

	sel, err := pr.Oracle.Solve(ctx, profits, weights, inst.Capacity)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return Candidate{}, false, err
		}
		return Candidate{}, false, fmt.Errorf("%w: %v", bpp.ErrOracle, err)
	}
	if len(sel.Take) != inst.Len() {
		return Candidate{}, false, fmt.Errorf("%w: selection has %d entries for %d items", bpp.ErrOracle, len(sel.Take), inst.Len())
	}
	pattern := bpp.PatternFromSelection(sel.Take)
	if w := pattern.Weight(inst); w > inst.Capacity {
		return Candidate{}, false, fmt.Errorf("%w: selection weighs %d over capacity %d", bpp.ErrOracle, w, inst.Capacity)
	}
	var reached int64
	for i, taken := range sel.Take {
		if taken {
			reached += profits[i]
		}
	}
	if reached != sel.Profit {
		return Candidate{}, false, fmt.Errorf("%w: selection profit %d, reported %d", bpp.ErrOracle, reached, sel.Profit)
	}

	rc := ReducedCost(sel.Profit, scale)
	cand := Candidate{Pattern: pattern, ReducedCost: rc, Profit: float64(sel.Profit) / scale}
	return cand, rc < -pr.epsilon(), nil
}
