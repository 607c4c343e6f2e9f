package pricing

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"binpack_go/bpp"
)

func TestPriceImproving(t *testing.T) {
	inst := bpp.NewInstance("", 2, []int{1, 1, 1, 1})
	pr := Pricer{Oracle: DP{}}
	cand, improving, err := pr.Price(context.Background(), inst, []float64{1, 1, 1, 1})
	require.NoError(t, err)
	require.True(t, improving)
	require.InDelta(t, -1.0, cand.ReducedCost, 1e-9)
	require.InDelta(t, 2.0, cand.Profit, 1e-9)
	require.Equal(t, 2, cand.Pattern.Size())
	require.LessOrEqual(t, cand.Pattern.Weight(inst), 2)
}

func TestPriceNotImproving(t *testing.T) {
	inst := bpp.NewInstance("", 2, []int{1, 1, 1, 1})
	pr := Pricer{Oracle: BranchBound{}}
	_, improving, err := pr.Price(context.Background(), inst, []float64{0.5, 0.5, 0.5, 0.5})
	require.NoError(t, err)
	require.False(t, improving)
}

func TestPriceWithinEpsilonIsNotImproving(t *testing.T) {
	inst := bpp.NewInstance("", 2, []int{1, 1})
	pr := Pricer{Oracle: DP{}, Scale: 1e7, Epsilon: 1e-6}
	cand, improving, err := pr.Price(context.Background(), inst, []float64{0.5, 0.50000055})
	require.NoError(t, err)
	require.False(t, improving)
	require.Less(t, cand.ReducedCost, 0.0)
}

func TestPriceNegativeDualsIgnored(t *testing.T) {
	inst := bpp.NewInstance("", 10, []int{5, 5})
	pr := Pricer{Oracle: DP{}}
	cand, improving, err := pr.Price(context.Background(), inst, []float64{1.5, -3})
	require.NoError(t, err)
	require.True(t, improving)
	require.Equal(t, []int{0}, cand.Pattern.Items())
}

type brokenOracle struct{ sel Selection }

func (b brokenOracle) Solve(context.Context, []int64, []int, int) (Selection, error) {
	if b.sel.Take == nil {
		return Selection{}, errors.New("boom")
	}
	return b.sel, nil
}

func TestPriceOracleErrors(t *testing.T) {
	inst := bpp.NewInstance("", 2, []int{1, 2})
	ctx := context.Background()
	duals := []float64{1, 1}

	_, _, err := Pricer{Oracle: brokenOracle{}}.Price(ctx, inst, duals)
	require.ErrorIs(t, err, bpp.ErrOracle)

	_, _, err = Pricer{}.Price(ctx, inst, duals)
	require.ErrorIs(t, err, bpp.ErrOracle)

	heavy := brokenOracle{Selection{Profit: 2000000, Take: []bool{true, true}}}
	_, _, err = Pricer{Oracle: heavy}.Price(ctx, inst, duals)
	require.ErrorIs(t, err, bpp.ErrOracle)

	lying := brokenOracle{Selection{Profit: 5, Take: []bool{true, false}}}
	_, _, err = Pricer{Oracle: lying}.Price(ctx, inst, duals)
	require.ErrorIs(t, err, bpp.ErrOracle)

	_, _, err = Pricer{Oracle: DP{}}.Price(ctx, inst, []float64{1})
	require.ErrorIs(t, err, bpp.ErrOracle)

	bad := bpp.NewInstance("", 0, []int{1})
	_, _, err = Pricer{Oracle: DP{}}.Price(ctx, bad, []float64{1})
	require.ErrorIs(t, err, bpp.ErrOracle)
}

func TestPriceCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	inst := bpp.NewInstance("", 2, []int{1, 1})
	_, _, err := Pricer{Oracle: DP{}}.Price(ctx, inst, []float64{1, 1})
	require.ErrorIs(t, err, context.Canceled)
}
