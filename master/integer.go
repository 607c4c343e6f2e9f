package master

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"binpack_go/bpp"
)

// branch is one bound change; a node's bounds are the chain up to the root.
type branch struct {
	parent   *branch
	variable int
	lower    bool // λ >= value when true, λ <= value otherwise
	value    float64
}

type bbNode struct {
	branch *branch
	bound  float64
	x      []float64
	depth  int
}

// Less orders open nodes by LP bound, deeper first on ties so the search
// dives towards integral leaves.
func (n *bbNode) Less(other *bbNode) bool {
	if n.bound != other.bound {
		return n.bound < other.bound
	}
	return n.depth > other.depth
}

// FinalizeInteger restricts every column to a non-negative integer and
// solves by best-first branch and bound. The all-singletons solution is the
// first incumbent, so a solution always exists; when the node limit or the
// context stops the search early, also inside a node LP, the incumbent is
// returned with Optimal == false.
func (m *Master) FinalizeInteger(ctx context.Context) (Integer, error) {
	k, eps := m.cols, m.opts.Epsilon

	incumbent := make([]float64, k)
	for _, j := range m.seed {
		incumbent[j] = 1
	}
	best := floats.Sum(incumbent)
	result := Integer{Nodes: 1}

	// the objective is a count of bins, so no node beats the incumbent unless
	// its bound rounds up to something smaller
	prunable := func(bound float64) bool {
		return math.Ceil(bound-eps) >= best
	}
	accept := func(x []float64) {
		if v := floats.Sum(x); v < best {
			best, incumbent = v, x
			if m.logger != nil {
				m.logger.Debug("new incumbent", "bins", best, "nodes", result.Nodes)
			}
		}
	}
	finish := func(stopped bool) Integer {
		result.Values = incumbent
		result.Objective = best
		result.Optimal = !stopped
		if stopped && m.logger != nil {
			m.logger.Warn("branch and bound stopped early", "nodes", result.Nodes, "bins", best, "bound", result.Bound)
		}
		return result
	}

	rootBound, rootX, err := m.solveNode(ctx, nil)
	switch {
	case isContextError(err):
		return finish(true), nil
	case errors.Is(err, errInfeasible):
		return Integer{}, fmt.Errorf("%w: integer master root relaxation", bpp.ErrInfeasibleMaster)
	case err != nil:
		return Integer{}, fmt.Errorf("integer master root relaxation: %w", err)
	}
	result.Bound = rootBound

	var opens *priorityTree[*bbNode]
	if m.branchVariable(rootX) < 0 {
		accept(roundAll(rootX))
	} else {
		m.round(rootX, accept)
		if !prunable(rootBound) {
			opens = opens.push(&bbNode{bound: rootBound, x: rootX})
		}
	}

	stopped := false
search:
	for opens.len() > 0 {
		if ctx.Err() != nil || result.Nodes >= m.opts.NodeLimit {
			stopped = true
			break
		}
		var node *bbNode
		node, opens = opens.pop()
		if prunable(node.bound) {
			// best-first: every remaining node has a bound at least this large
			opens = nil
			break
		}
		j := m.branchVariable(node.x)
		v := node.x[j]
		children := []*branch{
			{parent: node.branch, variable: j, value: math.Floor(v)},
			{parent: node.branch, variable: j, lower: true, value: math.Ceil(v)},
		}
		for _, br := range children {
			result.Nodes++
			bound, x, err := m.solveNode(ctx, br)
			if isContextError(err) {
				stopped = true
				break search
			}
			if errors.Is(err, errInfeasible) {
				continue
			}
			if err != nil {
				return Integer{}, fmt.Errorf("branch on column %d: %w", j, err)
			}
			if m.branchVariable(x) < 0 {
				accept(roundAll(x))
				continue
			}
			m.round(x, accept)
			if prunable(bound) {
				continue
			}
			opens = opens.push(&bbNode{branch: br, bound: bound, x: x, depth: node.depth + 1})
		}
	}
	return finish(stopped), nil
}

func isContextError(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

// round turns a fractional node solution into a partition: columns are taken
// by decreasing value unless they overlap one already taken, and uncovered
// items get their singletons.
func (m *Master) round(x []float64, accept func([]float64)) {
	if m.opts.DisableRounding {
		return
	}
	var order []int
	for j, v := range x {
		if v > m.opts.Epsilon {
			order = append(order, j)
		}
	}
	sort.SliceStable(order, func(a, b int) bool {
		return x[order[a]] > x[order[b]]
	})
	covered := make([]bool, m.inst.Len())
	rounded := make([]float64, len(x))
	for _, j := range order {
		items := m.pool.At(j).Items()
		overlaps := false
		for _, i := range items {
			overlaps = overlaps || covered[i]
		}
		if overlaps {
			continue
		}
		for _, i := range items {
			covered[i] = true
		}
		rounded[j] = 1
	}
	for i, c := range covered {
		if !c {
			rounded[m.seed[i]] = 1
		}
	}
	accept(rounded)
}

// branchVariable picks the most fractional column, lowest index on ties, or
// -1 when x is integral within epsilon.
func (m *Master) branchVariable(x []float64) int {
	chosen, distance := -1, m.opts.Epsilon
	for j, v := range x {
		if d := math.Abs(v - math.Round(v)); d > distance {
			chosen, distance = j, d
		}
	}
	return chosen
}

func roundAll(x []float64) []float64 {
	out := make([]float64, len(x))
	for j, v := range x {
		out[j] = math.Round(v)
	}
	return out
}

// solveNode solves the LP relaxation with the bounds collected along br.
// Fixed columns are substituted out, lower bounds shift their column and
// finite upper bounds become rows with a slack.
func (m *Master) solveNode(ctx context.Context, br *branch) (float64, []float64, error) {
	n, k := m.inst.Len(), m.cols
	lo := make([]float64, k)
	hi := make([]float64, k)
	for j := range hi {
		hi[j] = math.Inf(1)
	}
	// walk leaf to root; the deepest bound on a variable is the tightest
	for b := br; b != nil; b = b.parent {
		if b.lower {
			lo[b.variable] = math.Max(lo[b.variable], b.value)
		} else {
			hi[b.variable] = math.Min(hi[b.variable], b.value)
		}
	}

	rhs := ones(n)
	offset := 0.0
	col := make([]float64, n)
	var free, upper []int
	for j := 0; j < k; j++ {
		if lo[j] > hi[j] {
			return math.NaN(), nil, errInfeasible
		}
		if lo[j] > 0 {
			mat.Col(col, j, m.a)
			floats.AddScaled(rhs, -lo[j], col)
			offset += lo[j]
		}
		if lo[j] == hi[j] {
			continue
		}
		free = append(free, j)
		if !math.IsInf(hi[j], 1) {
			upper = append(upper, j)
		}
	}

	rows, cols := n+len(upper), len(free)+len(upper)
	if cols == 0 {
		for _, r := range rhs {
			if math.Abs(r) > feasTol {
				return math.NaN(), nil, errInfeasible
			}
		}
		x := make([]float64, k)
		copy(x, lo)
		return offset, x, nil
	}
	a := mat.NewDense(rows, cols, nil)
	b := make([]float64, rows)
	c := make([]float64, cols)
	copy(b, rhs)
	position := make(map[int]int, len(free))
	for f, j := range free {
		for i := 0; i < n; i++ {
			a.Set(i, f, m.a.At(i, j))
		}
		c[f] = 1
		position[j] = f
	}
	for u, j := range upper {
		a.Set(n+u, position[j], 1)
		a.Set(n+u, len(free)+u, 1)
		b[n+u] = hi[j] - lo[j]
	}

	z, sx, err := solveStandard(ctx, c, a, b)
	if err != nil {
		return math.NaN(), nil, err
	}
	x := make([]float64, k)
	copy(x, lo)
	for f, j := range free {
		x[j] += sx[f]
	}
	return z + offset, x, nil
}
