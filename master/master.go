// Package master owns the set-partitioning master problem of the column
// generation: one row per item, one column per pattern of the pool, all
// costs 1. It solves the LP relaxation (primal values and duals) and, at the
// end, the integer program over the frozen pool.
package master

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/charmbracelet/log"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"binpack_go/bpp"
)

const (
	DefaultEpsilon   = 1e-6
	DefaultNodeLimit = 100000
)

type Options struct {
	// Epsilon is the integrality tolerance of the final solve.
	Epsilon float64
	// NodeLimit bounds the branch-and-bound LP solves; zero means the default.
	NodeLimit int
	// DisableRounding turns off the rounding heuristic run on every node LP.
	DisableRounding bool
	Logger          *log.Logger
}

// Relaxation is the optimum of the LP relaxation over the current columns.
type Relaxation struct {
	Objective float64
	Primal    []float64
	Duals     []float64
}

// Integer is the result of the integer solve. Values are integral and
// index-aligned with the pool.
type Integer struct {
	Objective float64
	Values    []float64
	Bound     float64
	Nodes     int
	Optimal   bool
}

type Master struct {
	inst   *bpp.Instance
	pool   *bpp.Pool
	a      *mat.Dense // items x columns, grown one column per pattern
	cols   int
	seed   []int // column of each item's singleton pattern
	basis  []int // last optimal basis, one column per row
	opts   Options
	logger *log.Logger
}

// New builds the master over every pattern currently in pool. The pool must
// hold the singleton of every item; their columns form the starting basis.
func New(inst *bpp.Instance, pool *bpp.Pool, opts Options) (*Master, error) {
	if opts.Epsilon <= 0 {
		opts.Epsilon = DefaultEpsilon
	}
	if opts.NodeLimit <= 0 {
		opts.NodeLimit = DefaultNodeLimit
	}
	n := inst.Len()
	if n == 0 {
		return nil, fmt.Errorf("%w: no items", bpp.ErrInput)
	}
	m := &Master{
		inst:   inst,
		pool:   pool,
		a:      mat.NewDense(n, pool.Len(), nil),
		seed:   make([]int, n),
		opts:   opts,
		logger: opts.Logger,
	}
	for i := range m.seed {
		m.seed[i] = -1
	}
	for j := 0; j < pool.Len(); j++ {
		p := pool.At(j)
		m.a.SetCol(j, p.Column())
		if items := p.Items(); len(items) == 1 && m.seed[items[0]] < 0 {
			m.seed[items[0]] = j
		}
	}
	m.cols = pool.Len()
	for i, j := range m.seed {
		if j < 0 {
			return nil, fmt.Errorf("%w: no singleton pattern for item %d", bpp.ErrInfeasibleMaster, i+1)
		}
	}
	m.basis = append([]int(nil), m.seed...)
	return m, nil
}

func (m *Master) Columns() int {
	return m.cols
}

// AddPattern appends column j for p. j must be the next column index, so the
// master stays aligned with the pool. Duplicate patterns are accepted.
func (m *Master) AddPattern(j int, p bpp.Pattern) error {
	if j != m.cols {
		return fmt.Errorf("column %d added out of order, expected %d", j, m.cols)
	}
	if p.Len() != m.inst.Len() {
		return fmt.Errorf("pattern has %d entries, master has %d rows", p.Len(), m.inst.Len())
	}
	m.a = m.a.Grow(0, 1).(*mat.Dense)
	m.a.SetCol(j, p.Column())
	m.cols++
	return nil
}

// SolveRelaxation solves the LP relaxation, warm started from the previous
// optimal basis. The duals are the simplex multipliers of that basis,
// y = B^-T 1, and satisfy Σ_i a_ij y_i ≤ 1 for every column j.
func (m *Master) SolveRelaxation(ctx context.Context) (Relaxation, error) {
	if err := ctx.Err(); err != nil {
		return Relaxation{}, err
	}
	n, k := m.inst.Len(), m.cols
	sol, err := solveLP(ctx, ones(k), m.a, ones(n), m.basis)
	if err != nil {
		return Relaxation{}, wrapLPError(err)
	}
	m.basis = m.basis[:0]
	for _, j := range sol.basis {
		if j >= k {
			// an artificial survived; fall back to the singletons next time
			m.basis = append(m.basis[:0], m.seed...)
			break
		}
		m.basis = append(m.basis, j)
	}
	if gap := math.Abs(sol.objective - floats.Sum(sol.duals)); gap > m.opts.Epsilon && m.logger != nil {
		m.logger.Warn("primal and dual objectives disagree", "primal", sol.objective, "dual", floats.Sum(sol.duals), "gap", gap)
	}
	return Relaxation{Objective: sol.objective, Primal: sol.x, Duals: sol.duals}, nil
}

func wrapLPError(err error) error {
	switch {
	case errors.Is(err, errInfeasible):
		return fmt.Errorf("%w: relaxation: %v", bpp.ErrInfeasibleMaster, err)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return err
	}
	return fmt.Errorf("relaxation: %w", err)
}

func ones(n int) []float64 {
	v := make([]float64, n)
	floats.AddConst(1, v)
	return v
}
