// Package colgen drives the column generation: it alternates master LP
// solves and pricing calls until no improving bin pattern is left, then
// solves the integer master over the patterns found and turns the chosen
// columns back into bins.
package colgen

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"binpack_go/bpp"
	"binpack_go/master"
	"binpack_go/pricing"
)

type State int

const (
	Generating State = iota
	Converged
)

func (s State) String() string {
	switch s {
	case Generating:
		return "generating"
	case Converged:
		return "converged"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Termination says why generation stopped. Only Converged proves the LP
// bound; the others still go on to the integer solve.
type Termination int

const (
	TermConverged Termination = iota
	TermIterationLimit
	TermTimeLimit
	TermStalled
)

func (t Termination) String() string {
	switch t {
	case TermConverged:
		return "converged"
	case TermIterationLimit:
		return "iteration limit"
	case TermTimeLimit:
		return "time limit"
	case TermStalled:
		return "stalled"
	}
	return fmt.Sprintf("Termination(%d)", int(t))
}

type Options struct {
	Epsilon       float64
	Scale         float64
	MaxIterations int           // 0 = no cap
	Timeout       time.Duration // budget for the generation loop, 0 = none
	NodeLimit     int
	Oracle        pricing.Oracle
	Logger        *log.Logger
}

func (o Options) withDefaults() Options {
	if o.Epsilon <= 0 {
		o.Epsilon = pricing.DefaultEpsilon
	}
	if o.Scale <= 0 {
		o.Scale = pricing.DefaultScale
	}
	if o.Oracle == nil {
		o.Oracle = pricing.Auto{}
	}
	return o
}

type Result struct {
	Bins []Bin
	// Objective is the value of the integer master, i.e. len(Bins).
	Objective float64
	// LowerBound is the last LP relaxation value; a valid bound on the
	// optimum only when Termination is TermConverged.
	LowerBound     float64
	Iterations     int
	Patterns       int
	Termination    Termination
	IntegerOptimal bool
	Nodes          int
	Elapsed        time.Duration
}

// Solver holds one run's pool and master. Use Solve for the common case.
type Solver struct {
	inst   *bpp.Instance
	pool   *bpp.Pool
	master *master.Master
	pricer pricing.Pricer
	opts   Options
	state  State
	logger *log.Logger
}

func NewSolver(inst *bpp.Instance, opts Options) (*Solver, error) {
	if err := inst.Validate(); err != nil {
		return nil, err
	}
	opts = opts.withDefaults()
	pool := bpp.NewPool(inst)
	m, err := master.New(inst, pool, master.Options{
		Epsilon:   opts.Epsilon,
		NodeLimit: opts.NodeLimit,
		Logger:    opts.Logger,
	})
	if err != nil {
		return nil, err
	}
	return &Solver{
		inst:   inst,
		pool:   pool,
		master: m,
		pricer: pricing.Pricer{Oracle: opts.Oracle, Scale: opts.Scale, Epsilon: opts.Epsilon},
		opts:   opts,
		state:  Generating,
		logger: opts.Logger,
	}, nil
}

func (s *Solver) State() State {
	return s.state
}

func (s *Solver) Pool() *bpp.Pool {
	return s.pool
}

// Solve runs column generation and the integer solve on inst.
func Solve(ctx context.Context, inst *bpp.Instance, opts Options) (*Result, error) {
	s, err := NewSolver(inst, opts)
	if err != nil {
		return nil, err
	}
	return s.Run(ctx)
}

func (s *Solver) Run(ctx context.Context) (*Result, error) {
	start := time.Now()
	res := &Result{}
	term, err := s.generate(ctx, res)
	if err != nil {
		return nil, err
	}
	res.Termination = term
	s.state = Converged
	s.pool.Freeze()

	integer, err := s.master.FinalizeInteger(ctx)
	if err != nil {
		return nil, err
	}
	res.Objective = integer.Objective
	res.IntegerOptimal = integer.Optimal
	res.Nodes = integer.Nodes
	res.Patterns = s.pool.Len()
	res.Bins = Bins(integer.Values, s.pool, s.opts.Epsilon)
	if err := Verify(s.inst, res.Bins); err != nil {
		return nil, fmt.Errorf("solution check: %w", err)
	}
	if len(res.Bins) != int(integer.Objective) {
		return nil, fmt.Errorf("solution check: %d bins for integer objective %v", len(res.Bins), integer.Objective)
	}
	res.Elapsed = time.Since(start)
	if s.logger != nil {
		s.logger.Info("solved", "bins", len(res.Bins), "lp", res.LowerBound, "iterations", res.Iterations,
			"patterns", res.Patterns, "nodes", res.Nodes, "stop", res.Termination)
	}
	return res, nil
}

// generate is the GENERATING state. Fatal errors end the run; limits end
// generation and leave the pool as it is.
func (s *Solver) generate(ctx context.Context, res *Result) (Termination, error) {
	genCtx := ctx
	if s.opts.Timeout > 0 {
		var cancel context.CancelFunc
		genCtx, cancel = context.WithTimeout(ctx, s.opts.Timeout)
		defer cancel()
	}
	for {
		if s.opts.MaxIterations > 0 && res.Iterations >= s.opts.MaxIterations {
			s.warn("iteration limit reached", "iterations", res.Iterations)
			return TermIterationLimit, nil
		}
		relax, err := s.master.SolveRelaxation(genCtx)
		if err != nil {
			return s.limitOrFail(ctx, genCtx, err)
		}
		res.LowerBound = relax.Objective

		cand, improving, err := s.pricer.Price(genCtx, s.inst, relax.Duals)
		if err != nil {
			return s.limitOrFail(ctx, genCtx, err)
		}
		if s.logger != nil {
			s.logger.Debug("iteration", "n", res.Iterations, "lp", relax.Objective,
				"reduced_cost", cand.ReducedCost, "pattern", cand.Pattern)
		}
		if !improving {
			return TermConverged, nil
		}

		j, added, err := s.pool.Add(cand.Pattern)
		if err != nil {
			return 0, fmt.Errorf("%w: priced pattern rejected: %v", bpp.ErrOracle, err)
		}
		if !added {
			// an LP-optimal basis prices every pool column at >= 0, so a repeat
			// means the duals are numerically off
			s.warn("pricing repeated a known pattern", "column", j, "reduced_cost", cand.ReducedCost)
			return TermStalled, nil
		}
		if err := s.master.AddPattern(j, cand.Pattern); err != nil {
			return 0, err
		}
		res.Iterations++
	}
}

// limitOrFail maps an expired generation budget to TermTimeLimit. A canceled
// or expired parent context is still an error.
func (s *Solver) limitOrFail(ctx, genCtx context.Context, err error) (Termination, error) {
	if errors.Is(err, context.DeadlineExceeded) && genCtx.Err() != nil && ctx.Err() == nil {
		s.warn("generation time limit reached", "timeout", s.opts.Timeout)
		return TermTimeLimit, nil
	}
	return 0, err
}

func (s *Solver) warn(msg string, keyvals ...interface{}) {
	if s.logger != nil {
		s.logger.Warn(msg, keyvals...)
	}
}
