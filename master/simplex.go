package master

import (
	"context"
	"errors"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

const (
	simplexTol = 1e-9
	pivotTol   = 1e-9
	feasTol    = 1e-7
	// pivots between refactorizations of the basis inverse
	refactorEvery = 64
	// consecutive degenerate pivots before switching to Bland's rule
	degenerateLimit = 32
	maxCondition    = 1e13
)

var (
	errInfeasible = errors.New("linear program is infeasible")
	errUnbounded  = errors.New("linear program is unbounded")
	errPivotLimit = errors.New("simplex pivot limit reached")
)

type lpSolution struct {
	objective float64
	x         []float64
	duals     []float64
	basis     []int
}

// revised is a bounded revised simplex over min c^T x, A x = b, x >= 0 with
// rows sign-adjusted so b >= 0. Variable k+i is the artificial of row i.
type revised struct {
	ctx       context.Context
	a         *mat.Dense
	b         []float64
	m, k      int
	basis     []int
	inBasis   []bool
	binv      *mat.Dense
	xb        []float64
	pivots    int
	maxPivots int
}

// solveStandard solves min c^T x s.t. A x = b, x >= 0 from an artificial
// basis.
func solveStandard(ctx context.Context, c []float64, a *mat.Dense, b []float64) (float64, []float64, error) {
	sol, err := solveLP(ctx, c, a, b, nil)
	if err != nil {
		return math.NaN(), nil, err
	}
	return sol.objective, sol.x, nil
}

// solveLP solves min c^T x s.t. A x = b, x >= 0. A feasible initial basis
// skips phase one; an unusable one is ignored. Duals are read from the
// optimal basis, y = B^-T c_B.
func solveLP(ctx context.Context, c []float64, a *mat.Dense, b []float64, initial []int) (*lpSolution, error) {
	m, k := a.Dims()
	if m == 0 || k == 0 {
		for _, v := range c {
			if v < -simplexTol {
				return nil, errUnbounded
			}
		}
		return &lpSolution{x: make([]float64, k), duals: make([]float64, m)}, nil
	}
	s := &revised{
		ctx:       ctx,
		a:         mat.DenseCopyOf(a),
		b:         make([]float64, m),
		m:         m,
		k:         k,
		inBasis:   make([]bool, k+m),
		maxPivots: 100*(m+k) + 1000,
	}
	flipped := make([]bool, m)
	for i, v := range b {
		s.b[i] = v
		if v < 0 {
			flipped[i] = true
			s.b[i] = -v
			floats.Scale(-1, s.a.RawRowView(i))
		}
	}

	if !s.warmStart(initial) {
		s.coldStart()
		phaseOne := make([]float64, k+m)
		for i := 0; i < m; i++ {
			phaseOne[k+i] = 1
		}
		if err := s.optimize(phaseOne, true); err != nil {
			return nil, err
		}
		s.refactor()
		if s.value(phaseOne) > feasTol {
			return nil, errInfeasible
		}
		s.evictArtificials()
	}

	cost := make([]float64, k+m)
	copy(cost, c)
	if err := s.optimize(cost, false); err != nil {
		return nil, err
	}
	s.refactor()

	x := make([]float64, k)
	for r, j := range s.basis {
		if j < k {
			x[j] = math.Max(s.xb[r], 0)
		}
	}
	y := s.prices(cost)
	duals := make([]float64, m)
	for i := range duals {
		duals[i] = y.AtVec(i)
		if flipped[i] {
			duals[i] = -duals[i]
		}
	}
	basis := make([]int, m)
	copy(basis, s.basis)
	return &lpSolution{objective: floats.Dot(c, x), x: x, duals: duals, basis: basis}, nil
}

func (s *revised) warmStart(initial []int) bool {
	if len(initial) != s.m {
		return false
	}
	seen := make([]bool, s.k)
	for _, j := range initial {
		if j < 0 || j >= s.k || seen[j] {
			return false
		}
		seen[j] = true
	}
	s.basis = make([]int, s.m)
	copy(s.basis, initial)
	if !s.refactor() {
		return false
	}
	for _, v := range s.xb {
		if v < -feasTol {
			return false
		}
	}
	for _, j := range s.basis {
		s.inBasis[j] = true
	}
	return true
}

func (s *revised) coldStart() {
	s.basis = make([]int, s.m)
	for j := range s.inBasis {
		s.inBasis[j] = false
	}
	s.binv = mat.NewDense(s.m, s.m, nil)
	for i := 0; i < s.m; i++ {
		s.basis[i] = s.k + i
		s.inBasis[s.k+i] = true
		s.binv.Set(i, i, 1)
	}
	s.xb = make([]float64, s.m)
	copy(s.xb, s.b)
}

func (s *revised) column(j int, dst []float64) []float64 {
	if j < s.k {
		return mat.Col(dst, j, s.a)
	}
	for i := range dst {
		dst[i] = 0
	}
	dst[j-s.k] = 1
	return dst
}

// refactor recomputes the basis inverse and the basic values. It keeps the
// updated inverse when the basis matrix is numerically singular.
func (s *revised) refactor() bool {
	basis := mat.NewDense(s.m, s.m, nil)
	col := make([]float64, s.m)
	for r, j := range s.basis {
		basis.SetCol(r, s.column(j, col))
	}
	var inv mat.Dense
	if err := inv.Inverse(basis); err != nil {
		var cond mat.Condition
		if !errors.As(err, &cond) || float64(cond) > maxCondition {
			return false
		}
	}
	s.binv = &inv
	xb := mat.NewVecDense(s.m, nil)
	xb.MulVec(s.binv, mat.NewVecDense(s.m, s.b))
	s.xb = xb.RawVector().Data
	return true
}

func (s *revised) prices(cost []float64) *mat.VecDense {
	cb := make([]float64, s.m)
	for r, j := range s.basis {
		cb[r] = cost[j]
	}
	y := mat.NewVecDense(s.m, nil)
	y.MulVec(s.binv.T(), mat.NewVecDense(s.m, cb))
	return y
}

func (s *revised) value(cost []float64) float64 {
	z := 0.0
	for r, j := range s.basis {
		z += cost[j] * s.xb[r]
	}
	return z
}

// optimize pivots until no column prices out. Entering columns follow
// Dantzig's rule; after degenerateLimit degenerate pivots in a row both the
// entering and the leaving choice follow Bland's rule until the objective
// moves again. Artificials may enter only in phase one; a basic artificial
// leaves as soon as an entering column touches its row.
func (s *revised) optimize(cost []float64, phaseOne bool) error {
	col := make([]float64, s.m)
	u := mat.NewVecDense(s.m, nil)
	aty := mat.NewVecDense(s.k, nil)
	bland, degenerate := false, 0
	for {
		if err := s.ctx.Err(); err != nil {
			return err
		}
		if s.pivots >= s.maxPivots {
			return errPivotLimit
		}
		y := s.prices(cost)
		aty.MulVec(s.a.T(), y)

		enter, best := -1, -simplexTol
		for j := 0; j < s.k+s.m; j++ {
			if s.inBasis[j] || (!phaseOne && j >= s.k) {
				continue
			}
			var rc float64
			if j < s.k {
				rc = cost[j] - aty.AtVec(j)
			} else {
				rc = cost[j] - y.AtVec(j-s.k)
			}
			if rc >= -simplexTol {
				continue
			}
			if bland {
				enter = j
				break
			}
			if rc < best {
				enter, best = j, rc
			}
		}
		if enter < 0 {
			return nil
		}

		u.MulVec(s.binv, mat.NewVecDense(s.m, s.column(enter, col)))
		leave, theta := -1, math.Inf(1)
		for r := 0; r < s.m; r++ {
			ur := u.AtVec(r)
			var ratio float64
			switch {
			case !phaseOne && s.basis[r] >= s.k && math.Abs(ur) > pivotTol:
				ratio = 0
			case ur > pivotTol:
				ratio = math.Max(s.xb[r], 0) / ur
			default:
				continue
			}
			switch {
			case leave < 0 || ratio < theta-simplexTol:
				leave, theta = r, ratio
			case ratio <= theta+simplexTol && s.prefer(r, leave, u, bland):
				leave, theta = r, ratio
			}
		}
		if leave < 0 {
			return errUnbounded
		}
		if theta <= simplexTol {
			degenerate++
			bland = bland || degenerate > degenerateLimit
		} else {
			degenerate, bland = 0, false
		}
		s.pivot(leave, enter, u, theta)
	}
}

func (s *revised) prefer(r, current int, u *mat.VecDense, bland bool) bool {
	if bland {
		return s.basis[r] < s.basis[current]
	}
	return math.Abs(u.AtVec(r)) > math.Abs(u.AtVec(current))
}

func (s *revised) pivot(p, q int, u *mat.VecDense, theta float64) {
	for r := range s.xb {
		s.xb[r] -= theta * u.AtVec(r)
		if s.xb[r] < 0 && s.xb[r] > -feasTol {
			s.xb[r] = 0
		}
	}
	s.xb[p] = theta

	rowP := s.binv.RawRowView(p)
	floats.Scale(1/u.AtVec(p), rowP)
	for r := 0; r < s.m; r++ {
		if ur := u.AtVec(r); r != p && ur != 0 {
			floats.AddScaled(s.binv.RawRowView(r), -ur, rowP)
		}
	}

	s.inBasis[s.basis[p]] = false
	s.inBasis[q] = true
	s.basis[p] = q
	s.pivots++
	if s.pivots%refactorEvery == 0 {
		s.refactor()
	}
}

// evictArtificials pivots zero-level artificials out of the basis after
// phase one. One that no real column can replace marks a redundant row and
// stays at zero.
func (s *revised) evictArtificials() {
	col := make([]float64, s.m)
	u := mat.NewVecDense(s.m, nil)
	alpha := mat.NewVecDense(s.k, nil)
	for r := 0; r < s.m; r++ {
		if s.basis[r] < s.k {
			continue
		}
		alpha.MulVec(s.a.T(), mat.NewVecDense(s.m, s.binv.RawRowView(r)))
		enter, best := -1, 1e-7
		for j := 0; j < s.k; j++ {
			if v := math.Abs(alpha.AtVec(j)); !s.inBasis[j] && v > best {
				enter, best = j, v
			}
		}
		if enter < 0 {
			continue
		}
		u.MulVec(s.binv, mat.NewVecDense(s.m, s.column(enter, col)))
		s.pivot(r, enter, u, 0)
	}
}
