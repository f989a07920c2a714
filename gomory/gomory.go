// Package gomory extends the exact simplex solver to integer programs with
// Gomory fractional cutting planes.
//
// After the LP relaxation is optimal, every round picks the constraint row
// with the largest fractional right-hand side, appends the cut
//
//	-sum frac(a_j) x_j + s = -frac(b)
//
// as a new row with its own slack column, and restores primal feasibility
// with dual simplex pivots. Rounds repeat until every constraint row has a
// nonnegative integral right-hand side.
package gomory

import (
	"errors"
	"fmt"
	"math/big"
	"time"

	"q.log/gomory/model"
	"q.log/gomory/simplex"
)

// ErrSearchExhausted is returned, together with the partial result, when
// the cut budget runs out before an integer point is reached.
var ErrSearchExhausted = errors.New("gomory: cut limit reached without an integer point")

const (
	DefaultMaxCuts = 200

	// Phase is the observer phase name of dual pivots after a cut.
	Phase = "gomory"
)

// Cut is one generated cutting plane, over the columns that existed when
// it was built.
type Cut struct {
	Index     int
	SourceRow int
	Coeffs    []*big.Rat
	RHS       *big.Rat
}

func (c Cut) String() string {
	neg := make([]*big.Rat, len(c.Coeffs))
	for i, v := range c.Coeffs {
		neg[i] = new(big.Rat).Neg(v)
	}
	return fmt.Sprintf("cut %d from row %d: %s >= %s",
		c.Index, c.SourceRow, model.LinearForm(neg), new(big.Rat).Neg(c.RHS).RatString())
}

type Result struct {
	simplex.Result

	// Relaxation is the optimum of the LP relaxation before any cut. Its
	// history is carried by the outer result.
	Relaxation *simplex.Result
	Cuts       []Cut
}

type Solver struct {
	lp      *simplex.Solver
	maxCuts int
}

type Option func(*Solver)

// WithMaxCuts bounds the number of cutting planes. Non-positive values keep
// the default.
func WithMaxCuts(n int) Option {
	return func(s *Solver) {
		if n > 0 {
			s.maxCuts = n
		}
	}
}

func WithSimplex(lp *simplex.Solver) Option {
	return func(s *Solver) {
		if lp != nil {
			s.lp = lp
		}
	}
}

func NewSolver(opts ...Option) *Solver {
	s := &Solver{
		lp:      simplex.NewSolver(),
		maxCuts: DefaultMaxCuts,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Solve returns an integer optimum of p. On ErrSearchExhausted the returned
// result holds the last (fractional) state.
func (s *Solver) Solve(p *model.Problem) (*Result, error) {
	cfg := s.lp.Config()
	start := time.Now()
	res, err := s.solve(p, cfg)
	cfg.Observer.Solved(outcome(err), time.Since(start))
	if err == nil {
		cfg.Logger.Info("integer optimum found",
			"problem", p.Name,
			"optimum", res.Optimum.RatString(),
			"cuts", len(res.Cuts),
			"pivots", res.Pivots,
		)
	}
	return res, err
}

func (s *Solver) solve(p *model.Problem, cfg simplex.Config) (*Result, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	run, err := s.lp.Start(Integralize(p))
	if err != nil {
		return nil, err
	}
	relaxation := run.Result()
	relaxation.History = nil
	if IntegerFeasible(run.Tableau) {
		return &Result{Result: *run.Result(), Relaxation: relaxation}, nil
	}

	log := run.Logger()
	log.Debug("relaxation is fractional", "optimum", relaxation.Optimum.RatString())
	run.Record("gomory initial")

	var cuts []Cut
	for k := 1; !IntegerFeasible(run.Tableau); k++ {
		if k > s.maxCuts {
			partial := &Result{Result: *run.Result(), Relaxation: relaxation, Cuts: cuts}
			return partial, fmt.Errorf("after %d cuts: %w", s.maxCuts, ErrSearchExhausted)
		}
		cut := AddCut(run, k)
		cuts = append(cuts, cut)
		cfg.Observer.Cut()
		run.Record(fmt.Sprintf("cut %d", k))
		log.Debug("cut added", "cut", k, "source_row", cut.SourceRow)

		if err := reoptimize(run, k, cfg.MaxPivots); err != nil {
			return nil, err
		}
	}
	return &Result{Result: *run.Result(), Relaxation: relaxation, Cuts: cuts}, nil
}

func outcome(err error) string {
	if errors.Is(err, ErrSearchExhausted) {
		return "search_exhausted"
	}
	return simplex.Outcome(err)
}

// IntegerFeasible reports whether every constraint row has a nonnegative
// integral right-hand side.
func IntegerFeasible(t *model.Tableau) bool {
	for r := 1; r < t.NumRows; r++ {
		b := t.RHS(r)
		if b.Sign() < 0 || !b.IsInt() {
			return false
		}
	}
	return true
}

// SourceRow returns the constraint row whose |RHS| has the largest
// fractional part, earliest row on ties.
func SourceRow(t *model.Tableau) int {
	key := 1
	var best *big.Rat
	for r := 1; r < t.NumRows; r++ {
		f := frac(new(big.Rat).Abs(t.RHS(r)))
		if best == nil || f.Cmp(best) > 0 {
			best = f
			key = r
		}
	}
	return key
}

// AddCut appends the Gomory cut of the source row as a new row whose slack
// becomes basic.
func AddCut(run *simplex.Run, index int) Cut {
	t := run.Tableau
	src := SourceRow(t)

	row := make([]*big.Rat, t.NumCols)
	for c, v := range t.Row(src) {
		row[c] = new(big.Rat)
		if v.Sign() != 0 {
			row[c].Neg(frac(v))
		}
	}
	// lengths always match here
	_ = t.AddRow(row)

	unit := make([]*big.Rat, t.NumRows)
	unit[t.NumRows-1] = big.NewRat(1, 1)
	slack, _ := t.AddCol(unit)
	run.Basis = append(run.Basis, slack)

	cut := Cut{
		Index:     index,
		SourceRow: src,
		RHS:       new(big.Rat).Set(row[len(row)-1]),
	}
	for _, v := range row[:len(row)-1] {
		cut.Coeffs = append(cut.Coeffs, new(big.Rat).Set(v))
	}
	return cut
}

// frac returns v - floor(v).
func frac(v *big.Rat) *big.Rat {
	num := new(big.Int).Mod(v.Num(), v.Denom())
	return new(big.Rat).SetFrac(num, v.Denom())
}

// reoptimize runs dual simplex pivots until no right-hand side is negative.
func reoptimize(run *simplex.Run, cut, maxPivots int) error {
	for j := 1; ; j++ {
		row := KeyRow(run.Tableau)
		if row < 0 {
			return nil
		}
		if j > maxPivots {
			return fmt.Errorf("cut %d after %d dual pivots: %w", cut, maxPivots, simplex.ErrIterationLimit)
		}
		col := KeyColumn(run.Tableau, row)
		if col < 0 {
			return fmt.Errorf("cut %d: row %d has no negative entry: %w", cut, row, simplex.ErrInfeasible)
		}
		run.Pivot(row, col, Phase, fmt.Sprintf("cut %d pivot %d", cut, j))
	}
}

// KeyRow returns the constraint row with the most negative right-hand
// side, earliest on ties, or -1 when none is negative.
func KeyRow(t *model.Tableau) int {
	key := -1
	for r := 1; r < t.NumRows; r++ {
		b := t.RHS(r)
		if b.Sign() >= 0 {
			continue
		}
		if key < 0 || b.Cmp(t.RHS(key)) < 0 {
			key = r
		}
	}
	return key
}

// KeyColumn minimizes objective-row entry over key-row entry among columns
// where the key-row entry is negative, earliest on ties. It returns -1 when
// the key row has no negative entry.
func KeyColumn(t *model.Tableau, row int) int {
	key := -1
	var best *big.Rat
	for c := range t.RHSCol() {
		a := t.At(row, c)
		if a.Sign() >= 0 {
			continue
		}
		theta := new(big.Rat).Quo(t.At(0, c), a)
		if best == nil || theta.Cmp(best) < 0 {
			best = theta
			key = c
		}
	}
	return key
}

// Integralize scales every constraint by the least common multiple of its
// denominators. Cuts are only valid when slack variables are integral at
// integer points, which needs integer coefficients and right-hand sides.
func Integralize(p *model.Problem) *model.Problem {
	out := *p
	out.Constraints = make([]model.Constraint, len(p.Constraints))
	for i, c := range p.Constraints {
		l := big.NewInt(1)
		for _, v := range append(append([]*big.Rat(nil), c.Coeffs...), c.RHS) {
			if v != nil {
				l = lcm(l, v.Denom())
			}
		}
		mul := new(big.Rat).SetInt(l)
		scaled := model.Constraint{
			Coeffs:   make([]*big.Rat, len(c.Coeffs)),
			Relation: c.Relation,
			RHS:      new(big.Rat).Mul(c.RHS, mul),
		}
		for j, v := range c.Coeffs {
			if v != nil {
				scaled.Coeffs[j] = new(big.Rat).Mul(v, mul)
			}
		}
		out.Constraints[i] = scaled
	}
	return &out
}

func lcm(a, b *big.Int) *big.Int {
	g := new(big.Int).GCD(nil, nil, a, b)
	out := new(big.Int).Div(a, g)
	return out.Mul(out, b)
}
