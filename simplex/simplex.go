package simplex

import (
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"time"

	"q.log/gomory/model"
)

const (
	PhaseOne = "phase-1"
	PhaseTwo = "phase-2"
)

// Result is the outcome of a successful solve.
type Result struct {
	// Optimum is the objective value at Values in the problem's own
	// direction.
	Optimum  *big.Rat
	Values   []*big.Rat
	Solution map[string]*big.Rat

	Tableau model.Snapshot
	Basis   []int

	History  *model.History
	Warnings []Warning
	Pivots   int
}

// Solver runs the two-phase simplex method over exact rationals.
type Solver struct {
	cfg Config
}

func NewSolver(opts ...Option) *Solver {
	return &Solver{cfg: NewConfig(opts...)}
}

func (s *Solver) Config() Config {
	return s.cfg
}

// Solve finds an optimal vertex of the LP relaxation of p.
func (s *Solver) Solve(p *model.Problem) (*Result, error) {
	start := time.Now()
	run, err := s.Start(p)
	if err != nil {
		s.cfg.Observer.Solved(Outcome(err), time.Since(start))
		return nil, err
	}
	res := run.Result()
	s.cfg.Observer.Solved(Outcome(nil), time.Since(start))
	s.cfg.Logger.Info("simplex solved",
		"problem", p.Name,
		"optimum", res.Optimum.RatString(),
		"pivots", res.Pivots,
	)
	return res, nil
}

// Start builds the tableau and runs phase 1 and phase 2, returning the live
// state so callers can keep pivoting on it.
func (s *Solver) Start(p *model.Problem) (*Run, error) {
	std, err := Build(p)
	if err != nil {
		return nil, err
	}
	run := &Run{
		Tableau:   std.Tableau,
		Basis:     std.Basis,
		NumVars:   std.NumVars,
		Objective: std.Objective,
		History:   model.NewHistory(),
		cfg:       s.cfg,
		log:       s.cfg.Logger.With("problem", p.Name),
	}
	if s.cfg.NoHistory {
		run.History = nil
	}
	if err := run.phaseOne(std); err != nil {
		return nil, err
	}
	if err := run.phaseTwo(); err != nil {
		return nil, err
	}
	return run, nil
}

// Outcome names the result of a solve for metrics and logs.
func Outcome(err error) string {
	switch {
	case err == nil:
		return "optimal"
	case errors.Is(err, ErrInfeasible):
		return "infeasible"
	case errors.Is(err, ErrUnbounded):
		return "unbounded"
	case errors.Is(err, ErrIterationLimit):
		return "iteration_limit"
	}
	return "error"
}

// Run is the mutable state of one solve. It is not safe for concurrent use.
type Run struct {
	Tableau   *model.Tableau
	Basis     []int
	NumVars   int
	Objective model.Objective

	History  *model.History
	Warnings []Warning
	Pivots   int

	cfg Config
	log *slog.Logger
}

func (r *Run) Logger() *slog.Logger {
	return r.log
}

func (r *Run) Observer() Observer {
	return r.cfg.Observer
}

// Record appends the current tableau and basis to the history.
func (r *Run) Record(label string) {
	r.History.Record(label, r.Tableau, r.Basis)
}

// Pivot performs one pivot on (row, col), updates the basis and records
// the step.
func (r *Run) Pivot(row, col int, phase, label string) {
	r.Tableau.Pivot(row, col)
	r.Basis[row] = col
	r.Pivots++
	r.cfg.Observer.Pivot(phase)
	r.Record(label)
}

// Warn records a non-fatal diagnostic.
func (r *Run) Warn(w Warning) {
	r.Warnings = append(r.Warnings, w)
	r.cfg.Observer.DegeneratePivot(w.Phase)
	r.log.Warn(w.Kind.String(), "step", w.Step, "row", w.Row, "column", w.Column)
}

// Optimal reports whether every objective-row entry, RHS excluded, is <= 0.
func (r *Run) Optimal() bool {
	t := r.Tableau
	for c := range t.RHSCol() {
		if t.At(0, c).Sign() > 0 {
			return false
		}
	}
	return true
}

// Optimum converts the objective row's RHS back to the problem's
// direction.
func (r *Run) Optimum() *big.Rat {
	v := new(big.Rat).Set(r.Tableau.RHS(0))
	if r.Objective.Direction == model.Maximize {
		v.Neg(v)
	}
	return v
}

func (r *Run) Values() []*big.Rat {
	return model.Extract(r.Tableau, r.Basis, r.NumVars)
}

func (r *Run) Result() *Result {
	x := r.Values()
	return &Result{
		Optimum:  r.Optimum(),
		Values:   x,
		Solution: model.Labeled(x),
		Tableau:  r.Tableau.Snapshot(),
		Basis:    append([]int(nil), r.Basis...),
		History:  r.History,
		Warnings: append([]Warning(nil), r.Warnings...),
		Pivots:   r.Pivots,
	}
}

func (r *Run) phaseOne(std *Standard) error {
	if std.NumArtificial == 0 {
		return nil
	}
	t := r.Tableau
	artStart := std.ArtificialStart()
	artEnd := artStart + std.NumArtificial

	// minimize the sum of artificials, i.e. maximize -sum
	for c := range t.NumCols {
		t.SetInt(0, c, 0)
	}
	for c := artStart; c < artEnd; c++ {
		t.SetInt(0, c, -1)
	}
	one := big.NewRat(1, 1)
	for _, row := range std.ArtificialRows {
		t.AddScaledRow(0, row, one)
	}
	r.Record(PhaseOne + " initial")
	r.log.Debug("phase 1 started", "artificials", std.NumArtificial)

	if err := r.iterate(PhaseOne); err != nil {
		return err
	}

	for row := 1; row < t.NumRows; row++ {
		if r.Basis[row] >= artStart && t.RHS(row).Sign() != 0 {
			return fmt.Errorf("artificial x%d = %s in row %d: %w",
				r.Basis[row]+1, t.RHS(row).RatString(), row, ErrInfeasible)
		}
	}

	if err := r.driveOutArtificials(artStart); err != nil {
		return err
	}
	if err := t.RemoveCols(artStart, artEnd); err != nil {
		return err
	}
	r.log.Debug("phase 1 finished", "pivots", r.Pivots, "rows", t.NumRows-1)
	return nil
}

// driveOutArtificials pivots zero-level artificial variables out of the
// basis. A row with no nonzero entry outside the artificial columns is a
// linear combination of the others and is dropped.
func (r *Run) driveOutArtificials(artStart int) error {
	t := r.Tableau
	for row := t.NumRows - 1; row >= 1; row-- {
		if r.Basis[row] < artStart {
			continue
		}
		col := -1
		for c := range artStart {
			if t.At(row, c).Sign() != 0 {
				col = c
				break
			}
		}
		if col >= 0 {
			r.Pivot(row, col, PhaseOne, fmt.Sprintf("%s drive-out row %d", PhaseOne, row))
			continue
		}
		if err := t.RemoveRow(row); err != nil {
			return err
		}
		r.Basis = append(r.Basis[:row], r.Basis[row+1:]...)
		r.log.Debug("redundant row removed", "row", row)
	}
	return nil
}

func (r *Run) phaseTwo() error {
	t := r.Tableau
	setObjectiveRow(t, r.Objective)
	neg := new(big.Rat)
	for row := 1; row < t.NumRows; row++ {
		b := r.Basis[row]
		if t.At(0, b).Sign() == 0 {
			continue
		}
		neg.Neg(t.At(0, b))
		t.AddScaledRow(0, row, neg)
	}
	r.Record(PhaseTwo + " initial")
	r.log.Debug("phase 2 started")
	return r.iterate(PhaseTwo)
}

func (r *Run) iterate(phase string) error {
	for k := 1; !r.Optimal(); k++ {
		if k > r.cfg.MaxPivots {
			return fmt.Errorf("%s after %d pivots: %w", phase, r.cfg.MaxPivots, ErrIterationLimit)
		}
		col := r.KeyColumn()
		row, ratio, err := r.KeyRow(col)
		if err != nil {
			return fmt.Errorf("%s pivot %d: %w", phase, k, err)
		}
		label := fmt.Sprintf("%s pivot %d", phase, k)
		if ratio.Sign() == 0 {
			r.Warn(Warning{Kind: Degenerate, Phase: phase, Step: label, Row: row, Column: col})
		}
		r.Pivot(row, col, phase, label)
	}
	return nil
}

// KeyColumn picks the entering column by the configured rule, earliest
// index on ties.
func (r *Run) KeyColumn() int {
	t := r.Tableau
	key := -1
	var best, abs big.Rat
	for c := range t.RHSCol() {
		v := t.At(0, c)
		switch r.cfg.KeyColumnRule {
		case LargestMagnitude:
			abs.Abs(v)
			if key < 0 || abs.Cmp(&best) > 0 {
				best.Set(&abs)
				key = c
			}
		default:
			if v.Sign() > 0 && (key < 0 || v.Cmp(&best) > 0) {
				best.Set(v)
				key = c
			}
		}
	}
	return key
}

// KeyRow runs the minimum ratio test on col, earliest row on ties.
func (r *Run) KeyRow(col int) (int, *big.Rat, error) {
	t := r.Tableau
	key := -1
	var best *big.Rat
	for row := 1; row < t.NumRows; row++ {
		a := t.At(row, col)
		if a.Sign() <= 0 {
			continue
		}
		ratio := new(big.Rat).Quo(t.RHS(row), a)
		if best == nil || ratio.Cmp(best) < 0 {
			best = ratio
			key = row
		}
	}
	if key < 0 {
		return 0, nil, fmt.Errorf("x%d has no positive entry: %w", col+1, ErrUnbounded)
	}
	return key, best, nil
}
