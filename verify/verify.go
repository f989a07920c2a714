// Package verify recomputes optima with floating point solvers so exact
// results can be cross-checked.
package verify

import (
	"errors"
	"fmt"
	"math"
	"math/big"
	"runtime"

	"github.com/lukpank/go-glpk/glpk"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize/convex/lp"

	"q.log/gomory/model"
	"q.log/gomory/simplex"
)

var ErrMismatch = errors.New("verify: optimum mismatch")

// Tolerance is the relative tolerance used by Agrees.
const Tolerance = 1e-6

// Relaxation solves the LP relaxation of p with gonum's simplex and returns
// the optimum in p's direction. Infeasible and unbounded problems wrap the
// simplex package sentinels.
func Relaxation(p *model.Problem) (float64, error) {
	if err := p.Validate(); err != nil {
		return 0, err
	}
	c, a, b, err := standardForm(p)
	if err != nil {
		return 0, fmt.Errorf("gonum: %w", err)
	}
	var opt float64
	if a != nil {
		opt, _, err = lp.Simplex(c, a, b, 0, nil)
	}
	switch {
	case errors.Is(err, lp.ErrInfeasible):
		return 0, fmt.Errorf("gonum: %w", simplex.ErrInfeasible)
	case errors.Is(err, lp.ErrUnbounded):
		return 0, fmt.Errorf("gonum: %w", simplex.ErrUnbounded)
	case err != nil:
		return 0, fmt.Errorf("gonum: %w", err)
	}
	if p.Objective.Direction == model.Maximize {
		opt = -opt
	}
	return opt, nil
}

// standardForm turns p into min cᵀx, Ax = b, x >= 0 with one slack column per
// inequality. Variables absent from every constraint are fixed at zero, or
// make the problem unbounded when they improve the objective; gonum rejects
// all-zero columns. A nil matrix means nothing is left to optimize.
func standardForm(p *model.Problem) ([]float64, *mat.Dense, []float64, error) {
	var vars []int
	for j := range p.NumVars {
		used := false
		for _, con := range p.Constraints {
			if con.Coeffs[j].Sign() != 0 {
				used = true
				break
			}
		}
		cost := p.Objective.Coeffs[j].Sign()
		if p.Objective.Direction == model.Maximize {
			cost = -cost
		}
		switch {
		case used:
			vars = append(vars, j)
		case cost < 0:
			return nil, nil, nil, fmt.Errorf("%s is unconstrained: %w", model.VarLabel(j), simplex.ErrUnbounded)
		}
	}

	var rows []model.Constraint
	slacks := 0
	for _, con := range p.Constraints {
		zero := true
		for _, j := range vars {
			if con.Coeffs[j].Sign() != 0 {
				zero = false
				break
			}
		}
		if zero && con.Relation == model.Equal {
			if con.RHS.Sign() != 0 {
				return nil, nil, nil, fmt.Errorf("0 = %s: %w", con.RHS.RatString(), simplex.ErrInfeasible)
			}
			continue
		}
		if con.Relation != model.Equal {
			slacks++
		}
		rows = append(rows, con)
	}
	cols := len(vars) + slacks
	if len(rows) == 0 || cols == 0 {
		return nil, nil, nil, nil
	}
	if len(rows) > cols {
		return nil, nil, nil, fmt.Errorf("%d equality rows over %d columns", len(rows), cols)
	}

	c := make([]float64, cols)
	for k, j := range vars {
		c[k], _ = p.Objective.Coeffs[j].Float64()
		if p.Objective.Direction == model.Maximize {
			c[k] = -c[k]
		}
	}
	a := mat.NewDense(len(rows), cols, nil)
	b := make([]float64, len(rows))
	s := len(vars)
	for i, con := range rows {
		for k, j := range vars {
			f, _ := con.Coeffs[j].Float64()
			a.Set(i, k, f)
		}
		switch con.Relation {
		case model.LessEqual:
			a.Set(i, s, 1)
			s++
		case model.GreaterEqual:
			a.Set(i, s, -1)
			s++
		}
		b[i], _ = con.RHS.Float64()
	}
	return c, a, b, nil
}

// Integer solves p as a pure integer program with GLPK's branch and cut and
// returns the optimum and an optimal point.
func Integer(p *model.Problem) (float64, []float64, error) {
	if err := p.Validate(); err != nil {
		return 0, nil, err
	}
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	prob := glpk.New()
	defer prob.Delete()
	prob.SetProbName(p.Name)
	if p.Objective.Direction == model.Maximize {
		prob.SetObjDir(glpk.MAX)
	} else {
		prob.SetObjDir(glpk.MIN)
	}

	prob.AddCols(p.NumVars)
	for j, v := range p.Objective.Coeffs {
		f, _ := v.Float64()
		prob.SetColName(j+1, model.VarLabel(j))
		prob.SetColBnds(j+1, glpk.LO, 0, 0)
		prob.SetColKind(j+1, glpk.IV)
		prob.SetObjCoef(j+1, f)
	}

	if len(p.Constraints) > 0 {
		prob.AddRows(len(p.Constraints))
	}
	for i, con := range p.Constraints {
		rhs, _ := con.RHS.Float64()
		switch con.Relation {
		case model.LessEqual:
			prob.SetRowBnds(i+1, glpk.UP, 0, rhs)
		case model.GreaterEqual:
			prob.SetRowBnds(i+1, glpk.LO, rhs, 0)
		default:
			prob.SetRowBnds(i+1, glpk.FX, rhs, rhs)
		}
		// index 0 is ignored by glpk
		ind := []int32{0}
		val := []float64{0}
		for j, v := range con.Coeffs {
			if v.Sign() == 0 {
				continue
			}
			f, _ := v.Float64()
			ind = append(ind, int32(j+1))
			val = append(val, f)
		}
		prob.SetMatRow(i+1, ind, val)
	}

	iocp := glpk.NewIocp()
	iocp.SetPresolve(true)
	iocp.SetMsgLev(glpk.MSG_OFF)
	if err := prob.Intopt(iocp); err != nil {
		return 0, nil, fmt.Errorf("glpk: %w", err)
	}
	switch prob.MipStatus() {
	case glpk.OPT:
	case glpk.NOFEAS:
		return 0, nil, fmt.Errorf("glpk: %w", simplex.ErrInfeasible)
	default:
		return 0, nil, fmt.Errorf("glpk: mip status %d: %w", prob.MipStatus(), simplex.ErrUnbounded)
	}

	x := make([]float64, p.NumVars)
	for j := range x {
		x[j] = prob.MipColVal(j + 1)
	}
	return prob.MipObjVal(), x, nil
}

// Agrees reports whether the float optimum matches the exact one within
// Tolerance.
func Agrees(exact *big.Rat, f float64) bool {
	e, _ := exact.Float64()
	return math.Abs(e-f) <= Tolerance*math.Max(1, math.Abs(e))
}

// Check compares an exact optimum with an independently computed one.
func Check(exact *big.Rat, f float64) error {
	if Agrees(exact, f) {
		return nil
	}
	return fmt.Errorf("exact %s, float %g: %w", exact.RatString(), f, ErrMismatch)
}
