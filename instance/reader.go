package instance

import (
	"errors"
	"fmt"
	"math"
	"math/big"
	"runtime"

	"github.com/lukpank/go-glpk/glpk"
	"github.com/shopspring/decimal"

	"q.log/gomory/model"
)

// ErrUnsupportedBounds reports a column that may go negative. Every
// decision variable is nonnegative in standard form.
var ErrUnsupportedBounds = errors.New("instance: unsupported column bounds")

// Reader reads a mps file to construct a problem
type Reader struct {
	filename  string
	direction model.Direction
}

func NewReader(filename string) *Reader {
	return &Reader{
		filename:  filename,
		direction: model.Minimize,
	}
}

// WithDirection overrides the objective sense, MPS files minimize by default.
func (r *Reader) WithDirection(d model.Direction) *Reader {
	r.direction = d
	return r
}

// ConstructProblem returns the exact problem described by the file. Row
// bounds become relations, ranged rows become a pair of them, and positive
// lower or finite upper column bounds become extra rows. Columns that are
// free or bounded below by a negative value are rejected.
func (r *Reader) ConstructProblem() (*model.Problem, error) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()
	lp := glpk.New()
	defer lp.Delete()
	if err := lp.ReadMPS(glpk.MPS_FILE, nil, r.filename); err != nil {
		return nil, err
	}

	numCols := lp.NumCols()
	if numCols == 0 {
		return nil, errors.New("mps file has no columns")
	}
	p := &model.Problem{NumVars: numCols}

	//populate obj function
	p.Objective.Direction = r.direction
	for c := 1; c <= numCols; c++ {
		p.Objective.Coeffs = append(p.Objective.Coeffs, exact(lp.ObjCoef(c)))
	}

	//populate constraints
	for row := 1; row <= lp.NumRows(); row++ {
		rowVec := zeros(numCols)
		idxs, vals := lp.MatRow(row)
		for i, v := range idxs {
			if v == 0 {
				continue
			}
			rowVec[v-1] = exact(vals[i])
		}
		lb, ub := lp.RowLB(row), lp.RowUB(row)
		switch {
		case isNegInf(lb) && isPosInf(ub):
			continue
		case isNegInf(lb):
			p.Constraints = append(p.Constraints, model.Constraint{Coeffs: rowVec, Relation: model.LessEqual, RHS: exact(ub)})
		case isPosInf(ub):
			p.Constraints = append(p.Constraints, model.Constraint{Coeffs: rowVec, Relation: model.GreaterEqual, RHS: exact(lb)})
		case lb == ub:
			p.Constraints = append(p.Constraints, model.Constraint{Coeffs: rowVec, Relation: model.Equal, RHS: exact(lb)})
		default:
			p.Constraints = append(p.Constraints,
				model.Constraint{Coeffs: rowVec, Relation: model.GreaterEqual, RHS: exact(lb)},
				model.Constraint{Coeffs: cloneRats(rowVec), Relation: model.LessEqual, RHS: exact(ub)},
			)
		}
	}

	for c := range numCols {
		lb, ub := lp.ColLB(c+1), lp.ColUB(c+1)
		if isNegInf(lb) || lb < 0 {
			return nil, fmt.Errorf("column %s lower bound %g: %w", columnName(lp, c+1), lb, ErrUnsupportedBounds)
		}
		if lb != 0 {
			rowVec := zeros(numCols)
			rowVec[c].SetInt64(1)
			p.Constraints = append(p.Constraints, model.Constraint{Coeffs: rowVec, Relation: model.GreaterEqual, RHS: exact(lb)})
		}
		if !isPosInf(ub) {
			rowVec := zeros(numCols)
			rowVec[c].SetInt64(1)
			p.Constraints = append(p.Constraints, model.Constraint{Coeffs: rowVec, Relation: model.LessEqual, RHS: exact(ub)})
		}
	}

	return p, nil
}

func columnName(lp *glpk.Prob, c int) string {
	if name := lp.ColName(c); name != "" {
		return name
	}
	return fmt.Sprintf("x_%d", c)
}

// exact converts through the shortest decimal representation so that
// 0.1 reads as 1/10 rather than its binary expansion.
func exact(v float64) *big.Rat {
	return decimal.NewFromFloat(v).Rat()
}

func isNegInf(v float64) bool {
	return v <= -math.MaxFloat64 || math.IsInf(v, -1)
}

func isPosInf(v float64) bool {
	return v >= math.MaxFloat64 || math.IsInf(v, 1)
}

func zeros(n int) []*big.Rat {
	out := make([]*big.Rat, n)
	for i := range out {
		out[i] = new(big.Rat)
	}
	return out
}

func cloneRats(src []*big.Rat) []*big.Rat {
	out := make([]*big.Rat, len(src))
	for i, v := range src {
		out[i] = new(big.Rat).Set(v)
	}
	return out
}
