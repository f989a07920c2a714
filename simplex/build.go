package simplex

import (
	"math/big"

	"q.log/gomory/model"
)

// Standard is a problem in tableau form together with the bookkeeping the
// two phases need.
type Standard struct {
	Tableau *model.Tableau
	Basis   []int

	NumVars       int
	NumSlack      int
	NumArtificial int

	// ArtificialRows lists the rows that received an artificial variable.
	ArtificialRows []int

	Objective model.Objective
}

// ArtificialStart is the index of the first artificial column.
func (s *Standard) ArtificialStart() int {
	return s.NumVars + s.NumSlack
}

// Build turns p into the initial tableau. Constraints with a negative
// right-hand side are negated first so that every initial RHS is
// nonnegative.
func Build(p *model.Problem) (*Standard, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	rows := make([]model.Constraint, len(p.Constraints))
	numSlack, numArtificial := 0, 0
	for i, c := range p.Constraints {
		if c.RHS.Sign() < 0 {
			c = negate(c)
		}
		rows[i] = c
		switch c.Relation {
		case model.LessEqual:
			numSlack++
		case model.GreaterEqual:
			numSlack++
			numArtificial++
		case model.Equal:
			numArtificial++
		}
	}

	n := p.NumVars
	t := model.NewTableau(1+len(rows), n+numSlack+numArtificial+1)
	s := &Standard{
		Tableau:       t,
		Basis:         make([]int, t.NumRows),
		NumVars:       n,
		NumSlack:      numSlack,
		NumArtificial: numArtificial,
		Objective:     p.Objective,
	}
	s.Basis[0] = -1

	slack, artificial := n, n+numSlack
	for i, c := range rows {
		r := i + 1
		for j, v := range c.Coeffs {
			if v != nil {
				t.Set(r, j, v)
			}
		}
		switch c.Relation {
		case model.LessEqual:
			t.SetInt(r, slack, 1)
			s.Basis[r] = slack
			slack++
		case model.GreaterEqual:
			t.SetInt(r, slack, -1)
			t.SetInt(r, artificial, 1)
			s.Basis[r] = artificial
			s.ArtificialRows = append(s.ArtificialRows, r)
			slack++
			artificial++
		case model.Equal:
			t.SetInt(r, artificial, 1)
			s.Basis[r] = artificial
			s.ArtificialRows = append(s.ArtificialRows, r)
			artificial++
		}
		t.Set(r, t.RHSCol(), c.RHS)
	}

	setObjectiveRow(t, p.Objective)
	return s, nil
}

// setObjectiveRow writes the objective into row 0 using the internal
// convention where every row-0 entry <= 0 means optimal: coefficients are
// negated for minimize and kept for maximize.
func setObjectiveRow(t *model.Tableau, obj model.Objective) {
	for c := range t.NumCols {
		t.SetInt(0, c, 0)
	}
	for j, v := range obj.Coeffs {
		if v == nil {
			continue
		}
		if obj.Direction == model.Maximize {
			t.Set(0, j, v)
		} else {
			t.Set(0, j, new(big.Rat).Neg(v))
		}
	}
}

func negate(c model.Constraint) model.Constraint {
	out := model.Constraint{
		Coeffs:   make([]*big.Rat, len(c.Coeffs)),
		Relation: c.Relation.Flip(),
		RHS:      new(big.Rat).Neg(c.RHS),
	}
	for i, v := range c.Coeffs {
		if v != nil {
			out.Coeffs[i] = new(big.Rat).Neg(v)
		}
	}
	return out
}
