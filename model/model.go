package model

import (
	"errors"
	"fmt"
	"math/big"
	"strings"
)

var ErrDimension = errors.New("model: dimension mismatch")

// Relation is the relational operator of a constraint.
type Relation int

const (
	LessEqual Relation = iota
	GreaterEqual
	Equal
)

func (r Relation) String() string {
	switch r {
	case LessEqual:
		return "<="
	case GreaterEqual:
		return ">="
	case Equal:
		return "="
	}
	return fmt.Sprintf("Relation(%d)", int(r))
}

// Flip returns the relation obtained by multiplying both sides by -1.
func (r Relation) Flip() Relation {
	switch r {
	case LessEqual:
		return GreaterEqual
	case GreaterEqual:
		return LessEqual
	}
	return r
}

// Holds reports whether lhs r rhs.
func (r Relation) Holds(lhs, rhs *big.Rat) bool {
	c := lhs.Cmp(rhs)
	switch r {
	case LessEqual:
		return c <= 0
	case GreaterEqual:
		return c >= 0
	}
	return c == 0
}

type Direction int

const (
	Minimize Direction = iota
	Maximize
)

func (d Direction) String() string {
	if d == Maximize {
		return "maximize"
	}
	return "minimize"
}

// Constraint is Coeffs·x Relation RHS over the decision variables.
type Constraint struct {
	Coeffs   []*big.Rat
	Relation Relation
	RHS      *big.Rat
}

func (c Constraint) String() string {
	var b strings.Builder
	b.WriteString(LinearForm(c.Coeffs))
	b.WriteString(" ")
	b.WriteString(c.Relation.String())
	b.WriteString(" ")
	b.WriteString(c.RHS.RatString())
	return b.String()
}

// Satisfied substitutes x into the constraint.
func (c Constraint) Satisfied(x []*big.Rat) bool {
	return c.Relation.Holds(Dot(c.Coeffs, x), c.RHS)
}

type Objective struct {
	Direction Direction
	Coeffs    []*big.Rat
}

func (o Objective) String() string {
	return o.Direction.String() + " " + LinearForm(o.Coeffs)
}

// Value evaluates the objective at x.
func (o Objective) Value(x []*big.Rat) *big.Rat {
	return Dot(o.Coeffs, x)
}

// Problem is an LP/ILP over NumVars nonnegative decision variables.
type Problem struct {
	Name        string
	NumVars     int
	Constraints []Constraint
	Objective   Objective
}

// Validate checks that every coefficient vector has NumVars entries.
func (p *Problem) Validate() error {
	if p.NumVars <= 0 {
		return fmt.Errorf("num vars %d: %w", p.NumVars, ErrDimension)
	}
	if len(p.Objective.Coeffs) != p.NumVars {
		return fmt.Errorf("objective has %d coefficients, want %d: %w",
			len(p.Objective.Coeffs), p.NumVars, ErrDimension)
	}
	for i, c := range p.Constraints {
		if len(c.Coeffs) != p.NumVars {
			return fmt.Errorf("constraint %d has %d coefficients, want %d: %w",
				i+1, len(c.Coeffs), p.NumVars, ErrDimension)
		}
		if c.RHS == nil {
			return fmt.Errorf("constraint %d has no rhs: %w", i+1, ErrDimension)
		}
	}
	return nil
}

// VarLabel returns the external 1-based label of decision variable i.
func VarLabel(i int) string {
	return fmt.Sprintf("x_%d", i+1)
}

// Dot returns a·x, treating nil entries as zero.
func Dot(a, x []*big.Rat) *big.Rat {
	sum := new(big.Rat)
	var term big.Rat
	for i := range a {
		if i >= len(x) || a[i] == nil || x[i] == nil {
			continue
		}
		term.Mul(a[i], x[i])
		sum.Add(sum, &term)
	}
	return sum
}

// LinearForm renders coeffs as a sum over x_1..x_n, skipping zeros.
func LinearForm(coeffs []*big.Rat) string {
	var b strings.Builder
	for i, c := range coeffs {
		if c == nil || c.Sign() == 0 {
			continue
		}
		abs := new(big.Rat).Abs(c)
		switch {
		case b.Len() == 0 && c.Sign() < 0:
			b.WriteString("-")
		case b.Len() > 0 && c.Sign() < 0:
			b.WriteString(" - ")
		case b.Len() > 0:
			b.WriteString(" + ")
		}
		b.WriteString(abs.RatString())
		b.WriteString(VarLabel(i))
	}
	if b.Len() == 0 {
		return "0"
	}
	return b.String()
}
