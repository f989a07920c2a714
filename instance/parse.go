package instance

import (
	"errors"
	"fmt"
	"math/big"
	"strconv"
	"strings"

	"q.log/gomory/model"
)

var ErrSyntax = errors.New("instance: syntax error")

// ParseProblem builds a problem from textual constraints such as
// "2x_1 + 5x_2 <= 19" and an objective such as "8x_1 + 6x_2".
func ParseProblem(numVars int, constraints []string, direction, objective string) (*model.Problem, error) {
	if numVars <= 0 {
		return nil, fmt.Errorf("num vars must be positive, got %d: %w", numVars, ErrSyntax)
	}
	obj, err := ParseObjective(direction, objective, numVars)
	if err != nil {
		return nil, err
	}
	p := &model.Problem{NumVars: numVars, Objective: obj}
	for i, s := range constraints {
		c, err := ParseConstraint(s, numVars)
		if err != nil {
			return nil, fmt.Errorf("constraint %d: %w", i+1, err)
		}
		p.Constraints = append(p.Constraints, c)
	}
	return p, nil
}

func ParseDirection(s string) (model.Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "min", "minimize", "minimise":
		return model.Minimize, nil
	case "max", "maximize", "maximise":
		return model.Maximize, nil
	}
	return 0, fmt.Errorf("unknown direction %q: %w", s, ErrSyntax)
}

func ParseObjective(direction, expr string, numVars int) (model.Objective, error) {
	dir, err := ParseDirection(direction)
	if err != nil {
		return model.Objective{}, err
	}
	coeffs, rest, err := parseLinear(strings.Fields(expr), numVars)
	if err != nil {
		return model.Objective{}, fmt.Errorf("objective %q: %w", expr, err)
	}
	if len(rest) > 0 {
		return model.Objective{}, fmt.Errorf("objective %q: unexpected %q: %w", expr, rest[0], ErrSyntax)
	}
	return model.Objective{Direction: dir, Coeffs: coeffs}, nil
}

func ParseConstraint(s string, numVars int) (model.Constraint, error) {
	coeffs, rest, err := parseLinear(strings.Fields(s), numVars)
	if err != nil {
		return model.Constraint{}, fmt.Errorf("%q: %w", s, err)
	}
	if len(rest) == 0 {
		return model.Constraint{}, fmt.Errorf("%q: missing relation: %w", s, ErrSyntax)
	}
	rel, ok := parseRelation(rest[0])
	if !ok {
		return model.Constraint{}, fmt.Errorf("%q: unexpected %q: %w", s, rest[0], ErrSyntax)
	}
	rhs, err := parseScalar(rest[1:])
	if err != nil {
		return model.Constraint{}, fmt.Errorf("%q: %w", s, err)
	}
	return model.Constraint{Coeffs: coeffs, Relation: rel, RHS: rhs}, nil
}

// parseLinear consumes terms until a token that is neither a sign nor a
// term and returns the remaining tokens.
func parseLinear(tokens []string, numVars int) ([]*big.Rat, []string, error) {
	coeffs := make([]*big.Rat, numVars)
	for i := range coeffs {
		coeffs[i] = new(big.Rat)
	}
	sign := 1
	pending := false
	terms := 0
	for i, tok := range tokens {
		switch {
		case tok == "+":
			pending = true
		case tok == "-":
			sign = -sign
			pending = true
		case strings.Contains(tok, "x_"):
			idx, coeff, err := parseTerm(tok, numVars)
			if err != nil {
				return nil, nil, err
			}
			if sign < 0 {
				coeff.Neg(coeff)
			}
			coeffs[idx].Add(coeffs[idx], coeff)
			sign, pending = 1, false
			terms++
		default:
			if pending {
				return nil, nil, fmt.Errorf("dangling sign before %q: %w", tok, ErrSyntax)
			}
			if terms == 0 {
				return nil, nil, fmt.Errorf("expected a term, got %q: %w", tok, ErrSyntax)
			}
			return coeffs, tokens[i:], nil
		}
	}
	if pending {
		return nil, nil, fmt.Errorf("dangling sign: %w", ErrSyntax)
	}
	if terms == 0 {
		return nil, nil, fmt.Errorf("no terms: %w", ErrSyntax)
	}
	return coeffs, nil, nil
}

// parseTerm reads tokens like "2x_1", "-3/2x_2", "0.5x_3" or "x_4".
func parseTerm(tok string, numVars int) (int, *big.Rat, error) {
	at := strings.Index(tok, "x_")
	prefix, suffix := tok[:at], tok[at+2:]
	idx, err := strconv.Atoi(suffix)
	if err != nil {
		return 0, nil, fmt.Errorf("bad variable index in %q: %w", tok, ErrSyntax)
	}
	if idx < 1 || idx > numVars {
		return 0, nil, fmt.Errorf("variable x_%d out of range 1..%d: %w", idx, numVars, ErrSyntax)
	}
	prefix = strings.TrimSuffix(prefix, "*")
	coeff := new(big.Rat)
	switch prefix {
	case "", "+":
		coeff.SetInt64(1)
	case "-":
		coeff.SetInt64(-1)
	default:
		if _, ok := coeff.SetString(prefix); !ok {
			return 0, nil, fmt.Errorf("bad coefficient in %q: %w", tok, ErrSyntax)
		}
	}
	return idx - 1, coeff, nil
}

func parseRelation(tok string) (model.Relation, bool) {
	switch tok {
	case "<=", "≤", "=<":
		return model.LessEqual, true
	case ">=", "≥", "=>":
		return model.GreaterEqual, true
	case "=", "==":
		return model.Equal, true
	}
	return 0, false
}

func parseScalar(tokens []string) (*big.Rat, error) {
	s := strings.Join(tokens, "")
	if s == "" {
		return nil, fmt.Errorf("missing right-hand side: %w", ErrSyntax)
	}
	v, ok := new(big.Rat).SetString(s)
	if !ok {
		return nil, fmt.Errorf("bad right-hand side %q: %w", s, ErrSyntax)
	}
	return v, nil
}
