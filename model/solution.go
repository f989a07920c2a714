package model

import "math/big"

// Extract reads the decision variable values out of a tableau and its
// basis. Basic decision variables take their row's right-hand side, every
// other decision variable is zero.
func Extract(t *Tableau, basis []int, numVars int) []*big.Rat {
	x := make([]*big.Rat, numVars)
	for r := 1; r < len(basis) && r < t.NumRows; r++ {
		if v := basis[r]; v >= 0 && v < numVars {
			x[v] = new(big.Rat).Set(t.RHS(r))
		}
	}
	for i := range x {
		if x[i] == nil {
			x[i] = new(big.Rat)
		}
	}
	return x
}

// Labeled maps values to x_1..x_n labels.
func Labeled(x []*big.Rat) map[string]*big.Rat {
	m := make(map[string]*big.Rat, len(x))
	for i, v := range x {
		m[VarLabel(i)] = new(big.Rat).Set(v)
	}
	return m
}

// IsIntegral reports whether every value has denominator one.
func IsIntegral(x []*big.Rat) bool {
	for _, v := range x {
		if !v.IsInt() {
			return false
		}
	}
	return true
}
