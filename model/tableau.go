package model

import (
	"errors"
	"math/big"
)

// Tableau is a dense matrix of exact rationals. Row 0 is the objective row
// and the last column holds the right-hand sides.
type Tableau struct {
	rows [][]*big.Rat

	NumRows int
	NumCols int
}

func NewTableau(numRows, numCols int) *Tableau {
	t := &Tableau{
		rows:    make([][]*big.Rat, numRows),
		NumRows: numRows,
		NumCols: numCols,
	}
	for r := range numRows {
		t.rows[r] = zeroRow(numCols)
	}
	return t
}

func zeroRow(n int) []*big.Rat {
	row := make([]*big.Rat, n)
	for i := range row {
		row[i] = new(big.Rat)
	}
	return row
}

// At returns the live entry at (row, col). Callers must not retain it
// across pivots.
func (t *Tableau) At(row, col int) *big.Rat {
	return t.rows[row][col]
}

func (t *Tableau) Set(row, col int, v *big.Rat) {
	t.rows[row][col].Set(v)
}

func (t *Tableau) SetInt(row, col int, v int64) {
	t.rows[row][col].SetInt64(v)
}

// RHS returns the right-hand side of row.
func (t *Tableau) RHS(row int) *big.Rat {
	return t.rows[row][t.NumCols-1]
}

// RHSCol is the index of the right-hand side column.
func (t *Tableau) RHSCol() int {
	return t.NumCols - 1
}

// Row returns the live row slice.
func (t *Tableau) Row(row int) []*big.Rat {
	return t.rows[row]
}

// AddRow appends rVec as a new last row.
func (t *Tableau) AddRow(rVec []*big.Rat) error {
	if len(rVec) != t.NumCols {
		return errors.New("mismatch number of columns, i.e. wrong len of rVec")
	}
	row := zeroRow(t.NumCols)
	for i, v := range rVec {
		if v != nil {
			row[i].Set(v)
		}
	}
	t.rows = append(t.rows, row)
	t.NumRows++
	return nil
}

// AddCol inserts a column just before the right-hand side and returns its
// index.
func (t *Tableau) AddCol(cVec []*big.Rat) (int, error) {
	if len(cVec) != t.NumRows {
		return 0, errors.New("mismatch number of rows, i.e. wrong len of cVec")
	}
	at := t.NumCols - 1
	for r := range t.NumRows {
		v := new(big.Rat)
		if cVec[r] != nil {
			v.Set(cVec[r])
		}
		row := append(t.rows[r], nil)
		copy(row[at+1:], row[at:])
		row[at] = v
		t.rows[r] = row
	}
	t.NumCols++
	return at, nil
}

// RemoveCols deletes the columns in [from, to).
func (t *Tableau) RemoveCols(from, to int) error {
	if from < 0 || to > t.NumCols-1 || from > to {
		return errors.New("column does not exists")
	}
	for r := range t.NumRows {
		t.rows[r] = append(t.rows[r][:from], t.rows[r][to:]...)
	}
	t.NumCols -= to - from
	return nil
}

func (t *Tableau) RemoveRow(r int) error {
	if r <= 0 || r >= t.NumRows {
		return errors.New("row does not exists")
	}
	t.rows = append(t.rows[:r], t.rows[r+1:]...)
	t.NumRows--
	return nil
}

// MultiplyRow scales row r by mul.
func (t *Tableau) MultiplyRow(r int, mul *big.Rat) {
	for _, v := range t.rows[r] {
		v.Mul(v, mul)
	}
}

// AddScaledRow performs row[dst] += mul * row[src].
func (t *Tableau) AddScaledRow(dst, src int, mul *big.Rat) {
	if mul.Sign() == 0 {
		return
	}
	var term big.Rat
	for c, v := range t.rows[src] {
		term.Mul(mul, v)
		t.rows[dst][c].Add(t.rows[dst][c], &term)
	}
}

// Pivot makes column col a unit vector with its 1 in row.
func (t *Tableau) Pivot(row, col int) {
	inv := new(big.Rat).Inv(t.rows[row][col])
	t.MultiplyRow(row, inv)
	neg := new(big.Rat)
	for r := range t.NumRows {
		if r == row || t.rows[r][col].Sign() == 0 {
			continue
		}
		neg.Neg(t.rows[r][col])
		t.AddScaledRow(r, row, neg)
	}
}

// IsUnitColumn reports whether col is 1 at row and 0 elsewhere.
func (t *Tableau) IsUnitColumn(row, col int) bool {
	for r := range t.NumRows {
		v := t.rows[r][col]
		if r == row {
			if v.Cmp(big.NewRat(1, 1)) != 0 {
				return false
			}
		} else if v.Sign() != 0 {
			return false
		}
	}
	return true
}

func (t *Tableau) Clone() *Tableau {
	c := &Tableau{
		rows:    make([][]*big.Rat, t.NumRows),
		NumRows: t.NumRows,
		NumCols: t.NumCols,
	}
	for r, row := range t.rows {
		c.rows[r] = copyRats(row)
	}
	return c
}

// Snapshot returns an immutable deep copy of the tableau.
func (t *Tableau) Snapshot() Snapshot {
	return Snapshot{t: t.Clone()}
}

func copyRats(src []*big.Rat) []*big.Rat {
	dst := make([]*big.Rat, len(src))
	for i, v := range src {
		dst[i] = new(big.Rat).Set(v)
	}
	return dst
}

// Snapshot is a read-only copy of a tableau at some point of a solve. It is
// safe to share between goroutines.
type Snapshot struct {
	t *Tableau
}

func (s Snapshot) Rows() int {
	if s.t == nil {
		return 0
	}
	return s.t.NumRows
}

func (s Snapshot) Cols() int {
	if s.t == nil {
		return 0
	}
	return s.t.NumCols
}

// At returns a copy of the entry at (row, col).
func (s Snapshot) At(row, col int) *big.Rat {
	return new(big.Rat).Set(s.t.rows[row][col])
}

// Row returns a copy of row r.
func (s Snapshot) Row(r int) []*big.Rat {
	return copyRats(s.t.rows[r])
}

// RHS returns a copy of the right-hand side of row r.
func (s Snapshot) RHS(r int) *big.Rat {
	return s.At(r, s.t.NumCols-1)
}

// Tableau returns a mutable deep copy.
func (s Snapshot) Tableau() *Tableau {
	return s.t.Clone()
}
