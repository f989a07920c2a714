package model_test

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"q.log/gomory/model"
)

func r(a, b int64) *big.Rat { return big.NewRat(a, b) }

func rats(vs ...int64) []*big.Rat {
	out := make([]*big.Rat, len(vs))
	for i, v := range vs {
		out[i] = big.NewRat(v, 1)
	}
	return out
}

func fill(t *model.Tableau, rows ...[]*big.Rat) {
	for i, row := range rows {
		for j, v := range row {
			t.Set(i, j, v)
		}
	}
}

func ratEqual(t *testing.T, want, got *big.Rat, msgAndArgs ...any) {
	t.Helper()
	assert.Zero(t, want.Cmp(got), append([]any{"want %s, got %s", want.RatString(), got.RatString()}, msgAndArgs...)...)
}

// workshop returns the initial tableau of
// max 8x1 + 6x2, 2x1 + 5x2 <= 19, 4x1 + x2 <= 16.
func workshop() *model.Tableau {
	t := model.NewTableau(3, 5)
	fill(t,
		rats(8, 6, 0, 0, 0),
		rats(2, 5, 1, 0, 19),
		rats(4, 1, 0, 1, 16),
	)
	return t
}

func TestPivotMakesUnitColumn(t *testing.T) {
	tab := workshop()
	tab.Pivot(2, 0)
	assert.True(t, tab.IsUnitColumn(2, 0))
	ratEqual(t, r(4, 1), tab.RHS(2))
	ratEqual(t, r(11, 1), tab.RHS(1))
	ratEqual(t, r(-32, 1), tab.RHS(0))

	tab.Pivot(1, 1)
	assert.True(t, tab.IsUnitColumn(1, 1))
	assert.True(t, tab.IsUnitColumn(2, 0))
	ratEqual(t, r(22, 9), tab.RHS(1))
	ratEqual(t, r(61, 18), tab.RHS(2))
	ratEqual(t, r(-376, 9), tab.RHS(0))
}

func TestAddRowAndCol(t *testing.T) {
	tab := workshop()
	require.Error(t, tab.AddRow(rats(1, 2)))
	require.NoError(t, tab.AddRow(rats(1, 1, 0, 0, 7)))
	assert.Equal(t, 4, tab.NumRows)

	_, err := tab.AddCol(rats(1))
	require.Error(t, err)
	col, err := tab.AddCol(rats(0, 0, 0, 1))
	require.NoError(t, err)
	assert.Equal(t, 4, col)
	assert.Equal(t, 6, tab.NumCols)
	assert.Equal(t, 5, tab.RHSCol())
	ratEqual(t, r(7, 1), tab.RHS(3))
	ratEqual(t, r(1, 1), tab.At(3, col))
	ratEqual(t, r(19, 1), tab.RHS(1))
}

func TestRemove(t *testing.T) {
	tab := workshop()
	require.NoError(t, tab.RemoveCols(2, 4))
	assert.Equal(t, 3, tab.NumCols)
	ratEqual(t, r(16, 1), tab.RHS(2))

	require.Error(t, tab.RemoveCols(0, 3))
	require.Error(t, tab.RemoveRow(0))
	require.NoError(t, tab.RemoveRow(1))
	assert.Equal(t, 2, tab.NumRows)
	ratEqual(t, r(4, 1), tab.At(1, 0))
}

func TestSnapshotIsDeepCopy(t *testing.T) {
	tab := workshop()
	snap := tab.Snapshot()
	tab.Pivot(2, 0)

	assert.Equal(t, 3, snap.Rows())
	assert.Equal(t, 5, snap.Cols())
	ratEqual(t, r(8, 1), snap.At(0, 0))
	ratEqual(t, r(16, 1), snap.RHS(2))

	row := snap.Row(1)
	row[0].SetInt64(99)
	ratEqual(t, r(2, 1), snap.At(1, 0))

	clone := snap.Tableau()
	clone.SetInt(1, 0, 42)
	ratEqual(t, r(2, 1), snap.At(1, 0))

	var zero model.Snapshot
	assert.Zero(t, zero.Rows())
	assert.Zero(t, zero.Cols())
}

func TestHistory(t *testing.T) {
	h := model.NewHistory()
	tab := workshop()
	basis := []int{-1, 2, 3}
	h.Record("phase-2 initial", tab, basis)

	tab.Pivot(2, 0)
	basis[2] = 0
	h.Record("phase-2 pivot 1", tab, basis)
	h.Record("phase-2 pivot 1", tab, basis)

	assert.Equal(t, 3, h.Len())
	assert.Equal(t, []string{"phase-2 initial", "phase-2 pivot 1", "phase-2 pivot 1"}, h.Labels())

	first, ok := h.Lookup("phase-2 initial")
	require.True(t, ok)
	assert.Equal(t, []int{-1, 2, 3}, first.Basis)
	ratEqual(t, r(16, 1), first.Tableau.RHS(2))

	first.Basis[1] = 7
	again, _ := h.Lookup("phase-2 initial")
	assert.Equal(t, 2, again.Basis[1])

	last, ok := h.Last()
	require.True(t, ok)
	assert.Equal(t, []int{-1, 2, 0}, last.Basis)

	_, ok = h.Lookup("cut 1")
	assert.False(t, ok)

	var nilHistory *model.History
	nilHistory.Record("ignored", tab, basis)
	assert.Zero(t, nilHistory.Len())
	assert.Empty(t, nilHistory.Labels())
	_, ok = nilHistory.Last()
	assert.False(t, ok)
}

func TestExtract(t *testing.T) {
	tab := workshop()
	tab.Pivot(2, 0)
	tab.Pivot(1, 1)
	x := model.Extract(tab, []int{-1, 1, 0}, 2)
	require.Len(t, x, 2)
	ratEqual(t, r(61, 18), x[0])
	ratEqual(t, r(22, 9), x[1])
	assert.False(t, model.IsIntegral(x))

	x = model.Extract(tab, []int{-1, 2, 3}, 2)
	ratEqual(t, r(0, 1), x[0])
	ratEqual(t, r(0, 1), x[1])
	assert.True(t, model.IsIntegral(x))

	labeled := model.Labeled(rats(3, 2))
	ratEqual(t, r(3, 1), labeled["x_1"])
	ratEqual(t, r(2, 1), labeled["x_2"])
}
