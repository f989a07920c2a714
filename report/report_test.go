package report_test

import (
	"bytes"
	"math/big"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"q.log/gomory/instance"
	"q.log/gomory/report"
	"q.log/gomory/simplex"
)

func solveWorkshop(t *testing.T) *simplex.Result {
	t.Helper()
	p, err := instance.ParseProblem(2,
		[]string{"2x_1 + 5x_2 <= 19", "4x_1 + 1x_2 <= 16"},
		"max", "8x_1 + 6x_2")
	require.NoError(t, err)
	res, err := simplex.NewSolver().Solve(p)
	require.NoError(t, err)
	return res
}

func TestLabels(t *testing.T) {
	assert.Equal(t, []string{"x1", "x2", "x3", "b"}, report.ColumnLabels(4))
	assert.Equal(t, []string{"f(x)", "x2", "x1"}, report.RowLabels([]int{-1, 1, 0}))
}

func TestFloatView(t *testing.T) {
	res := solveWorkshop(t)
	m := report.FloatView(res.Tableau)
	r, c := m.Dims()
	assert.Equal(t, 3, r)
	assert.Equal(t, 5, c)
	assert.InDelta(t, -376.0/9, m.At(0, 4), 1e-12)
	assert.InDelta(t, 22.0/9, m.At(1, 4), 1e-12)
	assert.InDelta(t, 1, m.At(2, 0), 1e-12)
}

func TestWriteStep(t *testing.T) {
	res := solveWorkshop(t)
	step, ok := res.History.Last()
	require.True(t, ok)

	var buf bytes.Buffer
	require.NoError(t, report.WriteStep(&buf, step))
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 5)
	assert.Equal(t, "phase-2 pivot 2", lines[0])
	assert.Equal(t, []string{"x1", "x2", "x3", "x4", "b"}, strings.Fields(lines[1]))
	assert.Equal(t, []string{"f(x)", "0", "0", "-8/9", "-14/9", "-376/9"}, strings.Fields(lines[2]))
	assert.Equal(t, []string{"x2", "0", "1", "2/9", "-1/9", "22/9"}, strings.Fields(lines[3]))
	assert.Equal(t, "x1", strings.Fields(lines[4])[0])
}

func TestWriteHistory(t *testing.T) {
	res := solveWorkshop(t)

	var exact bytes.Buffer
	require.NoError(t, report.WriteHistory(&exact, res.History, false))
	assert.Contains(t, exact.String(), "phase-2 initial")
	assert.Contains(t, exact.String(), "-376/9")

	var float bytes.Buffer
	require.NoError(t, report.WriteHistory(&float, res.History, true))
	assert.Equal(t, 3, strings.Count(float.String(), "T = "))
	assert.Contains(t, float.String(), "phase-2 pivot 1")
}

func TestWriteSolution(t *testing.T) {
	res := solveWorkshop(t)
	var buf bytes.Buffer
	require.NoError(t, report.WriteSolution(&buf, res.Optimum, res.Solution))
	assert.Equal(t, "optimum: 376/9 (≈ 41.7778)\n"+
		"x_1 = 61/18 (≈ 3.3889)\n"+
		"x_2 = 22/9 (≈ 2.4444)\n", buf.String())
}

func TestApprox(t *testing.T) {
	assert.Equal(t, "36", report.Approx(big.NewRat(36, 1)))
	assert.Equal(t, "-0.5", report.Approx(big.NewRat(-1, 2)))
	assert.Equal(t, "0.3333", report.Approx(big.NewRat(1, 3)))
}
