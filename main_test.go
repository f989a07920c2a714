package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"q.log/gomory/instance"
	"q.log/gomory/internal/config"
	"q.log/gomory/simplex"
)

func TestRunInteger(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := run([]string{"--log-level=error", "testdata/workshop.yaml"}, &stdout, &stderr)
	require.Equal(t, exitOK, code, stderr.String())

	out := stdout.String()
	assert.Contains(t, out, "== testdata/workshop.yaml")
	assert.Contains(t, out, "maximize 8x_1 + 6x_2")
	assert.Contains(t, out, "cut 1 from row")
	assert.Contains(t, out, "optimum: 36 (≈ 36)")
	assert.Contains(t, out, "x_1 = 3 (≈ 3)")
	assert.Contains(t, out, "x_2 = 2 (≈ 2)")
}

func TestRunRelaxationOnly(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := run([]string{"--relaxation-only", "--log-level=error", "testdata/workshop.yaml"}, &stdout, &stderr)
	require.Equal(t, exitOK, code)
	assert.Contains(t, stdout.String(), "optimum: 376/9")
	assert.NotContains(t, stdout.String(), "cut 1")
}

func TestRunBatchKeepsArgumentOrder(t *testing.T) {
	var stdout, stderr bytes.Buffer
	files := []string{"testdata/covering.yaml", "testdata/infeasible.yaml", "testdata/halves.yaml", "testdata/workshop.yaml"}
	code := run(append([]string{"--workers=3", "--log-level=error"}, files...), &stdout, &stderr)
	assert.Equal(t, exitFailed, code)

	out := stdout.String()
	last := -1
	for _, f := range files {
		i := strings.Index(out, "== "+f)
		require.Greater(t, i, last, f)
		last = i
	}
	assert.Contains(t, out, "optimum: 9 (≈ 9)")
	assert.Contains(t, out, "infeasible")
	assert.Contains(t, out, "optimum: 28 (≈ 28)")
}

func TestRunHistoryAndMetrics(t *testing.T) {
	metrics := filepath.Join(t.TempDir(), "gomory.prom")
	var stdout, stderr bytes.Buffer
	code := run([]string{"--history", "--metrics-file", metrics, "--log-level=error", "testdata/covering.yaml"}, &stdout, &stderr)
	require.Equal(t, exitOK, code)

	out := stdout.String()
	assert.Contains(t, out, "phase-1 initial")
	assert.Contains(t, out, "phase-2 initial")
	assert.Contains(t, out, "f(x)")

	data, err := os.ReadFile(metrics)
	require.NoError(t, err)
	assert.Contains(t, string(data), `gomory_solves_total{outcome="optimal"} 1`)
	assert.Contains(t, string(data), `gomory_pivots_total{phase="phase-1"}`)
}

func TestRunUsage(t *testing.T) {
	var stdout, stderr bytes.Buffer
	assert.Equal(t, exitUsage, run(nil, &stdout, &stderr))
	assert.Contains(t, stderr.String(), "usage: gomory")

	stderr.Reset()
	assert.Equal(t, exitUsage, run([]string{"--key-column-rule=random", "testdata/workshop.yaml"}, &stdout, &stderr))

	stdout.Reset()
	assert.Equal(t, exitFailed, run([]string{"--log-level=error", "testdata/missing.yaml"}, &stdout, &stderr))
	assert.Contains(t, stdout.String(), "error:")
}

func TestRunMPSDirection(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := run([]string{"--log-level=error", "testdata/bounded.mps"}, &stdout, &stderr)
	require.Equal(t, exitOK, code, stderr.String())
	assert.Contains(t, stdout.String(), "minimize -3x_1 - 2x_2")
	assert.Contains(t, stdout.String(), "optimum: -15 (≈ -15)")

	stdout.Reset()
	code = run([]string{"--log-level=error", "--mps-direction=max", "testdata/bounded.mps"}, &stdout, &stderr)
	require.Equal(t, exitOK, code, stderr.String())
	assert.Contains(t, stdout.String(), "optimum: -4 (≈ -4)")
	assert.Contains(t, stdout.String(), "x_2 = 2 (≈ 2)")
}

func TestRunRejectsFreeColumns(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := run([]string{"--log-level=error", "testdata/free.mps"}, &stdout, &stderr)
	assert.Equal(t, exitFailed, code)
	assert.Contains(t, stdout.String(), "unsupported column bounds")
}

type brokenWriter struct{}

func (brokenWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }

func TestRenderReportsWriteErrors(t *testing.T) {
	inst, err := instance.LoadFile("testdata/covering.yaml")
	require.NoError(t, err)
	res, err := simplex.NewSolver().Solve(inst.Problem)
	require.NoError(t, err)

	err = render(brokenWriter{}, res, nil, &config.Config{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "write solution")

	err = render(brokenWriter{}, res, nil, &config.Config{Solver: config.SolverConfig{History: true}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "write history")

	var buf bytes.Buffer
	require.NoError(t, render(&buf, res, nil, &config.Config{Solver: config.SolverConfig{History: true}}))
	assert.Contains(t, buf.String(), "phase-1 initial")
	assert.Contains(t, buf.String(), "optimum: 9")
}
