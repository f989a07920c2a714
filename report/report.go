// Package report renders solve histories and solutions for the console.
package report

import (
	"fmt"
	"io"
	"math/big"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/shopspring/decimal"
	"gonum.org/v1/gonum/mat"

	"q.log/gomory/model"
)

// Precision is the number of decimal places of approximate values.
const Precision = 4

// FloatView converts a snapshot to a dense float matrix. Precision is lost;
// the view is for display only.
func FloatView(s model.Snapshot) *mat.Dense {
	rows, cols := s.Rows(), s.Cols()
	data := make([]float64, 0, rows*cols)
	for r := range rows {
		for _, v := range s.Row(r) {
			f, _ := v.Float64()
			data = append(data, f)
		}
	}
	return mat.NewDense(rows, cols, data)
}

// ColumnLabels returns x1..xk followed by b for the right-hand side.
func ColumnLabels(cols int) []string {
	labels := make([]string, cols)
	for i := range cols - 1 {
		labels[i] = fmt.Sprintf("x%d", i+1)
	}
	labels[cols-1] = "b"
	return labels
}

// RowLabels returns f(x) for the objective row and the basic variable of
// every constraint row.
func RowLabels(basis []int) []string {
	labels := make([]string, len(basis))
	labels[0] = "f(x)"
	for i := 1; i < len(basis); i++ {
		labels[i] = fmt.Sprintf("x%d", basis[i]+1)
	}
	return labels
}

// WriteStep prints one history step as an exact table.
func WriteStep(w io.Writer, step model.Step) error {
	if _, err := fmt.Fprintln(w, step.Label); err != nil {
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintf(tw, "\t%s\t\n", strings.Join(ColumnLabels(step.Tableau.Cols()), "\t"))
	rowLabels := RowLabels(step.Basis)
	for r := range step.Tableau.Rows() {
		cells := make([]string, 0, step.Tableau.Cols())
		for _, v := range step.Tableau.Row(r) {
			cells = append(cells, v.RatString())
		}
		label := ""
		if r < len(rowLabels) {
			label = rowLabels[r]
		}
		fmt.Fprintf(tw, "%s\t%s\t\n", label, strings.Join(cells, "\t"))
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	_, err := fmt.Fprintln(w)
	return err
}

// WriteFloatStep prints one history step through gonum's matrix formatter.
func WriteFloatStep(w io.Writer, step model.Step) error {
	f := mat.Formatted(FloatView(step.Tableau), mat.Prefix("    "), mat.Squeeze())
	_, err := fmt.Fprintf(w, "%s\nT = %v\n\n", step.Label, f)
	return err
}

// WriteHistory prints every step in order.
func WriteHistory(w io.Writer, h *model.History, float bool) error {
	for _, step := range h.Steps() {
		var err error
		if float {
			err = WriteFloatStep(w, step)
		} else {
			err = WriteStep(w, step)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// Approx formats v with Precision decimal places.
func Approx(v *big.Rat) string {
	return decimal.NewFromBigRat(v, Precision).String()
}

// WriteSolution prints the optimum and the variable values, exact and
// approximate.
func WriteSolution(w io.Writer, optimum *big.Rat, solution map[string]*big.Rat) error {
	if _, err := fmt.Fprintf(w, "optimum: %s (≈ %s)\n", optimum.RatString(), Approx(optimum)); err != nil {
		return err
	}
	labels := make([]string, 0, len(solution))
	for k := range solution {
		labels = append(labels, k)
	}
	sort.Slice(labels, func(i, j int) bool {
		return varIndex(labels[i]) < varIndex(labels[j])
	})
	for _, k := range labels {
		v := solution[k]
		if _, err := fmt.Fprintf(w, "%s = %s (≈ %s)\n", k, v.RatString(), Approx(v)); err != nil {
			return err
		}
	}
	return nil
}

func varIndex(label string) int {
	var i int
	if _, err := fmt.Sscanf(label, "x_%d", &i); err != nil {
		return 0
	}
	return i
}
