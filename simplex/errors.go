package simplex

import (
	"errors"
	"fmt"
)

var (
	// ErrInfeasible is returned when no point satisfies the constraints.
	ErrInfeasible = errors.New("simplex: infeasible problem")

	// ErrUnbounded is returned when the objective improves without limit.
	ErrUnbounded = errors.New("simplex: unbounded problem")

	// ErrIterationLimit is returned when a phase exceeds its pivot budget.
	ErrIterationLimit = errors.New("simplex: iteration limit reached")
)

type WarningKind int

const (
	Degenerate WarningKind = iota
)

func (k WarningKind) String() string {
	if k == Degenerate {
		return "degenerate pivot"
	}
	return fmt.Sprintf("WarningKind(%d)", int(k))
}

// Warning is a non-fatal diagnostic raised while solving.
type Warning struct {
	Kind   WarningKind
	Phase  string
	Step   string
	Row    int
	Column int
}

func (w Warning) String() string {
	return fmt.Sprintf("%s at %s (row %d, column %d)", w.Kind, w.Step, w.Row, w.Column)
}
