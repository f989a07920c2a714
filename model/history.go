package model

import "slices"

// Step is one recorded state of a solve.
type Step struct {
	Label   string
	Tableau Snapshot
	Basis   []int
}

// History is an append-only, ordered record of solve steps.
type History struct {
	steps []Step
	index map[string]int
}

func NewHistory() *History {
	return &History{index: make(map[string]int)}
}

// Record deep-copies the tableau and basis under label. A repeated label
// replaces nothing; the first entry stays reachable through Lookup.
func (h *History) Record(label string, t *Tableau, basis []int) {
	if h == nil {
		return
	}
	if _, ok := h.index[label]; !ok {
		h.index[label] = len(h.steps)
	}
	h.steps = append(h.steps, Step{
		Label:   label,
		Tableau: t.Snapshot(),
		Basis:   slices.Clone(basis),
	})
}

func (h *History) Len() int {
	if h == nil {
		return 0
	}
	return len(h.steps)
}

// Steps returns the recorded steps in order. The basis slices are copies.
func (h *History) Steps() []Step {
	if h == nil {
		return nil
	}
	out := make([]Step, len(h.steps))
	for i, s := range h.steps {
		out[i] = Step{Label: s.Label, Tableau: s.Tableau, Basis: slices.Clone(s.Basis)}
	}
	return out
}

func (h *History) Lookup(label string) (Step, bool) {
	if h == nil {
		return Step{}, false
	}
	i, ok := h.index[label]
	if !ok {
		return Step{}, false
	}
	s := h.steps[i]
	return Step{Label: s.Label, Tableau: s.Tableau, Basis: slices.Clone(s.Basis)}, true
}

func (h *History) Last() (Step, bool) {
	if h.Len() == 0 {
		return Step{}, false
	}
	s := h.steps[len(h.steps)-1]
	return Step{Label: s.Label, Tableau: s.Tableau, Basis: slices.Clone(s.Basis)}, true
}

// Labels returns the step labels in order.
func (h *History) Labels() []string {
	labels := make([]string, 0, h.Len())
	for _, s := range h.Steps() {
		labels = append(labels, s.Label)
	}
	return labels
}
