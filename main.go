package main

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"

	"github.com/sourcegraph/conc/pool"
	"github.com/spf13/pflag"

	"q.log/gomory/gomory"
	"q.log/gomory/instance"
	"q.log/gomory/internal/config"
	"q.log/gomory/internal/logging"
	"q.log/gomory/internal/metrics"
	"q.log/gomory/report"
	"q.log/gomory/simplex"
	"q.log/gomory/verify"
)

const (
	exitOK = iota
	exitFailed
	exitUsage
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// solved is the rendered outcome of one problem file.
type solved struct {
	index  int
	inst   *instance.Instance
	result *simplex.Result
	err    error
	out    bytes.Buffer
}

func run(args []string, stdout, stderr io.Writer) int {
	fs := pflag.NewFlagSet("gomory", pflag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprintln(stderr, "usage: gomory [flags] problem.yaml [more.yaml|.mps ...]")
		fs.PrintDefaults()
	}
	config.RegisterFlags(fs)
	if err := fs.Parse(args); err != nil {
		return exitUsage
	}
	if fs.NArg() == 0 {
		fs.Usage()
		return exitUsage
	}

	cfg, err := config.Load(fs)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return exitUsage
	}
	log := logging.NewWithWriter(cfg.Log, stderr)
	if cfg.Log.File != "" {
		var w io.Writer
		log, w = logging.New(cfg.Log)
		defer w.(io.Closer).Close()
	}

	opts, err := cfg.SimplexOptions()
	if err != nil {
		fmt.Fprintln(stderr, err)
		return exitUsage
	}
	loadOpts, err := cfg.LoadOptions()
	if err != nil {
		fmt.Fprintln(stderr, err)
		return exitUsage
	}
	m := metrics.New()
	opts = append(opts, simplex.WithLogger(log), simplex.WithObserver(m))

	p := pool.NewWithResults[*solved]().WithMaxGoroutines(cfg.Solver.Workers)
	for i, path := range fs.Args() {
		p.Go(func() *solved {
			return solveFile(i, path, cfg, opts, loadOpts, log)
		})
	}
	results := p.Wait()
	sort.Slice(results, func(i, j int) bool { return results[i].index < results[j].index })

	code := exitOK
	for _, s := range results {
		if s.err != nil && !errors.Is(s.err, gomory.ErrSearchExhausted) {
			code = exitFailed
		}
		if cfg.Solver.Verify && s.err == nil {
			if err := crossCheck(&s.out, s, cfg.Solver.RelaxationOnly); err != nil {
				fmt.Fprintf(&s.out, "verify: %v\n", err)
				code = exitFailed
			}
		}
		if _, err := stdout.Write(s.out.Bytes()); err != nil {
			log.Error("write report", "error", err)
			return exitFailed
		}
	}

	if cfg.Metrics.File != "" {
		if err := m.WriteFile(cfg.Metrics.File); err != nil {
			log.Error("write metrics", "file", cfg.Metrics.File, "error", err)
			code = exitFailed
		}
	}
	return code
}

func solveFile(index int, path string, cfg *config.Config, opts []simplex.Option,
	loadOpts []instance.LoadOption, log *slog.Logger) *solved {
	s := &solved{index: index}
	fmt.Fprintf(&s.out, "== %s\n", path)

	inst, err := instance.LoadFile(path, loadOpts...)
	if err != nil {
		s.err = err
		fmt.Fprintf(&s.out, "error: %v\n\n", err)
		return s
	}
	s.inst = inst
	p := inst.Problem
	fmt.Fprintf(&s.out, "%s\n", p.Objective)
	for _, c := range p.Constraints {
		fmt.Fprintf(&s.out, "  %s\n", c)
	}

	lp := simplex.NewSolver(opts...)
	var cuts []gomory.Cut
	if inst.Integer && !cfg.Solver.RelaxationOnly {
		var res *gomory.Result
		res, err = gomory.NewSolver(gomory.WithSimplex(lp), gomory.WithMaxCuts(cfg.Solver.MaxCuts)).Solve(p)
		if res != nil {
			s.result = &res.Result
			cuts = res.Cuts
		}
	} else {
		s.result, err = lp.Solve(p)
	}
	s.err = err
	if err != nil {
		log.Warn("solve failed", "file", path, "outcome", simplex.Outcome(err), "error", err)
		fmt.Fprintf(&s.out, "error: %v\n", err)
	}
	if s.result != nil {
		if rerr := render(&s.out, s.result, cuts, cfg); rerr != nil {
			log.Error("render report", "file", path, "error", rerr)
			s.err = rerr
		}
	}
	fmt.Fprintln(&s.out)
	return s
}

func render(w io.Writer, res *simplex.Result, cuts []gomory.Cut, cfg *config.Config) error {
	if cfg.Solver.History && res.History != nil {
		if err := report.WriteHistory(w, res.History, cfg.Solver.FloatView); err != nil {
			return fmt.Errorf("write history: %w", err)
		}
	}
	for _, c := range cuts {
		if _, err := fmt.Fprintln(w, c); err != nil {
			return err
		}
	}
	for _, warn := range res.Warnings {
		if _, err := fmt.Fprintf(w, "warning: %s\n", warn); err != nil {
			return err
		}
	}
	if err := report.WriteSolution(w, res.Optimum, res.Solution); err != nil {
		return fmt.Errorf("write solution: %w", err)
	}
	return nil
}

// crossCheck recomputes the optimum with gonum (relaxations) or GLPK
// (integer programs).
func crossCheck(w io.Writer, s *solved, relaxationOnly bool) error {
	p := s.inst.Problem
	if !s.inst.Integer || relaxationOnly {
		f, err := verify.Relaxation(p)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "verify: gonum optimum %g\n", f)
		return verify.Check(s.result.Optimum, f)
	}
	f, _, err := verify.Integer(p)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "verify: glpk optimum %g\n", f)
	return verify.Check(s.result.Optimum, f)
}
