package simplex

import (
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// KeyColumnRule selects the entering column of a pivot.
type KeyColumnRule int

const (
	// MostPositive picks the largest positive objective-row entry.
	MostPositive KeyColumnRule = iota
	// LargestMagnitude picks the entry with the largest absolute value,
	// whatever its sign. It can step away from the optimum and is kept for
	// reproducing hand-worked tableaus.
	LargestMagnitude
)

func (r KeyColumnRule) String() string {
	if r == LargestMagnitude {
		return "largest-magnitude"
	}
	return "most-positive"
}

func ParseKeyColumnRule(s string) (KeyColumnRule, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "most-positive", "dantzig":
		return MostPositive, nil
	case "largest-magnitude", "abs":
		return LargestMagnitude, nil
	}
	return 0, fmt.Errorf("unknown key column rule %q", s)
}

const DefaultMaxPivots = 10000

// Observer receives solver events, e.g. for metrics.
type Observer interface {
	Pivot(phase string)
	DegeneratePivot(phase string)
	Cut()
	Solved(outcome string, elapsed time.Duration)
}

type nopObserver struct{}

func (nopObserver) Pivot(string)                 {}
func (nopObserver) DegeneratePivot(string)       {}
func (nopObserver) Cut()                         {}
func (nopObserver) Solved(string, time.Duration) {}

// Config holds the knobs shared by the simplex and Gomory solvers.
type Config struct {
	Logger        *slog.Logger
	Observer      Observer
	KeyColumnRule KeyColumnRule
	MaxPivots     int
	NoHistory     bool
}

func DefaultConfig() Config {
	return Config{
		Logger:    slog.New(slog.DiscardHandler),
		Observer:  nopObserver{},
		MaxPivots: DefaultMaxPivots,
	}
}

type Option func(*Config)

func WithLogger(l *slog.Logger) Option {
	return func(c *Config) {
		if l != nil {
			c.Logger = l
		}
	}
}

func WithObserver(o Observer) Option {
	return func(c *Config) {
		if o != nil {
			c.Observer = o
		}
	}
}

func WithKeyColumnRule(r KeyColumnRule) Option {
	return func(c *Config) {
		c.KeyColumnRule = r
	}
}

// WithMaxPivots bounds the number of pivots per phase. Non-positive values
// keep the default.
func WithMaxPivots(n int) Option {
	return func(c *Config) {
		if n > 0 {
			c.MaxPivots = n
		}
	}
}

// WithoutHistory disables recording of intermediate steps.
func WithoutHistory() Option {
	return func(c *Config) {
		c.NoHistory = true
	}
}

func NewConfig(opts ...Option) Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}
