// Package config loads CLI settings from flags, GOMORY_ environment
// variables and an optional config file, in that order of precedence.
package config

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"q.log/gomory/gomory"
	"q.log/gomory/instance"
	"q.log/gomory/internal/logging"
	"q.log/gomory/simplex"
)

type Config struct {
	Solver  SolverConfig   `mapstructure:"solver"`
	Log     logging.Config `mapstructure:"log"`
	Metrics MetricsConfig  `mapstructure:"metrics"`
}

type SolverConfig struct {
	MaxPivots      int    `mapstructure:"max_pivots"      validate:"min=1"`
	MaxCuts        int    `mapstructure:"max_cuts"        validate:"min=1"`
	KeyColumnRule  string `mapstructure:"key_column_rule" validate:"oneof=most-positive largest-magnitude"`
	RelaxationOnly bool   `mapstructure:"relaxation_only"`
	History        bool   `mapstructure:"history"`
	FloatView      bool   `mapstructure:"float_view"`
	Verify         bool   `mapstructure:"verify"`
	Workers        int    `mapstructure:"workers"         validate:"min=1,max=256"`
	MPSDirection   string `mapstructure:"mps_direction"   validate:"oneof=min max minimize maximize minimise maximise"`
}

type MetricsConfig struct {
	// File receives the registry in the node_exporter textfile format.
	File string `mapstructure:"file"`
}

// flag name -> config key
var bindings = map[string]string{
	"relaxation-only": "solver.relaxation_only",
	"max-cuts":        "solver.max_cuts",
	"max-pivots":      "solver.max_pivots",
	"key-column-rule": "solver.key_column_rule",
	"history":         "solver.history",
	"float-view":      "solver.float_view",
	"verify":          "solver.verify",
	"workers":         "solver.workers",
	"mps-direction":   "solver.mps_direction",
	"log-level":       "log.level",
	"log-format":      "log.format",
	"log-file":        "log.file",
	"metrics-file":    "metrics.file",
}

var defaults = map[string]any{
	"solver.max_pivots":      simplex.DefaultMaxPivots,
	"solver.max_cuts":        gomory.DefaultMaxCuts,
	"solver.key_column_rule": simplex.MostPositive.String(),
	"solver.relaxation_only": false,
	"solver.history":         false,
	"solver.float_view":      false,
	"solver.verify":          false,
	"solver.workers":         4,
	"solver.mps_direction":   "min",
	"log.level":              "info",
	"log.format":             "",
	"log.file":               "",
	"log.max_size":           10,
	"log.max_backups":        3,
	"log.max_age":            28,
	"log.compress":           false,
	"metrics.file":           "",
}

// RegisterFlags adds the CLI flags to fs.
func RegisterFlags(fs *pflag.FlagSet) {
	fs.String("config", "", "config file (yaml, toml or json)")
	fs.Bool("relaxation-only", false, "solve the LP relaxation only")
	fs.Int("max-cuts", gomory.DefaultMaxCuts, "maximum number of Gomory cuts")
	fs.Int("max-pivots", simplex.DefaultMaxPivots, "maximum pivots per phase")
	fs.String("key-column-rule", simplex.MostPositive.String(), "entering column rule: most-positive or largest-magnitude")
	fs.Bool("history", false, "print every intermediate tableau")
	fs.Bool("float-view", false, "print tableaus as floating point matrices")
	fs.Bool("verify", false, "cross-check optima with gonum and GLPK")
	fs.Int("workers", 4, "problems solved concurrently")
	fs.String("mps-direction", "min", "objective sense of .mps files: min or max")
	fs.String("log-level", "info", "debug, info, warn or error")
	fs.String("log-format", "", "json or text")
	fs.String("log-file", "", "log to a rotating file instead of stderr")
	fs.String("metrics-file", "", "write prometheus metrics to this file")
}

// Load resolves the configuration for a parsed flag set.
func Load(fs *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	for k, d := range defaults {
		v.SetDefault(k, d)
	}
	for name, key := range bindings {
		if f := fs.Lookup(name); f != nil {
			if err := v.BindPFlag(key, f); err != nil {
				return nil, fmt.Errorf("bind flag %s: %w", name, err)
			}
		}
	}

	v.SetEnvPrefix("GOMORY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if f := fs.Lookup("config"); f != nil && f.Value.String() != "" {
		v.SetConfigFile(f.Value.String())
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config error: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config error: %w", err)
	}
	cfg.Solver.KeyColumnRule = strings.ToLower(cfg.Solver.KeyColumnRule)
	cfg.Solver.MPSDirection = strings.ToLower(strings.TrimSpace(cfg.Solver.MPSDirection))
	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &cfg, nil
}

// SimplexOptions translates the solver section into solver options.
func (c *Config) SimplexOptions() ([]simplex.Option, error) {
	rule, err := simplex.ParseKeyColumnRule(c.Solver.KeyColumnRule)
	if err != nil {
		return nil, err
	}
	opts := []simplex.Option{
		simplex.WithKeyColumnRule(rule),
		simplex.WithMaxPivots(c.Solver.MaxPivots),
	}
	if !c.Solver.History {
		opts = append(opts, simplex.WithoutHistory())
	}
	return opts, nil
}

// LoadOptions translates the solver section into problem file options.
func (c *Config) LoadOptions() ([]instance.LoadOption, error) {
	dir, err := instance.ParseDirection(c.Solver.MPSDirection)
	if err != nil {
		return nil, err
	}
	return []instance.LoadOption{instance.WithMPSDirection(dir)}, nil
}
