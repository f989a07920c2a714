// Package logging builds the structured logger shared by the CLI and the
// solvers.
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/natefinch/lumberjack.v2"
)

type Config struct {
	Level      string `mapstructure:"level"       validate:"omitempty,oneof=debug info warn error"`
	Format     string `mapstructure:"format"      validate:"omitempty,oneof=json text"`
	File       string `mapstructure:"file"` // empty writes to stderr
	MaxSize    int    `mapstructure:"max_size"    validate:"min=0"` // MB
	MaxBackups int    `mapstructure:"max_backups" validate:"min=0"`
	MaxAge     int    `mapstructure:"max_age"     validate:"min=0"` // days
	Compress   bool   `mapstructure:"compress"`
}

// ParseLevel maps a level name to a slog level, info by default.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}

// New returns a logger for cfg and the writer it logs to. When cfg.File is
// set the writer is a rotating lumberjack file and must be closed by the
// caller.
func New(cfg Config) (*slog.Logger, io.Writer) {
	var w io.Writer = os.Stderr
	if cfg.File != "" {
		w = &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    cfg.MaxSize,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAge,
			Compress:   cfg.Compress,
		}
	}
	return NewWithWriter(cfg, w), w
}

// NewWithWriter builds the handler over an arbitrary writer.
func NewWithWriter(cfg Config, w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: ParseLevel(cfg.Level),
		ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey {
				a.Key = "timestamp"
			}
			return a
		},
	}
	var h slog.Handler
	if cfg.Format == "json" || (cfg.Format == "" && cfg.File != "") {
		h = slog.NewJSONHandler(w, opts)
	} else {
		h = slog.NewTextHandler(w, opts)
	}
	return slog.New(h).With(slog.String("service", "gomory"))
}
