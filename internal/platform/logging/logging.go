// Package logging configures the process-wide zerolog logger.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Output formats.
const (
	FormatConsole = "console"
	FormatJSON    = "json"
)

// Config selects the log level and output format.
type Config struct {
	Level  string `env:"OFFERBOAT_ADMIN_LOG_LEVEL" envDefault:"info"`
	Format string `env:"OFFERBOAT_ADMIN_LOG_FORMAT" envDefault:"console"`
}

// New builds a logger writing to out.
func New(cfg Config, out io.Writer) (zerolog.Logger, error) {
	if out == nil {
		out = os.Stderr
	}
	level, err := ParseLevel(cfg.Level)
	if err != nil {
		return zerolog.Logger{}, err
	}
	switch strings.ToLower(strings.TrimSpace(cfg.Format)) {
	case "", FormatConsole:
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	case FormatJSON:
	default:
		return zerolog.Logger{}, fmt.Errorf("unknown log format %q", cfg.Format)
	}
	return zerolog.New(out).Level(level).With().Timestamp().Logger(), nil
}

// Setup installs the configured logger as the global and context default.
func Setup(cfg Config, service string) error {
	logger, err := New(cfg, os.Stderr)
	if err != nil {
		return err
	}
	if service = strings.TrimSpace(service); service != "" {
		logger = logger.With().Str("service", service).Logger()
	}
	zerolog.SetGlobalLevel(logger.GetLevel())
	log.Logger = logger
	zerolog.DefaultContextLogger = &log.Logger
	return nil
}

// ParseLevel maps a level name to a zerolog level. Empty means info.
func ParseLevel(value string) (zerolog.Level, error) {
	value = strings.ToLower(strings.TrimSpace(value))
	if value == "" {
		return zerolog.InfoLevel, nil
	}
	level, err := zerolog.ParseLevel(value)
	if err != nil {
		return zerolog.NoLevel, fmt.Errorf("parse log level: %w", err)
	}
	return level, nil
}
