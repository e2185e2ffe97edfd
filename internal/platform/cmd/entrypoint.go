// Package cmd holds startup helpers shared by service commands.
package cmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/offerboat/admin/internal/platform/config"
	"github.com/offerboat/admin/internal/platform/logging"
	"github.com/offerboat/admin/internal/platform/otel"
)

const defaultOTelShutdownTimeout = 5 * time.Second

// ServiceAdmin names the dashboard process in logs and traces.
const ServiceAdmin = "offerboat-admin"

// RunOptions controls shared entrypoint behavior for service commands.
type RunOptions struct {
	// ShutdownTimeout sets the timeout used when stopping telemetry.
	ShutdownTimeout time.Duration
	// Logging overrides the logger configuration read from env.
	Logging *logging.Config
	// Telemetry overrides the trace configuration read from env.
	Telemetry *otel.Config
}

// ParseConfig loads .env files and environment defaults into cfg.
func ParseConfig[T any](cfg *T) error {
	if cfg == nil {
		return errors.New("config target is required")
	}
	if err := config.LoadDotEnv(); err != nil {
		return err
	}
	return config.ParseEnv(cfg)
}

// ParseArgs parses command-line flags.
func ParseArgs(fs *flag.FlagSet, args []string) error {
	if fs == nil {
		return errors.New("flag parser is required")
	}
	if args == nil {
		args = []string{}
	}
	return fs.Parse(args)
}

// ParseConfigFromArgs loads defaults from env and then parses flags.
func ParseConfigFromArgs[T any](cfg *T, fs *flag.FlagSet, args []string) error {
	if err := ParseConfig(cfg); err != nil {
		return err
	}
	return ParseArgs(fs, args)
}

// RunWithTelemetry configures logging and tracing and executes a service run loop.
func RunWithTelemetry(ctx context.Context, service string, run func(context.Context) error) error {
	return RunWithTelemetryAndOptions(ctx, service, RunOptions{}, run)
}

// RunWithTelemetryAndOptions configures logging and tracing and executes a service run loop.
func RunWithTelemetryAndOptions(ctx context.Context, service string, options RunOptions, run func(context.Context) error) error {
	service = strings.TrimSpace(service)
	if service == "" {
		return fmt.Errorf("service name is required")
	}
	if run == nil {
		return fmt.Errorf("run function is required")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	logCfg := logging.Config{}
	if options.Logging != nil {
		logCfg = *options.Logging
	} else if err := config.ParseEnv(&logCfg); err != nil {
		return err
	}
	if err := logging.Setup(logCfg, service); err != nil {
		return err
	}

	traceCfg := otel.Config{}
	if options.Telemetry != nil {
		traceCfg = *options.Telemetry
	} else {
		parsed, err := otel.ConfigFromEnv()
		if err != nil {
			return err
		}
		traceCfg = parsed
	}
	shutdown, err := otel.Setup(ctx, service, traceCfg)
	if err != nil {
		return err
	}
	defer func() {
		shutdownTimeout := options.ShutdownTimeout
		if shutdownTimeout <= 0 {
			shutdownTimeout = defaultOTelShutdownTimeout
		}
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("otel shutdown")
		}
	}()
	return run(ctx)
}
