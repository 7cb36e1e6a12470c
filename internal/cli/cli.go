package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"github.com/vk/jayvee/internal/app"
	"github.com/vk/jayvee/internal/registry"
)

// Exit codes used by the jv binary.
const (
	ExitFailure = 1
	ExitUsage   = 2
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

func usageError(format string, args ...any) error {
	return &ExitError{Code: ExitUsage, Message: fmt.Sprintf(format, args...)}
}

// RootOptions holds the flags shared by all commands.
type RootOptions struct {
	Pipeline         string
	Params           []string
	ParamsFile       string
	LogLevel         string
	LogFormat        string
	Debug            bool
	DebugGranularity string
	DebugTargets     []string
	MetricsFile      string
	TraceFile        string

	// Modules overrides the compiled-in modules.
	Modules []registry.Module
}

// NewRootCommand creates the root command for the jv CLI. Output of the
// application, including logs and diagnostics, goes to the command's out
// writer. Without modules the compiled-in modules are used.
func NewRootCommand(modules ...registry.Module) *cobra.Command {
	opts := &RootOptions{Modules: modules}

	cmd := &cobra.Command{
		Use:   "jv",
		Short: "jv - run Jayvee data pipelines",
		Long: `Run declarative data pipelines written in the Jayvee language.

A workspace is a set of .jv files. Pipelines extract data, interpret it
into tables, transform it and load it into a sink.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return usageError("%s", err.Error())
	})

	f := cmd.PersistentFlags()
	f.StringVar(&opts.Pipeline, "pipeline", "", "run or validate only the named pipeline")
	f.StringArrayVarP(&opts.Params, "env", "e", nil, "runtime parameter as KEY=VALUE (repeatable)")
	f.StringVar(&opts.ParamsFile, "params-file", "", "YAML file with runtime parameters")
	f.StringVar(&opts.LogLevel, "log-level", "info", "logging level (debug|info|warn|error)")
	f.StringVar(&opts.LogFormat, "log-format", "text", "log output format (text|json)")
	f.BoolVar(&opts.Debug, "debug", false, "log a description of every block output")
	f.StringVar(&opts.DebugGranularity, "debug-granularity", "peek", "detail of debug output (minimal|peek|exhaustive)")
	f.StringSliceVar(&opts.DebugTargets, "debug-target", nil, "restrict debug output to these blocks")
	f.StringVar(&opts.MetricsFile, "metrics-file", "", "write Prometheus metrics to this file after the run")
	f.StringVar(&opts.TraceFile, "trace-file", "", "write OpenTelemetry spans as JSON to this file")

	cmd.AddCommand(newRunCommand(opts))
	cmd.AddCommand(newValidateCommand(opts))
	return cmd
}

func newRunCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "run PATH...",
		Short: "Validate and execute the pipelines of a workspace",
		Args:  pathArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.OutOrStdout(), opts, args)
			if err != nil {
				return err
			}
			return exitError(a.Run(cmd.Context()))
		},
	}
}

func newValidateCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "validate PATH...",
		Short: "Validate a workspace without executing it",
		Args:  pathArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.OutOrStdout(), opts, args)
			if err != nil {
				return err
			}
			return exitError(a.Validate(cmd.Context()))
		},
	}
}

func pathArgs(_ *cobra.Command, args []string) error {
	if len(args) == 0 {
		return usageError("at least one .jv file or directory is required")
	}
	return nil
}

func newApp(outW io.Writer, opts *RootOptions, paths []string) (*app.App, error) {
	cfg, err := buildConfig(opts, paths)
	if err != nil {
		return nil, err
	}
	return app.NewApp(outW, cfg, opts.Modules...), nil
}

// buildConfig translates the flags into a validated app configuration.
func buildConfig(opts *RootOptions, paths []string) (*app.Config, error) {
	params, err := parseParams(opts.Params)
	if err != nil {
		return nil, err
	}

	cfg, err := app.NewConfig(app.Config{
		Paths:            paths,
		Pipeline:         opts.Pipeline,
		Params:           params,
		ParamsFile:       opts.ParamsFile,
		LogFormat:        opts.LogFormat,
		LogLevel:         opts.LogLevel,
		Debug:            opts.Debug,
		DebugGranularity: opts.DebugGranularity,
		DebugTargets:     opts.DebugTargets,
		MetricsFile:      opts.MetricsFile,
		TraceFile:        opts.TraceFile,
	})
	if err != nil {
		return nil, usageError("%s", err.Error())
	}
	return cfg, nil
}

func parseParams(pairs []string) (map[string]string, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	params := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		if !ok || strings.TrimSpace(key) == "" {
			return nil, usageError("invalid parameter %q: expected KEY=VALUE", pair)
		}
		params[strings.TrimSpace(key)] = value
	}
	return params, nil
}

// exitError keeps the message of a failed run and marks it with the
// failure exit code. Diagnostics were already printed.
func exitError(err error) error {
	if err == nil {
		return nil
	}
	var diagErr *app.DiagnosticsError
	if errors.As(err, &diagErr) {
		return &ExitError{Code: ExitFailure, Message: diagErr.Error()}
	}
	if errors.Is(err, context.Canceled) {
		return &ExitError{Code: ExitFailure, Message: "interrupted: " + err.Error()}
	}
	return &ExitError{Code: ExitFailure, Message: err.Error()}
}
