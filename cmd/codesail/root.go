// Copyright 2026 CodeSail Authors. All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");

package main

import (
	"context"
	stderrors "errors"
	"io"
	"os"
	"strings"
	"syscall"

	"github.com/codesail/codesail/pkg/config"
	"github.com/codesail/codesail/pkg/observability"
	"github.com/codesail/codesail/pkg/version"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

// globalOptions holds the persistent flags shared by every command
type globalOptions struct {
	configFile string
	verbose    bool
}

// reportedError marks a failure the renderer has already shown to the user
type reportedError struct {
	err error
}

func (e *reportedError) Error() string { return e.err.Error() }
func (e *reportedError) Unwrap() error { return e.err }

// newRootCmd builds the command tree
func newRootCmd() *cobra.Command {
	opts := &globalOptions{}

	rootCmd := &cobra.Command{
		Use:   "codesail",
		Short: "Streamed AI code analysis",
		Long: `CodeSail - AI code analysis in your terminal.

CodeSail sends a source file and a task to an LLM provider and streams the
answer back as it arrives: the model's step-by-step reasoning first, then
the final markdown report.`,
		Version:       version.FullString(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVarP(&opts.configFile, "config", "c", "", "Path to configuration file (default ./.codesail.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Enable debug logging")

	rootCmd.AddCommand(newAnalyzeCmd(opts))
	rootCmd.AddCommand(newFilesCmd(opts))
	rootCmd.AddCommand(newVersionCmd())

	return rootCmd
}

// Execute runs the CLI with args and returns the process exit code.
func Execute(ctx context.Context, args []string) int {
	return execute(ctx, args, os.Stdout, os.Stderr)
}

func execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	rootCmd := newRootCmd()
	rootCmd.SetArgs(args)
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)

	err := rootCmd.ExecuteContext(ctx)
	if err == nil {
		return 0
	}

	var reported *reportedError
	if !stderrors.As(err, &reported) {
		failure := color.New(color.FgRed)
		if !colorEnabled(stderr) {
			failure.DisableColor()
		}
		_, _ = failure.Fprintf(stderr, "✗ %s\n", err.Error())
	}
	return 1
}

// loadConfig resolves configuration for projectRoot honoring --config.
// It also returns the config files that were applied.
func loadConfig(opts *globalOptions, projectRoot string) (*config.Config, []string, error) {
	loader := config.NewLoader().WithProjectRoot(projectRoot)
	if opts.configFile != "" {
		loader = loader.WithConfigFile(opts.configFile)
	}
	cfg, err := loader.Load()
	if err != nil {
		return nil, nil, err
	}
	return cfg, loader.Sources(), nil
}

// newLogger builds the diagnostics logger. --verbose forces debug level.
func newLogger(cfg *config.Config, opts *globalOptions, sources []string, w io.Writer) observability.Logger {
	level := cfg.Global.LogLevel
	if opts.verbose {
		level = "debug"
	}
	logger := observability.NewLoggerWithOutput(level, w)
	logger.Debug("configuration loaded",
		observability.String("sources", strings.Join(sources, ",")),
		observability.String("backend", cfg.Provider.Backend),
		observability.String("model", cfg.Provider.Model),
	)
	return logger
}

// interruptSignals cancel in-flight work
var interruptSignals = []os.Signal{os.Interrupt, syscall.SIGTERM}

// colorEnabled reports whether w is a terminal that accepts ANSI colors
func colorEnabled(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok || color.NoColor {
		return false
	}
	return f == os.Stdout || f == os.Stderr
}
