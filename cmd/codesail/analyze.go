// Copyright 2026 CodeSail Authors. All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");

package main

import (
	"path/filepath"
	"strings"

	"github.com/codesail/codesail/pkg/ai"
	"github.com/codesail/codesail/pkg/analysis"
	runctx "github.com/codesail/codesail/pkg/context"
	"github.com/codesail/codesail/pkg/errors"
	"github.com/codesail/codesail/pkg/observability"
	"github.com/codesail/codesail/pkg/output"
	"github.com/codesail/codesail/pkg/workspace"
	"github.com/spf13/cobra"
)

// analyzeOptions holds the flags for the analyze command
type analyzeOptions struct {
	prompt  string
	model   string
	backend string
	format  string
	render  bool
	strict  bool
}

func newAnalyzeCmd(global *globalOptions) *cobra.Command {
	opts := &analyzeOptions{}

	cmd := &cobra.Command{
		Use:   "analyze <file>",
		Short: "Stream an AI analysis of a source file",
		Long: `Send a source file and a task to the configured provider and stream the
answer. Reasoning lines are shown as they arrive, followed by the final report.`,
		Example: `  codesail analyze src/app.js -p "find bugs"
  codesail analyze main.go -p "review error handling" --render
  codesail analyze main.go -p "review" --format json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalyze(cmd, global, opts, args[0])
		},
	}

	cmd.Flags().StringVarP(&opts.prompt, "prompt", "p", "", "Task for the model, e.g. \"find bugs\"")
	cmd.Flags().StringVarP(&opts.model, "model", "m", "", "Model override")
	cmd.Flags().StringVarP(&opts.backend, "backend", "b", "", "Backend override ("+backendNames()+")")
	cmd.Flags().StringVarP(&opts.format, "format", "f", string(output.FormatText), "Output format (text, json)")
	cmd.Flags().BoolVar(&opts.render, "render", false, "Render the final report as styled markdown")
	cmd.Flags().BoolVar(&opts.strict, "strict", false, "Fail when the report is missing required sections")

	return cmd
}

func runAnalyze(cmd *cobra.Command, global *globalOptions, opts *analyzeOptions, path string) error {
	format, err := output.ParseFormat(opts.format)
	if err != nil {
		return errors.ValidationError("invalid --format", err)
	}

	cfg, sources, err := loadConfig(global, "")
	if err != nil {
		return err
	}
	if opts.model != "" {
		cfg.Provider.Model = opts.model
	}
	if opts.backend != "" {
		cfg.Provider.Backend = opts.backend
	}
	if err := cfg.Provider.Validate(); err != nil {
		return errors.ConfigError("invalid provider override", err)
	}

	logger := newLogger(cfg, global, sources, cmd.ErrOrStderr())

	source, err := workspace.ReadFile(path)
	if err != nil {
		return err
	}

	provider, err := ai.NewFactory().CreateFromConfig(cfg)
	if err != nil {
		return err
	}

	metrics := observability.NewMetrics()
	analyzer := analysis.NewAnalyzer(provider, analysis.Options{
		Model:       cfg.Provider.Model,
		Temperature: cfg.Provider.Temperature,
		MaxTokens:   cfg.Provider.MaxTokens,
		Sentinel:    cfg.Analysis.Sentinel,
		Logger:      logger,
		Metrics:     metrics,
	})

	stdout := cmd.OutOrStdout()
	renderer := output.NewRenderer(stdout, output.Options{
		Format: format,
		Render: opts.render,
		Color:  colorEnabled(stdout),
	})
	if err := renderer.Start(output.Start{File: path, Model: cfg.Provider.Model, Backend: cfg.Provider.Backend}); err != nil {
		return err
	}

	req := analysis.Request{
		SourceText:  source,
		Instruction: opts.prompt,
		Language:    workspace.LanguageFor(filepath.Ext(path)),
	}

	// provider.timeout bounds the whole stream; a signal cancels it early
	ctx, cancel := runctx.WithSignalTimeout(cmd.Context(), cfg.Provider.Timeout, interruptSignals...)
	defer cancel()

	collector := analysis.NewCollector()
	var writeErr error
	analyzer.Analyze(ctx, req,
		func(c analysis.Chunk) {
			collector.OnChunk(c)
			if err := renderer.Chunk(c); err != nil && writeErr == nil {
				writeErr = err
			}
		},
		func(err error) {
			collector.OnComplete(err)
			if rerr := renderer.Complete(err); rerr != nil && writeErr == nil {
				writeErr = rerr
			}
		},
	)

	snap := metrics.Snapshot()
	logger.Debug("analysis metrics",
		observability.Int("thinking_chunks", snap.Chunks[string(analysis.PhaseThinking)]),
		observability.Int("final_chunks", snap.Chunks[string(analysis.PhaseFinal)]),
		observability.Duration("elapsed", snap.Elapsed),
	)

	result, err := collector.Result()
	if err != nil {
		return &reportedError{err: err}
	}
	if writeErr != nil {
		logger.Warn("failed to write output", observability.Err(writeErr))
	}

	if opts.strict || cfg.Analysis.Strict {
		check := analysis.CheckReport(result.FinalMarkdown())
		if err := renderer.Report(check); err != nil {
			return err
		}
		if !check.Complete() {
			return &reportedError{err: errors.ValidationError("analysis report is incomplete", nil).
				WithContext("missing", check.Missing)}
		}
	}

	return nil
}

func backendNames() string {
	backends := ai.ListBackends()
	names := make([]string, 0, len(backends))
	for _, b := range backends {
		names = append(names, b.String())
	}
	return strings.Join(names, ", ")
}
