// Copyright 2026 CodeSail Authors. All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");

package main

import (
	runctx "github.com/codesail/codesail/pkg/context"
	"github.com/codesail/codesail/pkg/errors"
	"github.com/codesail/codesail/pkg/observability"
	"github.com/codesail/codesail/pkg/output"
	"github.com/codesail/codesail/pkg/workspace"
	"github.com/spf13/cobra"
)

// filesOptions holds the flags for the files command
type filesOptions struct {
	root   string
	search string
	limit  int
	format string
}

func newFilesCmd(global *globalOptions) *cobra.Command {
	opts := &filesOptions{}

	cmd := &cobra.Command{
		Use:   "files",
		Short: "List workspace files that can be analyzed",
		Long: `List the files under a workspace root, skipping hidden and excluded
directories. With --search, only names containing the term are shown.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runFiles(cmd, global, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.root, "root", "r", ".", "Workspace root")
	cmd.Flags().StringVarP(&opts.search, "search", "s", "", "Case-insensitive file name filter")
	cmd.Flags().IntVarP(&opts.limit, "limit", "l", 0, "Maximum results (default from workspace.search_limit)")
	cmd.Flags().StringVarP(&opts.format, "format", "f", string(output.FormatText), "Output format (text, json)")

	return cmd
}

func runFiles(cmd *cobra.Command, global *globalOptions, opts *filesOptions) error {
	format, err := output.ParseFormat(opts.format)
	if err != nil {
		return errors.ValidationError("invalid --format", err)
	}
	if opts.limit < 0 {
		return errors.ValidationError("--limit must not be negative", nil)
	}

	cfg, sources, err := loadConfig(global, opts.root)
	if err != nil {
		return err
	}
	logger := newLogger(cfg, global, sources, cmd.ErrOrStderr())

	limit := opts.limit
	if limit == 0 {
		limit = cfg.Workspace.SearchLimit
	}

	ctx, cancel := runctx.WithSignal(cmd.Context(), interruptSignals...)
	defer cancel()

	files, err := workspace.NewLister(opts.root, cfg.Workspace.Exclude).List(ctx)
	if err != nil {
		return err
	}
	matches := workspace.Search(files, opts.search, limit)
	logger.Debug("listed workspace files",
		observability.String("root", opts.root),
		observability.Int("total", len(files)),
		observability.Int("shown", len(matches)),
	)

	stdout := cmd.OutOrStdout()
	return output.WriteFiles(stdout, matches, format, colorEnabled(stdout))
}
