// Copyright 2026 CodeSail Authors. All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");

package analysis

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/codesail/codesail/pkg/ai"
	"github.com/codesail/codesail/pkg/errors"
	"github.com/codesail/codesail/pkg/observability"
	"github.com/google/uuid"
)

// Options contains settings for an Analyzer
type Options struct {
	// Model is the provider model identifier
	Model string

	// Temperature is the sampling temperature; kept low for stable grammar.
	// Zero selects the default.
	Temperature float32

	// MaxTokens caps the output length
	MaxTokens int

	// Sentinel marks the switch from thinking to final
	Sentinel string

	// SystemPrompt overrides the built-in instruction
	SystemPrompt string

	// Logger receives run diagnostics; nil disables logging
	Logger observability.Logger

	// Metrics accumulates run counters; nil disables recording
	Metrics *observability.Metrics
}

// DefaultOptions returns the settings the response grammar was tuned for
func DefaultOptions() Options {
	return Options{
		Model:       "llama-3.1-8b-instant",
		Temperature: 0.1,
		MaxTokens:   4096,
		Sentinel:    DefaultSentinel,
	}
}

// Analyzer runs streamed code analyses against one provider.
// It holds no per-call state, so concurrent Analyze calls are independent.
type Analyzer struct {
	provider ai.Provider
	opts     Options
	logger   observability.Logger
}

// NewAnalyzer creates an analyzer. Zero-valued options take their defaults.
func NewAnalyzer(provider ai.Provider, opts Options) *Analyzer {
	merged := DefaultOptions()
	if opts.Model != "" {
		merged.Model = opts.Model
	}
	if opts.Temperature > 0 {
		merged.Temperature = opts.Temperature
	}
	if opts.MaxTokens > 0 {
		merged.MaxTokens = opts.MaxTokens
	}
	if opts.Sentinel != "" {
		merged.Sentinel = opts.Sentinel
	}
	merged.SystemPrompt = opts.SystemPrompt
	if merged.SystemPrompt == "" {
		merged.SystemPrompt = SystemPrompt(merged.Sentinel)
	}

	logger := opts.Logger
	if logger == nil {
		logger = observability.NewNopLogger()
	}
	merged.Logger = logger
	merged.Metrics = opts.Metrics

	return &Analyzer{
		provider: provider,
		opts:     merged,
		logger:   logger,
	}
}

// Options returns the effective options
func (a *Analyzer) Options() Options {
	return a.opts
}

// Analyze streams an analysis of req.SourceText. Every completed line is
// passed to onChunk in arrival order; onComplete is then called exactly once,
// with nil on success. Analyze returns after onComplete.
//
// Blank input fails with ErrEmptyInput without contacting the provider.
// Provider failures, before or during streaming, are reported through
// onComplete and never returned or panicked.
func (a *Analyzer) Analyze(ctx context.Context, req Request, onChunk ChunkFunc, onComplete CompleteFunc) {
	if onChunk == nil {
		onChunk = func(Chunk) {}
	}
	if onComplete == nil {
		onComplete = func(error) {}
	}

	log := a.logger.With(observability.String("run_id", uuid.NewString()))

	if strings.TrimSpace(req.SourceText) == "" || strings.TrimSpace(req.Instruction) == "" {
		err := newEmptyInputError()
		log.Warn("rejected analysis request", observability.Err(err))
		a.opts.Metrics.RecordRun(0, errors.ErrValidation.String())
		onComplete(err)
		return
	}

	start := time.Now()
	log.Debug("analysis started",
		observability.String("provider", a.provider.Name()),
		observability.String("model", a.opts.Model),
		observability.Int("source_bytes", len(req.SourceText)),
	)

	stats, err := a.run(ctx, req, onChunk)
	elapsed := time.Since(start)
	a.opts.Metrics.RecordChunks(string(PhaseThinking), stats.thinking)
	a.opts.Metrics.RecordChunks(string(PhaseFinal), stats.final)
	fields := []observability.Field{
		observability.Int("chunks", stats.chunks),
		observability.Int("thinking", stats.thinking),
		observability.Int("final", stats.final),
		observability.Duration("elapsed", elapsed),
	}
	if err != nil {
		category := "UNKNOWN"
		if typ, ok := errors.TypeOf(err); ok {
			category = typ.String()
		}
		log.Error("analysis failed", append(fields, observability.String("category", category), observability.Err(err))...)
		a.opts.Metrics.RecordRun(elapsed, category)
		onComplete(err)
		return
	}

	if stats.final == 0 {
		// The provider ignored the grammar; callers see only thinking chunks.
		log.Warn("stream ended without a final section", fields...)
	}
	if stats.dropped > 0 {
		log.Debug("dropped unterminated trailing fragment", observability.Int("bytes", stats.dropped))
	}
	log.Info("analysis completed", fields...)
	a.opts.Metrics.RecordRun(elapsed, "")
	onComplete(nil)
}

type runStats struct {
	chunks   int
	thinking int
	final    int
	dropped  int
}

func (a *Analyzer) run(ctx context.Context, req Request, onChunk ChunkFunc) (runStats, error) {
	var stats runStats

	stream, err := a.provider.Stream(ctx, ai.CompletionRequest{
		Model:       a.opts.Model,
		System:      a.opts.SystemPrompt,
		User:        UserPrompt(req),
		Temperature: a.opts.Temperature,
		MaxTokens:   a.opts.MaxTokens,
	})
	if err != nil {
		return stats, a.providerError(err)
	}
	if stream == nil {
		return stats, a.providerError(errors.UpstreamError("missing response body", nil))
	}
	defer func() { _ = stream.Close() }()

	splitter := newLineSplitter(a.opts.Sentinel)
	emit := func(c Chunk) error {
		if err := deliver(onChunk, c); err != nil {
			return err
		}
		stats.chunks++
		if c.Phase == PhaseFinal {
			stats.final++
		} else {
			stats.thinking++
		}
		return nil
	}

	for {
		if err := ctx.Err(); err != nil {
			return stats, a.providerError(err)
		}

		fragment, err := stream.Recv()
		if stderrors.Is(err, io.EOF) {
			stats.dropped = len(splitter.Pending())
			return stats, nil
		}
		if err != nil {
			return stats, a.providerError(err)
		}

		if err := splitter.Feed(fragment, emit); err != nil {
			return stats, err
		}
	}
}

// deliver invokes the caller's callback, turning a panic into an error so
// the terminal callback still fires exactly once.
func deliver(onChunk ChunkFunc, c Chunk) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.ConsumerError("chunk handler panicked", fmt.Errorf("%v", r))
		}
	}()
	onChunk(c)
	return nil
}

// providerError prefixes err with the provider name, keeping its category.
func (a *Analyzer) providerError(err error) error {
	errType := errors.ErrTransport
	if typ, ok := errors.TypeOf(err); ok {
		errType = typ
	} else if stderrors.Is(err, context.DeadlineExceeded) {
		errType = errors.ErrTimeout
	}
	return errors.New(errType, a.provider.Name()+" API error", err)
}
