// Copyright 2026 CodeSail Authors. All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");

package analysis

import (
	"strings"
)

// Collector buffers chunks and the outcome of one Analyze call.
// It is not safe for concurrent use.
type Collector struct {
	chunks []Chunk
	err    error
	done   bool
}

// NewCollector creates an empty collector
func NewCollector() *Collector {
	return &Collector{chunks: make([]Chunk, 0)}
}

// OnChunk records a chunk; use it as the ChunkFunc
func (c *Collector) OnChunk(chunk Chunk) {
	c.chunks = append(c.chunks, chunk)
}

// OnComplete records the outcome; use it as the CompleteFunc
func (c *Collector) OnComplete(err error) {
	c.err = err
	c.done = true
}

// Done reports whether the outcome has been recorded
func (c *Collector) Done() bool {
	return c.done
}

// Result returns what was collected and the terminal error
func (c *Collector) Result() (*Result, error) {
	return &Result{Chunks: c.chunks}, c.err
}

// Result is the ordered output of one analysis
type Result struct {
	Chunks []Chunk
}

// ByPhase returns the content of chunks with the given phase
func (r *Result) ByPhase(phase Phase) []string {
	out := make([]string, 0)
	for _, c := range r.Chunks {
		if c.Phase == phase {
			out = append(out, c.Content)
		}
	}
	return out
}

// Thinking returns the reasoning lines, including the sentinel line
func (r *Result) Thinking() []string {
	return r.ByPhase(PhaseThinking)
}

// Final returns the result lines
func (r *Result) Final() []string {
	return r.ByPhase(PhaseFinal)
}

// ReachedFinal reports whether any final chunk arrived
func (r *Result) ReachedFinal() bool {
	for _, c := range r.Chunks {
		if c.Phase == PhaseFinal {
			return true
		}
	}
	return false
}

// FinalMarkdown joins the final lines into a markdown document.
// Lines were trimmed on the way in, so indentation is not preserved.
func (r *Result) FinalMarkdown() string {
	return strings.Join(r.Final(), "\n")
}
