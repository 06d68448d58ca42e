// Copyright 2026 CodeSail Authors. All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");

// Package analysis streams an AI code analysis and classifies each completed
// line of model output as reasoning ("thinking") or result ("final").
package analysis

import (
	"github.com/codesail/codesail/pkg/errors"
)

// Phase tags a chunk as reasoning preamble or structured result
type Phase string

const (
	// PhaseThinking marks reasoning steps, including the sentinel line
	PhaseThinking Phase = "thinking"
	// PhaseFinal marks every line after the sentinel
	PhaseFinal Phase = "final"
)

// Chunk is one classified line of model output.
// Content is trimmed and never empty.
type Chunk struct {
	Phase   Phase  `json:"phase"`
	Content string `json:"content"`
}

// Request is one user submission
type Request struct {
	// SourceText is the code under analysis
	SourceText string

	// Instruction is the user's natural-language task
	Instruction string

	// Language is an optional fence hint (e.g. "go", "ts")
	Language string
}

// ChunkFunc receives chunks in arrival order
type ChunkFunc func(Chunk)

// CompleteFunc receives the terminal outcome exactly once.
// A nil error means success.
type CompleteFunc func(err error)

// ErrEmptyInput matches, via errors.Is, the failure reported when the source
// text or instruction is blank. Each call receives its own copy.
var ErrEmptyInput = errors.ValidationError("Error: Code or prompt is empty", nil)

func newEmptyInputError() *errors.CodesailError {
	return errors.ValidationError(ErrEmptyInput.Message, nil)
}
