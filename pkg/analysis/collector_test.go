// Copyright 2026 CodeSail Authors. All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");

package analysis

import (
	"context"
	"testing"

	"github.com/codesail/codesail/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func collectRun(a *Analyzer, req Request) (*Result, error) {
	c := NewCollector()
	a.Analyze(context.Background(), req, c.OnChunk, c.OnComplete)
	return c.Result()
}

func TestCollectorResult(t *testing.T) {
	p := &scriptedProvider{fragments: []string{scenarioA}}

	result, err := collectRun(NewAnalyzer(p, Options{}), validRequest)
	require.NoError(t, err)

	assert.Equal(t, []string{"[STEP 1]: Check syntax.", "[STEP 2]: Check logic.", "[FINAL]"}, result.Thinking())
	assert.Equal(t, []string{"**Analysis**", "done"}, result.Final())
	assert.True(t, result.ReachedFinal())
	assert.Equal(t, "**Analysis**\ndone", result.FinalMarkdown())
}

func TestCollectorKeepsChunksBeforeFailure(t *testing.T) {
	p := &scriptedProvider{
		fragments: []string{"[STEP 1]: a\n"},
		streamErr: errors.TransportError("request failed", nil),
	}

	result, err := collectRun(NewAnalyzer(p, Options{}), validRequest)
	require.Error(t, err)
	assert.Equal(t, []string{"[STEP 1]: a"}, result.Thinking())
	assert.False(t, result.ReachedFinal())
	assert.Empty(t, result.FinalMarkdown())
}

func TestCollector(t *testing.T) {
	c := NewCollector()
	assert.False(t, c.Done())

	c.OnChunk(Chunk{Phase: PhaseThinking, Content: "a"})
	c.OnChunk(Chunk{Phase: PhaseFinal, Content: "b"})
	c.OnComplete(nil)

	assert.True(t, c.Done())
	result, err := c.Result()
	require.NoError(t, err)
	assert.Len(t, result.Chunks, 2)
	assert.Equal(t, []string{"b"}, result.ByPhase(PhaseFinal))
}
