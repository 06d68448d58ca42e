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
	"sync"
	"testing"

	"github.com/codesail/codesail/pkg/ai"
	"github.com/codesail/codesail/pkg/errors"
	"github.com/codesail/codesail/pkg/observability"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedProvider replays fixed fragments, then ends with streamErr or EOF.
type scriptedProvider struct {
	mu        sync.Mutex
	fragments []string
	streamErr error
	openErr   error
	calls     int
	lastReq   ai.CompletionRequest
}

func (p *scriptedProvider) Name() string { return "Groq" }

func (p *scriptedProvider) Stream(_ context.Context, req ai.CompletionRequest) (ai.TokenStream, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls++
	p.lastReq = req
	if p.openErr != nil {
		return nil, p.openErr
	}
	return &scriptedStream{fragments: append([]string(nil), p.fragments...), err: p.streamErr}, nil
}

func (p *scriptedProvider) Calls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls
}

type scriptedStream struct {
	fragments []string
	err       error
	closed    bool
}

func (s *scriptedStream) Recv() (string, error) {
	if len(s.fragments) > 0 {
		f := s.fragments[0]
		s.fragments = s.fragments[1:]
		return f, nil
	}
	if s.err != nil {
		return "", s.err
	}
	return "", io.EOF
}

func (s *scriptedStream) Close() error {
	s.closed = true
	return nil
}

// recording captures every callback in order.
type recording struct {
	chunks    []Chunk
	events    []string
	completes int
	err       error
}

func (r *recording) onChunk(c Chunk) {
	r.chunks = append(r.chunks, c)
	r.events = append(r.events, "chunk")
}

func (r *recording) onComplete(err error) {
	r.completes++
	r.err = err
	r.events = append(r.events, "complete")
}

func analyze(t *testing.T, p ai.Provider, req Request) *recording {
	t.Helper()
	rec := &recording{}
	NewAnalyzer(p, Options{}).Analyze(context.Background(), req, rec.onChunk, rec.onComplete)
	require.Equal(t, 1, rec.completes, "onComplete must fire exactly once")
	require.Equal(t, "complete", rec.events[len(rec.events)-1], "onComplete must be the last callback")
	return rec
}

var validRequest = Request{SourceText: "function f(){}", Instruction: "find bugs"}

const scenarioA = "[STEP 1]: Check syntax.\n[STEP 2]: Check logic.\n[FINAL]\n**Analysis**\ndone\n"

func TestAnalyzeScenarioA(t *testing.T) {
	p := &scriptedProvider{fragments: []string{scenarioA}}

	rec := analyze(t, p, validRequest)

	require.NoError(t, rec.err)
	assert.Equal(t, []Chunk{
		{Phase: PhaseThinking, Content: "[STEP 1]: Check syntax."},
		{Phase: PhaseThinking, Content: "[STEP 2]: Check logic."},
		{Phase: PhaseThinking, Content: "[FINAL]"},
		{Phase: PhaseFinal, Content: "**Analysis**"},
		{Phase: PhaseFinal, Content: "done"},
	}, rec.chunks)
}

func TestAnalyzeScenarioBEmptyInput(t *testing.T) {
	tests := []struct {
		name string
		req  Request
	}{
		{"empty source", Request{SourceText: "", Instruction: "find bugs"}},
		{"empty instruction", Request{SourceText: "x := 1", Instruction: ""}},
		{"whitespace source", Request{SourceText: " \n\t ", Instruction: "find bugs"}},
		{"whitespace instruction", Request{SourceText: "x := 1", Instruction: "   "}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &scriptedProvider{fragments: []string{scenarioA}}

			rec := analyze(t, p, tt.req)

			assert.Empty(t, rec.chunks)
			require.Error(t, rec.err)
			assert.Equal(t, "Error: Code or prompt is empty", rec.err.Error())
			assert.ErrorIs(t, rec.err, ErrEmptyInput)
			assert.True(t, errors.IsType(rec.err, errors.ErrValidation))
			assert.Zero(t, p.Calls(), "no network call for invalid input")
		})
	}
}

func TestAnalyzeEmptyInputErrorsAreIndependent(t *testing.T) {
	p := &scriptedProvider{}
	first := analyze(t, p, Request{})
	second := analyze(t, p, Request{})

	var a, b *errors.CodesailError
	require.True(t, stderrors.As(first.err, &a))
	require.True(t, stderrors.As(second.err, &b))
	assert.NotSame(t, a, b)
	assert.NotSame(t, ErrEmptyInput, a)

	a.WithContext("caller", "first")
	assert.NotContains(t, b.Context, "caller")
	assert.Empty(t, ErrEmptyInput.Context)
}

func TestAnalyzeScenarioCMidStreamError(t *testing.T) {
	p := &scriptedProvider{
		fragments: []string{"[STEP 1]: One.\n[STEP", " 2]: Two.\nbuffered but never", " terminated"},
		streamErr: errors.TransportError("request failed", fmt.Errorf("connection reset by peer")),
	}

	rec := analyze(t, p, validRequest)

	assert.Equal(t, []Chunk{
		{Phase: PhaseThinking, Content: "[STEP 1]: One."},
		{Phase: PhaseThinking, Content: "[STEP 2]: Two."},
	}, rec.chunks)
	require.Error(t, rec.err)
	assert.Equal(t, "Groq API error: request failed: connection reset by peer", rec.err.Error())
	assert.True(t, errors.IsType(rec.err, errors.ErrTransport))
}

func TestAnalyzeScenarioDTrailingFragment(t *testing.T) {
	p := &scriptedProvider{fragments: []string{"[STEP 1]: Look.\n", "partial tex"}}

	rec := analyze(t, p, validRequest)

	require.NoError(t, rec.err)
	assert.Equal(t, []Chunk{{Phase: PhaseThinking, Content: "[STEP 1]: Look."}}, rec.chunks)
}

func TestAnalyzeOpenError(t *testing.T) {
	p := &scriptedProvider{openErr: errors.UpstreamError("status 401: Invalid API Key", nil)}

	rec := analyze(t, p, validRequest)

	assert.Empty(t, rec.chunks)
	require.Error(t, rec.err)
	assert.Equal(t, "Groq API error: status 401: Invalid API Key", rec.err.Error())
	assert.True(t, errors.IsType(rec.err, errors.ErrUpstream))
}

func TestAnalyzePlainErrorIsTransport(t *testing.T) {
	p := &scriptedProvider{openErr: stderrors.New("dial tcp: no route to host")}

	rec := analyze(t, p, validRequest)

	require.Error(t, rec.err)
	assert.True(t, errors.IsType(rec.err, errors.ErrTransport))
	assert.Contains(t, rec.err.Error(), "no route to host")
}

const longStream = "[STEP 1]: Identify entry points.\r\n" +
	"\n" +
	"   [STEP 2]: Trace the loop.   \n" +
	"[STEP 3]: Check bounds.\n" +
	"\t\n" +
	"[FINAL]\n" +
	"### Analysis Walkthrough\n" +
	"The loop runs once.\n" +
	"\n" +
	"### Issues Found\n" +
	"1. Off-by-one (High): index exceeds length.\n" +
	"```js\n" +
	"for (let i = 0; i < n; i++) {}\n" +
	"```\n" +
	"tail without newline"

func fragmentsOf(text string, size int) []string {
	var out []string
	for len(text) > 0 {
		n := size
		if n > len(text) {
			n = len(text)
		}
		out = append(out, text[:n])
		text = text[n:]
	}
	return out
}

func TestAnalyzeFragmentationInvariance(t *testing.T) {
	whole := analyze(t, &scriptedProvider{fragments: []string{longStream}}, validRequest)
	require.NoError(t, whole.err)
	require.NotEmpty(t, whole.chunks)

	for _, size := range []int{1, 2, 3, 5, 7, 13, 64} {
		t.Run(fmt.Sprintf("size=%d", size), func(t *testing.T) {
			rec := analyze(t, &scriptedProvider{fragments: fragmentsOf(longStream, size)}, validRequest)
			require.NoError(t, rec.err)
			assert.Equal(t, whole.chunks, rec.chunks)
		})
	}

	// Interleaved empty fragments, as sent by keep-alive or usage frames.
	var withEmpty []string
	for _, f := range fragmentsOf(longStream, 4) {
		withEmpty = append(withEmpty, "", f)
	}
	rec := analyze(t, &scriptedProvider{fragments: withEmpty}, validRequest)
	assert.Equal(t, whole.chunks, rec.chunks)
}

func TestAnalyzeNoBlankChunks(t *testing.T) {
	rec := analyze(t, &scriptedProvider{fragments: fragmentsOf(longStream, 3)}, validRequest)

	for _, c := range rec.chunks {
		assert.NotEmpty(t, c.Content)
		assert.Equal(t, strings.TrimSpace(c.Content), c.Content)
	}
	assert.Equal(t, "[STEP 1]: Identify entry points.", rec.chunks[0].Content)
	assert.Equal(t, "[STEP 2]: Trace the loop.", rec.chunks[1].Content)
}

func TestAnalyzeModeIsMonotonic(t *testing.T) {
	text := "[STEP 1]: a\n[FINAL]\nresult\nmodel repeats [FINAL] here\n[FINAL]\nmore\n"
	rec := analyze(t, &scriptedProvider{fragments: []string{text}}, validRequest)

	require.NoError(t, rec.err)
	seenFinal := false
	for _, c := range rec.chunks {
		if c.Phase == PhaseFinal {
			seenFinal = true
			continue
		}
		assert.False(t, seenFinal, "thinking chunk %q after a final chunk", c.Content)
	}
	assert.Equal(t, []string{"[STEP 1]: a", "[FINAL]"}, collect(rec.chunks, PhaseThinking))
	assert.Equal(t, []string{"result", "model repeats [FINAL] here", "[FINAL]", "more"}, collect(rec.chunks, PhaseFinal))
}

func TestAnalyzeSentinelInsideLine(t *testing.T) {
	rec := analyze(t, &scriptedProvider{fragments: []string{"[STEP 4]: Done. [FINAL]\nbody\n"}}, validRequest)

	assert.Equal(t, []Chunk{
		{Phase: PhaseThinking, Content: "[STEP 4]: Done. [FINAL]"},
		{Phase: PhaseFinal, Content: "body"},
	}, rec.chunks)
}

func TestAnalyzeWithoutSentinel(t *testing.T) {
	rec := analyze(t, &scriptedProvider{fragments: []string{"just prose\nmore prose\n"}}, validRequest)

	require.NoError(t, rec.err, "a missing final section is not a failure")
	assert.Equal(t, []string{"just prose", "more prose"}, collect(rec.chunks, PhaseThinking))
}

func TestAnalyzeCustomSentinel(t *testing.T) {
	p := &scriptedProvider{fragments: []string{"step\n<<RESULT>>\nbody\n"}}
	rec := &recording{}

	a := NewAnalyzer(p, Options{Sentinel: "<<RESULT>>"})
	a.Analyze(context.Background(), validRequest, rec.onChunk, rec.onComplete)

	require.NoError(t, rec.err)
	assert.Equal(t, []string{"body"}, collect(rec.chunks, PhaseFinal))
	assert.Contains(t, p.lastReq.System, "<<RESULT>>")
}

func TestAnalyzeCompletionRequest(t *testing.T) {
	p := &scriptedProvider{fragments: []string{scenarioA}}

	analyze(t, p, Request{SourceText: "package main", Instruction: "explain", Language: "go"})

	assert.Equal(t, "llama-3.1-8b-instant", p.lastReq.Model)
	assert.InDelta(t, 0.1, p.lastReq.Temperature, 1e-6)
	assert.Equal(t, 4096, p.lastReq.MaxTokens)
	assert.Contains(t, p.lastReq.System, "[STEP n]:")
	assert.Contains(t, p.lastReq.System, DefaultSentinel)
	assert.Contains(t, p.lastReq.User, "```go\npackage main\n```")
	assert.Contains(t, p.lastReq.User, "User task: explain")
}

func TestAnalyzeOptionsOverride(t *testing.T) {
	a := NewAnalyzer(&scriptedProvider{}, Options{Model: "llama-3.3-70b-versatile", MaxTokens: 1024, SystemPrompt: "custom"})

	opts := a.Options()
	assert.Equal(t, "llama-3.3-70b-versatile", opts.Model)
	assert.Equal(t, 1024, opts.MaxTokens)
	assert.InDelta(t, 0.1, opts.Temperature, 1e-6)
	assert.Equal(t, "custom", opts.SystemPrompt)
	assert.Equal(t, DefaultSentinel, opts.Sentinel)
	assert.NotNil(t, opts.Logger)
}

func TestAnalyzeChunkHandlerPanic(t *testing.T) {
	p := &scriptedProvider{fragments: []string{scenarioA}}
	completes := 0
	var got error
	delivered := 0

	NewAnalyzer(p, Options{}).Analyze(context.Background(), validRequest,
		func(c Chunk) {
			delivered++
			if c.Content == "[FINAL]" {
				panic("renderer exploded")
			}
		},
		func(err error) {
			completes++
			got = err
		},
	)

	assert.Equal(t, 1, completes)
	assert.Equal(t, 3, delivered, "no chunk after the failing one")
	require.Error(t, got)
	assert.True(t, errors.IsType(got, errors.ErrConsumer))
	assert.Contains(t, got.Error(), "renderer exploded")
}

func TestAnalyzeCanceledContext(t *testing.T) {
	p := &scriptedProvider{fragments: []string{scenarioA}}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	rec := &recording{}
	NewAnalyzer(p, Options{}).Analyze(ctx, validRequest, rec.onChunk, rec.onComplete)

	assert.Equal(t, 1, rec.completes)
	assert.Empty(t, rec.chunks)
	require.Error(t, rec.err)
	assert.ErrorIs(t, rec.err, context.Canceled)
}

func TestAnalyzeNilCallbacks(t *testing.T) {
	p := &scriptedProvider{fragments: []string{scenarioA}}

	assert.NotPanics(t, func() {
		NewAnalyzer(p, Options{}).Analyze(context.Background(), validRequest, nil, nil)
		NewAnalyzer(p, Options{}).Analyze(context.Background(), Request{}, nil, nil)
	})
}

func TestAnalyzeConcurrentCallsAreIndependent(t *testing.T) {
	const n = 8
	results := make([]*recording, n)
	var wg sync.WaitGroup

	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			text := fmt.Sprintf("[STEP 1]: call %d\n[FINAL]\nresult %d\n", i, i)
			p := &scriptedProvider{fragments: fragmentsOf(text, i+1)}
			rec := &recording{}
			NewAnalyzer(p, Options{}).Analyze(context.Background(), validRequest, rec.onChunk, rec.onComplete)
			results[i] = rec
		}(i)
	}
	wg.Wait()

	for i, rec := range results {
		require.NoError(t, rec.err)
		assert.Equal(t, []string{fmt.Sprintf("result %d", i)}, collect(rec.chunks, PhaseFinal))
	}
}

func TestAnalyzeSharedAnalyzer(t *testing.T) {
	p := &scriptedProvider{fragments: []string{"[FINAL]\nx\n"}}
	a := NewAnalyzer(p, Options{})

	first, second := &recording{}, &recording{}
	a.Analyze(context.Background(), validRequest, first.onChunk, first.onComplete)
	a.Analyze(context.Background(), validRequest, second.onChunk, second.onComplete)

	// Each call starts in thinking mode.
	assert.Equal(t, first.chunks, second.chunks)
	assert.Equal(t, PhaseThinking, second.chunks[0].Phase)
}

func collect(chunks []Chunk, phase Phase) []string {
	out := []string{}
	for _, c := range chunks {
		if c.Phase == phase {
			out = append(out, c.Content)
		}
	}
	return out
}

func TestAnalyzeRecordsMetrics(t *testing.T) {
	metrics := observability.NewMetrics()

	ok := NewAnalyzer(&scriptedProvider{fragments: []string{"step\n[FINAL]\nanswer\nmore\n"}}, Options{Metrics: metrics})
	ok.Analyze(context.Background(), Request{SourceText: "x", Instruction: "y"}, nil, nil)

	failing := NewAnalyzer(&scriptedProvider{openErr: errors.UpstreamError("status 500", nil)}, Options{Metrics: metrics})
	failing.Analyze(context.Background(), Request{SourceText: "x", Instruction: "y"}, nil, nil)
	failing.Analyze(context.Background(), Request{}, nil, nil)

	snap := metrics.Snapshot()
	assert.Equal(t, 3, snap.Runs)
	assert.Equal(t, map[string]int{"UPSTREAM": 1, "VALIDATION": 1}, snap.Failures)
	assert.Equal(t, map[string]int{"thinking": 2, "final": 2}, snap.Chunks)
}
