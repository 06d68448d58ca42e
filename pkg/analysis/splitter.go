// Copyright 2026 CodeSail Authors. All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");

package analysis

import (
	"strings"
)

// lineSplitter turns arbitrary fragments into classified lines.
// One splitter belongs to exactly one Analyze call.
type lineSplitter struct {
	buf      string
	mode     Phase
	sentinel string
}

func newLineSplitter(sentinel string) *lineSplitter {
	return &lineSplitter{
		mode:     PhaseThinking,
		sentinel: sentinel,
	}
}

// Feed appends fragment and emits every newly completed line.
// The trailing partial line stays buffered. Emission stops at the first
// error returned by emit.
func (s *lineSplitter) Feed(fragment string, emit func(Chunk) error) error {
	if fragment == "" {
		return nil
	}
	s.buf += fragment

	for {
		idx := strings.IndexByte(s.buf, '\n')
		if idx < 0 {
			return nil
		}
		line := s.buf[:idx]
		s.buf = s.buf[idx+1:]

		chunk, ok := s.classify(line)
		if !ok {
			continue
		}
		if err := emit(chunk); err != nil {
			return err
		}
	}
}

// classify tags a single line. Blank lines are skipped.
// The first sentinel line closes the thinking phase and is itself thinking.
func (s *lineSplitter) classify(line string) (Chunk, bool) {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return Chunk{}, false
	}

	if s.mode == PhaseThinking && strings.Contains(trimmed, s.sentinel) {
		s.mode = PhaseFinal
		return Chunk{Phase: PhaseThinking, Content: trimmed}, true
	}

	return Chunk{Phase: s.mode, Content: trimmed}, true
}

// Pending returns the unterminated tail that will be dropped at end of stream
func (s *lineSplitter) Pending() string {
	return s.buf
}

// Mode returns the current phase
func (s *lineSplitter) Mode() Phase {
	return s.mode
}
