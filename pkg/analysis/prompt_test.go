// Copyright 2026 CodeSail Authors. All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");

package analysis

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSystemPromptGrammar(t *testing.T) {
	prompt := SystemPrompt("")

	assert.Contains(t, prompt, "exactly 4-6 concise steps")
	assert.Contains(t, prompt, "[STEP n]:")
	assert.Contains(t, prompt, "output a line containing only [FINAL]")
	for _, section := range Sections {
		assert.Contains(t, prompt, "**"+section+"**", "section %s", section)
	}
	assert.NotContains(t, prompt, "%!")
}

func TestSystemPromptCustomSentinel(t *testing.T) {
	prompt := SystemPrompt("<<DONE>>")
	assert.Equal(t, 3, strings.Count(prompt, "<<DONE>>"))
	assert.NotContains(t, prompt, DefaultSentinel)
}

func TestUserPrompt(t *testing.T) {
	got := UserPrompt(Request{SourceText: "function f(){}", Instruction: "find bugs"})
	assert.Equal(t, "Code to analyze:\n```\nfunction f(){}\n```\n\nUser task: find bugs\n\nFollow the rules exactly.", got)

	got = UserPrompt(Request{SourceText: "x = 1\n", Instruction: "why", Language: "py"})
	assert.True(t, strings.HasPrefix(got, "Code to analyze:\n```py\nx = 1\n```\n"))
}
