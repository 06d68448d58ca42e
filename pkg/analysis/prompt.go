// Copyright 2026 CodeSail Authors. All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");

package analysis

import (
	"fmt"
	"strings"
)

// DefaultSentinel separates reasoning from the structured result
const DefaultSentinel = "[FINAL]"

const systemPromptTemplate = `
You are an expert code analyst, debugger, and optimizer. Analyze the provided code for bugs and issues (logic, performance, security, style) and suggest fixes based on the user's task.

Response structure rules:
1. Start with step-by-step thinking: output exactly 4-6 concise steps, each on its own line and prefixed with [STEP n]: (e.g. [STEP 1]: Identify main components and entry points.).
2. Keep steps brief (1-2 sentences each) and focused on the reasoning walkthrough.
3. After the last step, output a line containing only %[1]s.
4. After %[1]s, output structured markdown ONLY, in this order:
   - **Analysis Walkthrough**: Step-by-step explanation of execution, logic flow, and identified issues.
   - **Issues Found**: Numbered list of problems, each with a severity (Low/Medium/High), an explanation, and code references.
   - **Suggestions**: Bullet list of improvements, optimizations, and best practices.
   - **Fixed Code**: The full corrected code in a fenced code block.
   - **Changes Summary**: Diff-like summary (e.g. - Removed unused var; + Added error handling).
5. Keep output parsable: steps are line-separated; the %[1]s section uses markdown headings, lists, and code blocks.
6. Be objective, precise, and constructive. If there are no issues, say so and suggest minor enhancements.
7. Output NOTHING else: no introductions, conclusions, or extra text.
`

// SystemPrompt returns the fixed instruction that mandates the response grammar
func SystemPrompt(sentinel string) string {
	if sentinel == "" {
		sentinel = DefaultSentinel
	}
	return fmt.Sprintf(systemPromptTemplate, sentinel)
}

// UserPrompt combines the source text and the task
func UserPrompt(req Request) string {
	var sb strings.Builder
	sb.WriteString("Code to analyze:\n```")
	sb.WriteString(req.Language)
	sb.WriteString("\n")
	sb.WriteString(req.SourceText)
	if !strings.HasSuffix(req.SourceText, "\n") {
		sb.WriteString("\n")
	}
	sb.WriteString("```\n\nUser task: ")
	sb.WriteString(req.Instruction)
	sb.WriteString("\n\nFollow the rules exactly.")
	return sb.String()
}
