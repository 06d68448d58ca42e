// Copyright 2026 CodeSail Authors. All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");

package analysis

import (
	"regexp"
	"strconv"
	"strings"
)

// Section names the final report is asked to contain, in order
var Sections = []string{
	"Analysis Walkthrough",
	"Issues Found",
	"Suggestions",
	"Fixed Code",
	"Changes Summary",
}

var (
	numberedItemPattern = regexp.MustCompile(`^(\d+)[.)]\s+(.+)$`)
	severityPattern     = regexp.MustCompile(`(?i)\b(low|medium|high|critical)\b`)
)

// Issue is one entry of the "Issues Found" list
type Issue struct {
	Number   int    `json:"number"`
	Severity string `json:"severity,omitempty"` // Low, Medium, High, Critical
	Text     string `json:"text"`
}

// ReportCheck describes how well a final report follows the requested layout.
// Checking a report never changes the outcome of the analysis itself.
type ReportCheck struct {
	Present  []string `json:"present"`
	Missing  []string `json:"missing"`
	InOrder  bool     `json:"in_order"`
	HasFence bool     `json:"has_fence"`
	Issues   []Issue  `json:"issues"`
}

// Complete reports whether every section is present, in order, with a fenced
// code block.
func (c ReportCheck) Complete() bool {
	return len(c.Missing) == 0 && c.InOrder && c.HasFence
}

// CheckReport inspects the final markdown for the five sections and parses
// the numbered issues with their severity.
func CheckReport(markdown string) ReportCheck {
	check := ReportCheck{
		Present: make([]string, 0, len(Sections)),
		Missing: make([]string, 0),
		Issues:  make([]Issue, 0),
		InOrder: true,
	}

	found := make(map[string]int)
	current := ""
	lastIndex := -1
	var pending *Issue

	flush := func() {
		if pending != nil {
			check.Issues = append(check.Issues, *pending)
			pending = nil
		}
	}

	inFence := false
	for _, raw := range strings.Split(markdown, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "```") {
			check.HasFence = true
			inFence = !inFence
			continue
		}
		// code comments such as "# Suggestions" are not headings
		if inFence {
			continue
		}

		if name, idx, ok := sectionHeading(line); ok {
			if _, seen := found[name]; !seen {
				found[name] = idx
				if idx < lastIndex {
					check.InOrder = false
				}
				lastIndex = idx
			}
			if current == "Issues Found" {
				flush()
			}
			current = name
			continue
		}

		if current != "Issues Found" {
			continue
		}
		if m := numberedItemPattern.FindStringSubmatch(line); m != nil {
			flush()
			n, _ := strconv.Atoi(m[1])
			pending = &Issue{Number: n, Text: m[2], Severity: severityOf(m[2])}
			continue
		}
		// Severity on a follow-up line, e.g. "- Severity: High"
		if pending != nil && pending.Severity == "" && strings.Contains(strings.ToLower(line), "severity") {
			pending.Severity = severityOf(line)
		}
	}
	flush()

	for _, name := range Sections {
		if _, ok := found[name]; ok {
			check.Present = append(check.Present, name)
		} else {
			check.Missing = append(check.Missing, name)
		}
	}

	return check
}

// sectionHeading recognises "## Issues Found", "**Issues Found**:" and
// "- **Issues Found**: ..." style headings.
func sectionHeading(line string) (string, int, bool) {
	stripped := strings.TrimLeft(line, "#*-_> \t")
	lower := strings.ToLower(stripped)
	for i, name := range Sections {
		if strings.HasPrefix(lower, strings.ToLower(name)) {
			return name, i, true
		}
	}
	return "", 0, false
}

func severityOf(text string) string {
	m := severityPattern.FindString(text)
	if m == "" {
		return ""
	}
	return strings.ToUpper(m[:1]) + strings.ToLower(m[1:])
}
