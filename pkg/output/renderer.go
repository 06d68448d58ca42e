// Copyright 2026 CodeSail Authors. All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");

// Package output renders analysis events for a terminal or a host process.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/charmbracelet/glamour"
	"github.com/codesail/codesail/pkg/analysis"
	"github.com/fatih/color"
	"github.com/mitchellh/go-wordwrap"
)

// Format selects how events are written.
type Format string

const (
	// FormatText writes human readable, optionally colored output.
	FormatText Format = "text"
	// FormatJSON writes one JSON record per line.
	FormatJSON Format = "json"
)

// DefaultWidth is the wrap width for thinking lines and rendered markdown.
const DefaultWidth = 100

const (
	thinkingPrefix = "│ "
	minWrapWidth   = 20
)

// ParseFormat validates a --format value.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case "", FormatText:
		return FormatText, nil
	case FormatJSON:
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("unsupported output format %q (want text or json)", s)
	}
}

// Options configures a Renderer.
type Options struct {
	Format Format
	// Render buffers the final section and prints it through glamour on success.
	Render bool
	Width  int
	Color  bool
}

// Start describes the request that is about to stream.
type Start struct {
	File    string `json:"file,omitempty"`
	Model   string `json:"model,omitempty"`
	Backend string `json:"backend,omitempty"`
}

// record is the JSON-lines envelope.
type record struct {
	Event   string         `json:"event"`
	Start   *Start         `json:"request,omitempty"`
	Phase   analysis.Phase `json:"phase,omitempty"`
	Content string         `json:"content,omitempty"`
	Done    bool           `json:"done,omitempty"`
	Error   string         `json:"error,omitempty"`
	Missing []string       `json:"missing,omitempty"`
}

// Renderer writes chunk events to w. Its methods are safe for concurrent use.
type Renderer struct {
	mu   sync.Mutex
	w    io.Writer
	opts Options

	thinking *color.Color
	header   *color.Color
	success  *color.Color
	failure  *color.Color
	warning  *color.Color

	final strings.Builder
}

// NewRenderer creates a renderer over w.
func NewRenderer(w io.Writer, opts Options) *Renderer {
	if opts.Format == "" {
		opts.Format = FormatText
	}
	if opts.Width <= 0 {
		opts.Width = DefaultWidth
	}

	r := &Renderer{
		w:        w,
		opts:     opts,
		thinking: color.New(color.Faint),
		header:   color.New(color.Bold),
		success:  color.New(color.FgGreen),
		failure:  color.New(color.FgRed),
		warning:  color.New(color.FgYellow),
	}
	for _, c := range []*color.Color{r.thinking, r.header, r.success, r.failure, r.warning} {
		if opts.Color {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return r
}

// Start announces a new request.
func (r *Renderer) Start(s Start) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.final.Reset()
	if r.opts.Format == FormatJSON {
		return r.writeRecord(record{Event: "start", Start: &s})
	}

	msg := "► Analyzing"
	if s.File != "" {
		msg += " " + s.File
	}
	if s.Model != "" {
		msg += " with " + s.Model
	}
	_, err := r.header.Fprintln(r.w, msg)
	return err
}

// Chunk writes one classified line. It matches analysis.ChunkFunc.
func (r *Renderer) Chunk(c analysis.Chunk) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.opts.Format == FormatJSON {
		return r.writeRecord(record{Event: "chunk", Phase: c.Phase, Content: c.Content})
	}

	if c.Phase == analysis.PhaseThinking {
		wrapped := wordwrap.WrapString(c.Content, r.wrapWidth())
		for _, line := range strings.Split(wrapped, "\n") {
			if _, err := r.thinking.Fprintln(r.w, thinkingPrefix+line); err != nil {
				return err
			}
		}
		return nil
	}

	if r.opts.Render {
		r.final.WriteString(c.Content)
		r.final.WriteByte('\n')
		return nil
	}
	_, err := fmt.Fprintln(r.w, c.Content)
	return err
}

// Complete writes the terminal record. A nil err means success.
func (r *Renderer) Complete(err error) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.opts.Format == FormatJSON {
		if err != nil {
			return r.writeRecord(record{Event: "complete", Error: err.Error()})
		}
		return r.writeRecord(record{Event: "complete", Done: true})
	}

	if err != nil {
		_, werr := r.failure.Fprintf(r.w, "✗ %s\n", err.Error())
		return werr
	}

	if r.opts.Render && r.final.Len() > 0 {
		if werr := r.renderMarkdown(r.final.String()); werr != nil {
			return werr
		}
	}
	_, werr := r.success.Fprintln(r.w, "✔ Analysis complete")
	return werr
}

// Report warns about report sections the model left out.
func (r *Renderer) Report(check analysis.ReportCheck) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.opts.Format == FormatJSON {
		if check.Complete() {
			return nil
		}
		return r.writeRecord(record{Event: "report", Missing: check.Missing})
	}

	if len(check.Missing) > 0 {
		if _, err := r.warning.Fprintf(r.w, "⚠ Missing report sections: %s\n", strings.Join(check.Missing, ", ")); err != nil {
			return err
		}
	}
	if !check.InOrder && len(check.Missing) == 0 {
		if _, err := r.warning.Fprintln(r.w, "⚠ Report sections are out of order"); err != nil {
			return err
		}
	}
	return nil
}

func (r *Renderer) wrapWidth() uint {
	width := r.opts.Width - utf8.RuneCountInString(thinkingPrefix)
	if width < minWrapWidth {
		width = minWrapWidth
	}
	return uint(width)
}

func (r *Renderer) renderMarkdown(md string) error {
	style := "notty"
	if r.opts.Color {
		style = "dark"
	}

	tr, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(style),
		glamour.WithWordWrap(r.opts.Width),
	)
	if err != nil {
		// fall back to the raw markdown
		_, werr := io.WriteString(r.w, md)
		return werr
	}

	out, err := tr.Render(md)
	if err != nil {
		_, werr := io.WriteString(r.w, md)
		return werr
	}
	_, err = io.WriteString(r.w, out)
	return err
}

func (r *Renderer) writeRecord(rec record) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	data = append(data, '\n')
	_, err = r.w.Write(data)
	return err
}
