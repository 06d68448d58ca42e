// Copyright 2026 CodeSail Authors. All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");

package observability

import (
	"sync"
	"time"
)

// Metrics accumulates in-process analysis counters. A nil *Metrics is a
// valid no-op recorder.
type Metrics struct {
	mu       sync.Mutex
	runs     int
	failures map[string]int
	chunks   map[string]int
	elapsed  time.Duration
}

// MetricsSnapshot is a point-in-time copy of the counters
type MetricsSnapshot struct {
	Runs     int            `json:"runs"`
	Failures map[string]int `json:"failures"`
	Chunks   map[string]int `json:"chunks"`
	Elapsed  time.Duration  `json:"elapsed"`
}

// NewMetrics creates an empty collector.
func NewMetrics() *Metrics {
	return &Metrics{
		failures: make(map[string]int),
		chunks:   make(map[string]int),
	}
}

// RecordRun records one finished analysis. An empty category means success.
func (m *Metrics) RecordRun(elapsed time.Duration, category string) {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	m.runs++
	m.elapsed += elapsed
	if category != "" {
		m.failures[category]++
	}
}

// RecordChunks adds n emitted chunks of the given phase.
func (m *Metrics) RecordChunks(phase string, n int) {
	if m == nil || n == 0 {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	m.chunks[phase] += n
}

// Snapshot returns a copy of the current counters.
func (m *Metrics) Snapshot() MetricsSnapshot {
	snap := MetricsSnapshot{
		Failures: make(map[string]int),
		Chunks:   make(map[string]int),
	}
	if m == nil {
		return snap
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	snap.Runs = m.runs
	snap.Elapsed = m.elapsed
	for k, v := range m.failures {
		snap.Failures[k] = v
	}
	for k, v := range m.chunks {
		snap.Chunks[k] = v
	}
	return snap
}

// AverageDuration returns the mean run time, or zero before the first run.
func (s MetricsSnapshot) AverageDuration() time.Duration {
	if s.Runs == 0 {
		return 0
	}
	return s.Elapsed / time.Duration(s.Runs)
}
