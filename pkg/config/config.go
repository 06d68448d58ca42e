// Copyright 2026 CodeSail Authors. All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");

// Package config provides configuration management for CodeSail.
//
// Configuration Loading Order (later overrides earlier):
// 1. Defaults (hardcoded)
// 2. Global Config: $HOME/.codesail/config.yaml
// 3. Project Config: ./.codesail.yaml
// 4. Environment Variables: CODESAIL_*
package config

import (
	"os"
	"time"
)

// Config represents the complete application configuration.
type Config struct {
	Provider  ProviderConfig  `yaml:"provider"`
	Analysis  AnalysisConfig  `yaml:"analysis"`
	Workspace WorkspaceConfig `yaml:"workspace"`
	Global    GlobalConfig    `yaml:"global"`
}

// ProviderConfig contains the completion API settings.
type ProviderConfig struct {
	Backend     string        `yaml:"backend"`  // groq, openai, deepseek
	Model       string        `yaml:"model"`    // e.g. llama-3.1-8b-instant
	BaseURL     string        `yaml:"base_url"` // overrides the backend default
	APIKeyEnv   string        `yaml:"api_key_env"`
	Temperature float32       `yaml:"temperature"` // (0, 2]; zero is rejected
	MaxTokens   int           `yaml:"max_tokens"`
	Timeout     time.Duration `yaml:"timeout"`

	// APIKey is never read from files; it is resolved from APIKeyEnv or
	// CODESAIL_PROVIDER__API_KEY by the loader.
	APIKey string `yaml:"-"`
}

// AnalysisConfig contains stream classification settings.
type AnalysisConfig struct {
	Sentinel string `yaml:"sentinel"`
	Strict   bool   `yaml:"strict"`
}

// WorkspaceConfig controls file enumeration.
type WorkspaceConfig struct {
	Exclude     []string `yaml:"exclude"`
	SearchLimit int      `yaml:"search_limit"`
}

// GlobalConfig contains global application settings.
type GlobalConfig struct {
	LogLevel string `yaml:"log_level"` // debug, info, warn, error
}

// ResolveAPIKey returns the explicit key if set, otherwise the value of the
// configured environment variable.
func (p ProviderConfig) ResolveAPIKey() string {
	if p.APIKey != "" {
		return p.APIKey
	}
	if p.APIKeyEnv == "" {
		return ""
	}
	return os.Getenv(p.APIKeyEnv)
}
