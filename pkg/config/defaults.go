// Copyright 2026 CodeSail Authors. All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");

package config

import (
	"os"
	"path/filepath"
	"time"
)

// DefaultConfig returns the default configuration.
// These values are used when no config file is present.
func DefaultConfig() *Config {
	return &Config{
		Provider:  DefaultProviderConfig(),
		Analysis:  DefaultAnalysisConfig(),
		Workspace: DefaultWorkspaceConfig(),
		Global:    DefaultGlobalConfig(),
	}
}

// DefaultProviderConfig returns default provider configuration.
func DefaultProviderConfig() ProviderConfig {
	return ProviderConfig{
		Backend:     "groq",
		Model:       "llama-3.1-8b-instant",
		APIKeyEnv:   "GROQ_API_KEY",
		Temperature: 0.1,
		MaxTokens:   4096,
		Timeout:     120 * time.Second,
	}
}

// DefaultAnalysisConfig returns default analysis configuration.
func DefaultAnalysisConfig() AnalysisConfig {
	return AnalysisConfig{
		Sentinel: "[FINAL]",
	}
}

// DefaultWorkspaceConfig returns default workspace configuration.
func DefaultWorkspaceConfig() WorkspaceConfig {
	return WorkspaceConfig{
		Exclude:     []string{"node_modules", "dist", "build", ".git"},
		SearchLimit: 15,
	}
}

// DefaultGlobalConfig returns default global configuration.
func DefaultGlobalConfig() GlobalConfig {
	return GlobalConfig{
		LogLevel: "info",
	}
}

// GetDefaultConfigPath returns the default global config file path.
func GetDefaultConfigPath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil || homeDir == "" {
		return ""
	}
	return filepath.Join(homeDir, GlobalConfigDir, GlobalConfigFile)
}

// GetProjectConfigPath returns the project config file path.
func GetProjectConfigPath(projectRoot string) string {
	if projectRoot == "" {
		projectRoot = "."
	}
	return filepath.Join(projectRoot, ProjectConfigFile)
}
