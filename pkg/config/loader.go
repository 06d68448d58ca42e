// Copyright 2026 CodeSail Authors. All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");

package config

import (
	stderrors "errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/codesail/codesail/pkg/errors"
	"gopkg.in/yaml.v3"
)

const (
	// EnvPrefix is the prefix for all environment variables.
	EnvPrefix = "CODESAIL"
	// EnvConfigPath points at an explicit config file.
	EnvConfigPath = "CODESAIL_CONFIG"
	// ProjectConfigFile is the project-level config file name.
	ProjectConfigFile = ".codesail.yaml"
	// GlobalConfigDir is the global config directory name.
	GlobalConfigDir = ".codesail"
	// GlobalConfigFile is the global config file name.
	GlobalConfigFile = "config.yaml"
)

// Loader loads configuration from files and environment.
type Loader struct {
	projectRoot string
	configFile  string
	skipGlobal  bool
}

// NewLoader creates a new config loader.
func NewLoader() *Loader {
	return &Loader{}
}

// WithProjectRoot sets the project root directory.
func (l *Loader) WithProjectRoot(root string) *Loader {
	l.projectRoot = root
	return l
}

// WithConfigFile loads path instead of the project config file.
// Unlike the project file, an explicit file must exist.
func (l *Loader) WithConfigFile(path string) *Loader {
	l.configFile = path
	return l
}

// SkipGlobal skips loading global config.
func (l *Loader) SkipGlobal() *Loader {
	l.skipGlobal = true
	return l
}

// Load loads configuration with full precedence order:
// 1. Defaults
// 2. Global Config ($HOME/.codesail/config.yaml)
// 3. Project Config (./.codesail.yaml) or the explicit config file
// 4. Environment Variables (CODESAIL_*)
func (l *Loader) Load() (*Config, error) {
	cfg := DefaultConfig()

	if !l.skipGlobal {
		globalCfg, err := l.loadGlobalConfig()
		if err != nil {
			return nil, err
		}
		if globalCfg != nil {
			mergeConfig(cfg, globalCfg)
		}
	}

	configFile := l.configFile
	if configFile == "" {
		configFile = os.Getenv(EnvConfigPath)
	}
	if configFile != "" {
		fileCfg, err := readPartial(configFile)
		if err != nil {
			return nil, err
		}
		mergeConfig(cfg, fileCfg)
	} else {
		projectCfg, err := l.loadProjectConfig()
		if err != nil {
			return nil, err
		}
		if projectCfg != nil {
			mergeConfig(cfg, projectCfg)
		}
	}

	if err := l.applyEnvOverrides(cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, errors.ConfigError("config validation failed", err)
	}

	return cfg, nil
}

// readPartial decodes a single file without defaults so that unset keys do
// not clobber values from an earlier layer.
func readPartial(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.ConfigError(fmt.Sprintf("failed to read config file: %s", path), err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, errors.ConfigError(fmt.Sprintf("failed to parse config file: %s", path), err)
	}

	// Zero values mean "unset" when layers are merged, so an explicit zero
	// temperature would be dropped silently.
	var explicit struct {
		Provider struct {
			Temperature *float32 `yaml:"temperature"`
		} `yaml:"provider"`
	}
	if err := yaml.Unmarshal(data, &explicit); err == nil {
		if t := explicit.Provider.Temperature; t != nil && *t <= 0 {
			return nil, errors.ConfigError(fmt.Sprintf("invalid config file: %s", path),
				fmt.Errorf("provider.temperature must be greater than 0, got %.2f", *t)).
				WithContext("field", "provider.temperature")
		}
	}

	return &cfg, nil
}

// loadGlobalConfig loads global config from $HOME/.codesail/config.yaml.
// It returns nil when there is no home directory or no file.
func (l *Loader) loadGlobalConfig() (*Config, error) {
	path := GetDefaultConfigPath()
	if path == "" {
		return nil, nil
	}
	return readOptional(path)
}

// loadProjectConfig loads project config from ./.codesail.yaml.
// It returns nil when the file does not exist.
func (l *Loader) loadProjectConfig() (*Config, error) {
	return readOptional(GetProjectConfigPath(l.projectRoot))
}

// readOptional is readPartial for layers that may be absent. Any other read
// or parse failure is returned.
func readOptional(path string) (*Config, error) {
	cfg, err := readPartial(path)
	if stderrors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	return cfg, err
}

// applyEnvOverrides applies environment variable overrides.
// Format: CODESAIL_SECTION__KEY=value
func (l *Loader) applyEnvOverrides(cfg *Config) error {
	// Provider settings
	if v := os.Getenv("CODESAIL_PROVIDER__BACKEND"); v != "" {
		cfg.Provider.Backend = v
	}
	if v := os.Getenv("CODESAIL_PROVIDER__MODEL"); v != "" {
		cfg.Provider.Model = v
	}
	if v := os.Getenv("CODESAIL_PROVIDER__BASE_URL"); v != "" {
		cfg.Provider.BaseURL = v
	}
	if v := os.Getenv("CODESAIL_PROVIDER__API_KEY_ENV"); v != "" {
		cfg.Provider.APIKeyEnv = v
	}
	if v := os.Getenv("CODESAIL_PROVIDER__API_KEY"); v != "" {
		cfg.Provider.APIKey = v
	}
	if v := os.Getenv("CODESAIL_PROVIDER__TEMPERATURE"); v != "" {
		f, err := strconv.ParseFloat(v, 32)
		if err != nil {
			return errors.ConfigError("invalid CODESAIL_PROVIDER__TEMPERATURE", err).
				WithContext("field", "provider.temperature")
		}
		cfg.Provider.Temperature = float32(f)
	}
	if v := os.Getenv("CODESAIL_PROVIDER__MAX_TOKENS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return errors.ConfigError("invalid CODESAIL_PROVIDER__MAX_TOKENS", err).
				WithContext("field", "provider.max_tokens")
		}
		cfg.Provider.MaxTokens = n
	}
	if v := os.Getenv("CODESAIL_PROVIDER__TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return errors.ConfigError("invalid CODESAIL_PROVIDER__TIMEOUT", err).
				WithContext("field", "provider.timeout")
		}
		cfg.Provider.Timeout = d
	}

	// Analysis settings
	if v := os.Getenv("CODESAIL_ANALYSIS__SENTINEL"); v != "" {
		cfg.Analysis.Sentinel = v
	}
	if v := os.Getenv("CODESAIL_ANALYSIS__STRICT"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return errors.ConfigError("invalid CODESAIL_ANALYSIS__STRICT", err).
				WithContext("field", "analysis.strict")
		}
		cfg.Analysis.Strict = b
	}

	// Global settings
	if v := os.Getenv("CODESAIL_GLOBAL__LOG_LEVEL"); v != "" {
		cfg.Global.LogLevel = v
	}

	return nil
}

// mergeConfig merges src into dst (src overrides dst).
func mergeConfig(dst, src *Config) {
	if src.Provider.Backend != "" {
		dst.Provider.Backend = src.Provider.Backend
	}
	if src.Provider.Model != "" {
		dst.Provider.Model = src.Provider.Model
	}
	if src.Provider.BaseURL != "" {
		dst.Provider.BaseURL = src.Provider.BaseURL
	}
	if src.Provider.APIKeyEnv != "" {
		dst.Provider.APIKeyEnv = src.Provider.APIKeyEnv
	}
	if src.Provider.Temperature > 0 {
		dst.Provider.Temperature = src.Provider.Temperature
	}
	if src.Provider.MaxTokens > 0 {
		dst.Provider.MaxTokens = src.Provider.MaxTokens
	}
	if src.Provider.Timeout > 0 {
		dst.Provider.Timeout = src.Provider.Timeout
	}

	if src.Analysis.Sentinel != "" {
		dst.Analysis.Sentinel = src.Analysis.Sentinel
	}
	if src.Analysis.Strict {
		dst.Analysis.Strict = true
	}

	if len(src.Workspace.Exclude) > 0 {
		dst.Workspace.Exclude = src.Workspace.Exclude
	}
	if src.Workspace.SearchLimit > 0 {
		dst.Workspace.SearchLimit = src.Workspace.SearchLimit
	}

	if src.Global.LogLevel != "" {
		dst.Global.LogLevel = src.Global.LogLevel
	}
}

// Sources returns the config files Load would apply, in precedence order.
// Only files that exist are listed.
func (l *Loader) Sources() []string {
	paths := []string{}

	if !l.skipGlobal {
		if globalPath := GetDefaultConfigPath(); globalPath != "" {
			if _, err := os.Stat(globalPath); err == nil {
				paths = append(paths, globalPath)
			}
		}
	}

	layer := l.configFile
	if layer == "" {
		layer = os.Getenv(EnvConfigPath)
	}
	if layer == "" {
		layer = GetProjectConfigPath(l.projectRoot)
	}
	if _, err := os.Stat(layer); err == nil {
		paths = append(paths, layer)
	}

	return paths
}

// GetEnvConfig returns all environment variables that start with CODESAIL_.
// The API key is masked.
func GetEnvConfig() map[string]string {
	result := make(map[string]string)

	for _, env := range os.Environ() {
		if !strings.HasPrefix(env, EnvPrefix+"_") {
			continue
		}
		kv := strings.SplitN(env, "=", 2)
		if len(kv) != 2 {
			continue
		}
		if kv[0] == "CODESAIL_PROVIDER__API_KEY" {
			kv[1] = "****"
		}
		result[kv[0]] = kv[1]
	}

	return result
}
