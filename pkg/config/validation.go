package config

import (
	"fmt"
	"strings"

	"github.com/codesail/codesail/pkg/observability"
)

const (
	// MaxTemperature is the highest sampling temperature accepted
	MaxTemperature = 2.0
	// MaxMaxTokens caps the output token budget
	MaxMaxTokens = 32768
)

// ValidBackends lists the supported provider backends
var ValidBackends = []string{"groq", "openai", "deepseek"}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c == nil {
		return fmt.Errorf("config is nil")
	}

	if err := c.Provider.Validate(); err != nil {
		return fmt.Errorf("provider: %w", err)
	}

	if strings.TrimSpace(c.Analysis.Sentinel) == "" {
		return fmt.Errorf("analysis: sentinel must not be empty")
	}

	if c.Workspace.SearchLimit < 0 {
		return fmt.Errorf("workspace: search_limit must not be negative")
	}

	if !observability.ValidLevel(c.Global.LogLevel) {
		return fmt.Errorf("global: invalid log_level %q (valid: debug, info, warn, error)", c.Global.LogLevel)
	}

	return nil
}

// Validate validates the provider configuration
func (p *ProviderConfig) Validate() error {
	if !IsValidBackend(p.Backend) {
		return fmt.Errorf("invalid backend %q (valid: %s)", p.Backend, strings.Join(ValidBackends, ", "))
	}
	if strings.TrimSpace(p.Model) == "" {
		return fmt.Errorf("model is required")
	}
	// A zero temperature is omitted from the request, so the provider would
	// fall back to its own default.
	if p.Temperature <= 0 || p.Temperature > MaxTemperature {
		return fmt.Errorf("temperature must be greater than 0 and at most %.1f, got %.2f (use e.g. 0.01 for near-deterministic output)", MaxTemperature, p.Temperature)
	}
	if p.MaxTokens <= 0 || p.MaxTokens > MaxMaxTokens {
		return fmt.Errorf("max_tokens must be between 1 and %d, got %d", MaxMaxTokens, p.MaxTokens)
	}
	if p.Timeout < 0 {
		return fmt.Errorf("timeout must not be negative")
	}
	return nil
}

// IsValidBackend reports whether backend is supported
func IsValidBackend(backend string) bool {
	for _, b := range ValidBackends {
		if strings.EqualFold(backend, b) {
			return true
		}
	}
	return false
}
