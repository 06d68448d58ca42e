package ai

import (
	"fmt"
	"strings"

	"github.com/codesail/codesail/pkg/config"
	"github.com/codesail/codesail/pkg/errors"
)

// Factory creates Provider instances based on configuration
type Factory struct {
	// lookupKey resolves the credential; swapped in tests
	lookupKey func(config.ProviderConfig) string
}

// NewFactory creates a new provider factory
func NewFactory() *Factory {
	return &Factory{lookupKey: config.ProviderConfig.ResolveAPIKey}
}

// Create creates a Provider for the given backend type.
// If backendType is empty, it defaults to BackendGroq.
func (f *Factory) Create(backendType BackendType, cfg config.ProviderConfig) (Provider, error) {
	if backendType == "" {
		backendType = BackendGroq
	}
	backendType = BackendType(strings.ToLower(string(backendType)))

	if !backendType.IsValid() {
		return nil, errors.ConfigError(fmt.Sprintf("invalid backend type: %s", backendType), nil)
	}

	key := f.lookupKey(cfg)
	if key == "" {
		hint := "set provider.api_key_env or CODESAIL_PROVIDER__API_KEY"
		if cfg.APIKeyEnv != "" {
			hint = fmt.Sprintf("set %s or CODESAIL_PROVIDER__API_KEY", cfg.APIKeyEnv)
		}
		return nil, errors.ConfigError(fmt.Sprintf("missing API key for %s (%s)", backendType.DisplayName(), hint), nil)
	}

	backend, err := NewOpenAIBackend(backendType, Options{
		APIKey:  key,
		BaseURL: cfg.BaseURL,
		Timeout: cfg.Timeout,
	})
	if err != nil {
		return nil, err
	}
	return backend, nil
}

// CreateFromConfig creates a Provider from the configuration.
// It reads the provider.backend field.
func (f *Factory) CreateFromConfig(cfg *config.Config) (Provider, error) {
	if cfg == nil {
		return nil, errors.ConfigError("config cannot be nil", nil)
	}

	return f.Create(BackendType(cfg.Provider.Backend), cfg.Provider)
}

// ListBackends returns the supported backend types
func ListBackends() []BackendType {
	return []BackendType{BackendGroq, BackendOpenAI, BackendDeepSeek}
}
