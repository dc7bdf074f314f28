// Package factory provides a centralized factory for creating Provider
// instances by name. It imports the provider sub-packages and maps string
// names to their constructors, breaking the import cycle that would occur
// if this logic lived in the llm package directly.
package factory

import (
	"strings"
	"time"

	"github.com/BaSui01/omniai/config"
	"github.com/BaSui01/omniai/llm"
	"github.com/BaSui01/omniai/llm/providers"
	"github.com/BaSui01/omniai/llm/providers/openai"
	"github.com/BaSui01/omniai/types"
	"go.uber.org/zap"
)

// ProviderConfig is the generic configuration accepted by the factory function.
// It uses a flat structure with an Extra map for provider-specific fields.
type ProviderConfig struct {
	APIKey  string         `json:"api_key" yaml:"api_key"`
	BaseURL string         `json:"base_url" yaml:"base_url"`
	Model   string         `json:"model,omitempty" yaml:"model,omitempty"`
	Timeout time.Duration  `json:"timeout,omitempty" yaml:"timeout,omitempty"`
	Extra   map[string]any `json:"extra,omitempty" yaml:"extra,omitempty"`
}

// Option customizes providers built by the factory.
type Option func(*options)

type options struct {
	recorder openai.Recorder
	client   *providers.HTTPClient
}

// WithRecorder attaches an operation recorder (e.g. a metrics collector).
func WithRecorder(r openai.Recorder) Option {
	return func(o *options) { o.recorder = r }
}

// WithHTTPClient shares one transport across every provider built.
func WithHTTPClient(c *providers.HTTPClient) Option {
	return func(o *options) { o.client = c }
}

// SupportedProviders lists the names NewProviderFromConfig accepts.
func SupportedProviders() []string {
	return []string{"openai"}
}

// NewProviderFromConfig creates a Provider instance based on the provider name
// and a generic ProviderConfig. Names are matched case-insensitively.
// Unknown names yield a PROVIDER_NOT_SUPPORTED error.
func NewProviderFromConfig(name string, cfg ProviderConfig, logger *zap.Logger, opts ...Option) (llm.Provider, error) {
	base := providers.BaseProviderConfig{
		APIKey:  cfg.APIKey,
		BaseURL: cfg.BaseURL,
		Model:   cfg.Model,
		Timeout: cfg.Timeout,
	}

	switch strings.ToLower(strings.TrimSpace(name)) {
	case "openai":
		oc := providers.OpenAIConfig{BaseProviderConfig: base}
		if cfg.Extra != nil {
			if v, ok := cfg.Extra["organization"].(string); ok {
				oc.Organization = v
			}
			if v, ok := cfg.Extra["image_model"].(string); ok {
				oc.ImageModel = v
			}
			if v, ok := cfg.Extra["version"].(string); ok {
				oc.Version = v
			}
		}
		return newOpenAI(oc, logger, opts), nil

	default:
		return nil, types.NewProviderNotSupportedError(name)
	}
}

// NewRegistry builds a registry holding every enabled provider in cfg and
// sets the configured default.
func NewRegistry(cfg *config.Config, logger *zap.Logger, opts ...Option) (*llm.ProviderRegistry, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := types.Assert(cfg != nil, "config is required"); err != nil {
		return nil, err
	}

	registry := llm.NewProviderRegistry()
	if cfg.Providers.OpenAI.Enabled {
		registry.Register(newOpenAI(cfg.Providers.OpenAI.OpenAIConfig, logger, opts))
	}

	if cfg.Registry.Default != "" {
		if err := registry.SetDefault(cfg.Registry.Default); err != nil {
			return nil, err
		}
	}

	logger.Debug("provider registry built",
		zap.Strings("providers", registry.List()),
		zap.String("default", registry.DefaultName()),
	)
	return registry, nil
}

func newOpenAI(cfg providers.OpenAIConfig, logger *zap.Logger, opts []Option) *openai.OpenAIProvider {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	var providerOpts []openai.Option
	if o.recorder != nil {
		providerOpts = append(providerOpts, openai.WithMetrics(o.recorder))
	}
	if o.client != nil {
		providerOpts = append(providerOpts, openai.WithHTTPClient(o.client))
	}
	return openai.NewOpenAIProvider(cfg, logger, providerOpts...)
}
