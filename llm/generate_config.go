package llm

import "github.com/teilomillet/groqchat/providers"

// GenerateOption is a function type for configuring a single Generate call.
type GenerateOption func(*GenerateConfig)

// GenerateConfig holds per-call overrides.
type GenerateConfig struct {
	// Options are merged over the provider's defaults in the request body.
	Options map[string]any

	// RetryStrategy replaces the client's backoff for this call.
	RetryStrategy RetryStrategy
}

// WithTemperature sets the sampling temperature for this call.
func WithTemperature(temperature float64) GenerateOption {
	return WithOption(providers.KeyTemperature, temperature)
}

// WithModel selects the model for this call.
func WithModel(model string) GenerateOption {
	return WithOption(providers.KeyModel, model)
}

// WithMaxTokens caps the completion length for this call.
func WithMaxTokens(maxTokens int) GenerateOption {
	return WithOption(providers.KeyMaxTokens, maxTokens)
}

// WithOption sets an arbitrary request body field for this call.
func WithOption(key string, value any) GenerateOption {
	return func(cfg *GenerateConfig) {
		if cfg.Options == nil {
			cfg.Options = make(map[string]any)
		}
		cfg.Options[key] = value
	}
}

// WithRetryStrategy overrides how failed attempts are retried.
func WithRetryStrategy(strategy RetryStrategy) GenerateOption {
	return func(cfg *GenerateConfig) {
		cfg.RetryStrategy = strategy
	}
}
