package providers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProviderRegistration(t *testing.T) {
	registry := NewProviderRegistry()
	assert.Equal(t, []string{"groq", "openai"}, registry.Names())

	for _, name := range registry.Names() {
		t.Run(name, func(t *testing.T) {
			provider, err := registry.Get(name, "test-api-key", "test-model", nil)
			require.NoError(t, err)
			assert.Equal(t, name, provider.Name())
		})
	}
}

func TestRegistrySubset(t *testing.T) {
	registry := NewProviderRegistry("groq", "nonexistent")
	assert.Equal(t, []string{"groq"}, registry.Names())

	_, err := registry.Get("openai", "key", "model", nil)
	assert.EqualError(t, err, "unknown provider: openai")
}

func TestRegistryRegister(t *testing.T) {
	registry := NewProviderRegistry("groq")
	registry.Register("local", func(apiKey, model string, extraHeaders map[string]string) Provider {
		p := NewOpenAIProvider(apiKey, model, extraHeaders)
		p.SetEndpoint("http://localhost:8080/v1/chat/completions")
		return p
	})

	provider, err := registry.Get("local", "", "qwen", nil)
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8080/v1/chat/completions", provider.Endpoint())
}
