package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teilomillet/groqchat/config"
	"github.com/teilomillet/groqchat/utils"
)

const testGroqKey = "gsk_0123456789abcdefghijklmnop"

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("GROQ_API_KEY", testGroqKey)

	cfg, err := config.LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "groq", cfg.Provider)
	assert.Equal(t, config.DefaultModel, cfg.Model)
	assert.Equal(t, 0.4, cfg.Temperature)
	assert.True(t, cfg.AutoTemperature)
	assert.Equal(t, 60*time.Second, cfg.Timeout)
	assert.Equal(t, utils.LogLevelWarn, cfg.LogLevel)
	assert.Equal(t, config.DefaultSystemPrompt, cfg.SystemPrompt)
	assert.Equal(t, testGroqKey, cfg.APIKeys["groq"])
	assert.Equal(t, config.DefaultRegulatorConfig(), cfg.Regulator)
	assert.NoError(t, config.Validate(cfg))
}

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("LLM_PROVIDER", "openai")
	t.Setenv("LLM_MODEL", "gpt-4o-mini")
	t.Setenv("LLM_TEMPERATURE", "0.25")
	t.Setenv("LLM_AUTO_TEMPERATURE", "false")
	t.Setenv("LLM_LOG_LEVEL", "debug")
	t.Setenv("LLM_TIMEOUT", "5s")
	t.Setenv("REGULATOR_CREATIVE_KEYWORDS", "dragon,castle")
	t.Setenv("REGULATOR_BALANCED_MAX", "0.65")
	t.Setenv("OPENAI_API_KEY", "sk-0123456789abcdefghijklmnop")

	cfg, err := config.LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "openai", cfg.Provider)
	assert.Equal(t, "gpt-4o-mini", cfg.Model)
	assert.Equal(t, 0.25, cfg.Temperature)
	assert.False(t, cfg.AutoTemperature)
	assert.Equal(t, utils.LogLevelDebug, cfg.LogLevel)
	assert.Equal(t, 5*time.Second, cfg.Timeout)
	assert.Equal(t, []string{"dragon", "castle"}, cfg.Regulator.CreativeKeywords)
	assert.Equal(t, 0.65, cfg.Regulator.BalancedMax)
	assert.NoError(t, config.Validate(cfg))
}

func TestLoadConfigInvalidLogLevel(t *testing.T) {
	t.Setenv("LLM_LOG_LEVEL", "chatty")

	_, err := config.LoadConfig()
	assert.Error(t, err)
}

func TestApplyOptions(t *testing.T) {
	cfg := config.NewConfig()
	config.ApplyOptions(cfg,
		config.SetModel("llama-3.3-70b-versatile"),
		config.SetTemperature(0.8),
		config.SetAPIKey(testGroqKey),
		config.SetMaxTokens(0),
		config.SetMemory(512),
		config.SetExtraHeaders(map[string]string{"X-Test": "1"}),
	)

	assert.Equal(t, "llama-3.3-70b-versatile", cfg.Model)
	assert.Equal(t, 0.8, cfg.Temperature)
	assert.False(t, cfg.AutoTemperature)
	assert.Equal(t, testGroqKey, cfg.APIKeys["groq"])
	assert.Equal(t, 1, cfg.MaxTokens)
	assert.Equal(t, 512, cfg.MemoryTokens)
	assert.Equal(t, "1", cfg.ExtraHeaders["X-Test"])
}

func TestValidate(t *testing.T) {
	valid := func() *config.Config {
		cfg := config.NewConfig()
		config.ApplyOptions(cfg, config.SetAPIKey(testGroqKey))
		return cfg
	}

	require.NoError(t, config.Validate(valid()))

	testCases := []struct {
		name   string
		mutate func(*config.Config)
	}{
		{name: "missing key", mutate: func(c *config.Config) { delete(c.APIKeys, "groq") }},
		{name: "malformed key", mutate: func(c *config.Config) { c.APIKeys["groq"] = "sk-not-a-groq-key-at-all" }},
		{name: "unknown provider", mutate: func(c *config.Config) { c.Provider = "carrier-pigeon" }},
		{name: "temperature above one", mutate: func(c *config.Config) { c.Temperature = 1.5 }},
		{name: "negative retries", mutate: func(c *config.Config) { c.MaxRetries = -1 }},
		{name: "bad endpoint", mutate: func(c *config.Config) { c.Endpoint = "not a url" }},
		{name: "inverted regulator band", mutate: func(c *config.Config) {
			c.Regulator.CreativeMin, c.Regulator.CreativeMax = 0.9, 0.7
		}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := valid()
			tc.mutate(cfg)
			assert.Error(t, config.Validate(cfg))
		})
	}
}
