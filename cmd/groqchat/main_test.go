package main

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teilomillet/groqchat/chat"
	"github.com/teilomillet/groqchat/config"
	"github.com/teilomillet/groqchat/llm"
	"github.com/teilomillet/groqchat/providers"
	"github.com/teilomillet/groqchat/utils"
)

type echoLLM struct{}

func (echoLLM) Generate(_ context.Context, req *providers.Request, _ ...llm.GenerateOption) (*providers.Response, error) {
	return &providers.Response{Content: "echo: " + req.Messages[len(req.Messages)-1].Content}, nil
}

func (echoLLM) ProviderName() string { return "echo" }

func (echoLLM) SetLogLevel(utils.LogLevel) {}

func TestPrepareConfigOptions(t *testing.T) {
	flags := &cmdFlags{
		model:       providers.ModelLlama33Versatile,
		temperature: 0.3,
		maxRetries:  -1,
		memory:      -1,
		timeout:     10 * time.Second,
		debugLevel:  "debug",
	}
	opts, err := prepareConfigOptions(flags)
	require.NoError(t, err)

	cfg := config.NewConfig()
	config.ApplyOptions(cfg, opts...)
	assert.Equal(t, providers.ModelLlama33Versatile, cfg.Model)
	assert.Equal(t, 0.3, cfg.Temperature)
	assert.False(t, cfg.AutoTemperature)
	assert.Equal(t, 3, cfg.MaxRetries)
	assert.Equal(t, 10*time.Second, cfg.Timeout)
	assert.Equal(t, utils.LogLevelDebug, cfg.LogLevel)

	flags.debugLevel = "verbose"
	_, err = prepareConfigOptions(flags)
	assert.Error(t, err)
}

func TestDefaultModelFor(t *testing.T) {
	cfg := config.NewConfig()
	model, changed := defaultModelFor(cfg)
	assert.False(t, changed)
	assert.Equal(t, config.DefaultModel, model)

	cfg.Provider = "openai"
	model, changed = defaultModelFor(cfg)
	assert.True(t, changed)
	assert.Equal(t, providers.ModelGPT4oMini, model)

	cfg.AllowCustomModels = true
	_, changed = defaultModelFor(cfg)
	assert.False(t, changed)
}

func TestInteractiveSession(t *testing.T) {
	cfg := config.NewConfig()
	cfg.OutputDir = t.TempDir()
	session, err := chat.NewSession(cfg, echoLLM{})
	require.NoError(t, err)

	input := strings.Join([]string{
		"/temp 0.25",
		"hello there",
		"/temp 2",
		"/auto",
		"/model " + providers.ModelLlama33Versatile,
		"/model gpt-4o",
		"/bogus",
		"/quit",
		"never sent",
	}, "\n")

	var out bytes.Buffer
	runInteractive(context.Background(), session, strings.NewReader(input), &out)

	text := out.String()
	assert.Contains(t, text, "Temperature fixed at 0.25")
	assert.Contains(t, text, "[temperature 0.25]\necho: hello there")
	assert.Contains(t, text, "temperature must be within [0, 1]")
	assert.Contains(t, text, "Model set to "+providers.ModelLlama33Versatile)
	assert.Contains(t, text, "unsupported model")
	assert.Contains(t, text, "Unknown command /bogus")
	assert.NotContains(t, text, "never sent")
	assert.True(t, session.AutoTemperature())
	assert.Equal(t, providers.ModelLlama33Versatile, session.Model())
}
