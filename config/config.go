// File: config/config.go

package config

import (
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/teilomillet/groqchat/utils"
)

const (
	DefaultProvider    = "groq"
	DefaultModel       = "deepseek-r1-distill-llama-70b"
	DefaultTemperature = 0.4
)

// RegulatorConfig overrides the temperature regulator's keywords and bands.
// Empty keyword lists keep the built-in sets.
type RegulatorConfig struct {
	CreativeKeywords   []string `env:"CREATIVE_KEYWORDS" envSeparator:","`
	AnalyticalKeywords []string `env:"ANALYTICAL_KEYWORDS" envSeparator:","`
	CreativeMin        float64  `env:"CREATIVE_MIN" envDefault:"0.7" validate:"gte=0,lte=1"`
	CreativeMax        float64  `env:"CREATIVE_MAX" envDefault:"0.9" validate:"gte=0,lte=1,gtefield=CreativeMin"`
	AnalyticalMin      float64  `env:"ANALYTICAL_MIN" envDefault:"0.1" validate:"gte=0,lte=1"`
	AnalyticalMax      float64  `env:"ANALYTICAL_MAX" envDefault:"0.3" validate:"gte=0,lte=1,gtefield=AnalyticalMin"`
	BalancedMin        float64  `env:"BALANCED_MIN" envDefault:"0.4" validate:"gte=0,lte=1"`
	BalancedMax        float64  `env:"BALANCED_MAX" envDefault:"0.6" validate:"gte=0,lte=1,gtefield=BalancedMin"`
	Floor              float64  `env:"FLOOR" envDefault:"0.1" validate:"gte=0,lte=1"`
	Ceiling            float64  `env:"CEILING" envDefault:"0.9" validate:"gte=0,lte=1,gtefield=Floor"`
}

type Config struct {
	Provider          string            `env:"LLM_PROVIDER" envDefault:"groq" validate:"required,oneof=groq openai"`
	Model             string            `env:"LLM_MODEL" envDefault:"deepseek-r1-distill-llama-70b" validate:"required"`
	Endpoint          string            `env:"LLM_ENDPOINT" validate:"omitempty,url"`
	Temperature       float64           `env:"LLM_TEMPERATURE" envDefault:"0.4" validate:"gte=0,lte=1"`
	AutoTemperature   bool              `env:"LLM_AUTO_TEMPERATURE" envDefault:"true"`
	AllowCustomModels bool              `env:"LLM_ALLOW_CUSTOM_MODELS" envDefault:"false"`
	MaxTokens         int               `env:"LLM_MAX_TOKENS" envDefault:"2048" validate:"gte=1"`
	Timeout           time.Duration     `env:"LLM_TIMEOUT" envDefault:"60s" validate:"gt=0"`
	MaxRetries        int               `env:"LLM_MAX_RETRIES" envDefault:"3" validate:"gte=0"`
	RetryDelay        time.Duration     `env:"LLM_RETRY_DELAY" envDefault:"2s" validate:"gte=0"`
	RequestsPerMinute float64           `env:"LLM_REQUESTS_PER_MINUTE" envDefault:"30" validate:"gte=0"`
	APIKeys           map[string]string `validate:"apikey"`
	LogLevel          utils.LogLevel    `env:"LLM_LOG_LEVEL" envDefault:"WARN"`
	LogFile           string            `env:"LLM_LOG_FILE"`
	Logger            utils.Logger      `env:"-" validate:"-"`
	SystemPrompt      string            `env:"LLM_SYSTEM_PROMPT"`
	MemoryTokens      int               `env:"LLM_MEMORY_TOKENS" envDefault:"0" validate:"gte=0"`
	OutputDir         string            `env:"CODE_OUTPUT_DIR" envDefault:"."`
	ExtraHeaders      map[string]string
	Regulator         RegulatorConfig   `envPrefix:"REGULATOR_"`
}

// LoadConfig reads the configuration from the environment.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		APIKeys:      make(map[string]string),
		ExtraHeaders: make(map[string]string),
	}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}

	loadAPIKeys(cfg)
	if cfg.SystemPrompt == "" {
		cfg.SystemPrompt = DefaultSystemPrompt
	}
	return cfg, nil
}

func loadAPIKeys(cfg *Config) {
	for _, envVar := range os.Environ() {
		key, value, found := strings.Cut(envVar, "=")
		if found && strings.HasSuffix(strings.ToUpper(key), "_API_KEY") && value != "" {
			provider := strings.TrimSuffix(strings.ToUpper(key), "_API_KEY")
			cfg.APIKeys[strings.ToLower(provider)] = value
		}
	}
}

type ConfigOption func(*Config)

// NewConfig returns the built-in defaults without reading the environment.
func NewConfig() *Config {
	return &Config{
		Provider:          DefaultProvider,
		Model:             DefaultModel,
		Temperature:       DefaultTemperature,
		AutoTemperature:   true,
		MaxTokens:         2048,
		Timeout:           60 * time.Second,
		MaxRetries:        3,
		RetryDelay:        2 * time.Second,
		RequestsPerMinute: 30,
		APIKeys:           make(map[string]string),
		LogLevel:          utils.LogLevelWarn,
		SystemPrompt:      DefaultSystemPrompt,
		OutputDir:         ".",
		ExtraHeaders:      make(map[string]string),
		Regulator:         DefaultRegulatorConfig(),
	}
}

// DefaultRegulatorConfig mirrors the regulator's built-in bands.
func DefaultRegulatorConfig() RegulatorConfig {
	return RegulatorConfig{
		CreativeMin:   0.7,
		CreativeMax:   0.9,
		AnalyticalMin: 0.1,
		AnalyticalMax: 0.3,
		BalancedMin:   0.4,
		BalancedMax:   0.6,
		Floor:         0.1,
		Ceiling:       0.9,
	}
}

func SetProvider(provider string) ConfigOption {
	return func(c *Config) {
		c.Provider = provider
	}
}

func SetModel(model string) ConfigOption {
	return func(c *Config) {
		c.Model = model
	}
}

func SetEndpoint(endpoint string) ConfigOption {
	return func(c *Config) {
		c.Endpoint = endpoint
	}
}

// SetTemperature fixes the temperature and turns automatic regulation off.
func SetTemperature(temperature float64) ConfigOption {
	return func(c *Config) {
		c.Temperature = temperature
		c.AutoTemperature = false
	}
}

func SetAutoTemperature(enabled bool) ConfigOption {
	return func(c *Config) {
		c.AutoTemperature = enabled
	}
}

func SetAllowCustomModels(allow bool) ConfigOption {
	return func(c *Config) {
		c.AllowCustomModels = allow
	}
}

func SetMaxTokens(maxTokens int) ConfigOption {
	return func(c *Config) {
		if maxTokens < 1 {
			maxTokens = 1
		}
		c.MaxTokens = maxTokens
	}
}

func SetTimeout(timeout time.Duration) ConfigOption {
	return func(c *Config) {
		c.Timeout = timeout
	}
}

func SetAPIKey(apiKey string) ConfigOption {
	return func(c *Config) {
		if c.APIKeys == nil {
			c.APIKeys = make(map[string]string)
		}
		c.APIKeys[c.Provider] = apiKey
	}
}

func SetMaxRetries(maxRetries int) ConfigOption {
	return func(c *Config) {
		c.MaxRetries = maxRetries
	}
}

func SetRetryDelay(retryDelay time.Duration) ConfigOption {
	return func(c *Config) {
		c.RetryDelay = retryDelay
	}
}

func SetRequestsPerMinute(rpm float64) ConfigOption {
	return func(c *Config) {
		c.RequestsPerMinute = rpm
	}
}

func SetLogLevel(level utils.LogLevel) ConfigOption {
	return func(c *Config) {
		c.LogLevel = level
	}
}

func SetLogFile(path string) ConfigOption {
	return func(c *Config) {
		c.LogFile = path
	}
}

// SetLogger overrides the logger built from LogLevel and LogFile.
func SetLogger(logger utils.Logger) ConfigOption {
	return func(c *Config) {
		c.Logger = logger
	}
}

func SetSystemPrompt(prompt string) ConfigOption {
	return func(c *Config) {
		c.SystemPrompt = prompt
	}
}

func SetMemory(maxTokens int) ConfigOption {
	return func(c *Config) {
		c.MemoryTokens = maxTokens
	}
}

func SetOutputDir(dir string) ConfigOption {
	return func(c *Config) {
		c.OutputDir = dir
	}
}

func SetExtraHeaders(headers map[string]string) ConfigOption {
	return func(c *Config) {
		if c.ExtraHeaders == nil {
			c.ExtraHeaders = make(map[string]string)
		}
		for k, v := range headers {
			c.ExtraHeaders[k] = v
		}
	}
}

func SetRegulator(rc RegulatorConfig) ConfigOption {
	return func(c *Config) {
		c.Regulator = rc
	}
}

func ApplyOptions(cfg *Config, options ...ConfigOption) {
	for _, option := range options {
		option(cfg)
	}
}
