package config

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate *validator.Validate

func init() {
	validate = validator.New()

	if err := validate.RegisterValidation("apikey", validateAPIKey); err != nil {
		panic(fmt.Sprintf("failed to register API key validator: %v", err))
	}
}

// validateAPIKey checks that the key for the configured provider is present and
// shaped like that provider's keys.
func validateAPIKey(fl validator.FieldLevel) bool {
	apiKeys, ok := fl.Field().Interface().(map[string]string)
	if !ok {
		return false
	}

	provider := fl.Parent().FieldByName("Provider").String()
	apiKey := apiKeys[provider]
	if apiKey == "" {
		return false
	}

	switch provider {
	case "groq":
		return strings.HasPrefix(apiKey, "gsk_") && len(apiKey) > 20
	case "openai":
		return strings.HasPrefix(apiKey, "sk-") && len(apiKey) > 20
	default:
		return len(apiKey) > 20
	}
}

// Validate checks cfg against its struct tags, including the API key for the
// selected provider and the regulator bands.
func Validate(cfg *Config) error {
	if err := validate.Struct(cfg); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}
