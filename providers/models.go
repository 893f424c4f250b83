package providers

import "slices"

// Models offered in the model picker.
const (
	ModelDeepSeekR1DistillLlama70B = "deepseek-r1-distill-llama-70b"
	ModelLlama33Versatile          = "llama-3.3-70b-versatile"
	ModelGPT4oMini                 = "gpt-4o-mini"
	ModelGPT4o                     = "gpt-4o"
)

var supportedModels = map[string][]string{
	"groq":   {ModelDeepSeekR1DistillLlama70B, ModelLlama33Versatile},
	"openai": {ModelGPT4oMini, ModelGPT4o},
}

// SupportedModels returns the model identifiers offered for provider, default first.
func SupportedModels(provider string) []string {
	return slices.Clone(supportedModels[provider])
}

// IsSupportedModel reports whether model is offered for provider.
func IsSupportedModel(provider, model string) bool {
	return slices.Contains(supportedModels[provider], model)
}
