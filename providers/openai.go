package providers

const openAIEndpoint = "https://api.openai.com/v1/chat/completions"

// OpenAIProvider talks to OpenAI's chat-completion API.
type OpenAIProvider struct {
	*chatCompletions
}

// NewOpenAIProvider creates an OpenAI provider for the given API key and default model.
func NewOpenAIProvider(apiKey, model string, extraHeaders map[string]string) *OpenAIProvider {
	if model == "" {
		model = ModelGPT4oMini
	}
	return &OpenAIProvider{chatCompletions: newChatCompletions("openai", openAIEndpoint, apiKey, model, extraHeaders)}
}
