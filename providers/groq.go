package providers

const groqEndpoint = "https://api.groq.com/openai/v1/chat/completions"

// GroqProvider talks to Groq's OpenAI-compatible chat-completion API.
type GroqProvider struct {
	*chatCompletions
}

// NewGroqProvider creates a Groq provider for the given API key and default model.
func NewGroqProvider(apiKey, model string, extraHeaders map[string]string) *GroqProvider {
	if model == "" {
		model = ModelDeepSeekR1DistillLlama70B
	}
	return &GroqProvider{chatCompletions: newChatCompletions("groq", groqEndpoint, apiKey, model, extraHeaders)}
}
