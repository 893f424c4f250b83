package providers

// Message roles.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Option keys understood by every provider.
const (
	KeyModel       = "model"
	KeyMessages    = "messages"
	KeyTemperature = "temperature"
	KeyMaxTokens   = "max_tokens"
	KeySeed        = "seed"
)

// Request is a provider-neutral chat-completion request.
type Request struct {
	SystemPrompt string    `json:"system_prompt,omitempty"`
	Messages     []Message `json:"messages"`
}

// Message is a single chat turn.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Response is the parsed reply of a chat-completion call.
type Response struct {
	Content      string
	Model        string
	FinishReason string
	Usage        *Usage
}

// AsText returns the generated text.
func (r *Response) AsText() string {
	if r == nil {
		return ""
	}
	return r.Content
}

// Usage is the token accounting reported by the API.
type Usage struct {
	InputTokens  int64 `json:"input_tokens"`
	OutputTokens int64 `json:"output_tokens"`
	TotalTokens  int64 `json:"total_tokens"`
}

func NewUsage(inputTokens, outputTokens int64) *Usage {
	return &Usage{
		InputTokens:  inputTokens,
		OutputTokens: outputTokens,
		TotalTokens:  inputTokens + outputTokens,
	}
}
