package providers

import (
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"strings"

	"github.com/teilomillet/groqchat/config"
	"github.com/teilomillet/groqchat/utils"
)

// chatCompletions implements the OpenAI-style /chat/completions protocol shared
// by Groq and OpenAI.
type chatCompletions struct {
	logger       utils.Logger
	extraHeaders map[string]string
	options      map[string]any
	name         string
	endpoint     string
	apiKey       string
	model        string
}

func newChatCompletions(name, endpoint, apiKey, model string, extraHeaders map[string]string) *chatCompletions {
	if extraHeaders == nil {
		extraHeaders = make(map[string]string)
	}
	return &chatCompletions{
		name:         name,
		endpoint:     endpoint,
		apiKey:       apiKey,
		model:        model,
		extraHeaders: extraHeaders,
		options:      make(map[string]any),
		logger:       utils.NewNopLogger(),
	}
}

func (p *chatCompletions) SetLogger(logger utils.Logger) {
	p.logger = logger
}

func (p *chatCompletions) Name() string {
	return p.name
}

func (p *chatCompletions) Endpoint() string {
	return p.endpoint
}

// SetEndpoint points the provider at another OpenAI-compatible server.
func (p *chatCompletions) SetEndpoint(endpoint string) {
	if endpoint != "" {
		p.endpoint = endpoint
	}
}

func (p *chatCompletions) Headers() map[string]string {
	headers := map[string]string{
		"Content-Type":  "application/json",
		"Authorization": "Bearer " + p.apiKey,
	}

	for key, value := range p.extraHeaders {
		headers[key] = value
	}

	return headers
}

func (p *chatCompletions) SetExtraHeaders(extraHeaders map[string]string) {
	p.extraHeaders = extraHeaders
}

// SetDefaultOptions copies the sampling defaults from cfg.
func (p *chatCompletions) SetDefaultOptions(cfg *config.Config) {
	p.SetOption(KeyTemperature, cfg.Temperature)
	p.SetOption(KeyMaxTokens, cfg.MaxTokens)
	p.logger.Debug("Default options set", "provider", p.name, "temperature", cfg.Temperature, "max_tokens", cfg.MaxTokens)
}

func (p *chatCompletions) SetOption(key string, value any) {
	p.options[key] = value
}

// PrepareRequest builds the JSON body. Per-call options override provider options,
// and a "model" option overrides the provider's default model.
func (p *chatCompletions) PrepareRequest(req *Request, options map[string]any) ([]byte, error) {
	if req == nil {
		return nil, errors.New("nil request")
	}

	messages := make([]Message, 0, len(req.Messages)+1)
	if req.SystemPrompt != "" {
		messages = append(messages, Message{Role: RoleSystem, Content: req.SystemPrompt})
	}
	messages = append(messages, req.Messages...)
	if len(messages) == 0 {
		return nil, errors.New("request has no messages")
	}

	requestBody := map[string]any{
		KeyModel: p.model,
	}
	maps.Copy(requestBody, p.options)
	maps.Copy(requestBody, options)
	requestBody[KeyMessages] = messages

	if model, _ := requestBody[KeyModel].(string); model == "" {
		return nil, errors.New("no model selected")
	}

	data, err := json.Marshal(requestBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request body: %w", err)
	}
	return data, nil
}

// ParseResponse extracts the first choice of a chat-completion reply.
func (p *chatCompletions) ParseResponse(body []byte) (*Response, error) {
	var response struct {
		Usage *struct {
			PromptTokens     int64 `json:"prompt_tokens"`
			CompletionTokens int64 `json:"completion_tokens"`
		} `json:"usage"`
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
			FinishReason string `json:"finish_reason"`
		} `json:"choices"`
		Model string `json:"model"`
	}

	if err := json.Unmarshal(body, &response); err != nil {
		return nil, fmt.Errorf("error parsing response: %w", err)
	}

	if len(response.Choices) == 0 || response.Choices[0].Message.Content == "" {
		return nil, errors.New("empty response from API")
	}

	resp := &Response{
		Content:      response.Choices[0].Message.Content,
		Model:        response.Model,
		FinishReason: response.Choices[0].FinishReason,
	}
	if response.Usage != nil {
		resp.Usage = NewUsage(response.Usage.PromptTokens, response.Usage.CompletionTokens)
	}
	return resp, nil
}

// ErrorMessage extracts the human-readable message from an API error body,
// falling back to the trimmed body itself.
func ErrorMessage(body []byte) string {
	var apiErr struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Error.Message != "" {
		return apiErr.Error.Message
	}
	return strings.TrimSpace(string(body))
}
