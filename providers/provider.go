// Package providers implements the chat-completion wire formats spoken by groqchat.
// Each provider turns a Request into an HTTP body for its endpoint and parses the
// reply back into a Response.
package providers

import (
	"github.com/teilomillet/groqchat/config"
	"github.com/teilomillet/groqchat/utils"
)

// Provider defines the interface every chat-completion backend implements.
type Provider interface {
	Name() string
	Endpoint() string
	SetEndpoint(endpoint string)
	Headers() map[string]string
	SetExtraHeaders(extraHeaders map[string]string)
	SetDefaultOptions(cfg *config.Config)
	SetOption(key string, value any)
	SetLogger(logger utils.Logger)

	PrepareRequest(req *Request, options map[string]any) ([]byte, error)
	ParseResponse(body []byte) (*Response, error)
}

// ProviderConstructor creates a provider for an API key and default model.
type ProviderConstructor func(apiKey, model string, extraHeaders map[string]string) Provider
