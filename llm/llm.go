// Package llm sends chat-completion requests to a provider with rate limiting,
// retries and typed errors, and keeps optional token-bounded conversation memory.
package llm

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/teilomillet/groqchat/config"
	"github.com/teilomillet/groqchat/providers"
	"github.com/teilomillet/groqchat/utils"
)

// maxResponseBytes bounds how much of a reply body is read.
const maxResponseBytes = 8 << 20

// errRateLimitDeadline is returned when the next request slot lies beyond the context deadline.
var errRateLimitDeadline = fmt.Errorf("rate limiter: wait would exceed deadline: %w", context.DeadlineExceeded)

// LLM is the chat-completion capability consumed by a chat session.
type LLM interface {
	Generate(ctx context.Context, req *providers.Request, opts ...GenerateOption) (*providers.Response, error)
	ProviderName() string
	SetLogLevel(level utils.LogLevel)
}

// Client is the HTTP implementation of LLM.
type Client struct {
	provider   providers.Provider
	httpClient *http.Client
	logger     utils.Logger
	limiter    *rate.Limiter
	maxRetries int
	retryDelay time.Duration
}

// ClientOption customizes a Client.
type ClientOption func(*Client)

// WithHTTPClient replaces the HTTP client. The configured timeout is not applied to it.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithRateLimiter replaces the limiter built from RequestsPerMinute.
func WithRateLimiter(limiter *rate.Limiter) ClientOption {
	return func(c *Client) {
		c.limiter = limiter
	}
}

// NewClient builds a client for cfg.Provider from registry.
func NewClient(cfg *config.Config, logger utils.Logger, registry *providers.ProviderRegistry, opts ...ClientOption) (*Client, error) {
	if registry == nil {
		registry = providers.NewProviderRegistry()
	}
	if logger == nil {
		logger = utils.NewNopLogger()
	}

	provider, err := registry.Get(cfg.Provider, cfg.APIKeys[cfg.Provider], cfg.Model, cfg.ExtraHeaders)
	if err != nil {
		return nil, NewLLMError(ErrorTypeProvider, "failed to create provider", err)
	}
	provider.SetLogger(logger)
	provider.SetEndpoint(cfg.Endpoint)
	provider.SetDefaultOptions(cfg)

	c := &Client{
		provider:   provider,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		logger:     logger,
		limiter:    newLimiter(cfg.RequestsPerMinute),
		maxRetries: cfg.MaxRetries,
		retryDelay: cfg.RetryDelay,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// newLimiter allows rpm requests per minute with a burst of one; rpm <= 0 disables limiting.
func newLimiter(rpm float64) *rate.Limiter {
	if rpm <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	return rate.NewLimiter(rate.Limit(rpm/60), 1)
}

func (c *Client) ProviderName() string {
	return c.provider.Name()
}

// Provider exposes the underlying provider.
func (c *Client) Provider() providers.Provider {
	return c.provider
}

func (c *Client) SetLogLevel(level utils.LogLevel) {
	c.logger.SetLevel(level)
}

// Generate sends req and returns the first completion. Failed attempts are retried
// with exponential backoff unless the error is not retryable.
func (c *Client) Generate(ctx context.Context, req *providers.Request, opts ...GenerateOption) (*providers.Response, error) {
	gc := &GenerateConfig{}
	for _, opt := range opts {
		opt(gc)
	}
	strategy := gc.RetryStrategy
	if strategy == nil {
		strategy = NewDefaultRetryStrategy(c.maxRetries, c.retryDelay)
	}
	strategy.Reset()

	body, err := c.provider.PrepareRequest(req, gc.Options)
	if err != nil {
		return nil, NewLLMError(ErrorTypeInvalidInput, "failed to prepare request", err)
	}

	for attempt := 1; ; attempt++ {
		c.logger.Debug("Generating text", "provider", c.provider.Name(), "attempt", attempt)

		resp, err := c.attemptGenerate(ctx, body)
		if err == nil {
			return resp, nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		if errors.Is(err, errRateLimitDeadline) {
			return nil, err
		}

		var llmErr *LLMError
		if errors.As(err, &llmErr) {
			c.logger.Warn("Generation attempt failed", append(llmErr.LoggableFields(), "attempt", attempt)...)
		} else {
			c.logger.Warn("Generation attempt failed", "error", err, "attempt", attempt)
		}

		if !strategy.ShouldRetry(err) {
			if attempt > 1 {
				return nil, fmt.Errorf("failed to generate after %d attempts: %w", attempt, err)
			}
			return nil, err
		}

		delay := strategy.NextDelay()
		c.logger.Debug("Retrying", "delay", delay)
		if err := wait(ctx, delay); err != nil {
			return nil, err
		}
	}
}

func wait(ctx context.Context, delay time.Duration) error {
	if delay <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func (c *Client) attemptGenerate(ctx context.Context, body []byte) (*providers.Response, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, NewLLMError(ErrorTypeRateLimit, "no request slot before deadline", errRateLimitDeadline)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.provider.Endpoint(), bytes.NewReader(body))
	if err != nil {
		return nil, NewLLMError(ErrorTypeRequest, "failed to create request", err)
	}
	for k, v := range c.provider.Headers() {
		req.Header.Set(k, v)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, NewLLMError(ErrorTypeRequest, "failed to send request", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, NewLLMError(ErrorTypeResponse, "failed to read response body", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.logger.Error("API error", "provider", c.provider.Name(), "status", resp.StatusCode)
		return nil, errorForStatus(resp.StatusCode, providers.ErrorMessage(respBody))
	}

	result, err := c.provider.ParseResponse(respBody)
	if err != nil {
		return nil, NewLLMError(ErrorTypeResponse, "failed to parse response", err)
	}

	c.logger.Debug("Text generated successfully", "provider", c.provider.Name(), "model", result.Model)
	return result, nil
}
