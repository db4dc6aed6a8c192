// Package gemini provides a client for the Google Gemini API
package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"golang.org/x/time/rate"
	"google.golang.org/genai"

	"github.com/bobmcallan/gripinvest/internal/common"
	"github.com/bobmcallan/gripinvest/internal/interfaces"
)

const (
	DefaultModel         = "gemini-2.5-flash"
	DefaultFallbackModel = "gemini-2.0-flash"
	DefaultRateLimit     = 2
)

// Client implements interfaces.TextGenerator against the Gemini API
type Client struct {
	client        *genai.Client
	model         string
	fallbackModel string
	limiter       *rate.Limiter
	logger        *common.Logger
}

// ClientOption configures the client
type ClientOption func(*Client)

// WithModel sets the primary model
func WithModel(model string) ClientOption {
	return func(c *Client) {
		if model != "" {
			c.model = model
		}
	}
}

// WithFallbackModel sets the model retried when the primary is overloaded.
// An empty name disables the retry.
func WithFallbackModel(model string) ClientOption {
	return func(c *Client) {
		c.fallbackModel = model
	}
}

// WithRateLimit sets requests per second
func WithRateLimit(requestsPerSecond int) ClientOption {
	return func(c *Client) {
		if requestsPerSecond > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), requestsPerSecond)
		}
	}
}

// WithLogger sets the logger
func WithLogger(logger *common.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// NewClient creates a new Gemini client
func NewClient(ctx context.Context, apiKey string, opts ...ClientOption) (*Client, error) {
	genaiClient, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	c := &Client{
		client:        genaiClient,
		model:         DefaultModel,
		fallbackModel: DefaultFallbackModel,
		limiter:       rate.NewLimiter(rate.Limit(DefaultRateLimit), DefaultRateLimit),
		logger:        common.NewSilentLogger(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// Close closes the client
func (c *Client) Close() error {
	// The genai client doesn't have a Close method
	return nil
}

// GenerateContent generates text from a prompt. When the primary model answers
// 503 the request is retried once against the fallback model.
func (c *Client) GenerateContent(ctx context.Context, prompt string) (string, error) {
	text, err := c.generate(ctx, c.model, prompt)
	if err == nil {
		return text, nil
	}

	if c.fallbackModel == "" || c.fallbackModel == c.model || !isOverloaded(err) {
		return "", err
	}

	c.logger.Warn().
		Str("model", c.model).
		Str("fallback_model", c.fallbackModel).
		Msg("Primary model overloaded, retrying with fallback")

	return c.generate(ctx, c.fallbackModel, prompt)
}

func (c *Client) generate(ctx context.Context, model, prompt string) (string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limiter: %w", err)
	}

	c.logger.Debug().Str("model", model).Int("prompt_len", len(prompt)).Msg("Generating content")

	result, err := c.client.Models.GenerateContent(ctx, model, genai.Text(prompt), nil)
	if err != nil {
		return "", fmt.Errorf("failed to generate content: %w", err)
	}

	return extractTextFromResponse(result)
}

// extractTextFromResponse extracts text from a generate content response
func extractTextFromResponse(result *genai.GenerateContentResponse) (string, error) {
	if result == nil || len(result.Candidates) == 0 || result.Candidates[0].Content == nil || len(result.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("no content generated")
	}

	var sb strings.Builder
	for _, part := range result.Candidates[0].Content.Parts {
		if part.Text != "" {
			sb.WriteString(part.Text)
		}
	}

	text := strings.TrimSpace(sb.String())
	if text == "" {
		return "", fmt.Errorf("no content generated")
	}
	return text, nil
}

// isOverloaded reports whether err carries an HTTP 503 from the API.
func isOverloaded(err error) bool {
	for err != nil {
		switch e := err.(type) {
		case genai.APIError:
			return e.Code == http.StatusServiceUnavailable
		case *genai.APIError:
			return e.Code == http.StatusServiceUnavailable
		}
		err = errors.Unwrap(err)
	}
	return false
}

// Ensure Client implements TextGenerator
var _ interfaces.TextGenerator = (*Client)(nil)
