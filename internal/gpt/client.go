// Package gpt provides an OpenAI-compatible chat client used to write
// short learner glosses for words that have no meaning yet.
package gpt

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/hammamikhairi/vocabecho/internal/logger"
)

// ClientOption configures the Client.
type ClientOption func(*Client)

// WithModel overrides the default model name.
func WithModel(model string) ClientOption {
	return func(c *Client) { c.model = model }
}

// WithTemperature overrides the sampling temperature.
func WithTemperature(t float64) ClientOption {
	return func(c *Client) { c.temperature = t }
}

// WithMaxTokens sets the response token limit.
func WithMaxTokens(n int) ClientOption {
	return func(c *Client) { c.maxTokens = n }
}

// WithHTTPTimeout sets the HTTP client timeout.
func WithHTTPTimeout(d time.Duration) ClientOption {
	return func(c *Client) { c.timeout = d }
}

// WithMaxRetries sets how often a failed request is retried.
func WithMaxRetries(n int) ClientOption {
	return func(c *Client) { c.retries = n }
}

// Client talks to an OpenAI-compatible chat-completions endpoint.
type Client struct {
	api         openai.Client
	model       string
	temperature float64
	maxTokens   int
	timeout     time.Duration
	retries     int
	log         *logger.Logger
}

// NewClient creates a chat client.
//   - apiKey:  the API key
//   - baseURL: optional endpoint override for OpenAI-compatible servers;
//     empty means api.openai.com
func NewClient(apiKey, baseURL string, log *logger.Logger, opts ...ClientOption) *Client {
	c := &Client{
		model:       openai.ChatModelGPT4oMini,
		temperature: 0.3,
		maxTokens:   120,
		timeout:     30 * time.Second,
		retries:     2,
		log:         log,
	}
	for _, o := range opts {
		o(c)
	}

	reqOpts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithHTTPClient(&http.Client{Timeout: c.timeout}),
		option.WithMaxRetries(c.retries),
	}
	if baseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(baseURL))
	}
	c.api = openai.NewClient(reqOpts...)
	return c
}

// Chat sends a system prompt and one user message and returns the
// assistant's reply.
func (c *Client) Chat(ctx context.Context, system, user string) (string, error) {
	params := openai.ChatCompletionNewParams{
		Model: c.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(system),
			openai.UserMessage(user),
		},
		Temperature: openai.Float(c.temperature),
		MaxTokens:   openai.Int(int64(c.maxTokens)),
	}

	c.log.Debug("gpt: chat (%s, %d chars)", c.model, len(user))

	resp, err := c.api.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("gpt: request failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("gpt: empty response (no choices)")
	}

	reply := resp.Choices[0].Message.Content
	c.log.Debug("gpt: reply (%d chars): %s", len(reply), truncate(reply, 120))
	return reply, nil
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
