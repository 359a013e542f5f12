// Package llm implements the generation backend against the Anthropic
// Messages API.
package llm

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// ErrMissingAPIKey is returned when no Anthropic API key is configured.
// The synthesizer treats it like any other generation failure.
var ErrMissingAPIKey = errors.New("missing ANTHROPIC_API_KEY")

const (
	apiKeyEnv         = "ANTHROPIC_API_KEY"
	defaultMaxTokens  = 8192
	defaultCallBudget = 120 * time.Second
)

// Client calls the Anthropic Messages API. It is stateless apart from the
// underlying HTTP client and safe for concurrent use.
type Client struct {
	client    anthropic.Client
	apiKeySet bool
	maxTokens int64
	timeout   time.Duration
}

// Option configures a Client.
type Option func(*Client)

// WithMaxTokens caps the generated response length.
func WithMaxTokens(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.maxTokens = int64(n)
		}
	}
}

// WithTimeout bounds a single generation call.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// NewClient creates a Client reading the API key from the environment.
func NewClient(opts ...Option) *Client {
	key := os.Getenv(apiKeyEnv)
	c := &Client{
		client:    anthropic.NewClient(option.WithAPIKey(key)),
		apiKeySet: key != "",
		maxTokens: defaultMaxTokens,
		timeout:   defaultCallBudget,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Generate sends the prompt as a single user message and concatenates the
// text blocks of the response. Any failure, including a missing credential,
// surfaces as an error for the caller's retry loop.
func (c *Client) Generate(ctx context.Context, model, prompt string) (string, error) {
	if !c.apiKeySet {
		return "", ErrMissingAPIKey
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	msg, err := c.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(model),
		MaxTokens: c.maxTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		return "", fmt.Errorf("anthropic messages: %w", err)
	}

	var b strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			b.WriteString(block.Text)
		}
	}
	return b.String(), nil
}
