// Package generation integrates the external text-generation service. It
// exposes a narrow Client interface the pipeline depends on, an OpenAI-backed
// implementation, the prompt variant registry, and the batch payload/response
// codec.
//
// The service is treated as a black box: one chat completion per batch, a
// best-effort structured response back. Everything about retries, positional
// mapping, and failure isolation lives in the pipeline, not here.
package generation

import (
	"context"
	"errors"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

// Client is the generation-service contract consumed by the pipeline.
// Implementations must honor ctx for cancellation and deadlines.
type Client interface {
	// Complete sends one request with the given system context and user
	// payload and returns the raw text of the first completion.
	Complete(ctx context.Context, systemPrompt, userPayload string) (string, error)
}

// ErrEmptyCompletion is returned when the provider answers with no choices.
var ErrEmptyCompletion = errors.New("generation service returned no content")

// OpenAIClient calls an OpenAI-compatible chat completion endpoint. A custom
// BaseURL allows pointing at any provider speaking the same protocol.
type OpenAIClient struct {
	client  *openai.Client
	model   string
	timeout time.Duration
}

// NewOpenAIClient builds a client for the given credentials. baseURL may be
// empty to use the provider default. timeout bounds each call; zero disables
// the per-call deadline (the request context still applies).
func NewOpenAIClient(apiKey, baseURL, model string, timeout time.Duration) *OpenAIClient {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &OpenAIClient{
		client:  openai.NewClientWithConfig(cfg),
		model:   model,
		timeout: timeout,
	}
}

// Complete implements Client.
func (c *OpenAIClient) Complete(ctx context.Context, systemPrompt, userPayload string) (string, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: userPayload},
		},
		Temperature: 0.8,
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "", ErrEmptyCompletion
	}
	return resp.Choices[0].Message.Content, nil
}
