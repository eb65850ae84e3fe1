// Package openai wraps the OpenAI chat completions API.
package openai

import (
	"context"
	"strings"

	"github.com/rotisserie/eris"
	sdk "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

// Client defines the chat operation used by the assistant check.
type Client interface {
	Complete(ctx context.Context, req CompletionRequest) (*Completion, error)
}

// CompletionRequest is a single-turn chat request.
type CompletionRequest struct {
	Model     string
	MaxTokens int
	System    string
	Prompt    string
}

// Completion is the first choice of a chat response.
type Completion struct {
	Model        string
	Text         string
	FinishReason string
	PromptTokens int
	OutputTokens int
}

// Option configures the client.
type Option func(*sdk.ClientConfig)

// WithBaseURL overrides the API base URL, e.g. "http://localhost:8080/v1".
func WithBaseURL(url string) Option {
	return func(c *sdk.ClientConfig) {
		c.BaseURL = strings.TrimRight(url, "/")
	}
}

type sdkClient struct {
	client *sdk.Client
}

// NewClient creates an OpenAI client.
func NewClient(apiKey string, opts ...Option) Client {
	cfg := sdk.DefaultConfig(apiKey)
	for _, o := range opts {
		o(&cfg)
	}
	return &sdkClient{client: sdk.NewClientWithConfig(cfg)}
}

func (c *sdkClient) Complete(ctx context.Context, req CompletionRequest) (*Completion, error) {
	var msgs []sdk.ChatCompletionMessage
	if req.System != "" {
		msgs = append(msgs, sdk.ChatCompletionMessage{Role: sdk.ChatMessageRoleSystem, Content: req.System})
	}
	msgs = append(msgs, sdk.ChatCompletionMessage{Role: sdk.ChatMessageRoleUser, Content: req.Prompt})

	resp, err := c.client.CreateChatCompletion(ctx, sdk.ChatCompletionRequest{
		Model:     req.Model,
		Messages:  msgs,
		MaxTokens: req.MaxTokens,
	})
	if err != nil {
		return nil, eris.Wrap(err, "openai: create chat completion")
	}
	if len(resp.Choices) == 0 {
		return nil, eris.New("openai: response has no choices")
	}

	out := &Completion{
		Model:        resp.Model,
		Text:         strings.TrimSpace(resp.Choices[0].Message.Content),
		FinishReason: string(resp.Choices[0].FinishReason),
		PromptTokens: resp.Usage.PromptTokens,
		OutputTokens: resp.Usage.CompletionTokens,
	}
	zap.L().Debug("openai: completion",
		zap.String("model", out.Model),
		zap.Int("prompt_tokens", out.PromptTokens),
		zap.Int("completion_tokens", out.OutputTokens),
	)
	return out, nil
}
