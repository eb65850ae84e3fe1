// Package assistant runs the chat-completion health check.
package assistant

import (
	"context"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/optima-ops/revops-cli/pkg/anthropic"
	"github.com/optima-ops/revops-cli/pkg/openai"
)

// Providers.
const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
)

// Prompt is a single-turn question.
type Prompt struct {
	Model     string
	MaxTokens int
	Text      string
}

// Completer answers a single prompt.
type Completer interface {
	Complete(ctx context.Context, p Prompt) (string, error)
}

// CompleterFunc adapts a function to Completer.
type CompleterFunc func(ctx context.Context, p Prompt) (string, error)

func (f CompleterFunc) Complete(ctx context.Context, p Prompt) (string, error) { return f(ctx, p) }

// OpenAI answers through the chat completions API.
func OpenAI(c openai.Client) Completer {
	return CompleterFunc(func(ctx context.Context, p Prompt) (string, error) {
		resp, err := c.Complete(ctx, openai.CompletionRequest{
			Model:     p.Model,
			MaxTokens: p.MaxTokens,
			Prompt:    p.Text,
		})
		if err != nil {
			return "", err
		}
		return resp.Text, nil
	})
}

// Anthropic answers through the messages API.
func Anthropic(c anthropic.Client) Completer {
	return CompleterFunc(func(ctx context.Context, p Prompt) (string, error) {
		resp, err := c.CreateMessage(ctx, anthropic.MessageRequest{
			Model:     p.Model,
			MaxTokens: int64(p.MaxTokens),
			Messages:  []anthropic.Message{{Role: "user", Content: p.Text}},
		})
		if err != nil {
			return "", err
		}
		resp.Usage.Log(resp.Model, "assistant check")
		return resp.Text(), nil
	})
}

// Keys holds the API key of each provider.
type Keys struct {
	OpenAI           string
	OpenAIBaseURL    string
	Anthropic        string
	AnthropicBaseURL string
}

// New returns the completer for provider.
func New(provider string, keys Keys) (Completer, error) {
	switch strings.ToLower(provider) {
	case "", ProviderOpenAI:
		var opts []openai.Option
		if keys.OpenAIBaseURL != "" {
			opts = append(opts, openai.WithBaseURL(keys.OpenAIBaseURL))
		}
		return OpenAI(openai.NewClient(keys.OpenAI, opts...)), nil
	case ProviderAnthropic:
		var opts []anthropic.Option
		if keys.AnthropicBaseURL != "" {
			opts = append(opts, anthropic.WithBaseURL(keys.AnthropicBaseURL))
		}
		return Anthropic(anthropic.NewClient(keys.Anthropic, opts...)), nil
	}
	return nil, eris.Errorf("assistant: unknown provider %q", provider)
}
