// Package anthropicprovider adapts the Anthropic Messages API to the
// single-turn backend contract. The relay sends one prompt per call and the
// backend is expected to answer in character, so there is no conversation
// history to carry; the system prompt supplies the persona.
package anthropicprovider

import (
	"context"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

const (
	defaultBaseURL = "https://api.anthropic.com"
	defaultModel   = "claude-sonnet-4.6"

	maxReplyTokens = 1024
)

type Provider struct {
	client       *anthropic.Client
	model        string
	systemPrompt string
	baseURL      string
}

func NewProvider(apiKey, model, apiBase, systemPrompt string) *Provider {
	baseURL := normalizeBaseURL(apiBase)
	client := anthropic.NewClient(
		option.WithAPIKey(apiKey),
		option.WithBaseURL(baseURL),
	)
	p := NewProviderWithClient(&client, model, systemPrompt)
	p.baseURL = baseURL
	return p
}

// NewProviderWithClient wires a pre-built SDK client, which lets tests point
// the provider at a local server.
func NewProviderWithClient(client *anthropic.Client, model, systemPrompt string) *Provider {
	if model == "" {
		model = defaultModel
	}
	return &Provider{
		client:       client,
		model:        model,
		systemPrompt: systemPrompt,
		baseURL:      defaultBaseURL,
	}
}

func (p *Provider) Name() string {
	return "anthropic"
}

func (p *Provider) BaseURL() string {
	return p.baseURL
}

func (p *Provider) SendMessage(ctx context.Context, text string) (string, error) {
	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(p.model),
		MaxTokens: maxReplyTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(text)),
		},
	}
	if p.systemPrompt != "" {
		params.System = []anthropic.TextBlockParam{{Text: p.systemPrompt}}
	}

	resp, err := p.client.Messages.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("claude API call: %w", err)
	}

	var sb strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			sb.WriteString(block.AsText().Text)
		}
	}
	return sb.String(), nil
}

func normalizeBaseURL(apiBase string) string {
	base := strings.TrimSpace(apiBase)
	if base == "" {
		return defaultBaseURL
	}

	base = strings.TrimRight(base, "/")
	if b, ok := strings.CutSuffix(base, "/v1"); ok {
		base = b
	}
	if base == "" {
		return defaultBaseURL
	}

	return base
}
