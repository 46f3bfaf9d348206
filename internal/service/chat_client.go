package service

import (
	"context"
	"fmt"
	"strings"

	llmprovider "github.com/haowjy/meridian-llm-go"
	"github.com/haowjy/meridian-llm-go/providers/anthropic"
	"github.com/haowjy/meridian-llm-go/providers/lorem"
)

// NewChatClient builds the assistant's language-model client for the
// configured provider name. An empty name returns a nil client, which
// disables free-form chat while leaving the guided help flow available.
//
// Supported providers:
//   - "anthropic" - Claude models via the Anthropic API (needs an API key)
//   - "lorem"     - keyless mock provider generating filler text
func NewChatClient(providerName, apiKey, model string) (ChatClient, error) {
	switch providerName {
	case "":
		return nil, nil

	case "anthropic":
		if apiKey == "" {
			return nil, fmt.Errorf("ANTHROPIC_API_KEY not set for anthropic chat provider")
		}
		provider, err := anthropic.NewProvider(apiKey)
		if err != nil {
			return nil, fmt.Errorf("create anthropic provider: %w", err)
		}
		return &providerChatClient{provider: provider, model: model}, nil

	case "lorem":
		return &providerChatClient{provider: lorem.NewProvider(), model: model}, nil

	default:
		return nil, fmt.Errorf("unsupported chat provider: %s", providerName)
	}
}

// providerChatClient adapts a library provider to the single-turn reply
// the assistant needs.
type providerChatClient struct {
	provider llmprovider.Provider
	model    string
}

func (c *providerChatClient) Reply(ctx context.Context, message string) (string, error) {
	text := message
	req := &llmprovider.GenerateRequest{
		Model: c.model,
		Messages: []llmprovider.Message{{
			Role: "user",
			Blocks: []*llmprovider.Block{{
				BlockType:   "text",
				Sequence:    0,
				TextContent: &text,
			}},
		}},
	}

	resp, err := c.provider.GenerateResponse(ctx, req)
	if err != nil {
		return "", fmt.Errorf("generate response: %w", err)
	}

	var out strings.Builder
	for _, block := range resp.Blocks {
		if block.BlockType != "text" || block.TextContent == nil {
			continue
		}
		out.WriteString(*block.TextContent)
	}

	return out.String(), nil
}
