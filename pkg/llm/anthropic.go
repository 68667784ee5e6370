package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
)

const anthropicMaxTokens = 1024

// AnthropicClient drives the agent through the Anthropic Messages API.
// The API key is read from the environment by the SDK.
type AnthropicClient struct {
	client *anthropic.Client
	model  anthropic.Model
}

func NewAnthropicClient(model string) *AnthropicClient {
	c := anthropic.NewClient()
	return &AnthropicClient{client: &c, model: anthropic.Model(model)}
}

func (c *AnthropicClient) Generate(ctx context.Context, messages []Message) (string, error) {
	params := anthropic.MessageNewParams{
		Model:     c.model,
		MaxTokens: anthropicMaxTokens,
		Messages:  make([]anthropic.MessageParam, 0, len(messages)),
	}
	for _, m := range messages {
		block := anthropic.NewTextBlock(m.Content)
		if m.Role == RoleAssistant {
			params.Messages = append(params.Messages, anthropic.NewAssistantMessage(block))
		} else {
			params.Messages = append(params.Messages, anthropic.NewUserMessage(block))
		}
	}

	msg, err := c.client.Messages.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("anthropic message error: %w", err)
	}

	var out strings.Builder
	for _, block := range msg.Content {
		if tb, ok := block.AsAny().(anthropic.TextBlock); ok {
			out.WriteString(tb.Text)
		}
	}
	return out.String(), nil
}
