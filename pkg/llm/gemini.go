package llm

import (
	"context"
	"fmt"
	"log/slog"

	"google.golang.org/genai"
)

// GeminiClient drives the agent through the Gemini API.
type GeminiClient struct {
	client *genai.Client
	model  string
}

func NewGeminiClient(ctx context.Context, apiKey, model string) (*GeminiClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini api key is empty")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apiKey})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}
	return &GeminiClient{client: client, model: model}, nil
}

func (c *GeminiClient) Generate(ctx context.Context, messages []Message) (string, error) {
	contents := make([]*genai.Content, 0, len(messages))
	for _, m := range messages {
		role := "user"
		if m.Role == RoleAssistant {
			role = "model"
		}
		contents = append(contents, &genai.Content{
			Role:  role,
			Parts: []*genai.Part{genai.NewPartFromText(m.Content)},
		})
	}

	r, err := c.client.Models.GenerateContent(ctx, c.model, contents, nil)
	if err != nil {
		return "", fmt.Errorf("failed to generate content: %w", err)
	}

	if usage := r.UsageMetadata; usage != nil {
		slog.Debug("LLM Usage",
			slog.Int("prompt_tokens", int(usage.PromptTokenCount)),
			slog.Int("output_tokens", int(usage.CandidatesTokenCount)),
			slog.Int("total_tokens", int(usage.TotalTokenCount)))
	}

	return r.Text(), nil
}
