// Package llm provides provider-neutral chat clients for driving the agent.
package llm

import "context"

// Message roles understood by providers.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one chat turn sent to a provider.
type Message struct {
	Role    string
	Content string
}

// Client generates the next assistant utterance for a conversation.
type Client interface {
	Generate(ctx context.Context, messages []Message) (string, error)
}
