// Package runner drives one conversation between an LLM and the turn
// controller until it terminates or the turn bound is reached.
package runner

import (
	"context"
	"fmt"

	"med-eval/pkg/llm"
	"med-eval/pkg/session"
)

// DefaultMaxTurns bounds the number of assistant turns per conversation.
const DefaultMaxTurns = 8

type Runner struct {
	llm      llm.Client
	ctl      *session.Controller
	maxTurns int
}

func New(client llm.Client, ctl *session.Controller, maxTurns int) *Runner {
	if maxTurns <= 0 {
		maxTurns = DefaultMaxTurns
	}
	return &Runner{llm: client, ctl: ctl, maxTurns: maxTurns}
}

// Run starts a fresh conversation from the rendered initial prompt and
// steps it until terminal or out of turns. A conversation that exhausts
// its turns stays active; grading treats that as a failure. The returned
// conversation is valid even when err is non-nil.
func (r *Runner) Run(ctx context.Context, initialPrompt string) (*session.Conversation, error) {
	conv := session.New()
	conv.AppendUser(initialPrompt)

	for turn := 0; turn < r.maxTurns && !conv.Done(); turn++ {
		utterance, err := r.llm.Generate(ctx, toLLMMessages(conv.History()))
		if err != nil {
			return conv, fmt.Errorf("turn %d: %w", turn, err)
		}
		r.ctl.Step(ctx, conv, utterance)
	}
	return conv, nil
}

func toLLMMessages(history []session.Message) []llm.Message {
	out := make([]llm.Message, 0, len(history))
	for _, m := range history {
		out = append(out, llm.Message{Role: m.Role, Content: m.Content})
	}
	return out
}
