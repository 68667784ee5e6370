// Package grading dispatches task-specific correctness checks once a
// conversation has completed.
package grading

import (
	"fmt"

	"github.com/bytedance/sonic"

	"med-eval/pkg/session"
)

// Roles used in the replayed history handed to graders.
const (
	RoleAgent = "agent"
	RoleUser  = "user"
)

// Turn is one role-tagged entry in the replayed history.
type Turn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Results is the view of a finished conversation handed to grading
// routines: the history replayed in turn order plus the stored raw answer.
// Plain data, no behavior beyond answer parsing.
type Results struct {
	History []Turn `json:"history"`
	Result  string `json:"result"`
}

// BuildResults replays a conversation history into the grader view.
// Assistant messages become "agent" turns.
func BuildResults(history []session.Message, finalAnswer string) *Results {
	r := &Results{Result: finalAnswer}
	for _, m := range history {
		switch m.Role {
		case session.RoleAssistant:
			r.History = append(r.History, Turn{Role: RoleAgent, Content: m.Content})
		case session.RoleUser:
			r.History = append(r.History, Turn{Role: RoleUser, Content: m.Content})
		}
	}
	return r
}

// ParseAnswers parses the stored raw answer as a JSON array. The answer is
// captured unvalidated at FINISH time and parsed lazily here.
func (r *Results) ParseAnswers() ([]any, error) {
	var answers []any
	if err := sonic.UnmarshalString(r.Result, &answers); err != nil {
		return nil, fmt.Errorf("final answer is not a JSON array: %w", err)
	}
	return answers, nil
}
