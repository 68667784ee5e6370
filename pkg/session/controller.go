package session

import "context"

// Controller applies the per-turn transition rules to a conversation.
type Controller struct {
	exec *Executor
}

func NewController(exec *Executor) *Controller {
	return &Controller{exec: exec}
}

// Step processes one assistant utterance: it appends the utterance to the
// history, classifies it, and either terminates the conversation or
// executes the action and appends its observation. Once the conversation
// is terminal, Step is a no-op.
func (ctl *Controller) Step(ctx context.Context, conv *Conversation, utterance string) {
	if conv.Done() {
		return
	}
	conv.history = append(conv.history, Message{Role: RoleAssistant, Content: utterance})

	switch a := Classify(utterance).(type) {
	case FinishAction:
		conv.finalAnswer = a.RawAnswer
		conv.hasAnswer = true
		conv.status = StatusCompleted
	case InvalidAction:
		// Terminal. The agent receives no further turn and no observation.
		conv.status = StatusInvalidAction
	case GetAction:
		conv.history = append(conv.history, Message{Role: RoleUser, Content: ctl.exec.Get(ctx, a)})
	case PostAction:
		conv.history = append(conv.history, Message{Role: RoleUser, Content: ctl.exec.Post(a)})
	}
}
