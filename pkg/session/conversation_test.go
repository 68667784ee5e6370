package session

import "testing"

func TestConversationInitialState(t *testing.T) {
	conv := New()
	if conv.Status() != StatusActive {
		t.Errorf("status = %s, want %s", conv.Status(), StatusActive)
	}
	if conv.Done() {
		t.Error("new conversation should not be done")
	}
	if _, ok := conv.FinalAnswer(); ok {
		t.Error("new conversation should have no final answer")
	}
}

func TestAppendUserStopsAtTerminal(t *testing.T) {
	conv := Restore(StatusCompleted, []Message{{Role: RoleAssistant, Content: "FINISH([1])"}}, "[1]")

	conv.AppendUser("late observation")

	if len(conv.History()) != 1 {
		t.Errorf("history grew after terminal status: %v", conv.History())
	}
}

func TestRestore(t *testing.T) {
	history := []Message{
		{Role: RoleUser, Content: "prompt"},
		{Role: RoleAssistant, Content: "FINISH([42])"},
	}
	conv := Restore(StatusCompleted, history, "[42]")

	if conv.Status() != StatusCompleted {
		t.Errorf("status = %s, want %s", conv.Status(), StatusCompleted)
	}
	answer, ok := conv.FinalAnswer()
	if !ok || answer != "[42]" {
		t.Errorf("final answer = %q (ok=%t), want %q", answer, ok, "[42]")
	}

	// Restoring a non-completed run must not surface an answer.
	conv = Restore(StatusInvalidAction, history, "")
	if _, ok := conv.FinalAnswer(); ok {
		t.Error("invalid_action restore should have no final answer")
	}
}

func TestHistoryIsACopy(t *testing.T) {
	conv := New()
	conv.AppendUser("prompt")

	h := conv.History()
	h[0].Content = "mutated"

	if conv.History()[0].Content != "prompt" {
		t.Error("History() must return a copy")
	}
}
