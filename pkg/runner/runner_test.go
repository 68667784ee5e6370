package runner

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"med-eval/pkg/fhir"
	"med-eval/pkg/llm"
	"med-eval/pkg/session"
)

// scriptedClient replays canned utterances in order.
type scriptedClient struct {
	utterances []string
	calls      int
}

func (c *scriptedClient) Generate(ctx context.Context, messages []llm.Message) (string, error) {
	if c.calls >= len(c.utterances) {
		return "", errors.New("script exhausted")
	}
	u := c.utterances[c.calls]
	c.calls++
	return u, nil
}

func newTestRunner(t *testing.T, client llm.Client, maxTurns int) *Runner {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data": "X"}`))
	}))
	t.Cleanup(srv.Close)
	ctl := session.NewController(session.NewExecutor(fhir.NewClient(srv.URL)))
	return New(client, ctl, maxTurns)
}

func TestRunToCompletion(t *testing.T) {
	client := &scriptedClient{utterances: []string{
		"GET Patient?birthdate=1990-01-01",
		"FINISH([\"S1234\"])",
	}}
	r := newTestRunner(t, client, 8)

	conv, err := r.Run(context.Background(), "prompt")
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}
	if conv.Status() != session.StatusCompleted {
		t.Errorf("status = %s, want %s", conv.Status(), session.StatusCompleted)
	}
	answer, _ := conv.FinalAnswer()
	if answer != "[\"S1234\"]" {
		t.Errorf("final answer = %q", answer)
	}
	// prompt, GET, observation, FINISH
	if len(conv.History()) != 4 {
		t.Errorf("history length = %d, want 4", len(conv.History()))
	}
}

func TestRunStopsOnInvalidAction(t *testing.T) {
	client := &scriptedClient{utterances: []string{"HELLO", "FINISH([1])"}}
	r := newTestRunner(t, client, 8)

	conv, err := r.Run(context.Background(), "prompt")
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}
	if conv.Status() != session.StatusInvalidAction {
		t.Errorf("status = %s, want %s", conv.Status(), session.StatusInvalidAction)
	}
	if client.calls != 1 {
		t.Errorf("LLM called %d times after terminal action, want 1", client.calls)
	}
}

func TestRunHonorsTurnBound(t *testing.T) {
	client := &scriptedClient{utterances: []string{
		"GET a?x=1", "GET a?x=1", "GET a?x=1", "GET a?x=1", "GET a?x=1",
	}}
	r := newTestRunner(t, client, 3)

	conv, err := r.Run(context.Background(), "prompt")
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}
	if conv.Status() != session.StatusActive {
		t.Errorf("status = %s, want %s (exhausted, not terminal)", conv.Status(), session.StatusActive)
	}
	if client.calls != 3 {
		t.Errorf("LLM called %d times, want 3", client.calls)
	}
}

func TestRunSurfacesLLMError(t *testing.T) {
	client := &scriptedClient{}
	r := newTestRunner(t, client, 8)

	conv, err := r.Run(context.Background(), "prompt")
	if err == nil {
		t.Fatal("Run should surface the provider error")
	}
	if conv == nil || conv.Status() != session.StatusActive {
		t.Error("conversation should be returned intact alongside the error")
	}
}
