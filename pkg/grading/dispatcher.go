package grading

import (
	"context"
	"log/slog"

	"med-eval/pkg/dataset"
	"med-eval/pkg/fhir"
	"med-eval/pkg/session"
)

// Dispatcher selects and runs the grading routine for a finished
// conversation. The outcome is strictly binary; no partial credit.
type Dispatcher struct {
	registry *Registry
	backend  *fhir.Client
}

func NewDispatcher(registry *Registry, backend *fhir.Client) *Dispatcher {
	return &Dispatcher{registry: registry, backend: backend}
}

// Grade returns the outcome for a conversation. Every failure mode maps to
// false: not completed, no answer, unreachable backend, missing routine,
// routine error, routine panic. Grade never panics.
func (d *Dispatcher) Grade(ctx context.Context, c *dataset.Case, conv *session.Conversation) bool {
	if conv.Status() != session.StatusCompleted {
		return false
	}
	answer, ok := conv.FinalAnswer()
	if !ok {
		return false
	}

	// Fail closed when the backend is down so an unreachable server is
	// diagnosable in the logs instead of showing up as wrong answers.
	if !d.backend.Verify(ctx) {
		slog.Error("grading aborted: FHIR server is unreachable", "case", c.ID, "base", d.backend.Base())
		return false
	}

	fn, ok := d.registry.Lookup(c.TaskID())
	if !ok {
		slog.Error("no grading routine registered", "case", c.ID, "task", c.TaskID())
		return false
	}

	return d.call(ctx, fn, c, BuildResults(conv.History(), answer))
}

func (d *Dispatcher) call(ctx context.Context, fn Func, c *dataset.Case, res *Results) (outcome bool) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("grading routine panicked", "case", c.ID, "panic", r)
			outcome = false
		}
	}()

	correct, err := fn(ctx, c, res, d.backend)
	if err != nil {
		slog.Warn("grading routine failed", "case", c.ID, "error", err)
		return false
	}
	return correct
}
