package grading

import (
	"context"
	"sort"

	"med-eval/pkg/dataset"
	"med-eval/pkg/fhir"
)

// Func checks one finished conversation for task correctness. Routines may
// re-query the backend through the supplied client. Returning an error or
// panicking counts as an incorrect outcome, never a crash.
type Func func(ctx context.Context, c *dataset.Case, res *Results, backend *fhir.Client) (bool, error)

// Registry maps task identifiers (e.g. "task3") to grading routines.
// Populated at startup; unknown identifiers are a grading failure, not a
// lookup crash.
type Registry struct {
	funcs map[string]Func
}

func NewRegistry() *Registry {
	return &Registry{funcs: make(map[string]Func)}
}

func (r *Registry) Register(taskID string, fn Func) {
	r.funcs[taskID] = fn
}

func (r *Registry) Lookup(taskID string) (Func, bool) {
	fn, ok := r.funcs[taskID]
	return fn, ok
}

// Tasks returns the registered task identifiers in sorted order.
func (r *Registry) Tasks() []string {
	out := make([]string, 0, len(r.funcs))
	for id := range r.funcs {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}
