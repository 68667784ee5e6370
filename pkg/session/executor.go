package session

import (
	"context"
	"fmt"

	"github.com/bytedance/sonic"

	"med-eval/pkg/fhir"
)

const finishReminder = "Please call FINISH if you have got answers for all the questions and finished all the requested tasks"

// Executor carries out GET and POST actions, producing observation text.
type Executor struct {
	backend *fhir.Client
}

func NewExecutor(backend *fhir.Client) *Executor {
	return &Executor{backend: backend}
}

// Get performs a real GET against the backend, requesting JSON formatting,
// and forwards the payload verbatim. Errors become an observation for the
// agent; they never change conversation status.
func (e *Executor) Get(ctx context.Context, a GetAction) string {
	data, err := e.backend.Get(ctx, a.URL+"&_format=json")
	if err != nil {
		return fmt.Sprintf("Error in sending the GET request: %v", err)
	}
	return fmt.Sprintf("Here is the response from the GET request:\n%s. %s", data, finishReminder)
}

// Post validates the payload as JSON and acknowledges it. No request is
// sent: grading re-queries backend state or consults the reference
// solution, so writes are never read back through this channel.
func (e *Executor) Post(a PostAction) string {
	var payload any
	if err := sonic.UnmarshalString(a.RawBody, &payload); err != nil {
		return "Invalid POST request format"
	}
	return "POST request accepted and executed successfully. " + finishReminder
}
