// Package refsol holds the built-in grading routines, keyed by task family.
package refsol

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/bytedance/sonic"

	"med-eval/pkg/dataset"
	"med-eval/pkg/fhir"
	"med-eval/pkg/grading"
	"med-eval/pkg/session"
)

// numTolerance absorbs float formatting differences in numeric answers.
const numTolerance = 1e-2

// NewRegistry returns a registry populated with every built-in grader.
func NewRegistry() *grading.Registry {
	r := grading.NewRegistry()
	r.Register("task1", Task1)
	r.Register("task2", Task2)
	r.Register("task3", Task3)
	r.Register("task4", Task4)
	r.Register("task5", Task5)
	r.Register("task6", Task6)
	return r
}

// Task1: single textual answer (e.g. an MRN looked up by name and DOB)
// compared against the reference solution.
func Task1(ctx context.Context, c *dataset.Case, res *grading.Results, backend *fhir.Client) (bool, error) {
	answers, err := res.ParseAnswers()
	if err != nil {
		return false, err
	}
	if len(answers) == 0 || len(c.Sol) == 0 {
		return false, fmt.Errorf("empty answer or solution")
	}
	return textEqual(answers[0], c.Sol[0]), nil
}

// Task2: single numeric answer (e.g. a lab value) within tolerance.
func Task2(ctx context.Context, c *dataset.Case, res *grading.Results, backend *fhir.Client) (bool, error) {
	answers, err := res.ParseAnswers()
	if err != nil {
		return false, err
	}
	if len(answers) == 0 || len(c.Sol) == 0 {
		return false, fmt.Errorf("empty answer or solution")
	}
	return valueEqual(answers[0], c.Sol[0]), nil
}

// Task3: every answer must match the reference solution element-wise.
func Task3(ctx context.Context, c *dataset.Case, res *grading.Results, backend *fhir.Client) (bool, error) {
	answers, err := res.ParseAnswers()
	if err != nil {
		return false, err
	}
	return answersEqual(answers, c.Sol), nil
}

// Task4: the agent must have issued an Observation POST for the evaluated
// patient; the final answers must still match the reference solution.
func Task4(ctx context.Context, c *dataset.Case, res *grading.Results, backend *fhir.Client) (bool, error) {
	if !postedResource(res, "Observation", c.EvalMRN) {
		return false, nil
	}
	answers, err := res.ParseAnswers()
	if err != nil {
		return false, err
	}
	return answersEqual(answers, c.Sol), nil
}

// Task5: like Task4 for MedicationRequest orders.
func Task5(ctx context.Context, c *dataset.Case, res *grading.Results, backend *fhir.Client) (bool, error) {
	if !postedResource(res, "MedicationRequest", c.EvalMRN) {
		return false, nil
	}
	answers, err := res.ParseAnswers()
	if err != nil {
		return false, err
	}
	return answersEqual(answers, c.Sol), nil
}

// Task6: re-queries the backend to confirm the evaluated patient record
// exists, then compares answers against the reference solution.
func Task6(ctx context.Context, c *dataset.Case, res *grading.Results, backend *fhir.Client) (bool, error) {
	body, err := backend.Get(ctx, fmt.Sprintf("Patient?identifier=%s&_format=json", c.EvalMRN))
	if err != nil {
		return false, fmt.Errorf("failed to re-query patient %s: %w", c.EvalMRN, err)
	}
	if !strings.Contains(body, c.EvalMRN) {
		return false, nil
	}
	answers, err := res.ParseAnswers()
	if err != nil {
		return false, err
	}
	return answersEqual(answers, c.Sol), nil
}

// postedResource reports whether the agent attempted a POST of the given
// resource type referencing the evaluated patient. POSTs are acknowledged
// without effect, so graders inspect the replayed history instead of the
// backend.
func postedResource(res *grading.Results, resourceType, mrn string) bool {
	for _, payload := range postPayloads(res) {
		if payload["resourceType"] != resourceType {
			continue
		}
		subject, ok := payload["subject"].(map[string]any)
		if !ok {
			continue
		}
		ref, _ := subject["reference"].(string)
		if strings.HasSuffix(ref, "/"+mrn) || ref == mrn {
			return true
		}
	}
	return false
}

// postPayloads extracts every well-formed JSON payload the agent POSTed.
func postPayloads(res *grading.Results) []map[string]any {
	var out []map[string]any
	for _, t := range res.History {
		if t.Role != grading.RoleAgent {
			continue
		}
		a, ok := session.Classify(t.Content).(session.PostAction)
		if !ok {
			continue
		}
		var payload map[string]any
		if sonic.UnmarshalString(a.RawBody, &payload) == nil {
			out = append(out, payload)
		}
	}
	return out
}

func answersEqual(answers, sol []any) bool {
	if len(answers) != len(sol) {
		return false
	}
	for i := range answers {
		if !valueEqual(answers[i], sol[i]) {
			return false
		}
	}
	return true
}

// valueEqual compares one answer against one solution element, numerically
// when both sides parse as numbers, textually otherwise.
func valueEqual(answer, sol any) bool {
	an, aok := toFloat(answer)
	sn, sok := toFloat(sol)
	if aok && sok {
		return math.Abs(an-sn) <= numTolerance
	}
	return textEqual(answer, sol)
}

func textEqual(answer, sol any) bool {
	a := strings.TrimSpace(fmt.Sprintf("%v", answer))
	s := strings.TrimSpace(fmt.Sprintf("%v", sol))
	return strings.EqualFold(a, s)
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		return f, err == nil
	default:
		return 0, false
	}
}
