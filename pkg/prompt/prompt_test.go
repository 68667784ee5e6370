package prompt

import (
	"strings"
	"testing"

	"med-eval/pkg/dataset"
)

func TestInitial(t *testing.T) {
	c := &dataset.Case{
		ID:          "task1_0",
		Instruction: "What is the MRN of the patient born 1990-01-01?",
		Context:     "It is 2023-11-13.",
	}
	funcs := dataset.Catalog{
		"get_patient": {Method: "GET", Path: "/Patient", Parameters: map[string]any{"birthdate": "string"}},
	}

	got, err := Initial(c, "http://localhost:8080/fhir", funcs)
	if err != nil {
		t.Fatalf("Initial error: %v", err)
	}

	for _, want := range []string{
		"http://localhost:8080/fhir",
		`"get_patient"`,
		`"/Patient"`,
		"Context: It is 2023-11-13.",
		"Question: What is the MRN of the patient born 1990-01-01?",
		"FINISH([answer1, answer2, ...])",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
}
