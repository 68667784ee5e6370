package refsol

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"med-eval/pkg/dataset"
	"med-eval/pkg/fhir"
	"med-eval/pkg/grading"
)

func results(answer string, turns ...grading.Turn) *grading.Results {
	return &grading.Results{History: turns, Result: answer}
}

func TestTask1(t *testing.T) {
	c := &dataset.Case{ID: "task1_0", Sol: []any{"S1234"}}

	tests := []struct {
		name   string
		answer string
		want   bool
	}{
		{"exact", `["S1234"]`, true},
		{"case insensitive", `["s1234"]`, true},
		{"whitespace", `[" S1234 "]`, true},
		{"wrong", `["S9999"]`, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Task1(context.Background(), c, results(tt.answer), nil)
			if err != nil {
				t.Fatalf("Task1 error: %v", err)
			}
			if got != tt.want {
				t.Errorf("Task1(%s) = %t, want %t", tt.answer, got, tt.want)
			}
		})
	}

	if _, err := Task1(context.Background(), c, results(`1, 2`), nil); err == nil {
		t.Error("Task1 with non-JSON answer should error")
	}
}

func TestTask2Tolerance(t *testing.T) {
	c := &dataset.Case{ID: "task2_0", Sol: []any{98.6}}

	tests := []struct {
		answer string
		want   bool
	}{
		{`[98.6]`, true},
		{`[98.605]`, true},
		{`["98.6"]`, true},
		{`[98.8]`, false},
	}
	for _, tt := range tests {
		got, err := Task2(context.Background(), c, results(tt.answer), nil)
		if err != nil {
			t.Fatalf("Task2(%s) error: %v", tt.answer, err)
		}
		if got != tt.want {
			t.Errorf("Task2(%s) = %t, want %t", tt.answer, got, tt.want)
		}
	}
}

func TestTask3ElementWise(t *testing.T) {
	c := &dataset.Case{ID: "task3_0", Sol: []any{"a", 2.0}}

	if got, _ := Task3(context.Background(), c, results(`["a", 2]`), nil); !got {
		t.Error("matching list should grade true")
	}
	if got, _ := Task3(context.Background(), c, results(`["a"]`), nil); got {
		t.Error("length mismatch should grade false")
	}
	if got, _ := Task3(context.Background(), c, results(`["a", 3]`), nil); got {
		t.Error("element mismatch should grade false")
	}
}

func TestTask4RequiresObservationPost(t *testing.T) {
	c := &dataset.Case{ID: "task4_0", Sol: []any{float64(-1)}, EvalMRN: "S1234"}

	post := grading.Turn{
		Role:    grading.RoleAgent,
		Content: "POST Observation\n{\"resourceType\": \"Observation\", \"subject\": {\"reference\": \"Patient/S1234\"}}",
	}
	wrongPatient := grading.Turn{
		Role:    grading.RoleAgent,
		Content: "POST Observation\n{\"resourceType\": \"Observation\", \"subject\": {\"reference\": \"Patient/S9999\"}}",
	}

	if got, _ := Task4(context.Background(), c, results(`[-1]`, post), nil); !got {
		t.Error("valid Observation POST should grade true")
	}
	if got, _ := Task4(context.Background(), c, results(`[-1]`), nil); got {
		t.Error("missing POST should grade false")
	}
	if got, _ := Task4(context.Background(), c, results(`[-1]`, wrongPatient), nil); got {
		t.Error("POST for the wrong patient should grade false")
	}
	if got, _ := Task4(context.Background(), c, results(`[0]`, post), nil); got {
		t.Error("wrong answer should grade false even with a valid POST")
	}
}

func TestTask5RequiresMedicationRequestPost(t *testing.T) {
	c := &dataset.Case{ID: "task5_0", Sol: []any{float64(-1)}, EvalMRN: "S1234"}

	post := grading.Turn{
		Role:    grading.RoleAgent,
		Content: "POST MedicationRequest\n{\"resourceType\": \"MedicationRequest\", \"subject\": {\"reference\": \"Patient/S1234\"}}",
	}
	observation := grading.Turn{
		Role:    grading.RoleAgent,
		Content: "POST Observation\n{\"resourceType\": \"Observation\", \"subject\": {\"reference\": \"Patient/S1234\"}}",
	}

	if got, _ := Task5(context.Background(), c, results(`[-1]`, post), nil); !got {
		t.Error("valid MedicationRequest POST should grade true")
	}
	if got, _ := Task5(context.Background(), c, results(`[-1]`), nil); got {
		t.Error("missing POST should grade false")
	}
	if got, _ := Task5(context.Background(), c, results(`[-1]`, observation), nil); got {
		t.Error("POST of the wrong resource type should grade false")
	}
	if got, _ := Task5(context.Background(), c, results(`[0]`, post), nil); got {
		t.Error("wrong answer should grade false even with a valid POST")
	}
}

func TestTask6RequeriesBackend(t *testing.T) {
	c := &dataset.Case{ID: "task6_0", Sol: []any{"ok"}, EvalMRN: "S1234"}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"entry": [{"resource": {"identifier": "S1234"}}]}`))
	}))
	t.Cleanup(srv.Close)

	got, err := Task6(context.Background(), c, results(`["ok"]`), fhir.NewClient(srv.URL))
	if err != nil {
		t.Fatalf("Task6 error: %v", err)
	}
	if !got {
		t.Error("Task6 = false, want true")
	}

	missing := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"entry": []}`))
	}))
	t.Cleanup(missing.Close)

	got, err = Task6(context.Background(), c, results(`["ok"]`), fhir.NewClient(missing.URL))
	if err != nil {
		t.Fatalf("Task6 error: %v", err)
	}
	if got {
		t.Error("Task6 without patient record = true, want false")
	}
}

func TestNewRegistryCoversAllTasks(t *testing.T) {
	r := NewRegistry()
	for _, id := range []string{"task1", "task2", "task3", "task4", "task5", "task6"} {
		if _, ok := r.Lookup(id); !ok {
			t.Errorf("registry missing %s", id)
		}
	}
}
