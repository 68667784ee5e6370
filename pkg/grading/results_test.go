package grading

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"med-eval/pkg/session"
)

func TestBuildResults(t *testing.T) {
	history := []session.Message{
		{Role: session.RoleUser, Content: "prompt"},
		{Role: session.RoleAssistant, Content: "GET patients?id=1"},
		{Role: session.RoleUser, Content: "observation"},
		{Role: session.RoleAssistant, Content: "FINISH([1])"},
	}

	got := BuildResults(history, "[1]")

	expected := &Results{
		History: []Turn{
			{Role: RoleUser, Content: "prompt"},
			{Role: RoleAgent, Content: "GET patients?id=1"},
			{Role: RoleUser, Content: "observation"},
			{Role: RoleAgent, Content: "FINISH([1])"},
		},
		Result: "[1]",
	}
	if diff := cmp.Diff(expected, got); diff != "" {
		t.Errorf("BuildResults mismatch (-want +got):\n%s", diff)
	}
}

func TestParseAnswers(t *testing.T) {
	tests := []struct {
		name    string
		result  string
		want    []any
		wantErr bool
	}{
		{
			name:   "mixed array",
			result: `[1, "a", 2.5]`,
			want:   []any{float64(1), "a", 2.5},
		},
		{
			name:   "empty array",
			result: `[]`,
			want:   []any{},
		},
		{
			name:    "not an array",
			result:  `{"a": 1}`,
			wantErr: true,
		},
		{
			name:    "not json",
			result:  `1, 2`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := &Results{Result: tt.result}
			got, err := r.ParseAnswers()
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseAnswers() error = %v, wantErr %t", err, tt.wantErr)
			}
			if err != nil {
				return
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("ParseAnswers mismatch (-want +got):\n%s", diff)
			}
		})
	}
}
