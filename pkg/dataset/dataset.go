// Package dataset loads benchmark cases and the FHIR function catalog.
package dataset

import (
	"fmt"
	"os"
	"strings"

	"github.com/bytedance/sonic"
)

// Case is one benchmark instance: instruction, context, and grading
// metadata for a single conversation. Immutable once loaded.
type Case struct {
	ID          string `json:"id"`
	Instruction string `json:"instruction"`
	Context     string `json:"context"`
	Sol         []any  `json:"sol"`
	EvalMRN     string `json:"eval_MRN"`
}

// TaskID returns the task family of the case, e.g. "task3" for "task3_7".
func (c *Case) TaskID() string {
	id, _, _ := strings.Cut(c.ID, "_")
	return id
}

// Load reads a JSON array of cases from path.
func Load(path string) ([]*Case, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read dataset: %w", err)
	}
	var cases []*Case
	if err := sonic.Unmarshal(content, &cases); err != nil {
		return nil, fmt.Errorf("failed to parse dataset %s: %w", path, err)
	}
	return cases, nil
}

// FilterTasks keeps only cases whose task family is listed in tasks.
// An empty filter keeps everything.
func FilterTasks(cases []*Case, tasks []string) []*Case {
	if len(tasks) == 0 {
		return cases
	}
	keep := make(map[string]bool, len(tasks))
	for _, t := range tasks {
		keep[strings.TrimSpace(t)] = true
	}
	var out []*Case
	for _, c := range cases {
		if keep[c.TaskID()] {
			out = append(out, c)
		}
	}
	return out
}
